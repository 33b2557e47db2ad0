package domain

import "time"

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

func ParseDate(s string) (time.Time, error) { return time.Parse(DateLayout, s) }

func FormatDate(t time.Time) string { return t.Format(DateLayout) }

// Nights returns the whole-day difference between check-out and check-in,
// or 0 when the range is not bookable (either date zero, or checkout not
// strictly after checkin).
func Nights(checkIn, checkOut time.Time) int {
	if checkIn.IsZero() || checkOut.IsZero() || !checkOut.After(checkIn) {
		return 0
	}
	return int(checkOut.Sub(checkIn).Hours() / 24)
}

// TotalPrice computes nights × nightly rate. An invalid range or negative
// rate yields 0 rather than an error: it marks a non-bookable selection, not
// a failure. The same function runs at quote time and at booking creation,
// so a redisplayed summary always matches the captured price.
func TotalPrice(rate float64, checkIn, checkOut time.Time) float64 {
	n := Nights(checkIn, checkOut)
	if n <= 0 || rate < 0 {
		return 0
	}
	return float64(n) * rate
}
