package domain

import "time"

type BookingStatus string

const (
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

// Booking is a reservation record. Created once on confirmation, then only
// status-transitioned or rescheduled; rows are never deleted.
type Booking struct {
	ID           string
	UserID       string
	HotelID      int64
	HotelName    string
	HotelImage   string
	HotelCity    string
	HotelCountry string
	GuestName    string
	GuestEmail   string
	GuestPhone   string
	CheckIn      time.Time // date only
	CheckOut     time.Time // date only
	Guests       int
	TotalPrice   float64
	Status       BookingStatus
	CreatedAt    time.Time
}

// Editable reports whether the owner may still reschedule or cancel.
// Cancelled and completed bookings expose neither action.
func (b Booking) Editable() bool { return b.Status == StatusConfirmed }

// BookingDraft is the creation request assembled by the workflow before the
// hotel's display fields and captured price are attached.
type BookingDraft struct {
	HotelID    int64  `validate:"required"`
	GuestName  string `validate:"required"`
	GuestEmail string `validate:"required,email"`
	GuestPhone string `validate:"required"`
	CheckIn    time.Time
	CheckOut   time.Time
	Guests     int `validate:"min=1"`
}

// BookingChange carries a reschedule: dates and guest count only. Price and
// contact fields stay as captured at creation.
type BookingChange struct {
	CheckIn  time.Time
	CheckOut time.Time
	Guests   int `validate:"min=1"`
}
