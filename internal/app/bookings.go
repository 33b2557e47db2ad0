package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"staybook/internal/adapters/observability"
	"staybook/internal/domain"
)

// BookingService orchestrates the booking lifecycle: quote, create, list,
// reschedule and cancel. All operations are owner-scoped; the user handle is
// passed explicitly rather than read from ambient state.
type BookingService struct {
	bookings domain.BookingRepository
	catalog  domain.CatalogClient
	profiles domain.ProfileRepository
	validate *validator.Validate
	now      func() time.Time
}

func NewBookingService(b domain.BookingRepository, c domain.CatalogClient, p domain.ProfileRepository) *BookingService {
	return &BookingService{
		bookings: b,
		catalog:  c,
		profiles: p,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Quote is the review-step payload: the hotel, contact prefill from the
// owner's profile, and the computed price for the selected stay. Bookable
// false means the confirm action stays disabled; it is not an error.
type Quote struct {
	Hotel      domain.Hotel `json:"hotel"`
	GuestName  string       `json:"guestName"`
	GuestEmail string       `json:"guestEmail"`
	GuestPhone string       `json:"guestPhone"`
	CheckIn    string       `json:"checkIn,omitempty"`
	CheckOut   string       `json:"checkOut,omitempty"`
	Guests     int          `json:"guests"`
	Nights     int          `json:"nights"`
	TotalPrice float64      `json:"totalPrice"`
	Bookable   bool         `json:"bookable"`
}

// PrepareBooking assembles the review step. Hotel and profile are fetched
// concurrently; a missing profile only means empty prefill fields.
func (s *BookingService) PrepareBooking(ctx context.Context, userID string, hotelID int64, checkIn, checkOut time.Time, guests int) (Quote, error) {
	if userID == "" {
		return Quote{}, domain.ErrAuthRequired
	}
	if guests < 1 {
		guests = 1
	}

	var (
		hotel   domain.Hotel
		profile domain.Profile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		h, err := s.catalog.GetHotel(gctx, hotelID)
		if err != nil {
			return err
		}
		hotel = h
		return nil
	})
	g.Go(func() error {
		p, err := s.profiles.Get(gctx, userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			return err
		}
		profile = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return Quote{}, err
	}

	q := Quote{
		Hotel:      hotel,
		GuestName:  profile.FullName,
		GuestEmail: profile.Email,
		GuestPhone: profile.Phone,
		Guests:     guests,
		Nights:     domain.Nights(checkIn, checkOut),
		TotalPrice: domain.TotalPrice(hotel.Price, checkIn, checkOut),
	}
	if !checkIn.IsZero() {
		q.CheckIn = domain.FormatDate(checkIn)
	}
	if !checkOut.IsZero() {
		q.CheckOut = domain.FormatDate(checkOut)
	}
	q.Bookable = q.Nights > 0 && !checkIn.Before(s.today())
	return q, nil
}

// CreateBooking runs the Submitting transition: validate, capture the price
// from the hotel's current nightly rate, persist with status confirmed. The
// insert resolves before we return; persistence failures surface to the
// caller with the draft intact so resubmission needs no re-entry.
func (s *BookingService) CreateBooking(ctx context.Context, userID string, d domain.BookingDraft) (domain.Booking, error) {
	if userID == "" {
		return domain.Booking{}, domain.ErrAuthRequired
	}

	d.GuestName = strings.TrimSpace(d.GuestName)
	d.GuestEmail = strings.TrimSpace(d.GuestEmail)
	d.GuestPhone = strings.TrimSpace(d.GuestPhone)
	if d.Guests == 0 {
		d.Guests = 1
	}

	if err := s.checkStay(d.CheckIn, d.CheckOut, true); err != nil {
		observability.ObserveBooking("create", "rejected")
		return domain.Booking{}, err
	}
	if err := s.validate.Struct(d); err != nil {
		observability.ObserveBooking("create", "rejected")
		return domain.Booking{}, draftValidationError(err)
	}

	hotel, err := s.catalog.GetHotel(ctx, d.HotelID)
	if err != nil {
		return domain.Booking{}, err
	}

	b := domain.Booking{
		ID:           uuid.NewString(),
		UserID:       userID,
		HotelID:      hotel.ID,
		HotelName:    hotel.Name,
		HotelImage:   hotel.Image,
		HotelCity:    hotel.City,
		HotelCountry: hotel.Country,
		GuestName:    d.GuestName,
		GuestEmail:   d.GuestEmail,
		GuestPhone:   d.GuestPhone,
		CheckIn:      d.CheckIn,
		CheckOut:     d.CheckOut,
		Guests:       d.Guests,
		TotalPrice:   domain.TotalPrice(hotel.Price, d.CheckIn, d.CheckOut),
		Status:       domain.StatusConfirmed,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.bookings.Insert(ctx, b); err != nil {
		observability.ObserveBooking("create", "failed")
		return domain.Booking{}, fmt.Errorf("persist booking: %w", err)
	}
	observability.ObserveBooking("create", "ok")
	return b, nil
}

// ListBookings returns the owner's bookings, newest first.
func (s *BookingService) ListBookings(ctx context.Context, userID string) ([]domain.Booking, error) {
	if userID == "" {
		return nil, domain.ErrAuthRequired
	}
	return s.bookings.ListByUser(ctx, userID)
}

// GetBooking is owner-scoped: another user's booking reads as not found.
func (s *BookingService) GetBooking(ctx context.Context, userID, id string) (domain.Booking, error) {
	if userID == "" {
		return domain.Booking{}, domain.ErrAuthRequired
	}
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return domain.Booking{}, err
	}
	if b.UserID != userID {
		return domain.Booking{}, domain.ErrNotFound
	}
	return b, nil
}

// CancelBooking transitions confirmed → cancelled. Cancelling an already
// cancelled booking is an error-free no-op; a completed stay cannot be
// cancelled.
func (s *BookingService) CancelBooking(ctx context.Context, userID, id string) (domain.Booking, error) {
	b, err := s.GetBooking(ctx, userID, id)
	if err != nil {
		return domain.Booking{}, err
	}
	switch b.Status {
	case domain.StatusCancelled:
		return b, nil
	case domain.StatusCompleted:
		observability.ObserveBooking("cancel", "rejected")
		return domain.Booking{}, domain.Validation("status", "completed booking cannot be cancelled")
	}
	if err := s.bookings.UpdateStatus(ctx, id, domain.StatusCancelled); err != nil {
		observability.ObserveBooking("cancel", "failed")
		return domain.Booking{}, fmt.Errorf("cancel booking: %w", err)
	}
	observability.ObserveBooking("cancel", "ok")
	b.Status = domain.StatusCancelled
	return b, nil
}

// RescheduleBooking updates dates and guest count for a confirmed booking.
// Total price and contact fields keep the values captured at creation.
func (s *BookingService) RescheduleBooking(ctx context.Context, userID, id string, ch domain.BookingChange) (domain.Booking, error) {
	b, err := s.GetBooking(ctx, userID, id)
	if err != nil {
		return domain.Booking{}, err
	}
	if !b.Editable() {
		observability.ObserveBooking("reschedule", "rejected")
		return domain.Booking{}, domain.Validation("status", string(b.Status)+" booking cannot be rescheduled")
	}
	if ch.Guests == 0 {
		ch.Guests = b.Guests
	}
	if ch.Guests < 1 {
		observability.ObserveBooking("reschedule", "rejected")
		return domain.Booking{}, domain.Validation("guests", "must be at least 1")
	}
	if err := s.checkStay(ch.CheckIn, ch.CheckOut, false); err != nil {
		observability.ObserveBooking("reschedule", "rejected")
		return domain.Booking{}, err
	}
	if err := s.bookings.UpdateStay(ctx, id, ch.CheckIn, ch.CheckOut, ch.Guests); err != nil {
		observability.ObserveBooking("reschedule", "failed")
		return domain.Booking{}, fmt.Errorf("reschedule booking: %w", err)
	}
	observability.ObserveBooking("reschedule", "ok")
	b.CheckIn = ch.CheckIn
	b.CheckOut = ch.CheckOut
	b.Guests = ch.Guests
	return b, nil
}

// checkStay enforces the date-range rule shared by create and reschedule.
// Only creation additionally rejects past check-in dates.
func (s *BookingService) checkStay(checkIn, checkOut time.Time, rejectPast bool) error {
	if checkIn.IsZero() {
		return domain.Validation("checkIn", "required")
	}
	if checkOut.IsZero() {
		return domain.Validation("checkOut", "required")
	}
	if !checkOut.After(checkIn) {
		return domain.Validation("checkOut", "must be after check-in")
	}
	if rejectPast && checkIn.Before(s.today()) {
		return domain.Validation("checkIn", "must not be in the past")
	}
	return nil
}

func (s *BookingService) today() time.Time {
	y, m, d := s.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// draftValidationError converts the first validator failure into the domain
// validation type, with the json-ish field casing clients expect.
func draftValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		switch fe.Tag() {
		case "required":
			return domain.Validation(field, "required")
		case "email":
			return domain.Validation(field, "must be a valid email address")
		case "min":
			return domain.Validation(field, "must be at least "+fe.Param())
		}
		return domain.Validation(field, "invalid")
	}
	return err
}
