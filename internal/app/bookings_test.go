package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"staybook/internal/app"
	"staybook/internal/domain"
)

func newBookingService(repo *fakeBookingRepo, cat *fakeCatalog, profiles *fakeProfileRepo) *app.BookingService {
	if profiles == nil {
		profiles = &fakeProfileRepo{profiles: map[string]domain.Profile{}}
	}
	return app.NewBookingService(repo, cat, profiles)
}

func seaviewCatalog() *fakeCatalog {
	return &fakeCatalog{hotels: map[int64]domain.Hotel{
		42: {
			ID: 42, Name: "Seaview Palace", Price: 200, Image: "img.jpg",
			City: "Busan", Country: "South Korea",
		},
	}}
}

func TestCreateBooking_CapturesPriceAndConfirms(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := newBookingService(repo, seaviewCatalog(), nil)

	// $200/night, two nights, two guests -> $400
	b, err := svc.CreateBooking(context.Background(), "user-1", domain.BookingDraft{
		HotelID:    42,
		GuestName:  "Kim Minji",
		GuestEmail: "minji@example.com",
		GuestPhone: "+82 10 0000 0000",
		CheckIn:    futureDate(30),
		CheckOut:   futureDate(32),
		Guests:     2,
	})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if b.TotalPrice != 400 {
		t.Fatalf("total = %v, want 400", b.TotalPrice)
	}
	if b.Status != domain.StatusConfirmed {
		t.Fatalf("status = %s, want confirmed", b.Status)
	}
	if b.HotelName != "Seaview Palace" || b.HotelCity != "Busan" || b.HotelCountry != "South Korea" {
		t.Fatalf("denormalized hotel fields wrong: %+v", b)
	}
	if b.ID == "" || b.CreatedAt.IsZero() {
		t.Fatalf("missing id or created_at: %+v", b)
	}

	list, err := svc.ListBookings(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != b.ID {
		t.Fatalf("booking not in owner's list: %+v", list)
	}
}

func TestCreateBooking_NewestFirstInList(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := newBookingService(repo, seaviewCatalog(), nil)

	draft := domain.BookingDraft{
		HotelID:    42,
		GuestName:  "Kim Minji",
		GuestEmail: "minji@example.com",
		GuestPhone: "+82 10 0000 0000",
		CheckIn:    futureDate(10),
		CheckOut:   futureDate(12),
		Guests:     1,
	}
	first, err := svc.CreateBooking(context.Background(), "user-1", draft)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := svc.CreateBooking(context.Background(), "user-1", draft)
	if err != nil {
		t.Fatalf("second: %v", err)
	}

	list, _ := svc.ListBookings(context.Background(), "user-1")
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("expected newest first, got %+v", list)
	}
}

func TestCreateBooking_Unauthenticated(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := newBookingService(repo, seaviewCatalog(), nil)

	_, err := svc.CreateBooking(context.Background(), "", domain.BookingDraft{HotelID: 42})
	if !errors.Is(err, domain.ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
	if len(repo.byID) != 0 {
		t.Fatalf("no record may be created without a session")
	}
}

func TestCreateBooking_RejectsBadStays(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := newBookingService(repo, seaviewCatalog(), nil)

	base := domain.BookingDraft{
		HotelID:    42,
		GuestName:  "Kim Minji",
		GuestEmail: "minji@example.com",
		GuestPhone: "+82 10 0000 0000",
		Guests:     1,
	}

	cases := []struct {
		name    string
		in, out time.Time
	}{
		{"checkout before checkin", futureDate(5), futureDate(3)},
		{"same day", futureDate(5), futureDate(5)},
		{"missing checkout", futureDate(5), time.Time{}},
		{"missing checkin", time.Time{}, futureDate(5)},
		{"checkin in the past", futureDate(-2), futureDate(2)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := base
			d.CheckIn, d.CheckOut = tc.in, tc.out
			_, err := svc.CreateBooking(context.Background(), "user-1", d)
			if !domain.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
	if len(repo.byID) != 0 {
		t.Fatalf("invalid stays must never persist")
	}
}

func TestCreateBooking_RejectsMissingContact(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := newBookingService(repo, seaviewCatalog(), nil)

	d := domain.BookingDraft{
		HotelID:  42,
		CheckIn:  futureDate(5),
		CheckOut: futureDate(7),
		Guests:   1,
	}
	d.GuestEmail = "minji@example.com"
	d.GuestPhone = "+82 10 0000 0000"
	// name missing
	if _, err := svc.CreateBooking(context.Background(), "user-1", d); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for missing name, got %v", err)
	}

	d.GuestName = "Kim Minji"
	d.GuestEmail = "not-an-email"
	if _, err := svc.CreateBooking(context.Background(), "user-1", d); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for bad email, got %v", err)
	}
}

func TestCreateBooking_DefaultGuestsIsOne(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := newBookingService(repo, seaviewCatalog(), nil)

	b, err := svc.CreateBooking(context.Background(), "user-1", domain.BookingDraft{
		HotelID:    42,
		GuestName:  "Kim Minji",
		GuestEmail: "minji@example.com",
		GuestPhone: "+82 10 0000 0000",
		CheckIn:    futureDate(5),
		CheckOut:   futureDate(6),
	})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if b.Guests != 1 {
		t.Fatalf("guests = %d, want default 1", b.Guests)
	}
}

func TestCreateBooking_PersistenceFailureSurfaces(t *testing.T) {
	repo := newFakeBookingRepo()
	repo.insertErr = errBoom
	svc := newBookingService(repo, seaviewCatalog(), nil)

	_, err := svc.CreateBooking(context.Background(), "user-1", domain.BookingDraft{
		HotelID:    42,
		GuestName:  "Kim Minji",
		GuestEmail: "minji@example.com",
		GuestPhone: "+82 10 0000 0000",
		CheckIn:    futureDate(5),
		CheckOut:   futureDate(7),
		Guests:     2,
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected wrapped persistence error, got %v", err)
	}
	if domain.IsValidation(err) {
		t.Fatalf("persistence failure must not read as validation")
	}
}

func TestCancelBooking_Lifecycle(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := newBookingService(repo, seaviewCatalog(), nil)

	b, err := svc.CreateBooking(context.Background(), "user-1", domain.BookingDraft{
		HotelID:    42,
		GuestName:  "Kim Minji",
		GuestEmail: "minji@example.com",
		GuestPhone: "+82 10 0000 0000",
		CheckIn:    futureDate(5),
		CheckOut:   futureDate(7),
		Guests:     2,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.CancelBooking(context.Background(), "user-1", b.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got.Status != domain.StatusCancelled {
		t.Fatalf("status = %s, want cancelled", got.Status)
	}
	if got.Editable() {
		t.Fatalf("cancelled booking must not be editable")
	}

	// cancelling twice is an error-free no-op
	again, err := svc.CancelBooking(context.Background(), "user-1", b.ID)
	if err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	if again.Status != domain.StatusCancelled {
		t.Fatalf("second cancel status = %s", again.Status)
	}

	// another user cannot see or cancel it
	if _, err := svc.CancelBooking(context.Background(), "user-2", b.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign booking, got %v", err)
	}
}

func TestCancelBooking_CompletedRejected(t *testing.T) {
	repo := newFakeBookingRepo()
	repo.byID["b1"] = domain.Booking{ID: "b1", UserID: "user-1", Status: domain.StatusCompleted}
	repo.order = []string{"b1"}
	svc := newBookingService(repo, seaviewCatalog(), nil)

	if _, err := svc.CancelBooking(context.Background(), "user-1", "b1"); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRescheduleBooking_UpdatesStayOnly(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := newBookingService(repo, seaviewCatalog(), nil)

	b, err := svc.CreateBooking(context.Background(), "user-1", domain.BookingDraft{
		HotelID:    42,
		GuestName:  "Kim Minji",
		GuestEmail: "minji@example.com",
		GuestPhone: "+82 10 0000 0000",
		CheckIn:    futureDate(5),
		CheckOut:   futureDate(7),
		Guests:     2,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.RescheduleBooking(context.Background(), "user-1", b.ID, domain.BookingChange{
		CheckIn:  futureDate(20),
		CheckOut: futureDate(25),
		Guests:   3,
	})
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if !got.CheckIn.Equal(futureDate(20)) || !got.CheckOut.Equal(futureDate(25)) || got.Guests != 3 {
		t.Fatalf("stay not updated: %+v", got)
	}
	// price stays locked to the original two-night capture
	if got.TotalPrice != b.TotalPrice {
		t.Fatalf("total changed on reschedule: %v -> %v", b.TotalPrice, got.TotalPrice)
	}
	if got.GuestName != b.GuestName || got.GuestEmail != b.GuestEmail || got.GuestPhone != b.GuestPhone {
		t.Fatalf("contact fields changed on reschedule")
	}

	stored := repo.byID[b.ID]
	if stored.TotalPrice != b.TotalPrice || !stored.CheckIn.Equal(futureDate(20)) {
		t.Fatalf("stored row wrong: %+v", stored)
	}
}

func TestRescheduleBooking_InvalidRangeRejected(t *testing.T) {
	repo := newFakeBookingRepo()
	repo.byID["b1"] = domain.Booking{ID: "b1", UserID: "user-1", Status: domain.StatusConfirmed, Guests: 2}
	repo.order = []string{"b1"}
	svc := newBookingService(repo, seaviewCatalog(), nil)

	_, err := svc.RescheduleBooking(context.Background(), "user-1", "b1", domain.BookingChange{
		CheckIn:  futureDate(5),
		CheckOut: futureDate(5),
		Guests:   2,
	})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRescheduleBooking_CancelledRejected(t *testing.T) {
	repo := newFakeBookingRepo()
	repo.byID["b1"] = domain.Booking{ID: "b1", UserID: "user-1", Status: domain.StatusCancelled}
	repo.order = []string{"b1"}
	svc := newBookingService(repo, seaviewCatalog(), nil)

	_, err := svc.RescheduleBooking(context.Background(), "user-1", "b1", domain.BookingChange{
		CheckIn:  futureDate(5),
		CheckOut: futureDate(7),
		Guests:   1,
	})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPrepareBooking_PrefillAndQuote(t *testing.T) {
	profiles := &fakeProfileRepo{profiles: map[string]domain.Profile{
		"user-1": {UserID: "user-1", FullName: "Kim Minji", Email: "minji@example.com", Phone: "+82 10 0000 0000"},
	}}
	svc := newBookingService(newFakeBookingRepo(), seaviewCatalog(), profiles)

	q, err := svc.PrepareBooking(context.Background(), "user-1", 42, futureDate(10), futureDate(13), 2)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if q.GuestName != "Kim Minji" || q.GuestEmail != "minji@example.com" {
		t.Fatalf("prefill wrong: %+v", q)
	}
	if q.Nights != 3 || q.TotalPrice != 600 || !q.Bookable {
		t.Fatalf("quote wrong: %+v", q)
	}
}

func TestPrepareBooking_InvalidRangeNotBookable(t *testing.T) {
	svc := newBookingService(newFakeBookingRepo(), seaviewCatalog(), nil)

	q, err := svc.PrepareBooking(context.Background(), "user-1", 42, futureDate(13), futureDate(10), 1)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if q.Bookable || q.TotalPrice != 0 || q.Nights != 0 {
		t.Fatalf("invalid range must quote 0 and stay disabled: %+v", q)
	}
}

func TestPrepareBooking_MissingProfileIsEmptyPrefill(t *testing.T) {
	svc := newBookingService(newFakeBookingRepo(), seaviewCatalog(), nil)

	q, err := svc.PrepareBooking(context.Background(), "user-1", 42, futureDate(10), futureDate(12), 1)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if q.GuestName != "" || q.GuestEmail != "" || q.GuestPhone != "" {
		t.Fatalf("expected empty prefill, got %+v", q)
	}
	if !q.Bookable {
		t.Fatalf("valid stay should be bookable")
	}
}

func TestPrepareBooking_Unauthenticated(t *testing.T) {
	svc := newBookingService(newFakeBookingRepo(), seaviewCatalog(), nil)
	if _, err := svc.PrepareBooking(context.Background(), "", 42, futureDate(1), futureDate(2), 1); !errors.Is(err, domain.ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
}

func TestGetBooking_OwnerScoped(t *testing.T) {
	repo := newFakeBookingRepo()
	repo.byID["b1"] = domain.Booking{ID: "b1", UserID: "user-1", Status: domain.StatusConfirmed}
	repo.order = []string{"b1"}
	svc := newBookingService(repo, seaviewCatalog(), nil)

	if _, err := svc.GetBooking(context.Background(), "user-1", "b1"); err != nil {
		t.Fatalf("owner read failed: %v", err)
	}
	if _, err := svc.GetBooking(context.Background(), "user-2", "b1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign read must be not found, got %v", err)
	}
}
