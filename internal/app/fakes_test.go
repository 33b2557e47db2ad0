package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"staybook/internal/domain"
)

// ---- fakes ----

type fakeBookingRepo struct {
	byID      map[string]domain.Booking
	order     []string // insertion order; List returns newest first
	insertErr error
	updateErr error
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{byID: map[string]domain.Booking{}}
}

func (f *fakeBookingRepo) Insert(ctx context.Context, b domain.Booking) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.byID[b.ID] = b
	f.order = append(f.order, b.ID)
	return nil
}

func (f *fakeBookingRepo) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	b, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	b.Status = status
	f.byID[id] = b
	return nil
}

func (f *fakeBookingRepo) UpdateStay(ctx context.Context, id string, checkIn, checkOut time.Time, guests int) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	b, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	b.CheckIn, b.CheckOut, b.Guests = checkIn, checkOut, guests
	f.byID[id] = b
	return nil
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id string) (domain.Booking, error) {
	b, ok := f.byID[id]
	if !ok {
		return domain.Booking{}, domain.ErrNotFound
	}
	return b, nil
}

func (f *fakeBookingRepo) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	var out []domain.Booking
	for i := len(f.order) - 1; i >= 0; i-- {
		if b := f.byID[f.order[i]]; b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeCatalog struct {
	hotels map[int64]domain.Hotel
	err    error
	calls  int
}

func (f *fakeCatalog) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	f.calls++
	if f.err != nil {
		return domain.Hotel{}, f.err
	}
	h, ok := f.hotels[id]
	if !ok {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return h, nil
}

func (f *fakeCatalog) ListHotels(ctx context.Context, q domain.SearchFilters) ([]domain.Hotel, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := []domain.Hotel{}
	for _, h := range f.hotels {
		out = append(out, h)
	}
	return out, nil
}

func (f *fakeCatalog) SearchHotels(ctx context.Context, q string) ([]domain.Hotel, error) {
	return f.ListHotels(ctx, domain.SearchFilters{})
}

type fakeProfileRepo struct {
	profiles map[string]domain.Profile
}

func (f *fakeProfileRepo) Get(ctx context.Context, userID string) (domain.Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return domain.Profile{}, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakeProfileRepo) Update(ctx context.Context, userID, fullName, phone string) error {
	p, ok := f.profiles[userID]
	if !ok {
		return domain.ErrNotFound
	}
	p.FullName, p.Phone = fullName, phone
	f.profiles[userID] = p
	return nil
}

type fakeUserRepo struct {
	byEmail  map[string]domain.User
	profiles *fakeProfileRepo
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail:  map[string]domain.User{},
		profiles: &fakeProfileRepo{profiles: map[string]domain.Profile{}},
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, u domain.User, p domain.Profile) error {
	if _, ok := f.byEmail[u.Email]; ok {
		return domain.ErrEmailTaken
	}
	f.byEmail[u.Email] = u
	f.profiles.profiles[p.UserID] = p
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

type fakeSessionRepo struct {
	sessions map[string]domain.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]domain.Session{}}
}

func (f *fakeSessionRepo) Create(ctx context.Context, s domain.Session) error {
	f.sessions[s.Token] = s
	return nil
}

func (f *fakeSessionRepo) Get(ctx context.Context, token string) (domain.Session, error) {
	s, ok := f.sessions[token]
	if !ok {
		return domain.Session{}, domain.ErrNotFound
	}
	return s, nil
}

func (f *fakeSessionRepo) Delete(ctx context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

// fakeCache round-trips values through JSON so cached entries cannot alias
// the caller's memory, same as the real Redis adapter.
type fakeCache struct {
	store map[string][]byte
}

func newFakeCache() *fakeCache { return &fakeCache{store: map[string][]byte{}} }

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

// ---- helpers ----

var errBoom = errors.New("boom")

func futureDate(days int) time.Time {
	y, m, d := time.Now().UTC().AddDate(0, 0, days).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
