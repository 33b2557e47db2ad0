package domain

import (
	"context"
	"time"
)

type BookingRepository interface {
	// Write paths
	Insert(ctx context.Context, b Booking) error
	UpdateStatus(ctx context.Context, id string, status BookingStatus) error
	UpdateStay(ctx context.Context, id string, checkIn, checkOut time.Time, guests int) error

	// Read paths
	GetByID(ctx context.Context, id string) (Booking, error)
	ListByUser(ctx context.Context, userID string) ([]Booking, error)
}

type UserRepository interface {
	Create(ctx context.Context, u User, p Profile) error
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
}

type ProfileRepository interface {
	Get(ctx context.Context, userID string) (Profile, error)
	Update(ctx context.Context, userID, fullName, phone string) error
}

type SessionRepository interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, token string) (Session, error)
	Delete(ctx context.Context, token string) error
}

type CatalogClient interface {
	ListHotels(ctx context.Context, f SearchFilters) ([]Hotel, error)
	GetHotel(ctx context.Context, id int64) (Hotel, error)
	SearchHotels(ctx context.Context, q string) ([]Hotel, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
