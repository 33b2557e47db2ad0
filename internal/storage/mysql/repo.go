package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	gomysql "github.com/go-sql-driver/mysql"

	"staybook/internal/domain"
)

// Per-aggregate repositories sharing one MySQL handle.

type BookingRepo struct{ db *sql.DB }
type UserRepo struct{ db *sql.DB }
type ProfileRepo struct{ db *sql.DB }
type SessionRepo struct{ db *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }
func NewUserRepo(db *sql.DB) *UserRepo       { return &UserRepo{db: db} }
func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{db: db} }
func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

// ---- bookings ----

func (r *BookingRepo) Insert(ctx context.Context, b domain.Booking) error {
	_, err := r.db.ExecContext(ctx, insertBookingSQL,
		b.ID,
		b.UserID,
		b.HotelID,
		b.HotelName,
		b.HotelImage,
		b.HotelCity,
		b.HotelCountry,
		b.GuestName,
		b.GuestEmail,
		b.GuestPhone,
		domain.FormatDate(b.CheckIn),
		domain.FormatDate(b.CheckOut),
		b.Guests,
		b.TotalPrice,
		string(b.Status),
		b.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (r *BookingRepo) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error {
	res, err := r.db.ExecContext(ctx, updateBookingStatusSQL, string(status), id)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports 0 affected rows for a no-op update too, so re-check
		// existence before calling it missing.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *BookingRepo) UpdateStay(ctx context.Context, id string, checkIn, checkOut time.Time, guests int) error {
	res, err := r.db.ExecContext(ctx, updateBookingStaySQL,
		domain.FormatDate(checkIn), domain.FormatDate(checkOut), guests, id)
	if err != nil {
		return fmt.Errorf("update booking stay: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *BookingRepo) GetByID(ctx context.Context, id string) (domain.Booking, error) {
	row := r.db.QueryRowContext(ctx, getBookingSQL, id)
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return domain.Booking{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Booking{}, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

func (r *BookingRepo) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, listBookingsByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanBooking(row rowScanner) (domain.Booking, error) {
	var (
		b                 domain.Booking
		image             sql.NullString
		city, country     sql.NullString
		checkIn, checkOut string
		status            string
	)
	if err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.HotelID,
		&b.HotelName,
		&image,
		&city,
		&country,
		&b.GuestName,
		&b.GuestEmail,
		&b.GuestPhone,
		&checkIn,
		&checkOut,
		&b.Guests,
		&b.TotalPrice,
		&status,
		&b.CreatedAt,
	); err != nil {
		return domain.Booking{}, err
	}
	b.HotelImage = image.String
	b.HotelCity = city.String
	b.HotelCountry = country.String
	b.Status = domain.BookingStatus(status)

	var err error
	if b.CheckIn, err = domain.ParseDate(datePart(checkIn)); err != nil {
		return domain.Booking{}, err
	}
	if b.CheckOut, err = domain.ParseDate(datePart(checkOut)); err != nil {
		return domain.Booking{}, err
	}
	return b, nil
}

// datePart trims any time suffix a DATE column may carry depending on driver
// settings, keeping only yyyy-MM-dd.
func datePart(s string) string {
	if i := strings.IndexByte(s, ' '); i > 0 {
		return s[:i]
	}
	if i := strings.IndexByte(s, 'T'); i > 0 {
		return s[:i]
	}
	return s
}

// ---- users ----

// Create inserts the user and its profile in one transaction so registration
// never leaves a user without a profile row.
func (r *UserRepo) Create(ctx context.Context, u domain.User, p domain.Profile) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, insertUserSQL, u.ID, u.Email, u.PasswordHash, u.CreatedAt.UTC()); err != nil {
		if isDuplicate(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insertProfileSQL, p.UserID, p.FullName, p.Email, p.Phone); err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return tx.Commit()
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	var u domain.User
	err := r.db.QueryRowContext(ctx, getUserByEmailSQL, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return domain.User{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	var u domain.User
	err := r.db.QueryRowContext(ctx, getUserByIDSQL, id).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return domain.User{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// ---- profiles ----

func (r *ProfileRepo) Get(ctx context.Context, userID string) (domain.Profile, error) {
	var p domain.Profile
	err := r.db.QueryRowContext(ctx, getProfileSQL, userID).
		Scan(&p.UserID, &p.FullName, &p.Email, &p.Phone)
	if err == sql.ErrNoRows {
		return domain.Profile{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (r *ProfileRepo) Update(ctx context.Context, userID, fullName, phone string) error {
	res, err := r.db.ExecContext(ctx, updateProfileSQL, fullName, phone, userID)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.Get(ctx, userID); err != nil {
			return err
		}
	}
	return nil
}

// ---- sessions ----

func (r *SessionRepo) Create(ctx context.Context, s domain.Session) error {
	_, err := r.db.ExecContext(ctx, insertSessionSQL, s.Token, s.UserID, s.ExpiresAt.UTC(), s.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionRepo) Get(ctx context.Context, token string) (domain.Session, error) {
	var s domain.Session
	err := r.db.QueryRowContext(ctx, getSessionSQL, token).
		Scan(&s.Token, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return domain.Session{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	// deleting an absent token is a no-op: sign-out is idempotent
	_, err := r.db.ExecContext(ctx, deleteSessionSQL, token)
	return err
}

// isDuplicate reports whether err is a MySQL duplicate-key violation
// (error 1062, ER_DUP_ENTRY).
func isDuplicate(err error) bool {
	var me *gomysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
