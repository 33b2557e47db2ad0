package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"staybook/internal/domain"
)

const minPasswordLen = 6

// SessionService backs sign-up, sign-in and the per-request user lookup.
// Sessions are opaque server-side tokens; callers pass the token explicitly,
// there is no ambient current-user state.
type SessionService struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	ttl      time.Duration
	validate *validator.Validate
	now      func() time.Time
}

func NewSessionService(u domain.UserRepository, s domain.SessionRepository, ttl time.Duration) *SessionService {
	return &SessionService{
		users:    u,
		sessions: s,
		ttl:      ttl,
		validate: validator.New(),
		now:      time.Now,
	}
}

// SignUp registers a user, creates the paired profile row and signs the new
// user in.
func (s *SessionService) SignUp(ctx context.Context, email, password, fullName string) (domain.Session, domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.validate.Var(email, "required,email"); err != nil {
		return domain.Session{}, domain.User{}, domain.Validation("email", "must be a valid email address")
	}
	if len(password) < minPasswordLen {
		return domain.Session{}, domain.User{}, domain.Validation("password", fmt.Sprintf("must be at least %d characters", minPasswordLen))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Session{}, domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	p := domain.Profile{
		UserID:   u.ID,
		FullName: strings.TrimSpace(fullName),
		Email:    email, // immutable from here on
	}
	if err := s.users.Create(ctx, u, p); err != nil {
		return domain.Session{}, domain.User{}, err
	}
	sess, err := s.issueSession(ctx, u.ID)
	if err != nil {
		return domain.Session{}, domain.User{}, err
	}
	return sess, u, nil
}

func (s *SessionService) SignIn(ctx context.Context, email, password string) (domain.Session, domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Session{}, domain.User{}, domain.ErrInvalidCredentials
		}
		return domain.Session{}, domain.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return domain.Session{}, domain.User{}, domain.ErrInvalidCredentials
	}
	sess, err := s.issueSession(ctx, u.ID)
	if err != nil {
		return domain.Session{}, domain.User{}, err
	}
	return sess, u, nil
}

// SignOut is idempotent: an unknown or already-removed token is not an error.
func (s *SessionService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// CurrentUser resolves the session token to its user. Missing, unknown or
// expired tokens yield ErrAuthRequired; expired sessions are removed on
// sight.
func (s *SessionService) CurrentUser(ctx context.Context, token string) (domain.User, error) {
	if token == "" {
		return domain.User{}, domain.ErrAuthRequired
	}
	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, domain.ErrAuthRequired
		}
		return domain.User{}, err
	}
	if sess.Expired(s.now()) {
		_ = s.sessions.Delete(ctx, token)
		return domain.User{}, domain.ErrAuthRequired
	}
	u, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, domain.ErrAuthRequired
		}
		return domain.User{}, err
	}
	return u, nil
}

func (s *SessionService) issueSession(ctx context.Context, userID string) (domain.Session, error) {
	now := s.now().UTC()
	sess := domain.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return domain.Session{}, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}
