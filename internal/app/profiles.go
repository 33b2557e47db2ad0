package app

import (
	"context"
	"strings"

	"staybook/internal/domain"
)

// ProfileService reads and writes the owner's contact profile. Email stays
// as set at signup; only name and phone may change.
type ProfileService struct {
	profiles domain.ProfileRepository
}

func NewProfileService(p domain.ProfileRepository) *ProfileService {
	return &ProfileService{profiles: p}
}

func (s *ProfileService) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	if userID == "" {
		return domain.Profile{}, domain.ErrAuthRequired
	}
	return s.profiles.Get(ctx, userID)
}

func (s *ProfileService) UpdateProfile(ctx context.Context, userID, fullName, phone string) (domain.Profile, error) {
	if userID == "" {
		return domain.Profile{}, domain.ErrAuthRequired
	}
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return domain.Profile{}, domain.Validation("fullName", "required")
	}
	if err := s.profiles.Update(ctx, userID, fullName, strings.TrimSpace(phone)); err != nil {
		return domain.Profile{}, err
	}
	return s.profiles.Get(ctx, userID)
}
