package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"staybook/internal/domain"
)

// CatalogService serves hotel reads through a cache in front of the remote
// catalog. Bookings never invalidate these keys: hotel data is owned and
// mutated only by the catalog backend, so entries just age out.
type CatalogService struct {
	catalog  domain.CatalogClient
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewCatalogService(c domain.CatalogClient, cache domain.Cache, ttl time.Duration) *CatalogService {
	return &CatalogService{catalog: c, cache: cache, cacheTTL: ttl}
}

func (s *CatalogService) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	key := fmt.Sprintf("hotel:%d", id)
	var h domain.Hotel
	if ok, _ := s.cache.Get(ctx, key, &h); ok {
		return h, nil
	}
	h, err := s.catalog.GetHotel(ctx, id)
	if err != nil {
		return domain.Hotel{}, err
	}
	_ = s.cache.Set(ctx, key, h, int(s.cacheTTL.Seconds()))
	return h, nil
}

func (s *CatalogService) ListHotels(ctx context.Context, f domain.SearchFilters) ([]domain.Hotel, error) {
	key := "hotels:" + filtersKey(f)
	var out []domain.Hotel
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	hotels, err := s.catalog.ListHotels(ctx, f)
	if err != nil {
		return nil, err
	}
	// copy slice to avoid aliasing the client's backing array
	cp := append([]domain.Hotel(nil), hotels...)
	_ = s.cache.Set(ctx, key, cp, int(s.cacheTTL.Seconds()))
	return cp, nil
}

func (s *CatalogService) SearchHotels(ctx context.Context, q string) ([]domain.Hotel, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return s.ListHotels(ctx, domain.SearchFilters{})
	}
	key := "search:" + strings.ToLower(q)
	var out []domain.Hotel
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	hotels, err := s.catalog.SearchHotels(ctx, q)
	if err != nil {
		return nil, err
	}
	cp := append([]domain.Hotel(nil), hotels...)
	_ = s.cache.Set(ctx, key, cp, int(s.cacheTTL.Seconds()))
	return cp, nil
}

// filtersKey builds a stable cache key from the set filter fields.
func filtersKey(f domain.SearchFilters) string {
	if f.IsZero() {
		return "all"
	}
	var b strings.Builder
	if f.City != nil {
		fmt.Fprintf(&b, "city=%s;", strings.ToLower(*f.City))
	}
	if f.CheckIn != nil {
		fmt.Fprintf(&b, "in=%s;", *f.CheckIn)
	}
	if f.CheckOut != nil {
		fmt.Fprintf(&b, "out=%s;", *f.CheckOut)
	}
	if f.Guests != nil {
		fmt.Fprintf(&b, "g=%d;", *f.Guests)
	}
	if f.MinPrice != nil {
		fmt.Fprintf(&b, "min=%g;", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		fmt.Fprintf(&b, "max=%g;", *f.MaxPrice)
	}
	sum := sha1.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
