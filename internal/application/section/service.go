package section

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/multibrand-site/internal/domain"
)

const cacheKey = "sections:index"

type Service interface {
	// Index returns every section keyed by its page slot.
	Index(ctx context.Context) (map[string]domain.Section, error)
	Invalidate(ctx context.Context) error
}

type sectionLister interface {
	List(ctx context.Context, kind domain.Kind) ([]domain.ContentRecord, error)
}

type cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type service struct {
	repo  sectionLister
	cache cache
	ttl   time.Duration
}

func NewService(repo sectionLister, c cache, ttl time.Duration) Service {
	return &service{repo: repo, cache: c, ttl: ttl}
}

func (s *service) Index(ctx context.Context) (map[string]domain.Section, error) {
	if raw, err := s.cache.Get(ctx, cacheKey); err != nil {
		slog.Warn("section cache read failed", "error", err)
	} else if raw != "" {
		var idx map[string]domain.Section
		if err := json.Unmarshal([]byte(raw), &idx); err == nil {
			return idx, nil
		}
		slog.Warn("discarding corrupt section cache entry")
	}

	records, err := s.repo.List(ctx, domain.KindSection)
	if err != nil {
		return nil, err
	}
	idx := make(map[string]domain.Section, len(records))
	for _, rec := range records {
		var sec domain.Section
		if err := json.Unmarshal(rec.Data, &sec); err != nil {
			return nil, fmt.Errorf("decode section %s: %w", rec.ID, err)
		}
		idx[sec.Key] = sec
	}

	if b, err := json.Marshal(idx); err == nil {
		if err := s.cache.Set(ctx, cacheKey, string(b), s.ttl); err != nil {
			slog.Warn("section cache write failed", "error", err)
		}
	}
	return idx, nil
}

func (s *service) Invalidate(ctx context.Context) error {
	return s.cache.Delete(ctx, cacheKey)
}
