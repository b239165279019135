package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/multibrand-site/internal/domain"
	"github.com/multibrand-site/internal/pkg/id"
	"github.com/multibrand-site/internal/pkg/validate"
)

type Service interface {
	List(ctx context.Context, kind domain.Kind) ([]domain.ContentRecord, error)
	Get(ctx context.Context, kind domain.Kind, recordID string) (*domain.ContentRecord, error)
	Create(ctx context.Context, kind domain.Kind, data json.RawMessage) (*domain.ContentRecord, error)
	Update(ctx context.Context, kind domain.Kind, recordID string, patch json.RawMessage) (*domain.ContentRecord, error)
	Delete(ctx context.Context, kind domain.Kind, recordID string) error
}

type contentStore interface {
	Put(ctx context.Context, rec *domain.ContentRecord) error
	Get(ctx context.Context, kind domain.Kind, recordID string) (*domain.ContentRecord, error)
	List(ctx context.Context, kind domain.Kind) ([]domain.ContentRecord, error)
	Update(ctx context.Context, kind domain.Kind, recordID string, data json.RawMessage, updatedAt time.Time) error
	Delete(ctx context.Context, kind domain.Kind, recordID string) error
	MaxOrder(ctx context.Context, kind domain.Kind) (int, error)
}

// sectionCache is told when section records change.
type sectionCache interface {
	Invalidate(ctx context.Context) error
}

type service struct {
	repo     contentStore
	cleaner  domain.TextCleaner
	sections sectionCache
	now      func() time.Time
}

func NewService(repo contentStore, cleaner domain.TextCleaner, sections sectionCache) Service {
	return &service{repo: repo, cleaner: cleaner, sections: sections, now: time.Now}
}

func (s *service) List(ctx context.Context, kind domain.Kind) ([]domain.ContentRecord, error) {
	if _, err := lookup(kind); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, kind)
}

func (s *service) Get(ctx context.Context, kind domain.Kind, recordID string) (*domain.ContentRecord, error) {
	if _, err := lookup(kind); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, kind, recordID)
}

func (s *service) Create(ctx context.Context, kind domain.Kind, data json.RawMessage) (*domain.ContentRecord, error) {
	spec, err := lookup(kind)
	if err != nil {
		return nil, err
	}
	e := spec.newEntity()
	if err := decodeInto(data, e); err != nil {
		return nil, err
	}
	if err := s.normalize(e); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rec := &domain.ContentRecord{Kind: kind, ID: id.NewAt(now), CreatedAt: now, UpdatedAt: now}
	if spec.naturalID != nil {
		rec.ID = spec.naturalID(e)
		if _, err := s.repo.Get(ctx, kind, rec.ID); err == nil {
			return nil, fmt.Errorf("%s %s already exists: %w", kind, rec.ID, domain.ErrConflict)
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	if spec.orderable {
		// Not serialized across concurrent inserts; two racing creates may share an order.
		highest, err := s.repo.MaxOrder(ctx, kind)
		if err != nil {
			return nil, err
		}
		rec.Order = highest + 1
	}
	if rec.Data, err = json.Marshal(e); err != nil {
		return nil, err
	}
	if err := s.repo.Put(ctx, rec); err != nil {
		return nil, err
	}
	s.touched(ctx, kind)
	return rec, nil
}

// Update merges the top-level fields of patch onto the stored entity.
func (s *service) Update(ctx context.Context, kind domain.Kind, recordID string, patch json.RawMessage) (*domain.ContentRecord, error) {
	spec, err := lookup(kind)
	if err != nil {
		return nil, err
	}
	rec, err := s.repo.Get(ctx, kind, recordID)
	if err != nil {
		return nil, err
	}
	e := spec.newEntity()
	if err := json.Unmarshal(rec.Data, e); err != nil {
		return nil, fmt.Errorf("decode stored %s %s: %w", kind, recordID, err)
	}
	if err := decodeInto(patch, e); err != nil {
		return nil, err
	}
	if err := s.normalize(e); err != nil {
		return nil, err
	}
	if spec.naturalID != nil && spec.naturalID(e) != recordID {
		return nil, fmt.Errorf("%s id cannot change: %w", kind, domain.ErrBadRequest)
	}
	if rec.Data, err = json.Marshal(e); err != nil {
		return nil, err
	}
	rec.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, kind, recordID, rec.Data, rec.UpdatedAt); err != nil {
		return nil, err
	}
	s.touched(ctx, kind)
	return rec, nil
}

func (s *service) Delete(ctx context.Context, kind domain.Kind, recordID string) error {
	if _, err := lookup(kind); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, kind, recordID); err != nil {
		return err
	}
	s.touched(ctx, kind)
	return nil
}

func (s *service) normalize(e domain.Entity) error {
	if err := validate.Struct(e); err != nil {
		return err
	}
	return e.Clean(s.cleaner)
}

func (s *service) touched(ctx context.Context, kind domain.Kind) {
	if kind != domain.KindSection || s.sections == nil {
		return
	}
	if err := s.sections.Invalidate(ctx); err != nil {
		slog.Warn("section cache invalidation failed", "error", err)
	}
}

func lookup(kind domain.Kind) (kindSpec, error) {
	spec, ok := kinds[kind]
	if !ok {
		return kindSpec{}, fmt.Errorf("unknown content type %q: %w", kind, domain.ErrBadRequest)
	}
	return spec, nil
}

// decodeInto unmarshals a JSON object onto e, leaving absent fields untouched.
func decodeInto(data json.RawMessage, e domain.Entity) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("data must be a JSON object: %w", domain.ErrBadRequest)
	}
	if err := json.Unmarshal(trimmed, e); err != nil {
		return fmt.Errorf("invalid data: %w", domain.ErrBadRequest)
	}
	return nil
}
