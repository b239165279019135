package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/multibrand-site/internal/domain"
)

type contentKey struct {
	kind domain.Kind
	id   string
}

// Store keeps download requests and content records in process memory.
// It backs local development and tests; data is lost on restart.
type Store struct {
	mu sync.Mutex

	downloads map[string]domain.DownloadRequest
	content   map[contentKey]domain.ContentRecord
}

func NewStore() *Store {
	return &Store{
		downloads: make(map[string]domain.DownloadRequest),
		content:   make(map[contentKey]domain.ContentRecord),
	}
}

func (s *Store) Downloads() *DownloadRepo { return &DownloadRepo{s: s} }

func (s *Store) Content() *ContentRepo { return &ContentRepo{s: s} }

// DownloadRepo is the download request view of a Store.
type DownloadRepo struct {
	s *Store
}

func (r *DownloadRepo) Put(_ context.Context, d *domain.DownloadRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.downloads[d.ID] = *d
	return nil
}

func (r *DownloadRepo) Delete(_ context.Context, requestID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.downloads, requestID)
	return nil
}

func (r *DownloadRepo) Count(_ context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return len(r.s.downloads), nil
}

func (r *DownloadRepo) CountActive(_ context.Context, now time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := 0
	for _, d := range r.s.downloads {
		if d.Active(now) {
			n++
		}
	}
	return n, nil
}

// Redeem marks the oldest active request holding pin as used.
func (r *DownloadRepo) Redeem(_ context.Context, pin string, now time.Time) (*domain.DownloadRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var match *domain.DownloadRequest
	for _, d := range r.s.downloads {
		if d.PIN != pin || !d.Active(now) {
			continue
		}
		if match == nil || d.CreatedAt.Before(match.CreatedAt) ||
			(d.CreatedAt.Equal(match.CreatedAt) && d.ID < match.ID) {
			d := d
			match = &d
		}
	}
	if match == nil {
		return nil, domain.ErrNotFound
	}
	match.Used = true
	r.s.downloads[match.ID] = *match
	return match, nil
}

func (r *DownloadRepo) DeleteStale(_ context.Context, now time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := 0
	for id, d := range r.s.downloads {
		if d.Stale(now) {
			delete(r.s.downloads, id)
			n++
		}
	}
	return n, nil
}

// ContentRepo is the content record view of a Store.
type ContentRepo struct {
	s *Store
}

func (r *ContentRepo) Put(_ context.Context, rec *domain.ContentRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cp := *rec
	cp.Data = append(json.RawMessage(nil), rec.Data...)
	r.s.content[contentKey{rec.Kind, rec.ID}] = cp
	return nil
}

func (r *ContentRepo) Get(_ context.Context, kind domain.Kind, recordID string) (*domain.ContentRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.content[contentKey{kind, recordID}]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", kind, recordID, domain.ErrNotFound)
	}
	return &rec, nil
}

func (r *ContentRepo) List(_ context.Context, kind domain.Kind) ([]domain.ContentRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []domain.ContentRecord{}
	for k, rec := range r.s.content {
		if k.kind == kind {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *ContentRepo) Update(_ context.Context, kind domain.Kind, recordID string, data json.RawMessage, updatedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := contentKey{kind, recordID}
	rec, ok := r.s.content[k]
	if !ok {
		return fmt.Errorf("%s %s: %w", kind, recordID, domain.ErrNotFound)
	}
	rec.Data = append(json.RawMessage(nil), data...)
	rec.UpdatedAt = updatedAt
	r.s.content[k] = rec
	return nil
}

func (r *ContentRepo) Delete(_ context.Context, kind domain.Kind, recordID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := contentKey{kind, recordID}
	if _, ok := r.s.content[k]; !ok {
		return fmt.Errorf("%s %s: %w", kind, recordID, domain.ErrNotFound)
	}
	delete(r.s.content, k)
	return nil
}

func (r *ContentRepo) MaxOrder(_ context.Context, kind domain.Kind) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	highest := 0
	for k, rec := range r.s.content {
		if k.kind == kind && rec.Order > highest {
			highest = rec.Order
		}
	}
	return highest, nil
}
