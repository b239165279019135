package http

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/multibrand-site/internal/domain"
	"github.com/multibrand-site/internal/infrastructure/google"
)

// DownloadRepository is the minimal interface the router requires from a download request store.
type DownloadRepository interface {
	Put(ctx context.Context, d *domain.DownloadRequest) error
	Delete(ctx context.Context, requestID string) error
	Count(ctx context.Context) (int, error)
	CountActive(ctx context.Context, now time.Time) (int, error)
	// Redeem marks the oldest active request carrying pin as used in a single
	// conditional write. It returns domain.ErrNotFound when nothing was claimed.
	Redeem(ctx context.Context, pin string, now time.Time) (*domain.DownloadRequest, error)
	DeleteStale(ctx context.Context, now time.Time) (int, error)
}

// ContentRepository is the minimal interface the router requires from a content store.
type ContentRepository interface {
	Put(ctx context.Context, rec *domain.ContentRecord) error
	Get(ctx context.Context, kind domain.Kind, recordID string) (*domain.ContentRecord, error)
	// List returns every record of kind sorted by order, then id.
	List(ctx context.Context, kind domain.Kind) ([]domain.ContentRecord, error)
	Update(ctx context.Context, kind domain.Kind, recordID string, data json.RawMessage, updatedAt time.Time) error
	Delete(ctx context.Context, kind domain.Kind, recordID string) error
	MaxOrder(ctx context.Context, kind domain.Kind) (int, error)
}

// ObjectStore is the minimal interface the router requires from an object storage backend.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	PublicURL(key string) string
}

// Notifier delivers operator notifications (PINs, contact messages).
type Notifier interface {
	Notify(ctx context.Context, subject, body string) error
}

// GoogleVerifier checks Google ID tokens.
type GoogleVerifier interface {
	Verify(ctx context.Context, token string) (*google.Payload, error)
}
