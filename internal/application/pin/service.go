package pin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/multibrand-site/internal/config"
	"github.com/multibrand-site/internal/domain"
	"github.com/multibrand-site/internal/pkg/id"
	pkgpin "github.com/multibrand-site/internal/pkg/pin"
)

// IssuedMessage is returned to the visitor after a PIN has been sent to the operator.
const IssuedMessage = "A download PIN has been sent to our team. Contact us to receive it."

// ErrNotificationFailed is returned by Issue when the operator could not be notified.
var ErrNotificationFailed = errors.New("pin notification failed")

type Service interface {
	Issue(ctx context.Context) (string, error)
	Redeem(ctx context.Context, code string) (string, error)
	Cleanup(ctx context.Context) (int, error)
}

type downloadStore interface {
	Put(ctx context.Context, d *domain.DownloadRequest) error
	Delete(ctx context.Context, requestID string) error
	Count(ctx context.Context) (int, error)
	CountActive(ctx context.Context, now time.Time) (int, error)
	Redeem(ctx context.Context, pin string, now time.Time) (*domain.DownloadRequest, error)
	DeleteStale(ctx context.Context, now time.Time) (int, error)
}

type notifier interface {
	Notify(ctx context.Context, subject, body string) error
}

type presigner interface {
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type service struct {
	repo      downloadStore
	notifier  notifier
	presigner presigner
	cfg       config.PINConfig
	assetKey  string
	urlExpiry time.Duration
	generate  func() (string, error)
	now       func() time.Time
}

func NewService(repo downloadStore, n notifier, p presigner, cfg *config.Config) Service {
	return &service{
		repo:      repo,
		notifier:  n,
		presigner: p,
		cfg:       cfg.PIN,
		assetKey:  cfg.GatedAssetKey,
		urlExpiry: cfg.DownloadURLExpiry,
		generate:  pkgpin.Generate,
		now:       time.Now,
	}
}

func (s *service) Issue(ctx context.Context) (string, error) {
	now := s.now()

	active, err := s.repo.CountActive(ctx, now)
	if err != nil {
		return "", fmt.Errorf("count active requests: %w", err)
	}
	if active >= s.cfg.ActiveWatermark {
		if n, err := s.repo.DeleteStale(ctx, now); err != nil {
			slog.Warn("pre-issue cleanup failed", "error", err)
		} else {
			slog.Info("pre-issue cleanup", "deleted", n, "active", active)
		}
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return "", fmt.Errorf("count requests: %w", err)
	}
	if total >= s.cfg.Capacity {
		return "", fmt.Errorf("%d download requests outstanding: %w", total, domain.ErrCapacityExceeded)
	}

	code, err := s.generate()
	if err != nil {
		return "", err
	}
	req := &domain.DownloadRequest{
		ID:        id.NewAt(now),
		PIN:       code,
		ExpiresAt: now.Add(s.cfg.TTL).Unix(),
		CreatedAt: now.UTC(),
	}
	if err := s.repo.Put(ctx, req); err != nil {
		return "", fmt.Errorf("persist download request: %w", err)
	}

	expires := time.Unix(req.ExpiresAt, 0).UTC()
	body := fmt.Sprintf("A visitor requested the gated download.\n\nPIN: %s\nValid until: %s\n",
		code, expires.Format("2006-01-02 15:04 MST"))
	if err := s.notifier.Notify(ctx, "Download PIN requested", body); err != nil {
		if s.cfg.RollbackOnNotifyFailure {
			if derr := s.repo.Delete(ctx, req.ID); derr != nil {
				slog.Error("pin rollback failed", "request_id", req.ID, "error", derr)
			}
		}
		return "", fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}
	return IssuedMessage, nil
}

func (s *service) Redeem(ctx context.Context, code string) (string, error) {
	if !pkgpin.Valid(code) {
		return "", domain.ErrInvalidPin
	}
	req, err := s.repo.Redeem(ctx, code, s.now())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrInvalidPin
		}
		return "", fmt.Errorf("redeem pin: %w", err)
	}
	url, err := s.presigner.PresignedURL(ctx, s.assetKey, s.urlExpiry)
	if err != nil {
		return "", fmt.Errorf("presign gated asset for request %s: %w", req.ID, err)
	}
	return url, nil
}

func (s *service) Cleanup(ctx context.Context) (int, error) {
	n, err := s.repo.DeleteStale(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("delete stale requests: %w", err)
	}
	return n, nil
}
