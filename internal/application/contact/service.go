package contact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/multibrand-site/internal/domain"
	"github.com/multibrand-site/internal/pkg/id"
	"github.com/multibrand-site/internal/pkg/validate"
)

type Service interface {
	Submit(ctx context.Context, msg domain.ContactMessage) (*domain.ContentRecord, error)
	Subscribe(ctx context.Context, email string) error
	ListMessages(ctx context.Context) ([]domain.ContentRecord, error)
	DeleteMessage(ctx context.Context, messageID string) error
	ListSubscribers(ctx context.Context) ([]domain.ContentRecord, error)
}

type contentStore interface {
	Put(ctx context.Context, rec *domain.ContentRecord) error
	Get(ctx context.Context, kind domain.Kind, recordID string) (*domain.ContentRecord, error)
	List(ctx context.Context, kind domain.Kind) ([]domain.ContentRecord, error)
	Delete(ctx context.Context, kind domain.Kind, recordID string) error
}

type notifier interface {
	Notify(ctx context.Context, subject, body string) error
}

type service struct {
	repo     contentStore
	notifier notifier
	cleaner  domain.TextCleaner
	now      func() time.Time
}

func NewService(repo contentStore, n notifier, cleaner domain.TextCleaner) Service {
	return &service{repo: repo, notifier: n, cleaner: cleaner, now: time.Now}
}

func (s *service) Submit(ctx context.Context, msg domain.ContactMessage) (*domain.ContentRecord, error) {
	msg.Email = strings.TrimSpace(msg.Email)
	if err := validate.Struct(msg); err != nil {
		return nil, err
	}
	if err := msg.Clean(s.cleaner); err != nil {
		return nil, err
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	rec := &domain.ContentRecord{
		Kind:      domain.KindMessage,
		ID:        id.NewAt(now),
		Data:      data,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Put(ctx, rec); err != nil {
		return nil, err
	}

	subject := fmt.Sprintf("Contact form: %s", msg.Name)
	if msg.Brand != "" {
		subject += " (" + msg.Brand + ")"
	}
	body := fmt.Sprintf("From: %s <%s>\nPhone: %s\n\n%s\n", msg.Name, msg.Email, msg.Phone, msg.Body)
	if err := s.notifier.Notify(ctx, subject, body); err != nil {
		slog.Warn("contact notification failed", "message_id", rec.ID, "error", err)
	}
	return rec, nil
}

// Subscribe records email once; repeated sign-ups are no-ops.
func (s *service) Subscribe(ctx context.Context, email string) error {
	sub := domain.Subscriber{Email: strings.ToLower(strings.TrimSpace(email))}
	if err := validate.Struct(sub); err != nil {
		return err
	}
	if _, err := s.repo.Get(ctx, domain.KindSubscriber, sub.Email); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	data, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	return s.repo.Put(ctx, &domain.ContentRecord{
		Kind:      domain.KindSubscriber,
		ID:        sub.Email,
		Data:      data,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (s *service) ListMessages(ctx context.Context) ([]domain.ContentRecord, error) {
	return s.repo.List(ctx, domain.KindMessage)
}

func (s *service) DeleteMessage(ctx context.Context, messageID string) error {
	return s.repo.Delete(ctx, domain.KindMessage, messageID)
}

func (s *service) ListSubscribers(ctx context.Context) ([]domain.ContentRecord, error) {
	return s.repo.List(ctx, domain.KindSubscriber)
}
