package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/multibrand-site/internal/domain"
)

// Store owns the connection pool shared by the PostgreSQL repos.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	// Ping to fail fast.
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Downloads() *DownloadRepo { return &DownloadRepo{pool: s.pool} }

func (s *Store) Content() *ContentRepo { return &ContentRepo{pool: s.pool} }

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

const schema = `
create table if not exists download_requests (
	id          text primary key,
	pin         text not null,
	expires_at  bigint not null,
	used        boolean not null default false,
	created_at  timestamptz not null default now()
);
create index if not exists download_requests_pin_idx on download_requests (pin) where used = false;

create table if not exists content (
	kind        text not null,
	id          text not null,
	sort_order  integer not null default 0,
	data        jsonb not null,
	created_at  timestamptz not null default now(),
	updated_at  timestamptz not null default now(),
	primary key (kind, id)
);
`

// Migrate creates the tables when they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", mapPgErr(err))
	}
	return nil
}

func mapPgErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return domain.ErrConflict
		case "23503":
			return domain.ErrNotFound
		default:
			return fmt.Errorf("db_error %s: %s", pgErr.Code, pgErr.Message)
		}
	}
	return err
}
