package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/multibrand-site/internal/domain"
)

// DownloadRepo stores download requests in the download_requests table.
type DownloadRepo struct {
	pool *pgxpool.Pool
}

func (r *DownloadRepo) Put(ctx context.Context, d *domain.DownloadRequest) error {
	_, err := r.pool.Exec(ctx, `
		insert into download_requests (id, pin, expires_at, used, created_at)
		values ($1, $2, $3, $4, $5)
	`, d.ID, d.PIN, d.ExpiresAt, d.Used, d.CreatedAt)
	if err != nil {
		return mapPgErr(err)
	}
	return nil
}

func (r *DownloadRepo) Delete(ctx context.Context, requestID string) error {
	_, err := r.pool.Exec(ctx, `delete from download_requests where id = $1`, requestID)
	if err != nil {
		return mapPgErr(err)
	}
	return nil
}

func (r *DownloadRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `select count(*) from download_requests`).Scan(&n); err != nil {
		return 0, mapPgErr(err)
	}
	return n, nil
}

func (r *DownloadRepo) CountActive(ctx context.Context, now time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		select count(*) from download_requests
		where used = false and expires_at > $1
	`, now.Unix()).Scan(&n)
	if err != nil {
		return 0, mapPgErr(err)
	}
	return n, nil
}

// Redeem marks the oldest active request holding pin as used in a single statement.
// Concurrent callers racing for the same row are serialized by the row lock; the loser gets ErrNotFound.
func (r *DownloadRepo) Redeem(ctx context.Context, pin string, now time.Time) (*domain.DownloadRequest, error) {
	var d domain.DownloadRequest
	err := r.pool.QueryRow(ctx, `
		update download_requests
		set used = true
		where id = (
			select id from download_requests
			where pin = $1 and used = false and expires_at > $2
			order by created_at, id
			limit 1
			for update skip locked
		)
		  and used = false
		returning id, pin, expires_at, used, created_at
	`, pin, now.Unix()).Scan(&d.ID, &d.PIN, &d.ExpiresAt, &d.Used, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, mapPgErr(err)
	}
	return &d, nil
}

func (r *DownloadRepo) DeleteStale(ctx context.Context, now time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		delete from download_requests
		where used = true or expires_at < $1
	`, now.Unix())
	if err != nil {
		return 0, mapPgErr(err)
	}
	return int(tag.RowsAffected()), nil
}
