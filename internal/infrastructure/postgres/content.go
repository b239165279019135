package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/multibrand-site/internal/domain"
)

// ContentRepo stores content records in the content table.
type ContentRepo struct {
	pool *pgxpool.Pool
}

func (r *ContentRepo) Put(ctx context.Context, rec *domain.ContentRecord) error {
	_, err := r.pool.Exec(ctx, `
		insert into content (kind, id, sort_order, data, created_at, updated_at)
		values ($1, $2, $3, $4::jsonb, $5, $6)
		on conflict (kind, id) do update
		set sort_order = excluded.sort_order,
		    data = excluded.data,
		    updated_at = excluded.updated_at
	`, string(rec.Kind), rec.ID, rec.Order, string(rec.Data), rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return mapPgErr(err)
	}
	return nil
}

func (r *ContentRepo) Get(ctx context.Context, kind domain.Kind, recordID string) (*domain.ContentRecord, error) {
	var (
		rec  domain.ContentRecord
		k    string
		data []byte
	)
	err := r.pool.QueryRow(ctx, `
		select kind, id, sort_order, data, created_at, updated_at
		from content
		where kind = $1 and id = $2
	`, string(kind), recordID).Scan(&k, &rec.ID, &rec.Order, &data, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s %s: %w", kind, recordID, domain.ErrNotFound)
		}
		return nil, mapPgErr(err)
	}
	rec.Kind = domain.Kind(k)
	rec.Data = json.RawMessage(data)
	return &rec, nil
}

func (r *ContentRepo) List(ctx context.Context, kind domain.Kind) ([]domain.ContentRecord, error) {
	rows, err := r.pool.Query(ctx, `
		select kind, id, sort_order, data, created_at, updated_at
		from content
		where kind = $1
		order by sort_order asc, id asc
	`, string(kind))
	if err != nil {
		return nil, mapPgErr(err)
	}
	defer rows.Close()

	out := []domain.ContentRecord{}
	for rows.Next() {
		var (
			rec  domain.ContentRecord
			k    string
			data []byte
		)
		if err := rows.Scan(&k, &rec.ID, &rec.Order, &data, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, mapPgErr(err)
		}
		rec.Kind = domain.Kind(k)
		rec.Data = json.RawMessage(data)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgErr(err)
	}
	return out, nil
}

func (r *ContentRepo) Update(ctx context.Context, kind domain.Kind, recordID string, data json.RawMessage, updatedAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		update content
		set data = $3::jsonb, updated_at = $4
		where kind = $1 and id = $2
	`, string(kind), recordID, string(data), updatedAt)
	if err != nil {
		return mapPgErr(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", kind, recordID, domain.ErrNotFound)
	}
	return nil
}

func (r *ContentRepo) Delete(ctx context.Context, kind domain.Kind, recordID string) error {
	tag, err := r.pool.Exec(ctx, `delete from content where kind = $1 and id = $2`, string(kind), recordID)
	if err != nil {
		return mapPgErr(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", kind, recordID, domain.ErrNotFound)
	}
	return nil
}

func (r *ContentRepo) MaxOrder(ctx context.Context, kind domain.Kind) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		select coalesce(max(sort_order), 0) from content where kind = $1
	`, string(kind)).Scan(&n)
	if err != nil {
		return 0, mapPgErr(err)
	}
	return n, nil
}
