package sharelink

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docnotes/docnotes/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const linkCols = `id, token, resource_type, resource_id, created_by, password_hash,
	max_accesses, access_count, is_revoked, expires_at, created_at`

func (r *repoPG) scanLink(row pgx.Row) (*ShareLink, error) {
	var l ShareLink
	err := row.Scan(&l.ID, &l.Token, &l.ResourceType, &l.ResourceID, &l.CreatedBy,
		&l.PasswordHash, &l.MaxAccesses, &l.AccessCount, &l.IsRevoked, &l.ExpiresAt, &l.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &l, err
}

func (r *repoPG) Create(ctx context.Context, l *ShareLink) error {
	l.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO share_links (id, token, resource_type, resource_id, created_by,
			password_hash, max_accesses, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING access_count, is_revoked, created_at`,
		l.ID, l.Token, l.ResourceType, l.ResourceID, l.CreatedBy,
		l.PasswordHash, l.MaxAccesses, l.ExpiresAt).
		Scan(&l.AccessCount, &l.IsRevoked, &l.CreatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*ShareLink, error) {
	return r.scanLink(r.conn(ctx).QueryRow(ctx, `SELECT `+linkCols+` FROM share_links WHERE id = $1`, id))
}

func (r *repoPG) GetByToken(ctx context.Context, token string) (*ShareLink, error) {
	return r.scanLink(r.conn(ctx).QueryRow(ctx, `SELECT `+linkCols+` FROM share_links WHERE token = $1`, token))
}

func (r *repoPG) ListByResource(ctx context.Context, resourceType string, resourceID uuid.UUID) ([]*ShareLink, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+linkCols+` FROM share_links
		WHERE resource_type = $1 AND resource_id = $2
		ORDER BY created_at DESC`, resourceType, resourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*ShareLink
	for rows.Next() {
		l, err := r.scanLink(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	return items, rows.Err()
}

func (r *repoPG) Revoke(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE share_links SET is_revoked = true WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) IncrementAccess(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE share_links SET access_count = access_count + 1 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
