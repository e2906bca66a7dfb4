package auditlog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docnotes/docnotes/internal/platform/audit"
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

func (r *repoPG) Insert(ctx context.Context, e audit.Entry) error {
	var userID *uuid.UUID
	if e.ActorID != uuid.Nil {
		userID = &e.ActorID
	}
	var ip, ua *string
	if e.IPAddress != "" {
		ip = &e.IPAddress
	}
	if e.UserAgent != "" {
		ua = &e.UserAgent
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO audit_logs (id, user_id, action, resource, resource_id, ip_address, user_agent)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		uuid.New(), userID, e.Action, e.Resource, e.ResourceID, ip, ua)
	return err
}

const logCols = `id, user_id, action, resource, resource_id, ip_address, user_agent, created_at`

func (r *repoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*LogEntry, int, error) {
	where := `WHERE 1=1`
	args := []interface{}{}
	add := func(clause string, v interface{}) {
		args = append(args, v)
		where += fmt.Sprintf(clause, len(args))
	}
	if f.UserID != nil {
		add(` AND user_id = $%d`, *f.UserID)
	}
	if f.Action != nil {
		add(` AND action = $%d`, *f.Action)
	}
	if f.Resource != nil {
		add(` AND resource = $%d`, *f.Resource)
	}
	if f.From != nil {
		add(` AND created_at >= $%d`, *f.From)
	}
	if f.To != nil {
		add(` AND created_at < $%d`, *f.To)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM audit_logs `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM audit_logs %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		logCols, where, len(args)+1, len(args)+2)
	rows, err := r.conn(ctx).Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*LogEntry
	for rows.Next() {
		var e LogEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Resource, &e.ResourceID,
			&e.IPAddress, &e.UserAgent, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &e)
	}
	return items, total, rows.Err()
}
