package medicalrecord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

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

const recordCols = `id, patient_id, provider_id, type, title, subjective, objective, assessment, plan,
	vitals, diagnoses, version, parent_id, created_at`

func (r *repoPG) scanRecord(row pgx.Row) (*MedicalRecord, error) {
	var m MedicalRecord
	var vitals, diagnoses []byte
	err := row.Scan(&m.ID, &m.PatientID, &m.ProviderID, &m.Type, &m.Title,
		&m.Subjective, &m.Objective, &m.Assessment, &m.Plan,
		&vitals, &diagnoses, &m.Version, &m.ParentID, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(vitals) > 0 {
		if err := json.Unmarshal(vitals, &m.Vitals); err != nil {
			return nil, fmt.Errorf("decode vitals: %w", err)
		}
	}
	if len(diagnoses) > 0 {
		if err := json.Unmarshal(diagnoses, &m.Diagnoses); err != nil {
			return nil, fmt.Errorf("decode diagnoses: %w", err)
		}
	}
	return &m, nil
}

func (r *repoPG) Create(ctx context.Context, m *MedicalRecord) error {
	m.ID = uuid.New()
	var vitals interface{}
	if m.Vitals != nil {
		b, err := json.Marshal(m.Vitals)
		if err != nil {
			return err
		}
		vitals = b
	}
	diagnoses, err := json.Marshal(m.Diagnoses)
	if err != nil {
		return err
	}
	if m.Diagnoses == nil {
		diagnoses = []byte("[]")
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO medical_records (id, patient_id, provider_id, type, title,
			subjective, objective, assessment, plan, vitals, diagnoses, version, parent_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING created_at`,
		m.ID, m.PatientID, m.ProviderID, m.Type, m.Title,
		m.Subjective, m.Objective, m.Assessment, m.Plan, vitals, diagnoses, m.Version, m.ParentID).
		Scan(&m.CreatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	return r.scanRecord(r.conn(ctx).QueryRow(ctx, `SELECT `+recordCols+` FROM medical_records WHERE id = $1`, id))
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, f ListFilter, limit, offset int) ([]*MedicalRecord, int, error) {
	where := `WHERE patient_id = $1`
	args := []interface{}{patientID}
	if f.Type != "" {
		where += ` AND type = $2`
		args = append(args, f.Type)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medical_records `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM medical_records %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		recordCols, where, len(args)+1, len(args)+2)
	rows, err := r.conn(ctx).Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*MedicalRecord
	for rows.Next() {
		m, err := r.scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ListRecent(ctx context.Context, patientID uuid.UUID, limit int) ([]*MedicalRecord, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+recordCols+` FROM medical_records WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2`,
		patientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*MedicalRecord
	for rows.Next() {
		m, err := r.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (r *repoPG) Lineage(ctx context.Context, id uuid.UUID) ([]*MedicalRecord, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		WITH RECURSIVE lineage AS (
			SELECT `+recordCols+` FROM medical_records WHERE id = $1
			UNION ALL
			SELECT m.id, m.patient_id, m.provider_id, m.type, m.title,
				m.subjective, m.objective, m.assessment, m.plan,
				m.vitals, m.diagnoses, m.version, m.parent_id, m.created_at
			FROM medical_records m
			JOIN lineage l ON m.id = l.parent_id
		)
		SELECT `+recordCols+` FROM lineage ORDER BY version DESC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*MedicalRecord
	for rows.Next() {
		m, err := r.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return items, nil
}

func (r *repoPG) CountSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medical_records WHERE created_at >= $1`, since).Scan(&n)
	return n, err
}
