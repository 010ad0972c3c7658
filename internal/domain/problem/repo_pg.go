package problem

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Keerthivasan-cpu/mandara-connect/internal/platform/db"
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
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const problemCols = `id::text, clinic_id, patient_id, COALESCE(namaste_code_id,''), COALESCE(icd11_code_ids,'{}'),
	clinical_status, severity, onset_date, recorded_date, COALESCE(clinical_notes,''), created_by, created_at`

func scanProblem(row pgx.Row) (*ProblemEntry, error) {
	var p ProblemEntry
	var onset, recorded *time.Time
	if err := row.Scan(&p.ID, &p.ClinicID, &p.PatientRef, &p.SourceCodeID, &p.TargetCodeIDs,
		&p.ClinicalStatus, &p.Severity, &onset, &recorded, &p.ClinicalNotes, &p.CreatedBy, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.OnsetDate = dateFromTime(onset)
	p.RecordedDate = dateFromTime(recorded)
	return &p, nil
}

func dateFromTime(t *time.Time) *Date {
	if t == nil {
		return nil
	}
	d := DateOf(*t)
	return &d
}

func timeFromDate(d *Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time()
	return &t
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *repoPG) Create(ctx context.Context, p *ProblemEntry) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO problem_entries (id, clinic_id, patient_id, namaste_code_id, icd11_code_ids,
			clinical_status, severity, onset_date, recorded_date, clinical_notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at`,
		p.ID, p.ClinicID, p.PatientRef, nullIfEmpty(p.SourceCodeID), p.TargetCodeIDs,
		p.ClinicalStatus, p.Severity, timeFromDate(p.OnsetDate), timeFromDate(p.RecordedDate),
		nullIfEmpty(p.ClinicalNotes), p.CreatedBy,
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert problem entry: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, clinicID, id string) (*ProblemEntry, error) {
	p, err := scanProblem(r.conn(ctx).QueryRow(ctx,
		`SELECT `+problemCols+` FROM problem_entries WHERE clinic_id = $1 AND id::text = $2`, clinicID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("problem %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get problem entry: %w", err)
	}
	return p, nil
}

func (r *repoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*ProblemEntry, int, error) {
	var where []string
	var args []interface{}
	add := func(clause string, v interface{}) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if f.ClinicID != "" {
		add("clinic_id = $%d", f.ClinicID)
	}
	if f.PatientRef != "" {
		add("patient_id = $%d", f.PatientRef)
	}
	if len(f.IDs) > 0 {
		add("id::text = ANY($%d)", f.IDs)
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM problem_entries`+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count problem entries: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM problem_entries%s
		ORDER BY recorded_date DESC, created_at DESC, id
		LIMIT $%d OFFSET $%d`, problemCols, cond, len(args)-1, len(args))
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list problem entries: %w", err)
	}
	defer rows.Close()

	var items []*ProblemEntry
	for rows.Next() {
		p, err := scanProblem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan problem entry: %w", err)
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
