package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

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

const requestCols = `id::text, requesting_clinic_id, target_clinic_id, patient_id, request_type, request_data,
	status, requested_by, COALESCE(approved_by,''), response_data, created_at, updated_at`

func scanRequest(row pgx.Row) (*Request, error) {
	var x Request
	var reqData, respData []byte
	if err := row.Scan(&x.ID, &x.RequestingClinicID, &x.TargetClinicID, &x.PatientRef, &x.RequestType, &reqData,
		&x.Status, &x.RequestedBy, &x.ApprovedBy, &respData, &x.CreatedAt, &x.UpdatedAt); err != nil {
		return nil, err
	}
	x.RequestData = json.RawMessage(reqData)
	x.ResponseData = json.RawMessage(respData)
	return &x, nil
}

// jsonb passes raw JSON through, storing NULL for empty values.
func jsonb(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func (r *repoPG) Create(ctx context.Context, x *Request) error {
	if x.ID == "" {
		x.ID = uuid.New().String()
	}
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO data_exchange_requests (id, requesting_clinic_id, target_clinic_id, patient_id,
			request_type, request_data, status, requested_by)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8)
		RETURNING created_at, updated_at`,
		x.ID, x.RequestingClinicID, x.TargetClinicID, x.PatientRef,
		x.RequestType, jsonb(x.RequestData), x.Status, x.RequestedBy,
	).Scan(&x.CreatedAt, &x.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert exchange request: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id string) (*Request, error) {
	x, err := scanRequest(r.conn(ctx).QueryRow(ctx,
		`SELECT `+requestCols+` FROM data_exchange_requests WHERE id::text = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("exchange request %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get exchange request: %w", err)
	}
	return x, nil
}

func (r *repoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Request, int, error) {
	args := []interface{}{f.ClinicID}
	var where []string
	switch f.Direction {
	case DirectionIncoming:
		where = append(where, "target_clinic_id = $1")
	case DirectionOutgoing:
		where = append(where, "requesting_clinic_id = $1")
	default:
		where = append(where, "(requesting_clinic_id = $1 OR target_clinic_id = $1)")
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	cond := " WHERE " + strings.Join(where, " AND ")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM data_exchange_requests`+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count exchange requests: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM data_exchange_requests%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, requestCols, cond, len(args)-1, len(args))
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list exchange requests: %w", err)
	}
	defer rows.Close()

	var items []*Request
	for rows.Next() {
		x, err := scanRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan exchange request: %w", err)
		}
		items = append(items, x)
	}
	return items, total, rows.Err()
}

func (r *repoPG) UpdateStatus(ctx context.Context, x *Request, from string) error {
	var approvedBy *string
	if x.ApprovedBy != "" {
		approvedBy = &x.ApprovedBy
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE data_exchange_requests
		SET status = $3, approved_by = $4, response_data = COALESCE($5::jsonb, response_data), updated_at = $6
		WHERE id::text = $1 AND status = $2`,
		x.ID, from, x.Status, approvedBy, jsonb(x.ResponseData), x.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update exchange request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("exchange request %s: %w", x.ID, ErrConflict)
	}
	return nil
}
