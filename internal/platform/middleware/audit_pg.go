package middleware

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type auditExecer interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// PGAuditRecorder appends audit entries to access_audit_log.
type PGAuditRecorder struct {
	db auditExecer
}

func NewPGAuditRecorder(pool *pgxpool.Pool) *PGAuditRecorder {
	return &PGAuditRecorder{db: pool}
}

func (r *PGAuditRecorder) RecordAccess(ctx context.Context, e AuditEntry) error {
	roles := e.UserRoles
	if roles == nil {
		roles = []string{}
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO access_audit_log (occurred_at, request_id, clinic_id, user_id, user_roles,
			resource, patient_id, action, method, path, ip_address, status_code)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), $5, $6, NULLIF($7, ''), $8, $9, $10, NULLIF($11, ''), $12)`,
		e.Timestamp, e.RequestID, e.ClinicID, e.UserID, roles,
		e.Resource, e.PatientRef, e.Action, e.Method, e.Path, e.IPAddress, e.StatusCode)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}
