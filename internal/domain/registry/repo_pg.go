package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Keerthivasan-cpu/mandara-connect/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// =========== NAMASTE Repository ===========

type sourceRepoPG struct{ pool *pgxpool.Pool }

func NewSourceRepoPG(pool *pgxpool.Pool) SourceRepository { return &sourceRepoPG{pool: pool} }

func (r *sourceRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const sourceCols = `id::text, code, display, system, COALESCE(description,''), COALESCE(icd11_mappings, '{}')`

func scanSource(row pgx.Row) (*SourceCode, error) {
	var c SourceCode
	if err := row.Scan(&c.ID, &c.Code, &c.Display, &c.System, &c.Description, &c.MappedTargetCodes); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *sourceRepoPG) List(ctx context.Context) ([]SourceCode, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+sourceCols+` FROM namaste_codes ORDER BY display, code`)
	if err != nil {
		return nil, fmt.Errorf("namaste list: %w", err)
	}
	defer rows.Close()
	var results []SourceCode
	for rows.Next() {
		c, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("namaste scan: %w", err)
		}
		results = append(results, *c)
	}
	return results, rows.Err()
}

func (r *sourceRepoPG) Search(ctx context.Context, query, system string, limit int) ([]*SourceCode, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + query + "%"
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+sourceCols+`
		 FROM namaste_codes
		 WHERE (code ILIKE $1 OR display ILIKE $1 OR description ILIKE $1)
		   AND ($2 = '' OR system = $2)
		 ORDER BY display LIMIT $3`, pattern, system, limit)
	if err != nil {
		return nil, fmt.Errorf("namaste search: %w", err)
	}
	defer rows.Close()
	var results []*SourceCode
	for rows.Next() {
		c, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("namaste scan: %w", err)
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

func (r *sourceRepoPG) GetByCode(ctx context.Context, code string) (*SourceCode, error) {
	c, err := scanSource(r.conn(ctx).QueryRow(ctx,
		`SELECT `+sourceCols+` FROM namaste_codes WHERE code = $1`, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("namaste %s: %w", code, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("namaste get: %w", err)
	}
	return c, nil
}

// =========== ICD-11 Repository ===========

type targetRepoPG struct{ pool *pgxpool.Pool }

func NewTargetRepoPG(pool *pgxpool.Pool) TargetRepository { return &targetRepoPG{pool: pool} }

func (r *targetRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const targetCols = `id::text, code, display, module, COALESCE(description,''), namaste_mappings`

func scanTarget(row pgx.Row) (*TargetCode, error) {
	var c TargetCode
	if err := row.Scan(&c.ID, &c.Code, &c.Display, &c.Module, &c.Description, &c.MappedSourceCodes); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *targetRepoPG) List(ctx context.Context) ([]TargetCode, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+targetCols+` FROM icd11_codes ORDER BY display, code`)
	if err != nil {
		return nil, fmt.Errorf("icd11 list: %w", err)
	}
	defer rows.Close()
	var results []TargetCode
	for rows.Next() {
		c, err := scanTarget(rows)
		if err != nil {
			return nil, fmt.Errorf("icd11 scan: %w", err)
		}
		results = append(results, *c)
	}
	return results, rows.Err()
}

func (r *targetRepoPG) Search(ctx context.Context, query, module string, limit int) ([]*TargetCode, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + query + "%"
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+targetCols+`
		 FROM icd11_codes
		 WHERE (code ILIKE $1 OR display ILIKE $1 OR description ILIKE $1)
		   AND ($2 = '' OR module = $2)
		 ORDER BY code LIMIT $3`, pattern, module, limit)
	if err != nil {
		return nil, fmt.Errorf("icd11 search: %w", err)
	}
	defer rows.Close()
	var results []*TargetCode
	for rows.Next() {
		c, err := scanTarget(rows)
		if err != nil {
			return nil, fmt.Errorf("icd11 scan: %w", err)
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

func (r *targetRepoPG) GetByCode(ctx context.Context, code string) (*TargetCode, error) {
	c, err := scanTarget(r.conn(ctx).QueryRow(ctx,
		`SELECT `+targetCols+` FROM icd11_codes WHERE code = $1`, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("icd11 %s: %w", code, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("icd11 get: %w", err)
	}
	return c, nil
}
