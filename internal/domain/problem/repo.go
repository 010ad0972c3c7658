package problem

import "context"

// ListFilter narrows a clinic's problem list. Empty fields match everything.
type ListFilter struct {
	ClinicID   string
	PatientRef string
	IDs        []string
}

type Repository interface {
	Create(ctx context.Context, p *ProblemEntry) error
	GetByID(ctx context.Context, clinicID, id string) (*ProblemEntry, error)
	// List returns entries ordered by recorded date, newest first, and the
	// total number matching the filter.
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*ProblemEntry, int, error)
}
