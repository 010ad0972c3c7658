package exchange

import "context"

// ListFilter selects the requests a clinic is party to.
type ListFilter struct {
	ClinicID  string
	Direction string
	Status    string
}

type Repository interface {
	Create(ctx context.Context, r *Request) error
	GetByID(ctx context.Context, id string) (*Request, error)
	// List returns requests newest first and the total matching the filter.
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Request, int, error)
	// UpdateStatus writes r's status, approver, response and updated_at if
	// the stored status is still from. Otherwise it returns ErrConflict.
	UpdateStatus(ctx context.Context, r *Request, from string) error
}
