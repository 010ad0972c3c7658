package exchange

import (
	"context"
	"fmt"
	"time"

	"github.com/Keerthivasan-cpu/mandara-connect/pkg/pagination"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Create files a new pending request from clinicID on behalf of userID.
func (s *Service) Create(ctx context.Context, clinicID, userID string, r *Request) error {
	if clinicID == "" || userID == "" {
		return fmt.Errorf("%w: requesting clinic and user are required", ErrInvalidRequest)
	}
	r.RequestingClinicID = clinicID
	r.RequestedBy = userID
	r.Status = StatusPending
	r.ApprovedBy = ""
	r.ResponseData = nil
	if err := r.Validate(); err != nil {
		return err
	}
	return s.repo.Create(ctx, r)
}

// Get returns a request clinicID is party to. Requests between other clinics
// are reported as not found.
func (s *Service) Get(ctx context.Context, clinicID, id string) (*Request, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.Involves(clinicID) {
		return nil, fmt.Errorf("exchange request %s: %w", id, ErrNotFound)
	}
	return r, nil
}

func (s *Service) List(ctx context.Context, clinicID, direction, status string, pg pagination.Params) ([]*Request, int, error) {
	switch direction {
	case "", DirectionIncoming, DirectionOutgoing:
	default:
		return nil, 0, fmt.Errorf("%w: invalid direction: %s", ErrInvalidRequest, direction)
	}
	return s.repo.List(ctx, ListFilter{ClinicID: clinicID, Direction: direction, Status: status}, pg.Limit, pg.Offset)
}

// UpdateStatus moves a request along pending → approved|rejected →
// completed. Only the target clinic decides; the approving user is recorded
// on approval and rejection. It returns the updated request and the status
// it moved from.
func (s *Service) UpdateStatus(ctx context.Context, clinicID, userID, id string, u StatusUpdate) (*Request, string, error) {
	r, err := s.Get(ctx, clinicID, id)
	if err != nil {
		return nil, "", err
	}
	if r.TargetClinicID != clinicID {
		return nil, "", fmt.Errorf("exchange request %s: %w", id, ErrForbidden)
	}
	from := r.Status
	if !CanTransition(from, u.Status) {
		return nil, "", fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, u.Status)
	}

	r.Status = u.Status
	if u.Status == StatusApproved || u.Status == StatusRejected {
		r.ApprovedBy = userID
	}
	if len(u.ResponseData) > 0 {
		r.ResponseData = u.ResponseData
	}
	r.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdateStatus(ctx, r, from); err != nil {
		return nil, "", err
	}
	return r, from, nil
}
