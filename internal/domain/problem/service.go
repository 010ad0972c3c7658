package problem

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

// Create validates p, fills the recorded date from the current day when
// absent, and stores it. clinicID and createdBy come from the caller's
// identity, never from the request body.
func (s *Service) Create(ctx context.Context, clinicID, createdBy string, p *ProblemEntry) error {
	if clinicID == "" {
		return fmt.Errorf("%w: clinic is required", ErrInvalidProblem)
	}
	p.ClinicID = clinicID
	if createdBy != "" {
		p.CreatedBy = createdBy
	}
	if p.CreatedBy == "" {
		return fmt.Errorf("%w: created_by is required", ErrInvalidProblem)
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if p.RecordedDate == nil {
		today := DateOf(s.now())
		p.RecordedDate = &today
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, clinicID, id string) (*ProblemEntry, error) {
	return s.repo.GetByID(ctx, clinicID, id)
}

// List returns one page of a clinic's problems, newest recorded first.
func (s *Service) List(ctx context.Context, clinicID, patientRef string, pg pagination.Params) ([]*ProblemEntry, int, error) {
	return s.repo.List(ctx, ListFilter{ClinicID: clinicID, PatientRef: patientRef}, pg.Limit, pg.Offset)
}

// synthesisPageSize is the page size used to walk a clinic's problem list
// when collecting problems for a collection document.
const synthesisPageSize = 500

// UniqueIDs drops repeated ids, keeping the first occurrence of each.
func UniqueIDs(ids []string) []string {
	if len(ids) == 0 {
		return ids
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ForSynthesis returns the problems to bundle. With no ids it returns every
// problem of the clinic in persistence order; otherwise the problems come back
// in the order of ids, each id once. Requested ids that do not exist in the
// clinic are reported as ErrNotFound.
func (s *Service) ForSynthesis(ctx context.Context, clinicID string, ids []string) ([]*ProblemEntry, error) {
	ids = UniqueIDs(ids)
	items, err := s.listAll(ctx, ListFilter{ClinicID: clinicID, IDs: ids})
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return items, nil
	}
	byID := make(map[string]*ProblemEntry, len(items))
	for _, p := range items {
		byID[p.ID] = p
	}
	out := make([]*ProblemEntry, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("problem %s: %w", id, ErrNotFound)
		}
		out = append(out, p)
	}
	return out, nil
}

// listAll pages through the repository until the reported total is reached.
func (s *Service) listAll(ctx context.Context, f ListFilter) ([]*ProblemEntry, error) {
	var items []*ProblemEntry
	for {
		page, total, err := s.repo.List(ctx, f, synthesisPageSize, len(items))
		if err != nil {
			return nil, fmt.Errorf("list problems at offset %d: %w", len(items), err)
		}
		items = append(items, page...)
		if len(page) == 0 || len(items) >= total {
			return items, nil
		}
	}
}
