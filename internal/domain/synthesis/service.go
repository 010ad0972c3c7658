package synthesis

import (
	"context"
	"fmt"

	"github.com/Keerthivasan-cpu/mandara-connect/internal/domain/problem"
	"github.com/Keerthivasan-cpu/mandara-connect/internal/domain/registry"
)

// Request names the selection, by registry id, and the problems to bundle.
// No problem ids means every problem of the clinic.
type Request struct {
	SourceCodeID  string   `json:"source_code_id,omitempty"`
	TargetCodeIDs []string `json:"target_code_ids,omitempty"`
	ProblemIDs    []string `json:"problem_ids,omitempty"`
}

// SnapshotLoader is satisfied by *registry.Service.
type SnapshotLoader interface {
	Snapshot(ctx context.Context) (*registry.Snapshot, error)
}

// ProblemLoader is satisfied by *problem.Service.
type ProblemLoader interface {
	ForSynthesis(ctx context.Context, clinicID string, ids []string) ([]*problem.ProblemEntry, error)
}

// Service reads a fresh registry snapshot and problem list for every call
// and hands them to the Synthesizer. Nothing is cached between calls.
type Service struct {
	snapshots SnapshotLoader
	problems  ProblemLoader
	synth     *Synthesizer
}

func NewService(snapshots SnapshotLoader, problems ProblemLoader, synth *Synthesizer) *Service {
	if synth == nil {
		synth = New()
	}
	return &Service{snapshots: snapshots, problems: problems, synth: synth}
}

// ResolveSelection looks the requested ids up in snap. Unlike problem
// references, a selected id that does not resolve is an error: the caller
// picked it from the registry moments ago.
func ResolveSelection(snap *registry.Snapshot, req Request) (*Selection, error) {
	sel := NewSelection(nil)
	if req.SourceCodeID != "" {
		src, ok := snap.FindSourceByID(req.SourceCodeID)
		if !ok {
			return nil, fmt.Errorf("%w: namaste id %s", ErrSelectionNotFound, req.SourceCodeID)
		}
		sel.SelectSource(src)
	}
	for _, id := range req.TargetCodeIDs {
		tgt, ok := snap.FindTargetByID(id)
		if !ok {
			return nil, fmt.Errorf("%w: icd11 id %s", ErrSelectionNotFound, id)
		}
		sel.AddTarget(tgt)
	}
	return sel, nil
}

func (s *Service) selection(ctx context.Context, req Request) (*registry.Snapshot, *Selection, error) {
	snap, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load registry snapshot: %w", err)
	}
	sel, err := ResolveSelection(snap, req)
	if err != nil {
		return nil, nil, err
	}
	return snap, sel, nil
}

func (s *Service) CodeSystem(ctx context.Context, req Request) (*CodeSystem, error) {
	_, sel, err := s.selection(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.synth.BuildCodeRegistryDocument(sel.Source()), nil
}

func (s *Service) ConceptMap(ctx context.Context, req Request) (Optional[*ConceptMap], error) {
	_, sel, err := s.selection(ctx, req)
	if err != nil {
		return None[*ConceptMap](), err
	}
	return s.synth.BuildMappingDocument(sel.Source(), sel.Targets()), nil
}

// Bundle builds the collection document for clinicID. The returned snapshot
// is the one the bundle was resolved against.
func (s *Service) Bundle(ctx context.Context, clinicID string, req Request) (*Bundle, *Report, *registry.Snapshot, error) {
	snap, sel, err := s.selection(ctx, req)
	if err != nil {
		return nil, nil, nil, err
	}
	problems, err := s.problems.ForSynthesis(ctx, clinicID, problem.UniqueIDs(req.ProblemIDs))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load problems: %w", err)
	}
	b, report, err := s.synth.BuildCollectionDocument(snap, sel.Source(), sel.Targets(), problems)
	if err != nil {
		return nil, nil, nil, err
	}
	return b, report, snap, nil
}
