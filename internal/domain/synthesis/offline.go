package synthesis

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Keerthivasan-cpu/mandara-connect/internal/domain/problem"
	"github.com/Keerthivasan-cpu/mandara-connect/internal/domain/registry"
)

// Workspace is a self-contained synthesis input: a registry export, a
// problem list and a selection. The CLI reads it from a JSON file so bundles
// can be built without a database.
type Workspace struct {
	NAMASTE   []registry.SourceCode   `json:"namaste_codes"`
	ICD11     []registry.TargetCode   `json:"icd11_codes"`
	Problems  []*problem.ProblemEntry `json:"problems"`
	Selection Request                 `json:"selection"`
}

func ReadWorkspace(r io.Reader) (*Workspace, error) {
	var ws Workspace
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ws); err != nil {
		return nil, fmt.Errorf("decode workspace: %w", err)
	}
	return &ws, nil
}

// Build resolves the workspace and returns its collection document. Problem
// ids in the selection restrict and order the problems, each id once;
// otherwise all problems are used in file order. Null problem entries are
// ignored.
func (ws *Workspace) Build(s *Synthesizer) (*Bundle, *Report, *registry.Snapshot, error) {
	snap, err := registry.NewSnapshot(ws.NAMASTE, ws.ICD11)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load registry: %w", err)
	}
	sel, err := ResolveSelection(snap, ws.Selection)
	if err != nil {
		return nil, nil, nil, err
	}
	problems, err := ws.selectProblems()
	if err != nil {
		return nil, nil, nil, err
	}
	b, report, err := s.BuildCollectionDocument(snap, sel.Source(), sel.Targets(), problems)
	if err != nil {
		return nil, nil, nil, err
	}
	return b, report, snap, nil
}

func (ws *Workspace) selectProblems() ([]*problem.ProblemEntry, error) {
	if len(ws.Selection.ProblemIDs) == 0 {
		return ws.Problems, nil
	}
	byID := make(map[string]*problem.ProblemEntry, len(ws.Problems))
	for _, p := range ws.Problems {
		if p == nil {
			continue
		}
		if _, dup := byID[p.ID]; !dup {
			byID[p.ID] = p
		}
	}
	ids := problem.UniqueIDs(ws.Selection.ProblemIDs)
	out := make([]*problem.ProblemEntry, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("problem %s: %w", id, problem.ErrNotFound)
		}
		out = append(out, p)
	}
	return out, nil
}
