package synthesis

import (
	"slices"

	"github.com/Keerthivasan-cpu/mandara-connect/internal/domain/registry"
)

// Selection is the source code and ordered target codes a practitioner has
// picked for dual-coding. Targets are unique by id and keep the order they
// were added in. A Selection is owned by one caller and is not safe for
// concurrent mutation.
type Selection struct {
	source  *registry.SourceCode
	targets []*registry.TargetCode
}

// NewSelection starts a selection from source and targets, dropping repeated
// target ids. Nil targets are ignored.
func NewSelection(source *registry.SourceCode, targets ...*registry.TargetCode) *Selection {
	s := &Selection{source: source}
	for _, t := range targets {
		s.AddTarget(t)
	}
	return s
}

func (s *Selection) Source() *registry.SourceCode { return s.source }

// Targets returns the selected targets in insertion order.
func (s *Selection) Targets() []*registry.TargetCode { return slices.Clone(s.targets) }

func (s *Selection) SelectSource(src *registry.SourceCode) { s.source = src }

// AddTarget appends t unless a target with the same id is already selected.
// It reports whether t was added.
func (s *Selection) AddTarget(t *registry.TargetCode) bool {
	if t == nil || s.indexOf(t.ID) >= 0 {
		return false
	}
	s.targets = append(s.targets, t)
	return true
}

// RemoveTarget drops the target with the given id, keeping the order of the rest.
func (s *Selection) RemoveTarget(id string) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.targets = slices.Delete(s.targets, i, i+1)
	return true
}

// ToggleTarget adds t when absent and removes it when present. It reports
// whether t is selected afterwards.
func (s *Selection) ToggleTarget(t *registry.TargetCode) bool {
	if t == nil {
		return false
	}
	if s.RemoveTarget(t.ID) {
		return false
	}
	return s.AddTarget(t)
}

// Clear resets the selection to empty.
func (s *Selection) Clear() {
	s.source = nil
	s.targets = nil
}

func (s *Selection) IsEmpty() bool { return s.source == nil && len(s.targets) == 0 }

func (s *Selection) indexOf(id string) int {
	return slices.IndexFunc(s.targets, func(t *registry.TargetCode) bool { return t.ID == id })
}
