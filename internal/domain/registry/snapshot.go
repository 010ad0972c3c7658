package registry

import (
	"fmt"
	"slices"
)

// Snapshot is an immutable, indexed view of both vocabularies. Records live in
// append-only arenas in load order; lookups go through indexes built once in
// NewSnapshot. A Snapshot is safe for concurrent readers.
//
// Pointers returned by the Find methods point into the arena and are shared
// between callers; they must not be modified.
type Snapshot struct {
	sources []SourceCode
	targets []TargetCode

	sourceByID   map[string]int
	sourceByCode map[string]int
	targetByID   map[string]int
	targetByCode map[string]int
}

// NewSnapshot validates and indexes the given records. Codes and ids must be
// unique within each vocabulary. The input slices are copied.
func NewSnapshot(sources []SourceCode, targets []TargetCode) (*Snapshot, error) {
	s := &Snapshot{
		sources:      make([]SourceCode, 0, len(sources)),
		targets:      make([]TargetCode, 0, len(targets)),
		sourceByID:   make(map[string]int, len(sources)),
		sourceByCode: make(map[string]int, len(sources)),
		targetByID:   make(map[string]int, len(targets)),
		targetByCode: make(map[string]int, len(targets)),
	}

	for i := range sources {
		c := sources[i]
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, ok := s.sourceByID[c.ID]; ok {
			return nil, fmt.Errorf("%w: source id %s", ErrDuplicateID, c.ID)
		}
		if _, ok := s.sourceByCode[c.Code]; ok {
			return nil, fmt.Errorf("%w: source code %s", ErrDuplicateCode, c.Code)
		}
		c.MappedTargetCodes = slices.Clone(c.MappedTargetCodes)
		s.sourceByID[c.ID] = len(s.sources)
		s.sourceByCode[c.Code] = len(s.sources)
		s.sources = append(s.sources, c)
	}

	for i := range targets {
		c := targets[i]
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, ok := s.targetByID[c.ID]; ok {
			return nil, fmt.Errorf("%w: target id %s", ErrDuplicateID, c.ID)
		}
		if _, ok := s.targetByCode[c.Code]; ok {
			return nil, fmt.Errorf("%w: target code %s", ErrDuplicateCode, c.Code)
		}
		c.MappedSourceCodes = slices.Clone(c.MappedSourceCodes)
		s.targetByID[c.ID] = len(s.targets)
		s.targetByCode[c.Code] = len(s.targets)
		s.targets = append(s.targets, c)
	}

	return s, nil
}

// EmptySnapshot returns a snapshot with no codes in either vocabulary.
func EmptySnapshot() *Snapshot {
	s, _ := NewSnapshot(nil, nil)
	return s
}

func (s *Snapshot) FindSourceByCode(code string) (*SourceCode, bool) {
	i, ok := s.sourceByCode[code]
	if !ok {
		return nil, false
	}
	return &s.sources[i], true
}

func (s *Snapshot) FindSourceByID(id string) (*SourceCode, bool) {
	i, ok := s.sourceByID[id]
	if !ok {
		return nil, false
	}
	return &s.sources[i], true
}

func (s *Snapshot) FindTargetByCode(code string) (*TargetCode, bool) {
	i, ok := s.targetByCode[code]
	if !ok {
		return nil, false
	}
	return &s.targets[i], true
}

func (s *Snapshot) FindTargetByID(id string) (*TargetCode, bool) {
	i, ok := s.targetByID[id]
	if !ok {
		return nil, false
	}
	return &s.targets[i], true
}

// Sources returns the source codes in load order.
func (s *Snapshot) Sources() []SourceCode { return slices.Clone(s.sources) }

// Targets returns the target codes in load order.
func (s *Snapshot) Targets() []TargetCode { return slices.Clone(s.targets) }

func (s *Snapshot) SourceCount() int { return len(s.sources) }
func (s *Snapshot) TargetCount() int { return len(s.targets) }

// MappedTargets resolves the ICD-11 code strings a source code cross-references.
// Strings that do not resolve in this snapshot are skipped.
func (s *Snapshot) MappedTargets(src *SourceCode) []*TargetCode {
	if src == nil {
		return nil
	}
	out := make([]*TargetCode, 0, len(src.MappedTargetCodes))
	for _, code := range src.MappedTargetCodes {
		if t, ok := s.FindTargetByCode(code); ok {
			out = append(out, t)
		}
	}
	return out
}

// MappedSources resolves the NAMASTE code strings a target code cross-references.
func (s *Snapshot) MappedSources(tgt *TargetCode) []*SourceCode {
	if tgt == nil {
		return nil
	}
	out := make([]*SourceCode, 0, len(tgt.MappedSourceCodes))
	for _, code := range tgt.MappedSourceCodes {
		if src, ok := s.FindSourceByCode(code); ok {
			out = append(out, src)
		}
	}
	return out
}
