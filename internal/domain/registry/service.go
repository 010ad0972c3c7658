package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/Keerthivasan-cpu/mandara-connect/pkg/fhirmodels"
)

// Service provides terminology search, lookup, and snapshot loading over the
// NAMASTE and ICD-11 registries.
type Service struct {
	sources SourceRepository
	targets TargetRepository
}

// NewService creates a new registry service.
func NewService(sources SourceRepository, targets TargetRepository) *Service {
	return &Service{sources: sources, targets: targets}
}

// Snapshot reads both vocabularies and indexes them. Every call returns a
// fresh snapshot; nothing is cached between calls.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	sources, err := s.sources.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load namaste codes: %w", err)
	}
	targets, err := s.targets.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load icd11 codes: %w", err)
	}
	return NewSnapshot(sources, targets)
}

// -- NAMASTE --

// SearchSources searches NAMASTE codes by text, optionally within one system.
// An empty query is allowed only when a system filter is given.
func (s *Service) SearchSources(ctx context.Context, query, system string, limit int) ([]*SourceCode, error) {
	if system != "" && !IsValidSourceSystem(system) {
		return nil, fmt.Errorf("%w: namaste system %q", ErrUnknownSystem, system)
	}
	if query == "" && system == "" {
		return nil, ErrQueryRequired
	}
	if limit <= 0 {
		limit = 20
	}
	return s.sources.Search(ctx, query, system, limit)
}

// LookupSource looks up a single NAMASTE code.
func (s *Service) LookupSource(ctx context.Context, code string) (*SourceCode, error) {
	if code == "" {
		return nil, fmt.Errorf("code is required")
	}
	return s.sources.GetByCode(ctx, code)
}

// SuggestTargets returns the ICD-11 codes a NAMASTE code cross-references,
// in the order the registry lists them.
func (s *Service) SuggestTargets(ctx context.Context, code string) ([]*TargetCode, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	src, ok := snap.FindSourceByCode(code)
	if !ok {
		return nil, fmt.Errorf("namaste %s: %w", code, ErrNotFound)
	}
	return snap.MappedTargets(src), nil
}

// -- ICD-11 --

// SearchTargets searches ICD-11 codes by text, optionally within one module.
func (s *Service) SearchTargets(ctx context.Context, query, module string, limit int) ([]*TargetCode, error) {
	if module != "" && !IsValidTargetModule(module) {
		return nil, fmt.Errorf("%w: icd11 module %q", ErrUnknownSystem, module)
	}
	if query == "" && module == "" {
		return nil, ErrQueryRequired
	}
	if limit <= 0 {
		limit = 20
	}
	return s.targets.Search(ctx, query, module, limit)
}

// LookupTarget looks up a single ICD-11 code.
func (s *Service) LookupTarget(ctx context.Context, code string) (*TargetCode, error) {
	if code == "" {
		return nil, fmt.Errorf("code is required")
	}
	return s.targets.GetByCode(ctx, code)
}

// -- FHIR Operations --

// resolveDisplay finds the display text for code within the given system URI.
func (s *Service) resolveDisplay(ctx context.Context, system, code string) (string, string, error) {
	switch system {
	case fhirmodels.SystemNAMASTE:
		c, err := s.sources.GetByCode(ctx, code)
		if err != nil {
			return "", "", err
		}
		return c.Display, c.Definition(), nil
	case fhirmodels.SystemICD11:
		c, err := s.targets.GetByCode(ctx, code)
		if err != nil {
			return "", "", err
		}
		return c.Display, c.Description, nil
	default:
		return "", "", fmt.Errorf("%w: %s", ErrUnknownSystem, system)
	}
}

// Lookup implements the FHIR CodeSystem $lookup operation for the two
// registry code systems.
func (s *Service) Lookup(ctx context.Context, req *LookupRequest) (*LookupResponse, error) {
	if req.System == "" {
		return nil, fmt.Errorf("system is required")
	}
	if req.Code == "" {
		return nil, fmt.Errorf("code is required")
	}

	display, definition, err := s.resolveDisplay(ctx, req.System, req.Code)
	if err != nil {
		return nil, err
	}

	name := "NAMASTE"
	if req.System == fhirmodels.SystemICD11 {
		name = "ICD-11"
	}
	params := []LookupParameter{
		{Name: "name", ValueString: name},
		{Name: "display", ValueString: display},
	}
	if definition != "" {
		params = append(params, LookupParameter{Name: "definition", ValueString: definition})
	}
	return &LookupResponse{ResourceType: "Parameters", Parameter: params}, nil
}

// ValidateCode implements the FHIR CodeSystem $validate-code operation. An
// unknown code is a negative result, not an error; an unknown system is.
func (s *Service) ValidateCode(ctx context.Context, req *ValidateCodeRequest) (*ValidateCodeResponse, error) {
	if req.System == "" {
		return nil, fmt.Errorf("system is required")
	}
	if req.Code == "" {
		return nil, fmt.Errorf("code is required")
	}

	display, _, err := s.resolveDisplay(ctx, req.System, req.Code)
	found := err == nil
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	result := found
	if found && req.Display != "" && req.Display != display {
		result = false
	}

	params := []ValidateCodeParameter{
		{Name: "result", ValueBoolean: &result},
	}
	switch {
	case !found:
		params = append(params, ValidateCodeParameter{Name: "message", ValueString: fmt.Sprintf("code '%s' not found in system '%s'", req.Code, req.System)})
	case !result:
		params = append(params,
			ValidateCodeParameter{Name: "message", ValueString: fmt.Sprintf("display '%s' does not match '%s'", req.Display, display)},
			ValidateCodeParameter{Name: "display", ValueString: display})
	default:
		params = append(params, ValidateCodeParameter{Name: "display", ValueString: display})
	}

	return &ValidateCodeResponse{ResourceType: "Parameters", Parameter: params}, nil
}
