package registry

import (
	"fmt"

	"github.com/Keerthivasan-cpu/mandara-connect/pkg/fhirmodels"
)

// SourceCode is a NAMASTE code. It maps to the namaste_codes table.
type SourceCode struct {
	ID                string   `db:"id" json:"id"`
	Code              string   `db:"code" json:"code"`
	Display           string   `db:"display" json:"display"`
	System            string   `db:"system" json:"system"`
	Description       string   `db:"description" json:"description"`
	MappedTargetCodes []string `db:"icd11_mappings" json:"icd11_mappings"`
}

// TargetCode is an ICD-11 code (TM2 or biomedicine). It maps to the
// icd11_codes table. MappedSourceCodes is nil when the row carries no
// reverse mapping.
type TargetCode struct {
	ID                string   `db:"id" json:"id"`
	Code              string   `db:"code" json:"code"`
	Display           string   `db:"display" json:"display"`
	Module            string   `db:"module" json:"module"`
	Description       string   `db:"description" json:"description"`
	MappedSourceCodes []string `db:"namaste_mappings" json:"namaste_mappings,omitempty"`
}

var validSourceSystems = map[string]bool{
	fhirmodels.SystemAyurveda: true,
	fhirmodels.SystemSiddha:   true,
	fhirmodels.SystemUnani:    true,
}

var validTargetModules = map[string]bool{
	fhirmodels.ModuleTM2:         true,
	fhirmodels.ModuleBiomedicine: true,
}

// IsValidSourceSystem reports whether s names one of the three NAMASTE vocabularies.
func IsValidSourceSystem(s string) bool { return validSourceSystems[s] }

// IsValidTargetModule reports whether m names an ICD-11 module.
func IsValidTargetModule(m string) bool { return validTargetModules[m] }

func (c *SourceCode) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: source code id is required", ErrInvalidCode)
	}
	if c.Code == "" {
		return fmt.Errorf("%w: source code %s has no code", ErrInvalidCode, c.ID)
	}
	if !IsValidSourceSystem(c.System) {
		return fmt.Errorf("%w: source code %s has unknown system %q", ErrInvalidCode, c.Code, c.System)
	}
	return nil
}

func (c *TargetCode) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: target code id is required", ErrInvalidCode)
	}
	if c.Code == "" {
		return fmt.Errorf("%w: target code %s has no code", ErrInvalidCode, c.ID)
	}
	if !IsValidTargetModule(c.Module) {
		return fmt.Errorf("%w: target code %s has unknown module %q", ErrInvalidCode, c.Code, c.Module)
	}
	return nil
}

// Definition returns the description, falling back to the display text.
func (c *SourceCode) Definition() string {
	if c.Description != "" {
		return c.Description
	}
	return c.Display
}

// SearchResult is a terminology search hit in either vocabulary.
type SearchResult struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Display   string `json:"display"`
	Group     string `json:"group"`
	SystemURI string `json:"system"`
}

// LookupRequest represents a FHIR CodeSystem $lookup request.
type LookupRequest struct {
	System string `json:"system"`
	Code   string `json:"code"`
}

// LookupResponse represents a FHIR CodeSystem $lookup response.
type LookupResponse struct {
	ResourceType string            `json:"resourceType"`
	Parameter    []LookupParameter `json:"parameter"`
}

// LookupParameter is a name/value pair in a FHIR Parameters resource.
type LookupParameter struct {
	Name        string `json:"name"`
	ValueString string `json:"valueString,omitempty"`
	ValueCode   string `json:"valueCode,omitempty"`
}

// ValidateCodeRequest represents a FHIR CodeSystem $validate-code request.
type ValidateCodeRequest struct {
	System  string `json:"system"`
	Code    string `json:"code"`
	Display string `json:"display,omitempty"`
}

// ValidateCodeResponse represents a FHIR CodeSystem $validate-code response.
type ValidateCodeResponse struct {
	ResourceType string                  `json:"resourceType"`
	Parameter    []ValidateCodeParameter `json:"parameter"`
}

type ValidateCodeParameter struct {
	Name         string `json:"name"`
	ValueBoolean *bool  `json:"valueBoolean,omitempty"`
	ValueString  string `json:"valueString,omitempty"`
}
