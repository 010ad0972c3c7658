package synthesis

import (
	"errors"
	"fmt"

	"github.com/Keerthivasan-cpu/mandara-connect/internal/domain/registry"
	"github.com/Keerthivasan-cpu/mandara-connect/internal/platform/fhir"
	"github.com/Keerthivasan-cpu/mandara-connect/pkg/fhirmodels"
)

// VerifyReferences checks that every Condition code in b names a NAMASTE or
// ICD-11 code present in snap, and that status and severity codings use
// their fixed external systems. All violations are joined into one error.
func VerifyReferences(b *Bundle, snap *registry.Snapshot) error {
	if b == nil {
		return errors.New("nil bundle")
	}
	if snap == nil {
		snap = registry.EmptySnapshot()
	}

	var errs []error
	for _, cond := range b.Conditions() {
		for _, c := range cond.Code.Coding {
			if err := resolveCoding(snap, c); err != nil {
				errs = append(errs, fmt.Errorf("Condition/%s code: %w", cond.ID, err))
			}
		}
		errs = append(errs, expectSystem(cond.ID, "clinicalStatus", cond.ClinicalStatus, fhirmodels.SystemConditionClinical)...)
		errs = append(errs, expectSystem(cond.ID, "severity", cond.Severity, fhirmodels.SystemSNOMED)...)
	}
	return errors.Join(errs...)
}

func resolveCoding(snap *registry.Snapshot, c fhir.Coding) error {
	switch c.System {
	case fhirmodels.SystemNAMASTE:
		if _, ok := snap.FindSourceByCode(c.Code); !ok {
			return fmt.Errorf("%w: %s|%s", ErrUnresolvedReference, c.System, c.Code)
		}
	case fhirmodels.SystemICD11:
		if _, ok := snap.FindTargetByCode(c.Code); !ok {
			return fmt.Errorf("%w: %s|%s", ErrUnresolvedReference, c.System, c.Code)
		}
	default:
		return fmt.Errorf("%w: %q", ErrForeignSystem, c.System)
	}
	return nil
}

func expectSystem(id, field string, cc fhir.CodeableConcept, system string) []error {
	var errs []error
	for _, c := range cc.Coding {
		if c.System != system {
			errs = append(errs, fmt.Errorf("Condition/%s %s: %w: %q", id, field, ErrForeignSystem, c.System))
		}
	}
	return errs
}
