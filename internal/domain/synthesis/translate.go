package synthesis

import (
	"github.com/Keerthivasan-cpu/mandara-connect/internal/platform/fhir"
	"github.com/Keerthivasan-cpu/mandara-connect/pkg/fhirmodels"
)

var severityToSNOMED = map[string]string{
	fhirmodels.SeverityMild:     fhirmodels.SNOMEDMild,
	fhirmodels.SeverityModerate: fhirmodels.SNOMEDModerate,
	fhirmodels.SeveritySevere:   fhirmodels.SNOMEDSevere,
}

var clinicalStatuses = map[string]bool{
	fhirmodels.ConditionActive:   true,
	fhirmodels.ConditionInactive: true,
	fhirmodels.ConditionResolved: true,
}

// TranslateSeverity maps a severity word to its SNOMED CT coding. Values
// outside mild/moderate/severe fail; nothing is guessed.
func TranslateSeverity(severity string) (fhir.Coding, error) {
	code, ok := severityToSNOMED[severity]
	if !ok {
		return fhir.Coding{}, &UnknownVocabularyValueError{Field: "severity", Value: severity}
	}
	return fhir.Coding{System: fhirmodels.SystemSNOMED, Code: code, Display: severity}, nil
}

// TranslateClinicalStatus passes a clinical status through as an HL7
// condition-clinical coding.
func TranslateClinicalStatus(status string) (fhir.Coding, error) {
	if !clinicalStatuses[status] {
		return fhir.Coding{}, &UnknownVocabularyValueError{Field: "clinicalStatus", Value: status}
	}
	return fhir.Coding{System: fhirmodels.SystemConditionClinical, Code: status, Display: status}, nil
}
