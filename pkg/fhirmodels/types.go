package fhirmodels

// Common FHIR value set constants used across the application.

// Code system URIs. Downstream systems match on these exact strings.
const (
	SystemNAMASTE           = "http://terminology.mohfw.gov.in/fhir/CodeSystem/namaste"
	SystemICD11             = "http://id.who.int/icd/release/11/2023-01"
	SystemSNOMED            = "http://snomed.info/sct"
	SystemConditionClinical = "http://terminology.hl7.org/CodeSystem/condition-clinical"
	SystemDesignationUsage  = "http://terminology.hl7.org/CodeSystem/designation-usage"
	SystemBundleIdentifier  = "http://mohfw.gov.in/fhir/bundle-identifier"
)

// Canonical URLs of the synthesized terminology resources.
const (
	CodeSystemURLNAMASTE = SystemNAMASTE
	ConceptMapURLNAMASTE = "http://terminology.mohfw.gov.in/fhir/ConceptMap/namaste-to-icd11"
)

// NAMASTE vocabularies.
const (
	SystemAyurveda = "AYURVEDA"
	SystemSiddha   = "SIDDHA"
	SystemUnani    = "UNANI"
)

// ICD-11 modules.
const (
	ModuleTM2         = "TM2"
	ModuleBiomedicine = "BIOMEDICINE"
)

// ConditionClinicalStatus codes accepted for dual-coded problems.
const (
	ConditionActive   = "active"
	ConditionInactive = "inactive"
	ConditionResolved = "resolved"
)

// Condition severity words.
const (
	SeverityMild     = "mild"
	SeverityModerate = "moderate"
	SeveritySevere   = "severe"
)

// SNOMED CT severity concepts.
const (
	SNOMEDMild     = "255604002"
	SNOMEDModerate = "6736007"
	SNOMEDSevere   = "24484000"
)

// ConceptMapEquivalence values used in mapping targets.
const (
	EquivalenceEquivalent = "equivalent"
)

// PublicationStatus values.
const (
	StatusDraft   = "draft"
	StatusActive  = "active"
	StatusRetired = "retired"
)
