package synthesis

import (
	"fmt"
	"strings"

	"github.com/Keerthivasan-cpu/mandara-connect/internal/domain/problem"
	"github.com/Keerthivasan-cpu/mandara-connect/internal/domain/registry"
	"github.com/Keerthivasan-cpu/mandara-connect/internal/platform/fhir"
	"github.com/Keerthivasan-cpu/mandara-connect/pkg/fhirmodels"
)

// Fixed resource headers. Receiving systems match on ids and URLs.
const (
	codeSystemID          = "namaste-terminology"
	codeSystemVersion     = "1.0.0"
	codeSystemName        = "NAMASTETerminology"
	codeSystemTitle       = "NAMASTE - National Medical Terminologies for AYUSH Systems"
	codeSystemDescription = "Comprehensive terminology system for traditional Indian medicine systems including Ayurveda, Siddha, and Unani"

	conceptMapID          = "namaste-to-icd11-map"
	conceptMapVersion     = "1.0.0"
	conceptMapName        = "NAMASTEToICD11Map"
	conceptMapTitle       = "NAMASTE to ICD-11 Concept Mapping"
	conceptMapDescription = "Mapping between NAMASTE traditional medicine codes and ICD-11 classification"

	bundleID               = "namaste-icd11-bundle"
	bundleIdentifierPrefix = "ayush-bundle-"

	publisher = "Ministry of AYUSH, Government of India"
)

// Synthesizer builds the CodeSystem, ConceptMap and collection Bundle. Its
// only state is the injected clock and id generator, so one Synthesizer can
// serve concurrent callers.
type Synthesizer struct {
	clock Clock
	ids   IDGenerator
}

type Option func(*Synthesizer)

func WithClock(c Clock) Option { return func(s *Synthesizer) { s.clock = c } }

func WithIDGenerator(g IDGenerator) Option { return func(s *Synthesizer) { s.ids = g } }

// New returns a Synthesizer on the system clock and random UUIDs unless
// options say otherwise.
func New(opts ...Option) *Synthesizer {
	s := &Synthesizer{clock: SystemClock(), ids: UUIDGenerator()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// BuildCodeRegistryDocument returns the NAMASTE CodeSystem carrying the
// selected source as its only concept, or no concepts when source is nil.
func (s *Synthesizer) BuildCodeRegistryDocument(source *registry.SourceCode) *CodeSystem {
	cs := &CodeSystem{
		ResourceType: "CodeSystem",
		ID:           codeSystemID,
		URL:          fhirmodels.CodeSystemURLNAMASTE,
		Version:      codeSystemVersion,
		Name:         codeSystemName,
		Title:        codeSystemTitle,
		Status:       fhirmodels.StatusActive,
		Date:         fhir.FormatInstant(s.clock.Now()),
		Publisher:    publisher,
		Description:  codeSystemDescription,
		Content:      "complete",
		Concept:      []Concept{},
	}
	if source == nil {
		return cs
	}
	cs.Concept = append(cs.Concept, Concept{
		Code:       source.Code,
		Display:    source.Display,
		Definition: source.Definition(),
		Designation: []Designation{{
			Use:   fhir.Coding{System: fhirmodels.SystemDesignationUsage, Code: "display"},
			Value: source.Display,
		}},
		Property: []ConceptProperty{{Code: "system", ValueString: source.System}},
	})
	return cs
}

// BuildMappingDocument returns a ConceptMap from source to targets, or None
// when source is nil or targets is empty. Targets keep the caller's order.
func (s *Synthesizer) BuildMappingDocument(source *registry.SourceCode, targets []*registry.TargetCode) Optional[*ConceptMap] {
	if source == nil {
		return None[*ConceptMap]()
	}
	mapped := make([]ConceptMapTarget, 0, len(targets))
	for _, t := range targets {
		if t == nil {
			continue
		}
		mapped = append(mapped, ConceptMapTarget{
			Code:        t.Code,
			Display:     t.Display,
			Equivalence: fhirmodels.EquivalenceEquivalent,
			Comment:     fmt.Sprintf("Mapped from %s to %s", source.System, t.Module),
		})
	}
	if len(mapped) == 0 {
		return None[*ConceptMap]()
	}

	return Some(&ConceptMap{
		ResourceType: "ConceptMap",
		ID:           conceptMapID,
		URL:          fhirmodels.ConceptMapURLNAMASTE,
		Version:      conceptMapVersion,
		Name:         conceptMapName,
		Title:        conceptMapTitle,
		Status:       fhirmodels.StatusActive,
		Date:         fhir.FormatInstant(s.clock.Now()),
		Publisher:    publisher,
		Description:  conceptMapDescription,
		SourceURI:    fhirmodels.SystemNAMASTE,
		TargetURI:    fhirmodels.SystemICD11,
		Group: []ConceptMapGroup{{
			Source: fhirmodels.SystemNAMASTE,
			Target: fhirmodels.SystemICD11,
			Element: []ConceptMapElement{{
				Code:    source.Code,
				Display: source.Display,
				Target:  mapped,
			}},
		}},
	})
}

// BuildCollectionDocument bundles the CodeSystem, the ConceptMap when there
// is one, and one Condition per problem in the order given. Problem code ids
// are resolved through snap; ids it cannot resolve are left out and listed
// in the Report. A severity or clinical status outside its vocabulary fails
// the whole build with an *UnknownVocabularyValueError.
func (s *Synthesizer) BuildCollectionDocument(snap *registry.Snapshot, source *registry.SourceCode, targets []*registry.TargetCode, problems []*problem.ProblemEntry) (*Bundle, *Report, error) {
	if snap == nil {
		snap = registry.EmptySnapshot()
	}
	now := s.clock.Now().UTC()
	report := &Report{DanglingReferences: []DanglingReference{}, Warnings: []string{}}

	entries := make([]BundleEntry, 0, len(problems)+2)
	entries = append(entries, BundleEntry{Resource: s.BuildCodeRegistryDocument(source)})
	if cm, ok := s.BuildMappingDocument(source, targets).Get(); ok {
		entries = append(entries, BundleEntry{Resource: cm})
	}

	for _, p := range problems {
		if p == nil {
			continue
		}
		cond, err := buildCondition(snap, p, fhir.FormatDate(now), report)
		if err != nil {
			return nil, nil, fmt.Errorf("problem %s: %w", p.ID, err)
		}
		entries = append(entries, BundleEntry{Resource: cond})
	}

	instant := fhir.FormatInstant(now)
	return &Bundle{
		ResourceType: "Bundle",
		ID:           bundleID,
		Meta:         fhir.Meta{LastUpdated: instant},
		Identifier: fhir.Identifier{
			System: fhirmodels.SystemBundleIdentifier,
			Value:  bundleIdentifierPrefix + s.ids.NewID(),
		},
		Type:      "collection",
		Timestamp: instant,
		Entry:     entries,
	}, report, nil
}

func buildCondition(snap *registry.Snapshot, p *problem.ProblemEntry, today string, report *Report) (*Condition, error) {
	status, err := TranslateClinicalStatus(p.ClinicalStatus)
	if err != nil {
		return nil, err
	}
	severity, err := TranslateSeverity(p.Severity)
	if err != nil {
		return nil, err
	}

	codings := make([]fhir.Coding, 0, 1+len(p.TargetCodeIDs))
	if p.SourceCodeID != "" {
		if src, ok := snap.FindSourceByID(p.SourceCodeID); ok {
			codings = append(codings, fhir.Coding{System: fhirmodels.SystemNAMASTE, Code: src.Code, Display: src.Display})
		} else {
			report.DanglingReferences = append(report.DanglingReferences,
				DanglingReference{ProblemID: p.ID, Kind: RefKindSource, CodeID: p.SourceCodeID})
		}
	}
	for _, id := range p.TargetCodeIDs {
		if tgt, ok := snap.FindTargetByID(id); ok {
			codings = append(codings, fhir.Coding{System: fhirmodels.SystemICD11, Code: tgt.Code, Display: tgt.Display})
		} else {
			report.DanglingReferences = append(report.DanglingReferences,
				DanglingReference{ProblemID: p.ID, Kind: RefKindTarget, CodeID: id})
		}
	}

	if w := p.DateOrderWarning(); w != "" {
		report.Warnings = append(report.Warnings, w)
	}

	cond := &Condition{
		ResourceType:   "Condition",
		ID:             p.ID,
		ClinicalStatus: fhir.CodeableConcept{Coding: []fhir.Coding{status}},
		Severity:       fhir.CodeableConcept{Coding: []fhir.Coding{severity}},
		Code:           fhir.CodeableConcept{Coding: codings},
		Subject:        fhir.Reference{Reference: fhir.FormatReference("Patient", p.PatientRef)},
		RecordedDate:   today,
	}
	if p.OnsetDate != nil {
		cond.OnsetDate = p.OnsetDate.String()
	}
	if p.RecordedDate != nil {
		cond.RecordedDate = p.RecordedDate.String()
	}
	if strings.TrimSpace(p.ClinicalNotes) != "" {
		cond.Note = []fhir.Annotation{{Text: p.ClinicalNotes}}
	}
	return cond, nil
}

// GenerationID returns the per-call id embedded in the bundle identifier.
func GenerationID(b *Bundle) string {
	return strings.TrimPrefix(b.Identifier.Value, bundleIdentifierPrefix)
}
