package synthesis

import (
	"github.com/Keerthivasan-cpu/mandara-connect/internal/platform/fhir"
)

// Field order in the structs below is the serialized field order.

type CodeSystem struct {
	ResourceType string    `json:"resourceType"`
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	Version      string    `json:"version"`
	Name         string    `json:"name"`
	Title        string    `json:"title"`
	Status       string    `json:"status"`
	Date         string    `json:"date"`
	Publisher    string    `json:"publisher"`
	Description  string    `json:"description"`
	Content      string    `json:"content"`
	Concept      []Concept `json:"concept"`
}

type Concept struct {
	Code        string            `json:"code"`
	Display     string            `json:"display"`
	Definition  string            `json:"definition"`
	Designation []Designation     `json:"designation"`
	Property    []ConceptProperty `json:"property"`
}

type Designation struct {
	Use   fhir.Coding `json:"use"`
	Value string      `json:"value"`
}

type ConceptProperty struct {
	Code        string `json:"code"`
	ValueString string `json:"valueString"`
}

type ConceptMap struct {
	ResourceType string            `json:"resourceType"`
	ID           string            `json:"id"`
	URL          string            `json:"url"`
	Version      string            `json:"version"`
	Name         string            `json:"name"`
	Title        string            `json:"title"`
	Status       string            `json:"status"`
	Date         string            `json:"date"`
	Publisher    string            `json:"publisher"`
	Description  string            `json:"description"`
	SourceURI    string            `json:"sourceUri"`
	TargetURI    string            `json:"targetUri"`
	Group        []ConceptMapGroup `json:"group"`
}

type ConceptMapGroup struct {
	Source  string              `json:"source"`
	Target  string              `json:"target"`
	Element []ConceptMapElement `json:"element"`
}

type ConceptMapElement struct {
	Code    string             `json:"code"`
	Display string             `json:"display"`
	Target  []ConceptMapTarget `json:"target"`
}

type ConceptMapTarget struct {
	Code        string `json:"code"`
	Display     string `json:"display"`
	Equivalence string `json:"equivalence"`
	Comment     string `json:"comment"`
}

// Rows flattens the map into one line per source/target pair.
func (m *ConceptMap) Rows() []fhir.MappingRow {
	var rows []fhir.MappingRow
	for _, g := range m.Group {
		for _, el := range g.Element {
			for _, t := range el.Target {
				rows = append(rows, fhir.MappingRow{
					SourceSystem:  g.Source,
					SourceCode:    el.Code,
					SourceDisplay: el.Display,
					TargetCode:    t.Code,
					TargetDisplay: t.Display,
					Equivalence:   t.Equivalence,
					Comment:       t.Comment,
				})
			}
		}
	}
	return rows
}

type Condition struct {
	ResourceType   string               `json:"resourceType"`
	ID             string               `json:"id"`
	ClinicalStatus fhir.CodeableConcept `json:"clinicalStatus"`
	Severity       fhir.CodeableConcept `json:"severity"`
	Code           fhir.CodeableConcept `json:"code"`
	Subject        fhir.Reference       `json:"subject"`
	OnsetDate      string               `json:"onsetDate,omitempty"`
	RecordedDate   string               `json:"recordedDate"`
	Note           []fhir.Annotation    `json:"note,omitempty"`
}

type Bundle struct {
	ResourceType string          `json:"resourceType"`
	ID           string          `json:"id"`
	Meta         fhir.Meta       `json:"meta"`
	Identifier   fhir.Identifier `json:"identifier"`
	Type         string          `json:"type"`
	Timestamp    string          `json:"timestamp"`
	Entry        []BundleEntry   `json:"entry"`
}

// BundleEntry holds exactly one of the three resource kinds.
type BundleEntry struct {
	Resource interface{} `json:"resource"`
}

// Conditions returns the Condition resources of the bundle in entry order.
func (b *Bundle) Conditions() []*Condition {
	var out []*Condition
	for _, e := range b.Entry {
		if c, ok := e.Resource.(*Condition); ok {
			out = append(out, c)
		}
	}
	return out
}
