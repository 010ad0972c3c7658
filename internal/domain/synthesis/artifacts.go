package synthesis

import (
	"fmt"

	"github.com/Keerthivasan-cpu/mandara-connect/internal/platform/fhir"
)

// Artifact kinds accepted by the synthesize endpoint and the CLI.
const (
	KindCodeSystem   = "codesystem"
	KindConceptMap   = "conceptmap"
	KindBundle       = "bundle"
	KindConditions   = "conditions"
	KindMappingTable = "mapping-table"
)

// Kinds lists every artifact kind in output order.
var Kinds = []string{KindCodeSystem, KindConceptMap, KindBundle, KindConditions, KindMappingTable}

func IsValidKind(k string) bool {
	for _, v := range Kinds {
		if v == k {
			return true
		}
	}
	return false
}

func CodeSystemArtifact(cs *CodeSystem) (*fhir.Artifact, error) {
	return fhir.NewJSONArtifact(fhir.ArtifactCodeSystem, cs)
}

func ConceptMapArtifact(cm *ConceptMap) (*fhir.Artifact, error) {
	return fhir.NewJSONArtifact(fhir.ArtifactConceptMap, cm)
}

func BundleArtifact(b *Bundle) (*fhir.Artifact, error) {
	return fhir.NewJSONArtifact(fhir.ArtifactBundle, b)
}

// ConditionsArtifact writes the bundle's Conditions as NDJSON.
func ConditionsArtifact(b *Bundle) (*fhir.Artifact, error) {
	conds := b.Conditions()
	resources := make([]interface{}, len(conds))
	for i, c := range conds {
		resources[i] = c
	}
	return fhir.NewNDJSONArtifact(fhir.ArtifactConditions, resources)
}

func MappingTableArtifact(cm *ConceptMap) (*fhir.Artifact, error) {
	return fhir.MappingTableXLSX(cm.Rows())
}

// Artifacts renders every artifact a bundle supports. The ConceptMap and the
// mapping table are skipped when the bundle carries no ConceptMap.
func Artifacts(b *Bundle) ([]*fhir.Artifact, error) {
	var cs *CodeSystem
	var cm *ConceptMap
	for _, e := range b.Entry {
		switch r := e.Resource.(type) {
		case *CodeSystem:
			cs = r
		case *ConceptMap:
			cm = r
		}
	}
	if cs == nil {
		return nil, fmt.Errorf("bundle has no CodeSystem entry")
	}

	var out []*fhir.Artifact
	add := func(a *fhir.Artifact, err error) error {
		if err != nil {
			return err
		}
		out = append(out, a)
		return nil
	}
	if err := add(CodeSystemArtifact(cs)); err != nil {
		return nil, err
	}
	if cm != nil {
		if err := add(ConceptMapArtifact(cm)); err != nil {
			return nil, err
		}
	}
	if err := add(BundleArtifact(b)); err != nil {
		return nil, err
	}
	if err := add(ConditionsArtifact(b)); err != nil {
		return nil, err
	}
	if cm != nil {
		if err := add(MappingTableArtifact(cm)); err != nil {
			return nil, err
		}
	}
	return out, nil
}
