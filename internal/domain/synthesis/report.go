package synthesis

import "fmt"

// Reference kinds in a DanglingReference.
const (
	RefKindSource = "source"
	RefKindTarget = "target"
)

// DanglingReference is a code id a problem cites that the registry snapshot
// cannot resolve. The coding is left out of the Condition.
type DanglingReference struct {
	ProblemID string `json:"problem_id"`
	Kind      string `json:"kind"`
	CodeID    string `json:"code_id"`
}

func (d DanglingReference) String() string {
	return fmt.Sprintf("problem %s: %s code %s not in registry", d.ProblemID, d.Kind, d.CodeID)
}

// Report lists the non-fatal findings of one collection build.
type Report struct {
	DanglingReferences []DanglingReference `json:"dangling_references"`
	Warnings           []string            `json:"warnings"`
}

// Omitted is the number of codings left out of the bundle.
func (r *Report) Omitted() int { return len(r.DanglingReferences) }

// OmittedByKind counts omissions of one reference kind.
func (r *Report) OmittedByKind(kind string) int {
	n := 0
	for _, d := range r.DanglingReferences {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

func (r *Report) Clean() bool { return len(r.DanglingReferences) == 0 && len(r.Warnings) == 0 }
