package synthesis

import (
	"errors"
	"strings"
	"testing"

	"github.com/Keerthivasan-cpu/mandara-connect/internal/domain/problem"
	"github.com/Keerthivasan-cpu/mandara-connect/internal/platform/fhir"
)

const workspaceJSON = `{
  "namaste_codes": [
    {"id": "nam-001", "code": "AYU.RESP.001", "display": "Kasa (Cough)", "system": "AYURVEDA", "icd11_mappings": ["TM40.00"]}
  ],
  "icd11_codes": [
    {"id": "icd-001", "code": "TM40.00", "display": "Cough disorder (TM2)", "module": "TM2"},
    {"id": "icd-002", "code": "CA80.2", "display": "Chronic cough", "module": "BIOMEDICINE"}
  ],
  "problems": [
    {"id": "p1", "patient_id": "pat-1", "namaste_code_id": "nam-001", "icd11_code_ids": ["icd-001", "icd-009"],
     "clinical_status": "active", "severity": "mild", "onset_date": "2024-01-02", "recorded_date": "2024-01-03"},
    {"id": "p2", "patient_id": "pat-2", "icd11_code_ids": ["icd-002"],
     "clinical_status": "resolved", "severity": "severe"}
  ],
  "selection": {"source_code_id": "nam-001", "target_code_ids": ["icd-002", "icd-001"]}
}`

func TestWorkspace_Build(t *testing.T) {
	ws, err := ReadWorkspace(strings.NewReader(workspaceJSON))
	if err != nil {
		t.Fatalf("ReadWorkspace: %v", err)
	}
	b, report, snap, err := ws.Build(newTestSynthesizer())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(b.Entry) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(b.Entry))
	}
	if report.Omitted() != 1 {
		t.Errorf("expected 1 omission, got %d", report.Omitted())
	}
	if err := VerifyReferences(b, snap); err != nil {
		t.Errorf("verify: %v", err)
	}
	if got := b.Conditions()[1].RecordedDate; got != "2024-03-05" {
		t.Errorf("recordedDate default = %q", got)
	}
}

func TestWorkspace_SelectedProblems(t *testing.T) {
	ws, err := ReadWorkspace(strings.NewReader(workspaceJSON))
	if err != nil {
		t.Fatal(err)
	}
	ws.Selection.ProblemIDs = []string{"p2"}
	b, _, _, err := ws.Build(newTestSynthesizer())
	if err != nil {
		t.Fatal(err)
	}
	if conds := b.Conditions(); len(conds) != 1 || conds[0].ID != "p2" {
		t.Errorf("conditions = %+v", conds)
	}

	ws.Selection.ProblemIDs = []string{"p3"}
	if _, _, _, err := ws.Build(newTestSynthesizer()); !errors.Is(err, problem.ErrNotFound) {
		t.Errorf("expected problem.ErrNotFound, got %v", err)
	}
}

func TestWorkspace_RepeatedProblemIDs(t *testing.T) {
	ws, err := ReadWorkspace(strings.NewReader(workspaceJSON))
	if err != nil {
		t.Fatal(err)
	}
	ws.Selection.ProblemIDs = []string{"p1", "p1"}
	b, _, _, err := ws.Build(newTestSynthesizer())
	if err != nil {
		t.Fatal(err)
	}
	if conds := b.Conditions(); len(conds) != 1 || conds[0].ID != "p1" {
		t.Errorf("expected a single p1 condition, got %d", len(conds))
	}
}

func TestWorkspace_NullProblems(t *testing.T) {
	const body = `{
  "namaste_codes": [{"id": "nam-001", "code": "AYU.RESP.001", "display": "Kasa (Cough)", "system": "AYURVEDA"}],
  "icd11_codes": [],
  "problems": [null],
  "selection": {"source_code_id": "nam-001", "problem_ids": ["p1"]}
}`
	ws, err := ReadWorkspace(strings.NewReader(body))
	if err != nil {
		t.Fatalf("ReadWorkspace: %v", err)
	}
	if _, _, _, err := ws.Build(newTestSynthesizer()); !errors.Is(err, problem.ErrNotFound) {
		t.Errorf("expected problem.ErrNotFound, got %v", err)
	}

	ws.Selection.ProblemIDs = nil
	b, _, _, err := ws.Build(newTestSynthesizer())
	if err != nil {
		t.Fatalf("Build without selection: %v", err)
	}
	if len(b.Conditions()) != 0 {
		t.Errorf("expected no conditions, got %d", len(b.Conditions()))
	}
}

func TestReadWorkspace_RejectsUnknownFields(t *testing.T) {
	if _, err := ReadWorkspace(strings.NewReader(`{"codes": []}`)); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestWorkspace_InvalidRegistry(t *testing.T) {
	ws := &Workspace{NAMASTE: testSources()}
	ws.NAMASTE = append(ws.NAMASTE, ws.NAMASTE[0])
	if _, _, _, err := ws.Build(newTestSynthesizer()); err == nil {
		t.Error("expected duplicate registry error")
	}
}

func TestArtifacts(t *testing.T) {
	ws, err := ReadWorkspace(strings.NewReader(workspaceJSON))
	if err != nil {
		t.Fatal(err)
	}
	b, _, _, err := ws.Build(newTestSynthesizer())
	if err != nil {
		t.Fatal(err)
	}
	arts, err := Artifacts(b)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{fhir.ArtifactCodeSystem, fhir.ArtifactConceptMap, fhir.ArtifactBundle, fhir.ArtifactConditions, fhir.ArtifactMappingTable}
	if len(arts) != len(want) {
		t.Fatalf("expected %d artifacts, got %d", len(want), len(arts))
	}
	for i, a := range arts {
		if a.Name != want[i] {
			t.Errorf("artifact[%d] = %s, want %s", i, a.Name, want[i])
		}
		if len(a.Body) == 0 {
			t.Errorf("artifact %s is empty", a.Name)
		}
	}
}

func TestArtifacts_NoConceptMap(t *testing.T) {
	b, _, err := newTestSynthesizer().BuildCollectionDocument(nil, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	arts, err := Artifacts(b)
	if err != nil {
		t.Fatal(err)
	}
	if len(arts) != 3 {
		t.Errorf("expected 3 artifacts, got %d", len(arts))
	}

	if _, err := Artifacts(&Bundle{}); err == nil {
		t.Error("expected error for bundle without CodeSystem")
	}
}

func TestIsValidKind(t *testing.T) {
	for _, k := range Kinds {
		if !IsValidKind(k) {
			t.Errorf("%s should be valid", k)
		}
	}
	if IsValidKind("pdf") {
		t.Error("pdf should not be valid")
	}
}
