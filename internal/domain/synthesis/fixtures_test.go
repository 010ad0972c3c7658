package synthesis

import (
	"testing"
	"time"

	"github.com/Keerthivasan-cpu/mandara-connect/internal/domain/problem"
	"github.com/Keerthivasan-cpu/mandara-connect/internal/domain/registry"
	"github.com/Keerthivasan-cpu/mandara-connect/pkg/fhirmodels"
)

var testNow = time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)

func newTestSynthesizer() *Synthesizer {
	return New(WithClock(FixedClock(testNow)), WithIDGenerator(FixedIDGenerator("gen-1")))
}

func testSources() []registry.SourceCode {
	return []registry.SourceCode{
		{ID: "nam-001", Code: "AYU.RESP.001", Display: "Kasa (Cough)", System: fhirmodels.SystemAyurveda, Description: "Respiratory condition characterized by persistent cough", MappedTargetCodes: []string{"TM40.00", "CA80.2"}},
		{ID: "nam-002", Code: "SID.NEUR.005", Display: "Vatham (Neurological disorder)", System: fhirmodels.SystemSiddha},
	}
}

func testTargets() []registry.TargetCode {
	return []registry.TargetCode{
		{ID: "icd-001", Code: "TM40.00", Display: "Cough disorder (TM2)", Module: fhirmodels.ModuleTM2},
		{ID: "icd-002", Code: "CA80.2", Display: "Chronic cough", Module: fhirmodels.ModuleBiomedicine},
		{ID: "icd-003", Code: "TM41.10", Display: "Acid dyspepsia (TM2)", Module: fhirmodels.ModuleTM2},
	}
}

func testSnapshot(t *testing.T) *registry.Snapshot {
	t.Helper()
	snap, err := registry.NewSnapshot(testSources(), testTargets())
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}
	return snap
}

func mustSource(t *testing.T, snap *registry.Snapshot, id string) *registry.SourceCode {
	t.Helper()
	src, ok := snap.FindSourceByID(id)
	if !ok {
		t.Fatalf("source %s not in snapshot", id)
	}
	return src
}

func mustTarget(t *testing.T, snap *registry.Snapshot, id string) *registry.TargetCode {
	t.Helper()
	tgt, ok := snap.FindTargetByID(id)
	if !ok {
		t.Fatalf("target %s not in snapshot", id)
	}
	return tgt
}

func testProblem(id string, targets ...string) *problem.ProblemEntry {
	return &problem.ProblemEntry{
		ID:             id,
		ClinicID:       "clinic-a",
		PatientRef:     "pat-1",
		SourceCodeID:   "nam-001",
		TargetCodeIDs:  targets,
		ClinicalStatus: fhirmodels.ConditionActive,
		Severity:       fhirmodels.SeverityModerate,
		CreatedBy:      "dr-1",
	}
}

func date(t *testing.T, s string) *problem.Date {
	t.Helper()
	d, err := problem.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return &d
}
