package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Keerthivasan-cpu/mandara-connect/pkg/fhirmodels"
)

// =========== Mock Repositories ===========

type mockSourceRepo struct {
	codes   []SourceCode
	listErr error
}

func newMockSourceRepo() *mockSourceRepo {
	return &mockSourceRepo{codes: []SourceCode{
		{ID: "nam-001", Code: "AYU.RESP.001", Display: "Kasa (Cough)", System: fhirmodels.SystemAyurveda, Description: "Respiratory condition characterized by persistent cough", MappedTargetCodes: []string{"TM40.00", "CA80.2"}},
		{ID: "nam-002", Code: "AYU.DIGE.003", Display: "Amlapitta (Hyperacidity)", System: fhirmodels.SystemAyurveda, Description: "Digestive disorder with excess acid production", MappedTargetCodes: []string{"TM41.10", "DA60.0"}},
		{ID: "nam-003", Code: "SID.NEUR.005", Display: "Vatham (Neurological disorder)", System: fhirmodels.SystemSiddha, MappedTargetCodes: []string{"TM42.20"}},
		{ID: "nam-004", Code: "UNA.CARD.002", Display: "Khafqan (Palpitation)", System: fhirmodels.SystemUnani},
	}}
}

func (m *mockSourceRepo) List(_ context.Context) ([]SourceCode, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.codes, nil
}

func (m *mockSourceRepo) Search(_ context.Context, query, system string, limit int) ([]*SourceCode, error) {
	var results []*SourceCode
	q := strings.ToLower(query)
	for i := range m.codes {
		c := &m.codes[i]
		if system != "" && c.System != system {
			continue
		}
		if strings.Contains(strings.ToLower(c.Code), q) || strings.Contains(strings.ToLower(c.Display), q) {
			results = append(results, c)
			if len(results) >= limit {
				break
			}
		}
	}
	return results, nil
}

func (m *mockSourceRepo) GetByCode(_ context.Context, code string) (*SourceCode, error) {
	for i := range m.codes {
		if m.codes[i].Code == code {
			return &m.codes[i], nil
		}
	}
	return nil, fmt.Errorf("namaste %s: %w", code, ErrNotFound)
}

type mockTargetRepo struct {
	codes []TargetCode
}

func newMockTargetRepo() *mockTargetRepo {
	return &mockTargetRepo{codes: []TargetCode{
		{ID: "icd-001", Code: "TM40.00", Display: "Respiratory disorders - Traditional Medicine", Module: fhirmodels.ModuleTM2, MappedSourceCodes: []string{"AYU.RESP.001"}},
		{ID: "icd-002", Code: "CA80.2", Display: "Chronic cough", Module: fhirmodels.ModuleBiomedicine, Description: "Cough persisting for more than 8 weeks"},
		{ID: "icd-003", Code: "TM41.10", Display: "Digestive disorders - Traditional Medicine", Module: fhirmodels.ModuleTM2},
		{ID: "icd-004", Code: "DA60.0", Display: "Gastro-oesophageal reflux disease", Module: fhirmodels.ModuleBiomedicine},
	}}
}

func (m *mockTargetRepo) List(_ context.Context) ([]TargetCode, error) {
	return m.codes, nil
}

func (m *mockTargetRepo) Search(_ context.Context, query, module string, limit int) ([]*TargetCode, error) {
	var results []*TargetCode
	q := strings.ToLower(query)
	for i := range m.codes {
		c := &m.codes[i]
		if module != "" && c.Module != module {
			continue
		}
		if strings.Contains(strings.ToLower(c.Code), q) || strings.Contains(strings.ToLower(c.Display), q) {
			results = append(results, c)
			if len(results) >= limit {
				break
			}
		}
	}
	return results, nil
}

func (m *mockTargetRepo) GetByCode(_ context.Context, code string) (*TargetCode, error) {
	for i := range m.codes {
		if m.codes[i].Code == code {
			return &m.codes[i], nil
		}
	}
	return nil, fmt.Errorf("icd11 %s: %w", code, ErrNotFound)
}

func newTestService() *Service {
	return NewService(newMockSourceRepo(), newMockTargetRepo())
}

// =========== Search Tests ===========

func TestService_SearchSources(t *testing.T) {
	svc := newTestService()
	results, err := svc.SearchSources(context.Background(), "kasa", "", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Code != "AYU.RESP.001" {
		t.Errorf("expected AYU.RESP.001, got %+v", results)
	}
}

func TestService_SearchSources_SystemFilterWithoutQuery(t *testing.T) {
	svc := newTestService()
	results, err := svc.SearchSources(context.Background(), "", fhirmodels.SystemAyurveda, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 AYURVEDA codes, got %d", len(results))
	}
}

func TestService_SearchSources_QueryRequired(t *testing.T) {
	svc := newTestService()
	_, err := svc.SearchSources(context.Background(), "", "", 20)
	if !errors.Is(err, ErrQueryRequired) {
		t.Errorf("expected ErrQueryRequired, got %v", err)
	}
}

func TestService_SearchSources_UnknownSystem(t *testing.T) {
	svc := newTestService()
	_, err := svc.SearchSources(context.Background(), "kasa", "HOMEOPATHY", 20)
	if !errors.Is(err, ErrUnknownSystem) {
		t.Errorf("expected ErrUnknownSystem, got %v", err)
	}
}

func TestService_SearchTargets_ModuleFilter(t *testing.T) {
	svc := newTestService()
	results, err := svc.SearchTargets(context.Background(), "", fhirmodels.ModuleTM2, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range results {
		if r.Module != fhirmodels.ModuleTM2 {
			t.Errorf("expected only TM2 codes, got %s", r.Module)
		}
	}
	if len(results) != 2 {
		t.Errorf("expected 2 TM2 codes, got %d", len(results))
	}
}

func TestService_SearchTargets_UnknownModule(t *testing.T) {
	svc := newTestService()
	_, err := svc.SearchTargets(context.Background(), "cough", "TM1", 20)
	if !errors.Is(err, ErrUnknownSystem) {
		t.Errorf("expected ErrUnknownSystem, got %v", err)
	}
}

// =========== Snapshot / Suggest Tests ===========

func TestService_Snapshot(t *testing.T) {
	svc := newTestService()
	snap, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.SourceCount() != 4 || snap.TargetCount() != 4 {
		t.Errorf("expected 4/4 codes, got %d/%d", snap.SourceCount(), snap.TargetCount())
	}
}

func TestService_Snapshot_ListError(t *testing.T) {
	src := newMockSourceRepo()
	src.listErr = errors.New("connection refused")
	svc := NewService(src, newMockTargetRepo())
	if _, err := svc.Snapshot(context.Background()); err == nil {
		t.Error("expected error when source list fails")
	}
}

func TestService_SuggestTargets(t *testing.T) {
	svc := newTestService()
	results, err := svc.SuggestTargets(context.Background(), "AYU.RESP.001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(results))
	}
	if results[0].Code != "TM40.00" || results[1].Code != "CA80.2" {
		t.Errorf("expected registry order TM40.00, CA80.2; got %s, %s", results[0].Code, results[1].Code)
	}
}

func TestService_SuggestTargets_SkipsUnresolved(t *testing.T) {
	svc := newTestService()
	// TM42.20 is not in the mock ICD-11 registry.
	results, err := svc.SuggestTargets(context.Background(), "SID.NEUR.005")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no suggestions, got %d", len(results))
	}
}

func TestService_SuggestTargets_NotFound(t *testing.T) {
	svc := newTestService()
	_, err := svc.SuggestTargets(context.Background(), "AYU.NONE.999")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// =========== Lookup Tests ===========

func TestService_Lookup_NAMASTE(t *testing.T) {
	svc := newTestService()
	resp, err := svc.Lookup(context.Background(), &LookupRequest{System: fhirmodels.SystemNAMASTE, Code: "AYU.RESP.001"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.ResourceType != "Parameters" {
		t.Errorf("expected Parameters, got %s", resp.ResourceType)
	}
	got := map[string]string{}
	for _, p := range resp.Parameter {
		got[p.Name] = p.ValueString
	}
	if got["name"] != "NAMASTE" {
		t.Errorf("expected name NAMASTE, got %q", got["name"])
	}
	if got["display"] != "Kasa (Cough)" {
		t.Errorf("expected display 'Kasa (Cough)', got %q", got["display"])
	}
	if got["definition"] != "Respiratory condition characterized by persistent cough" {
		t.Errorf("unexpected definition %q", got["definition"])
	}
}

func TestService_Lookup_DefinitionFallsBackToDisplay(t *testing.T) {
	svc := newTestService()
	resp, err := svc.Lookup(context.Background(), &LookupRequest{System: fhirmodels.SystemNAMASTE, Code: "UNA.CARD.002"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range resp.Parameter {
		if p.Name == "definition" && p.ValueString != "Khafqan (Palpitation)" {
			t.Errorf("expected display as definition, got %q", p.ValueString)
		}
	}
}

func TestService_Lookup_ICD11(t *testing.T) {
	svc := newTestService()
	resp, err := svc.Lookup(context.Background(), &LookupRequest{System: fhirmodels.SystemICD11, Code: "CA80.2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Parameter[0].ValueString != "ICD-11" {
		t.Errorf("expected name ICD-11, got %q", resp.Parameter[0].ValueString)
	}
}

func TestService_Lookup_UnknownSystem(t *testing.T) {
	svc := newTestService()
	_, err := svc.Lookup(context.Background(), &LookupRequest{System: "http://loinc.org", Code: "8310-5"})
	if !errors.Is(err, ErrUnknownSystem) {
		t.Errorf("expected ErrUnknownSystem, got %v", err)
	}
}

func TestService_Lookup_MissingFields(t *testing.T) {
	svc := newTestService()
	if _, err := svc.Lookup(context.Background(), &LookupRequest{Code: "AYU.RESP.001"}); err == nil {
		t.Error("expected error for missing system")
	}
	if _, err := svc.Lookup(context.Background(), &LookupRequest{System: fhirmodels.SystemNAMASTE}); err == nil {
		t.Error("expected error for missing code")
	}
}

// =========== ValidateCode Tests ===========

func resultOf(t *testing.T, resp *ValidateCodeResponse) bool {
	t.Helper()
	for _, p := range resp.Parameter {
		if p.Name == "result" && p.ValueBoolean != nil {
			return *p.ValueBoolean
		}
	}
	t.Fatal("no result parameter")
	return false
}

func TestService_ValidateCode_Valid(t *testing.T) {
	svc := newTestService()
	resp, err := svc.ValidateCode(context.Background(), &ValidateCodeRequest{System: fhirmodels.SystemICD11, Code: "TM40.00"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resultOf(t, resp) {
		t.Error("expected result true")
	}
}

func TestService_ValidateCode_UnknownCode(t *testing.T) {
	svc := newTestService()
	resp, err := svc.ValidateCode(context.Background(), &ValidateCodeRequest{System: fhirmodels.SystemNAMASTE, Code: "AYU.NONE.999"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resultOf(t, resp) {
		t.Error("expected result false")
	}
}

func TestService_ValidateCode_DisplayMismatch(t *testing.T) {
	svc := newTestService()
	resp, err := svc.ValidateCode(context.Background(), &ValidateCodeRequest{
		System: fhirmodels.SystemNAMASTE, Code: "AYU.RESP.001", Display: "Jwara (Fever)",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resultOf(t, resp) {
		t.Error("expected result false for mismatched display")
	}
}

func TestService_ValidateCode_UnknownSystem(t *testing.T) {
	svc := newTestService()
	_, err := svc.ValidateCode(context.Background(), &ValidateCodeRequest{System: "http://loinc.org", Code: "x"})
	if err == nil {
		t.Error("expected error for unknown system")
	}
}
