package fhir

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestCanonical_IndentAndNoHTMLEscape(t *testing.T) {
	doc := struct {
		ResourceType string `json:"resourceType"`
		Title        string `json:"title"`
	}{"CodeSystem", "Kasa & <Cough>"}

	out, err := Canonical(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "{\n  \"resourceType\": \"CodeSystem\",\n  \"title\": \"Kasa & <Cough>\"\n}\n"
	if string(out) != want {
		t.Errorf("expected\n%s\ngot\n%s", want, out)
	}
}

func TestCanonical_Stable(t *testing.T) {
	v := map[string]interface{}{"b": 1, "a": 2}
	first, _ := Canonical(v)
	second, _ := Canonical(v)
	if string(first) != string(second) {
		t.Error("expected identical encodings")
	}
}

func TestNewJSONArtifact(t *testing.T) {
	a, err := NewJSONArtifact(ArtifactCodeSystem, map[string]string{"resourceType": "CodeSystem"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Name != "namaste-codesystem.json" {
		t.Errorf("unexpected name %s", a.Name)
	}
	if a.ContentType != ContentTypeFHIRJSON {
		t.Errorf("unexpected content type %s", a.ContentType)
	}
}

func TestNewNDJSONArtifact(t *testing.T) {
	a, err := NewNDJSONArtifact(ArtifactConditions, []interface{}{
		map[string]string{"id": "a"},
		map[string]string{"id": "b"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Count(string(a.Body), "\n"); got != 2 {
		t.Errorf("expected 2 lines, got %d", got)
	}
	if a.Resources != 2 {
		t.Errorf("expected 2 resources counted, got %d", a.Resources)
	}
}

func TestNewNDJSONArtifact_EncodeError(t *testing.T) {
	_, err := NewNDJSONArtifact(ArtifactConditions, []interface{}{
		map[string]string{"id": "a"},
		map[string]interface{}{"bad": make(chan int)},
	})
	if err == nil || !strings.Contains(err.Error(), "line 1") {
		t.Errorf("expected error naming line 1, got %v", err)
	}
}

func TestWriteArtifact(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	a := &Artifact{Name: ArtifactBundle, ContentType: ContentTypeFHIRJSON, Body: []byte("{}\n")}

	path, err := WriteArtifact(dir, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "{}\n" {
		t.Errorf("unexpected file content %q", data)
	}
	if filepath.Base(path) != ArtifactBundle {
		t.Errorf("unexpected file name %s", path)
	}
}

func TestWriteArtifact_Nil(t *testing.T) {
	if _, err := WriteArtifact(t.TempDir(), nil); err == nil {
		t.Error("expected error for nil artifact")
	}
}

func TestArtifactSend_Download(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	a := &Artifact{Name: ArtifactConceptMap, ContentType: ContentTypeFHIRJSON, Body: []byte("{}")}
	if err := a.Send(c, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	cd := rec.Header().Get(echo.HeaderContentDisposition)
	if !strings.Contains(cd, "namaste-icd11-conceptmap.json") {
		t.Errorf("expected attachment disposition, got %q", cd)
	}
	if rec.Header().Get(echo.HeaderContentType) != ContentTypeFHIRJSON {
		t.Errorf("unexpected content type %q", rec.Header().Get(echo.HeaderContentType))
	}
}

func TestArtifactSend_Inline(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	a := &Artifact{Name: ArtifactBundle, ContentType: ContentTypeFHIRJSON, Body: []byte("{}")}
	if err := a.Send(c, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Header().Get(echo.HeaderContentDisposition) != "" {
		t.Error("inline responses must not set a disposition")
	}
}
