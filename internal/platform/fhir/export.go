package fhir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
)

// Content types for exported artifacts.
const (
	ContentTypeFHIRJSON   = "application/fhir+json"
	ContentTypeFHIRNDJSON = "application/fhir+ndjson"
	ContentTypeXLSX       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Well-known artifact file names. Receiving systems key their import jobs on
// these, so they stay fixed.
const (
	ArtifactCodeSystem   = "namaste-codesystem.json"
	ArtifactConceptMap   = "namaste-icd11-conceptmap.json"
	ArtifactBundle       = "namaste-icd11-bundle.json"
	ArtifactConditions   = "namaste-icd11-conditions.ndjson"
	ArtifactMappingTable = "namaste-icd11-mapping.xlsx"
)

// Artifact is a named, typed byte payload ready to be handed to a transport:
// an HTTP response, a file on disk, or an outbound push.
type Artifact struct {
	Name        string
	ContentType string
	Body        []byte
	// Resources is the number of NDJSON lines in Body; zero for other formats.
	Resources int
}

// Canonical encodes v as 2-space indented JSON terminated by a newline. Field
// order follows the struct declaration order of v; HTML characters are not
// escaped so the text round-trips unchanged through clipboards and editors.
func Canonical(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode canonical json: %w", err)
	}
	return buf.Bytes(), nil
}

// NewJSONArtifact wraps the canonical encoding of v under name.
func NewJSONArtifact(name string, v interface{}) (*Artifact, error) {
	body, err := Canonical(v)
	if err != nil {
		return nil, err
	}
	return &Artifact{Name: name, ContentType: ContentTypeFHIRJSON, Body: body}, nil
}

// NewNDJSONArtifact writes each resource as one JSON line.
func NewNDJSONArtifact(name string, resources []interface{}) (*Artifact, error) {
	var buf bytes.Buffer
	w := NewNDJSONWriter(&buf)
	if err := w.WriteAll(resources); err != nil {
		return nil, err
	}
	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("flush ndjson: %w", err)
	}
	return &Artifact{Name: name, ContentType: ContentTypeFHIRNDJSON, Body: buf.Bytes(), Resources: w.Lines()}, nil
}

// WriteArtifact stores a under dir, creating dir when needed, and returns the
// written path.
func WriteArtifact(dir string, a *Artifact) (string, error) {
	if a == nil {
		return "", fmt.Errorf("nil artifact")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, filepath.Base(a.Name))
	if err := os.WriteFile(path, a.Body, 0o644); err != nil {
		return "", fmt.Errorf("write artifact %s: %w", path, err)
	}
	return path, nil
}

// Send writes the artifact as the response body. When download is true the
// response carries an attachment disposition with the artifact name.
func (a *Artifact) Send(c echo.Context, download bool) error {
	if download {
		c.Response().Header().Set(echo.HeaderContentDisposition,
			fmt.Sprintf("attachment; filename=%q", a.Name))
	}
	return c.Blob(http.StatusOK, a.ContentType, a.Body)
}
