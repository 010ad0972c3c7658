package fhir

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// NDJSONWriter streams resources one per line. Lines are encoded with the
// same HTML-safe-off settings as Canonical, without indentation.
type NDJSONWriter struct {
	buf   *bufio.Writer
	enc   *json.Encoder
	lines int
}

func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	buf := bufio.NewWriter(w)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	return &NDJSONWriter{buf: buf, enc: enc}
}

// WriteResource appends resource as one line. A resource that fails to
// encode writes nothing and is not counted.
func (n *NDJSONWriter) WriteResource(resource interface{}) error {
	if err := n.enc.Encode(resource); err != nil {
		return err
	}
	n.lines++
	return nil
}

// WriteAll writes resources in order and stops at the first failure.
func (n *NDJSONWriter) WriteAll(resources []interface{}) error {
	for i, r := range resources {
		if err := n.WriteResource(r); err != nil {
			return fmt.Errorf("write ndjson line %d: %w", i, err)
		}
	}
	return nil
}

// Lines reports how many resources have been written.
func (n *NDJSONWriter) Lines() int {
	return n.lines
}

func (n *NDJSONWriter) Flush() error {
	return n.buf.Flush()
}
