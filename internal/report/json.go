package report

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/shivaghose/guardscan/internal/model"
)

// JSONWriter outputs reports as indented JSON.
// The full data model is serialized, including per-header
// classifications, so the output is suitable for downstream tooling.
type JSONWriter struct {
	baseWriter
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer) *JSONWriter {
	return &JSONWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report as JSON.
func (w *JSONWriter) Write(report *model.ScanReport) (int, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return 0, err
	}
	return w.output.Write(buf.Bytes())
}
