package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// OutputFormat represents the output format type.
type OutputFormat string

const (
	// OutputFormatText is the default human-readable format.
	OutputFormatText OutputFormat = "text"
	// OutputFormatJSON outputs data as JSON.
	OutputFormatJSON OutputFormat = "json"
)

// OutputWriter handles formatted output.
type OutputWriter struct {
	format OutputFormat
	writer io.Writer
}

// NewOutputWriter creates a new OutputWriter. A nil w writes to stdout.
func NewOutputWriter(format OutputFormat, w io.Writer) *OutputWriter {
	if w == nil {
		w = os.Stdout
	}
	return &OutputWriter{
		format: format,
		writer: w,
	}
}

// WriteJSON writes data as indented JSON.
func (o *OutputWriter) WriteJSON(data any) error {
	encoder := json.NewEncoder(o.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Write writes data according to the configured format.
// textFunc is called for text output, data is used for JSON output.
func (o *OutputWriter) Write(data any, textFunc func()) error {
	if o.format == OutputFormatJSON {
		return o.WriteJSON(data)
	}
	textFunc()
	return nil
}

// Printf writes formatted text output.
func (o *OutputWriter) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.writer, format, args...)
}

// Println writes a line of text output.
func (o *OutputWriter) Println(args ...any) {
	_, _ = fmt.Fprintln(o.writer, args...)
}

// IsJSON returns true if output format is JSON.
func (o *OutputWriter) IsJSON() bool {
	return o.format == OutputFormatJSON
}

// ParseOutputFormat parses a string into an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch s {
	case "text", "":
		return OutputFormatText, nil
	case "json":
		return OutputFormatJSON, nil
	default:
		return "", fmt.Errorf("invalid output format %q: must be 'text' or 'json'", s)
	}
}
