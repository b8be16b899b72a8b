// Package api holds the CLI output helpers shared by every command.
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/pbaptista/diesp/internal/extractor"
	"github.com/pbaptista/diesp/internal/fields"
)

// OutputFormat selects how command results are rendered.
type OutputFormat string

const (
	OutputFormatYAML  OutputFormat = "yaml"
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatTable OutputFormat = "table"
)

// globalOutputFormat is set by the root command's --output flag.
var globalOutputFormat = OutputFormatTable

// SetOutputFormat sets the global output format.
func SetOutputFormat(format string) {
	switch format {
	case "json":
		globalOutputFormat = OutputFormatJSON
	case "yaml":
		globalOutputFormat = OutputFormatYAML
	default:
		globalOutputFormat = OutputFormatTable
	}
}

// GetOutputFormat returns the current global output format.
func GetOutputFormat() OutputFormat {
	return globalOutputFormat
}

// Output writes data to stdout in the configured format. The table
// format only knows how to render documents; other payloads fall back
// to YAML.
func Output(data any) error {
	return OutputTo(os.Stdout, globalOutputFormat, data)
}

// OutputTo writes data to the given writer in the specified format.
func OutputTo(w io.Writer, format OutputFormat, data any) error {
	switch format {
	case OutputFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case OutputFormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(data)
	case OutputFormatTable:
		if doc, ok := data.(*extractor.Document); ok {
			return writeDocumentTable(w, doc)
		}
		return OutputTo(w, OutputFormatYAML, data)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// writeDocumentTable renders the field map as an aligned terminal
// table with a window summary header.
func writeDocumentTable(w io.Writer, doc *extractor.Document) error {
	fmt.Fprintf(w, "%s  tipo=%s", doc.Source, doc.DocType)
	if doc.Subtype != "" {
		fmt.Fprintf(w, " subtipo=%s", doc.Subtype)
	}
	fmt.Fprintf(w, "  paginas=%d-%d  score=%.3f\n", doc.StartPage1, doc.EndPage1, doc.MatchScore)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CAMPO\tVALOR\tCONF\tMETODO\tPAG")
	for _, name := range fields.All {
		f := doc.Fields[name]
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\t%d\n", name, f.Value, f.Confidence, f.Method, f.Page)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, warn := range doc.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
	return nil
}
