// package formatter renders catalog collections as tables, tags and export files (CSV, Markdown, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/catalogctl/internal/models"
	"github.com/desertthunder/catalogctl/internal/shared"
)

// Format is an export file format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat accepts csv, markdown (or md) and json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json", "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unsupported export format %q", shared.ErrInvalidFlag, s)
	}
}

// Ext returns the file extension for f.
func (f Format) Ext() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatMarkdown:
		return "md"
	default:
		return "json"
	}
}

// ExportToCSV converts a collection to CSV with the table columns of t. Relation cells list every name.
func ExportToCSV(t models.EntityType, items []models.Entity) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(Columns(t)); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, record := range Rows(items, 0) {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a collection to a Markdown document with a single table.
func ExportToMarkdown(t models.EntityType, items []models.Entity) ([]byte, error) {
	var buf bytes.Buffer

	title := strings.ToUpper(t.String()[:1]) + t.String()[1:]
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Count**: %d\n\n", len(items)))

	cols := Columns(t)
	buf.WriteString("| " + strings.Join(cols, " | ") + " |\n")
	buf.WriteString("|" + strings.Repeat(" --- |", len(cols)) + "\n")
	for _, row := range Rows(items, 0) {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = strings.ReplaceAll(c, "|", `\|`)
		}
		buf.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}

	return buf.Bytes(), nil
}

// ExportToJSON encodes a collection as indented JSON in the service's read shape.
func ExportToJSON(items []models.Entity) ([]byte, error) {
	if items == nil {
		items = []models.Entity{}
	}
	return shared.MarshalJSON(items, true)
}

// Export renders items in format f.
func Export(t models.EntityType, items []models.Entity, f Format) ([]byte, error) {
	switch f {
	case FormatCSV:
		return ExportToCSV(t, items)
	case FormatMarkdown:
		return ExportToMarkdown(t, items)
	default:
		return ExportToJSON(items)
	}
}

// WriteExport writes items to {dir}/{type}.{ext} and returns the file path.
func WriteExport(t models.EntityType, items []models.Entity, f Format, dir string) (string, error) {
	data, err := Export(t, items, f)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s export: %w", f, err)
	}

	path := filepath.Join(dir, t.String()+"."+f.Ext())
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

// ManifestEntry describes one exported collection.
type ManifestEntry struct {
	Type  models.EntityType `json:"type"`
	Count int               `json:"count"`
	File  string            `json:"file,omitempty"`
	Error string            `json:"error,omitempty"`
}

// Manifest summarizes an export run.
type Manifest struct {
	ExportedAt time.Time       `json:"exported_at"`
	BaseURL    string          `json:"base_url,omitempty"`
	Format     Format          `json:"format"`
	Entries    []ManifestEntry `json:"entries"`
}

// WriteManifest writes m as indented JSON to path.
func WriteManifest(m Manifest, path string) error {
	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
