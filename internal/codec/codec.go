// Package codec reads and writes network snapshots in interchange formats.
package codec

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"ductnet/internal/domain"
)

// Importer parses network data from external formats
type Importer interface {
	Parse(r io.Reader) (*domain.Snapshot, error)
	Format() string
}

// Exporter exports network data to external formats
type Exporter interface {
	Export(snap *domain.Snapshot, w io.Writer) error
	Format() string
}

// Codec is a format that can both import and export
type Codec interface {
	Importer
	Exporter
}

// ImporterFor returns the importer for a format name
func ImporterFor(format string) (Importer, error) {
	switch strings.ToLower(format) {
	case "sheet":
		return NewSheetImporter(), nil
	default:
		return ExporterFor(format)
	}
}

// ExporterFor returns the codec for a format name. Sheets are import only.
func ExporterFor(format string) (Codec, error) {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	case "json":
		return NewJSONCodec(), nil
	default:
		return nil, fmt.Errorf("unsupported snapshot format %q", format)
	}
}

// FormatForPath guesses the format from a file name. Sheets are YAML files
// named *.sheet.yaml.
func FormatForPath(path string) string {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(name, ".sheet.yaml"), strings.HasSuffix(name, ".sheet.yml"):
		return "sheet"
	case filepath.Ext(name) == ".json":
		return "json"
	default:
		return "yaml"
	}
}
