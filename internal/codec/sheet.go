package codec

import (
	"fmt"
	"io"

	"ductnet/internal/domain"
	"ductnet/internal/loader"
)

// SheetImporter reads hand-written network sheets
type SheetImporter struct{}

// NewSheetImporter creates a new sheet importer
func NewSheetImporter() *SheetImporter {
	return &SheetImporter{}
}

// Format returns the codec format identifier
func (c *SheetImporter) Format() string {
	return "sheet"
}

// Parse imports a snapshot from a sheet
func (c *SheetImporter) Parse(r io.Reader) (*domain.Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	return loader.ParseSheet(data)
}
