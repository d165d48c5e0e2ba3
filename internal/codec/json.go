package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"ductnet/internal/domain"
)

// JSONCodec handles JSON import/export of snapshots
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Parse imports a snapshot from JSON
func (c *JSONCodec) Parse(r io.Reader) (*domain.Snapshot, error) {
	snap := domain.NewSnapshot()
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(snap); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	return snap, nil
}

// Export exports a snapshot to JSON
func (c *JSONCodec) Export(snap *domain.Snapshot, w io.Writer) error {
	return WriteJSON(w, snap)
}

// WriteJSON writes any value as indented JSON. Used for route, reconcile
// and inference results on the command line.
func WriteJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
