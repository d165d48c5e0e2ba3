package codec

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"ductnet/internal/domain"
)

// YAMLCodec handles YAML import/export of snapshots
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// Parse imports a snapshot from YAML. Unknown keys are rejected so that a
// misspelled field cannot silently drop data.
func (c *YAMLCodec) Parse(r io.Reader) (*domain.Snapshot, error) {
	snap := domain.NewSnapshot()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(snap); err != nil {
		if errors.Is(err, io.EOF) {
			return snap, nil
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return snap, nil
}

// Export exports a snapshot to YAML
func (c *YAMLCodec) Export(snap *domain.Snapshot, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(snap); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
