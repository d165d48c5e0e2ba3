package codec

import (
	"context"
	"fmt"
	"os"

	"ductnet/internal/domain"
)

// FileSource loads snapshots from a file on disk
type FileSource struct {
	Path   string
	Format string // empty = guess from the file name
}

// NewFileSource creates a file source
func NewFileSource(path, format string) *FileSource {
	return &FileSource{Path: path, Format: format}
}

// LoadSnapshot reads and parses the file
func (s *FileSource) LoadSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format := s.Format
	if format == "" {
		format = FormatForPath(s.Path)
	}
	importer, err := ImporterFor(format)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	snap, err := importer.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return snap, nil
}

// String describes the source for logs
func (s *FileSource) String() string {
	return "file:" + s.Path
}
