package codec_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ductnet/internal/codec"
	"ductnet/internal/domain"
	"ductnet/internal/network"
	"ductnet/internal/network/networktest"
)

func sample() *domain.Snapshot {
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	return networktest.Line(4).
		Cable(1, 2).
		Observe(1, 1, 3, at).
		Snapshot()
}

func TestYAMLExportParse(t *testing.T) {
	snap := sample()
	c := codec.NewYAMLCodec()

	var buf bytes.Buffer
	require.NoError(t, c.Export(snap, &buf))
	assert.Contains(t, buf.String(), "start_well_id: 1")

	parsed, err := c.Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, snap.Wells, parsed.Wells)
	assert.Equal(t, snap.Directions, parsed.Directions)
	assert.Equal(t, snap.Cables, parsed.Cables)
	require.Len(t, parsed.Observations, 1)
	assert.True(t, snap.Observations[0].CapturedAt.Equal(parsed.Observations[0].CapturedAt))

	// Both sides build to the same revision
	g1, err := network.Build(snap)
	require.NoError(t, err)
	g2, err := network.Build(parsed)
	require.NoError(t, err)
	assert.Equal(t, g1.Revision(), g2.Revision())
}

func TestYAMLRejectsUnknownFields(t *testing.T) {
	input := `
wells:
  - id: 1
    number: A
    colour: red
directions: []
`
	_, err := codec.NewYAMLCodec().Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestYAMLEmptyDocument(t *testing.T) {
	snap, err := codec.NewYAMLCodec().Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, snap.Wells)
}

func TestJSONExportParse(t *testing.T) {
	snap := sample()
	c := codec.NewJSONCodec()

	var buf bytes.Buffer
	require.NoError(t, c.Export(snap, &buf))
	assert.Contains(t, buf.String(), `"slot_count": 4`)

	parsed, err := c.Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, snap.Directions, parsed.Directions)
	assert.Equal(t, snap.Slots, parsed.Slots)

	_, err = c.Parse(strings.NewReader(`{"wells": [], "pipes": []}`))
	assert.Error(t, err)
}

func TestFormatForPath(t *testing.T) {
	tests := map[string]string{
		"net.yaml":          "yaml",
		"net.YML":           "yaml",
		"dump.json":         "json",
		"survey.sheet.yaml": "sheet",
		"/a/b/x.Sheet.yml":  "sheet",
		"no-extension":      "yaml",
	}
	for path, want := range tests {
		assert.Equal(t, want, codec.FormatForPath(path), path)
	}
}

func TestImporterFor(t *testing.T) {
	for _, f := range []string{"yaml", "json", "sheet"} {
		imp, err := codec.ImporterFor(f)
		require.NoError(t, err)
		assert.Equal(t, f, imp.Format())
	}
	_, err := codec.ImporterFor("xml")
	assert.Error(t, err)
	_, err = codec.ExporterFor("sheet")
	assert.Error(t, err)
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "net.json")

	var buf bytes.Buffer
	require.NoError(t, codec.NewJSONCodec().Export(sample(), &buf))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	src := codec.NewFileSource(path, "")
	snap, err := src.LoadSnapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Wells, 3)
	assert.Equal(t, "file:"+path, src.String())

	// Forcing the wrong format fails with the path in the message
	_, err = codec.NewFileSource(path, "yaml").LoadSnapshot(context.Background())
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), path)
	}

	_, err = codec.NewFileSource(filepath.Join(dir, "missing.yaml"), "").LoadSnapshot(context.Background())
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.LoadSnapshot(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileSourceSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "survey.sheet.yaml")
	sheet := `
wells:
  A: {lat: 0, lng: 0}
  B: {lat: 0, lng: 0.001}
directions:
  - between: [A, B]
    length_m: 12
    slots: 2
`
	require.NoError(t, os.WriteFile(path, []byte(sheet), 0644))

	snap, err := codec.NewFileSource(path, "").LoadSnapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Directions, 1)
	assert.Equal(t, 12.0, snap.Directions[0].LengthM)
	assert.Len(t, snap.Slots, 2)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, codec.WriteJSON(&buf, map[string]int{"routes": 2}))
	assert.Equal(t, "{\n  \"routes\": 2\n}\n", buf.String())
}
