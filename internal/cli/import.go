package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"ductnet/internal/codec"
)

var exportFormat string

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a snapshot file into the database",
	Long: `Import a snapshot file into the database, replacing the stored network.

The snapshot must build into a valid network before anything is written.
Stored scenarios are kept; their revision shows whether they are stale.

Formats:
  yaml   snapshot records (default)
  json   snapshot records
  sheet  hand-written survey sheet (*.sheet.yaml)

Examples:
  ductnet import network.yaml
  ductnet import survey.sheet.yaml
  ductnet import export.txt --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the current network as a snapshot",
	Long: `Export the current network (database or --snapshot) as a snapshot file.
Writes YAML to stdout when no file is given.

Examples:
  ductnet export
  ductnet export network.json
  ductnet --snapshot survey.sheet.yaml export network.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "to", "", "output format: yaml or json (default: by file name)")
}

func runImport(cmd *cobra.Command, args []string) error {
	from := codec.NewFileSource(args[0], snapshotFormat)
	result, err := svc.Import(cmd.Context(), from, repo)
	if err != nil {
		return err
	}
	return printResult(cmd.OutOrStdout(), result, func(w io.Writer) error {
		return renderImport(w, result)
	})
}

func runExport(cmd *cobra.Command, args []string) error {
	loaded, err := svc.Load(cmd.Context())
	if err != nil {
		return err
	}

	format := exportFormat
	if format == "" && len(args) == 1 {
		format = codec.FormatForPath(args[0])
	}
	if format == "" {
		format = "yaml"
	}
	exporter, err := codec.ExporterFor(format)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		return exporter.Export(loaded.Snapshot, cmd.OutOrStdout())
	}

	f, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("create %s: %w", args[0], err)
	}
	if err := exporter.Export(loaded.Snapshot, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", args[0], err)
	}
	logger.Info("snapshot exported", "path", args[0], "format", exporter.Format(), "revision", short(loaded.Graph.Revision(), 12))
	return nil
}
