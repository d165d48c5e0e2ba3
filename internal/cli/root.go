// Package cli provides the command-line interface for ductnet.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ductnet/internal/codec"
	"ductnet/internal/config"
	"ductnet/internal/metrics"
	"ductnet/internal/repository"
	"ductnet/internal/repository/sqlite"
	"ductnet/internal/service"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	configPath     string
	snapshotPath   string
	snapshotFormat string
	dbPath         string
	logLevel       string
	metricsOut     string
	jsonOutput     bool
	verbose        bool

	// Set up by PersistentPreRunE
	cfg      *config.Config
	logger   *slog.Logger
	closeLog func() error
	repo     *sqlite.Repository
	events   *service.EventBus
	svc      *service.NetworkService
	source   repository.SnapshotSource
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ductnet",
	Short: "Duct and cable network engine",
	Long: `Ductnet answers questions about an underground duct network: the
shortest cable route between wells, how many cables each direction really
carries compared with the records, and where unrecorded cables most likely
run.

The network is read from a snapshot file (--snapshot) or from the database
that "ductnet import" fills.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !needsSetup(cmd) {
			return nil
		}
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		teardown()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// Commands are cancelled on SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer teardown()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "config file (default: search "+config.ConfigFileName+")")
	flags.StringVarP(&snapshotPath, "snapshot", "s", "", "read the network from this snapshot file instead of the database")
	flags.StringVar(&snapshotFormat, "format", "", "snapshot format: yaml, json or sheet (default: by file name)")
	flags.StringVar(&dbPath, "db", "", "SQLite database path")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&metricsOut, "metrics-out", "", "write Prometheus metrics to this file on exit")
	flags.BoolVar(&jsonOutput, "json", false, "print results as JSON")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(routeCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(inferCmd)
	rootCmd.AddCommand(rebuildCmd)
	rootCmd.AddCommand(scenariosCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
}

// needsSetup reports whether cmd works on the network. Help, completion
// and the config commands never open the database.
func needsSetup(cmd *cobra.Command) bool {
	if cmd.Name() == "help" || cmd.Name() == "completion" {
		return false
	}
	for c := cmd; c != nil; c = c.Parent() {
		if c == configCmd {
			return false
		}
	}
	return true
}

// setup loads config, opens the database and builds the service. Flags
// override the config file.
func setup() error {
	var err error
	if configPath != "" {
		cfg, _, err = config.LoadFromPath(configPath)
	} else {
		cfg, _, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := applyFlags(cfg); err != nil {
		return err
	}

	logger, closeLog = cfg.SetupLogger()
	slog.SetDefault(logger)

	repo, err = sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	source = repo
	if cfg.Snapshot.Path != "" {
		source = codec.NewFileSource(cfg.Snapshot.Path, cfg.Snapshot.Format)
	}

	profiles, err := cfg.EffectiveProfiles()
	if err != nil {
		return err
	}
	palette, err := cfg.Palette()
	if err != nil {
		return err
	}

	events = service.NewEventBus()
	svc, err = service.NewNetworkService(source, repo, service.Options{
		Profiles:  &profiles,
		Palette:   &palette,
		CacheSize: cfg.Cache.GraphSize,
		Metrics:   metrics.NewRegistry(),
		Logger:    logger,
		Events:    events,
	})
	if err != nil {
		return err
	}

	logger.Debug("ductnet ready", "source", sourceName(), "database", cfg.Database.Path)
	return nil
}

// applyFlags copies explicitly set global flags over the config
func applyFlags(c *config.Config) error {
	if snapshotPath != "" {
		c.Snapshot.Path = snapshotPath
	}
	if snapshotFormat != "" {
		c.Snapshot.Format = snapshotFormat
	}
	if dbPath != "" {
		c.Database.Path = dbPath
	}
	if metricsOut != "" {
		c.Metrics.Out = metricsOut
	}
	switch {
	case logLevel != "":
		c.Logging.Level = logLevel
	case verbose:
		c.Logging.Level = "debug"
	}
	return c.Validate()
}

func teardown() {
	if svc != nil && cfg.Metrics.Out != "" {
		if err := svc.Metrics().WriteToTextfile(cfg.Metrics.Out); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to write metrics: %v\n", err)
		}
	}
	if repo != nil {
		if err := repo.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
		repo = nil
	}
	if closeLog != nil {
		if err := closeLog(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
		}
		closeLog = nil
	}
	svc = nil
}

func sourceName() string {
	if fs, ok := source.(*codec.FileSource); ok {
		return fs.String()
	}
	return "db:" + cfg.Database.Path
}
