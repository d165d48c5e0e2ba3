package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ductnet/internal/config"
)

var loadedConfigPath string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show where the config file was found and the effective settings,
including the inference variant profiles after overrides.`,
	Args: cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Config commands never open the database
		var err error
		if configPath != "" {
			cfg, loadedConfigPath, err = config.LoadFromPath(configPath)
		} else {
			cfg, loadedConfigPath, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		return applyFlags(cfg)
	},
	RunE: runConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default config file",
	Long: `Write a default config file to path, or to the user config directory
when no path is given. An existing file is never overwritten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

func init() {
	configCmd.AddCommand(configInitCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if jsonOutput {
		return printResult(out, cfg, nil)
	}
	if loadedConfigPath == "" {
		fmt.Fprintf(out, "%s (defaults, no config file found)\n", defaultTheme.headerStyle().Render("Config"))
		for _, p := range config.SearchPaths() {
			fmt.Fprintln(out, defaultTheme.hintStyle().Render("  searched "+p))
		}
	} else {
		fmt.Fprintf(out, "%s %s\n", defaultTheme.headerStyle().Render("Config"), loadedConfigPath)
	}
	fmt.Fprint(out, cfg.Summary())
	fmt.Fprintln(out)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.DefaultConfigPath()
	if len(args) == 1 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
