package cli

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"ductnet/internal/domain"
)

var (
	inferVariant string
	inferAll     bool

	scenariosVariant string
)

var inferCmd = &cobra.Command{
	Use:   "infer",
	Short: "Propose routes for unrecorded cables",
	Long: `Reconcile the inventory and propose assumed cable routes that explain
the unrecorded cables.

Variants trade precision for coverage:
  1, precision  same owner, short routes, strong evidence only
  2, balanced   prefers the same owner, moderate routes
  3, coverage   any owner, long routes, single-direction fallback

Results are not stored; use "ductnet rebuild" for that.

Examples:
  ductnet infer
  ductnet infer --variant coverage
  ductnet infer --all --json`,
	Args: cobra.NoArgs,
	RunE: runInfer,
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Run every variant and store the results as scenarios",
	Long: `Run inference for every variant and store each result as a scenario in
the database, replacing the previous scenario of the same variant.`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List stored scenarios",
	Long: `List stored inference scenarios. Use --verbose to include their routes.

Examples:
  ductnet scenarios
  ductnet scenarios --variant precision -v`,
	Args: cobra.NoArgs,
	RunE: runScenarios,
}

func init() {
	inferCmd.Flags().StringVar(&inferVariant, "variant", "", "variant number or name (default: inference.default_variant)")
	inferCmd.Flags().BoolVar(&inferAll, "all", false, "run every variant")

	scenariosCmd.Flags().StringVar(&scenariosVariant, "variant", "", "show only the scenario of this variant")
}

// resolveVariant parses a variant flag, falling back to def when empty
func resolveVariant(s string, def domain.Variant) (domain.Variant, error) {
	if s == "" {
		return def, nil
	}
	return domain.ParseVariant(s)
}

func runInfer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if inferAll {
		_, results, err := svc.InferAll(ctx)
		if err != nil {
			return err
		}
		return printResult(out, results, func(w io.Writer) error {
			for _, r := range results {
				if err := renderInference(w, r); err != nil {
					return err
				}
			}
			return nil
		})
	}

	variant, err := resolveVariant(inferVariant, cfg.DefaultVariant())
	if err != nil {
		return err
	}
	result, err := svc.Infer(ctx, variant)
	if err != nil {
		return err
	}
	return printResult(out, result, func(w io.Writer) error {
		return renderInference(w, result)
	})
}

func runRebuild(cmd *cobra.Command, args []string) error {
	scenarios, err := svc.Rebuild(cmd.Context())
	if err != nil {
		return err
	}
	return printResult(cmd.OutOrStdout(), scenarios, func(w io.Writer) error {
		return renderScenarios(w, scenarios)
	})
}

func runScenarios(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	scenarios := []*domain.Scenario{}
	if scenariosVariant != "" {
		variant, err := domain.ParseVariant(scenariosVariant)
		if err != nil {
			return err
		}
		scenario, err := repo.LatestScenario(ctx, variant)
		var notFound *domain.NotFoundError
		switch {
		case errors.As(err, &notFound):
		case err != nil:
			return err
		default:
			scenarios = append(scenarios, scenario)
		}
	} else {
		var err error
		if scenarios, err = svc.Scenarios(ctx); err != nil {
			return err
		}
	}

	return printResult(cmd.OutOrStdout(), scenarios, func(w io.Writer) error {
		return renderScenarios(w, scenarios)
	})
}
