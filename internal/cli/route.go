package cli

import (
	"io"

	"github.com/spf13/cobra"
)

var routeCmd = &cobra.Command{
	Use:   "route <well> <well> [well...]",
	Short: "Find the shortest cable route through wells",
	Long: `Find the shortest cable route through the given wells in order and
assign the lowest free slot on every direction it uses.

Each leg avoids the directions of earlier legs, so a route never passes
through the same direction twice.

Examples:
  ductnet route 1 7
  ductnet route 1 4 7 --json`,
	Args: cobra.MinimumNArgs(2),
	RunE: runRoute,
}

func runRoute(cmd *cobra.Command, args []string) error {
	waypoints, err := parseWellIDs(args)
	if err != nil {
		return err
	}
	result, err := svc.Route(cmd.Context(), waypoints)
	if err != nil {
		return err
	}
	return printResult(cmd.OutOrStdout(), result, func(w io.Writer) error {
		return renderRoute(w, result)
	})
}
