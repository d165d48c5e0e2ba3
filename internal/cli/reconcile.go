package cli

import (
	"io"
	"time"

	"github.com/spf13/cobra"

	"ductnet/internal/service"
)

var reconcileSince string

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Compare observed cable counts with recorded occupancy",
	Long: `Reconcile inventory observations with the recorded cables and classify
every direction:

  UNKNOWN     no observation
  DATA_ERROR  fewer cables observed than recorded
  CONSISTENT  observation matches the records
  MINOR       one unrecorded cable
  SEVERE      two or more unrecorded cables

Examples:
  ductnet reconcile
  ductnet reconcile --since 2024-01-01
  ductnet reconcile --since 720h --json`,
	Args: cobra.NoArgs,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVar(&reconcileSince, "since", "", "only use observations captured since this time, date or duration ago")
}

func runReconcile(cmd *cobra.Command, args []string) error {
	var (
		report *service.ReconcileReport
		err    error
	)
	if reconcileSince != "" {
		since, perr := parseSince(reconcileSince, time.Now())
		if perr != nil {
			return perr
		}
		report, err = svc.ReconcileSince(cmd.Context(), since)
	} else {
		report, err = svc.Reconcile(cmd.Context())
	}
	if err != nil {
		return err
	}
	return printResult(cmd.OutOrStdout(), report, func(w io.Writer) error {
		return renderReconcile(w, report)
	})
}
