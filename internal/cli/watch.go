package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"ductnet/internal/service"
	"ductnet/internal/watcher"
)

var watchRebuild bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reconcile again whenever the snapshot file changes",
	Long: `Watch the snapshot file and print a fresh reconciliation after every
change. With --rebuild, scenarios are rebuilt as well.

Requires a snapshot file (--snapshot or snapshot.path in the config).

Examples:
  ductnet --snapshot survey.sheet.yaml watch
  ductnet --snapshot network.yaml watch --rebuild`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchRebuild, "rebuild", false, "rebuild scenarios after every change")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if cfg.Snapshot.Path == "" {
		return errors.New("watch needs --snapshot or snapshot.path in the config")
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	eventCh := make(chan service.Event, 100)
	events.Subscribe(eventCh)
	go logEvents(ctx, eventCh)

	var mu sync.Mutex
	refresh := func() {
		mu.Lock()
		defer mu.Unlock()
		if err := refreshWatch(ctx, out); err != nil {
			logger.Error("refresh failed", "error", err)
		}
	}

	w := watcher.New(func(path string) {
		events.Publish(service.Event{Type: service.EventSnapshotChanged, Payload: path})
		refresh()
	}, cfg.Snapshot.Path).
		WithDebounce(cfg.Snapshot.Debounce.Duration()).
		WithLogger(logger)

	go func() {
		<-w.Ready()
		refresh()
	}()

	err := w.Watch(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// refreshWatch prints a reconciliation and optionally rebuilds scenarios
func refreshWatch(ctx context.Context, out io.Writer) error {
	report, err := svc.Reconcile(ctx)
	if err != nil {
		return err
	}
	err = printResult(out, report, func(w io.Writer) error {
		return renderReconcile(w, report)
	})
	if err != nil {
		return err
	}
	if !watchRebuild {
		return nil
	}
	scenarios, err := svc.Rebuild(ctx)
	if err != nil {
		return fmt.Errorf("rebuild: %w", err)
	}
	return printResult(out, scenarios, func(w io.Writer) error {
		return renderScenarios(w, scenarios)
	})
}

func logEvents(ctx context.Context, ch <-chan service.Event) {
	for {
		select {
		case ev := <-ch:
			logger.Debug("event", "type", ev.Type)
		case <-ctx.Done():
			return
		}
	}
}
