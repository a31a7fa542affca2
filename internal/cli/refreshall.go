package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikhilbhat/courtwatch/internal/pipeline"
)

var (
	refreshAllForce    bool
	refreshAllNoUI     bool
	refreshAllParallel int
)

var refreshAllCmd = &cobra.Command{
	Use:   "refresh-all",
	Short: "Refresh every tracked case",
	Long: `Refresh-all walks the tracked set with bounded parallelism. Each
case is refreshed independently; one case's failure never aborts the
run. Exit status is non-zero when any case failed.`,
	RunE: runRefreshAll,
}

func init() {
	refreshAllCmd.Flags().BoolVarP(&refreshAllForce, "force", "f", false, "store records even when unchanged")
	refreshAllCmd.Flags().BoolVar(&refreshAllNoUI, "no-ui", false, "plain line output instead of the progress display")
	refreshAllCmd.Flags().IntVarP(&refreshAllParallel, "parallelism", "p", 0, "concurrent refreshes (default from config)")
}

func runRefreshAll(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	parallelism := refreshAllParallel
	if parallelism <= 0 {
		parallelism = cfg.BulkParallelism
	}
	bulk := pipeline.NewBulkRefresher(pl, caseStore, parallelism, logger)

	tracked, err := caseStore.ListTracked(ctx)
	if err != nil {
		return fmt.Errorf("list tracked cases: %w", err)
	}
	if len(tracked) == 0 {
		fmt.Println("No tracked cases.")
		return nil
	}

	var summary pipeline.BulkSummary
	if refreshAllNoUI {
		bulk.OnEvent(func(ev pipeline.BulkEvent) {
			fmt.Printf("[%d/%d] %s: %s\n", ev.Done, ev.Total, ev.Case.CNR, ev.Outcome.Kind)
		})
		summary, err = bulk.RefreshAll(ctx, refreshAllForce)
	} else {
		// Buffered to the tracked count so workers never block on the
		// UI, even when it exits early.
		events := make(chan pipeline.BulkEvent, len(tracked))
		result := make(chan bulkDoneMsg, 1)
		bulk.OnEvent(func(ev pipeline.BulkEvent) { events <- ev })

		go func() {
			s, rerr := bulk.RefreshAll(ctx, refreshAllForce)
			close(events)
			result <- bulkDoneMsg{summary: s, err: rerr}
		}()

		summary, err = RunBulkProgress(len(tracked), events, result)
	}
	if err != nil {
		return fmt.Errorf("bulk refresh: %w", err)
	}

	if refreshAllNoUI {
		fmt.Printf("\n%d cases: %d created, %d updated, %d unchanged, %d failed\n",
			summary.Total, summary.Created, summary.Updated, summary.Unchanged, summary.Failed)
	}
	if verbose {
		if snap := pl.Metrics().Acquisition; snap != nil {
			fmt.Printf("acquisitions: %d, avg %.0fms", snap.Count, snap.AvgTimeMs)
			if snap.AvgAttempts != nil {
				fmt.Printf(", avg captcha attempts %.1f", *snap.AvgAttempts)
			}
			fmt.Println()
		}
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d cases failed", summary.Failed, summary.Total)
	}
	return nil
}
