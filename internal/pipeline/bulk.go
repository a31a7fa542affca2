package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nikhilbhat/courtwatch/internal/models"
	"github.com/nikhilbhat/courtwatch/internal/store"
)

// Refresher refreshes a single tracked case. *Pipeline implements it.
type Refresher interface {
	RefreshTracked(ctx context.Context, tc store.TrackedCase, force bool) (models.RefreshOutcome, error)
}

// BulkEvent reports one finished case to the progress consumer.
type BulkEvent struct {
	Done    int
	Total   int
	Case    store.TrackedCase
	Outcome models.RefreshOutcome
}

// BulkSummary tallies a whole bulk run.
type BulkSummary struct {
	Total     int
	Created   int
	Updated   int
	Unchanged int
	Failed    int
	Outcomes  []models.RefreshOutcome
}

// BulkRefresher walks the tracked set with bounded parallelism. One
// case's failure never aborts the run; it lands in the summary as a
// failed outcome.
type BulkRefresher struct {
	refresher   Refresher
	store       store.Store
	parallelism int
	logger      *slog.Logger
	onEvent     func(BulkEvent)
}

func NewBulkRefresher(r Refresher, st store.Store, parallelism int, logger *slog.Logger) *BulkRefresher {
	if parallelism <= 0 {
		parallelism = 4
	}
	return &BulkRefresher{
		refresher:   r,
		store:       st,
		parallelism: parallelism,
		logger:      logger,
	}
}

// OnEvent registers a callback invoked after each case finishes. Called
// from worker goroutines; the callback must be safe for concurrent use.
func (b *BulkRefresher) OnEvent(fn func(BulkEvent)) {
	b.onEvent = fn
}

// RefreshAll refreshes every tracked case and returns the tally. The
// returned error is non-nil only when the tracked set could not be
// listed or the context was canceled mid-run.
func (b *BulkRefresher) RefreshAll(ctx context.Context, force bool) (BulkSummary, error) {
	tracked, err := b.store.ListTracked(ctx)
	if err != nil {
		return BulkSummary{}, err
	}

	summary := BulkSummary{
		Total:    len(tracked),
		Outcomes: make([]models.RefreshOutcome, len(tracked)),
	}
	b.logger.Info("bulk refresh starting",
		"cases", len(tracked), "parallelism", b.parallelism, "force", force)

	var (
		mu   sync.Mutex
		done int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.parallelism)
	for i, tc := range tracked {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcome, err := b.refresher.RefreshTracked(gctx, tc, force)
			if err != nil {
				b.logger.Warn("case refresh failed", "cnr", tc.CNR, "error", err)
			}

			mu.Lock()
			summary.Outcomes[i] = outcome
			switch outcome.Kind {
			case models.OutcomeCreated:
				summary.Created++
			case models.OutcomeUpdated:
				summary.Updated++
			case models.OutcomeUnchanged:
				summary.Unchanged++
			default:
				summary.Failed++
			}
			done++
			event := BulkEvent{Done: done, Total: len(tracked), Case: tc, Outcome: outcome}
			mu.Unlock()

			if b.onEvent != nil {
				b.onEvent(event)
			}
			return nil
		})
	}
	err = g.Wait()

	b.logger.Info("bulk refresh finished",
		"created", summary.Created, "updated", summary.Updated,
		"unchanged", summary.Unchanged, "failed", summary.Failed)
	return summary, err
}
