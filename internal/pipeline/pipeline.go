package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhat/courtwatch/internal/diff"
	"github.com/nikhilbhat/courtwatch/internal/faults"
	"github.com/nikhilbhat/courtwatch/internal/metrics"
	"github.com/nikhilbhat/courtwatch/internal/models"
	"github.com/nikhilbhat/courtwatch/internal/parser"
	"github.com/nikhilbhat/courtwatch/internal/portal"
	"github.com/nikhilbhat/courtwatch/internal/retry"
	"github.com/nikhilbhat/courtwatch/internal/search"
	"github.com/nikhilbhat/courtwatch/internal/store"
)

// DialFunc opens a fresh portal session bound to one court. A session
// carries its own cookie jar, so challenges opened on it are only valid
// for submissions on the same session.
type DialFunc func(ctx context.Context, court models.Court) (SessionClient, error)

// Config holds the pipeline knobs that are not owned by the retry policy.
type Config struct {
	// MaxCaptchaAttempts bounds submissions per acquisition attempt.
	MaxCaptchaAttempts int
	// RunTimeout caps one whole acquisition including all retries.
	RunTimeout time.Duration
	// DefaultCourt is used when a refresh target has no stored court.
	DefaultCourt models.Court
	// PayloadDir receives raw payloads that failed to parse, for
	// diagnostics. Empty means os.TempDir().
	PayloadDir string
}

// Pipeline wires session dialing, captcha solving, parsing, change
// detection and storage into the acquisition operations.
type Pipeline struct {
	dial       DialFunc
	recognizer Recognizer
	store      store.Store
	policy     retry.Policy
	cfg        Config
	logger     *slog.Logger
	stats      *metrics.Collector
}

func New(dial DialFunc, rec Recognizer, st store.Store, policy retry.Policy, cfg Config, logger *slog.Logger) *Pipeline {
	if cfg.MaxCaptchaAttempts <= 0 {
		cfg.MaxCaptchaAttempts = 4
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 5 * time.Minute
	}
	return &Pipeline{
		dial:       dial,
		recognizer: rec,
		store:      st,
		policy:     policy,
		cfg:        cfg,
		logger:     logger,
		stats:      metrics.NewCollector(),
	}
}

// Metrics returns a point-in-time snapshot of the pipeline's runtime
// statistics.
func (p *Pipeline) Metrics() metrics.Snapshot {
	return p.stats.Snapshot()
}

// NewWithPortal is the production constructor: sessions come from a
// shared portal client so they inherit its rate limit.
func NewWithPortal(client *portal.Client, rec Recognizer, st store.Store, policy retry.Policy, cfg Config, logger *slog.Logger) *Pipeline {
	dial := func(ctx context.Context, court models.Court) (SessionClient, error) {
		return client.NewSession(ctx, court)
	}
	return New(dial, rec, st, policy, cfg, logger)
}

// Search runs one full acquisition for a query and returns the parsed
// record together with the number of captcha submissions it cost. It
// never touches the store; Refresh layers change detection on top.
func (p *Pipeline) Search(ctx context.Context, q models.Query) (*models.CaseRecord, int, error) {
	req, err := search.Build(q)
	if err != nil {
		return nil, 0, err
	}

	runCtx, cancel := context.WithTimeout(ctx, p.cfg.RunTimeout)
	defer cancel()

	runID := uuid.New().String()
	logger := p.logger.With("run_id", runID, "query", q.Kind(), "court", q.Court().Selector())
	logger.Info("starting acquisition")
	started := time.Now()

	var (
		record   *models.CaseRecord
		attempts int
	)
	err = p.policy.Run(runCtx, func() error {
		rec, n, err := p.acquire(runCtx, q.Court(), req, logger)
		attempts += n
		if err != nil {
			return err
		}
		record = rec
		return nil
	})
	if err != nil {
		if runCtx.Err() != nil && ctx.Err() == nil {
			err = &faults.Error{
				Kind:     faults.KindTimeout,
				Msg:      fmt.Sprintf("acquisition exceeded %s", p.cfg.RunTimeout),
				Attempts: attempts,
				Err:      err,
			}
		}
		p.stats.RecordAcquisition(time.Since(started), attempts)
		logger.Warn("acquisition failed", "error", err, "captcha_attempts", attempts)
		return nil, attempts, err
	}

	p.stats.RecordAcquisition(time.Since(started), attempts)
	logger.Info("acquisition complete", "cnr", record.CNR, "captcha_attempts", attempts)
	return record, attempts, nil
}

// acquire is one attempt: dial, solve, parse the result list, fetch and
// parse the detail page. Everything it returns as an error is already
// classified for the retry policy.
func (p *Pipeline) acquire(ctx context.Context, court models.Court, req search.Request, logger *slog.Logger) (*models.CaseRecord, int, error) {
	sess, err := p.dial(ctx, court)
	if err != nil {
		return nil, 0, fmt.Errorf("open session: %w", err)
	}

	payload, attempts, err := solveAndSubmit(ctx, sess, p.recognizer, req, p.cfg.MaxCaptchaAttempts, logger)
	if err != nil {
		return nil, attempts, err
	}

	summaries := parser.ParseCaseList(payload)
	if len(summaries) == 0 {
		return nil, attempts, faults.New(faults.KindNotFound, "search returned no cases")
	}
	summary := summaries[0]
	logger.Debug("expanding case history",
		"cnr", summary.CNR, "case", summary.Title(), "matches", len(summaries))

	histReq, err := search.BuildHistory(court, summary)
	if err != nil {
		return nil, attempts, err
	}
	raw, err := sess.Fetch(ctx, histReq)
	if err != nil {
		return nil, attempts, err
	}

	parseStart := time.Now()
	record, err := parser.ParseCaseDetails(raw)
	p.stats.RecordTiming(metrics.OpParse, time.Since(parseStart))
	if err != nil {
		if faults.KindOf(err) == faults.KindParseFailure {
			err = p.preservePayload(err, raw, logger)
		}
		return nil, attempts, err
	}

	// The list row is authoritative for identifiers the detail page
	// sometimes omits.
	if record.CNR == "" {
		record.CNR = summary.CNR
	}
	if record.CaseNumber == "" {
		record.CaseNumber = summary.CaseNumber
	}
	record.Court = court
	record.Token = summary.Token
	record.RetrievedAt = time.Now().UTC()
	return record, attempts, nil
}

// Refresh re-acquires one tracked case by CNR and reports what changed.
// The stored court is used when the case is tracked, the configured
// default otherwise. Failures come back as a failed outcome and the
// error that caused it.
func (p *Pipeline) Refresh(ctx context.Context, cnr string, force bool) (models.RefreshOutcome, error) {
	normalized, ok := models.NormalizeCNR(cnr)
	if !ok {
		err := faults.Newf(faults.KindInvalidQuery, "malformed CNR %q", cnr)
		return models.FailedOutcome(cnr, err), err
	}
	return p.RefreshTracked(ctx, store.TrackedCase{CNR: normalized, Court: p.courtFor(ctx, normalized)}, force)
}

// RefreshTracked is Refresh for a case whose court is already known.
func (p *Pipeline) RefreshTracked(ctx context.Context, tc store.TrackedCase, force bool) (models.RefreshOutcome, error) {
	record, attempts, err := p.Search(ctx, models.CNRQuery{Bench: tc.Court, CNR: tc.CNR})
	if err != nil {
		outcome := models.FailedOutcome(tc.CNR, err)
		outcome.CaptchaAttempts = attempts
		return outcome, err
	}

	prev, err := p.store.GetFingerprint(ctx, record.CNR)
	if err != nil {
		err = fmt.Errorf("load fingerprint for %s: %w", record.CNR, err)
		outcome := models.FailedOutcome(record.CNR, err)
		outcome.CaptchaAttempts = attempts
		return outcome, err
	}

	outcome, err := diff.Compare(record, prev)
	if err != nil {
		err = fmt.Errorf("fingerprint %s: %w", record.CNR, err)
		failed := models.FailedOutcome(record.CNR, err)
		failed.CaptchaAttempts = attempts
		return failed, err
	}
	outcome.CaptchaAttempts = attempts

	if outcome.Kind != models.OutcomeUnchanged || force {
		storeStart := time.Now()
		err := p.store.Upsert(ctx, record, *outcome.New)
		p.stats.RecordTiming(metrics.OpStore, time.Since(storeStart))
		if err != nil {
			err = fmt.Errorf("store %s: %w", record.CNR, err)
			failed := models.FailedOutcome(record.CNR, err)
			failed.CaptchaAttempts = attempts
			return failed, err
		}
	}

	p.logger.Info("refresh complete",
		"cnr", record.CNR, "outcome", outcome.Kind, "captcha_attempts", attempts)
	return outcome, nil
}

// courtFor resolves the court for a bare CNR from the tracked set,
// falling back to the configured default.
func (p *Pipeline) courtFor(ctx context.Context, cnr string) models.Court {
	tracked, err := p.store.ListTracked(ctx)
	if err != nil {
		p.logger.Warn("listing tracked cases failed, using default court", "error", err)
		return p.cfg.DefaultCourt
	}
	for _, tc := range tracked {
		if tc.CNR == cnr {
			return tc.Court
		}
	}
	return p.cfg.DefaultCourt
}

// preservePayload writes an unparseable payload to disk and annotates
// the fault with its location.
func (p *Pipeline) preservePayload(parseErr error, payload []byte, logger *slog.Logger) error {
	dir := p.cfg.PayloadDir
	if dir == "" {
		dir = os.TempDir()
	}
	name := filepath.Join(dir, fmt.Sprintf("courtwatch-payload-%s.html", uuid.New().String()))
	if writeErr := os.WriteFile(name, payload, 0o600); writeErr != nil {
		logger.Warn("could not preserve unparseable payload", "error", writeErr)
		return parseErr
	}
	logger.Warn("preserved unparseable payload", "path", name)

	var fe *faults.Error
	if errors.As(parseErr, &fe) {
		fe.PayloadRef = name
	}
	return parseErr
}
