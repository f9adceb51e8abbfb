// Package smoke runs the end-to-end notification smoke test: write a
// sighting, give the trigger functions time to react, then look for the
// mirrored sighting and the generated alert.
package smoke

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/dwsmith1983/notifysmoke/internal/metrics"
	"github.com/dwsmith1983/notifysmoke/internal/poll"
	"github.com/dwsmith1983/notifysmoke/internal/provider"
	"github.com/dwsmith1983/notifysmoke/pkg/types"
)

// MinWait is the shortest settle wait a run will use before reading.
const MinWait = 3 * time.Second

// Options shape a smoke run.
type Options struct {
	ProjectID string
	UID       string
	Wait      time.Duration
	Sighting  *types.SightingTemplate
	// Poll re-reads missing documents after the wait. Nil means a single read.
	Poll *poll.Policy
}

// Tester runs smoke tests against a Provider.
type Tester struct {
	prov   provider.Provider
	opts   Options
	out    *console
	logger *slog.Logger
	now    func() time.Time
	sleep  poll.SleepFunc
}

// Option configures a Tester.
type Option func(*Tester)

// WithOutput sets where progress lines are printed. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(t *Tester) { t.out = newConsole(w) }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tester) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithClock replaces the wall clock and sleep (useful for testing).
func WithClock(now func() time.Time, sleep poll.SleepFunc) Option {
	return func(t *Tester) {
		t.now = now
		t.sleep = sleep
	}
}

// New creates a Tester. The provider must not be started yet; Run owns its
// whole lifecycle.
func New(prov provider.Provider, opts Options, options ...Option) *Tester {
	if opts.UID == "" {
		opts.UID = types.DefaultUID
	}
	t := &Tester{
		prov:   prov,
		opts:   opts,
		out:    newConsole(os.Stdout),
		logger: slog.Default(),
		now:    time.Now,
		sleep:  poll.Sleep,
	}
	for _, o := range options {
		o(t)
	}
	return t
}

// Run executes one smoke test and returns what it observed. Failures are
// reported in the returned Report, never as a panic or error return. The
// provider is stopped exactly once on every path.
func (t *Tester) Run(ctx context.Context) *types.Report {
	started := t.now()
	report := &types.Report{
		RunID:      newRunID(started),
		ProjectID:  t.opts.ProjectID,
		UID:        t.opts.UID,
		SightingID: SightingID(started),
		StartedAt:  started,
	}
	logger := t.logger.With("runId", report.RunID, "sightingId", report.SightingID)

	t.out.header("🧪 Testing Real-Time Sighting Notifications")
	metrics.RunsTotal.Add(1)

	func() {
		defer t.stop(ctx, logger)
		if err := t.run(ctx, report, logger); err != nil {
			report.Error = err.Error()
			t.out.failure("Test failed: %v", err)
			logger.Error("smoke run failed", "error", err)
		}
	}()

	t.finish(report)
	return report
}

func (t *Tester) run(ctx context.Context, report *types.Report, logger *slog.Logger) error {
	if err := t.prov.Start(ctx); err != nil {
		return fmt.Errorf("connecting to document store: %w", err)
	}

	sighting := BuildSighting(report.StartedAt, t.opts.Sighting)
	if err := ValidateSighting(sighting); err != nil {
		return err
	}

	t.out.step("📤 Creating test sighting in user collection...")
	if err := t.prov.PutUserSighting(ctx, report.UID, report.SightingID, sighting); err != nil {
		return fmt.Errorf("creating sighting: %w", err)
	}
	metrics.SightingsWritten.Add(1)
	t.out.success("Sighting created in user collection")
	logger.Info("sighting written", "path", types.UserSightingPath(report.UID, report.SightingID))

	wait := t.waitDuration(logger)
	t.out.step("⏳ Waiting for Cloud Functions to process...")
	if err := t.sleep(ctx, wait); err != nil {
		return fmt.Errorf("waiting for triggers: %w", err)
	}
	report.Wait = wait

	if err := t.checkDerived(ctx, report, logger); err != nil {
		return err
	}

	t.out.success("Test completed - check function logs for notification triggers")
	return nil
}

// Inspect reads the mirror and alert for an existing sighting without
// writing anything or waiting.
func (t *Tester) Inspect(ctx context.Context, sightingID string) *types.Report {
	started := t.now()
	report := &types.Report{
		RunID:      newRunID(started),
		ProjectID:  t.opts.ProjectID,
		UID:        t.opts.UID,
		SightingID: sightingID,
		StartedAt:  started,
	}
	logger := t.logger.With("runId", report.RunID, "sightingId", sightingID)

	func() {
		defer t.stop(ctx, logger)
		err := t.prov.Start(ctx)
		if err != nil {
			err = fmt.Errorf("connecting to document store: %w", err)
		} else {
			err = t.checkDerived(ctx, report, logger)
		}
		if err != nil {
			report.Error = err.Error()
			t.out.failure("Inspect failed: %v", err)
			logger.Error("inspect failed", "error", err)
		}
	}()

	t.finish(report)
	return report
}

func (t *Tester) checkDerived(ctx context.Context, report *types.Report, logger *slog.Logger) error {
	t.out.step("🔍 Checking global sightings collection...")
	mirror, err := t.check(ctx, types.MirrorPath(report.SightingID), func(ctx context.Context) (*types.Document, error) {
		return t.prov.GetMirror(ctx, report.SightingID)
	})
	if err != nil {
		return err
	}
	report.Mirror = mirror
	if mirror.Found {
		t.out.success("Sighting mirrored to global collection")
		t.out.step("Global sighting data: %s", formatData(mirror.Data))
	} else {
		t.out.failure("Sighting not found in global collection")
	}
	logger.Info("mirror checked", "found", mirror.Found, "attempts", mirror.Attempts)

	t.out.step("🔍 Checking alerts collection...")
	alert, err := t.check(ctx, types.AlertPath(report.SightingID), func(ctx context.Context) (*types.Document, error) {
		return t.prov.GetAlert(ctx, report.SightingID)
	})
	if err != nil {
		return err
	}
	report.Alert = alert
	if alert.Found {
		info := types.SummarizeAlert(alert.Data)
		report.AlertInfo = &info
		t.out.success("Alert created successfully")
		t.out.step("Alert details:")
		t.out.step("- Title: %s", formatField(info.Title))
		t.out.step("- Active: %s", formatField(info.Active))
		t.out.step("- Type: %s", formatField(info.Type))
		t.out.step("- Status: %s", formatField(info.Status))
	} else {
		t.out.failure("Alert not found")
	}
	logger.Info("alert checked", "found", alert.Found, "attempts", alert.Attempts)
	return nil
}

// check reads one derived document, re-reading with backoff when polling is on.
func (t *Tester) check(ctx context.Context, path string, fetch func(context.Context) (*types.Document, error)) (*types.DocumentCheck, error) {
	result := &types.DocumentCheck{Path: path}
	read := func(ctx context.Context) (bool, error) {
		metrics.DocumentReads.Add(1)
		doc, err := fetch(ctx)
		if err != nil {
			return false, fmt.Errorf("reading %s: %w", path, err)
		}
		result.Found = doc.Exists
		result.Data = doc.Data
		return doc.Exists, nil
	}

	if t.opts.Poll == nil {
		result.Attempts = 1
		_, err := read(ctx)
		return result, err
	}

	poller := poll.New(*t.opts.Poll, poll.WithClock(t.now, t.sleep))
	attempts, err := poller.Until(ctx, read)
	result.Attempts = attempts
	if errors.Is(err, poll.ErrExhausted) {
		result.TimedOut = true
		metrics.PollTimeouts.Add(1)
		return result, nil
	}
	return result, err
}

func (t *Tester) waitDuration(logger *slog.Logger) time.Duration {
	if t.opts.Wait < MinWait {
		if t.opts.Wait != 0 {
			logger.Warn("settle wait below minimum, using minimum", "requested", t.opts.Wait, "minimum", MinWait)
		}
		return MinWait
	}
	return t.opts.Wait
}

func (t *Tester) stop(ctx context.Context, logger *slog.Logger) {
	// Teardown must run even if the run's context was cancelled.
	if err := t.prov.Stop(context.WithoutCancel(ctx)); err != nil {
		logger.Warn("closing document store", "error", err)
	}
}

func (t *Tester) finish(report *types.Report) {
	report.FinishedAt = t.now()
	report.Outcome = ResolveOutcome(report)
	switch report.Outcome {
	case types.OutcomePassed:
		metrics.RunsPassed.Add(1)
	case types.OutcomeIncomplete:
		metrics.RunsIncomplete.Add(1)
	default:
		metrics.RunsFailed.Add(1)
	}
}

// ResolveOutcome classifies a finished report.
func ResolveOutcome(r *types.Report) types.Outcome {
	switch {
	case r.Error != "":
		return types.OutcomeFailed
	case r.Mirror != nil && r.Mirror.Found && r.Alert != nil && r.Alert.Found:
		return types.OutcomePassed
	default:
		return types.OutcomeIncomplete
	}
}

func newRunID(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), ulid.DefaultEntropy()).String()
}
