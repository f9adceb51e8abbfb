package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dwsmith1983/notifysmoke/internal/config"
	"github.com/dwsmith1983/notifysmoke/internal/poll"
	"github.com/dwsmith1983/notifysmoke/internal/provider"
	"github.com/dwsmith1983/notifysmoke/internal/report"
	"github.com/dwsmith1983/notifysmoke/internal/smoke"
	"github.com/dwsmith1983/notifysmoke/pkg/types"
)

// ErrNotPassed is returned in strict mode when a run did not observe both
// derived documents.
type ErrNotPassed struct {
	Outcome types.Outcome
	RunID   string
}

func (e *ErrNotPassed) Error() string {
	return fmt.Sprintf("smoke run %s finished %s", e.RunID, e.Outcome)
}

type runFlags struct {
	uid    string
	wait   string
	poll   bool
	strict bool
}

// NewRunCmd creates the run command.
func NewRunCmd(g *GlobalFlags) *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Write a test sighting and check for its mirror and alert",
		Long: `Run writes one sighting to users/{uid}/sightings/{id}, waits for the
trigger functions, then reads sightings/{id} and alerts/{id}.

Missing documents are reported but do not fail the command unless --strict is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			if err := f.apply(cmd, cfg); err != nil {
				return err
			}
			logger := newLogger(cfg.Logging, os.Stderr)
			prov, err := newProvider(cfg, logger)
			if err != nil {
				return fmt.Errorf("creating provider: %w", err)
			}
			_, err = executeRun(cmd.Context(), cfg, prov, cmd.OutOrStdout(), logger)
			return err
		},
	}

	cmd.Flags().StringVar(&f.uid, "uid", "", "user id that owns the test sighting")
	cmd.Flags().StringVar(&f.wait, "wait", "", "settle wait before reading, e.g. 5s (minimum 3s)")
	cmd.Flags().BoolVar(&f.poll, "poll", false, "re-read missing documents with backoff after the wait")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "exit non-zero unless both mirror and alert are found")
	return cmd
}

func (f *runFlags) apply(cmd *cobra.Command, cfg *types.ProjectConfig) error {
	if f.uid != "" {
		cfg.Smoke.UID = f.uid
	}
	if f.wait != "" {
		if _, err := config.ParseWait(f.wait); err != nil {
			return err
		}
		cfg.Smoke.Wait = f.wait
	}
	if cmd.Flags().Changed("poll") {
		if cfg.Poll == nil {
			cfg.Poll = &types.PollConfig{}
		}
		cfg.Poll.Enabled = f.poll
	}
	if cmd.Flags().Changed("strict") {
		cfg.Smoke.Strict = f.strict
	}
	return nil
}

// smokeOptions converts the config into tester options.
func smokeOptions(cfg *types.ProjectConfig) (smoke.Options, error) {
	wait, err := config.ParseWait(cfg.Smoke.Wait)
	if err != nil {
		return smoke.Options{}, err
	}
	opts := smoke.Options{
		ProjectID: cfg.Firestore.ProjectID,
		UID:       cfg.Smoke.UID,
		Wait:      wait,
		Sighting:  cfg.Smoke.Sighting,
	}
	if policy, enabled := poll.FromConfig(cfg.Poll); enabled {
		opts.Poll = &policy
	}
	return opts, nil
}

// executeRun performs one smoke run and dispatches its report. The error is
// non-nil only for setup problems, or in strict mode when the run did not pass.
func executeRun(ctx context.Context, cfg *types.ProjectConfig, prov provider.Provider, out io.Writer, logger *slog.Logger, extra ...smoke.Option) (*types.Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	opts, err := smokeOptions(cfg)
	if err != nil {
		return nil, err
	}
	dispatcher, err := report.NewDispatcher(cfg.Reports, logger)
	if err != nil {
		return nil, fmt.Errorf("creating report dispatcher: %w", err)
	}
	defer closeDispatcher(dispatcher, logger)

	options := append([]smoke.Option{smoke.WithOutput(out), smoke.WithLogger(logger)}, extra...)
	r := smoke.New(prov, opts, options...).Run(ctx)
	dispatcher.Dispatch(ctx, *r)

	if cfg.Smoke.Strict && !r.Passed() {
		return r, &ErrNotPassed{Outcome: r.Outcome, RunID: r.RunID}
	}
	return r, nil
}

func closeDispatcher(d *report.Dispatcher, logger *slog.Logger) {
	if err := d.Close(); err != nil {
		logger.Warn("closing report sinks", "error", err)
	}
}
