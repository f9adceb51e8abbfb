package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dwsmith1983/notifysmoke/internal/provider"
	"github.com/dwsmith1983/notifysmoke/internal/report"
	"github.com/dwsmith1983/notifysmoke/internal/smoke"
	"github.com/dwsmith1983/notifysmoke/pkg/types"
)

// NewInspectCmd creates the inspect command.
func NewInspectCmd(g *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [sighting-id]",
		Short: "Read the mirror and alert of an existing sighting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Logging, os.Stderr)
			prov, err := newProvider(cfg, logger)
			if err != nil {
				return fmt.Errorf("creating provider: %w", err)
			}
			_, err = executeInspect(cmd.Context(), cfg, prov, args[0], cmd.OutOrStdout(), logger)
			return err
		},
	}
}

func executeInspect(ctx context.Context, cfg *types.ProjectConfig, prov provider.Provider, sightingID string, out io.Writer, logger *slog.Logger) (*types.Report, error) {
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

	r := smoke.New(prov, opts, smoke.WithOutput(out), smoke.WithLogger(logger)).Inspect(ctx, sightingID)
	dispatcher.Dispatch(ctx, *r)

	if cfg.Smoke.Strict && !r.Passed() {
		return r, &ErrNotPassed{Outcome: r.Outcome, RunID: r.RunID}
	}
	return r, nil
}
