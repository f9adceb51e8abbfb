package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dwsmith1983/notifysmoke/internal/provider"
	"github.com/dwsmith1983/notifysmoke/internal/server"
	"github.com/dwsmith1983/notifysmoke/internal/server/handlers"
	"github.com/dwsmith1983/notifysmoke/internal/smoke"
	"github.com/dwsmith1983/notifysmoke/pkg/types"
)

// NewServeCmd creates the serve command.
func NewServeCmd(g *GlobalFlags) *cobra.Command {
	var addr string
	var runs bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the health HTTP server",
		Long: `Serve answers /health, /api/health and /debug/vars. With --runs it also
accepts POST /api/runs, which performs one smoke run and returns its report.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(g, addr, runs)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, \":8000\")")
	cmd.Flags().BoolVar(&runs, "runs", false, "accept POST /api/runs to trigger smoke runs")
	return cmd
}

func runServe(g *GlobalFlags, addrFlag string, runs bool) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Logging, os.Stderr)

	prov, err := newProvider(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating provider: %w", err)
	}
	ctx := context.Background()
	if err := prov.Start(ctx); err != nil {
		// /health still answers; /api/health reports degraded.
		logger.Warn("document store unavailable", "error", err)
	}

	addr := cfg.Server.Addr
	if addrFlag != "" {
		addr = addrFlag
	}
	var opts []server.Option
	if runs {
		// Each run closes its own client, so it cannot share the readiness provider.
		factory := func() (provider.Provider, error) { return newProvider(cfg, logger) }
		opts = append(opts, server.WithRunner(serveRunner(cfg, factory, os.Stdout, logger)))
	}
	srv := server.New(addr, prov, logger, opts...)

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		_ = prov.Stop(ctx)
		return err
	case sig := <-sigCh:
		color.Yellow("\nReceived %s, shutting down...", sig)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		_ = prov.Stop(shutdownCtx)
		color.Green("Server stopped gracefully")
		return nil
	}
}

// serveRunner adapts executeRun to the server. Strict mode does not apply:
// the outcome is in the returned report.
func serveRunner(cfg *types.ProjectConfig, newProv func() (provider.Provider, error), out io.Writer, logger *slog.Logger, extra ...smoke.Option) handlers.RunFunc {
	return func(ctx context.Context) (*types.Report, error) {
		prov, err := newProv()
		if err != nil {
			return nil, fmt.Errorf("creating provider: %w", err)
		}
		r, err := executeRun(ctx, cfg, prov, out, logger, extra...)
		var notPassed *ErrNotPassed
		if errors.As(err, &notPassed) {
			return r, nil
		}
		return r, err
	}
}
