// Package report delivers smoke run reports to configured sinks.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dwsmith1983/notifysmoke/internal/metrics"
	"github.com/dwsmith1983/notifysmoke/pkg/types"
)

// Sink is a report destination.
type Sink interface {
	Send(ctx context.Context, report types.Report) error
	Name() string
}

// Dispatcher routes reports to configured sinks.
type Dispatcher struct {
	sinks  []Sink
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher from report configs.
func NewDispatcher(configs []types.ReportConfig, logger *slog.Logger) (*Dispatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{logger: logger}
	for _, cfg := range configs {
		sink, err := newSink(cfg)
		if err != nil {
			return nil, fmt.Errorf("creating %s sink: %w", cfg.Type, err)
		}
		d.sinks = append(d.sinks, sink)
	}
	return d, nil
}

// Dispatch sends a report to all configured sinks. A failing sink is logged
// and does not stop delivery to the others.
func (d *Dispatcher) Dispatch(ctx context.Context, r types.Report) {
	for _, sink := range d.sinks {
		if err := sink.Send(ctx, r); err != nil {
			metrics.ReportsFailed.Add(1)
			d.logger.Error("report delivery failed", "sink", sink.Name(), "runId", r.RunID, "error", err)
			continue
		}
		metrics.ReportsDispatched.Add(1)
	}
}

// Close releases sinks that hold connections.
func (d *Dispatcher) Close() error {
	var errs []error
	for _, sink := range d.sinks {
		if c, ok := sink.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing %s sink: %w", sink.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}

func newSink(cfg types.ReportConfig) (Sink, error) {
	switch cfg.Type {
	case types.ReportConsole:
		return NewConsoleSink(nil), nil
	case types.ReportFile:
		if cfg.Path == "" {
			return nil, fmt.Errorf("file path required")
		}
		return NewFileSink(cfg.Path)
	case types.ReportWebhook:
		if cfg.URL == "" {
			return nil, fmt.Errorf("webhook URL required")
		}
		return NewWebhookSink(cfg.URL), nil
	case types.ReportPubSub:
		return NewPubSubSink(cfg.ProjectID, cfg.Topic)
	default:
		return nil, fmt.Errorf("unknown report type %q", cfg.Type)
	}
}
