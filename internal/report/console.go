package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/dwsmith1983/notifysmoke/pkg/types"
)

// ConsoleSink writes a one-line run summary to the terminal with color.
type ConsoleSink struct {
	w io.Writer
}

// NewConsoleSink creates a new console report sink. A nil writer means stdout.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleSink{w: w}
}

// Name returns the sink identifier.
func (s *ConsoleSink) Name() string { return "console" }

// Send writes the summary line, color-coded by outcome.
func (s *ConsoleSink) Send(_ context.Context, r types.Report) error {
	var prefix string
	switch r.Outcome {
	case types.OutcomePassed:
		prefix = color.GreenString("[PASSED]")
	case types.OutcomeIncomplete:
		prefix = color.YellowString("[INCOMPLETE]")
	default:
		prefix = color.RedString("[FAILED]")
	}

	_, err := fmt.Fprintf(s.w, "%s run=%s sighting=%s mirror=%s alert=%s elapsed=%s\n",
		prefix, r.RunID, r.SightingID,
		checkState(r.Mirror), checkState(r.Alert),
		r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	if err != nil {
		return err
	}
	if r.Error != "" {
		_, err = fmt.Fprintf(s.w, "  error: %s\n", r.Error)
	}
	return err
}

func checkState(c *types.DocumentCheck) string {
	switch {
	case c == nil:
		return "unchecked"
	case c.Found:
		return "found"
	case c.TimedOut:
		return "timeout"
	default:
		return "missing"
	}
}
