// Package metrics exposes runtime counters via expvar.
package metrics

import "expvar"

var (
	RunsTotal         = expvar.NewInt("smoke_runs_total")
	RunsPassed        = expvar.NewInt("smoke_runs_passed")
	RunsIncomplete    = expvar.NewInt("smoke_runs_incomplete")
	RunsFailed        = expvar.NewInt("smoke_runs_failed")
	SightingsWritten  = expvar.NewInt("sightings_written")
	DocumentReads     = expvar.NewInt("document_reads")
	PollTimeouts      = expvar.NewInt("poll_timeouts")
	ReportsDispatched = expvar.NewInt("reports_dispatched")
	ReportsFailed     = expvar.NewInt("reports_failed")
	HealthChecks      = expvar.NewInt("health_checks")
)
