// Package types defines the public domain types for the notifysmoke sighting notification smoke tester.
package types

// SightingType is the category of a user-reported sighting.
type SightingType string

// SightingType values enumerate the categories the mobile app can report.
const (
	SightingParkingEnforcer SightingType = "parkingEnforcer"
	SightingStreetSweeper   SightingType = "streetSweeper"
	SightingTowTruck        SightingType = "towTruck"
	SightingOther           SightingType = "other"
)

// SightingStatus is the lifecycle state of a sighting.
type SightingStatus string

// SightingStatus values. New sightings are always written as active.
const (
	SightingActive   SightingStatus = "active"
	SightingExpired  SightingStatus = "expired"
	SightingResolved SightingStatus = "resolved"
)

// Outcome summarizes a smoke run.
type Outcome string

// Outcome values. Incomplete means the write succeeded but at least one
// derived document was missing when the reads ran.
const (
	OutcomePassed     Outcome = "passed"
	OutcomeIncomplete Outcome = "incomplete"
	OutcomeFailed     Outcome = "failed"
)

// ReportType defines the report sink type.
type ReportType string

// ReportType values enumerate the supported report sink backends.
const (
	ReportConsole ReportType = "console"
	ReportFile    ReportType = "file"
	ReportWebhook ReportType = "webhook"
	ReportPubSub  ReportType = "pubsub"
)

// LogFormat selects the slog handler.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)
