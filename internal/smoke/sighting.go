package smoke

import (
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dwsmith1983/notifysmoke/pkg/types"
)

// Test sighting defaults, matching what the app reports for a downtown enforcer.
const (
	defaultLocation  = "123 Main St, Milwaukee"
	defaultLatitude  = 43.0389
	defaultLongitude = -87.9065
	defaultNotes     = "Test sighting for notification system"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// SightingID derives the document id from the invocation time in milliseconds.
func SightingID(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10)
}

// BuildSighting returns the test sighting for a run started at now, with
// any template fields applied over the defaults.
func BuildSighting(now time.Time, tmpl *types.SightingTemplate) types.Sighting {
	s := types.Sighting{
		Type:        types.SightingParkingEnforcer,
		Location:    defaultLocation,
		Latitude:    defaultLatitude,
		Longitude:   defaultLongitude,
		Notes:       defaultNotes,
		ReportedAt:  types.FormatReportedAt(now),
		Occurrences: 1,
		ExpiresAt:   now.Add(types.SightingTTL),
		Status:      types.SightingActive,
	}
	if tmpl == nil {
		return s
	}
	if tmpl.Type != "" {
		s.Type = tmpl.Type
	}
	if tmpl.Location != "" {
		s.Location = tmpl.Location
	}
	if tmpl.Latitude != nil {
		s.Latitude = *tmpl.Latitude
	}
	if tmpl.Longitude != nil {
		s.Longitude = *tmpl.Longitude
	}
	if tmpl.Notes != "" {
		s.Notes = tmpl.Notes
	}
	return s
}

// ValidateSighting checks the record before it is written.
func ValidateSighting(s types.Sighting) error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid sighting: %w", err)
	}
	return nil
}
