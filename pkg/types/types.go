package types

import (
	"fmt"
	"time"
)

// Firestore paths touched by a smoke run.
const (
	UsersCollection     = "users"
	SightingsCollection = "sightings"
	AlertsCollection    = "alerts"
)

// SightingTTL is how long a new sighting stays active.
const SightingTTL = 2 * time.Hour

// reportedAtLayout matches ISO 8601 with millisecond precision, e.g. 2025-06-01T14:03:22.517Z.
const reportedAtLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatReportedAt renders t in UTC the way the mobile client stamps reportedAt.
func FormatReportedAt(t time.Time) string {
	return t.UTC().Format(reportedAtLayout)
}

// Sighting is the record a user submits and the stimulus for the trigger pipeline.
// CreatedAt is left zero so Firestore assigns the server timestamp on write.
type Sighting struct {
	Type        SightingType   `firestore:"type" json:"type" validate:"required,oneof=parkingEnforcer streetSweeper towTruck other"`
	Location    string         `firestore:"location" json:"location" validate:"required"`
	Latitude    float64        `firestore:"latitude" json:"latitude" validate:"latitude"`
	Longitude   float64        `firestore:"longitude" json:"longitude" validate:"longitude"`
	Notes       string         `firestore:"notes" json:"notes"`
	ReportedAt  string         `firestore:"reportedAt" json:"reportedAt" validate:"required"`
	Occurrences int            `firestore:"occurrences" json:"occurrences" validate:"min=1"`
	CreatedAt   time.Time      `firestore:"createdAt,serverTimestamp" json:"createdAt"`
	ExpiresAt   time.Time      `firestore:"expiresAt" json:"expiresAt"`
	Status      SightingStatus `firestore:"status" json:"status" validate:"required,oneof=active expired resolved"`
}

// UserSightingPath returns users/{uid}/sightings/{id}.
func UserSightingPath(uid, sightingID string) string {
	return fmt.Sprintf("%s/%s/%s/%s", UsersCollection, uid, SightingsCollection, sightingID)
}

// MirrorPath returns sightings/{id}.
func MirrorPath(sightingID string) string {
	return SightingsCollection + "/" + sightingID
}

// AlertPath returns alerts/{id}.
func AlertPath(sightingID string) string {
	return AlertsCollection + "/" + sightingID
}

// Document is a snapshot of a document that may not exist.
type Document struct {
	Path   string                 `json:"path"`
	Exists bool                   `json:"exists"`
	Data   map[string]interface{} `json:"data,omitempty"`
}

// AlertSummary holds the alert fields echoed by a smoke run. Values are
// copied as stored; a missing field stays nil.
type AlertSummary struct {
	Title  interface{} `json:"title"`
	Active interface{} `json:"active"`
	Type   interface{} `json:"type"`
	Status interface{} `json:"status"`
}

// SummarizeAlert picks the echoed fields out of an alert document.
func SummarizeAlert(data map[string]interface{}) AlertSummary {
	return AlertSummary{
		Title:  data["title"],
		Active: data["active"],
		Type:   data["type"],
		Status: data["status"],
	}
}
