package types

import "time"

// DocumentCheck is what a smoke run observed at one derived path.
type DocumentCheck struct {
	Path     string                 `json:"path"`
	Found    bool                   `json:"found"`
	Attempts int                    `json:"attempts"`
	TimedOut bool                   `json:"timedOut,omitempty"`
	Data     map[string]interface{} `json:"data,omitempty"`
}

// Report is the result of one smoke run.
type Report struct {
	RunID      string         `json:"runId"`
	ProjectID  string         `json:"projectId"`
	UID        string         `json:"uid"`
	SightingID string         `json:"sightingId"`
	Outcome    Outcome        `json:"outcome"`
	Wait       time.Duration  `json:"waitNs"`
	Mirror     *DocumentCheck `json:"mirror,omitempty"`
	Alert      *DocumentCheck `json:"alert,omitempty"`
	AlertInfo  *AlertSummary  `json:"alertInfo,omitempty"`
	Error      string         `json:"error,omitempty"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt"`
}

// Passed reports whether both derived documents were observed.
func (r *Report) Passed() bool {
	return r.Outcome == OutcomePassed
}
