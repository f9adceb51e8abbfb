// Package testutil provides shared test utilities for notifysmoke.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/dwsmith1983/notifysmoke/internal/provider"
	"github.com/dwsmith1983/notifysmoke/pkg/types"
)

// Compile-time interface satisfaction check.
var _ provider.Provider = (*MockProvider)(nil)

// OpKind names a recorded provider call.
type OpKind string

const (
	OpPut  OpKind = "put"
	OpRead OpKind = "read"
	OpStop OpKind = "stop"
)

// Op is one recorded provider call.
type Op struct {
	Kind OpKind
	Path string
	At   time.Time
}

// TriggerFunc runs after a sighting write, standing in for the deployed
// trigger functions.
type TriggerFunc func(m *MockProvider, uid, sightingID string, sighting types.Sighting)

// MockProvider is an in-memory Provider implementation for testing.
type MockProvider struct {
	mu        sync.Mutex
	docs      map[string]map[string]interface{}
	hidden    map[string]int // path -> reads left before the document becomes visible
	ops       []Op
	trigger   TriggerFunc
	started   bool
	stopCalls int

	// Clock stamps recorded ops. Defaults to time.Now.
	Clock func() time.Time

	StartErr error
	PutErr   error
	ReadErr  error
	StopErr  error
}

// NewMockProvider creates a new in-memory mock provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		docs:   make(map[string]map[string]interface{}),
		hidden: make(map[string]int),
		Clock:  time.Now,
	}
}

// OnPutSighting installs a trigger that fires after every successful write.
func (m *MockProvider) OnPutSighting(fn TriggerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trigger = fn
}

// SetDocument stores data at path, overwriting any previous document.
func (m *MockProvider) SetDocument(path string, data map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[path] = data
}

// Document returns the data stored at path.
func (m *MockProvider) Document(path string) (map[string]interface{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[path]
	return d, ok
}

// HideFor makes the document at path invisible to the next n reads, to
// simulate a trigger that has not finished yet.
func (m *MockProvider) HideFor(path string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hidden[path] = n
}

// Ops returns a copy of the recorded calls.
func (m *MockProvider) Ops() []Op {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Op, len(m.ops))
	copy(out, m.ops)
	return out
}

// OpsOfKind returns the recorded calls of one kind.
func (m *MockProvider) OpsOfKind(kind OpKind) []Op {
	var out []Op
	for _, op := range m.Ops() {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// StopCalls returns how many times Stop was called.
func (m *MockProvider) StopCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopCalls
}

func (m *MockProvider) record(kind OpKind, path string) {
	m.ops = append(m.ops, Op{Kind: kind, Path: path, At: m.Clock()})
}

func (m *MockProvider) PutUserSighting(_ context.Context, uid, sightingID string, sighting types.Sighting) error {
	m.mu.Lock()
	path := types.UserSightingPath(uid, sightingID)
	m.record(OpPut, path)
	if m.PutErr != nil {
		m.mu.Unlock()
		return m.PutErr
	}
	m.docs[path] = SightingData(sighting, m.Clock())
	trigger := m.trigger
	m.mu.Unlock()

	if trigger != nil {
		trigger(m, uid, sightingID, sighting)
	}
	return nil
}

func (m *MockProvider) GetMirror(_ context.Context, sightingID string) (*types.Document, error) {
	return m.get(types.MirrorPath(sightingID))
}

func (m *MockProvider) GetAlert(_ context.Context, sightingID string) (*types.Document, error) {
	return m.get(types.AlertPath(sightingID))
}

func (m *MockProvider) get(path string) (*types.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(OpRead, path)
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	if n := m.hidden[path]; n > 0 {
		m.hidden[path] = n - 1
		return &types.Document{Path: path}, nil
	}
	data, ok := m.docs[path]
	if !ok {
		return &types.Document{Path: path}, nil
	}
	return &types.Document{Path: path, Exists: true, Data: data}, nil
}

func (m *MockProvider) Start(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StartErr != nil {
		return m.StartErr
	}
	m.started = true
	return nil
}

func (m *MockProvider) Stop(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(OpStop, "")
	m.stopCalls++
	m.started = false
	return m.StopErr
}

func (m *MockProvider) Ping(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ReadErr
}

// MirrorAndAlert is a TriggerFunc that behaves like the deployed functions:
// it copies the sighting to sightings/{id} and writes alerts/{id}.
func MirrorAndAlert(m *MockProvider, _ string, sightingID string, sighting types.Sighting) {
	m.SetDocument(types.MirrorPath(sightingID), SightingData(sighting, m.Clock()))
	m.SetDocument(types.AlertPath(sightingID), map[string]interface{}{
		"title":  "Parking enforcer spotted near " + sighting.Location,
		"active": true,
		"type":   string(sighting.Type),
		"status": string(sighting.Status),
	})
}

// SightingData flattens a sighting the way Firestore would return it.
func SightingData(s types.Sighting, serverTime time.Time) map[string]interface{} {
	created := s.CreatedAt
	if created.IsZero() {
		created = serverTime
	}
	return map[string]interface{}{
		"type":        string(s.Type),
		"location":    s.Location,
		"latitude":    s.Latitude,
		"longitude":   s.Longitude,
		"notes":       s.Notes,
		"reportedAt":  s.ReportedAt,
		"occurrences": int64(s.Occurrences),
		"createdAt":   created,
		"expiresAt":   s.ExpiresAt,
		"status":      string(s.Status),
	}
}
