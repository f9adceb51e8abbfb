package types

// Defaults matching the local Firebase emulator suite of the parking app.
const (
	DefaultProjectID         = "mkeparkapp-1ad15"
	DefaultEmulatorHost      = "127.0.0.1:8080"
	DefaultFunctionsEmulator = "127.0.0.1:5001"
	DefaultUID               = "test_user_123"
	DefaultWait              = "3s"
	DefaultServerAddr        = ":8000"
)

// ProjectConfig is the top-level notifysmoke.yaml configuration.
type ProjectConfig struct {
	Firestore *FirestoreConfig `yaml:"firestore" json:"firestore"`
	Smoke     SmokeConfig      `yaml:"smoke" json:"smoke"`
	Poll      *PollConfig      `yaml:"poll,omitempty" json:"poll,omitempty"`
	Reports   []ReportConfig   `yaml:"reports,omitempty" json:"reports,omitempty"`
	Server    *ServerConfig    `yaml:"server,omitempty" json:"server,omitempty"`
	Logging   LoggingConfig    `yaml:"logging,omitempty" json:"logging,omitempty"`
}

// FirestoreConfig selects the Firestore project and, when Emulator is set,
// routes the client to a local emulator. Production disables the emulator
// hosts entirely and requires CredentialsFile.
type FirestoreConfig struct {
	ProjectID         string `yaml:"projectId" json:"projectId" validate:"required"`
	Emulator          string `yaml:"emulator,omitempty" json:"emulator,omitempty" validate:"omitempty,hostname_port"`
	FunctionsEmulator string `yaml:"functionsEmulator,omitempty" json:"functionsEmulator,omitempty" validate:"omitempty,hostname_port"`
	CredentialsFile   string `yaml:"credentialsFile,omitempty" json:"credentialsFile,omitempty"`
	Production        bool   `yaml:"production,omitempty" json:"production,omitempty"`
}

// UsesEmulator reports whether the client should talk to an emulator.
func (c *FirestoreConfig) UsesEmulator() bool {
	return c != nil && c.Emulator != ""
}

// SmokeConfig shapes the sighting written by a run and the settle wait.
type SmokeConfig struct {
	UID      string            `yaml:"uid,omitempty" json:"uid,omitempty"`
	Wait     string            `yaml:"wait,omitempty" json:"wait,omitempty"` // e.g. "3s"
	Strict   bool              `yaml:"strict,omitempty" json:"strict,omitempty"`
	Sighting *SightingTemplate `yaml:"sighting,omitempty" json:"sighting,omitempty"`
}

// SightingTemplate overrides fields of the generated test sighting.
type SightingTemplate struct {
	Type      SightingType `yaml:"type,omitempty" json:"type,omitempty"`
	Location  string       `yaml:"location,omitempty" json:"location,omitempty"`
	Latitude  *float64     `yaml:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude *float64     `yaml:"longitude,omitempty" json:"longitude,omitempty"`
	Notes     string       `yaml:"notes,omitempty" json:"notes,omitempty"`
}

// PollConfig enables re-reading missing documents after the settle wait.
type PollConfig struct {
	Enabled         bool    `yaml:"enabled" json:"enabled"`
	InitialInterval string  `yaml:"initialInterval,omitempty" json:"initialInterval,omitempty"` // e.g. "500ms"
	MaxInterval     string  `yaml:"maxInterval,omitempty" json:"maxInterval,omitempty"`
	Multiplier      float64 `yaml:"multiplier,omitempty" json:"multiplier,omitempty"`
	MaxAttempts     int     `yaml:"maxAttempts,omitempty" json:"maxAttempts,omitempty"`
	Timeout         string  `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// ReportConfig configures a report sink.
type ReportConfig struct {
	Type      ReportType `yaml:"type" json:"type"`
	Path      string     `yaml:"path,omitempty" json:"path,omitempty"`
	URL       string     `yaml:"url,omitempty" json:"url,omitempty"`
	ProjectID string     `yaml:"projectId,omitempty" json:"projectId,omitempty"`
	Topic     string     `yaml:"topic,omitempty" json:"topic,omitempty"`
}

// ServerConfig configures the health server.
type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Format LogFormat `yaml:"format,omitempty" json:"format,omitempty"`
	Level  string    `yaml:"level,omitempty" json:"level,omitempty"`
}
