package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dwsmith1983/notifysmoke/internal/config"
	"github.com/dwsmith1983/notifysmoke/internal/provider"
	"github.com/dwsmith1983/notifysmoke/internal/smoke"
	"github.com/dwsmith1983/notifysmoke/internal/testutil"
	"github.com/dwsmith1983/notifysmoke/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testStart = time.Date(2025, 6, 1, 14, 3, 22, 517_000_000, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func defaultConfig() *types.ProjectConfig {
	cfg := config.Defaults()
	config.Finalize(cfg)
	return cfg
}

func fakeClock(prov *testutil.MockProvider) smoke.Option {
	clock := testutil.NewFakeClock(testStart)
	prov.Clock = clock.Now
	return smoke.WithClock(clock.Now, clock.Sleep)
}

func TestExecuteRun_Passed(t *testing.T) {
	prov := testutil.NewMockProvider()
	prov.OnPutSighting(testutil.MirrorAndAlert)
	out := &bytes.Buffer{}

	r, err := executeRun(context.Background(), defaultConfig(), prov, out, discardLogger(), fakeClock(prov))
	require.NoError(t, err)
	assert.Equal(t, types.OutcomePassed, r.Outcome)
	assert.Equal(t, "1748786602517", r.SightingID)
	assert.Contains(t, out.String(), "Alert created successfully")
	assert.Equal(t, 1, prov.StopCalls())
}

func TestExecuteRun_MissingDocumentsExitZeroByDefault(t *testing.T) {
	prov := testutil.NewMockProvider()

	r, err := executeRun(context.Background(), defaultConfig(), prov, io.Discard, discardLogger(), fakeClock(prov))
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeIncomplete, r.Outcome)
}

func TestExecuteRun_StrictFailsWhenIncomplete(t *testing.T) {
	prov := testutil.NewMockProvider()
	cfg := defaultConfig()
	cfg.Smoke.Strict = true

	r, err := executeRun(context.Background(), cfg, prov, io.Discard, discardLogger(), fakeClock(prov))
	require.Error(t, err)
	var notPassed *ErrNotPassed
	require.ErrorAs(t, err, &notPassed)
	assert.Equal(t, types.OutcomeIncomplete, notPassed.Outcome)
	assert.Equal(t, r.RunID, notPassed.RunID)
}

func TestExecuteRun_StrictPasses(t *testing.T) {
	prov := testutil.NewMockProvider()
	prov.OnPutSighting(testutil.MirrorAndAlert)
	cfg := defaultConfig()
	cfg.Smoke.Strict = true

	_, err := executeRun(context.Background(), cfg, prov, io.Discard, discardLogger(), fakeClock(prov))
	assert.NoError(t, err)
}

func TestExecuteRun_FileReport(t *testing.T) {
	prov := testutil.NewMockProvider()
	prov.OnPutSighting(testutil.MirrorAndAlert)
	path := filepath.Join(t.TempDir(), "reports.jsonl")
	cfg := defaultConfig()
	cfg.Reports = []types.ReportConfig{{Type: types.ReportFile, Path: path}}

	r, err := executeRun(context.Background(), cfg, prov, io.Discard, discardLogger(), fakeClock(prov))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got types.Report
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &got))
	assert.Equal(t, r.RunID, got.RunID)
	assert.Equal(t, types.OutcomePassed, got.Outcome)
}

func TestExecuteRun_BadReportConfig(t *testing.T) {
	prov := testutil.NewMockProvider()
	cfg := defaultConfig()
	cfg.Reports = []types.ReportConfig{{Type: types.ReportFile}}

	_, err := executeRun(context.Background(), cfg, prov, io.Discard, discardLogger(), fakeClock(prov))
	assert.Error(t, err)
	assert.Empty(t, prov.Ops(), "nothing is written when setup fails")
}

func TestExecuteRun_PollingEnabled(t *testing.T) {
	prov := testutil.NewMockProvider()
	prov.OnPutSighting(testutil.MirrorAndAlert)
	prov.HideFor(types.AlertPath("1748786602517"), 2)
	cfg := defaultConfig()
	cfg.Poll = &types.PollConfig{Enabled: true}

	r, err := executeRun(context.Background(), cfg, prov, io.Discard, discardLogger(), fakeClock(prov))
	require.NoError(t, err)
	assert.Equal(t, types.OutcomePassed, r.Outcome)
	require.NotNil(t, r.Alert)
	assert.Equal(t, 3, r.Alert.Attempts)
}

func TestExecuteInspect(t *testing.T) {
	prov := testutil.NewMockProvider()
	prov.SetDocument(types.MirrorPath("42"), map[string]interface{}{"type": "parkingEnforcer"})
	out := &bytes.Buffer{}

	r, err := executeInspect(context.Background(), defaultConfig(), prov, "42", out, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, "42", r.SightingID)
	assert.Equal(t, types.OutcomeIncomplete, r.Outcome)
	assert.Empty(t, prov.OpsOfKind(testutil.OpPut))
	assert.Contains(t, out.String(), "Alert not found")
}

func TestServeRunner_StrictOutcomeIsNotAnError(t *testing.T) {
	prov := testutil.NewMockProvider()
	cfg := defaultConfig()
	cfg.Smoke.Strict = true
	factory := func() (provider.Provider, error) { return prov, nil }

	run := serveRunner(cfg, factory, io.Discard, discardLogger(), fakeClock(prov))
	r, err := run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, types.OutcomeIncomplete, r.Outcome)
	assert.Equal(t, 1, prov.StopCalls())
}

func TestServeRunner_FreshProviderPerRun(t *testing.T) {
	var created []*testutil.MockProvider
	factory := func() (provider.Provider, error) {
		p := testutil.NewMockProvider()
		p.OnPutSighting(testutil.MirrorAndAlert)
		created = append(created, p)
		return p, nil
	}
	clock := testutil.NewFakeClock(testStart)
	run := serveRunner(defaultConfig(), factory, io.Discard, discardLogger(), smoke.WithClock(clock.Now, clock.Sleep))

	for i := 0; i < 2; i++ {
		r, err := run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, types.OutcomePassed, r.Outcome)
	}
	require.Len(t, created, 2)
	assert.Equal(t, 1, created[0].StopCalls())
	assert.Equal(t, 1, created[1].StopCalls())
}

func TestServeRunner_ProviderError(t *testing.T) {
	factory := func() (provider.Provider, error) { return nil, errors.New("no credentials") }

	r, err := serveRunner(defaultConfig(), factory, io.Discard, discardLogger())(context.Background())
	assert.Nil(t, r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no credentials")
}

func TestSmokeOptions(t *testing.T) {
	cfg := defaultConfig()
	cfg.Smoke.Wait = "5s"

	opts, err := smokeOptions(cfg)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, opts.Wait)
	assert.Equal(t, types.DefaultUID, opts.UID)
	assert.Equal(t, types.DefaultProjectID, opts.ProjectID)
	assert.Nil(t, opts.Poll)

	cfg.Poll = &types.PollConfig{Enabled: true, MaxAttempts: 3}
	opts, err = smokeOptions(cfg)
	require.NoError(t, err)
	require.NotNil(t, opts.Poll)
	assert.Equal(t, 3, opts.Poll.MaxAttempts)
}

func TestRunFlags_Apply(t *testing.T) {
	g := &GlobalFlags{}
	cmd := NewRunCmd(g)
	require.NoError(t, cmd.ParseFlags([]string{"--uid", "flag_user", "--wait", "9s", "--poll", "--strict"}))

	cfg := defaultConfig()
	var f runFlags
	f.uid, _ = cmd.Flags().GetString("uid")
	f.wait, _ = cmd.Flags().GetString("wait")
	f.poll, _ = cmd.Flags().GetBool("poll")
	f.strict, _ = cmd.Flags().GetBool("strict")
	require.NoError(t, f.apply(cmd, cfg))

	assert.Equal(t, "flag_user", cfg.Smoke.UID)
	assert.Equal(t, "9s", cfg.Smoke.Wait)
	require.NotNil(t, cfg.Poll)
	assert.True(t, cfg.Poll.Enabled)
	assert.True(t, cfg.Smoke.Strict)
}

func TestRunFlags_ApplyRejectsBadWait(t *testing.T) {
	cmd := NewRunCmd(&GlobalFlags{})
	f := runFlags{wait: "later"}
	assert.Error(t, f.apply(cmd, defaultConfig()))
}

func TestRunFlags_UnchangedFlagsKeepConfig(t *testing.T) {
	cmd := NewRunCmd(&GlobalFlags{})
	require.NoError(t, cmd.ParseFlags(nil))
	cfg := defaultConfig()
	cfg.Smoke.Strict = true

	var f runFlags
	require.NoError(t, f.apply(cmd, cfg))
	assert.True(t, cfg.Smoke.Strict)
	assert.Nil(t, cfg.Poll)
}

func TestLoadConfig_FlagsOverrideEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(config.EnvProjectID, "from-env")
	t.Setenv(config.EnvFirestoreEmulator, "10.0.0.5:8080")
	t.Setenv(config.EnvFunctionsEmulator, "")
	t.Setenv(config.EnvUID, "")
	t.Setenv(config.EnvWait, "")
	t.Setenv(config.EnvStrict, "")

	cfg, err := loadConfig(&GlobalFlags{ProjectID: "from-flag", Emulator: "localhost:9090", LogFormat: "json"})
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.Firestore.ProjectID)
	assert.Equal(t, "localhost:9090", cfg.Firestore.Emulator)
	assert.Equal(t, types.LogFormatJSON, cfg.Logging.Format)
}

func TestLoadConfig_InvalidFlagValue(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(config.EnvFirestoreEmulator, "")
	t.Setenv(config.EnvStrict, "")

	_, err := loadConfig(&GlobalFlags{LogFormat: "xml"})
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(types.LoggingConfig{Format: types.LogFormatJSON, Level: "warn"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "v", rec["k"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in), tt.in)
	}
}

func TestVersionCmd(t *testing.T) {
	root := NewRootCmd("1.2.3")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "notifysmoke 1.2.3")
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := NewRootCmd("dev")
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"run", "inspect", "serve", "version"} {
		assert.True(t, names[want], want)
	}
}

func TestInspectCmd_RequiresID(t *testing.T) {
	root := NewRootCmd("dev")
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"inspect"})
	assert.Error(t, root.Execute())
}
