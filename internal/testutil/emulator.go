package testutil

import (
	"context"
	"net"
	"os"
	"testing"
	"time"
)

// EmulatorProjectID is the project used for emulator tests. The demo- prefix
// keeps the emulator from reaching real Google services.
const EmulatorProjectID = "demo-notifysmoke"

// RequireEmulator skips the test unless a Firestore emulator is reachable at
// FIRESTORE_EMULATOR_HOST, and returns that host.
func RequireEmulator(t *testing.T) string {
	t.Helper()

	host := os.Getenv("FIRESTORE_EMULATOR_HOST")
	if host == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set; skipping emulator test")
	}

	d := net.Dialer{Timeout: 2 * time.Second}
	conn, err := d.DialContext(context.Background(), "tcp", host)
	if err != nil {
		t.Skipf("Firestore emulator not reachable at %s: %v", host, err)
	}
	_ = conn.Close()
	return host
}
