package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd assembles the notifysmoke command tree.
func NewRootCmd(version string) *cobra.Command {
	g := &GlobalFlags{}

	root := &cobra.Command{
		Use:   "notifysmoke",
		Short: "Smoke test for the sighting notification trigger functions",
		Long: `notifysmoke writes a test parking sighting into Firestore (normally the
local emulator) and checks that the trigger functions produced the global
sighting mirror and the alert record.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&g.ConfigPath, "config", "c", "", "config file (default notifysmoke.yaml if present)")
	pf.StringVar(&g.ProjectID, "project", "", "Firebase project id")
	pf.StringVar(&g.Emulator, "emulator", "", "Firestore emulator host:port")
	pf.BoolVar(&g.Production, "production", false, "talk to production Firestore instead of the emulator")
	pf.StringVar(&g.LogFormat, "log-format", "", "log format: text or json")
	pf.StringVar(&g.LogLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		NewRunCmd(g),
		NewInspectCmd(g),
		NewServeCmd(g),
		NewVersionCmd(version),
	)
	return root
}
