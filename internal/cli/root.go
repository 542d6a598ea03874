// Package cli implements the Ember command-line interface using Cobra.
// Each subcommand maps to an engine capability (goal, checkin, insights, serve).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ember",
	Short: "Ember — Accountability coaching for your goals",
	Long: `Ember is a local-first accountability engine.
Track goals and habits, keep streaks alive, earn XP, and see when you
are about to drift — before it happens.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// cliVersion is set by Execute so subcommands can pass it to the daemon.
var cliVersion = "dev"

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	cliVersion = version
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
