package cli

import (
	"os"

	"github.com/ember-coach/ember/internal/daemon"
)

// openDaemon loads config and constructs an in-process daemon.
// Used by every subcommand that touches the local store directly.
func openDaemon() (*daemon.Daemon, error) {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return nil, err
	}
	return daemon.New(cfg, cliVersion)
}

// currentUser returns the user identity the CLI operates as.
// Single-user install by default; EMBER_USER overrides for shared machines.
func currentUser() string {
	if u := os.Getenv("EMBER_USER"); u != "" {
		return u
	}
	return "local"
}
