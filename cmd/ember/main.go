// Command ember is the Ember accountability engine entrypoint.
package main

import (
	"github.com/ember-coach/ember/internal/cli"
)

// version is set at build time via -ldflags "-X main.version=v0.1.0".
var version = "dev"

func main() {
	cli.Execute(version)
}
