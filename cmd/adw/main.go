// Command adw is the autonomous software delivery orchestrator: phase
// units, composite pipelines, ingestion front-ends, guardrail hooks, and
// the health probe, all as subcommands of a single binary.
package main

import (
	"os"

	"github.com/AbdelazizMoustafa10m/adw/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
