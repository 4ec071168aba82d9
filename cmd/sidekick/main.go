// Command sidekick is the entry point for the Sidekick multi-tool AI assistant.
// It provides a CLI interface (via Cobra) and an optional HTTP server with
// a web UI for interactive use.
package main

import (
	"fmt"
	"os"

	"github.com/avolut/sidekick-go/cmd/sidekick/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
