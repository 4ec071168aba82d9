package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avolut/sidekick-go/internal/version"
)

// NewVersionCmd prints build information.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sidekick %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.BuildDate)
		},
	}
}
