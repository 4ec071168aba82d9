package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avolut/sidekick-go/internal/agent"
	"github.com/avolut/sidekick-go/internal/logging"
	"github.com/avolut/sidekick-go/internal/provider"
)

// NewAskCmd constructs the `sidekick ask` command, which sends a single
// natural language question to the agent and streams the response to stdout.
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask the assistant a question",
		Long: `Ask Sidekick a natural language question. The agent can call its tools
(weather, time, web search, image generation, document QnA) as needed.

Examples:
  sidekick ask "what's the weather in Berlin?"
  sidekick ask "what time is it in Asia/Tokyo?"
  sidekick ask "summarise the main finding in uploads/report.pdf"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()

			chatModel, err := provider.NewFromEnv(ctx)
			if err != nil {
				return fmt.Errorf("ask: failed to initialise model provider: %w", err)
			}

			qna, err := buildDocQA(chatModel, log)
			if err != nil {
				return fmt.Errorf("ask: failed to initialise document QnA: %w", err)
			}

			sidekick, err := agent.New(ctx, &agent.Config{
				ChatModel: chatModel,
				Tools:     buildTools(qna),
			})
			if err != nil {
				return fmt.Errorf("ask: failed to initialise agent: %w", err)
			}

			return sidekick.Query(ctx, args[0], "", os.Stdout) //nolint:wrapcheck // CLI entry point — error goes directly to cobra
		},
	}

	return cmd
}
