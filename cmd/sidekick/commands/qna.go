package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avolut/sidekick-go/internal/logging"
	"github.com/avolut/sidekick-go/internal/provider"
)

// NewQnACmd constructs the `sidekick qna` command, which answers a single
// question about a PDF document without going through the agent loop.
func NewQnACmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qna [pdf-path] [question]",
		Short: "Answer a question about a PDF document",
		Long: `Answer a question about a PDF document using the document QnA pipeline:
the document's pages are embedded alongside the question, the most relevant
page is selected, and the answer is generated from that page alone.

Examples:
  sidekick qna report.pdf "what was the revenue in 2024?"
  TEXTGEN_PROVIDER=huggingface TEXTGEN_MODEL=Qwen/Qwen2.5-1.5B-Instruct \
    sidekick qna paper.pdf "what method does the paper propose?"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()

			chatModel, err := provider.NewFromEnv(ctx)
			if err != nil {
				return fmt.Errorf("qna: failed to initialise model provider: %w", err)
			}

			qna, err := buildDocQA(chatModel, log)
			if err != nil {
				return fmt.Errorf("qna: failed to initialise document QnA: %w", err)
			}

			fmt.Println(qna.Answer(ctx, args[0], args[1]))
			return nil
		},
	}

	return cmd
}
