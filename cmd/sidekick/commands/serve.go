package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudwego/eino/callbacks"
	"github.com/spf13/cobra"

	"github.com/avolut/sidekick-go/internal/agent"
	"github.com/avolut/sidekick-go/internal/logging"
	"github.com/avolut/sidekick-go/internal/provider"
	"github.com/avolut/sidekick-go/internal/server"
	"github.com/avolut/sidekick-go/internal/store"
	"github.com/avolut/sidekick-go/internal/tracing"
)

// NewServeCmd constructs the `sidekick serve` command, which starts the HTTP
// server and serves the web UI for interactive use.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Sidekick HTTP server and web UI",
		Long: `Start the Sidekick HTTP server on localhost.

The server exposes a REST/SSE chat API, a PDF upload endpoint, health and
readiness probes, Prometheus metrics, and a two-field web form for asking
questions with or without a document.

Examples:
  sidekick serve
  sidekick serve --port 9090
  MODEL_PROVIDER=gemini sidekick serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			log.Info("serve starting", slog.String("provider", os.Getenv("MODEL_PROVIDER")))

			// Setup Langfuse tracing — opt-in, no-op if keys are absent.
			handler, flush, ok := tracing.Setup()
			if ok {
				callbacks.AppendGlobalHandlers(handler)
				defer flush()
				log.Info("langfuse tracing enabled")
			} else {
				log.Info("langfuse tracing disabled", slog.String("reason", "LANGFUSE_PUBLIC_KEY not set"))
			}

			providerCfg := provider.ConfigFromEnv()
			chatModel, err := provider.New(ctx, providerCfg)
			if err != nil {
				return fmt.Errorf("serve: failed to initialise model provider: %w", err)
			}
			log.Info("provider initialised", slog.String("provider", string(providerCfg.Backend)))

			qna, err := buildDocQA(chatModel, log)
			if err != nil {
				return fmt.Errorf("serve: failed to initialise document QnA: %w", err)
			}

			// Open conversation history store. SIDEKICK_HISTORY_DB overrides the
			// default path (~/.sidekick/history.db). Set to "disabled" to disable.
			var historyStore store.ConversationStore
			dbPath := os.Getenv("SIDEKICK_HISTORY_DB")
			if dbPath != "disabled" {
				if dbPath == "" {
					dbPath, err = store.DefaultDBPath()
					if err != nil {
						log.Warn("history: could not resolve default DB path, disabling", slog.Any("error", err))
					}
				}
				if dbPath != "" {
					hs, hsErr := store.Open(dbPath)
					if hsErr != nil {
						log.Warn("history: failed to open store, disabling", slog.Any("error", hsErr))
					} else {
						historyStore = hs
						defer func() { _ = hs.Close() }()
						log.Info("history: store opened", slog.String("path", dbPath))
					}
				}
			} else {
				log.Info("history: disabled via SIDEKICK_HISTORY_DB=disabled")
			}

			sidekick, err := agent.New(ctx, &agent.Config{
				ChatModel: chatModel,
				Tools:     buildTools(qna),
				History:   historyStore,
			})
			if err != nil {
				return fmt.Errorf("serve: failed to initialise agent: %w", err)
			}

			srv, err := server.New(sidekick, qna, &server.Config{
				Host:      host,
				Port:      port,
				Logger:    log,
				Pingers:   buildPingers(providerCfg),
				APIKey:    os.Getenv("SIDEKICK_API_KEY"),
				UploadDir: os.Getenv("SIDEKICK_UPLOAD_DIR"),
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "TCP port to listen on")

	return cmd
}
