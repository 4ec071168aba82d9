package commands

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"

	"github.com/avolut/sidekick-go/internal/docqa"
	"github.com/avolut/sidekick-go/internal/embedder"
	"github.com/avolut/sidekick-go/internal/provider"
	"github.com/avolut/sidekick-go/internal/server"
	"github.com/avolut/sidekick-go/internal/textgen"
	sktools "github.com/avolut/sidekick-go/internal/tools"
)

// buildDocQA constructs the document question answering pipeline from
// environment configuration. The chat model is reused as the generation
// backend unless TEXTGEN_PROVIDER selects the Hugging Face client.
func buildDocQA(chatModel model.ToolCallingChatModel, log *slog.Logger) (*docqa.Pipeline, error) {
	emb, err := embedder.NewFromEnv()
	if err != nil {
		return nil, err
	}

	gen, err := textgen.NewFromEnv(chatModel)
	if err != nil {
		return nil, err
	}

	log.Info("document QnA pipeline initialised",
		slog.String("embedding_provider", os.Getenv("EMBEDDING_PROVIDER")),
		slog.String("textgen_provider", os.Getenv("TEXTGEN_PROVIDER")),
	)

	return docqa.New(docqa.NewPDFExtractor(), emb, gen), nil
}

// buildTools constructs the full list of Eino-compatible tools to register
// with the agent. Tools whose upstream API key is absent are still
// registered — they report configuration problems as result strings.
func buildTools(qna *docqa.Pipeline) []tool.BaseTool {
	return []tool.BaseTool{
		sktools.NewWeatherTool(os.Getenv("OPENWEATHER_API_KEY"), os.Getenv("OPENWEATHER_ENDPOINT")),
		sktools.NewClockTool(),
		sktools.NewSearchTool(os.Getenv("SEARCH_ENDPOINT"), getEnvInt("SEARCH_MAX_RESULTS", 0)),
		sktools.NewImageTool(&sktools.ImageConfig{
			Token:     os.Getenv("HF_API_TOKEN"),
			Model:     getEnvOrDefault("IMAGE_MODEL", "black-forest-labs/FLUX.1-dev"),
			Endpoint:  os.Getenv("IMAGE_ENDPOINT"),
			OutputDir: os.Getenv("IMAGE_OUTPUT_DIR"),
		}),
		sktools.NewDocQnATool(qna),
		sktools.NewFinalAnswerTool(),
	}
}

// buildPingers assembles the readiness probes for the configured backends.
// Only endpoints we can cheaply probe over HTTP get a pinger.
func buildPingers(cfg *provider.Config) []server.Pinger {
	var pingers []server.Pinger

	if cfg.Backend == provider.BackendOllama && cfg.Ollama.Host != "" {
		pingers = append(pingers, server.NewHTTPPinger("model", cfg.Ollama.Host))
	}

	embProvider := getEnvOrDefault("EMBEDDING_PROVIDER", os.Getenv("MODEL_PROVIDER"))
	if embProvider == "" || embProvider == "ollama" {
		host := getEnvOrDefault("OLLAMA_HOST", "http://localhost:11434")
		pingers = append(pingers, server.NewHTTPPinger("embedder", host))
	}

	return pingers
}

// getEnvOrDefault returns the env var value or fallback when unset.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt parses an integer env var, returning fallback when unset or
// malformed.
func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
