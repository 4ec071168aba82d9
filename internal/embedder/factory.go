// Package embedder provides text embedding clients used by the document
// question answering pipeline to score page relevance.
package embedder

import (
	"fmt"
	"os"

	"github.com/avolut/sidekick-go/internal/docqa"
)

// NewFromEnv constructs an embedder from environment variables.
//
// EMBEDDING_PROVIDER selects the backend ("ollama", "openai" or
// "azure-openai") and falls back to MODEL_PROVIDER so a single variable
// can drive both the chat model and the embedder.
func NewFromEnv() (docqa.Embedder, error) {
	provider := os.Getenv("EMBEDDING_PROVIDER")
	if provider == "" {
		provider = os.Getenv("MODEL_PROVIDER")
	}
	if provider == "" {
		provider = "ollama"
	}

	switch provider {
	case "ollama":
		host := os.Getenv("OLLAMA_HOST")
		if host == "" {
			host = "http://localhost:11434"
		}
		model := os.Getenv("EMBEDDING_MODEL")
		if model == "" {
			model = "nomic-embed-text"
		}
		return NewOllamaEmbedder(&OllamaConfig{
			Host:  host,
			Model: model,
		}), nil

	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for the openai embedding provider")
		}
		model := os.Getenv("EMBEDDING_MODEL")
		if model == "" {
			model = "text-embedding-3-small"
		}
		return NewOpenAIEmbedder(&OpenAIConfig{
			APIKey:  apiKey,
			Model:   model,
			BaseURL: os.Getenv("OPENAI_BASE_URL"),
		}), nil

	case "azure-openai":
		apiKey := os.Getenv("AZURE_OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("AZURE_OPENAI_API_KEY is required for the azure-openai embedding provider")
		}
		endpoint := os.Getenv("AZURE_OPENAI_ENDPOINT")
		if endpoint == "" {
			return nil, fmt.Errorf("AZURE_OPENAI_ENDPOINT is required for the azure-openai embedding provider")
		}
		deployment := os.Getenv("AZURE_OPENAI_EMBEDDING_DEPLOYMENT")
		if deployment == "" {
			deployment = "text-embedding-3-small"
		}
		return NewOpenAIEmbedder(&OpenAIConfig{
			APIKey:     apiKey,
			Model:      deployment,
			BaseURL:    endpoint,
			Azure:      true,
			APIVersion: os.Getenv("AZURE_OPENAI_API_VERSION"),
		}), nil

	default:
		return nil, fmt.Errorf("unknown embedding provider %q (supported: ollama, openai, azure-openai)", provider)
	}
}
