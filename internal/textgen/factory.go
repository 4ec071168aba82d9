package textgen

import (
	"fmt"
	"os"

	"github.com/cloudwego/eino/components/model"

	"github.com/avolut/sidekick-go/internal/docqa"
)

// NewFromEnv constructs a generator from environment variables.
//
// TEXTGEN_PROVIDER selects the backend: "huggingface" calls the Hugging
// Face Inference API, "model" (the default) reuses the chat model passed
// in by the caller.
func NewFromEnv(chatModel model.BaseChatModel) (docqa.Generator, error) {
	provider := os.Getenv("TEXTGEN_PROVIDER")
	if provider == "" {
		provider = "model"
	}

	switch provider {
	case "huggingface":
		hfModel := os.Getenv("TEXTGEN_MODEL")
		if hfModel == "" {
			return nil, fmt.Errorf("TEXTGEN_MODEL is required for the huggingface textgen provider")
		}
		return NewHFClient(&HFConfig{
			Token:    os.Getenv("HF_API_TOKEN"),
			Model:    hfModel,
			Endpoint: os.Getenv("TEXTGEN_ENDPOINT"),
		}), nil

	case "model":
		if chatModel == nil {
			return nil, fmt.Errorf("no chat model available for the model textgen provider")
		}
		return NewChatModelGenerator(chatModel), nil

	default:
		return nil, fmt.Errorf("unknown textgen provider %q (supported: huggingface, model)", provider)
	}
}
