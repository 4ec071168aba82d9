package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

// defaultImageEndpoint is the Hugging Face Inference API base URL.
const defaultImageEndpoint = "https://api-inference.huggingface.co"

// ImageTool generates an image from a text prompt through the Hugging Face
// Inference API and saves it as a PNG, returning the file path.
type ImageTool struct {
	token     string
	model     string
	endpoint  string
	outputDir string
	client    *http.Client
}

// imageInput is the JSON-serialisable input schema for ImageTool.
type imageInput struct {
	// Prompt describes the image to generate.
	Prompt string `json:"prompt"`
}

// ImageConfig holds the settings for constructing an ImageTool.
type ImageConfig struct {
	// Token is the Hugging Face API token.
	Token string
	// Model is the hosted text-to-image model id.
	Model string
	// Endpoint overrides the default Inference API base URL.
	Endpoint string
	// OutputDir is where generated PNG files are written.
	OutputDir string
}

// NewImageTool constructs an ImageTool from the given config.
func NewImageTool(cfg *ImageConfig) *ImageTool {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultImageEndpoint
	}
	outputDir := cfg.OutputDir
	if outputDir == "" {
		outputDir = os.TempDir()
	}
	return &ImageTool{
		token:     cfg.Token,
		model:     cfg.Model,
		endpoint:  strings.TrimRight(endpoint, "/"),
		outputDir: outputDir,
		client:    &http.Client{Timeout: 120 * time.Second},
	}
}

// Name returns the tool name registered with the agent.
func (t *ImageTool) Name() string { return "generate_image" }

// Description returns the LLM-facing description of this tool.
func (t *ImageTool) Description() string {
	return "Generates an image from a text prompt and returns the path of the saved PNG file."
}

// Info returns the Eino tool metadata including the JSON input schema.
func (t *ImageTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: t.Name(),
		Desc: t.Description(),
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"prompt": {
				Type:     schema.String,
				Desc:     "Text description of the image to generate.",
				Required: true,
			},
		}),
	}, nil
}

// InvokableRun generates the image and writes it to the output directory.
// Upstream failures are returned as descriptive result strings.
func (t *ImageTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	var input imageInput
	if err := json.Unmarshal([]byte(argumentsInJSON), &input); err != nil {
		return "", fmt.Errorf("generate_image: invalid input: %w", err)
	}
	if strings.TrimSpace(input.Prompt) == "" {
		return "", fmt.Errorf("generate_image: prompt is required")
	}

	payload, err := json.Marshal(map[string]string{"inputs": input.Prompt})
	if err != nil {
		return "", fmt.Errorf("generate_image: marshal request: %w", err)
	}

	url := t.endpoint + "/models/" + t.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("generate_image: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Sprintf("Error generating image: %v", err), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Sprintf("Error generating image: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil
	}

	imageBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Sprintf("Error generating image: %v", err), nil
	}

	if err := os.MkdirAll(t.outputDir, 0o755); err != nil {
		return fmt.Sprintf("Error generating image: %v", err), nil
	}
	path := filepath.Join(t.outputDir, fmt.Sprintf("image_%d.png", time.Now().UnixNano()))
	if err := os.WriteFile(path, imageBytes, 0o644); err != nil {
		return fmt.Sprintf("Error generating image: %v", err), nil
	}

	return path, nil
}
