// Package textgen produces short free-text completions for the document
// question answering pipeline.
package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// defaultHFEndpoint is the Hugging Face Inference API base URL.
const defaultHFEndpoint = "https://api-inference.huggingface.co"

// HFClient generates text through the Hugging Face Inference API.
// It is safe for concurrent use.
type HFClient struct {
	token    string
	model    string
	endpoint string
	client   *http.Client
}

// HFConfig holds the settings for constructing an HFClient.
type HFConfig struct {
	// Token is the Hugging Face API token.
	Token string
	// Model is the hosted model id, e.g. "Qwen/Qwen2.5-1.5B-Instruct".
	Model string
	// Endpoint overrides the default Inference API base URL.
	Endpoint string
}

// NewHFClient constructs an HFClient from the given config.
func NewHFClient(cfg *HFConfig) *HFClient {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultHFEndpoint
	}
	return &HFClient{
		token:    cfg.Token,
		model:    cfg.Model,
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Timeout: 120 * time.Second},
	}
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MaxNewTokens   int  `json:"max_new_tokens"`
	ReturnFullText bool `json:"return_full_text"`
}

type hfCandidate struct {
	GeneratedText string `json:"generated_text"`
}

type hfError struct {
	Error string `json:"error"`
}

// Generate asks the hosted model to continue prompt, capped at
// maxNewTokens. The first candidate's text is returned.
func (c *HFClient) Generate(ctx context.Context, prompt string, maxNewTokens int) (string, error) {
	payload, err := json.Marshal(hfRequest{
		Inputs: prompt,
		Parameters: hfParameters{
			MaxNewTokens:   maxNewTokens,
			ReturnFullText: false,
		},
	})
	if err != nil {
		return "", fmt.Errorf("huggingface: marshal request: %w", err)
	}

	url := c.endpoint + "/models/" + c.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("huggingface: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("huggingface: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("huggingface: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr hfError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return "", fmt.Errorf("huggingface: %s", apiErr.Error)
		}
		return "", fmt.Errorf("huggingface: HTTP %d", resp.StatusCode)
	}

	var candidates []hfCandidate
	if err := json.Unmarshal(body, &candidates); err != nil {
		return "", fmt.Errorf("huggingface: decode response: %w", err)
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("huggingface: empty response")
	}
	return strings.TrimSpace(candidates[0].GeneratedText), nil
}
