package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

// Answerer answers a question about a PDF document, always returning a
// human-readable string. The docqa.Pipeline satisfies it.
type Answerer interface {
	Answer(ctx context.Context, path, question string) string
}

// DocQnATool answers questions about an uploaded PDF document through the
// document question answering pipeline.
type DocQnATool struct {
	pipeline Answerer
}

// docQnAInput is the JSON-serialisable input schema for DocQnATool.
type docQnAInput struct {
	// PDFPath is the path of the PDF document to query.
	PDFPath string `json:"pdf_path"`

	// Question is the question to answer from the document.
	Question string `json:"question"`
}

// NewDocQnATool constructs a DocQnATool over the given pipeline.
func NewDocQnATool(pipeline Answerer) *DocQnATool {
	return &DocQnATool{pipeline: pipeline}
}

// Name returns the tool name registered with the agent.
func (t *DocQnATool) Name() string { return "document_qna" }

// Description returns the LLM-facing description of this tool.
func (t *DocQnATool) Description() string {
	return "Answers a question about the content of a PDF document. Provide the document path " +
		"and the question; the most relevant page is used as context for the answer."
}

// Info returns the Eino tool metadata including the JSON input schema.
func (t *DocQnATool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: t.Name(),
		Desc: t.Description(),
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"pdf_path": {
				Type:     schema.String,
				Desc:     "Path of the PDF document to query.",
				Required: true,
			},
			"question": {
				Type:     schema.String,
				Desc:     "The question to answer from the document.",
				Required: true,
			},
		}),
	}, nil
}

// InvokableRun runs the pipeline. The pipeline converts its own failures
// to result strings, so this only errors on malformed input.
func (t *DocQnATool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	var input docQnAInput
	if err := json.Unmarshal([]byte(argumentsInJSON), &input); err != nil {
		return "", fmt.Errorf("document_qna: invalid input: %w", err)
	}
	if strings.TrimSpace(input.PDFPath) == "" {
		return "", fmt.Errorf("document_qna: pdf_path is required")
	}
	if strings.TrimSpace(input.Question) == "" {
		return "", fmt.Errorf("document_qna: question is required")
	}
	return t.pipeline.Answer(ctx, input.PDFPath, input.Question), nil
}
