package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

// FinalAnswerTool ends the agent loop by returning the agent's final answer
// to the user verbatim.
type FinalAnswerTool struct{}

// finalInput is the JSON-serialisable input schema for FinalAnswerTool.
type finalInput struct {
	// Answer is the final answer to deliver to the user.
	Answer string `json:"answer"`
}

// NewFinalAnswerTool constructs a FinalAnswerTool.
func NewFinalAnswerTool() *FinalAnswerTool {
	return &FinalAnswerTool{}
}

// Name returns the tool name registered with the agent.
func (t *FinalAnswerTool) Name() string { return "final_answer" }

// Description returns the LLM-facing description of this tool.
func (t *FinalAnswerTool) Description() string {
	return "Delivers the final answer to the user. Call this once the task is complete."
}

// Info returns the Eino tool metadata including the JSON input schema.
func (t *FinalAnswerTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: t.Name(),
		Desc: t.Description(),
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"answer": {
				Type:     schema.String,
				Desc:     "The final answer to present to the user.",
				Required: true,
			},
		}),
	}, nil
}

// InvokableRun returns the provided answer unchanged.
func (t *FinalAnswerTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	var input finalInput
	if err := json.Unmarshal([]byte(argumentsInJSON), &input); err != nil {
		return "", fmt.Errorf("final_answer: invalid input: %w", err)
	}
	return input.Answer, nil
}
