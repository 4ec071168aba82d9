// Package tools defines the callable tools the agent can invoke during a
// conversation: weather lookup, timezone clock, web search, image
// generation, document question answering and the final answer terminator.
// Each tool satisfies both this package's interface and Eino's
// tool.BaseTool interface so they can be registered directly with the agent.
package tools

// Tool is the interface every agent tool must satisfy. It extends the
// basic Eino tool contract with a Name accessor so callers can log and
// route tool calls by name without type assertions.
type Tool interface {
	// Name returns the unique tool name registered with the agent.
	Name() string

	// Description returns a human-readable description of what the tool does.
	// This text is sent to the LLM as part of the tool schema.
	Description() string
}
