// Package agent wires together the Eino ReAct agent with the assistant's
// tools: weather, timezone clock, web search, image generation, document
// question answering and the final answer terminator. The agent handles the
// full ReAct loop: it decides when to call tools and when to respond
// directly.
package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/flow/agent/react"
	"github.com/cloudwego/eino/schema"

	"github.com/avolut/sidekick-go/internal/budget"
	"github.com/avolut/sidekick-go/internal/logging"
	"github.com/avolut/sidekick-go/internal/store"
	"github.com/avolut/sidekick-go/internal/tools"
)

// systemPrompt is the base system prompt injected into every conversation.
const systemPrompt = `You are Sidekick, a helpful multi-tool assistant. You answer questions
directly when you know the answer and call tools when you need live data or
document content.

## Your Tools

- get_current_weather — current conditions for a location (metric units)
- get_current_time_in_timezone — local time in an IANA timezone
- web_search — top web results for a query
- generate_image — create an image from a text prompt, returns a file path
- document_qna — answer a question about an uploaded PDF document
- final_answer — deliver your final answer to the user

## How You Work

- Prefer a tool over guessing for anything time-sensitive, local or factual
  you are not certain of.
- For questions about an uploaded document, always use document_qna with the
  document's path; never invent document content.
- Tool results that start with "Error" describe a failed lookup. Report the
  failure plainly and suggest what the user can try instead.
- Call final_answer exactly once, when the task is complete.
- Keep answers concise. Do not pad with caveats the user did not ask for.`

// Config holds the dependencies required to construct a Sidekick agent.
type Config struct {
	// ChatModel is the LLM backend constructed by the provider factory.
	ChatModel model.ToolCallingChatModel

	// Tools is the list of tools available to the agent.
	Tools []tool.BaseTool

	// History is the optional conversation store used to persist and replay
	// prior turns. If nil, each query is stateless.
	History store.ConversationStore
	// HistoryDepth is the number of prior turns (user+assistant pairs) to
	// inject per query. Defaults to 10 if zero.
	HistoryDepth int
	// MaxContextTokens is the estimated token budget for the full input
	// context (system prompt + history + user message). History is trimmed
	// oldest-first to fit. Defaults to budget.DefaultMaxContextTokens if zero.
	MaxContextTokens int
}

// toolNames collects the registered names of tools that expose one, for
// startup logging.
func toolNames(ts []tool.BaseTool) []string {
	names := make([]string, 0, len(ts))
	for _, t := range ts {
		if named, ok := t.(tools.Tool); ok {
			names = append(names, named.Name())
		}
	}
	return names
}

// Sidekick wraps the Eino ReAct agent with conversation history and
// token-budget trimming.
type Sidekick struct {
	// reactAgent is the underlying Eino ReAct loop agent.
	reactAgent *react.Agent

	// history is the optional conversation store for multi-turn context.
	history store.ConversationStore

	// historyDepth is the number of recent messages to inject per query.
	historyDepth int

	// maxContextTokens is the estimated token budget for the full input context.
	maxContextTokens int
}

// New constructs a Sidekick agent from the provided Config.
func New(ctx context.Context, cfg *Config) (*Sidekick, error) {
	if cfg.ChatModel == nil {
		return nil, fmt.Errorf("agent: ChatModel must not be nil")
	}

	agentCfg := &react.AgentConfig{
		ToolCallingModel: cfg.ChatModel,
		ToolsConfig: compose.ToolsNodeConfig{
			Tools: cfg.Tools,
		},
	}

	reactAgent, err := react.NewAgent(ctx, agentCfg)
	if err != nil {
		return nil, fmt.Errorf("agent: failed to create ReAct agent: %w", err)
	}

	logging.FromContext(ctx).Info("agent: tools registered",
		slog.Any("tools", toolNames(cfg.Tools)))

	depth := cfg.HistoryDepth
	if depth <= 0 {
		depth = 10
	}

	maxCtx := cfg.MaxContextTokens
	if maxCtx <= 0 {
		maxCtx = budget.DefaultMaxContextTokens
	}

	return &Sidekick{
		reactAgent:       reactAgent,
		history:          cfg.History,
		historyDepth:     depth,
		maxContextTokens: maxCtx,
	}, nil
}

// Query sends a user message to the agent and streams the response to the
// provided writer. If a conversation store is configured, prior turns for
// the session are injected and the new exchange is persisted afterwards.
func (a *Sidekick) Query(ctx context.Context, userMessage, session string, w io.Writer) error {
	messages, err := a.buildMessages(ctx, userMessage, session)
	if err != nil {
		return fmt.Errorf("agent: failed to build messages: %w", err)
	}

	sr, err := a.reactAgent.Stream(ctx, messages)
	if err != nil {
		return fmt.Errorf("agent: stream failed: %w", err)
	}
	defer sr.Close()

	var msgBuf strings.Builder
	for {
		msg, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("agent: stream receive error: %w", err)
		}
		if msg != nil && msg.Content != "" {
			if _, err := fmt.Fprint(w, msg.Content); err != nil {
				return fmt.Errorf("agent: write error: %w", err)
			}
			msgBuf.WriteString(msg.Content)
		}
	}

	// Persist the turn to the conversation store (non-fatal on error).
	if a.history != nil {
		if err := a.history.Append(ctx, session, store.RoleUser, userMessage); err != nil {
			logging.FromContext(ctx).Warn("history: failed to persist user message", slog.Any("error", err))
		}
		if err := a.history.Append(ctx, session, store.RoleAssistant, msgBuf.String()); err != nil {
			logging.FromContext(ctx).Warn("history: failed to persist assistant message", slog.Any("error", err))
		}
	}

	return nil
}

// buildMessages constructs the message slice for the agent, injecting recent
// conversation history trimmed oldest-first to fit the token budget.
func (a *Sidekick) buildMessages(ctx context.Context, userMessage, session string) ([]*schema.Message, error) {
	var historyMsgs []*schema.Message
	if a.history != nil {
		prior, err := a.history.Recent(ctx, session, a.historyDepth*2)
		if err != nil {
			logging.FromContext(ctx).Warn("history: failed to load prior messages", slog.Any("error", err))
		} else {
			for _, m := range prior {
				switch m.Role {
				case store.RoleUser:
					historyMsgs = append(historyMsgs, schema.UserMessage(m.Content))
				case store.RoleAssistant:
					historyMsgs = append(historyMsgs, schema.AssistantMessage(m.Content, nil))
				}
			}
		}
	}

	fixed := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(userMessage),
	}

	before := len(historyMsgs)
	historyMsgs = budget.TrimHistory(fixed, historyMsgs, a.maxContextTokens)
	if dropped := before - len(historyMsgs); dropped > 0 {
		logging.FromContext(ctx).Warn("budget: dropped history messages to fit context window",
			slog.Int("dropped", dropped),
			slog.Int("retained", len(historyMsgs)),
			slog.Int("max_tokens", a.maxContextTokens),
		)
	}

	result := make([]*schema.Message, 0, 2+len(historyMsgs))
	result = append(result, schema.SystemMessage(systemPrompt))
	result = append(result, historyMsgs...)
	result = append(result, schema.UserMessage(userMessage))
	return result, nil
}
