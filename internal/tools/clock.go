package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

// ClockTool reports the current local time in an IANA timezone.
type ClockTool struct {
	// now is injectable for tests; defaults to time.Now.
	now func() time.Time
}

// clockInput is the JSON-serialisable input schema for ClockTool.
type clockInput struct {
	// Timezone is an IANA zone name such as "Europe/Berlin".
	Timezone string `json:"timezone"`
}

// NewClockTool constructs a ClockTool using the system clock.
func NewClockTool() *ClockTool {
	return &ClockTool{now: time.Now}
}

// Name returns the tool name registered with the agent.
func (t *ClockTool) Name() string { return "get_current_time_in_timezone" }

// Description returns the LLM-facing description of this tool.
func (t *ClockTool) Description() string {
	return "Returns the current local time in a specified IANA timezone, e.g. \"America/New_York\" or \"Asia/Tokyo\"."
}

// Info returns the Eino tool metadata including the JSON input schema.
func (t *ClockTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: t.Name(),
		Desc: t.Description(),
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"timezone": {
				Type:     schema.String,
				Desc:     "IANA timezone name, e.g. \"Europe/Berlin\".",
				Required: true,
			},
		}),
	}, nil
}

// InvokableRun resolves the zone and formats the current local time.
// An unknown zone is reported as a result string, not an error.
func (t *ClockTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	var input clockInput
	if err := json.Unmarshal([]byte(argumentsInJSON), &input); err != nil {
		return "", fmt.Errorf("get_current_time_in_timezone: invalid input: %w", err)
	}
	if strings.TrimSpace(input.Timezone) == "" {
		return "", fmt.Errorf("get_current_time_in_timezone: timezone is required")
	}

	loc, err := time.LoadLocation(input.Timezone)
	if err != nil {
		return fmt.Sprintf("Error fetching time for timezone '%s': %v", input.Timezone, err), nil
	}

	localTime := t.now().In(loc).Format("2006-01-02 15:04:05")
	return fmt.Sprintf("The current local time in %s is: %s", input.Timezone, localTime), nil
}
