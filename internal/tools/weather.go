package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

// defaultWeatherEndpoint is the OpenWeatherMap current weather API.
const defaultWeatherEndpoint = "https://api.openweathermap.org/data/2.5/weather"

// WeatherTool looks up current weather conditions for a location via the
// OpenWeatherMap API, using metric units. Failures are reported as result
// strings so a bad lookup never aborts the agent loop.
type WeatherTool struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// weatherInput is the JSON-serialisable input schema for WeatherTool.
type weatherInput struct {
	// Location is a city name, optionally with country code (e.g. "Paris,FR").
	Location string `json:"location"`
}

// weatherResponse mirrors the fields we use from the OpenWeatherMap response.
type weatherResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Message string `json:"message"`
}

// NewWeatherTool constructs a WeatherTool. endpoint may be empty to use the
// public OpenWeatherMap API.
func NewWeatherTool(apiKey, endpoint string) *WeatherTool {
	if endpoint == "" {
		endpoint = defaultWeatherEndpoint
	}
	return &WeatherTool{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Name returns the tool name registered with the agent.
func (t *WeatherTool) Name() string { return "get_current_weather" }

// Description returns the LLM-facing description of this tool.
func (t *WeatherTool) Description() string {
	return "Fetches the current weather for a given location: condition, temperature in Celsius, " +
		"humidity and wind speed. Use this whenever the user asks about weather."
}

// Info returns the Eino tool metadata including the JSON input schema.
func (t *WeatherTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: t.Name(),
		Desc: t.Description(),
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"location": {
				Type:     schema.String,
				Desc:     "City name, optionally with a country code, e.g. \"Berlin\" or \"Paris,FR\".",
				Required: true,
			},
		}),
	}, nil
}

// InvokableRun executes the weather lookup. Upstream failures are returned
// as descriptive result strings rather than errors.
func (t *WeatherTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	var input weatherInput
	if err := json.Unmarshal([]byte(argumentsInJSON), &input); err != nil {
		return "", fmt.Errorf("get_current_weather: invalid input: %w", err)
	}
	if strings.TrimSpace(input.Location) == "" {
		return "", fmt.Errorf("get_current_weather: location is required")
	}

	q := url.Values{}
	q.Set("q", input.Location)
	q.Set("appid", t.apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("get_current_weather: create request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Sprintf("Error fetching weather data for '%s': %v", input.Location, err), nil
	}
	defer resp.Body.Close()

	var data weatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return fmt.Sprintf("Error fetching weather data for '%s': %v", input.Location, err), nil
	}
	if resp.StatusCode != http.StatusOK {
		msg := data.Message
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return fmt.Sprintf("Error fetching weather data for '%s': %s", input.Location, msg), nil
	}
	if len(data.Weather) == 0 {
		return fmt.Sprintf("Error fetching weather data for '%s': empty response", input.Location), nil
	}

	name := data.Name
	if name == "" {
		name = input.Location
	}
	return fmt.Sprintf("Weather in %s:\n- Condition: %s\n- Temperature: %.1f°C\n- Humidity: %d%%\n- Wind Speed: %.1f m/s",
		name, data.Weather[0].Description, data.Main.Temp, data.Main.Humidity, data.Wind.Speed), nil
}
