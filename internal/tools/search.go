package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

// defaultSearchEndpoint is the DuckDuckGo HTML (non-JS) results page.
const defaultSearchEndpoint = "https://html.duckduckgo.com/html/"

// defaultSearchMaxResults caps how many results are returned to the agent.
const defaultSearchMaxResults = 5

// SearchTool performs a web search against the DuckDuckGo HTML endpoint and
// returns the top results as titles, URLs and snippets.
type SearchTool struct {
	endpoint   string
	maxResults int
	client     *http.Client
}

// searchInput is the JSON-serialisable input schema for SearchTool.
type searchInput struct {
	// Query is the search query string.
	Query string `json:"query"`
}

// searchResult is one parsed result from the results page.
type searchResult struct {
	title   string
	url     string
	snippet string
}

// NewSearchTool constructs a SearchTool. endpoint may be empty to use the
// public DuckDuckGo HTML endpoint; maxResults <= 0 uses the default.
func NewSearchTool(endpoint string, maxResults int) *SearchTool {
	if endpoint == "" {
		endpoint = defaultSearchEndpoint
	}
	if maxResults <= 0 {
		maxResults = defaultSearchMaxResults
	}
	return &SearchTool{
		endpoint:   endpoint,
		maxResults: maxResults,
		client:     &http.Client{Timeout: 20 * time.Second},
	}
}

// Name returns the tool name registered with the agent.
func (t *SearchTool) Name() string { return "web_search" }

// Description returns the LLM-facing description of this tool.
func (t *SearchTool) Description() string {
	return "Searches the web and returns the top results as titles, URLs and snippets. " +
		"Use this for questions about current events or facts you are unsure of."
}

// Info returns the Eino tool metadata including the JSON input schema.
func (t *SearchTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: t.Name(),
		Desc: t.Description(),
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {
				Type:     schema.String,
				Desc:     "The search query.",
				Required: true,
			},
		}),
	}, nil
}

// InvokableRun performs the search and formats the top results. Upstream
// failures are returned as descriptive result strings.
func (t *SearchTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	var input searchInput
	if err := json.Unmarshal([]byte(argumentsInJSON), &input); err != nil {
		return "", fmt.Errorf("web_search: invalid input: %w", err)
	}
	if strings.TrimSpace(input.Query) == "" {
		return "", fmt.Errorf("web_search: query is required")
	}

	q := url.Values{}
	q.Set("q", input.Query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("web_search: create request: %w", err)
	}
	req.Header.Set("User-Agent", "sidekick/1.0")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Sprintf("Error performing web search for '%s': %v", input.Query, err), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("Error performing web search for '%s': HTTP %d", input.Query, resp.StatusCode), nil
	}

	results, err := parseSearchResults(resp.Body, t.maxResults)
	if err != nil {
		return fmt.Sprintf("Error performing web search for '%s': %v", input.Query, err), nil
	}
	if len(results) == 0 {
		return fmt.Sprintf("No results found for '%s'.", input.Query), nil
	}

	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%d. %s\n%s", i+1, r.title, r.url)
		if r.snippet != "" {
			b.WriteString("\n")
			b.WriteString(r.snippet)
		}
	}
	return b.String(), nil
}

// parseSearchResults extracts up to max results from a DuckDuckGo HTML
// results page.
func parseSearchResults(body io.Reader, max int) ([]searchResult, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse results page: %w", err)
	}

	var results []searchResult
	doc.Find("div.result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		link := s.Find("a.result__a").First()
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		if title == "" || href == "" {
			return true
		}
		snippet := strings.TrimSpace(s.Find(".result__snippet").First().Text())
		results = append(results, searchResult{
			title:   title,
			url:     resolveResultURL(href),
			snippet: snippet,
		})
		return len(results) < max
	})
	return results, nil
}

// resolveResultURL unwraps DuckDuckGo's redirect links (/l/?uddg=<target>)
// to the underlying target URL.
func resolveResultURL(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "" {
		return "https:" + href
	}
	return href
}
