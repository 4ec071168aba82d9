package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const searchResultsPage = `<html><body>
<div class="result">
  <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2F">The Go Programming Language</a>
  <a class="result__snippet">Go is an open source programming language.</a>
</div>
<div class="result">
  <a class="result__a" href="https://go.dev/doc/">Documentation</a>
  <a class="result__snippet">Learn how to get started with Go.</a>
</div>
<div class="result">
  <a class="result__a" href="https://go.dev/blog/">The Go Blog</a>
</div>
</body></html>`

func TestSearchToolParsesResults(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "golang" {
			t.Errorf("q = %q", got)
		}
		w.Write([]byte(searchResultsPage))
	}))
	defer srv.Close()

	st := NewSearchTool(srv.URL, 2)
	got, err := st.InvokableRun(context.Background(), `{"query":"golang"}`)
	if err != nil {
		t.Fatalf("InvokableRun: %v", err)
	}
	if !strings.Contains(got, "1. The Go Programming Language") {
		t.Errorf("missing first result: %q", got)
	}
	if !strings.Contains(got, "https://go.dev/") {
		t.Errorf("redirect link not unwrapped: %q", got)
	}
	if !strings.Contains(got, "Go is an open source programming language.") {
		t.Errorf("missing snippet: %q", got)
	}
	if strings.Contains(got, "The Go Blog") {
		t.Errorf("maxResults not honored: %q", got)
	}
}

func TestSearchToolNoResults(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body></body></html>`))
	}))
	defer srv.Close()

	st := NewSearchTool(srv.URL, 5)
	got, err := st.InvokableRun(context.Background(), `{"query":"xyzzy"}`)
	if err != nil {
		t.Fatalf("InvokableRun: %v", err)
	}
	if got != "No results found for 'xyzzy'." {
		t.Errorf("result = %q", got)
	}
}

func TestSearchToolUpstreamErrorIsResultString(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	st := NewSearchTool(srv.URL, 5)
	got, err := st.InvokableRun(context.Background(), `{"query":"golang"}`)
	if err != nil {
		t.Fatalf("upstream failure must not be a tool error: %v", err)
	}
	if !strings.HasPrefix(got, "Error performing web search for 'golang':") {
		t.Errorf("result = %q", got)
	}
}

func TestResolveResultURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		href string
		want string
	}{
		{"//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2F", "https://go.dev/"},
		{"https://example.com/page", "https://example.com/page"},
		{"//example.com/page", "https://example.com/page"},
	}
	for _, tt := range tests {
		if got := resolveResultURL(tt.href); got != tt.want {
			t.Errorf("resolveResultURL(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}
