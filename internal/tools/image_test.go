package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func TestImageToolSavesPNG(t *testing.T) {
	t.Parallel()

	fakePNG := []byte("\x89PNG\r\n\x1a\nfake-image-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/black-forest-labs/FLUX.1-dev" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer hf-token" {
			t.Errorf("Authorization = %q", got)
		}
		w.Write(fakePNG)
	}))
	defer srv.Close()

	it := NewImageTool(&ImageConfig{
		Token:     "hf-token",
		Model:     "black-forest-labs/FLUX.1-dev",
		Endpoint:  srv.URL,
		OutputDir: t.TempDir(),
	})

	path, err := it.InvokableRun(context.Background(), `{"prompt":"a lighthouse at dusk"}`)
	if err != nil {
		t.Fatalf("InvokableRun: %v", err)
	}
	if !strings.HasSuffix(path, ".png") {
		t.Errorf("path = %q, want .png suffix", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved image: %v", err)
	}
	if string(data) != string(fakePNG) {
		t.Error("saved bytes differ from response bytes")
	}
}

func TestImageToolUpstreamErrorIsResultString(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"model is loading"}`))
	}))
	defer srv.Close()

	it := NewImageTool(&ImageConfig{Model: "m", Endpoint: srv.URL, OutputDir: t.TempDir()})
	got, err := it.InvokableRun(context.Background(), `{"prompt":"anything"}`)
	if err != nil {
		t.Fatalf("upstream failure must not be a tool error: %v", err)
	}
	if !strings.HasPrefix(got, "Error generating image:") {
		t.Errorf("result = %q", got)
	}
}

func TestImageToolRequiresPrompt(t *testing.T) {
	t.Parallel()

	it := NewImageTool(&ImageConfig{Model: "m", OutputDir: t.TempDir()})
	if _, err := it.InvokableRun(context.Background(), `{"prompt":"  "}`); err == nil {
		t.Fatal("expected error for blank prompt")
	}
}
