package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ---------------------------------------------------------------------------
// Fakes for chat handler tests
// ---------------------------------------------------------------------------

// fakeQuerier implements the querier interface for tests.
// It writes a fixed response to the writer and returns configurable values.
type fakeQuerier struct {
	// response is written verbatim to the writer on each Query call.
	response string
	// err is returned as the error value.
	err error
	// gotMessage and gotSession record the last call's arguments.
	gotMessage string
	gotSession string
	// calls counts Query invocations.
	calls int
}

func (f *fakeQuerier) Query(_ context.Context, userMessage, session string, w io.Writer) error {
	f.calls++
	f.gotMessage = userMessage
	f.gotSession = session
	if f.err != nil {
		return f.err
	}
	_, _ = fmt.Fprint(w, f.response)
	return nil
}

// fakeQnA implements the Answerer interface for tests.
type fakeQnA struct {
	result      string
	gotPath     string
	gotQuestion string
	calls       int
}

func (f *fakeQnA) Answer(_ context.Context, path, question string) string {
	f.calls++
	f.gotPath = path
	f.gotQuestion = question
	return f.result
}

// newChatTestServer builds a *Server wired with the given fakes.
func newChatTestServer(q querier, qna Answerer) *Server {
	return &Server{
		querier: q,
		qna:     qna,
		cfg:     &Config{Port: 8080, ChatTimeout: time.Minute},
		log:     slog.Default(),
		metrics: newServerMetrics(prometheus.NewRegistry()),
	}
}

func postChat(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.handleChat(w, req)
	return w
}

// ---------------------------------------------------------------------------
// POST /api/chat — validation error paths
// ---------------------------------------------------------------------------

func TestHandleChat_MissingMessageAndDocument(t *testing.T) {
	t.Parallel()

	s := newChatTestServer(nil, nil)
	w := postChat(t, s, `{"session":"s1"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHandleChat_InvalidJSON(t *testing.T) {
	t.Parallel()

	s := newChatTestServer(nil, nil)
	w := postChat(t, s, `not-json`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHandleChat_DocumentWithoutQnAConfigured(t *testing.T) {
	t.Parallel()

	s := newChatTestServer(&fakeQuerier{}, nil)
	w := postChat(t, s, `{"message":"q","documentPath":"uploads/a.pdf"}`)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

// ---------------------------------------------------------------------------
// POST /api/chat — dispatch
// ---------------------------------------------------------------------------

// TestHandleChat_MessageOnlyGoesToAgent verifies a plain question is routed
// to the agent loop and produces an SSE stream with a "done" event.
// httptest.ResponseRecorder implements http.Flusher so the handler's flusher
// check passes without a real connection.
func TestHandleChat_MessageOnlyGoesToAgent(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{response: "The capital of Germany is Berlin."}
	qna := &fakeQnA{}
	s := newChatTestServer(q, qna)

	w := postChat(t, s, `{"message":"capital of Germany?","session":"s1"}`)

	body := w.Body.String()
	if !strings.Contains(body, "data: The capital of Germany is Berlin.") {
		t.Errorf("expected agent response in body, got: %s", body)
	}
	if !strings.Contains(body, "event: done") {
		t.Errorf("expected SSE done event in body, got: %s", body)
	}
	if !strings.Contains(body, "[DONE]") {
		t.Errorf("expected [DONE] sentinel in body, got: %s", body)
	}
	if q.gotSession != "s1" {
		t.Errorf("session = %q, want s1", q.gotSession)
	}
	if qna.calls != 0 {
		t.Errorf("QnA pipeline called %d times for a plain message", qna.calls)
	}
}

// TestHandleChat_DocumentAndMessageGoesToQnA verifies a request with both a
// document and a question bypasses the agent loop entirely.
func TestHandleChat_DocumentAndMessageGoesToQnA(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{}
	qna := &fakeQnA{result: "Answer: Berlin"}
	s := newChatTestServer(q, qna)

	w := postChat(t, s, `{"message":"capital of Germany?","documentPath":"uploads/geo.pdf"}`)

	body := w.Body.String()
	if !strings.Contains(body, "data: Answer: Berlin") {
		t.Errorf("expected QnA answer in body, got: %s", body)
	}
	if qna.gotPath != "uploads/geo.pdf" {
		t.Errorf("path = %q", qna.gotPath)
	}
	if qna.gotQuestion != "capital of Germany?" {
		t.Errorf("question = %q", qna.gotQuestion)
	}
	if q.calls != 0 {
		t.Errorf("agent called %d times for a document request", q.calls)
	}
}

// TestHandleChat_DocumentOnlyGetsInstruction verifies a document without a
// question produces the instructional message, not a QnA or agent call.
func TestHandleChat_DocumentOnlyGetsInstruction(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{}
	qna := &fakeQnA{}
	s := newChatTestServer(q, qna)

	w := postChat(t, s, `{"documentPath":"uploads/geo.pdf"}`)

	body := w.Body.String()
	if !strings.Contains(body, noQuestionMessage) {
		t.Errorf("expected instructional message in body, got: %s", body)
	}
	if qna.calls != 0 || q.calls != 0 {
		t.Errorf("no backend should be called: qna=%d agent=%d", qna.calls, q.calls)
	}
}

// TestHandleChat_AgentError verifies that when the querier returns an error,
// the SSE stream includes an "error" event and the response is still 200
// (SSE errors are delivered in-band, not via HTTP status).
func TestHandleChat_AgentError(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{err: fmt.Errorf("LLM unavailable")}
	s := newChatTestServer(q, &fakeQnA{})

	w := postChat(t, s, `{"message":"hello"}`)

	body := w.Body.String()
	if !strings.Contains(body, "event: error") {
		t.Errorf("expected error event in body, got: %s", body)
	}
	if !strings.Contains(body, "LLM unavailable") {
		t.Errorf("expected error message in body, got: %s", body)
	}
}

func TestSSEWriterMultiline(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	sw := &sseWriter{w: rec, flusher: rec}

	if _, err := sw.Write([]byte("line one\nline two\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "data: line one\ndata: line two\n\n"
	if got := rec.Body.String(); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}
