package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8080).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// ChatTimeout bounds a single /api/chat request from receipt to stream
	// completion. Defaults to 5 minutes if zero.
	ChatTimeout time.Duration
	// Logger is the structured logger used by the server and its handlers.
	// If nil, [logging.New] is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	// If empty, /api/ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on rate-limited
	// endpoints (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// APIKey is the Bearer token required on all protected /api/* routes.
	// If empty, authentication is disabled (development mode).
	APIKey string
	// UploadDir is where POST /api/upload stores PDF documents.
	// Defaults to "uploads" under the working directory.
	UploadDir string
	// StaticDir is the directory served at "/". Defaults to "ui/static".
	StaticDir string
	// MetricsRegistry receives the server's Prometheus metric registrations.
	// Defaults to prometheus.DefaultRegisterer.
	MetricsRegistry prometheus.Registerer
	// MetricsGatherer backs the GET /metrics endpoint.
	// Defaults to prometheus.DefaultGatherer.
	MetricsGatherer prometheus.Gatherer
}

// querier is the interface handleChat calls to stream an agent response.
// *agent.Sidekick satisfies it; tests inject a fake.
type querier interface {
	// Query streams the agent response for userMessage to w, scoped to the
	// given conversation session.
	Query(ctx context.Context, userMessage, session string, w io.Writer) error
}

// Answerer answers a question about a PDF document, always returning a
// human-readable string. The docqa.Pipeline satisfies it.
type Answerer interface {
	Answer(ctx context.Context, path, question string) string
}

// Server is the HTTP server that exposes the agent and the document
// question answering pipeline.
type Server struct {
	// querier handles plain chat queries; the Sidekick agent in production,
	// overridden by a fake in tests.
	querier querier
	// qna answers document questions directly, bypassing the agent loop when
	// the request names a document.
	qna Answerer
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// metrics holds the Prometheus instruments owned by this server.
	metrics *serverMetrics
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
}

// chatRequest is the JSON body for POST /api/chat.
type chatRequest struct {
	// Message is the user's natural language query or document question.
	Message string `json:"message"`
	// DocumentPath names an uploaded PDF. When set together with Message,
	// the request is answered by the document QnA pipeline.
	DocumentPath string `json:"documentPath,omitempty"`
	// Session identifies the conversation for history purposes. Empty means
	// a stateless one-shot query.
	Session string `json:"session,omitempty"`
}

// uploadResponse is the JSON response for POST /api/upload.
type uploadResponse struct {
	// Path is the stored path of the uploaded document, usable as
	// documentPath in subsequent chat requests.
	Path string `json:"path"`
	// Name is the sanitised original filename.
	Name string `json:"name"`
	// Size is the stored size in bytes.
	Size int64 `json:"size"`
}

// documentInfo describes one uploaded document in GET /api/documents.
type documentInfo struct {
	// Path is the stored path, usable as documentPath in chat requests.
	Path string `json:"path"`
	// Name is the document filename.
	Name string `json:"name"`
	// Size is the size in bytes.
	Size int64 `json:"size"`
}

// documentsResponse is the JSON response for GET /api/documents.
type documentsResponse struct {
	// Documents lists the uploaded PDF documents, sorted by name.
	Documents []documentInfo `json:"documents"`
}
