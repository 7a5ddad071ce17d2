// Package webhook exposes the inbound HTTP surface: a single endpoint
// receiving transaction batch payloads plus a health probe. Payloads are
// acknowledged as soon as the body is read; processing happens
// asynchronously and its outcome is never visible to the caller.
package webhook

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gabapcia/cexwatch/internal/batchproc"
	"github.com/gabapcia/cexwatch/internal/pkg/logger"
)

const (
	defaultMaxBodyBytes = 4 << 20 // 4 MiB
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 10 * time.Second
)

// Enqueuer is the slice of the processing pipeline the server depends
// on: handing a raw payload over for asynchronous processing.
type Enqueuer interface {
	// Enqueue accepts one raw payload. Returns batchproc.ErrQueueFull
	// when the pipeline has no capacity left.
	Enqueue(ctx context.Context, payload []byte) error
}

// Server is the webhook HTTP listener.
type Server struct {
	srv          *http.Server
	enqueuer     Enqueuer
	maxBodyBytes int64
}

// Option configures optional server behavior.
type Option func(*Server)

// WithMaxBodyBytes caps the accepted request body size. Oversized
// payloads are rejected with 413.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithReadTimeout sets the server's read timeout.
func WithReadTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.srv.ReadTimeout = d
	}
}

// WithWriteTimeout sets the server's write timeout.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.srv.WriteTimeout = d
	}
}

// New creates a webhook server listening on addr and feeding payloads to
// the given enqueuer.
func New(addr string, enqueuer Enqueuer, opts ...Option) *Server {
	server := &Server{
		srv: &http.Server{
			Addr:         addr,
			ReadTimeout:  defaultReadTimeout,
			WriteTimeout: defaultWriteTimeout,
		},
		enqueuer:     enqueuer,
		maxBodyBytes: defaultMaxBodyBytes,
	}

	for _, opt := range opts {
		opt(server)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", server.handleHealth)
	mux.HandleFunc("POST /webhook", server.handleWebhook)
	server.srv.Handler = mux

	return server
}

// Start begins serving in a background goroutine. Listener failures
// other than a clean shutdown are logged.
func (s *Server) Start(ctx context.Context) {
	go func() {
		logger.Info(ctx, "webhook server listening", "addr", s.srv.Addr)

		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "webhook server terminated unexpectedly", "error", err)
		}
	}()
}

// Shutdown gracefully stops the server, waiting for in-flight requests
// up to the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Handler exposes the server's HTTP handler, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// handleHealth answers liveness probes.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// handleWebhook reads the raw payload and hands it to the pipeline.
//
// The body is read shape-agnostically: no parsing or validation happens
// here, so senders are acknowledged before any processing and never
// observe processing errors. The only failure modes visible to the
// caller are an unreadable or oversized body and a full queue.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
			return
		}

		http.Error(w, "unreadable body", http.StatusBadRequest)
		return
	}

	if err := s.enqueuer.Enqueue(r.Context(), body); err != nil {
		if errors.Is(err, batchproc.ErrQueueFull) {
			logger.Warn(r.Context(), "rejecting payload, batch queue full")
			http.Error(w, "queue full", http.StatusServiceUnavailable)
			return
		}

		logger.Error(r.Context(), "error enqueueing payload", "error", err)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
}
