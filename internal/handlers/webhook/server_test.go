package webhook

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gabapcia/cexwatch/internal/batchproc"
	"github.com/gabapcia/cexwatch/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Initialize logger for tests to prevent nil pointer dereference
	_ = logger.Init("error")
}

type enqueuerStub struct {
	payloads [][]byte
	err      error
}

func (s *enqueuerStub) Enqueue(_ context.Context, payload []byte) error {
	if s.err != nil {
		return s.err
	}
	s.payloads = append(s.payloads, payload)
	return nil
}

func TestHandleWebhook(t *testing.T) {
	t.Run("acknowledges and enqueues the raw body", func(t *testing.T) {
		enqueuer := &enqueuerStub{}
		server := New(":0", enqueuer)

		payload := `{"whaleTransactions": []}`
		req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(payload))
		rec := httptest.NewRecorder()

		server.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, enqueuer.payloads, 1)
		assert.Equal(t, payload, string(enqueuer.payloads[0]))
	})

	t.Run("accepts payloads it cannot parse", func(t *testing.T) {
		// The server is shape-agnostic: malformed JSON is still handed to
		// the pipeline, which drops it asynchronously.
		enqueuer := &enqueuerStub{}
		server := New(":0", enqueuer)

		req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("not json"))
		rec := httptest.NewRecorder()

		server.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, enqueuer.payloads, 1)
	})

	t.Run("full queue maps to 503", func(t *testing.T) {
		enqueuer := &enqueuerStub{err: batchproc.ErrQueueFull}
		server := New(":0", enqueuer)

		req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{}"))
		rec := httptest.NewRecorder()

		server.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("stopped pipeline maps to 503", func(t *testing.T) {
		enqueuer := &enqueuerStub{err: batchproc.ErrServiceNotStarted}
		server := New(":0", enqueuer)

		req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{}"))
		rec := httptest.NewRecorder()

		server.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("oversized body maps to 413", func(t *testing.T) {
		enqueuer := &enqueuerStub{}
		server := New(":0", enqueuer, WithMaxBodyBytes(16))

		req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(make([]byte, 64)))
		rec := httptest.NewRecorder()

		server.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Empty(t, enqueuer.payloads)
	})

	t.Run("GET on the webhook path is not allowed", func(t *testing.T) {
		server := New(":0", &enqueuerStub{})

		req := httptest.NewRequest(http.MethodGet, "/webhook", nil)
		rec := httptest.NewRecorder()

		server.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestHandleHealth(t *testing.T) {
	t.Run("health probe reports ok", func(t *testing.T) {
		server := New(":0", &enqueuerStub{})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		server.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})
}
