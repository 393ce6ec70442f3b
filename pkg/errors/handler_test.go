package errors

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecoverMiddlewareKeepsRunning(t *testing.T) {
	h := NewErrorHandler("")
	prev := handler
	handler = h
	defer func() { handler = prev }()

	func() {
		defer RecoverMiddleware()()
		panic("handler exploded")
	}()

	assert.Equal(t, int64(1), h.Count())
}

func TestBurstAlertsOncePerWindow(t *testing.T) {
	var reports atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		reports.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	now := time.Unix(1_700_000_000, 0)
	h := NewErrorHandler(srv.URL)
	h.maxErrors = 3
	h.now = func() time.Time { return now }

	for i := 0; i < 10; i++ {
		h.IncrementError()
	}
	assert.Equal(t, int32(1), reports.Load())

	now = now.Add(10 * time.Second)
	for i := 0; i < 4; i++ {
		h.IncrementError()
	}
	assert.Equal(t, int32(2), reports.Load())
	assert.Equal(t, int64(14), h.Count())
}

func TestReportWithoutWebhook(t *testing.T) {
	h := NewErrorHandler("")
	h.Report(ReportErrorOptions{Error: "x", Message: "y"})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcdef", 2))
}
