package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestStreamAwareTimeoutSetsDeadlineForRegularRequests(t *testing.T) {
	var hasDeadline bool
	handler := streamAwareTimeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/notifications", nil))

	if !hasDeadline {
		t.Fatal("regular requests must carry the request deadline")
	}
}

func TestStreamAwareTimeoutLeavesEventStreamsOpen(t *testing.T) {
	var hasDeadline bool
	handler := streamAwareTimeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
	}))

	req := httptest.NewRequest(http.MethodGet, "/notifications/stream", nil)
	req.Header.Set("Accept", "text/event-stream")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if hasDeadline {
		t.Fatal("event-stream requests must not be cut by the request timeout")
	}
}
