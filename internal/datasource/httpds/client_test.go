package httpds

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func noWait(context.Context, time.Duration) error { return nil }

func TestGetRetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer x" {
			t.Errorf("Authorization = %q, want Bearer x", got)
		}
		_, _ = io.WriteString(w, "PROPERTY\nfuseki:dataset\n")
	}))
	defer srv.Close()

	c := NewClient(Config{MaxRetries: 2, Header: http.Header{"Authorization": {"Bearer x"}}})
	c.wait = noWait

	body, err := NewSource(c, srv.URL).Open(context.Background())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer body.Close()
	b, _ := io.ReadAll(body)
	if !strings.Contains(string(b), "fuseki:dataset") {
		t.Fatalf("body = %q", b)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("calls = %d, want 3", got)
	}
}

func TestGetGivesUpAfterMaxRetries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(Config{MaxRetries: 1})
	c.wait = noWait
	if _, err := c.Get(context.Background(), srv.URL); err == nil {
		t.Fatalf("Get() error = nil, want non-nil")
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("calls = %d, want 2", got)
	}
}

func TestOpenRejectsNonSuccess(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(Config{MaxRetries: 3})
	c.wait = noWait
	_, err := NewSource(c, srv.URL).Open(context.Background())
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("Open() error = %v, want status 404", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("calls = %d, want 1 (404 is not retried)", got)
	}
}

func TestGetHonorsCanceledContext(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewClient(Config{MaxRetries: 5})
	if _, err := c.Get(ctx, srv.URL); err == nil {
		t.Fatalf("Get() error = nil, want context error")
	}
}

func TestBackoff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		retry int
		want  time.Duration
	}{
		{retry: 0, want: 100 * time.Millisecond},
		{retry: 1, want: 200 * time.Millisecond},
		{retry: 3, want: 800 * time.Millisecond},
		{retry: 10, want: time.Second},
		{retry: 100, want: time.Second},
	}
	for _, tt := range tests {
		if got := backoff(100*time.Millisecond, tt.retry, time.Second); got != tt.want {
			t.Fatalf("backoff(retry=%d) = %v, want %v", tt.retry, got, tt.want)
		}
	}
}

func TestGetEmptyURL(t *testing.T) {
	t.Parallel()
	if _, err := NewClient(Config{}).Get(context.Background(), ""); err == nil {
		t.Fatalf("Get(\"\") error = nil, want non-nil")
	}
}
