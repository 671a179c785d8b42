package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func testClient() *Client {
	cfg := DefaultConfig()
	cfg.RetryBackoff = time.Millisecond
	cfg.MaxRetries = 2
	return NewClient(cfg)
}

func TestClient_Fetch(t *testing.T) {
	var userAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write([]byte("items: []\n"))
	}))
	defer srv.Close()

	body, contentType, err := testClient().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(body) != "items: []\n" {
		t.Errorf("Fetch() body = %q", body)
	}
	if contentType != "application/yaml" {
		t.Errorf("Fetch() content type = %q", contentType)
	}
	if userAgent != "content-feed/1.0" {
		t.Errorf("User-Agent = %q", userAgent)
	}
}

func TestClient_RetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, _, err := testClient().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(body) != "ok" || calls.Load() != 3 {
		t.Errorf("Fetch() = %q after %d calls, want ok after 3", body, calls.Load())
	}
}

func TestClient_Fetch_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		maxBody int64
		wantErr error
	}{
		{
			name:    "not found is not retried",
			handler: func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) },
			wantErr: ErrUnexpectedStatus,
		},
		{
			name:    "retries exhausted",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) },
			wantErr: ErrUnexpectedStatus,
		},
		{
			name:    "body too large",
			handler: func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(strings.Repeat("x", 64))) },
			maxBody: 16,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client := testClient()
			if tt.maxBody > 0 {
				client.config.MaxBodySize = tt.maxBody
			}

			_, _, err := client.Fetch(context.Background(), srv.URL)
			if err == nil {
				t.Fatal("Fetch() expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Fetch() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestClient_Get_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.RetryBackoff = time.Hour
	client := NewClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := client.Get(ctx, srv.URL); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Get() error = %v, want deadline exceeded", err)
	}
}

func TestIsRetryableStatusCode(t *testing.T) {
	for code, want := range map[int]bool{
		http.StatusOK:                  false,
		http.StatusNotFound:            false,
		http.StatusTooManyRequests:     true,
		http.StatusInternalServerError: true,
		http.StatusServiceUnavailable:  true,
	} {
		if got := IsRetryableStatusCode(code); got != want {
			t.Errorf("IsRetryableStatusCode(%d) = %v, want %v", code, got, want)
		}
	}
}
