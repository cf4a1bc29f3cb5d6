package backend_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/meetvaani/vaani/internal/backend"
)

func TestPollerNotifiesOnChange(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	changes := make(chan bool, 8)
	client := backend.NewClient(backend.Config{BaseURL: srv.URL})
	poller := backend.NewPoller(client, 20*time.Millisecond, func(up bool) {
		changes <- up
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go poller.Run(ctx)

	waitFor := func(want bool) {
		t.Helper()
		select {
		case got := <-changes:
			if got != want {
				t.Fatalf("expected reachability %v, got %v", want, got)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for reachability %v", want)
		}
	}

	// First probe always reports, even without a change.
	waitFor(true)

	healthy.Store(false)
	waitFor(false)

	healthy.Store(true)
	waitFor(true)
}

func TestPollerSkipsRepeatNotifications(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	var calls atomic.Int32
	client := backend.NewClient(backend.Config{BaseURL: srv.URL})
	poller := backend.NewPoller(client, 10*time.Millisecond, func(bool) {
		calls.Add(1)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	poller.Run(ctx)

	if got := calls.Load(); got != 1 {
		t.Fatalf("expected a single notification for a steady backend, got %d", got)
	}
}
