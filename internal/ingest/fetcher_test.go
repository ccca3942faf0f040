package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetchCSV(t *testing.T) {
	const body = "theme,score,count\nAI agents,8.4,5\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "trendlens/") {
			t.Errorf("User-Agent = %q", ua)
		}
		w.Write([]byte(body))
	}))
	defer srv.Close()

	f := NewFetcher(5 * time.Second)
	got, err := f.FetchCSV(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchCSV failed: %v", err)
	}
	if string(got) != body {
		t.Errorf("body = %q, want %q", got, body)
	}
}

func TestFetchCSVHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher(5 * time.Second)
	if _, err := f.FetchCSV(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestFetchCSVCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("unreachable"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewFetcher(5 * time.Second)
	if _, err := f.FetchCSV(ctx, srv.URL); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
