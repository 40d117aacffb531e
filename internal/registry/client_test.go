package registry

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testClient(baseURL string) *Client {
	return NewClient(ClientConfig{
		BaseURL:      baseURL,
		RequestDelay: time.Millisecond,
		Timeout:      2 * time.Second,
	}, testLogger())
}

func TestProjectIDFromURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{
			name: "cdn download url",
			url:  "https://cdn.modrinth.com/data/AANobbMI/versions/whTW9mbI/sodium-fabric-0.5.8.jar",
			want: "AANobbMI",
		},
		{
			name: "marker in the middle of a longer path",
			url:  "https://example.com/files/data/P7dR8mSH/fabric-api.jar",
			want: "P7dR8mSH",
		},
		{
			name:    "empty url",
			url:     "",
			wantErr: true,
		},
		{
			name:    "no marker segment",
			url:     "https://example.com/downloads/AANobbMI/mod.jar",
			wantErr: true,
		},
		{
			name:    "marker is the last segment",
			url:     "https://cdn.modrinth.com/data",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ProjectIDFromURL(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got project id %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ProjectIDFromURL(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestClassifySuccess(t *testing.T) {
	var gotUserAgent, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		if !strings.HasPrefix(r.URL.Path, "/project/") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"client_side":"required","server_side":"required"}`)
	}))
	defer server.Close()

	client := testClient(server.URL)
	side := client.Classify(context.Background(), "https://cdn.modrinth.com/data/AANobbMI/versions/x/sodium.jar")

	if side != SideBoth {
		t.Errorf("expected %q, got %q", SideBoth, side)
	}
	if gotUserAgent != DefaultUserAgent {
		t.Errorf("expected User-Agent %q, got %q", DefaultUserAgent, gotUserAgent)
	}
	if gotAccept != "application/json" {
		t.Errorf("expected Accept application/json, got %q", gotAccept)
	}

	stats := client.Stats()
	if stats.Calls != 1 {
		t.Errorf("expected 1 recorded call, got %d", stats.Calls)
	}
	if stats.Failures != 0 {
		t.Errorf("expected no failures, got %d", stats.Failures)
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"client_side":"required","server_side":"unsupported"}`)
	}))
	defer server.Close()

	client := testClient(server.URL)
	url := "https://cdn.modrinth.com/data/AANobbMI/versions/x/sodium.jar"

	first := client.Classify(context.Background(), url)
	second := client.Classify(context.Background(), url)

	if first != second {
		t.Errorf("classification not stable: first %q, second %q", first, second)
	}
	if first != SideClient {
		t.Errorf("expected %q, got %q", SideClient, first)
	}
}

func TestClassifySoftFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		url     string
		kind    FailureKind
	}{
		{
			name: "non-success status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			url:  "https://cdn.modrinth.com/data/gone/versions/x/mod.jar",
			kind: FailureStatus,
		},
		{
			name: "undecodable body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, "not json at all")
			},
			url:  "https://cdn.modrinth.com/data/bad/versions/x/mod.jar",
			kind: FailureDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := testClient(server.URL)
			side := client.Classify(context.Background(), tt.url)

			if side != SideUnknown {
				t.Errorf("expected %q, got %q", SideUnknown, side)
			}
			stats := client.Stats()
			if stats.ByFailure[tt.kind] != 1 {
				t.Errorf("expected one %s failure, got %+v", tt.kind, stats.ByFailure)
			}
		})
	}
}

func TestClassifyNoProjectIDSkipsHTTP(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"client_side":"required","server_side":"required"}`)
	}))
	defer server.Close()

	client := testClient(server.URL)
	side := client.Classify(context.Background(), "https://example.com/no/marker/here.jar")

	if side != SideUnknown {
		t.Errorf("expected %q, got %q", SideUnknown, side)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no HTTP calls, got %d", calls.Load())
	}
	stats := client.Stats()
	if stats.ByFailure[FailureNoProjectID] != 1 {
		t.Errorf("expected one no_project_id failure, got %+v", stats.ByFailure)
	}
}

func TestClassifyTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // Connections to the closed listener now fail.

	client := testClient(server.URL)
	side := client.Classify(context.Background(), "https://cdn.modrinth.com/data/AANobbMI/versions/x/mod.jar")

	if side != SideUnknown {
		t.Errorf("expected %q, got %q", SideUnknown, side)
	}
	stats := client.Stats()
	if stats.ByFailure[FailureNetwork] != 1 {
		t.Errorf("expected one network failure, got %+v", stats.ByFailure)
	}
}

func TestClassifyMissingFieldsFallBackToUnknownPair(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	client := testClient(server.URL)
	side := client.Classify(context.Background(), "https://cdn.modrinth.com/data/AANobbMI/versions/x/mod.jar")

	want := Side("Client: unknown, Server: unknown")
	if side != want {
		t.Errorf("expected %q, got %q", want, side)
	}
}

func TestClassifyCancelledContext(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := testClient(server.URL)
	side := client.Classify(ctx, "https://cdn.modrinth.com/data/AANobbMI/versions/x/mod.jar")

	if side != SideUnknown {
		t.Errorf("expected %q, got %q", SideUnknown, side)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no HTTP calls after cancellation, got %d", calls.Load())
	}
}

func TestPauseYieldsOnCancelledContext(t *testing.T) {
	client := NewClient(ClientConfig{RequestDelay: 5 * time.Second}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	client.pause(ctx)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("pause did not yield on cancelled context, took %v", elapsed)
	}
}
