package coubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"gyre/internal/services"
)

func TestMetadataDecodesPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/coubs/abc123" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		fmt.Fprint(w, `{
			"title": "A coub",
			"created_at": "2020-01-02T03:04:05",
			"channel": {"title": "someone"},
			"communities": [{"permalink": "animals-pets"}],
			"tags": [{"title": "cat"}, {"title": "dog"}],
			"file_versions": {
				"html5": {
					"video": {"med": {"url": "http://v/med.mp4", "size": 100}},
					"audio": {"med": {"url": "http://a/med.mp3", "size": 50}}
				}
			}
		}`)
	}))
	defer server.Close()

	client := New(WithBaseURL(server.URL), WithRetries(0))
	payload, err := client.Metadata(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if payload.Title != "A coub" {
		t.Fatalf("unexpected title %q", payload.Title)
	}
	if payload.CommunityName() != "animals-pets" {
		t.Fatalf("unexpected community %q", payload.CommunityName())
	}
	if got := payload.TagTitles(); len(got) != 2 || got[0] != "cat" {
		t.Fatalf("unexpected tags %v", got)
	}
	if !payload.FileVersions.HTML5.Video["med"].Present() {
		t.Fatal("med video should be present")
	}
}

func TestMetadataRetriesMalformedBody(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			fmt.Fprint(w, `{"title": "broken`)
			return
		}
		fmt.Fprint(w, `{"title": "ok"}`)
	}))
	defer server.Close()

	client := New(WithBaseURL(server.URL), WithRetries(5))
	payload, err := client.Metadata(context.Background(), "xyz")
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if payload.Title != "ok" {
		t.Fatalf("unexpected title %q", payload.Title)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestMetadataExhaustedRetriesReportsUnavailable(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(WithBaseURL(server.URL), WithRetries(2))
	_, err := client.Metadata(context.Background(), "xyz")
	if !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected unavailable after exhausted retries, got %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected initial attempt plus 2 retries, got %d", got)
	}
}

func TestMetadataZeroRetriesSingleAttempt(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(WithBaseURL(server.URL), WithRetries(0))
	if _, err := client.Metadata(context.Background(), "xyz"); err == nil {
		t.Fatal("expected error")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected exactly one attempt, got %d", got)
	}
}

func TestWithRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := withRetry(ctx, -1, func(error) bool { return true }, func() error {
		calls++
		if calls == 2 {
			cancel()
		}
		return services.ErrTransient
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected retry loop to stop after cancel, got %d calls", calls)
	}
}

func TestCanonicalURL(t *testing.T) {
	if got := CanonicalURL("abc123"); got != "https://coub.com/view/abc123" {
		t.Fatalf("unexpected canonical url %q", got)
	}
}

func TestSharePresent(t *testing.T) {
	cases := []struct {
		value string
		want  bool
	}{
		{"http://share/video.mp4", true},
		{"", false},
		{"{}", false},
	}
	for _, tc := range cases {
		if got := (ShareVersion{Default: tc.value}).Present(); got != tc.want {
			t.Fatalf("Present(%q) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestStreamEntryPresent(t *testing.T) {
	size := func(n int64) *int64 { return &n }
	cases := []struct {
		entry StreamEntry
		want  bool
	}{
		{StreamEntry{URL: "u", Size: size(10)}, true},
		{StreamEntry{URL: "u", Size: size(0)}, false},
		{StreamEntry{URL: "u"}, false},
		{StreamEntry{Size: size(10)}, false},
	}
	for i, tc := range cases {
		if got := tc.entry.Present(); got != tc.want {
			t.Fatalf("case %d: Present = %v, want %v", i, got, tc.want)
		}
	}
}
