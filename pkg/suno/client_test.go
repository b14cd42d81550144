package suno_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mixtape-hq/mixtape/pkg/suno"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *suno.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := suno.NewClient("test-key", suno.WithBaseURL(srv.URL+"/"))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClient_RequiresKey(t *testing.T) {
	if _, err := suno.NewClient(""); err == nil {
		t.Error("expected error for empty API key")
	}
}

func TestGenerate_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/generate" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q, want bearer test-key", got)
		}
		w.Write([]byte(`{"id":"c1","status":"submitted"}`))
	})

	clip, err := c.Generate(context.Background(), suno.GenerateRequest{Topic: "rain"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if clip.ID != "c1" || clip.Status != suno.StatusSubmitted {
		t.Errorf("clip = %+v, want id c1 status submitted", clip)
	}
}

func TestClips_EmptyIDsSkipsNetwork(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	clips, err := c.Clips(context.Background(), nil)
	if err != nil {
		t.Fatalf("Clips: %v", err)
	}
	if len(clips) != 0 {
		t.Errorf("clips = %v, want empty", clips)
	}
	if called {
		t.Error("empty id list must not issue a network call")
	}
}

func TestClips_EncodesIDList(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("ids"); got != "a,b" {
			t.Errorf("ids = %q, want %q", got, "a,b")
		}
		w.Write([]byte(`[{"id":"a","status":"complete"},{"id":"b","status":"queued"}]`))
	})

	clips, err := c.Clips(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Clips: %v", err)
	}
	if len(clips) != 2 {
		t.Fatalf("got %d clips, want 2", len(clips))
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"unauthorized", 401, `{"detail":"nope"}`, "invalid API key"},
		{"forbidden", 403, `{}`, "access denied"},
		{"rate_limited", 429, `{}`, "rate limit exceeded, please wait"},
		{"bad_request_detail", 400, `{"detail":"topic too long"}`, "topic too long"},
		{"server_error", 500, "not json", "Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := c.Generate(context.Background(), suno.GenerateRequest{Topic: "x"})
			var apiErr *suno.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("err = %v, want *APIError", err)
			}
			if apiErr.Status != tt.status {
				t.Errorf("status = %d, want %d", apiErr.Status, tt.status)
			}
			if apiErr.Msg != tt.wantMsg {
				t.Errorf("msg = %q, want %q", apiErr.Msg, tt.wantMsg)
			}
		})
	}
}

func TestSeparateStems_NullBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stem" {
			t.Errorf("path = %q, want /stem", r.URL.Path)
		}
		w.Write([]byte(`null`))
	})
	clips, err := c.SeparateStems(context.Background(), "c1")
	if err != nil {
		t.Fatalf("SeparateStems: %v", err)
	}
	if clips == nil || len(clips) != 0 {
		t.Errorf("clips = %#v, want empty non-nil slice", clips)
	}
}

func TestStatusHelpers(t *testing.T) {
	if !suno.StatusStreaming.Succeeded() || !suno.StatusComplete.Succeeded() {
		t.Error("streaming and complete must count as success")
	}
	if suno.StatusError.Succeeded() {
		t.Error("error must not count as success")
	}
	for _, s := range []suno.Status{suno.StatusStreaming, suno.StatusComplete, suno.StatusError} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []suno.Status{suno.StatusSubmitted, suno.StatusQueued} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}
