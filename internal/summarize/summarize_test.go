// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pdiddy/paper-triage/internal/httputil"
)

func init() {
	// Keep 429 backoff out of test wall time.
	httputil.RetryBaseDelay = 1 * time.Millisecond
}

func newClient(t *testing.T, ts *httptest.Server) *OllamaClient {
	t.Helper()
	c, err := NewOllamaClient(ts.URL, "llama3.2:latest")
	if err != nil {
		t.Fatal(err)
	}
	c.Client = ts.Client()
	return c
}

func TestNewOllamaClient_Validation(t *testing.T) {
	if _, err := NewOllamaClient("", "llama3.2:latest"); err == nil {
		t.Error("empty host accepted")
	}
	if _, err := NewOllamaClient("http://localhost:11434", ""); err == nil {
		t.Error("empty model accepted")
	}
}

func TestSummarize_Success(t *testing.T) {
	var gotReq chatRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %q, want /api/chat", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatal(err)
		}
		json.NewEncoder(w).Encode(chatResponse{Message: chatMessage{Role: "assistant", Content: "  A tidy summary.  "}})
	}))
	defer ts.Close()

	got := newClient(t, ts).Summarize(context.Background(), "paper text")
	if got != "A tidy summary." {
		t.Errorf("summary = %q, want trimmed model reply", got)
	}
	if gotReq.Model != "llama3.2:latest" {
		t.Errorf("request model = %q", gotReq.Model)
	}
	if gotReq.Stream {
		t.Error("request asked for streaming")
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" {
		t.Errorf("messages = %+v, want system then user", gotReq.Messages)
	}
	if !strings.Contains(gotReq.Messages[1].Content, "paper text") {
		t.Error("user message missing extracted text")
	}
}

func TestSummarize_EmptyTextSkipsNetwork(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer ts.Close()

	got := newClient(t, ts).Summarize(context.Background(), "   \n\t ")
	if got != NoTextSummary {
		t.Errorf("summary = %q, want %q", got, NoTextSummary)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Error("empty text still hit the network")
	}
}

func TestSummarize_FailuresDegrade(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "model not loaded", http.StatusInternalServerError)
			},
		},
		{
			name: "garbage body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte("not json"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			c := newClient(t, ts)
			var warnings bytes.Buffer
			c.Warnings = &warnings

			if got := c.Summarize(context.Background(), "text"); got != CallFailedSummary {
				t.Errorf("summary = %q, want %q", got, CallFailedSummary)
			}
			if !strings.Contains(warnings.String(), "Warning:") {
				t.Errorf("no warning logged: %q", warnings.String())
			}
		})
	}
}

func TestSummarize_RetriesRateLimit(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(chatResponse{Message: chatMessage{Content: "done"}})
	}))
	defer ts.Close()

	if got := newClient(t, ts).Summarize(context.Background(), "text"); got != "done" {
		t.Errorf("summary = %q, want %q after retry", got, "done")
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("calls = %d, want 2", atomic.LoadInt32(&calls))
	}
}

func TestSummarize_EmptyReply(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(chatResponse{Message: chatMessage{Content: "  "}})
	}))
	defer ts.Close()

	if got := newClient(t, ts).Summarize(context.Background(), "text"); got != EmptyReplySummary {
		t.Errorf("summary = %q, want %q", got, EmptyReplySummary)
	}
}
