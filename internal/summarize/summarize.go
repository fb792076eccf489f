// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize turns extracted paper text into a short summary by
// calling a local Ollama chat endpoint. Failures degrade to literal summary
// strings so the triage pipeline always has a usable value.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/paper-triage/internal/httputil"
)

// summaryPrompt instructs the model on what a triage summary looks like.
const summaryPrompt = "Summarize this academic paper in 1-2 concise lines: clearly describe the problem, " +
	"method/approach, dataset or domain context, and key findings or implications. " +
	"Highlight anything notable about limitations or future work if space allows."

// systemPrompt keeps the model terse.
const systemPrompt = "You help researchers triage papers. Keep answers terse and factual."

// Degraded summary values returned instead of errors.
const (
	NoTextSummary     = "No extractable text found in the PDF."
	CallFailedSummary = "Ollama call failed. Check local model/runtime."
	EmptyReplySummary = "(no response)"
)

// Summarizer produces a one-to-two line summary of extracted paper text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) string
}

// OllamaClient calls the Ollama /api/chat endpoint with a fixed model and
// low temperature.
type OllamaClient struct {
	Host   string
	Model  string
	Client *http.Client

	// Warnings receives a line per failed call; nil discards them.
	Warnings io.Writer
}

// NewOllamaClient validates the endpoint configuration. An empty host or
// model is a local configuration failure.
func NewOllamaClient(host, model string) (*OllamaClient, error) {
	if host == "" {
		return nil, fmt.Errorf("ollama host not configured")
	}
	if model == "" {
		return nil, fmt.Errorf("summarization model not configured")
	}
	return &OllamaClient{
		Host:   strings.TrimRight(host, "/"),
		Model:  model,
		Client: &http.Client{Timeout: 2 * time.Minute},
	}, nil
}

// chatRequest is the request body for the Ollama chat API.
type chatRequest struct {
	Model    string        `json:"model"`
	Stream   bool          `json:"stream"`
	Options  chatOptions   `json:"options"`
	Messages []chatMessage `json:"messages"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the non-streaming response body from the Ollama chat API.
type chatResponse struct {
	Message chatMessage `json:"message"`
}

// Summarize sends the text to the model and returns the reply. Empty input
// short-circuits without a network call; any transport, status, or decode
// failure is logged and returns CallFailedSummary.
func (c *OllamaClient) Summarize(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return NoTextSummary
	}

	reqBody := chatRequest{
		Model:   c.Model,
		Stream:  false,
		Options: chatOptions{Temperature: 0.2},
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: summaryPrompt + "\n\n" + text},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return c.fail(fmt.Errorf("marshaling request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Host+"/api/chat", bytes.NewReader(bodyBytes))
	if err != nil {
		return c.fail(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return c.fail(fmt.Errorf("calling Ollama: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return c.fail(fmt.Errorf("Ollama returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var cResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return c.fail(fmt.Errorf("decoding Ollama response: %w", err))
	}

	content := strings.TrimSpace(cResp.Message.Content)
	if content == "" {
		return EmptyReplySummary
	}
	return content
}

func (c *OllamaClient) fail(err error) string {
	if c.Warnings != nil {
		fmt.Fprintf(c.Warnings, "Warning: %v\n", err)
	}
	return CallFailedSummary
}
