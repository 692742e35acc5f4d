package openrouter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kestrelai/kestrel-llm-go"
)

func TestNewProvider_RequiresKey(t *testing.T) {
	if _, err := NewProvider(""); !errors.Is(err, llmstream.ErrInvalidAPIKey) {
		t.Errorf("err = %v, want ErrInvalidAPIKey", err)
	}
}

func TestSupportsModel(t *testing.T) {
	p, err := NewProvider("test-key")
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	for model, want := range map[string]bool{
		"anthropic/claude-sonnet-4": true,
		"openai/gpt-4o":             true,
		"gpt-4o":                    false,
		"":                          false,
	} {
		if got := p.SupportsModel(model); got != want {
			t.Errorf("SupportsModel(%q) = %v, want %v", model, got, want)
		}
	}
}

func TestStreamResponse_EndToEnd(t *testing.T) {
	chunks := []string{
		`{"id":"gen-1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"reasoning_content":"pondering "}}]}`,
		`{"id":"gen-1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"reasoning_content":"deeply"}}]}`,
		`{"id":"gen-1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":"The answer "}}]}`,
		`{"id":"gen-1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":"is 42."}}]}`,
		`{"id":"gen-1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"id":"call_1","type":"function","function":{"name":"lookup","arguments":"{\"q\":"}}]}}]}`,
		`{"id":"gen-1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":"\"go\"}"}}]}}]}`,
		`{"id":"gen-1","object":"chat.completion.chunk","choices":[],"usage":{"prompt_tokens":7,"completion_tokens":21,"prompt_tokens_details":{"cached_tokens":3}}}`,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, chunk := range chunks {
			fmt.Fprintf(w, "data: %s\n\n", chunk)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	ledger := llmstream.NewMemoryLedger()
	p, err := NewProvider("test-key", WithBaseURL(srv.URL), WithLedger(ledger))
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}

	events, err := p.StreamResponse(context.Background(), &llmstream.GenerateRequest{
		Model: "openai/gpt-4o",
		Messages: []llmstream.Message{
			{Role: "user", Blocks: []*llmstream.Block{llmstream.NewTextBlock("question")}},
		},
	})
	if err != nil {
		t.Fatalf("StreamResponse: %v", err)
	}

	resp := llmstream.CollectStream(context.Background(), events)
	if resp.Err != nil {
		t.Fatalf("stream error: %v", resp.Err)
	}
	if resp.Content != "The answer is 42." {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.ThinkingContent != "pondering deeply" {
		t.Errorf("ThinkingContent = %q", resp.ThinkingContent)
	}
	if len(resp.ToolCalls) != 1 {
		t.Fatalf("ToolCalls = %d, want 1", len(resp.ToolCalls))
	}
	tc := resp.ToolCalls[0]
	if tc.CallID != "call_1" || tc.Name != "lookup" || tc.Arguments != `{"q":"go"}` {
		t.Errorf("tool call = %+v", tc)
	}

	records := ledger.Records()
	if len(records) != 1 {
		t.Fatalf("ledger records = %d, want 1", len(records))
	}
	if records[0].InputTokens != 7 || records[0].OutputTokens != 21 || records[0].CachedTokens != 3 {
		t.Errorf("usage record = %+v", records[0])
	}
}

func TestStreamResponse_UnsupportedModel(t *testing.T) {
	p, err := NewProvider("test-key")
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	_, err = p.StreamResponse(context.Background(), &llmstream.GenerateRequest{
		Model: "gpt-4o",
		Messages: []llmstream.Message{
			{Role: "user", Blocks: []*llmstream.Block{llmstream.NewTextBlock("hi")}},
		},
	})
	if !errors.Is(err, llmstream.ErrInvalidModel) {
		t.Errorf("err = %v, want ErrInvalidModel", err)
	}
}

func TestMapRequestError(t *testing.T) {
	p, err := NewProvider("test-key")
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}

	tests := []struct {
		status   int
		sentinel error
		retry    bool
	}{
		{http.StatusUnauthorized, llmstream.ErrInvalidAPIKey, false},
		{http.StatusTooManyRequests, llmstream.ErrRateLimited, true},
		{http.StatusNotFound, llmstream.ErrInvalidModel, false},
		{http.StatusBadRequest, llmstream.ErrInvalidRequest, false},
		{http.StatusBadGateway, llmstream.ErrProviderUnavailable, true},
	}
	for _, tt := range tests {
		mapped := p.mapRequestError(&openai.APIError{HTTPStatusCode: tt.status, Message: "nope"})
		if !errors.Is(mapped, tt.sentinel) {
			t.Errorf("status %d: err = %v, want %v", tt.status, mapped, tt.sentinel)
		}
		if got := llmstream.IsRetryable(mapped); got != tt.retry {
			t.Errorf("status %d: IsRetryable = %v, want %v", tt.status, got, tt.retry)
		}
	}

	plain := p.mapRequestError(errors.New("connection refused"))
	if !errors.Is(plain, llmstream.ErrProviderUnavailable) || !llmstream.IsRetryable(plain) {
		t.Errorf("transport error = %v, want retryable unavailable", plain)
	}
}
