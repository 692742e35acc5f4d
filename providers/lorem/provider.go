package lorem

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	loremgen "github.com/bozaro/golorem"

	"github.com/kestrelai/kestrel-llm-go"
)

// Provider is a mock LLM provider that generates lorem ipsum streams.
// Used for testing and development without real API keys. It feeds the same
// canonical translator as the real adapters, so everything downstream of the
// provider boundary behaves identically.
type Provider struct {
	generator *loremgen.Lorem
	logger    *slog.Logger

	pause     *llmstream.PauseController
	ledger    llmstream.Ledger
	reqLogger llmstream.RequestLogger
}

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) { p.logger = logger }
}

// WithPause attaches the shared pause switch.
func WithPause(pause *llmstream.PauseController) Option {
	return func(p *Provider) { p.pause = pause }
}

// WithLedger attaches the cost ledger.
func WithLedger(ledger llmstream.Ledger) Option {
	return func(p *Provider) { p.ledger = ledger }
}

// WithRequestLogger attaches the fire-and-forget request logger.
func WithRequestLogger(rl llmstream.RequestLogger) Option {
	return func(p *Provider) { p.reqLogger = rl }
}

// NewProvider creates a new lorem ipsum provider.
func NewProvider(opts ...Option) *Provider {
	p := &Provider{
		generator: loremgen.New(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider identifier.
func (p *Provider) Name() llmstream.ProviderID {
	return llmstream.ProviderLorem
}

// SupportsModel returns true if the model name starts with "lorem-".
// Example models: "lorem-fast", "lorem-slow", "lorem-test"
func (p *Provider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, "lorem-")
}

// getStreamDelay returns the delay between words based on the model name.
// - lorem-slow: 2 words/second (500ms per word)
// - lorem-fast: 30 words/second (33ms per word)
// - default:    10 words/second (100ms per word)
func getStreamDelay(model string) time.Duration {
	if strings.Contains(model, "slow") {
		return 500 * time.Millisecond
	}
	if strings.Contains(model, "fast") {
		return 33 * time.Millisecond
	}
	if strings.Contains(model, "test") {
		return 0
	}
	return 100 * time.Millisecond
}

// StreamResponse generates a streaming lorem ipsum response. The stream
// rotates through text, thinking (if enabled), a tool call (if tools are
// configured) and a citation, then completes with a synthetic usage event.
func (p *Provider) StreamResponse(ctx context.Context, req *llmstream.GenerateRequest) (<-chan llmstream.StreamEvent, error) {
	if !p.SupportsModel(req.Model) {
		return nil, &llmstream.ModelError{
			Model:    req.Model,
			Provider: p.Name().String(),
			Reason:   "model not supported by Lorem provider (must start with 'lorem-')",
			Err:      llmstream.ErrInvalidModel,
		}
	}

	// One id keys the request, response and error log entries for this call.
	// There is no vendor wire format here, so the canonical request is logged.
	requestID := llmstream.NewRequestID()
	if p.reqLogger != nil {
		p.reqLogger.LogRequest(requestID, req)
	}

	raw := make(chan llmstream.RawEvent, 32)
	go func() {
		defer close(raw)
		p.streamRawEvents(ctx, req, raw)
	}()

	translator := llmstream.NewTranslator(p.Name(), req.Model, llmstream.TranslatorOptions{
		Pause:         p.pause,
		Ledger:        p.ledger,
		RequestLogger: p.reqLogger,
		RequestID:     requestID,
		Logger:        p.logger,
	})
	return translator.Translate(ctx, raw), nil
}

func (p *Provider) streamRawEvents(ctx context.Context, req *llmstream.GenerateRequest, raw chan<- llmstream.RawEvent) {
	send := func(ev llmstream.RawEvent) bool {
		select {
		case raw <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	delay := getStreamDelay(req.Model)
	params := req.Agent.RequestParamsOrDefault()
	outputWords := 0

	// Thinking segment first, the way reasoning models front-load it.
	if params.ThinkingRequested() {
		n, ok := p.streamThinking(ctx, send, delay)
		outputWords += n
		if !ok {
			return
		}
	}

	// Main text item with one citation partway through.
	n, ok := p.streamText(ctx, send, delay)
	outputWords += n
	if !ok {
		return
	}

	// One tool call per configured tool, rotating mock arguments.
	for i, tool := range req.Agent.ToolList() {
		n, ok := p.streamToolCall(ctx, send, delay, i, &tool)
		outputWords += n
		if !ok {
			return
		}
	}

	inputTokens := 0
	imageCount := 0
	for _, msg := range req.Messages {
		for _, block := range msg.Blocks {
			inputTokens += llmstream.EstimateTokens(req.Model, block.Text())
			if block.BlockType == llmstream.BlockTypeImage {
				imageCount++
			}
		}
	}

	if !send(llmstream.RawEvent{
		Kind: llmstream.RawUsage,
		Usage: &llmstream.VendorUsage{
			InputTokens:  inputTokens,
			OutputTokens: outputWords,
			ImageCount:   imageCount,
			Extra:        map[string]any{"mock": true},
		},
	}) {
		return
	}

	send(llmstream.RawEvent{Kind: llmstream.RawCompleted})
}

func (p *Provider) streamThinking(ctx context.Context, send func(llmstream.RawEvent) bool, delay time.Duration) (int, bool) {
	const itemID = "lorem-reasoning-0"

	if !send(llmstream.RawEvent{Kind: llmstream.RawItemAdded, ItemID: itemID, ItemType: llmstream.RawItemReasoning}) {
		return 0, false
	}

	words := strings.Fields(p.generateWords(20))
	for i, word := range words {
		if !p.sleep(ctx, delay) {
			return i, false
		}
		if !send(llmstream.RawEvent{
			Kind:   llmstream.RawReasoningDelta,
			ItemID: itemID,
			Text:   word + " ",
		}) {
			return i, false
		}
	}

	return len(words), send(llmstream.RawEvent{Kind: llmstream.RawReasoningDone, ItemID: itemID})
}

func (p *Provider) streamText(ctx context.Context, send func(llmstream.RawEvent) bool, delay time.Duration) (int, bool) {
	const itemID = "lorem-msg-0"

	if !send(llmstream.RawEvent{Kind: llmstream.RawItemAdded, ItemID: itemID, ItemType: llmstream.RawItemMessage}) {
		return 0, false
	}

	words := strings.Fields(p.generateWords(40))
	for i, word := range words {
		if !p.sleep(ctx, delay) {
			return i, false
		}
		if !send(llmstream.RawEvent{
			Kind:   llmstream.RawTextDelta,
			ItemID: itemID,
			Text:   word + " ",
		}) {
			return i, false
		}

		// A citation lands midway through the text.
		if i == len(words)/2 {
			if !send(llmstream.RawEvent{
				Kind:   llmstream.RawCitation,
				ItemID: itemID,
				Title:  "Lorem Ipsum Reference",
				URL:    "https://example.com/lorem",
			}) {
				return i, false
			}
		}
	}

	return len(words), send(llmstream.RawEvent{Kind: llmstream.RawTextDone, ItemID: itemID})
}

func (p *Provider) streamToolCall(ctx context.Context, send func(llmstream.RawEvent) bool, delay time.Duration, index int, tool *llmstream.Tool) (int, bool) {
	itemID := fmt.Sprintf("lorem-call-%d", index)
	callID := fmt.Sprintf("call_lorem_%d", index)

	if !send(llmstream.RawEvent{
		Kind:     llmstream.RawItemAdded,
		ItemID:   itemID,
		ItemType: llmstream.RawItemFunctionCall,
		CallID:   callID,
		Name:     tool.Function.Name,
	}) {
		return 0, false
	}

	input := mockToolInput(tool)
	jsonBytes, err := json.Marshal(input)
	if err != nil {
		send(llmstream.RawEvent{Kind: llmstream.RawFailed, Err: fmt.Errorf("failed to marshal tool input: %w", err)})
		return 0, false
	}

	// Arguments stream in small chunks, the way real vendors fragment JSON.
	jsonStr := string(jsonBytes)
	for i := 0; i < len(jsonStr); i += 8 {
		if !p.sleep(ctx, delay/10) {
			return 0, false
		}
		end := i + 8
		if end > len(jsonStr) {
			end = len(jsonStr)
		}
		if !send(llmstream.RawEvent{
			Kind:   llmstream.RawToolArgsDelta,
			ItemID: itemID,
			Text:   jsonStr[i:end],
		}) {
			return 0, false
		}
	}

	return len(jsonStr) / 4, send(llmstream.RawEvent{Kind: llmstream.RawToolArgsDone, ItemID: itemID})
}

func mockToolInput(tool *llmstream.Tool) map[string]any {
	switch tool.Function.Name {
	case "search":
		return map[string]any{"query": "lorem ipsum dolor sit amet"}
	default:
		return map[string]any{"data": "mock input for " + tool.Function.Name}
	}
}

// generateWords generates lorem ipsum text with approximately targetWords words.
func (p *Provider) generateWords(targetWords int) string {
	var sb strings.Builder
	wordCount := 0

	for wordCount < targetWords {
		sentence := p.generator.Sentence(5, 15)
		sb.WriteString(sentence)
		sb.WriteString(" ")
		wordCount += len(strings.Fields(sentence))
	}

	return strings.TrimSpace(sb.String())
}

func (p *Provider) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
