package anthropic

import (
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/kestrelai/kestrel-llm-go"
)

// Provider implements llmstream.Provider for Anthropic (Claude) models.
type Provider struct {
	client *anthropic.Client
	logger *slog.Logger

	pause     *llmstream.PauseController
	ledger    llmstream.Ledger
	reqLogger llmstream.RequestLogger
	imagePre  llmstream.ImagePreprocessor
}

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the structured logger for protocol warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) { p.logger = logger }
}

// WithPause attaches the shared pause switch observed by every stream this
// provider opens.
func WithPause(pause *llmstream.PauseController) Option {
	return func(p *Provider) { p.pause = pause }
}

// WithLedger attaches the cost ledger that receives usage records.
func WithLedger(ledger llmstream.Ledger) Option {
	return func(p *Provider) { p.ledger = ledger }
}

// WithRequestLogger attaches the fire-and-forget request logger.
func WithRequestLogger(rl llmstream.RequestLogger) Option {
	return func(p *Provider) { p.reqLogger = rl }
}

// WithImagePreprocessor attaches the external image splitting utility.
// Oversized image blocks in replayed history are expanded into per-segment
// blocks before they are sent.
func WithImagePreprocessor(pre llmstream.ImagePreprocessor) Option {
	return func(p *Provider) { p.imagePre = pre }
}

// NewProvider creates a new Anthropic provider with the given API key.
func NewProvider(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, llmstream.ErrInvalidAPIKey
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	p := &Provider{
		client: &client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() llmstream.ProviderID {
	return llmstream.ProviderAnthropic
}

// SupportsModel returns true if this provider supports the given model.
// Anthropic models start with "claude-"
func (p *Provider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, "claude-")
}

func (p *Provider) translatorOptions(requestID string) llmstream.TranslatorOptions {
	return llmstream.TranslatorOptions{
		Pause:         p.pause,
		Ledger:        p.ledger,
		RequestLogger: p.reqLogger,
		RequestID:     requestID,
		Logger:        p.logger,
	}
}
