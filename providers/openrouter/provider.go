package openrouter

import (
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kestrelai/kestrel-llm-go"
)

const defaultBaseURL = "https://openrouter.ai/api/v1"

// Provider implements llmstream.Provider against the OpenRouter gateway.
// OpenRouter speaks the OpenAI chat completions dialect, so the adapter
// rides on the go-openai client with a swapped base URL.
type Provider struct {
	client *openai.Client
	logger *slog.Logger

	pause     *llmstream.PauseController
	ledger    llmstream.Ledger
	reqLogger llmstream.RequestLogger
}

// Option configures a Provider.
type Option func(*providerConfig)

type providerConfig struct {
	baseURL   string
	logger    *slog.Logger
	pause     *llmstream.PauseController
	ledger    llmstream.Ledger
	reqLogger llmstream.RequestLogger
}

// WithBaseURL overrides the gateway base URL (proxies, test servers).
func WithBaseURL(url string) Option {
	return func(c *providerConfig) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithLogger sets the structured logger for protocol warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *providerConfig) { c.logger = logger }
}

// WithPause attaches the shared pause switch observed by every stream this
// provider opens.
func WithPause(pause *llmstream.PauseController) Option {
	return func(c *providerConfig) { c.pause = pause }
}

// WithLedger attaches the cost ledger that receives usage records.
func WithLedger(ledger llmstream.Ledger) Option {
	return func(c *providerConfig) { c.ledger = ledger }
}

// WithRequestLogger attaches the fire-and-forget request logger.
func WithRequestLogger(rl llmstream.RequestLogger) Option {
	return func(c *providerConfig) { c.reqLogger = rl }
}

// NewProvider creates an OpenRouter provider.
func NewProvider(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, llmstream.ErrInvalidAPIKey
	}

	cfg := &providerConfig{
		baseURL: defaultBaseURL,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	clientCfg := openai.DefaultConfig(apiKey)
	clientCfg.BaseURL = cfg.baseURL

	return &Provider{
		client:    openai.NewClientWithConfig(clientCfg),
		logger:    cfg.logger,
		pause:     cfg.pause,
		ledger:    cfg.ledger,
		reqLogger: cfg.reqLogger,
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() llmstream.ProviderID {
	return llmstream.ProviderOpenRouter
}

// SupportsModel returns true for OpenRouter's 'vendor/model' format.
func (p *Provider) SupportsModel(model string) bool {
	return strings.Contains(model, "/")
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
