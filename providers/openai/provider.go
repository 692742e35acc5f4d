package openai

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kestrelai/kestrel-llm-go"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Provider implements llmstream.Provider against the OpenAI Responses API.
// The Responses API is a strict-mode vendor: tool parameter schemas are
// rewritten with StrictParameters before they are sent.
type Provider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	pause     *llmstream.PauseController
	ledger    llmstream.Ledger
	reqLogger llmstream.RequestLogger
}

// Option configures a Provider.
type Option func(*Provider)

// WithBaseURL overrides the API base URL (proxies, test servers).
func WithBaseURL(url string) Option {
	return func(p *Provider) { p.baseURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Provider) { p.httpClient = client }
}

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

// NewProvider creates an OpenAI provider.
func NewProvider(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("openai: API key is required")
	}

	p := &Provider{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Minute, // streaming responses can run long
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() llmstream.ProviderID {
	return llmstream.ProviderOpenAI
}

// SupportsModel reports whether the model looks routable to OpenAI. The
// capability registry answers for known models; unknown gpt-*/o* names pass
// through since the API is the source of truth.
func (p *Provider) SupportsModel(model string) bool {
	if model == "" {
		return false
	}
	if llmstream.GetCapabilityRegistry().SupportsModel(p.Name().String(), model) {
		return true
	}
	return strings.HasPrefix(model, "gpt-") || strings.HasPrefix(model, "o")
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
