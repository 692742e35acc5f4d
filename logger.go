package llmstream

import (
	"log/slog"

	"github.com/google/uuid"
)

// RequestLogger is the fire-and-forget request/response sink. Implementations
// must not block the stream; payloads are keyed by a per-request identifier.
type RequestLogger interface {
	LogRequest(requestID string, payload any)
	LogResponse(requestID string, payload any)
	LogError(requestID string, err error)
}

// NewRequestID mints the identifier that keys one request's log entries.
func NewRequestID() string {
	return uuid.NewString()
}

// SlogRequestLogger writes request traffic through a structured logger.
type SlogRequestLogger struct {
	logger *slog.Logger
}

// NewSlogRequestLogger wraps a slog logger; nil falls back to slog.Default().
func NewSlogRequestLogger(logger *slog.Logger) *SlogRequestLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogRequestLogger{logger: logger}
}

func (l *SlogRequestLogger) LogRequest(requestID string, payload any) {
	l.logger.Info("llm request", "request_id", requestID, "payload", payload)
}

func (l *SlogRequestLogger) LogResponse(requestID string, payload any) {
	l.logger.Info("llm response", "request_id", requestID, "payload", payload)
}

func (l *SlogRequestLogger) LogError(requestID string, err error) {
	l.logger.Error("llm request failed", "request_id", requestID, "error", err)
}

// NopRequestLogger discards everything.
type NopRequestLogger struct{}

func (NopRequestLogger) LogRequest(string, any)  {}
func (NopRequestLogger) LogResponse(string, any) {}
func (NopRequestLogger) LogError(string, error)  {}
