package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kestrelai/kestrel-llm-go"
)

// sseEvent is the decoded payload of one Responses API SSE data line. The
// union is wide; each event type populates a subset of fields.
type sseEvent struct {
	Type string `json:"type"`

	// response.output_item.added
	Item *outputItem `json:"item,omitempty"`

	// delta-bearing events
	ItemID       string `json:"item_id,omitempty"`
	OutputIndex  int    `json:"output_index,omitempty"`
	SummaryIndex int    `json:"summary_index,omitempty"`
	Delta        string `json:"delta,omitempty"`
	Text         string `json:"text,omitempty"`
	Arguments    string `json:"arguments,omitempty"`

	// response.output_text.annotation.added
	Annotation *annotation `json:"annotation,omitempty"`

	// response.completed / response.failed / response.incomplete
	Response *responseEnvelope `json:"response,omitempty"`

	// error
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

type outputItem struct {
	ID     string `json:"id"`
	Type   string `json:"type"` // "message", "function_call", "reasoning"
	CallID string `json:"call_id,omitempty"`
	Name   string `json:"name,omitempty"`
}

type annotation struct {
	Type  string `json:"type"` // "url_citation"
	Title string `json:"title"`
	URL   string `json:"url"`
}

type responseEnvelope struct {
	ID     string         `json:"id"`
	Status string         `json:"status"`
	Usage  *responseUsage `json:"usage,omitempty"`
	Error  *responseError `json:"error,omitempty"`
	IncompleteDetails *struct {
		Reason string `json:"reason"`
	} `json:"incomplete_details,omitempty"`
}

type responseUsage struct {
	InputTokens        int `json:"input_tokens"`
	OutputTokens       int `json:"output_tokens"`
	InputTokensDetails struct {
		CachedTokens int `json:"cached_tokens"`
	} `json:"input_tokens_details"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StreamResponse opens a streaming Responses API call and returns the
// canonical event sequence.
func (p *Provider) StreamResponse(ctx context.Context, req *llmstream.GenerateRequest) (<-chan llmstream.StreamEvent, error) {
	if !p.SupportsModel(req.Model) {
		return nil, &llmstream.ModelError{
			Model:    req.Model,
			Provider: p.Name().String(),
			Reason:   "model not supported by OpenAI",
			Err:      llmstream.ErrInvalidModel,
		}
	}

	apiReq, err := buildResponsesRequest(req)
	if err != nil {
		return nil, err
	}

	// One id keys the request, response and error log entries for this call.
	requestID := llmstream.NewRequestID()
	if p.reqLogger != nil {
		p.reqLogger.LogRequest(requestID, apiReq)
	}

	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("openai: failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/responses", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openai: failed to build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, &llmstream.ProviderError{
			Provider:  p.Name().String(),
			Message:   err.Error(),
			Retryable: true,
			Err:       llmstream.ErrProviderUnavailable,
		}
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, p.handleErrorResponse(resp)
	}

	raw := make(chan llmstream.RawEvent, 32)
	go func() {
		defer close(raw)
		defer resp.Body.Close()
		p.streamRawEvents(ctx, resp.Body, raw)
	}()

	translator := llmstream.NewTranslator(p.Name(), req.Model, p.translatorOptions(requestID))
	return translator.Translate(ctx, raw), nil
}

// streamRawEvents reads the SSE body and emits raw events. Unrecognized
// event types are skipped so new API events never break the stream.
func (p *Provider) streamRawEvents(ctx context.Context, body io.Reader, raw chan<- llmstream.RawEvent) {
	send := func(ev llmstream.RawEvent) bool {
		select {
		case raw <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		// SSE framing: only data lines carry payloads; the payload
		// repeats the event type in its "type" field.
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			return
		}

		var ev sseEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			p.logger.Warn("skipping unparseable stream chunk", "error", err)
			continue
		}

		if !p.dispatch(ev, send) {
			return
		}
	}

	if err := scanner.Err(); err != nil {
		send(llmstream.RawEvent{
			Kind: llmstream.RawFailed,
			Err: &llmstream.ProviderError{
				Provider:  p.Name().String(),
				Message:   fmt.Sprintf("stream read failed: %v", err),
				Retryable: true,
				Err:       llmstream.ErrProviderUnavailable,
			},
		})
	}
}

// dispatch maps one SSE event to raw events. Returns false when the stream
// is finished or the context is gone.
func (p *Provider) dispatch(ev sseEvent, send func(llmstream.RawEvent) bool) bool {
	switch ev.Type {
	case "response.output_item.added":
		if ev.Item == nil {
			return true
		}
		return send(llmstream.RawEvent{
			Kind:     llmstream.RawItemAdded,
			ItemID:   ev.Item.ID,
			ItemType: mapItemType(ev.Item.Type),
			CallID:   ev.Item.CallID,
			Name:     ev.Item.Name,
		})

	case "response.output_text.delta":
		return send(llmstream.RawEvent{
			Kind:   llmstream.RawTextDelta,
			ItemID: ev.ItemID,
			Text:   ev.Delta,
		})

	case "response.output_text.done":
		return send(llmstream.RawEvent{
			Kind:   llmstream.RawTextDone,
			ItemID: ev.ItemID,
			Text:   ev.Text,
		})

	case "response.output_text.annotation.added":
		if ev.Annotation == nil || ev.Annotation.Type != "url_citation" {
			return true
		}
		return send(llmstream.RawEvent{
			Kind:   llmstream.RawCitation,
			ItemID: ev.ItemID,
			Title:  ev.Annotation.Title,
			URL:    ev.Annotation.URL,
		})

	case "response.reasoning_summary_text.delta":
		return send(llmstream.RawEvent{
			Kind:         llmstream.RawReasoningDelta,
			ItemID:       ev.ItemID,
			SummaryIndex: ev.SummaryIndex,
			Text:         ev.Delta,
		})

	case "response.reasoning_summary_text.done":
		return send(llmstream.RawEvent{
			Kind:         llmstream.RawReasoningDone,
			ItemID:       ev.ItemID,
			SummaryIndex: ev.SummaryIndex,
			Text:         ev.Text,
		})

	case "response.function_call_arguments.delta":
		return send(llmstream.RawEvent{
			Kind:   llmstream.RawToolArgsDelta,
			ItemID: ev.ItemID,
			Text:   ev.Delta,
		})

	case "response.function_call_arguments.done":
		return send(llmstream.RawEvent{
			Kind:   llmstream.RawToolArgsDone,
			ItemID: ev.ItemID,
			Text:   ev.Arguments,
		})

	case "response.completed":
		if ev.Response != nil && ev.Response.Usage != nil {
			u := ev.Response.Usage
			if !send(llmstream.RawEvent{
				Kind: llmstream.RawUsage,
				Usage: &llmstream.VendorUsage{
					InputTokens:  u.InputTokens,
					OutputTokens: u.OutputTokens,
					CachedTokens: u.InputTokensDetails.CachedTokens,
				},
			}) {
				return false
			}
		}
		send(llmstream.RawEvent{Kind: llmstream.RawCompleted})
		return false

	case "response.failed":
		msg := "response failed"
		if ev.Response != nil && ev.Response.Error != nil {
			msg = ev.Response.Error.Message
		}
		send(llmstream.RawEvent{
			Kind: llmstream.RawFailed,
			Err: &llmstream.ProviderError{
				Provider: p.Name().String(),
				Message:  msg,
				Err:      llmstream.ErrStreamIncomplete,
			},
		})
		return false

	case "response.incomplete":
		reason := "incomplete"
		if ev.Response != nil && ev.Response.IncompleteDetails != nil {
			reason = ev.Response.IncompleteDetails.Reason
		}
		send(llmstream.RawEvent{
			Kind: llmstream.RawFailed,
			Err: &llmstream.ProviderError{
				Provider: p.Name().String(),
				Message:  fmt.Sprintf("response incomplete: %s", reason),
				Err:      llmstream.ErrStreamIncomplete,
			},
		})
		return false

	case "error":
		send(llmstream.RawEvent{
			Kind: llmstream.RawFailed,
			Err: &llmstream.ProviderError{
				Provider: p.Name().String(),
				Message:  ev.Message,
				Err:      llmstream.ErrStreamIncomplete,
			},
		})
		return false
	}

	// Unhandled event types (response.created, response.in_progress,
	// content part lifecycle, ...) carry nothing the canonical stream needs.
	return true
}

func mapItemType(t string) llmstream.RawItemType {
	switch t {
	case "function_call":
		return llmstream.RawItemFunctionCall
	case "reasoning":
		return llmstream.RawItemReasoning
	default:
		return llmstream.RawItemMessage
	}
}

// handleErrorResponse maps a non-200 response to a typed error.
func (p *Provider) handleErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var apiErr struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    string `json:"code"`
		} `json:"error"`
	}
	message := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
		message = apiErr.Error.Message
	}

	var sentinel error
	retryable := false
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		sentinel = llmstream.ErrInvalidAPIKey
	case http.StatusTooManyRequests:
		sentinel = llmstream.ErrRateLimited
		retryable = true
	case http.StatusNotFound:
		sentinel = llmstream.ErrInvalidModel
	case http.StatusBadRequest:
		sentinel = llmstream.ErrInvalidRequest
	default:
		if resp.StatusCode >= 500 {
			sentinel = llmstream.ErrProviderUnavailable
			retryable = true
		}
	}

	return &llmstream.ProviderError{
		Provider:   p.Name().String(),
		StatusCode: resp.StatusCode,
		Message:    message,
		Retryable:  retryable,
		Err:        sentinel,
	}
}
