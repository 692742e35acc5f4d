package openrouter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kestrelai/kestrel-llm-go"
)

// StreamResponse generates a streaming response through OpenRouter and
// returns the canonical event sequence.
func (p *Provider) StreamResponse(ctx context.Context, req *llmstream.GenerateRequest) (<-chan llmstream.StreamEvent, error) {
	if !p.SupportsModel(req.Model) {
		return nil, &llmstream.ModelError{
			Model:    req.Model,
			Provider: p.Name().String(),
			Reason:   "model not supported by OpenRouter (must be in 'provider/model' format)",
			Err:      llmstream.ErrInvalidModel,
		}
	}

	apiReq, err := buildChatCompletionRequest(req)
	if err != nil {
		return nil, err
	}

	// One id keys the request, response and error log entries for this call.
	requestID := llmstream.NewRequestID()
	if p.reqLogger != nil {
		p.reqLogger.LogRequest(requestID, apiReq)
	}

	stream, err := p.client.CreateChatCompletionStream(ctx, apiReq)
	if err != nil {
		return nil, p.mapRequestError(err)
	}

	raw := make(chan llmstream.RawEvent, 32)
	go func() {
		defer close(raw)
		defer stream.Close()
		p.streamRawEvents(ctx, stream, raw)
	}()

	translator := llmstream.NewTranslator(p.Name(), req.Model, p.translatorOptions(requestID))
	return translator.Translate(ctx, raw), nil
}

// streamRawEvents reads chat completion chunks and emits raw events. Chat
// completions have no item lifecycle of their own, so items are synthesized:
// one message item per response id, one function_call item per tool call
// index, closed when the finish reason arrives.
func (p *Provider) streamRawEvents(ctx context.Context, stream *openai.ChatCompletionStream, raw chan<- llmstream.RawEvent) {
	send := func(ev llmstream.RawEvent) bool {
		select {
		case raw <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	messageItemID := ""
	reasoningItemID := ""
	callItems := make(map[int]string) // tool call index -> item id
	var callOrder []string
	var usage *llmstream.VendorUsage

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			send(llmstream.RawEvent{Kind: llmstream.RawFailed, Err: p.mapRequestError(err)})
			return
		}

		// The usage-only chunk arrives last with no choices.
		if resp.Usage != nil {
			usage = &llmstream.VendorUsage{
				InputTokens:  resp.Usage.PromptTokens,
				OutputTokens: resp.Usage.CompletionTokens,
			}
			if resp.Usage.PromptTokensDetails != nil {
				usage.CachedTokens = resp.Usage.PromptTokensDetails.CachedTokens
			}
		}
		if len(resp.Choices) == 0 {
			continue
		}

		delta := resp.Choices[0].Delta

		if delta.Content != "" {
			if messageItemID == "" {
				messageItemID = resp.ID
				if messageItemID == "" {
					messageItemID = "msg-0"
				}
				if !send(llmstream.RawEvent{
					Kind:     llmstream.RawItemAdded,
					ItemID:   messageItemID,
					ItemType: llmstream.RawItemMessage,
				}) {
					return
				}
			}
			if !send(llmstream.RawEvent{
				Kind:   llmstream.RawTextDelta,
				ItemID: messageItemID,
				Text:   delta.Content,
			}) {
				return
			}
		}

		if delta.ReasoningContent != "" {
			if reasoningItemID == "" {
				reasoningItemID = resp.ID + "-reasoning"
				if !send(llmstream.RawEvent{
					Kind:     llmstream.RawItemAdded,
					ItemID:   reasoningItemID,
					ItemType: llmstream.RawItemReasoning,
				}) {
					return
				}
			}
			if !send(llmstream.RawEvent{
				Kind:   llmstream.RawReasoningDelta,
				ItemID: reasoningItemID,
				Text:   delta.ReasoningContent,
			}) {
				return
			}
		}

		for _, tc := range delta.ToolCalls {
			idx := 0
			if tc.Index != nil {
				idx = *tc.Index
			}

			itemID, known := callItems[idx]
			if !known {
				itemID = fmt.Sprintf("%s-call-%d", resp.ID, idx)
				callItems[idx] = itemID
				callOrder = append(callOrder, itemID)
				if !send(llmstream.RawEvent{
					Kind:     llmstream.RawItemAdded,
					ItemID:   itemID,
					ItemType: llmstream.RawItemFunctionCall,
					CallID:   tc.ID,
					Name:     tc.Function.Name,
				}) {
					return
				}
			}

			if tc.Function.Arguments != "" {
				if !send(llmstream.RawEvent{
					Kind:   llmstream.RawToolArgsDelta,
					ItemID: itemID,
					Text:   tc.Function.Arguments,
				}) {
					return
				}
			}
		}
	}

	// Close synthesized items with accumulated content.
	if reasoningItemID != "" {
		if !send(llmstream.RawEvent{Kind: llmstream.RawReasoningDone, ItemID: reasoningItemID}) {
			return
		}
	}
	if messageItemID != "" {
		if !send(llmstream.RawEvent{Kind: llmstream.RawTextDone, ItemID: messageItemID}) {
			return
		}
	}
	for _, itemID := range callOrder {
		if !send(llmstream.RawEvent{Kind: llmstream.RawToolArgsDone, ItemID: itemID}) {
			return
		}
	}

	if usage != nil {
		if !send(llmstream.RawEvent{Kind: llmstream.RawUsage, Usage: usage}) {
			return
		}
	}

	send(llmstream.RawEvent{Kind: llmstream.RawCompleted})
}

// mapRequestError converts go-openai errors to typed library errors.
func (p *Provider) mapRequestError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		var sentinel error
		retryable := false
		switch apiErr.HTTPStatusCode {
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
			if apiErr.HTTPStatusCode >= 500 {
				sentinel = llmstream.ErrProviderUnavailable
				retryable = true
			}
		}
		return &llmstream.ProviderError{
			Provider:   p.Name().String(),
			StatusCode: apiErr.HTTPStatusCode,
			Message:    apiErr.Message,
			Retryable:  retryable,
			Err:        sentinel,
		}
	}

	return &llmstream.ProviderError{
		Provider:  p.Name().String(),
		Message:   err.Error(),
		Retryable: true,
		Err:       llmstream.ErrProviderUnavailable,
	}
}
