package anthropic

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/kestrelai/kestrel-llm-go"
)

// blockState remembers what kind of content block occupies each stream index
// so content_block_stop can be mapped to the right raw done event.
type blockState struct {
	itemID string
	kind   string // "text", "thinking", "tool_use"
}

// StreamResponse generates a streaming response from Claude and returns the
// canonical event sequence.
func (p *Provider) StreamResponse(ctx context.Context, req *llmstream.GenerateRequest) (<-chan llmstream.StreamEvent, error) {
	if !p.SupportsModel(req.Model) {
		return nil, &llmstream.ModelError{
			Model:    req.Model,
			Provider: p.Name().String(),
			Reason:   "model not supported by Anthropic (must start with 'claude-')",
			Err:      llmstream.ErrInvalidModel,
		}
	}

	apiParams, err := buildMessageParams(ctx, req, p.imagePre)
	if err != nil {
		return nil, err
	}

	// One id keys the request, response and error log entries for this call.
	requestID := llmstream.NewRequestID()
	if p.reqLogger != nil {
		p.reqLogger.LogRequest(requestID, apiParams)
	}

	raw := make(chan llmstream.RawEvent, 32)

	go func() {
		defer close(raw)
		p.streamRawEvents(ctx, apiParams, countImageBlocks(req.Messages), raw)
	}()

	translator := llmstream.NewTranslator(p.Name(), req.Model, p.translatorOptions(requestID))
	return translator.Translate(ctx, raw), nil
}

// streamRawEvents drives the SDK stream and emits raw events.
func (p *Provider) streamRawEvents(ctx context.Context, apiParams anthropic.MessageNewParams, imageCount int, raw chan<- llmstream.RawEvent) {
	send := func(ev llmstream.RawEvent) bool {
		select {
		case raw <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	stream := p.client.Messages.NewStreaming(ctx, apiParams)

	// Accumulator for final usage metadata.
	message := anthropic.Message{}

	// Content blocks have no ids of their own on Anthropic; items are keyed
	// by message id plus block index.
	blocksByIndex := make(map[int64]blockState)
	messageID := ""

	for stream.Next() {
		event := stream.Current()

		if err := message.Accumulate(event); err != nil {
			send(llmstream.RawEvent{
				Kind: llmstream.RawFailed,
				Err:  fmt.Errorf("failed to accumulate message: %w", err),
			})
			return
		}

		switch e := event.AsAny().(type) {
		case anthropic.MessageStartEvent:
			messageID = e.Message.ID

		case anthropic.ContentBlockStartEvent:
			itemID := fmt.Sprintf("%s-%d", messageID, e.Index)
			state := blockState{itemID: itemID, kind: string(e.ContentBlock.Type)}
			blocksByIndex[e.Index] = state

			switch e.ContentBlock.Type {
			case "text":
				if !send(llmstream.RawEvent{
					Kind:     llmstream.RawItemAdded,
					ItemID:   itemID,
					ItemType: llmstream.RawItemMessage,
				}) {
					return
				}

			case "thinking":
				if !send(llmstream.RawEvent{
					Kind:     llmstream.RawItemAdded,
					ItemID:   itemID,
					ItemType: llmstream.RawItemReasoning,
				}) {
					return
				}

			case "tool_use":
				if !send(llmstream.RawEvent{
					Kind:     llmstream.RawItemAdded,
					ItemID:   itemID,
					ItemType: llmstream.RawItemFunctionCall,
					CallID:   e.ContentBlock.ID,
					Name:     e.ContentBlock.Name,
				}) {
					return
				}
			}

		case anthropic.ContentBlockDeltaEvent:
			state, ok := blocksByIndex[e.Index]
			if !ok {
				continue
			}

			switch e.Delta.Type {
			case "text_delta":
				if !send(llmstream.RawEvent{
					Kind:   llmstream.RawTextDelta,
					ItemID: state.itemID,
					Text:   e.Delta.Text,
				}) {
					return
				}

			case "thinking_delta":
				if !send(llmstream.RawEvent{
					Kind:   llmstream.RawReasoningDelta,
					ItemID: state.itemID,
					Text:   e.Delta.Thinking,
				}) {
					return
				}

			case "citations_delta":
				if !send(llmstream.RawEvent{
					Kind:   llmstream.RawCitation,
					ItemID: state.itemID,
					Title:  e.Delta.Citation.Title,
					URL:    e.Delta.Citation.URL,
				}) {
					return
				}

			case "input_json_delta":
				if !send(llmstream.RawEvent{
					Kind:   llmstream.RawToolArgsDelta,
					ItemID: state.itemID,
					Text:   e.Delta.PartialJSON,
				}) {
					return
				}

			case "signature_delta":
				// Thinking signatures are not part of the canonical stream.
			}

		case anthropic.ContentBlockStopEvent:
			state, ok := blocksByIndex[e.Index]
			if !ok {
				continue
			}

			// Anthropic carries no final payload on stop; the done
			// events finalize with accumulated content.
			switch state.kind {
			case "text":
				if !send(llmstream.RawEvent{Kind: llmstream.RawTextDone, ItemID: state.itemID}) {
					return
				}
			case "thinking":
				if !send(llmstream.RawEvent{Kind: llmstream.RawReasoningDone, ItemID: state.itemID}) {
					return
				}
			case "tool_use":
				if !send(llmstream.RawEvent{Kind: llmstream.RawToolArgsDone, ItemID: state.itemID}) {
					return
				}
			}

		case anthropic.MessageDeltaEvent, anthropic.MessageStopEvent:
			// Usage comes from the accumulated message after the loop.
		}
	}

	if err := stream.Err(); err != nil {
		send(llmstream.RawEvent{
			Kind: llmstream.RawFailed,
			Err: &llmstream.ProviderError{
				Provider:  p.Name().String(),
				Message:   fmt.Sprintf("anthropic streaming error: %v", err),
				Retryable: true,
				Err:       llmstream.ErrStreamIncomplete,
			},
		})
		return
	}

	usage := &llmstream.VendorUsage{
		InputTokens:  int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
		CachedTokens: int(message.Usage.CacheReadInputTokens),
		ImageCount:   imageCount,
	}
	if message.Usage.CacheCreationInputTokens > 0 {
		usage.Extra = map[string]any{
			"cache_creation_input_tokens": int(message.Usage.CacheCreationInputTokens),
		}
	}
	if !send(llmstream.RawEvent{Kind: llmstream.RawUsage, Usage: usage}) {
		return
	}

	send(llmstream.RawEvent{Kind: llmstream.RawCompleted})
}
