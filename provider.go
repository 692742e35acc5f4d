package llmstream

import "context"

// Provider is the interface every vendor adapter implements. An adapter
// translates the canonical request into its vendor's wire format, opens the
// vendor's native stream, lowers raw vendor events into the RawEvent union
// and feeds them through the canonical translator.
//
// Usage:
//
//	events, err := provider.StreamResponse(ctx, req)
//	if err != nil { return err }
//	for ev := range events {
//	    switch ev.Type {
//	    case llmstream.EventMessageDelta:   // incremental text
//	    case llmstream.EventToolStart:      // assembled tool call
//	    case llmstream.EventError:          // terminal failure
//	    }
//	}
type Provider interface {
	// StreamResponse opens the vendor stream and returns the canonical
	// event sequence. The channel is finite, lazily produced, consumed
	// exactly once, and closed after the last event. Cancelling ctx is
	// cooperative: buffered content is flushed before the channel closes.
	StreamResponse(ctx context.Context, req *GenerateRequest) (<-chan StreamEvent, error)

	// Name returns the provider identifier.
	Name() ProviderID

	// SupportsModel returns true if the provider serves the given model.
	SupportsModel(model string) bool
}
