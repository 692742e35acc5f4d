package llmstream

// EventType identifies a canonical stream event variant.
type EventType string

// Canonical event vocabulary. Every provider adapter is normalized into
// exactly these six variants; consumers never see vendor wire shapes.
const (
	// EventMessageDelta carries an incremental fragment of visible content.
	EventMessageDelta EventType = "message_delta"

	// EventMessageComplete carries the full visible content for a message,
	// including the rendered citation footnote block if any sources were cited.
	EventMessageComplete EventType = "message_complete"

	// EventThinkingDelta carries an incremental fragment of reasoning content.
	// Reasoning text is never mixed into Content.
	EventThinkingDelta EventType = "thinking_delta"

	// EventThinkingComplete carries the aggregated reasoning text for one
	// reasoning segment.
	EventThinkingComplete EventType = "thinking_complete"

	// EventToolStart announces a fully assembled tool invocation.
	// Emitted at most once per tool-call id.
	EventToolStart EventType = "tool_start"

	// EventError reports a vendor-terminal failure or an internal processing
	// fault. It is the last event before the stream ends; nothing is thrown
	// past the translator boundary.
	EventError EventType = "error"
)

// StreamEvent is one item of the canonical output stream.
// MessageID identifies the message or reasoning segment the event belongs to;
// for thinking events it is the composite "itemID-summaryIndex" identity.
// Order increases strictly within one MessageID for delta events. Ordering
// across distinct identifiers is not guaranteed.
type StreamEvent struct {
	Type EventType `json:"type"`

	// Content holds visible text for message_delta / message_complete.
	Content string `json:"content,omitempty"`

	// ThinkingContent holds reasoning text for thinking_delta /
	// thinking_complete, and optionally rides along on message_complete.
	ThinkingContent string `json:"thinking_content,omitempty"`

	// MessageID scopes Order and identifies which message/segment this
	// event belongs to.
	MessageID string `json:"message_id,omitempty"`

	// Order is a per-MessageID monotonic counter for delta events.
	Order int `json:"order,omitempty"`

	// ToolCall is set on tool_start events.
	ToolCall *ToolCall `json:"tool_call,omitempty"`

	// Err is set on error events (nil otherwise).
	Err error `json:"-"`
}

// IsTerminal returns true for events that end a logical channel:
// message_complete, thinking_complete and error.
func (e StreamEvent) IsTerminal() bool {
	switch e.Type {
	case EventMessageComplete, EventThinkingComplete, EventError:
		return true
	default:
		return false
	}
}
