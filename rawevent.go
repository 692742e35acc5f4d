package llmstream

// RawKind identifies a raw vendor event variant.
//
// Vendor wire protocols are duck-typed unions; adapters lower them into this
// closed union at the provider boundary so the translator can dispatch
// exhaustively. Kinds a vendor never produces are simply never sent; kinds
// the translator does not know fall through its default branch as no-ops.
type RawKind string

const (
	// RawItemAdded signals a new output item (message, function_call or
	// reasoning) entering the stream.
	RawItemAdded RawKind = "item_added"

	// RawTextDelta carries an increment of visible message text.
	RawTextDelta RawKind = "text_delta"

	// RawTextDone signals that an item's visible text is final. Text holds
	// the full content when the vendor provides it; empty means "use the
	// accumulated deltas".
	RawTextDone RawKind = "text_done"

	// RawReasoningDelta carries an increment of reasoning/thinking text for
	// one summary segment of a reasoning item.
	RawReasoningDelta RawKind = "reasoning_delta"

	// RawReasoningDone signals the end of one reasoning summary segment.
	RawReasoningDone RawKind = "reasoning_done"

	// RawToolArgsDelta carries a fragment of function-call arguments.
	RawToolArgsDelta RawKind = "tool_args_delta"

	// RawToolArgsDone signals that a function call's arguments are final.
	// Text holds the full argument string when the vendor provides it;
	// empty means "use the accumulated fragments".
	RawToolArgsDone RawKind = "tool_args_done"

	// RawCitation announces a cited source (title + URL) for an item.
	RawCitation RawKind = "citation"

	// RawUsage carries a vendor usage payload. Adapters send it only when
	// the vendor actually reported usage.
	RawUsage RawKind = "usage"

	// RawCompleted signals normal end of the vendor stream.
	RawCompleted RawKind = "completed"

	// RawFailed signals a vendor-terminal failure (failed, incomplete,
	// refusal, transport error). Err describes the reason.
	RawFailed RawKind = "failed"
)

// RawItemType classifies the item referenced by a RawItemAdded event.
type RawItemType string

const (
	RawItemMessage      RawItemType = "message"
	RawItemFunctionCall RawItemType = "function_call"
	RawItemReasoning    RawItemType = "reasoning"
)

// RawEvent is one raw vendor event after adapter lowering.
// Only the fields relevant to the Kind are populated.
type RawEvent struct {
	Kind RawKind

	// ItemID identifies the output item the event refers to.
	ItemID string

	// ItemType classifies item_added events.
	ItemType RawItemType

	// CallID and Name describe function-call items on item_added.
	CallID string
	Name   string

	// SummaryIndex distinguishes the ordered summary segments of one
	// reasoning item.
	SummaryIndex int

	// Text carries delta fragments and final values.
	Text string

	// Title and URL describe citation events.
	Title string
	URL   string

	// Usage carries the vendor usage payload for usage events.
	Usage *VendorUsage

	// Err describes failed events.
	Err error
}

// VendorUsage is a vendor usage payload in normalized field positions,
// before mapping into a UsageRecord.
type VendorUsage struct {
	InputTokens  int
	OutputTokens int
	CachedTokens int
	ImageCount   int

	// Extra preserves vendor-specific accounting fields
	// (cache_creation_input_tokens, reasoning_tokens, ...).
	Extra map[string]any
}
