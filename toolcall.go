package llmstream

import (
	"log/slog"
	"sort"
	"strings"
)

// ToolCallStatus tracks a tool call through the assembler.
type ToolCallStatus string

const (
	// ToolCallPending means argument fragments are still accumulating.
	ToolCallPending ToolCallStatus = "pending"

	// ToolCallFinalized means the arguments-done signal arrived and the
	// call was emitted.
	ToolCallFinalized ToolCallStatus = "finalized"

	// ToolCallPartial marks a call flushed best-effort at stream end
	// without an arguments-done signal.
	ToolCallPartial ToolCallStatus = "partial"
)

// ToolCall is an assembled function invocation.
type ToolCall struct {
	// ID is the output item id the call arrived under.
	ID string `json:"id"`

	// CallID is the vendor call id the tool result must be keyed by.
	CallID string `json:"call_id"`

	// Name is the function name.
	Name string `json:"name"`

	// Arguments is the accumulated JSON argument string.
	Arguments string `json:"arguments"`

	Status ToolCallStatus `json:"status"`
}

// ToolCallAssembler accumulates streamed argument fragments into complete
// invocations. State per id: absent -> pending -> finalized. The assembler is
// owned by a single stream task and needs no locking.
type ToolCallAssembler struct {
	pending map[string]*pendingCall
	logger  *slog.Logger
}

type pendingCall struct {
	callID string
	name   string
	args   strings.Builder
}

// NewToolCallAssembler creates an empty assembler. A nil logger falls back to
// slog.Default().
func NewToolCallAssembler(logger *slog.Logger) *ToolCallAssembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ToolCallAssembler{
		pending: make(map[string]*pendingCall),
		logger:  logger,
	}
}

// Add registers a new pending call on an item-added signal.
// Duplicate adds for the same id are logged and ignored.
func (a *ToolCallAssembler) Add(itemID, callID, name string) {
	if _, exists := a.pending[itemID]; exists {
		a.logger.Warn("duplicate tool call item added, ignoring", "item_id", itemID, "name", name)
		return
	}
	a.pending[itemID] = &pendingCall{callID: callID, name: name}
}

// AppendArguments appends an argument fragment to the pending call.
// A fragment with no matching pending call is logged and dropped; the
// assembler never fabricates state from an orphaned delta.
func (a *ToolCallAssembler) AppendArguments(itemID, fragment string) {
	pc, exists := a.pending[itemID]
	if !exists {
		a.logger.Warn("argument delta for unknown tool call, dropping", "item_id", itemID)
		return
	}
	pc.args.WriteString(fragment)
}

// Finish finalizes a call on an arguments-done signal and removes it from the
// pending map. finalArgs, when non-empty, replaces the accumulated buffer
// (some vendors resend the complete argument string on done). Returns false
// when no pending call exists for the id.
func (a *ToolCallAssembler) Finish(itemID, finalArgs string) (*ToolCall, bool) {
	pc, exists := a.pending[itemID]
	if !exists {
		a.logger.Warn("arguments done for unknown tool call, dropping", "item_id", itemID)
		return nil, false
	}
	delete(a.pending, itemID)

	args := pc.args.String()
	if finalArgs != "" {
		args = finalArgs
	}
	return &ToolCall{
		ID:        itemID,
		CallID:    pc.callID,
		Name:      pc.name,
		Arguments: args,
		Status:    ToolCallFinalized,
	}, true
}

// FlushPending drains every still-pending call at stream end. Calls with a
// non-empty name are returned best-effort (partial arguments included) rather
// than silently discarded; nameless entries are dropped with a warning. The
// pending map is empty afterward. Results are ordered by item id so flush
// output is deterministic.
func (a *ToolCallAssembler) FlushPending() []*ToolCall {
	ids := make([]string, 0, len(a.pending))
	for id := range a.pending {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var flushed []*ToolCall
	for _, id := range ids {
		pc := a.pending[id]
		delete(a.pending, id)

		if pc.name == "" {
			a.logger.Warn("dropping nameless incomplete tool call at stream end", "item_id", id)
			continue
		}
		a.logger.Warn("flushing incomplete tool call at stream end",
			"item_id", id, "name", pc.name, "partial_args_len", pc.args.Len())
		flushed = append(flushed, &ToolCall{
			ID:        id,
			CallID:    pc.callID,
			Name:      pc.name,
			Arguments: pc.args.String(),
			Status:    ToolCallPartial,
		})
	}
	return flushed
}

// PendingCount reports how many calls are still accumulating.
func (a *ToolCallAssembler) PendingCount() int {
	return len(a.pending)
}
