package llmstream

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// TranslatorOptions configures one canonical translation run. Every field is
// optional; zero values mean "no pause switch", "no ledger", "no request
// logging" and default buffering.
type TranslatorOptions struct {
	// Pause is the process-wide cooperative suspend/resume switch shared
	// across all active streams.
	Pause *PauseController

	// Ledger receives canonical usage records.
	Ledger Ledger

	// RequestLogger receives fire-and-forget response/error payloads.
	RequestLogger RequestLogger

	// RequestID keys log entries; minted when empty.
	RequestID string

	// Logger is the structured logger for protocol warnings.
	Logger *slog.Logger

	// Buffer overrides the delta buffer (tests use an unbuffered one).
	Buffer *DeltaBuffer
}

// Translator is the canonical event state machine: it drives one raw vendor
// stream to completion, dispatches each raw event to the handlers relevant to
// its kind, and yields canonical events lazily. One translator serves exactly
// one stream; all of its state is owned by the translation goroutine.
type Translator struct {
	provider ProviderID
	model    string
	opts     TranslatorOptions
	logger   *slog.Logger
}

// NewTranslator creates a translator for one stream of the given provider
// and model.
func NewTranslator(provider ProviderID, model string, opts TranslatorOptions) *Translator {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.RequestID == "" {
		opts.RequestID = NewRequestID()
	}
	if opts.Buffer == nil {
		opts.Buffer = NewDeltaBuffer()
	}
	return &Translator{
		provider: provider,
		model:    model,
		opts:     opts,
		logger:   opts.Logger.With("provider", provider.String(), "request_id", opts.RequestID),
	}
}

// Translate consumes the raw vendor event channel and returns the canonical
// event sequence: finite, lazily produced, not restartable. The caller must
// drain the returned channel until it is closed, including after cancelling
// ctx; cancellation is cooperative and the teardown path still delivers
// whatever content was buffered before the channel closes.
func (t *Translator) Translate(ctx context.Context, raw <-chan RawEvent) <-chan StreamEvent {
	events := make(chan StreamEvent, 16)
	go t.run(ctx, raw, events)
	return events
}

// streamState is the per-stream mutable state. Exclusively owned by the
// translation goroutine; no synchronization needed.
type streamState struct {
	buffer    *DeltaBuffer
	assembler *ToolCallAssembler
	reasoning *ReasoningTracker
	citations *CitationTracker

	// content aggregates the full visible text per item id, citation
	// markers included, for message_complete assembly.
	content map[string]*strings.Builder

	// toolStarted guards the at-most-once tool_start invariant across the
	// finalize and teardown paths.
	toolStarted map[string]bool

	tornDown bool
}

func (t *Translator) run(ctx context.Context, raw <-chan RawEvent, events chan<- StreamEvent) {
	defer close(events)

	st := &streamState{
		buffer:      t.opts.Buffer,
		assembler:   NewToolCallAssembler(t.logger),
		reasoning:   NewReasoningTracker(),
		citations:   NewCitationTracker(),
		content:     make(map[string]*strings.Builder),
		toolStarted: make(map[string]bool),
	}

	// Internal processing faults are caught at this boundary: surface one
	// canonical error event, then still run the flush path.
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("translator fault", "panic", r)
			events <- StreamEvent{Type: EventError, Err: &StreamError{
				Provider: t.provider.String(),
				Phase:    "translate",
				Err:      fmt.Errorf("internal fault: %v", r),
			}}
			t.teardown(st, events)
		}
	}()

	for {
		// Suspension point: observe the shared pause switch before
		// fetching the next upstream event. Cancellation still wins
		// while paused.
		if err := t.opts.Pause.Wait(ctx); err != nil {
			t.finishCancelled(st, events, err)
			return
		}

		select {
		case <-ctx.Done():
			t.finishCancelled(st, events, ctx.Err())
			return

		case ev, ok := <-raw:
			if !ok {
				// Producer closed without a terminal event. A producer
				// bailing out on cancellation races the ctx.Done branch,
				// so report cancellation here too.
				if err := ctx.Err(); err != nil {
					t.finishCancelled(st, events, err)
					return
				}
				t.teardown(st, events)
				t.logResponse(nil)
				return
			}
			if done := t.handle(st, ev, events); done {
				return
			}
		}
	}
}

// handle dispatches one raw event. Returns true when the stream is finished.
// The raw union is matched exhaustively; kinds this translator does not use
// fall through as no-ops so newer adapters cannot crash older consumers.
func (t *Translator) handle(st *streamState, ev RawEvent, events chan<- StreamEvent) bool {
	switch ev.Kind {
	case RawItemAdded:
		switch ev.ItemType {
		case RawItemFunctionCall:
			st.assembler.Add(ev.ItemID, ev.CallID, ev.Name)
		case RawItemMessage:
			st.buffer.Track(ev.ItemID)
		case RawItemReasoning:
			// Reasoning segments materialize lazily on first delta.
		}

	case RawTextDelta:
		t.appendVisible(st, ev.ItemID, ev.Text, events)

	case RawCitation:
		marker := st.citations.Cite(ev.Title, ev.URL)
		t.appendVisible(st, ev.ItemID, marker, events)

	case RawTextDone:
		if f, ok := st.buffer.FlushID(ev.ItemID); ok {
			events <- StreamEvent{Type: EventMessageDelta, Content: f.Content, MessageID: f.ID, Order: f.Order}
		}
		content := ""
		if agg, ok := st.content[ev.ItemID]; ok {
			content = agg.String()
		}
		if content == "" {
			content = ev.Text
		}
		content += st.citations.Footnotes()
		events <- StreamEvent{
			Type:            EventMessageComplete,
			Content:         content,
			MessageID:       ev.ItemID,
			ThinkingContent: st.reasoning.AggregateFor(ev.ItemID),
		}

	case RawReasoningDelta:
		key, order := st.reasoning.Append(ev.ItemID, ev.SummaryIndex, ev.Text)
		events <- StreamEvent{Type: EventThinkingDelta, ThinkingContent: ev.Text, MessageID: key, Order: order}

	case RawReasoningDone:
		key, content := st.reasoning.Complete(ev.ItemID, ev.SummaryIndex)
		events <- StreamEvent{Type: EventThinkingComplete, ThinkingContent: content, MessageID: key}

	case RawToolArgsDelta:
		st.assembler.AppendArguments(ev.ItemID, ev.Text)

	case RawToolArgsDone:
		if tc, ok := st.assembler.Finish(ev.ItemID, ev.Text); ok && !st.toolStarted[tc.ID] {
			st.toolStarted[tc.ID] = true
			events <- StreamEvent{Type: EventToolStart, ToolCall: tc}
		}

	case RawUsage:
		if rec, ok := MapVendorUsage(t.provider.String(), t.model, ev.Usage); ok && t.opts.Ledger != nil {
			t.opts.Ledger.Record(rec)
		}

	case RawCompleted:
		t.teardown(st, events)
		t.logResponse(nil)
		return true

	case RawFailed:
		// Vendor-terminal failure: flush what we have, then surface one
		// canonical error and end without throwing to the caller.
		t.teardown(st, events)
		streamErr := &StreamError{Provider: t.provider.String(), Phase: "stream", Err: ev.Err}
		events <- StreamEvent{Type: EventError, Err: streamErr}
		t.logError(streamErr)
		return true

	default:
		// Unknown raw kind: forward compatibility, never crash.
	}
	return false
}

// appendVisible routes visible text through the delta buffer, emitting a
// message_delta when the throttler releases a flush.
func (t *Translator) appendVisible(st *streamState, itemID, text string, events chan<- StreamEvent) {
	agg, ok := st.content[itemID]
	if !ok {
		agg = &strings.Builder{}
		st.content[itemID] = agg
	}
	agg.WriteString(text)

	if f, ok := st.buffer.Append(itemID, text); ok {
		events <- StreamEvent{Type: EventMessageDelta, Content: f.Content, MessageID: f.ID, Order: f.Order}
	}
}

// finishCancelled runs the cooperative cancellation path: flush buffered
// content, then surface the cancellation as the final canonical error event.
func (t *Translator) finishCancelled(st *streamState, events chan<- StreamEvent, cause error) {
	t.teardown(st, events)
	streamErr := &StreamError{Provider: t.provider.String(), Phase: "stream", Err: cause}
	events <- StreamEvent{Type: EventError, Err: streamErr}
	t.logError(streamErr)
}

// teardown is the guaranteed flush path, run exactly once on every exit:
// normal completion, vendor failure, cancellation and internal fault. It
// drains every pending delta buffer, flushes incomplete reasoning aggregates
// and emits still-pending tool calls best-effort.
func (t *Translator) teardown(st *streamState, events chan<- StreamEvent) {
	if st.tornDown {
		return
	}
	st.tornDown = true

	for _, f := range st.buffer.FlushAll() {
		events <- StreamEvent{Type: EventMessageDelta, Content: f.Content, MessageID: f.ID, Order: f.Order}
	}
	for _, agg := range st.reasoning.FlushIncomplete() {
		events <- StreamEvent{Type: EventThinkingComplete, ThinkingContent: agg.Content, MessageID: agg.Key}
	}
	for _, tc := range st.assembler.FlushPending() {
		if st.toolStarted[tc.ID] {
			continue
		}
		st.toolStarted[tc.ID] = true
		events <- StreamEvent{Type: EventToolStart, ToolCall: tc}
	}
}

func (t *Translator) logResponse(payload any) {
	if t.opts.RequestLogger == nil {
		return
	}
	if payload == nil {
		payload = map[string]any{"model": t.model, "provider": t.provider.String()}
	}
	t.opts.RequestLogger.LogResponse(t.opts.RequestID, payload)
}

func (t *Translator) logError(err error) {
	if t.opts.RequestLogger == nil {
		return
	}
	t.opts.RequestLogger.LogError(t.opts.RequestID, err)
}
