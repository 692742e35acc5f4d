package llmstream

import (
	"sort"
	"strconv"
	"strings"
)

// ReasoningKey builds the composite identity of one reasoning segment:
// a single reasoning item may be split into multiple ordered summary
// segments, each with its own delta ordering and aggregate.
func ReasoningKey(baseItemID string, summaryIndex int) string {
	return baseItemID + "-" + strconv.Itoa(summaryIndex)
}

// ReasoningAggregate is the accumulated text of one reasoning segment.
type ReasoningAggregate struct {
	Key     string
	Content string
}

// ReasoningTracker separates hidden thinking streams from visible content.
// Order counters here are independent of visible-content order counters for
// the same base item; the two channels never share positions. Owned by one
// stream task, no locking.
type ReasoningTracker struct {
	states map[string]*reasoningState
}

type reasoningState struct {
	order    int
	full     strings.Builder
	complete bool
}

// NewReasoningTracker creates an empty tracker.
func NewReasoningTracker() *ReasoningTracker {
	return &ReasoningTracker{states: make(map[string]*reasoningState)}
}

func (t *ReasoningTracker) state(key string) *reasoningState {
	s, ok := t.states[key]
	if !ok {
		s = &reasoningState{}
		t.states[key] = s
	}
	return s
}

// Append records a reasoning delta and returns the composite key plus the
// delta's order within that key.
func (t *ReasoningTracker) Append(baseItemID string, summaryIndex int, text string) (key string, order int) {
	key = ReasoningKey(baseItemID, summaryIndex)
	s := t.state(key)
	s.full.WriteString(text)
	order = s.order
	s.order++
	return key, order
}

// Complete marks a segment done and returns its full aggregated text.
func (t *ReasoningTracker) Complete(baseItemID string, summaryIndex int) (key, content string) {
	key = ReasoningKey(baseItemID, summaryIndex)
	s := t.state(key)
	s.complete = true
	return key, s.full.String()
}

// FlushIncomplete returns the aggregates of every segment that streamed
// deltas but never saw its terminal signal, in key order. Used on teardown so
// a cancelled stream still surfaces the reasoning it buffered. Flushed
// segments are marked complete so a second flush returns nothing.
func (t *ReasoningTracker) FlushIncomplete() []ReasoningAggregate {
	keys := make([]string, 0, len(t.states))
	for k := range t.states {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []ReasoningAggregate
	for _, k := range keys {
		s := t.states[k]
		if s.complete || s.full.Len() == 0 {
			continue
		}
		s.complete = true
		out = append(out, ReasoningAggregate{Key: k, Content: s.full.String()})
	}
	return out
}

// Content returns the aggregate accumulated so far for a segment.
func (t *ReasoningTracker) Content(baseItemID string, summaryIndex int) string {
	s, ok := t.states[ReasoningKey(baseItemID, summaryIndex)]
	if !ok {
		return ""
	}
	return s.full.String()
}

// AggregateFor concatenates every segment aggregate belonging to one base
// item, in summary-index order. Used when assembling message_complete for a
// message that also produced reasoning. Vendors may start numbering above
// zero or skip indexes, so the tracked keys are scanned rather than probed
// sequentially.
func (t *ReasoningTracker) AggregateFor(baseItemID string) string {
	prefix := baseItemID + "-"
	var indexes []int
	for key := range t.states {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		idx, err := strconv.Atoi(key[len(prefix):])
		if err != nil {
			// Key belongs to a longer base item id that shares the prefix.
			continue
		}
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	var sb strings.Builder
	for _, idx := range indexes {
		sb.WriteString(t.states[ReasoningKey(baseItemID, idx)].full.String())
	}
	return sb.String()
}
