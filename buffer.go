package llmstream

import (
	"sort"
	"strings"

	"golang.org/x/time/rate"
)

// Default flush tuning. At most ~20 flushes/second per identifier with a small
// burst; once the limiter runs dry, text coalesces into larger flushes until
// the pending size threshold forces one out. Total content is never altered,
// only regrouped.
const (
	defaultFlushRate    = rate.Limit(20)
	defaultFlushBurst   = 4
	defaultMaxPending   = 512
	unlimitedFlushLimit = rate.Inf
)

// Flush is one coalesced emission for a single identifier.
type Flush struct {
	ID      string
	Content string
	Order   int
}

// DeltaBuffer coalesces small text increments into bounded-rate flushes.
// Each identifier has independent pending state and an independent order
// counter; content belonging to different identifiers is never merged.
// The buffer is owned by one stream task and needs no locking.
type DeltaBuffer struct {
	limit      rate.Limit
	burst      int
	maxPending int

	states map[string]*bufferState
}

type bufferState struct {
	pending strings.Builder
	limiter *rate.Limiter
	order   int
}

// NewDeltaBuffer creates a buffer with the default cadence.
func NewDeltaBuffer() *DeltaBuffer {
	return &DeltaBuffer{
		limit:      defaultFlushRate,
		burst:      defaultFlushBurst,
		maxPending: defaultMaxPending,
		states:     make(map[string]*bufferState),
	}
}

// NewUnbufferedDeltaBuffer creates a buffer that flushes every append
// immediately. Used by tests and by callers that do their own pacing.
func NewUnbufferedDeltaBuffer() *DeltaBuffer {
	b := NewDeltaBuffer()
	b.limit = unlimitedFlushLimit
	return b
}

func (b *DeltaBuffer) state(id string) *bufferState {
	s, ok := b.states[id]
	if !ok {
		s = &bufferState{limiter: rate.NewLimiter(b.limit, b.burst)}
		b.states[id] = s
	}
	return s
}

// Track ensures buffering state exists for an identifier without appending
// content, so a later FlushAll covers items that never produced text.
func (b *DeltaBuffer) Track(id string) {
	b.state(id)
}

// Append adds a delta to the identifier's pending buffer and reports whether
// a flush is due. A flush fires when the rate limiter grants one or when the
// pending size crosses the threshold; otherwise the text stays pending.
func (b *DeltaBuffer) Append(id, text string) (Flush, bool) {
	s := b.state(id)
	s.pending.WriteString(text)

	if s.pending.Len() >= b.maxPending || s.limiter.Allow() {
		return b.flushState(id, s)
	}
	return Flush{}, false
}

// FlushID drains the identifier's pending content, if any.
func (b *DeltaBuffer) FlushID(id string) (Flush, bool) {
	s, ok := b.states[id]
	if !ok || s.pending.Len() == 0 {
		return Flush{}, false
	}
	return b.flushState(id, s)
}

// FlushAll drains every identifier with non-empty pending content exactly
// once, in identifier order. Called on the stream teardown path; after it
// returns no bytes remain buffered.
func (b *DeltaBuffer) FlushAll() []Flush {
	ids := make([]string, 0, len(b.states))
	for id := range b.states {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var flushes []Flush
	for _, id := range ids {
		if f, ok := b.FlushID(id); ok {
			flushes = append(flushes, f)
		}
	}
	return flushes
}

// Pending reports the number of buffered bytes for an identifier.
func (b *DeltaBuffer) Pending(id string) int {
	s, ok := b.states[id]
	if !ok {
		return 0
	}
	return s.pending.Len()
}

// NextOrder hands out the identifier's next order value for events that are
// emitted on the same channel but bypass the pending buffer.
func (b *DeltaBuffer) NextOrder(id string) int {
	s := b.state(id)
	o := s.order
	s.order++
	return o
}

func (b *DeltaBuffer) flushState(id string, s *bufferState) (Flush, bool) {
	if s.pending.Len() == 0 {
		return Flush{}, false
	}
	f := Flush{ID: id, Content: s.pending.String(), Order: s.order}
	s.order++
	s.pending.Reset()
	return f, true
}
