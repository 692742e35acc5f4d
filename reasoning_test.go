package llmstream

import "testing"

func TestReasoningTracker_CompositeIdentity(t *testing.T) {
	r := NewReasoningTracker()

	key0, order0 := r.Append("item-1", 0, "first ")
	if key0 != "item-1-0" {
		t.Errorf("key = %q, want item-1-0", key0)
	}
	if order0 != 0 {
		t.Errorf("first order = %d, want 0", order0)
	}

	// Second segment of the same item is an independent channel.
	key1, order1 := r.Append("item-1", 1, "second ")
	if key1 != "item-1-1" {
		t.Errorf("key = %q, want item-1-1", key1)
	}
	if order1 != 0 {
		t.Errorf("segment 1 first order = %d, want its own counter starting at 0", order1)
	}

	_, order0b := r.Append("item-1", 0, "more")
	if order0b != 1 {
		t.Errorf("segment 0 second order = %d, want 1", order0b)
	}
}

func TestReasoningTracker_CompleteAggregates(t *testing.T) {
	r := NewReasoningTracker()
	r.Append("item-1", 0, "think ")
	r.Append("item-1", 0, "hard")

	key, content := r.Complete("item-1", 0)
	if key != "item-1-0" || content != "think hard" {
		t.Errorf("Complete = (%q, %q), want (item-1-0, \"think hard\")", key, content)
	}
}

func TestReasoningTracker_FlushIncomplete(t *testing.T) {
	r := NewReasoningTracker()
	r.Append("item-1", 0, "done segment")
	r.Complete("item-1", 0)
	r.Append("item-1", 1, "interrupted")
	r.Append("item-2", 0, "") // empty aggregate, nothing to flush

	flushed := r.FlushIncomplete()
	if len(flushed) != 1 {
		t.Fatalf("FlushIncomplete returned %d aggregates, want 1", len(flushed))
	}
	if flushed[0].Key != "item-1-1" || flushed[0].Content != "interrupted" {
		t.Errorf("flushed = %+v, want the interrupted segment", flushed[0])
	}

	if again := r.FlushIncomplete(); len(again) != 0 {
		t.Errorf("second flush returned %d aggregates, want 0", len(again))
	}
}

func TestReasoningTracker_AggregateFor(t *testing.T) {
	r := NewReasoningTracker()
	r.Append("item-1", 0, "part one. ")
	r.Append("item-1", 1, "part two.")
	r.Append("item-2", 0, "unrelated")

	if got := r.AggregateFor("item-1"); got != "part one. part two." {
		t.Errorf("AggregateFor = %q, want segments joined in index order", got)
	}
	if got := r.AggregateFor("missing"); got != "" {
		t.Errorf("AggregateFor unknown item = %q, want empty", got)
	}
}

func TestReasoningTracker_AggregateForSparseIndexes(t *testing.T) {
	r := NewReasoningTracker()

	// Numbering starts at 1 and skips an index, as some vendors do.
	r.Append("item-1", 3, "last.")
	r.Append("item-1", 1, "first. ")

	if got := r.AggregateFor("item-1"); got != "first. last." {
		t.Errorf("AggregateFor = %q, want sparse segments joined in index order", got)
	}

	// A longer base id sharing the prefix is a different item.
	r.Append("item-1-extra", 0, "other")
	if got := r.AggregateFor("item-1"); got != "first. last." {
		t.Errorf("AggregateFor = %q, want unrelated items excluded", got)
	}
}
