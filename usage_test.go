package llmstream

import "testing"

func TestMapVendorUsage(t *testing.T) {
	u := &VendorUsage{
		InputTokens:  1200,
		OutputTokens: 340,
		CachedTokens: 800,
		ImageCount:   2,
		Extra:        map[string]any{"stop_reason": "end_turn"},
	}

	rec, ok := MapVendorUsage("anthropic", "claude-sonnet-4-20250514", u)
	if !ok {
		t.Fatal("MapVendorUsage returned false for a populated payload")
	}
	if rec.Model != "claude-sonnet-4-20250514" {
		t.Errorf("Model = %q", rec.Model)
	}
	if rec.InputTokens != 1200 || rec.OutputTokens != 340 || rec.CachedTokens != 800 || rec.ImageCount != 2 {
		t.Errorf("token fields = %+v, want verbatim copy", rec)
	}
	if rec.Metadata["provider"] != "anthropic" {
		t.Errorf("Metadata[provider] = %v", rec.Metadata["provider"])
	}
	if rec.Metadata["stop_reason"] != "end_turn" {
		t.Errorf("vendor extra lost: %v", rec.Metadata)
	}
	if _, ok := rec.Metadata["estimated_cost_usd"]; !ok {
		t.Error("known model should carry an estimated cost")
	}
}

func TestMapVendorUsage_NilPayload(t *testing.T) {
	if _, ok := MapVendorUsage("openai", "gpt-4o", nil); ok {
		t.Error("nil vendor usage must not produce a record")
	}
}

func TestEstimateCostUSD(t *testing.T) {
	rec := UsageRecord{InputTokens: 1_000_000, OutputTokens: 1_000_000}

	cost, ok := EstimateCostUSD("anthropic", "claude-sonnet-4-20250514", rec)
	if !ok {
		t.Fatal("EstimateCostUSD returned false for a registry model")
	}
	// 1M input at $3 + 1M output at $15.
	if cost < 17.99 || cost > 18.01 {
		t.Errorf("cost = %f, want 18.00", cost)
	}

	if _, ok := EstimateCostUSD("anthropic", "no-such-model", rec); ok {
		t.Error("unknown model should not be priced")
	}
}

func TestMemoryLedger(t *testing.T) {
	l := NewMemoryLedger()
	l.Record(UsageRecord{Model: "a"})
	l.Record(UsageRecord{Model: "b"})

	records := l.Records()
	if len(records) != 2 || records[0].Model != "a" || records[1].Model != "b" {
		t.Errorf("Records = %+v, want append order preserved", records)
	}

	// The returned slice is a copy.
	records[0].Model = "mutated"
	if l.Records()[0].Model != "a" {
		t.Error("Records returned internal state")
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens("gpt-4o", ""); got != 0 {
		t.Errorf("empty text = %d tokens, want 0", got)
	}
	text := "The quick brown fox jumps over the lazy dog."
	if got := EstimateTokens("totally-unknown-model", text); got <= 0 {
		t.Errorf("estimate = %d, want positive fallback count", got)
	}
}
