package llmstream

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// UsageRecord is the canonical usage tuple appended to a cost ledger.
type UsageRecord struct {
	Model        string         `json:"model"`
	InputTokens  int            `json:"input_tokens"`
	OutputTokens int            `json:"output_tokens"`
	CachedTokens int            `json:"cached_tokens"`
	ImageCount   int            `json:"image_count"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Ledger is the externally owned, append-only cost sink. Record has no
// return value and must be safe under concurrent appends from independent
// streams.
type Ledger interface {
	Record(UsageRecord)
}

// MemoryLedger is an in-process Ledger. Useful for tests and for callers
// that periodically drain usage into their own accounting.
type MemoryLedger struct {
	mu      sync.Mutex
	records []UsageRecord
}

// NewMemoryLedger creates an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{}
}

// Record appends one usage record.
func (l *MemoryLedger) Record(rec UsageRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, rec)
}

// Records returns a copy of everything recorded so far.
func (l *MemoryLedger) Records() []UsageRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]UsageRecord, len(l.records))
	copy(out, l.records)
	return out
}

// MapVendorUsage converts a vendor usage payload into a UsageRecord.
// Returns false when the vendor omitted usage entirely (nil payload), in
// which case nothing should be recorded. Pricing metadata is attached when
// the capability registry knows the model.
func MapVendorUsage(provider, model string, u *VendorUsage) (UsageRecord, bool) {
	if u == nil {
		return UsageRecord{}, false
	}

	rec := UsageRecord{
		Model:        model,
		InputTokens:  u.InputTokens,
		OutputTokens: u.OutputTokens,
		CachedTokens: u.CachedTokens,
		ImageCount:   u.ImageCount,
	}

	meta := make(map[string]any, len(u.Extra)+2)
	for k, v := range u.Extra {
		meta[k] = v
	}
	meta["provider"] = provider
	if cost, ok := EstimateCostUSD(provider, model, rec); ok {
		meta["estimated_cost_usd"] = cost
	}
	rec.Metadata = meta

	return rec, true
}

// EstimateCostUSD prices a usage record from the capability registry's
// per-million-token rates. Returns false when the model is unknown.
func EstimateCostUSD(provider, model string, rec UsageRecord) (float64, bool) {
	modelCap, err := GetCapabilityRegistry().GetModelCapability(provider, model)
	if err != nil {
		return 0, false
	}
	p := modelCap.Pricing
	if p.InputPer1M == 0 && p.OutputPer1M == 0 {
		return 0, false
	}
	cost := float64(rec.InputTokens)/1e6*p.InputPer1M +
		float64(rec.OutputTokens)/1e6*p.OutputPer1M +
		float64(rec.CachedTokens)/1e6*p.CacheReadPer1M
	return cost, true
}

// EstimateTokens is the best-effort fallback for payloads with no vendor
// usage field at all (embeddings and similar unmetered calls). It tries the
// model's tokenizer and degrades to the rough 4-characters-per-token
// heuristic when the encoding is unavailable (offline, unknown model).
func EstimateTokens(model, text string) int {
	if text == "" {
		return 0
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
	}
	if err == nil && enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return (len(text) + 3) / 4
}
