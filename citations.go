package llmstream

import (
	"fmt"
	"strings"
)

// CitationRecord is one interned source.
type CitationRecord struct {
	Title string
	URL   string

	// Index is 1-based, assigned in first-seen order, never reassigned.
	Index int
}

// CitationTracker interns cited sources into stable numbered footnotes for
// the life of one response. Repeated citations of the same URL reuse the
// existing index. Owned by one stream task, no locking.
type CitationTracker struct {
	byURL   map[string]*CitationRecord
	ordered []*CitationRecord
}

// NewCitationTracker creates an empty tracker.
func NewCitationTracker() *CitationTracker {
	return &CitationTracker{byURL: make(map[string]*CitationRecord)}
}

// Cite interns a source and returns the inline marker to append to the
// in-flight visible content, e.g. " [1]". The first sighting of a URL also
// records the title; later sightings keep the original title and index.
func (t *CitationTracker) Cite(title, url string) string {
	rec, ok := t.byURL[url]
	if !ok {
		rec = &CitationRecord{Title: title, URL: url, Index: len(t.ordered) + 1}
		t.byURL[url] = rec
		t.ordered = append(t.ordered, rec)
	}
	return fmt.Sprintf(" [%d]", rec.Index)
}

// Len reports how many distinct sources were cited.
func (t *CitationTracker) Len() int {
	return len(t.ordered)
}

// Footnotes renders the footnote block listing every distinct source once,
// in first-seen order. Returns "" when nothing was cited.
func (t *CitationTracker) Footnotes() string {
	if len(t.ordered) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\n\nSources:\n")
	for _, rec := range t.ordered {
		title := rec.Title
		if title == "" {
			title = rec.URL
		}
		fmt.Fprintf(&sb, "[%d] %s (%s)\n", rec.Index, title, rec.URL)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Records returns the interned sources in first-seen order.
func (t *CitationTracker) Records() []CitationRecord {
	out := make([]CitationRecord, len(t.ordered))
	for i, rec := range t.ordered {
		out[i] = *rec
	}
	return out
}
