// Package intake owns the per-category ticket flow: try to auto-create a
// record from pasted free text, fall back to an interactive form, and render
// the terminal confirmation or error card once a record is resolved.
package intake

import (
	"time"

	"ticketbot/internal/domain"
	"ticketbot/internal/extract"
)

// Draft is an in-progress record: field name to string value. A draft is
// never written to the spreadsheet without a ticket id stamped by the
// handler, and always passes through the schema's row mapping first.
type Draft map[string]string

// Get returns the value for key, or empty string when absent.
func (d Draft) Get(key string) string { return d[key] }

// FactSpec declares one fact line on a confirmation or error card. Optional
// facts are dropped when their value is empty.
type FactSpec struct {
	Label    string
	Value    func(d Draft) string
	Optional bool
}

// Schema is the closed description of one ticket category: its form
// descriptor, extraction rules, defaults, row mapping, and card layout.
// Adding a category is a data change, not new control flow.
type Schema struct {
	Tag       string // category tag, e.g. "issue"
	Prefix    string // ticket number prefix, e.g. "ISS"
	FormTitle string
	FormIntro string
	Fields    []domain.FormField

	// NewExtractor builds the category's field extractor with the configured
	// table-detection threshold.
	NewExtractor func(minLabels int) *extract.Extractor

	// ApplyDefaults backfills gaps left by extraction before persistence.
	ApplyDefaults func(d Draft, now time.Time)

	// Row orders the draft into the spreadsheet's fixed column layout.
	Row func(ticketID string, d Draft, link string, now time.Time) []string

	Facts   []FactSpec
	BodyKey string // draft key rendered as the free-text block under the facts
}

// value is a FactSpec helper for plain single-key facts.
func value(key string) func(Draft) string {
	return func(d Draft) string { return d.Get(key) }
}
