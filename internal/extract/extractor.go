// Package extract turns free-form chat text that follows a labeled-table
// shape into field values. Parsing is pattern-based and format-specific:
// each category supplies a declarative list of fields (label pattern,
// optional sub-pattern, stop labels) and the extractor does a segment parse,
// capturing from each label up to the next known label or end of text.
package extract

import (
	"regexp"
	"strings"
)

// DefaultMinLabels is the number of detection labels that must match before
// a message is treated as a pasted table.
const DefaultMinLabels = 2

// Field describes one extractable field. When Sub is nil the field value is
// the first meaningful line of the captured segment. When Sub is set it is
// applied to the whole segment; a failed sub-match omits the field rather
// than erroring. SubFmt, when set, maps the sub-match groups onto one or
// more draft entries (e.g. splitting a datetime into date and time).
type Field struct {
	Name   string
	Label  *regexp.Regexp
	Stops  []*regexp.Regexp
	Sub    *regexp.Regexp
	SubFmt func(match []string) map[string]string
}

// Extractor is a table-format detector and field parser for one category.
type Extractor struct {
	fields    []Field
	detection []*regexp.Regexp
	minLabels int
}

// New builds an Extractor. minLabels <= 0 falls back to DefaultMinLabels.
func New(fields []Field, detection []*regexp.Regexp, minLabels int) *Extractor {
	if minLabels <= 0 {
		minLabels = DefaultMinLabels
	}
	return &Extractor{fields: fields, detection: detection, minLabels: minLabels}
}

// DetectTable reports whether text looks like the category's labeled table:
// at least minLabels of the detection patterns match. This is a deliberately
// loose heuristic; a false positive yields an incomplete draft that is
// backfilled with defaults, never rejected outright.
func (e *Extractor) DetectTable(text string) bool {
	count := 0
	for _, p := range e.detection {
		if p.MatchString(text) {
			count++
			if count >= e.minLabels {
				return true
			}
		}
	}
	return false
}

// Extract parses text into a partial draft. Fields whose label is absent, or
// whose sub-pattern does not match, are omitted; callers supply defaults
// before persisting. Extract never fails on arbitrary input.
func (e *Extractor) Extract(text string) map[string]string {
	draft := make(map[string]string)
	for _, f := range e.fields {
		seg, ok := e.segment(text, f)
		if !ok {
			continue
		}
		if f.Sub != nil {
			m := f.Sub.FindStringSubmatch(seg)
			if m == nil {
				continue
			}
			if f.SubFmt != nil {
				for k, v := range f.SubFmt(m) {
					if v != "" {
						draft[k] = v
					}
				}
			} else if v := strings.TrimSpace(m[0]); v != "" {
				draft[f.Name] = v
			}
			continue
		}
		if line := firstContentLine(seg); line != "" {
			draft[f.Name] = line
		}
	}
	return draft
}

// segment returns the text between the field's label and the earliest
// following stop label (or end of text).
func (e *Extractor) segment(text string, f Field) (string, bool) {
	loc := f.Label.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	seg := text[loc[1]:]
	end := len(seg)
	for _, stop := range f.Stops {
		if sl := stop.FindStringIndex(seg); sl != nil && sl[0] < end {
			end = sl[0]
		}
	}
	return seg[:end], true
}

// placeholderLine matches decoration-only lines (asterisk runs around a
// label in the pasted template).
var placeholderLine = regexp.MustCompile(`^[\s*＊]+$`)

// firstContentLine returns the first meaningful line of a segment: blank
// lines and placeholder runs are skipped, and label punctuation left over on
// the same line as the label is trimmed. Multi-line answers are truncated to
// this one line by design.
func firstContentLine(seg string) string {
	for line := range strings.Lines(seg) {
		if strings.TrimSpace(line) == "" || placeholderLine.MatchString(line) {
			continue
		}
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, ":：*＊")
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}
