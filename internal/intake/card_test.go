package intake

import (
	"strings"
	"testing"

	"ticketbot/internal/domain"
)

func factValue(card domain.Card, label string) (string, bool) {
	for _, f := range card.Facts {
		if f.Label == label {
			return f.Value, true
		}
	}
	return "", false
}

func TestConfirmationCard(t *testing.T) {
	s := IssueSchema()
	d := Draft{
		issueEnvironment: "production",
		issueProduct:     "slots",
		issueDate:        "2025-03-09",
		issueTime:        "14:30",
		issueSeverity:    "P1",
		issueOperation:   "spins hang",
		fieldSubmitter:   "alex",
	}

	card := s.ConfirmationCard("ISS-20250309-ABC", d)
	if card.Tone != domain.ToneGood {
		t.Errorf("tone = %v, want good", card.Tone)
	}
	if card.Facts[0].Label != "Ticket number" || card.Facts[0].Value != "ISS-20250309-ABC" {
		t.Errorf("first fact = %+v, want the ticket number", card.Facts[0])
	}
	if v, _ := factValue(card, "Issue found time"); v != "2025-03-09 14:30" {
		t.Errorf("issue found time fact = %q", v)
	}
	if card.Body != "spins hang" {
		t.Errorf("body = %q, want the operation text", card.Body)
	}
}

func TestConfirmationCard_OptionalFactsDropped(t *testing.T) {
	s := IssueSchema()
	d := Draft{issueEnvironment: "production", fieldSubmitter: "alex"}

	card := s.ConfirmationCard("ISS-1", d)
	for _, label := range []string{"UserID", "Bet order", "Error code"} {
		if _, ok := factValue(card, label); ok {
			t.Errorf("optional empty fact %q should be dropped", label)
		}
	}
	// Non-optional facts stay visible even when empty.
	if _, ok := factValue(card, "Severity"); !ok {
		t.Error("required fact Severity missing")
	}
}

func TestErrorCard(t *testing.T) {
	s := RequirementSchema()
	d := Draft{reqDepartment: "Growth", reqIssue: "no VIP filter", fieldSubmitter: "alex"}

	card := s.ErrorCard("REQ-20250701-XYZ", d, "googleapi: 403 forbidden")
	if card.Tone != domain.ToneAttention {
		t.Errorf("tone = %v, want attention", card.Tone)
	}
	if !strings.Contains(card.Facts[0].Value, "REQ-20250701-XYZ") {
		t.Errorf("ticket id missing from %q", card.Facts[0].Value)
	}
	if !strings.Contains(card.Facts[0].Value, "(not written)") {
		t.Errorf("ticket fact %q not marked unwritten", card.Facts[0].Value)
	}
	if v, ok := factValue(card, "Error"); !ok || v != "googleapi: 403 forbidden" {
		t.Errorf("error fact = %q, %v", v, ok)
	}
	if card.Body != "no VIP filter" {
		t.Errorf("body = %q", card.Body)
	}
}
