package channel

import (
	"testing"

	"ticketbot/internal/domain"

	"github.com/slack-go/slack"
)

func TestFormBlockIDRoundTrip(t *testing.T) {
	id := formActionsBlockID("issue", "f-123")
	category, formID := parseFormBlockID(id)
	if category != "issue" || formID != "f-123" {
		t.Errorf("parsed (%q, %q)", category, formID)
	}
}

func TestParseFormBlockID_Malformed(t *testing.T) {
	for _, blockID := range []string{"", "form:issue", "card:issue:f-1", "nonsense"} {
		if category, formID := parseFormBlockID(blockID); category != "" || formID != "" {
			t.Errorf("parseFormBlockID(%q) = (%q, %q), want empty", blockID, category, formID)
		}
	}
}

func TestCollectFormValues(t *testing.T) {
	state := &slack.BlockActionStates{
		Values: map[string]map[string]slack.BlockAction{
			"operation": {"operation": {Value: "opened the shop"}},
			"environment": {"environment": {
				SelectedOption: slack.OptionBlockObject{Value: "production"},
			}},
			"issue_date": {"issue_date": {SelectedDate: "2025-03-09"}},
			"issue_time": {"issue_time": {SelectedTime: "14:30"}},
			"error_code": {"error_code": {}}, // untouched input, no value
		},
	}

	values := collectFormValues(state)
	want := map[string]string{
		"operation":   "opened the shop",
		"environment": "production",
		"issue_date":  "2025-03-09",
		"issue_time":  "14:30",
	}
	if len(values) != len(want) {
		t.Fatalf("values = %v", values)
	}
	for k, v := range want {
		if values[k] != v {
			t.Errorf("values[%q] = %q, want %q", k, values[k], v)
		}
	}
}

func TestCollectFormValues_NilState(t *testing.T) {
	if values := collectFormValues(nil); len(values) != 0 {
		t.Errorf("values = %v, want empty", values)
	}
}

func TestFormBlocks(t *testing.T) {
	form := domain.Form{
		ID:       "f-1",
		Category: "issue",
		Title:    "SRE Ticket Record",
		Intro:    "Please fill in the details.",
		Fields: []domain.FormField{
			{ID: "environment", Label: "Environment", Kind: domain.FieldChoice, Required: true, Options: []string{"production", "staging"}},
			{ID: "operation", Label: "Operation", Kind: domain.FieldMultiline, Required: true},
			{ID: "issue_date", Label: "Date", Kind: domain.FieldDate},
			{ID: "error_code", Label: "Error code", Kind: domain.FieldText, Placeholder: "e.g. ERR3331"},
		},
	}

	blocks := formBlocks(form)
	// header + intro + 4 inputs + actions
	if len(blocks) != 7 {
		t.Fatalf("blocks = %d, want 7", len(blocks))
	}

	input, ok := blocks[2].(*slack.InputBlock)
	if !ok {
		t.Fatalf("block 2 is %T, want InputBlock", blocks[2])
	}
	if input.BlockID != "environment" || input.Optional {
		t.Errorf("first input = %+v", input)
	}
	if input.Label.Text != "Environment *" {
		t.Errorf("required label = %q", input.Label.Text)
	}

	optional, ok := blocks[4].(*slack.InputBlock)
	if !ok || !optional.Optional {
		t.Errorf("non-required field should render as an optional input, got %+v", blocks[4])
	}

	actions, ok := blocks[6].(*slack.ActionBlock)
	if !ok {
		t.Fatalf("last block is %T, want ActionBlock", blocks[6])
	}
	if actions.BlockID != "form:issue:f-1" {
		t.Errorf("actions block id = %q", actions.BlockID)
	}
	if n := len(actions.Elements.ElementSet); n != 2 {
		t.Errorf("action elements = %d, want submit and cancel", n)
	}
}

func TestCardBlocks_Tone(t *testing.T) {
	good := cardBlocks(domain.Card{Title: "Ticket recorded", Tone: domain.ToneGood})
	header, ok := good[0].(*slack.HeaderBlock)
	if !ok {
		t.Fatalf("first block is %T", good[0])
	}
	if header.Text.Text != "✅ Ticket recorded" {
		t.Errorf("good header = %q", header.Text.Text)
	}

	bad := cardBlocks(domain.Card{Title: "Ticket could not be recorded", Tone: domain.ToneAttention})
	header = bad[0].(*slack.HeaderBlock)
	if header.Text.Text != "❌ Ticket could not be recorded" {
		t.Errorf("attention header = %q", header.Text.Text)
	}
}

func TestCardBlocks_Sections(t *testing.T) {
	card := domain.Card{
		Title:  "Ticket recorded",
		Tone:   domain.ToneGood,
		Facts:  []domain.Fact{{Label: "Ticket number", Value: "ISS-1"}},
		Body:   "spins hang",
		Footer: "Please confirm.",
	}
	// header + facts + divider + body + footer
	if n := len(cardBlocks(card)); n != 5 {
		t.Errorf("blocks = %d, want 5", n)
	}

	bare := domain.Card{Title: "Ticket recorded", Facts: []domain.Fact{{Label: "Ticket number", Value: "ISS-1"}}}
	// header + facts only
	if n := len(cardBlocks(bare)); n != 2 {
		t.Errorf("bare blocks = %d, want 2", n)
	}
}
