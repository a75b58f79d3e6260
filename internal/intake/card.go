package intake

import "ticketbot/internal/domain"

// ConfirmationCard renders the terminal card for a recorded ticket.
func (s *Schema) ConfirmationCard(ticketID string, d Draft) domain.Card {
	return domain.Card{
		Title:  "Ticket recorded",
		Tone:   domain.ToneGood,
		Facts:  s.facts(ticketID, d),
		Body:   d.Get(s.BodyKey),
		Footer: "Please confirm the details above.",
	}
}

// ErrorCard renders the terminal card for a ticket whose spreadsheet write
// failed. The ticket id stays visible but is explicitly marked unwritten,
// and the raw error text is surfaced so the user can retry or escalate.
func (s *Schema) ErrorCard(ticketID string, d Draft, errText string) domain.Card {
	facts := s.facts(ticketID+" (not written)", d)
	facts = append(facts, domain.Fact{Label: "Error", Value: errText})
	return domain.Card{
		Title:  "Ticket could not be recorded",
		Tone:   domain.ToneAttention,
		Facts:  facts,
		Body:   d.Get(s.BodyKey),
		Footer: "The record was not written. Please submit again or contact the team.",
	}
}

func (s *Schema) facts(ticketValue string, d Draft) []domain.Fact {
	facts := []domain.Fact{{Label: "Ticket number", Value: ticketValue}}
	for _, spec := range s.Facts {
		v := spec.Value(d)
		if spec.Optional && v == "" {
			continue
		}
		facts = append(facts, domain.Fact{Label: spec.Label, Value: v})
	}
	return facts
}
