package domain

import "time"

// EventKind discriminates the inbound event types delivered by a transport.
type EventKind string

const (
	KindMessage        EventKind = "message"
	KindFormSubmission EventKind = "form_submission"
	KindBotAdded       EventKind = "bot_added"
)

// InboundEvent is one turn's worth of input from the chat platform. It is
// owned by the dispatcher for the duration of the turn.
type InboundEvent struct {
	Kind           EventKind
	Text           string
	SenderID       string
	SenderName     string
	TeamID         string
	ChannelID      string
	ChannelName    string // may be a raw platform handle; see Directory
	ConversationID string
	MessageID      string
	Timestamp      time.Time
	Form           *FormSubmission // set when Kind == KindFormSubmission
}

// FormSubmission carries the payload of a submitted (or cancelled) form.
type FormSubmission struct {
	Action   string // "submit" | "cancel"
	Category string // category tag stamped into the form; empty defaults to "issue"
	FormID   string
	Values   map[string]string
}

// Submitter returns the best available identity for the sender.
func (e InboundEvent) Submitter() string {
	if e.SenderName != "" {
		return e.SenderName
	}
	if e.SenderID != "" {
		return e.SenderID
	}
	return "unknown user"
}

// Cancelled reports whether the event is a form cancellation.
func (e InboundEvent) Cancelled() bool {
	return e.Form != nil && e.Form.Action == "cancel"
}
