package domain

import "context"

// Transport is the interface for a chat platform connection (Slack, console).
type Transport interface {
	Name() string
	Start(ctx context.Context, bus MessageBus) error
	Stop() error
	Messenger
	Directory
}

// Messenger is the outbound half of the chat platform: plain text, form
// descriptors, and cards. Update-or-fallback semantics are owned by the
// caller, not the transport: UpdateCard returns an error and the caller
// decides to SendCard instead.
type Messenger interface {
	SendText(ctx context.Context, conversationID, text string) error
	SendForm(ctx context.Context, conversationID string, form Form) error
	SendCard(ctx context.Context, conversationID string, card Card) error
	UpdateCard(ctx context.Context, conversationID, messageID string, card Card) error

	// Permalink returns a deep link to the message identified by messageID.
	Permalink(ctx context.Context, conversationID, messageID string) (string, error)
}

// Directory resolves platform identifiers to human-readable names.
type Directory interface {
	// ChannelName returns the display name for a channel. Either id being
	// empty, or a lookup failure, disables name resolution for the turn.
	ChannelName(ctx context.Context, teamID, channelID string) (string, error)
}

// RowAppender appends one row of ordered string cells to a spreadsheet tab.
type RowAppender interface {
	// Enabled reports whether the integration is configured. When false the
	// intake flow skips the write entirely.
	Enabled() bool
	Append(ctx context.Context, sheetID, sheetName string, row []string) error
}
