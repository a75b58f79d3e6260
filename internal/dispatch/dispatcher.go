// Package dispatch is the top-level entry point for inbound events: it
// routes messages to the matching category handler and form submissions to
// the category tagged on the payload.
package dispatch

import (
	"context"
	"log/slog"

	"ticketbot/internal/domain"
	"ticketbot/internal/intake"
	"ticketbot/internal/metrics"
	"ticketbot/internal/route"
)

// defaultCategory is assumed when a submission payload carries no category
// tag (older forms predate the tag).
const defaultCategory = "issue"

// Dispatcher receives inbound events and delegates each to the right
// category handler. The handler registry is built once at startup.
type Dispatcher struct {
	router    *route.Router
	handlers  map[string]*intake.Handler
	messenger domain.Messenger
	directory domain.Directory
	logger    *slog.Logger
	welcome   string
}

// Options configures a Dispatcher.
type Options struct {
	Router    *route.Router
	Handlers  []*intake.Handler
	Messenger domain.Messenger
	Directory domain.Directory
	Logger    *slog.Logger
	Welcome   string
}

func New(opts Options) *Dispatcher {
	handlers := make(map[string]*intake.Handler, len(opts.Handlers))
	for _, h := range opts.Handlers {
		handlers[h.Tag()] = h
	}
	return &Dispatcher{
		router:    opts.Router,
		handlers:  handlers,
		messenger: opts.Messenger,
		directory: opts.Directory,
		logger:    opts.Logger,
		welcome:   opts.Welcome,
	}
}

// Run consumes the bus until the context is cancelled or the bus closes.
// Each event is handled to completion before the next is considered.
func (d *Dispatcher) Run(ctx context.Context, bus domain.MessageBus) {
	events := bus.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			d.HandleEvent(ctx, evt)
		}
	}
}

// HandleEvent processes a single inbound event.
func (d *Dispatcher) HandleEvent(ctx context.Context, evt domain.InboundEvent) {
	metrics.MessagesTotal.Inc()

	switch evt.Kind {
	case domain.KindFormSubmission:
		d.handleSubmission(ctx, evt)
	case domain.KindBotAdded:
		if d.welcome != "" {
			if err := d.messenger.SendText(ctx, evt.ConversationID, d.welcome); err != nil {
				d.logger.Error("welcome message failed", "err", err)
			}
		}
	case domain.KindMessage:
		d.handleMessage(ctx, evt)
	default:
		d.logger.Debug("unhandled event kind", "kind", evt.Kind)
	}
}

func (d *Dispatcher) handleSubmission(ctx context.Context, evt domain.InboundEvent) {
	if evt.Form == nil {
		d.logger.Warn("submission event without payload")
		return
	}

	// Cancellation is acknowledged regardless of which category the form
	// belonged to; nothing is written.
	if evt.Cancelled() {
		if err := d.messenger.SendText(ctx, evt.ConversationID, "Ticket creation cancelled."); err != nil {
			d.logger.Error("cancellation notice failed", "err", err)
		}
		return
	}

	tag := evt.Form.Category
	if tag == "" {
		tag = defaultCategory
	}
	handler, ok := d.handlers[tag]
	if !ok {
		d.logger.Warn("submission for unknown category", "category", tag)
		return
	}
	handler.HandleSubmit(ctx, evt)
}

func (d *Dispatcher) handleMessage(ctx context.Context, evt domain.InboundEvent) {
	name := evt.ChannelName
	if needsLookup(name, evt.ChannelID) {
		resolved, err := d.directory.ChannelName(ctx, evt.TeamID, evt.ChannelID)
		if err != nil {
			// Lookup failure disables name routing for this turn; with no
			// usable name the turn usually ends as a silent routing miss.
			d.logger.Warn("channel name lookup failed", "channel_id", evt.ChannelID, "err", err)
		} else {
			name = resolved
		}
	}

	cat, ok := d.router.Resolve(name, evt.ChannelID)
	if !ok {
		metrics.RoutingMisses.Inc()
		return
	}
	if !route.HasRequiredKeywords(evt.Text, cat.Keywords) {
		metrics.RoutingMisses.Inc()
		return
	}

	handler, ok := d.handlers[cat.Tag]
	if !ok {
		d.logger.Error("matched category has no handler", "category", cat.Tag)
		return
	}

	metrics.RoutedTotal.Inc()
	d.logger.Info("message routed", "category", cat.Tag, "channel", name, "sender", evt.SenderID)
	handler.Handle(ctx, evt)
}

// needsLookup reports whether the raw channel name is unusable for routing:
// missing entirely, or just the platform's opaque channel handle.
func needsLookup(name, channelID string) bool {
	return name == "" || name == channelID
}
