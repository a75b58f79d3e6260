package intake

import (
	"context"
	"log/slog"
	"time"

	"ticketbot/internal/config"
	"ticketbot/internal/domain"
	"ticketbot/internal/extract"
	"ticketbot/internal/metrics"
	"ticketbot/internal/ticket"

	"github.com/google/uuid"
)

// Handler drives one category's intake flow:
//
//	Idle -> {AutoAttempt, FormShown} -> Resolved(Confirmed | Cancelled | ErrorShown)
//
// An auto attempt is only made when the message is long enough to plausibly
// contain a pasted table; any auto failure falls through to the form. An auto
// attempt and a later manual submit always mint independent ticket ids.
type Handler struct {
	category  config.Category
	schema    *Schema
	extractor *extract.Extractor
	messenger domain.Messenger
	sheets    domain.RowAppender
	links     *LinkCache
	logger    *slog.Logger

	minAutoLen int
	loc        *time.Location
	now        func() time.Time
}

// HandlerOptions configures a category handler.
type HandlerOptions struct {
	Category  config.Category
	Schema    *Schema
	Messenger domain.Messenger
	Sheets    domain.RowAppender
	Links     *LinkCache
	Logger    *slog.Logger
	Intake    config.IntakeConfig
	Location  *time.Location
}

// NewHandler wires a category handler from its schema and collaborators.
func NewHandler(opts HandlerOptions) *Handler {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	minLen := opts.Intake.AutoCreateMinLen
	if minLen == 0 {
		minLen = 50
	}
	return &Handler{
		category:   opts.Category,
		schema:     opts.Schema,
		extractor:  opts.Schema.NewExtractor(opts.Intake.MinTableLabels),
		messenger:  opts.Messenger,
		sheets:     opts.Sheets,
		links:      opts.Links,
		logger:     opts.Logger,
		minAutoLen: minLen,
		loc:        loc,
		now:        time.Now,
	}
}

// Tag returns the category tag this handler serves.
func (h *Handler) Tag() string { return h.schema.Tag }

// Handle processes a routed message: auto-create when the text carries the
// labeled table, otherwise show the form.
func (h *Handler) Handle(ctx context.Context, evt domain.InboundEvent) {
	if len(evt.Text) > h.minAutoLen {
		if h.tryAutoCreate(ctx, evt) {
			h.logger.Info("ticket auto-created", "category", h.schema.Tag, "conversation", evt.ConversationID)
			return
		}
		h.logger.Info("auto-create not possible, showing form", "category", h.schema.Tag)
	}
	h.showForm(ctx, evt)
}

// tryAutoCreate attempts to build a complete record from pasted free text.
// Returns false on any failure so the caller falls back to the form.
func (h *Handler) tryAutoCreate(ctx context.Context, evt domain.InboundEvent) bool {
	if !h.extractor.DetectTable(evt.Text) {
		return false
	}

	draft := Draft(h.extractor.Extract(evt.Text))
	now := h.now().In(h.loc)
	h.schema.ApplyDefaults(draft, now)
	draft[fieldSubmitter] = evt.Submitter()

	id := ticket.Generate(h.schema.Prefix)
	link := h.permalink(ctx, evt)

	if h.sheets.Enabled() {
		row := h.schema.Row(id, draft, link, now)
		if err := h.appendRow(ctx, row); err != nil {
			h.logger.Error("auto-create sheet write failed", "category", h.schema.Tag, "ticket", id, "err", err)
			return false
		}
	}
	metrics.TicketsAuto.Inc()

	card := h.schema.ConfirmationCard(id, draft)
	if err := h.messenger.SendCard(ctx, evt.ConversationID, card); err != nil {
		// The row is written; a failed confirmation must not re-trigger the form.
		h.logger.Error("confirmation send failed", "ticket", id, "err", err)
	}
	return true
}

// showForm caches the deep link to the triggering message and sends the
// category's form descriptor.
func (h *Handler) showForm(ctx context.Context, evt domain.InboundEvent) {
	if link := h.permalink(ctx, evt); link != "" {
		h.links.Put(evt.ConversationID, link)
	}

	form := domain.Form{
		ID:       uuid.NewString(),
		Category: h.schema.Tag,
		Title:    h.schema.FormTitle,
		Intro:    h.schema.FormIntro,
		Fields:   h.schema.Fields,
	}
	if err := h.messenger.SendForm(ctx, evt.ConversationID, form); err != nil {
		h.logger.Error("form send failed", "category", h.schema.Tag, "err", err)
		return
	}
	metrics.FormsShown.Inc()
}

// HandleSubmit processes a form submission event for this category.
func (h *Handler) HandleSubmit(ctx context.Context, evt domain.InboundEvent) {
	if evt.Cancelled() {
		if err := h.messenger.SendText(ctx, evt.ConversationID, "Ticket creation cancelled."); err != nil {
			h.logger.Error("cancellation notice failed", "err", err)
		}
		return
	}
	if evt.Form == nil {
		h.logger.Warn("submission event without form payload", "category", h.schema.Tag)
		return
	}

	draft := make(Draft, len(evt.Form.Values)+1)
	for k, v := range evt.Form.Values {
		draft[k] = v
	}
	draft[fieldSubmitter] = evt.Submitter()

	now := h.now().In(h.loc)
	id := ticket.Generate(h.schema.Prefix)
	link := h.links.Take(evt.ConversationID)

	var writeErr error
	if h.sheets.Enabled() {
		row := h.schema.Row(id, draft, link, now)
		writeErr = h.appendRow(ctx, row)
	}

	var card domain.Card
	if writeErr != nil {
		h.logger.Error("submit sheet write failed", "category", h.schema.Tag, "ticket", id, "err", writeErr)
		card = h.schema.ErrorCard(id, draft, writeErr.Error())
	} else {
		metrics.TicketsManual.Inc()
		card = h.schema.ConfirmationCard(id, draft)
	}

	h.renderTerminal(ctx, evt, card)
}

// renderTerminal replaces the original form message with the terminal card,
// falling back to a new message when the update is not possible.
func (h *Handler) renderTerminal(ctx context.Context, evt domain.InboundEvent, card domain.Card) {
	if evt.MessageID != "" {
		if err := h.messenger.UpdateCard(ctx, evt.ConversationID, evt.MessageID, card); err == nil {
			return
		} else {
			h.logger.Warn("card update failed, sending as new message", "err", err)
		}
	}
	if err := h.messenger.SendCard(ctx, evt.ConversationID, card); err != nil {
		h.logger.Error("terminal card send failed", "err", err)
	}
}

func (h *Handler) permalink(ctx context.Context, evt domain.InboundEvent) string {
	if evt.MessageID == "" {
		return ""
	}
	link, err := h.messenger.Permalink(ctx, evt.ConversationID, evt.MessageID)
	if err != nil {
		h.logger.Warn("permalink lookup failed", "message", evt.MessageID, "err", err)
		return ""
	}
	return link
}

func (h *Handler) appendRow(ctx context.Context, row []string) error {
	start := time.Now()
	err := h.sheets.Append(ctx, h.category.SheetID, h.category.SheetName, row)
	metrics.SheetWriteLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SheetWriteFailures.Inc()
	}
	return err
}
