package channel

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"ticketbot/internal/domain"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
)

// Slack implements domain.Transport using Socket Mode. Forms are rendered as
// Block Kit input blocks in a message; the submit/cancel buttons come back
// as block_actions interactions carrying the input state.
type Slack struct {
	botToken string
	appToken string
	client   *slack.Client
	socket   *socketmode.Client
	bus      domain.MessageBus
	logger   *slog.Logger
	botUID   string // the bot's own user ID, to avoid reacting to self
	teamID   string

	userMu    sync.Mutex
	userNames map[string]string // user id -> display name
}

// SlackConfig configures the Slack transport.
type SlackConfig struct {
	BotToken string
	AppToken string
	Logger   *slog.Logger
}

// NewSlack creates a new Slack transport.
func NewSlack(cfg SlackConfig) *Slack {
	return &Slack{
		botToken:  cfg.BotToken,
		appToken:  cfg.AppToken,
		logger:    cfg.Logger,
		userNames: make(map[string]string),
	}
}

func (s *Slack) Name() string { return "slack" }

// Start connects via Socket Mode and publishes inbound events until the
// context is cancelled.
func (s *Slack) Start(ctx context.Context, bus domain.MessageBus) error {
	s.bus = bus

	api := slack.New(
		s.botToken,
		slack.OptionAppLevelToken(s.appToken),
	)
	s.client = api

	authResp, err := api.AuthTest()
	if err != nil {
		return fmt.Errorf("slack auth: %w", err)
	}
	s.botUID = authResp.UserID
	s.teamID = authResp.TeamID
	s.logger.Info("slack bot connected", "user", authResp.User, "user_id", authResp.UserID)

	socketClient := socketmode.New(api)
	s.socket = socketClient

	go func() {
		for evt := range socketClient.Events {
			switch evt.Type {
			case socketmode.EventTypeEventsAPI:
				eventsAPIEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
				if !ok {
					continue
				}
				socketClient.Ack(*evt.Request)
				s.handleEventsAPI(eventsAPIEvent)

			case socketmode.EventTypeInteractive:
				callback, ok := evt.Data.(slack.InteractionCallback)
				if !ok {
					continue
				}
				socketClient.Ack(*evt.Request)
				s.handleInteraction(callback)

			default:
				// Acknowledge unknown events to prevent Socket Mode disconnection.
				if evt.Request != nil {
					socketClient.Ack(*evt.Request)
				}
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- socketClient.RunContext(ctx)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("slack bot disconnecting")
		return nil
	case err := <-errCh:
		return fmt.Errorf("slack socket mode: %w", err)
	}
}

// Stop is a no-op; RunContext exits when the Start context is cancelled.
func (s *Slack) Stop() error { return nil }

func (s *Slack) handleEventsAPI(event slackevents.EventsAPIEvent) {
	if event.Type != slackevents.CallbackEvent {
		return
	}
	switch ev := event.InnerEvent.Data.(type) {
	case *slackevents.MessageEvent:
		// Ignore the bot's own messages and message_changed subtypes.
		if ev.User == s.botUID || ev.User == "" || ev.SubType != "" {
			return
		}

		s.logger.Info("slack message received",
			"user", ev.User,
			"channel", ev.Channel,
			"content_len", len(ev.Text),
		)

		s.bus.Publish(domain.InboundEvent{
			Kind:           domain.KindMessage,
			Text:           ev.Text,
			SenderID:       ev.User,
			SenderName:     s.userName(ev.User),
			TeamID:         s.teamID,
			ChannelID:      ev.Channel,
			ConversationID: ev.Channel,
			MessageID:      ev.TimeStamp,
			Timestamp:      time.Now(),
		})

	case *slackevents.MemberJoinedChannelEvent:
		// The bot being invited to a channel is the "added to conversation"
		// signal that triggers the one-time welcome.
		if ev.User != s.botUID {
			return
		}
		s.logger.Info("bot added to channel", "channel", ev.Channel)
		s.bus.Publish(domain.InboundEvent{
			Kind:           domain.KindBotAdded,
			TeamID:         s.teamID,
			ChannelID:      ev.Channel,
			ConversationID: ev.Channel,
			Timestamp:      time.Now(),
		})
	}
}

func (s *Slack) handleInteraction(callback slack.InteractionCallback) {
	if callback.Type != slack.InteractionTypeBlockActions {
		return
	}
	if len(callback.ActionCallback.BlockActions) == 0 {
		return
	}
	action := callback.ActionCallback.BlockActions[0]
	if action.ActionID != actionSubmit && action.ActionID != actionCancel {
		return
	}

	category, formID := parseFormBlockID(action.BlockID)
	submission := &domain.FormSubmission{
		Action:   action.ActionID,
		Category: category,
		FormID:   formID,
		Values:   collectFormValues(callback.BlockActionState),
	}

	s.logger.Info("slack form interaction",
		"action", action.ActionID,
		"category", category,
		"user", callback.User.ID,
	)

	s.bus.Publish(domain.InboundEvent{
		Kind:           domain.KindFormSubmission,
		SenderID:       callback.User.ID,
		SenderName:     s.userName(callback.User.ID),
		TeamID:         s.teamID,
		ChannelID:      callback.Channel.ID,
		ConversationID: callback.Channel.ID,
		MessageID:      callback.Container.MessageTs,
		Timestamp:      time.Now(),
		Form:           submission,
	})
}

// collectFormValues flattens the Block Kit input state into field id ->
// value, regardless of widget type. Block and action ids are both the field
// id, so either key works.
func collectFormValues(state *slack.BlockActionStates) map[string]string {
	values := make(map[string]string)
	if state == nil {
		return values
	}
	for blockID, actions := range state.Values {
		for _, action := range actions {
			v := action.Value
			if v == "" && action.SelectedOption.Value != "" {
				v = action.SelectedOption.Value
			}
			if v == "" {
				v = action.SelectedDate
			}
			if v == "" {
				v = action.SelectedTime
			}
			if v != "" {
				values[blockID] = v
			}
		}
	}
	return values
}

// --- outbound: domain.Messenger ---

func (s *Slack) SendText(ctx context.Context, conversationID, text string) error {
	_, _, err := s.client.PostMessageContext(ctx, conversationID, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("slack send: %w", err)
	}
	return nil
}

func (s *Slack) SendForm(ctx context.Context, conversationID string, form domain.Form) error {
	blocks := formBlocks(form)
	_, _, err := s.client.PostMessageContext(ctx, conversationID, slack.MsgOptionBlocks(blocks...))
	if err != nil {
		return fmt.Errorf("slack send form: %w", err)
	}
	return nil
}

func (s *Slack) SendCard(ctx context.Context, conversationID string, card domain.Card) error {
	_, _, err := s.client.PostMessageContext(ctx, conversationID, slack.MsgOptionBlocks(cardBlocks(card)...))
	if err != nil {
		return fmt.Errorf("slack send card: %w", err)
	}
	return nil
}

func (s *Slack) UpdateCard(ctx context.Context, conversationID, messageID string, card domain.Card) error {
	_, _, _, err := s.client.UpdateMessageContext(ctx, conversationID, messageID,
		slack.MsgOptionBlocks(cardBlocks(card)...))
	if err != nil {
		return fmt.Errorf("slack update message: %w", err)
	}
	return nil
}

func (s *Slack) Permalink(ctx context.Context, conversationID, messageID string) (string, error) {
	link, err := s.client.GetPermalinkContext(ctx, &slack.PermalinkParameters{
		Channel: conversationID,
		Ts:      messageID,
	})
	if err != nil {
		return "", fmt.Errorf("slack permalink: %w", err)
	}
	return link, nil
}

// --- domain.Directory ---

// ChannelName resolves a channel id to its display name. An empty channel id
// or an API failure disables name resolution for the turn.
func (s *Slack) ChannelName(ctx context.Context, teamID, channelID string) (string, error) {
	if channelID == "" {
		return "", fmt.Errorf("slack channel lookup: no channel id")
	}
	info, err := s.client.GetConversationInfoContext(ctx, &slack.GetConversationInfoInput{
		ChannelID: channelID,
	})
	if err != nil {
		return "", fmt.Errorf("slack channel lookup: %w", err)
	}
	return info.Name, nil
}

func (s *Slack) userName(userID string) string {
	s.userMu.Lock()
	if name, ok := s.userNames[userID]; ok {
		s.userMu.Unlock()
		return name
	}
	s.userMu.Unlock()

	user, err := s.client.GetUserInfo(userID)
	if err != nil {
		s.logger.Warn("user lookup failed", "user", userID, "err", err)
		return ""
	}
	name := user.RealName
	if name == "" {
		name = user.Name
	}

	s.userMu.Lock()
	s.userNames[userID] = name
	s.userMu.Unlock()
	return name
}

// --- Block Kit rendering ---

const (
	actionSubmit = "submit"
	actionCancel = "cancel"
)

func formActionsBlockID(category, formID string) string {
	return "form:" + category + ":" + formID
}

func parseFormBlockID(blockID string) (category, formID string) {
	parts := strings.SplitN(blockID, ":", 3)
	if len(parts) != 3 || parts[0] != "form" {
		return "", ""
	}
	return parts[1], parts[2]
}

func formBlocks(form domain.Form) []slack.Block {
	blocks := []slack.Block{
		slack.NewHeaderBlock(plainText(form.Title)),
	}
	if form.Intro != "" {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, form.Intro, false, false), nil, nil))
	}

	for _, field := range form.Fields {
		input := slack.NewInputBlock(field.ID, plainText(fieldLabel(field)), nil, formElement(field))
		input.Optional = !field.Required
		blocks = append(blocks, input)
	}

	submit := slack.NewButtonBlockElement(actionSubmit, form.Category, plainText("Submit"))
	submit.Style = slack.StylePrimary
	cancel := slack.NewButtonBlockElement(actionCancel, form.Category, plainText("Cancel"))

	blocks = append(blocks, slack.NewActionBlock(
		formActionsBlockID(form.Category, form.ID), submit, cancel))
	return blocks
}

func formElement(field domain.FormField) slack.BlockElement {
	switch field.Kind {
	case domain.FieldChoice:
		options := make([]*slack.OptionBlockObject, len(field.Options))
		for i, opt := range field.Options {
			options[i] = slack.NewOptionBlockObject(opt, plainText(opt), nil)
		}
		return slack.NewOptionsSelectBlockElement(slack.OptTypeStatic, plainText("Select"), field.ID, options...)
	case domain.FieldDate:
		return slack.NewDatePickerBlockElement(field.ID)
	case domain.FieldTime:
		return slack.NewTimePickerBlockElement(field.ID)
	case domain.FieldMultiline:
		el := slack.NewPlainTextInputBlockElement(placeholder(field), field.ID)
		el.Multiline = true
		return el
	default:
		return slack.NewPlainTextInputBlockElement(placeholder(field), field.ID)
	}
}

func cardBlocks(card domain.Card) []slack.Block {
	icon := "✅"
	if card.Tone == domain.ToneAttention {
		icon = "❌"
	}

	blocks := []slack.Block{
		slack.NewHeaderBlock(plainText(icon + " " + card.Title)),
	}

	var sb strings.Builder
	for _, fact := range card.Facts {
		fmt.Fprintf(&sb, "*%s:* %s\n", fact.Label, fact.Value)
	}
	blocks = append(blocks, slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, sb.String(), false, false), nil, nil))

	if card.Body != "" {
		blocks = append(blocks,
			slack.NewDividerBlock(),
			slack.NewSectionBlock(
				slack.NewTextBlockObject(slack.MarkdownType, card.Body, false, false), nil, nil))
	}
	if card.Footer != "" {
		blocks = append(blocks, slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType, card.Footer, false, false)))
	}
	return blocks
}

func fieldLabel(field domain.FormField) string {
	if field.Required {
		return field.Label + " *"
	}
	return field.Label
}

func placeholder(field domain.FormField) *slack.TextBlockObject {
	if field.Placeholder == "" {
		return nil
	}
	return plainText(field.Placeholder)
}

func plainText(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.PlainTextType, text, false, false)
}
