package channel

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"ticketbot/internal/domain"
)

// Console implements domain.Transport against a terminal, for dry-running
// the routing and extraction pipeline without a chat platform. Messages are
// attributed to a simulated channel (switchable with /channel), forms are
// printed as field lists and answered with /submit.
type Console struct {
	bus    domain.MessageBus
	logger *slog.Logger
	in     io.Reader
	out    io.Writer

	mu          sync.Mutex
	channelName string
	lastForm    *domain.Form
	nextMsgID   int
}

// ConsoleConfig configures the console transport.
type ConsoleConfig struct {
	Logger  *slog.Logger
	In      io.Reader
	Out     io.Writer
	Channel string // initial simulated channel name
}

func NewConsole(cfg ConsoleConfig) *Console {
	if cfg.In == nil {
		cfg.In = os.Stdin
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Channel == "" {
		cfg.Channel = "incident"
	}
	return &Console{
		logger:      cfg.Logger,
		in:          cfg.In,
		out:         cfg.Out,
		channelName: cfg.Channel,
	}
}

func (c *Console) Name() string { return "console" }

// Start runs the REPL until EOF, /quit, or context cancellation.
func (c *Console) Start(ctx context.Context, bus domain.MessageBus) error {
	c.bus = bus

	fmt.Fprintf(c.out, "ticketbot console. Simulated channel: #%s\n", c.channelName)
	fmt.Fprintln(c.out, "Commands: /channel <name>, /submit k=v; k=v, /cancel, /quit")
	fmt.Fprint(c.out, "> ")

	scanner := bufio.NewScanner(c.in)
	scanner.Buffer(make([]byte, 64*1024), 64*1024)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if !scanner.Scan() {
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case line == "/quit" || line == "/exit" || line == "/q":
			return nil
		case strings.HasPrefix(line, "/channel "):
			c.mu.Lock()
			c.channelName = strings.TrimSpace(strings.TrimPrefix(line, "/channel"))
			c.mu.Unlock()
			fmt.Fprintf(c.out, "now in #%s\n", c.channelName)
		case strings.HasPrefix(line, "/submit"):
			c.publishSubmission(actionSubmit, strings.TrimPrefix(line, "/submit"))
		case line == "/cancel":
			c.publishSubmission(actionCancel, "")
		default:
			c.publishMessage(line)
		}
		fmt.Fprint(c.out, "> ")
	}
}

func (c *Console) Stop() error { return nil }

func (c *Console) publishMessage(text string) {
	c.mu.Lock()
	name := c.channelName
	c.nextMsgID++
	msgID := fmt.Sprintf("console-%d", c.nextMsgID)
	c.mu.Unlock()

	// Multi-line tables can be pasted with literal \n separators.
	text = strings.ReplaceAll(text, `\n`, "\n")

	c.bus.Publish(domain.InboundEvent{
		Kind:           domain.KindMessage,
		Text:           text,
		SenderID:       "console",
		SenderName:     "console user",
		ChannelID:      "console",
		ChannelName:    name,
		ConversationID: "console",
		MessageID:      msgID,
		Timestamp:      time.Now(),
	})
}

func (c *Console) publishSubmission(action, args string) {
	c.mu.Lock()
	form := c.lastForm
	c.mu.Unlock()
	if form == nil {
		fmt.Fprintln(c.out, "no form is open")
		return
	}

	values := make(map[string]string)
	for _, pair := range strings.Split(args, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if ok {
			values[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}

	c.bus.Publish(domain.InboundEvent{
		Kind:           domain.KindFormSubmission,
		SenderID:       "console",
		SenderName:     "console user",
		ChannelID:      "console",
		ConversationID: "console",
		MessageID:      "console-form",
		Timestamp:      time.Now(),
		Form: &domain.FormSubmission{
			Action:   action,
			Category: form.Category,
			FormID:   form.ID,
			Values:   values,
		},
	})
}

// --- domain.Messenger ---

func (c *Console) SendText(ctx context.Context, conversationID, text string) error {
	_, err := fmt.Fprintf(c.out, "\n[bot] %s\n", text)
	return err
}

func (c *Console) SendForm(ctx context.Context, conversationID string, form domain.Form) error {
	c.mu.Lock()
	c.lastForm = &form
	c.mu.Unlock()

	fmt.Fprintf(c.out, "\n=== %s ===\n%s\n", form.Title, form.Intro)
	for _, f := range form.Fields {
		req := ""
		if f.Required {
			req = " *"
		}
		fmt.Fprintf(c.out, "  %s%s (%s)", f.Label, req, f.Kind)
		if len(f.Options) > 0 {
			fmt.Fprintf(c.out, " [%s]", strings.Join(f.Options, ", "))
		}
		fmt.Fprintf(c.out, "  id=%s\n", f.ID)
	}
	fmt.Fprintln(c.out, "answer with: /submit id=value; id=value  or /cancel")
	return nil
}

func (c *Console) SendCard(ctx context.Context, conversationID string, card domain.Card) error {
	return c.printCard(card)
}

func (c *Console) UpdateCard(ctx context.Context, conversationID, messageID string, card domain.Card) error {
	fmt.Fprintf(c.out, "\n(updating message %s)\n", messageID)
	return c.printCard(card)
}

func (c *Console) printCard(card domain.Card) error {
	fmt.Fprintf(c.out, "\n=== %s ===\n", card.Title)
	for _, fact := range card.Facts {
		fmt.Fprintf(c.out, "  %s: %s\n", fact.Label, fact.Value)
	}
	if card.Body != "" {
		fmt.Fprintf(c.out, "  ---\n  %s\n", card.Body)
	}
	if card.Footer != "" {
		fmt.Fprintf(c.out, "  (%s)\n", card.Footer)
	}
	return nil
}

func (c *Console) Permalink(ctx context.Context, conversationID, messageID string) (string, error) {
	return "console://" + conversationID + "/" + messageID, nil
}

// --- domain.Directory ---

func (c *Console) ChannelName(ctx context.Context, teamID, channelID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channelName, nil
}
