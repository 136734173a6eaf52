package telegram

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Replies owned by the transport layer.
const (
	greetingReply = "Hi! I'm a store assistant. Ask me anything, or ask where a store is. Commands: /search <query>, /reset."
	resetReply    = "Context cleared."
	searchUsage   = "Tell me what to search for. Example: /search acme springfield"
)

// Handler is the message router the bot dispatches updates to.
type Handler interface {
	Route(ctx context.Context, userID, raw string) string
	Lookup(raw string) string
	Reset(ctx context.Context, userID string) error
}

// Bot runs the long-polling update loop and maps bot commands onto the
// router: /start greets, /reset clears history, /search forces
// lookup-intent, everything else is routed normally.
type Bot struct {
	client      *Client
	handler     Handler
	pollTimeout int
	log         zerolog.Logger
}

// NewBot wires the update loop.
func NewBot(client *Client, handler Handler, pollTimeout int, logger zerolog.Logger) *Bot {
	if pollTimeout <= 0 {
		pollTimeout = 30
	}
	return &Bot{
		client:      client,
		handler:     handler,
		pollTimeout: pollTimeout,
		log:         logger,
	}
}

// Run polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	var offset int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		updates, err := b.client.GetUpdates(offset, b.pollTimeout)
		if err != nil {
			b.log.Warn().Err(err).Msg("getUpdates failed, backing off")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(2 * time.Second):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			// handle each chat concurrently so a slow LLM call for one
			// user never delays another
			go b.handleMessage(ctx, *update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg Message) {
	userID := strconv.FormatInt(msg.Chat.ID, 10)
	if msg.From != nil {
		userID = strconv.FormatInt(msg.From.ID, 10)
	}

	reply := b.dispatch(ctx, userID, msg.Text)
	if err := b.client.SendMessage(msg.Chat.ID, reply); err != nil {
		b.log.Error().Err(err).Int64("chat_id", msg.Chat.ID).Msg("sendMessage failed")
	}
}

func (b *Bot) dispatch(ctx context.Context, userID, text string) string {
	command, args := splitCommand(text)
	switch command {
	case "/start":
		return greetingReply
	case "/reset":
		if err := b.handler.Reset(ctx, userID); err != nil {
			b.log.Error().Err(err).Str("user_id", userID).Msg("reset failed")
		}
		return resetReply
	case "/search":
		if args == "" {
			return searchUsage
		}
		return b.handler.Lookup(args)
	default:
		return b.handler.Route(ctx, userID, text)
	}
}

// splitCommand separates a leading bot command from its arguments;
// non-command text returns an empty command.
func splitCommand(text string) (command, args string) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") {
		return "", trimmed
	}
	command, args, _ = strings.Cut(trimmed, " ")
	// commands may carry the bot name suffix: /search@storebot
	if at := strings.IndexByte(command, '@'); at > 0 {
		command = command[:at]
	}
	return command, strings.TrimSpace(args)
}
