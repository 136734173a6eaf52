package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"storebot/internal/normalize"
	"storebot/internal/resolve"
	"storebot/internal/session"
	"storebot/pkg"
)

// Fixed user-facing replies. Per-message failures always degrade to one
// of these; only a failed catalog load may stop the process.
const (
	ReplyFallback = "I couldn't process that right now."
	ReplyNoMatch  = "I couldn't find any store matching that."
	ReplyClarify  = "I didn't catch that. What store or city are you looking for?"
)

// Intent is the two-variant classification of an inbound message.
type Intent int

const (
	IntentChat Intent = iota
	IntentLookup
)

// Config tunes classification and reply formatting.
type Config struct {
	LookupKeywords []string // cues marking a message as lookup-intent
	MaxResults     int      // matches shown in a lookup reply
}

const defaultMaxResults = 3

// Router classifies each inbound message and dispatches it to the store
// resolver or, with rolling history, to the LLM collaborator.
type Router struct {
	resolver   *resolve.Resolver
	history    session.History
	llm        LLMClient
	keywords   []string
	maxResults int
	log        zerolog.Logger
}

// LLMClient is the external chat collaborator the router forwards
// chat-intent messages to.
type LLMClient interface {
	Generate(ctx context.Context, history []pkg.ConversationMessage, userText string) (string, error)
}

// New wires a router. Keywords are matched on normalized text.
func New(resolver *resolve.Resolver, history session.History, client LLMClient, logger zerolog.Logger, config Config) *Router {
	keywords := make([]string, 0, len(config.LookupKeywords))
	for _, kw := range config.LookupKeywords {
		if norm := normalize.Normalize(kw); norm != "" {
			keywords = append(keywords, norm)
		}
	}
	maxResults := config.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	return &Router{
		resolver:   resolver,
		history:    history,
		llm:        client,
		keywords:   keywords,
		maxResults: maxResults,
		log:        logger,
	}
}

// Classify returns the intent of a raw message: lookup iff a configured
// keyword cue appears as a whole word in the normalized text.
func (r *Router) Classify(raw string) Intent {
	norm := " " + normalize.Normalize(raw) + " "
	for _, kw := range r.keywords {
		if strings.Contains(norm, " "+kw+" ") {
			return IntentLookup
		}
	}
	return IntentChat
}

// Route handles one inbound message and always produces a user-facing
// reply; collaborator failures are converted, never propagated.
func (r *Router) Route(ctx context.Context, userID, raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ReplyClarify
	}

	switch r.Classify(raw) {
	case IntentLookup:
		return r.Lookup(raw)
	default:
		return r.chat(ctx, userID, raw)
	}
}

// Lookup resolves the message against the catalog and formats the top
// matches. No match is a normal outcome with its own reply.
func (r *Router) Lookup(raw string) string {
	results := r.resolver.Resolve(raw)
	if len(results) == 0 {
		return ReplyNoMatch
	}

	shown := results
	if len(shown) > r.maxResults {
		shown = shown[:r.maxResults]
	}

	var b strings.Builder
	if len(results) == 1 {
		b.WriteString("Found 1 matching store:\n")
	} else {
		fmt.Fprintf(&b, "Found %d matching stores:\n", len(results))
	}
	for _, m := range shown {
		fmt.Fprintf(&b, "- %s (%s)\n", m.Record.Store, m.Record.City)
	}
	return strings.TrimRight(b.String(), "\n")
}

// chat forwards the prior snapshot plus the new message to the LLM. The
// user turn is appended before the call so a failed attempt still has
// context next time; the assistant turn is appended only on success.
func (r *Router) chat(ctx context.Context, userID, raw string) string {
	snapshot, err := r.history.Snapshot(ctx, userID)
	if err != nil {
		r.log.Error().Err(err).Str("user_id", userID).Msg("failed to load session history")
		return ReplyFallback
	}

	if err := r.history.Append(ctx, userID, pkg.ConversationMessage{Role: pkg.RoleUser, Content: raw}); err != nil {
		r.log.Error().Err(err).Str("user_id", userID).Msg("failed to append user turn")
		return ReplyFallback
	}

	answer, err := r.llm.Generate(ctx, snapshot, raw)
	if err != nil {
		r.log.Warn().Err(err).Str("user_id", userID).Msg("llm call failed")
		return ReplyFallback
	}
	if strings.TrimSpace(answer) == "" {
		return ReplyFallback
	}

	if err := r.history.Append(ctx, userID, pkg.ConversationMessage{Role: pkg.RoleAssistant, Content: answer}); err != nil {
		r.log.Error().Err(err).Str("user_id", userID).Msg("failed to append assistant turn")
	}
	return answer
}

// Reset clears the user's conversation history.
func (r *Router) Reset(ctx context.Context, userID string) error {
	return r.history.Reset(ctx, userID)
}
