// Package session keeps per-user bounded conversation history. Sessions
// are created lazily on first use and live for the process lifetime (or
// until an explicit reset).
package session

import (
	"context"

	"storebot/pkg"
)

// History is the conversation context manager contract. Implementations
// serialize mutations within one user id; distinct users never contend.
type History interface {
	// Append adds a message to the end of the user's session, evicting
	// the oldest message first once the bound is exceeded.
	Append(ctx context.Context, userID string, msg pkg.ConversationMessage) error
	// Snapshot returns an independent copy of the session in
	// chronological order, oldest first.
	Snapshot(ctx context.Context, userID string) ([]pkg.ConversationMessage, error)
	// Reset discards the user's session.
	Reset(ctx context.Context, userID string) error
}

// DefaultMaxMessages bounds a session when no limit is configured.
const DefaultMaxMessages = 30
