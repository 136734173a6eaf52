package pkg

// Conversation roles stored in session history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationMessage represents a message in conversation history
type ConversationMessage struct {
	Role    string `json:"role"` // user, assistant
	Content string `json:"content"`
	Seq     int64  `json:"seq"` // monotonic per-session sequence number
}

// StoreRecord is a single entry of the static store catalog.
// Immutable after load; identity is the (store, city) pair.
type StoreRecord struct {
	Store   string   `json:"store"`
	City    string   `json:"city"`
	Aliases []string `json:"aliases,omitempty"`
}

// MatchKind tells which resolution stage produced a match
type MatchKind string

const (
	MatchExact MatchKind = "exact"
	MatchAlias MatchKind = "alias"
	MatchFuzzy MatchKind = "fuzzy"
)

// MatchResult is a single ranked store resolution candidate
type MatchResult struct {
	Record StoreRecord `json:"record"`
	Score  float64     `json:"score"` // in [0,1]
	Kind   MatchKind   `json:"kind"`
}
