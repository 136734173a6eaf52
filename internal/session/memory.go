package session

import (
	"context"
	"sync"

	"storebot/pkg"
)

// Manager is the in-memory History backend: a keyed store of per-user
// sessions. The map lock is only held while locating a session; each
// session has its own mutex so users never block each other.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[string]*userSession
	maxMessages int
}

type userSession struct {
	mu       sync.Mutex
	seq      int64
	messages []pkg.ConversationMessage
}

// NewManager creates an in-memory manager bounding every session to
// maxMessages entries (FIFO eviction).
func NewManager(maxMessages int) *Manager {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxMessages
	}
	return &Manager{
		sessions:    make(map[string]*userSession),
		maxMessages: maxMessages,
	}
}

func (m *Manager) session(userID string) *userSession {
	m.mu.RLock()
	s, ok := m.sessions[userID]
	m.mu.RUnlock()
	if ok {
		return s
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok = m.sessions[userID]; !ok {
		s = &userSession{}
		m.sessions[userID] = s
	}
	return s
}

// Append implements History.
func (m *Manager) Append(ctx context.Context, userID string, msg pkg.ConversationMessage) error {
	s := m.session(userID)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	msg.Seq = s.seq
	if len(s.messages) >= m.maxMessages {
		n := copy(s.messages, s.messages[1:])
		s.messages = s.messages[:n]
	}
	s.messages = append(s.messages, msg)
	return nil
}

// Snapshot implements History.
func (m *Manager) Snapshot(ctx context.Context, userID string) ([]pkg.ConversationMessage, error) {
	s := m.session(userID)

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]pkg.ConversationMessage, len(s.messages))
	copy(snapshot, s.messages)
	return snapshot, nil
}

// Reset implements History.
func (m *Manager) Reset(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, userID)
	return nil
}
