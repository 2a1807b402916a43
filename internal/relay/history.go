package relay

import (
	"sync"

	"SignalSentry/internal/llm"
)

// MaxConversationTurns bounds how much context is kept per user.
const MaxConversationTurns = 10

// HistoryStore holds per-user conversation history in memory. It is lost on
// restart; concurrent message handlers share one store.
type HistoryStore struct {
	mu    sync.Mutex
	max   int
	turns map[string][]llm.Content
}

func NewHistoryStore(max int) *HistoryStore {
	if max <= 0 {
		max = MaxConversationTurns
	}
	return &HistoryStore{max: max, turns: make(map[string][]llm.Content)}
}

// Append records a turn for the user, dropping the oldest turns beyond the
// cap.
func (h *HistoryStore) Append(userID string, c llm.Content) {
	h.mu.Lock()
	defer h.mu.Unlock()

	turns := append(h.turns[userID], c)
	if len(turns) > h.max {
		turns = turns[len(turns)-h.max:]
	}
	h.turns[userID] = turns
}

// Recent returns a copy of the user's retained turns.
func (h *HistoryStore) Recent(userID string) []llm.Content {
	h.mu.Lock()
	defer h.mu.Unlock()

	turns := h.turns[userID]
	out := make([]llm.Content, len(turns))
	copy(out, turns)
	return out
}
