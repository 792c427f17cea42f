package agent

import (
	"sync"

	"github.com/shelternet/shelterbot/internal/models"
)

// Chat turn roles.
const (
	RoleHuman = "human"
	RoleAI    = "ai"
)

// Turn is one role-tagged message in a conversation thread.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// State is the per-thread conversation state. Messages accumulate for
// the life of the thread; Intent and RewrittenQuery are recomputed every
// turn and StructuredData is cleared or overwritten every turn.
type State struct {
	Messages       []Turn                 `json:"messages"`
	Intent         Intent                 `json:"intent"`
	RewrittenQuery string                 `json:"rewritten_query"`
	StructuredData *models.StructuredData `json:"structured_data,omitempty"`
}

func (s *State) append(role, text string) {
	s.Messages = append(s.Messages, Turn{Role: role, Text: text})
}

// Checkpointer persists conversation state keyed by thread id. A durable
// backing store can be substituted without touching the orchestration
// logic.
type Checkpointer interface {
	Load(threadID string) (*State, error)
	Save(threadID string, state *State) error
}

// MemorySaver is the in-process checkpoint store. Sessions are isolated
// by thread id; concurrent access across sessions is safe.
type MemorySaver struct {
	mu     sync.RWMutex
	states map[string]*State
}

func NewMemorySaver() *MemorySaver {
	return &MemorySaver{states: make(map[string]*State)}
}

func (m *MemorySaver) Load(threadID string) (*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.states[threadID]
	if !ok {
		return &State{}, nil
	}

	// hand out a copy so a session in flight never aliases the stored
	// message slice
	state := *stored
	state.Messages = append([]Turn(nil), stored.Messages...)
	return &state, nil
}

func (m *MemorySaver) Save(threadID string, state *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *state
	stored.Messages = append([]Turn(nil), state.Messages...)
	m.states[threadID] = &stored
	return nil
}
