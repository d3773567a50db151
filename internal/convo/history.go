package convo

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultHistoryCapacity bounds remembered turns unless configured.
const DefaultHistoryCapacity = 10

// Turn is one question/answer exchange kept for context.
type Turn struct {
	ID        uuid.UUID
	User      string
	Assistant string
	At        time.Time
}

// History is a fixed-capacity FIFO of turns, oldest evicted first.
type History struct {
	mu    sync.Mutex
	cap   int
	turns []Turn
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{cap: capacity}
}

func (h *History) Append(user, assistant string) Turn {
	t := Turn{
		ID:        uuid.New(),
		User:      user,
		Assistant: assistant,
		At:        time.Now(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.turns = append(h.turns, t)
	if len(h.turns) > h.cap {
		h.turns = h.turns[len(h.turns)-h.cap:]
	}

	return t
}

// Recent returns up to n of the latest turns, oldest first. The slice
// is a copy; callers may keep it across later appends.
func (h *History) Recent(n int) []Turn {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n <= 0 || len(h.turns) == 0 {
		return nil
	}
	if n > len(h.turns) {
		n = len(h.turns)
	}

	out := make([]Turn, n)
	copy(out, h.turns[len(h.turns)-n:])
	return out
}

func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = nil
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.turns)
}
