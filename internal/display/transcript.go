package display

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// DefaultTranscriptLimit bounds how many commands and responses the
// session log remembers on each side.
const DefaultTranscriptLimit = 50

// Transcript collects the session's commands and responses for the
// interaction log. Both sides are bounded; old lines fall off first.
type Transcript struct {
	mu        sync.Mutex
	limit     int
	commands  []string
	responses []string
	now       func() time.Time
}

func NewTranscript(limit int) *Transcript {
	if limit <= 0 {
		limit = DefaultTranscriptLimit
	}
	return &Transcript{limit: limit, now: time.Now}
}

func (t *Transcript) AddCommand(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.commands = t.bound(append(t.commands, t.line(text)))
}

func (t *Transcript) AddResponse(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.responses = t.bound(append(t.responses, t.line(text)))
}

func (t *Transcript) line(text string) string {
	return fmt.Sprintf("[%s] %s", t.now().Format("15:04:05"), text)
}

func (t *Transcript) bound(list []string) []string {
	if len(list) > t.limit {
		list = list[len(list)-t.limit:]
	}
	return list
}

// Counts reports how many lines each side currently holds.
func (t *Transcript) Counts() (commands, responses int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.commands), len(t.responses)
}

// Render produces the interaction log document.
func (t *Transcript) Render() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var b strings.Builder
	b.WriteString("JARVIS Interaction Log\n")
	b.WriteString(strings.Repeat("=", 50))
	b.WriteString("\n\nCommands:\n")
	for _, line := range t.commands {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString("\nResponses:\n")
	for _, line := range t.responses {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteFile saves the rendered log, typically on shutdown.
func (t *Transcript) WriteFile(path string) error {
	return os.WriteFile(path, []byte(t.Render()), 0o644)
}
