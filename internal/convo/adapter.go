package convo

import (
	"context"
	log "log/slog"
	"strings"
	"time"
)

const (
	// DefaultAskTimeout bounds a single backend call.
	DefaultAskTimeout = 30 * time.Second

	defaultContextTurns = 3

	msgEmptyQuestion  = "I didn't catch that, sir. Could you repeat your question?"
	msgAnthropicFault = "I'm having trouble connecting to my AI systems right now, sir."
	msgBackendFault   = "I'm experiencing difficulties with my neural networks, sir."
	msgHistoryCleared = "Conversation history cleared, sir."
)

// Options configures an Adapter.
type Options struct {
	// Backends lists the reachable model backends, highest priority
	// first. Availability is decided once at startup from credential
	// presence; an empty list leaves only the local responder.
	Backends []Backend
	// Preferred names the backend to use when it is in Backends.
	Preferred string
	History   *History
	Persona   *Persona
	// Timeout bounds each Ask's backend call.
	Timeout time.Duration
	// ContextTurns is how many past turns accompany each question.
	ContextTurns int
}

// Adapter answers free-form questions with the configured model
// backend, keeping a bounded dialogue history for context. A single
// backend is chosen per question; its failure produces an apology
// instead of a silent switch to another model.
type Adapter struct {
	backends []Backend
	prefer   string
	local    *Responder
	history  *History
	persona  *Persona
	timeout  time.Duration
	turns    int
}

func NewAdapter(opt Options) *Adapter {
	a := &Adapter{
		backends: opt.Backends,
		prefer:   opt.Preferred,
		local:    NewResponder(),
		history:  opt.History,
		persona:  opt.Persona,
		timeout:  opt.Timeout,
		turns:    opt.ContextTurns,
	}
	if a.history == nil {
		a.history = NewHistory(DefaultHistoryCapacity)
	}
	if a.persona == nil {
		a.persona = NewPersona()
	}
	if a.timeout <= 0 {
		a.timeout = DefaultAskTimeout
	}
	if a.turns <= 0 {
		a.turns = defaultContextTurns
	}
	return a
}

// AskOption adjusts a single Ask call.
type AskOption func(*askSettings)

type askSettings struct {
	context string
	backend string
}

// WithContext adds caller-supplied background text to the prompt.
func WithContext(text string) AskOption {
	return func(s *askSettings) { s.context = text }
}

// WithBackend prefers the named backend for this call only. An
// unreachable name falls back to the usual priority order.
func WithBackend(name string) AskOption {
	return func(s *askSettings) { s.backend = name }
}

// pick returns the backend that will answer: the preferred one when
// reachable, otherwise the first reachable one, otherwise the local
// responder.
func (a *Adapter) pick(prefer string) Backend {
	if prefer == "" {
		prefer = a.prefer
	}
	for _, b := range a.backends {
		if b.Name() == prefer {
			return b
		}
	}
	if len(a.backends) > 0 {
		return a.backends[0]
	}
	return a.local
}

// Ask answers one question. It never returns an error; every failure
// maps to a speakable apology.
func (a *Adapter) Ask(ctx context.Context, question string, opts ...AskOption) string {
	question = strings.TrimSpace(question)
	if question == "" {
		return msgEmptyQuestion
	}

	var set askSettings
	for _, o := range opts {
		o(&set)
	}

	b := a.pick(set.backend)
	prompt := Prompt{
		System:   a.persona.Preamble(),
		Context:  set.context,
		Turns:    a.history.Recent(a.turns),
		Question: question,
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	answer, err := b.Generate(ctx, prompt)
	if err != nil {
		log.Error("backend failed", "backend", b.Name(), "error", err)
		if b.Name() == "anthropic" {
			return msgAnthropicFault
		}
		return msgBackendFault
	}

	answer = strings.TrimSpace(answer)
	a.history.Append(question, answer)
	return answer
}

// ClearHistory forgets all remembered turns.
func (a *Adapter) ClearHistory() string {
	a.history.Clear()
	return msgHistoryCleared
}

// SetPersonality switches the reply style for later questions.
func (a *Adapter) SetPersonality(mode string) (string, error) {
	return a.persona.Set(mode)
}

// Personality reports the active mode, empty when default.
func (a *Adapter) Personality() string {
	return a.persona.Mode()
}

// Backends lists reachable backend names in priority order, always
// ending with the local responder.
func (a *Adapter) Backends() []string {
	names := make([]string, 0, len(a.backends)+1)
	for _, b := range a.backends {
		names = append(names, b.Name())
	}
	return append(names, a.local.Name())
}

// Active names the backend Ask would use right now.
func (a *Adapter) Active() string {
	return a.pick("").Name()
}

// HistoryLen reports how many turns are remembered.
func (a *Adapter) HistoryLen() int {
	return a.history.Len()
}
