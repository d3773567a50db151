package convo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	name   string
	reply  string
	err    error
	calls  int
	prompt Prompt
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Generate(_ context.Context, p Prompt) (string, error) {
	f.calls++
	f.prompt = p
	return f.reply, f.err
}

// hangingBackend blocks until the context expires.
type hangingBackend struct{ name string }

func (h *hangingBackend) Name() string { return h.name }

func (h *hangingBackend) Generate(ctx context.Context, _ Prompt) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestAskEmptyQuestion(t *testing.T) {
	fb := &fakeBackend{name: "anthropic", reply: "unused"}
	a := NewAdapter(Options{Backends: []Backend{fb}})

	got := a.Ask(context.Background(), "   ")

	assert.Equal(t, "I didn't catch that, sir. Could you repeat your question?", got)
	assert.Zero(t, fb.calls, "blank input must not reach the backend")
	assert.Zero(t, a.HistoryLen())
}

func TestAskPrefersConfiguredBackend(t *testing.T) {
	first := &fakeBackend{name: "anthropic", reply: "from anthropic"}
	second := &fakeBackend{name: "openai", reply: "from openai"}
	a := NewAdapter(Options{
		Backends:  []Backend{first, second},
		Preferred: "openai",
	})

	got := a.Ask(context.Background(), "pick one")

	assert.Equal(t, "from openai", got)
	assert.Zero(t, first.calls)
	assert.Equal(t, 1, second.calls)
	assert.Equal(t, "openai", a.Active())
}

func TestAskFallsBackToFirstAvailable(t *testing.T) {
	first := &fakeBackend{name: "openai", reply: "from openai"}
	a := NewAdapter(Options{
		Backends:  []Backend{first},
		Preferred: "anthropic",
	})

	got := a.Ask(context.Background(), "anything")

	assert.Equal(t, "from openai", got)
	assert.Equal(t, 1, first.calls)
}

func TestAskBackendOptionOverridesForOneCall(t *testing.T) {
	first := &fakeBackend{name: "anthropic", reply: "from anthropic"}
	second := &fakeBackend{name: "openai", reply: "from openai"}
	a := NewAdapter(Options{
		Backends:  []Backend{first, second},
		Preferred: "anthropic",
	})

	got := a.Ask(context.Background(), "route me", WithBackend("openai"))

	assert.Equal(t, "from openai", got)
	assert.Zero(t, first.calls)

	got = a.Ask(context.Background(), "and now")
	assert.Equal(t, "from anthropic", got, "the override must not stick")
}

func TestAskBackendOptionUnknownNameFallsBack(t *testing.T) {
	first := &fakeBackend{name: "anthropic", reply: "from anthropic"}
	a := NewAdapter(Options{Backends: []Backend{first}})

	got := a.Ask(context.Background(), "route me", WithBackend("gemini"))

	assert.Equal(t, "from anthropic", got)
}

func TestAskContextOptionReachesPrompt(t *testing.T) {
	fb := &fakeBackend{name: "anthropic", reply: "ack"}
	a := NewAdapter(Options{Backends: []Backend{fb}, Preferred: "anthropic"})

	a.Ask(context.Background(), "what is this file", WithContext("user is editing main.go"))

	assert.Equal(t, "user is editing main.go", fb.prompt.Context)

	a.Ask(context.Background(), "plain question")
	assert.Empty(t, fb.prompt.Context)
}

func TestAskUsesLocalResponderWithoutBackends(t *testing.T) {
	a := NewAdapter(Options{})

	got := a.Ask(context.Background(), "hello")

	assert.Equal(t, "Hello sir. How may I assist you today?", got)
	assert.Equal(t, "local", a.Active())
	assert.Equal(t, 1, a.HistoryLen(), "local answers still become history")
}

func TestAskBackendFaultDoesNotCascade(t *testing.T) {
	broken := &fakeBackend{name: "anthropic", err: errors.New("boom")}
	healthy := &fakeBackend{name: "openai", reply: "never used"}
	a := NewAdapter(Options{
		Backends:  []Backend{broken, healthy},
		Preferred: "anthropic",
	})

	got := a.Ask(context.Background(), "does this cascade")

	assert.Equal(t, "I'm having trouble connecting to my AI systems right now, sir.", got)
	assert.Zero(t, healthy.calls, "a fault must not silently switch backends")
	assert.Zero(t, a.HistoryLen(), "failed exchanges are not remembered")
}

func TestAskFaultMessagePerBackend(t *testing.T) {
	broken := &fakeBackend{name: "ollama", err: errors.New("connection refused")}
	a := NewAdapter(Options{Backends: []Backend{broken}, Preferred: "ollama"})

	got := a.Ask(context.Background(), "anything")

	assert.Equal(t, "I'm experiencing difficulties with my neural networks, sir.", got)
}

func TestAskTimesOutHangingBackend(t *testing.T) {
	a := NewAdapter(Options{
		Backends: []Backend{&hangingBackend{name: "openai"}},
		Timeout:  50 * time.Millisecond,
	})

	start := time.Now()
	got := a.Ask(context.Background(), "are you stuck")

	assert.Equal(t, "I'm experiencing difficulties with my neural networks, sir.", got)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestAskCarriesRecentHistory(t *testing.T) {
	fb := &fakeBackend{name: "anthropic", reply: "noted"}
	a := NewAdapter(Options{Backends: []Backend{fb}, Preferred: "anthropic"})

	a.Ask(context.Background(), "first question")
	a.Ask(context.Background(), "second question")

	require.Len(t, fb.prompt.Turns, 1)
	assert.Equal(t, "first question", fb.prompt.Turns[0].User)
	assert.Equal(t, "noted", fb.prompt.Turns[0].Assistant)
	assert.Equal(t, "second question", fb.prompt.Question)
	assert.NotEmpty(t, fb.prompt.System)
}

func TestAskContextWindowIsBounded(t *testing.T) {
	fb := &fakeBackend{name: "anthropic", reply: "ack"}
	a := NewAdapter(Options{Backends: []Backend{fb}, Preferred: "anthropic"})

	for i := 0; i < 6; i++ {
		a.Ask(context.Background(), "question")
	}

	assert.Len(t, fb.prompt.Turns, defaultContextTurns)
}

func TestAskUsesPersonaPreamble(t *testing.T) {
	fb := &fakeBackend{name: "anthropic", reply: "ack"}
	a := NewAdapter(Options{Backends: []Backend{fb}, Preferred: "anthropic"})

	_, err := a.SetPersonality("iron_man")
	require.NoError(t, err)
	a.Ask(context.Background(), "status report")

	assert.Equal(t, personaPreambles[ModeIronMan], fb.prompt.System)
	assert.Equal(t, ModeIronMan, a.Personality())
}

func TestClearHistory(t *testing.T) {
	fb := &fakeBackend{name: "anthropic", reply: "ack"}
	a := NewAdapter(Options{Backends: []Backend{fb}, Preferred: "anthropic"})
	a.Ask(context.Background(), "remember this")
	require.Equal(t, 1, a.HistoryLen())

	got := a.ClearHistory()

	assert.Equal(t, "Conversation history cleared, sir.", got)
	assert.Zero(t, a.HistoryLen())
}

func TestSetPersonalityRejectsUnknownMode(t *testing.T) {
	a := NewAdapter(Options{})

	_, err := a.SetPersonality("villain")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "professional, friendly, technical, iron_man")
}

func TestBackendsListEndsWithLocal(t *testing.T) {
	a := NewAdapter(Options{Backends: []Backend{
		&fakeBackend{name: "anthropic"},
		&fakeBackend{name: "ollama"},
	}})

	assert.Equal(t, []string{"anthropic", "ollama", "local"}, a.Backends())
}
