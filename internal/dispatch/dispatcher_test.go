package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoHandler(prefix string) HandlerFunc {
	return func(_ context.Context, arg string) (string, error) {
		return prefix + ":" + arg, nil
	}
}

func TestDispatchEmptyInput(t *testing.T) {
	askCalled := false
	d := NewDispatcher(Options{
		Handlers: map[string]HandlerFunc{},
		Ask: func(_ context.Context, q string) string {
			askCalled = true
			return "asked"
		},
	})

	assert.Equal(t, MsgDidNotCatch, d.Dispatch(context.Background(), "   "))
	assert.False(t, askCalled, "blank input must not reach the fallback")
}

func TestDispatchFirstMatchWins(t *testing.T) {
	d := NewDispatcher(Options{Handlers: map[string]HandlerFunc{
		"first":  echoHandler("first"),
		"second": echoHandler("second"),
	}})
	require.NoError(t, d.AddRule(Rule{Pattern: `volume`, Tag: "first", Priority: PrioritySpecific}))
	require.NoError(t, d.AddRule(Rule{Pattern: `volume up`, Tag: "second", Priority: PrioritySpecific}))

	got := d.Dispatch(context.Background(), "volume up")

	assert.Equal(t, "first:", got, "equal priority resolves by registration order")
}

func TestDispatchPriorityOutranksOrder(t *testing.T) {
	d := NewDispatcher(Options{Handlers: map[string]HandlerFunc{
		"general":  echoHandler("general"),
		"specific": echoHandler("specific"),
	}})
	require.NoError(t, d.AddRule(Rule{Pattern: `open (.+)`, Tag: "general", Priority: PriorityGeneral}))
	require.NoError(t, d.AddRule(Rule{Pattern: `open youtube`, Tag: "specific", Priority: PrioritySpecific}))

	got := d.Dispatch(context.Background(), "open youtube")

	assert.Equal(t, "specific:", got, "later rule with lower priority value must win")
}

func TestDispatchCapturesArgument(t *testing.T) {
	d := NewDispatcher(Options{Handlers: map[string]HandlerFunc{
		"open": echoHandler("open"),
	}})
	require.NoError(t, d.AddRule(Rule{Pattern: `open (.+)`, Tag: "open", Priority: PriorityGeneral}))

	assert.Equal(t, "open:calculator", d.Dispatch(context.Background(), "OPEN Calculator"))
}

func TestDispatchFallsBackToAsk(t *testing.T) {
	var askedWith string
	d := NewDispatcher(Options{
		Handlers: map[string]HandlerFunc{"open": echoHandler("open")},
		Ask: func(_ context.Context, q string) string {
			askedWith = q
			return "the capital of france is paris"
		},
	})
	require.NoError(t, d.AddRule(Rule{Pattern: `open (.+)`, Tag: "open", Priority: PriorityGeneral}))

	got := d.Dispatch(context.Background(), "  What Is The Capital Of France?  ")

	assert.Equal(t, "the capital of france is paris", got)
	assert.Equal(t, "what is the capital of france?", askedWith, "fallback sees lowercased trimmed input")
}

func TestDispatchWithoutAskFunc(t *testing.T) {
	d := NewDispatcher(Options{Handlers: map[string]HandlerFunc{}})

	assert.Equal(t, MsgDidNotCatch, d.Dispatch(context.Background(), "anything at all"))
}

func TestDispatchHandlerErrorIsSpoken(t *testing.T) {
	d := NewDispatcher(Options{Handlers: map[string]HandlerFunc{
		"broken": func(_ context.Context, _ string) (string, error) {
			return "", errors.New("exec blew up")
		},
	}})
	require.NoError(t, d.AddRule(Rule{Pattern: `break`, Tag: "broken", Priority: PrioritySpecific}))

	assert.Equal(t, MsgHandlerError, d.Dispatch(context.Background(), "break"))
}

func TestDispatchHandlerPanicIsContained(t *testing.T) {
	d := NewDispatcher(Options{Handlers: map[string]HandlerFunc{
		"panicky": func(_ context.Context, _ string) (string, error) {
			panic("nil map write")
		},
	}})
	require.NoError(t, d.AddRule(Rule{Pattern: `panic`, Tag: "panicky", Priority: PrioritySpecific}))

	assert.Equal(t, MsgHandlerError, d.Dispatch(context.Background(), "panic now"))
}

func TestAddAppendsAtLowestPriority(t *testing.T) {
	d := NewDispatcher(Options{Handlers: map[string]HandlerFunc{
		"base":  echoHandler("base"),
		"added": echoHandler("added"),
	}})
	require.NoError(t, d.AddRule(Rule{Pattern: `hello (.+)`, Tag: "base", Priority: PriorityGeneral}))

	require.NoError(t, d.Add(`hello (.+)`, "added"))

	assert.Equal(t, "base:world", d.Dispatch(context.Background(), "hello world"),
		"runtime rules must not outrank existing ones")

	require.NoError(t, d.Add(`goodbye (.+)`, "added"))
	assert.Equal(t, "added:world", d.Dispatch(context.Background(), "goodbye world"))
}

func TestAddRuleRejectsBadInput(t *testing.T) {
	d := NewDispatcher(Options{Handlers: map[string]HandlerFunc{"ok": echoHandler("ok")}})

	assert.Error(t, d.AddRule(Rule{Pattern: `(`, Tag: "ok"}), "unbalanced pattern must fail")
	assert.Error(t, d.AddRule(Rule{Pattern: `fine`, Tag: "missing"}), "unknown tag must fail")
	assert.Empty(t, d.Rules())
}

func TestRemoveByExactPattern(t *testing.T) {
	d := NewDispatcher(Options{
		Handlers: map[string]HandlerFunc{"open": echoHandler("open")},
		Ask:      func(_ context.Context, q string) string { return "fell through" },
	})
	require.NoError(t, d.AddRule(Rule{Pattern: `open (.+)`, Tag: "open", Priority: PriorityGeneral}))

	assert.False(t, d.Remove(`open (.*)`), "near-miss pattern must not remove")
	assert.True(t, d.Remove(`open (.+)`))
	assert.False(t, d.Remove(`open (.+)`), "second removal finds nothing")

	assert.Equal(t, "fell through", d.Dispatch(context.Background(), "open calculator"))
}

func TestRulesSnapshotInMatchOrder(t *testing.T) {
	d := NewDispatcher(Options{Handlers: map[string]HandlerFunc{"h": echoHandler("h")}})
	require.NoError(t, d.AddRule(Rule{Pattern: `b`, Tag: "h", Priority: PriorityGeneral}))
	require.NoError(t, d.AddRule(Rule{Pattern: `a`, Tag: "h", Priority: PrioritySpecific}))

	rules := d.Rules()

	require.Len(t, rules, 2)
	assert.Equal(t, `a`, rules[0].Pattern)
	assert.Equal(t, `b`, rules[1].Pattern)
}

func TestDispatchNotifiesObserver(t *testing.T) {
	var gotCmd, gotResp string
	d := NewDispatcher(Options{
		Handlers: map[string]HandlerFunc{"open": echoHandler("open")},
		Notify: func(cmd, resp string) {
			gotCmd, gotResp = cmd, resp
		},
	})
	require.NoError(t, d.AddRule(Rule{Pattern: `open (.+)`, Tag: "open", Priority: PriorityGeneral}))

	d.Dispatch(context.Background(), "Open Firefox")

	assert.Equal(t, "open firefox", gotCmd)
	assert.Equal(t, "open:firefox", gotResp)
}

func TestDispatchDuringMutation(t *testing.T) {
	d := NewDispatcher(Options{Handlers: map[string]HandlerFunc{"h": echoHandler("h")}})
	require.NoError(t, d.AddRule(Rule{Pattern: `base (.+)`, Tag: "h", Priority: PriorityGeneral}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = d.Add(fmt.Sprintf(`extra%d (.+)`, n), "h")
		}(i)
		go func() {
			defer wg.Done()
			assert.Equal(t, "h:thing", d.Dispatch(context.Background(), "base thing"))
		}()
	}
	wg.Wait()

	assert.Len(t, d.Rules(), 9)
}
