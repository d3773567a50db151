package dispatch

import (
	"context"
	"fmt"
	log "log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/VanshGautamDev/jarvis-ai-desktop-assistant/pkg/util"
)

// Spoken fallbacks for inputs the rule table cannot serve.
const (
	MsgDidNotCatch  = "I didn't catch that, sir."
	MsgHandlerError = "I encountered an error processing that command, sir."
)

// Default priority bands. Lower values match first; rules added at
// runtime land after everything else.
const (
	PrioritySpecific = 10
	PriorityGeneral  = 50
	priorityStep     = 10
)

// HandlerFunc executes one recognized command. arg is the first
// capture group of the matching rule, empty when the rule captures
// nothing.
type HandlerFunc func(ctx context.Context, arg string) (string, error)

// AskFunc answers input no rule matched.
type AskFunc func(ctx context.Context, question string) string

// NotifyFunc observes every served command/response pair.
type NotifyFunc func(command, response string)

// Rule binds a pattern to a handler tag. Rules with equal priority
// keep their registration order.
type Rule struct {
	Pattern  string
	Tag      string
	Priority int

	re  *regexp.Regexp
	seq int
}

// Dispatcher routes spoken commands through an ordered rule table.
// The first matching rule wins; everything else goes to ask. The rule
// slice is replaced wholesale on mutation, so dispatches already
// walking it are unaffected.
type Dispatcher struct {
	handlers map[string]HandlerFunc
	ask      AskFunc
	notify   NotifyFunc

	mu      sync.RWMutex
	rules   []*Rule
	nextSeq int
}

// Options wires a Dispatcher.
type Options struct {
	// Handlers maps rule tags to implementations.
	Handlers map[string]HandlerFunc
	// Ask serves unmatched input. Nil falls back to MsgDidNotCatch.
	Ask AskFunc
	// Notify, when set, sees every command/response pair.
	Notify NotifyFunc
}

func NewDispatcher(opt Options) *Dispatcher {
	return &Dispatcher{
		handlers: opt.Handlers,
		ask:      opt.Ask,
		notify:   opt.Notify,
	}
}

// AddRule compiles and inserts one rule at its stated priority.
func (d *Dispatcher) AddRule(r Rule) error {
	re, err := regexp.Compile(r.Pattern)
	if err != nil {
		return fmt.Errorf("rule %q: %w", r.Pattern, err)
	}
	if _, ok := d.handlers[r.Tag]; !ok {
		return fmt.Errorf("rule %q: no handler registered for tag %q", r.Pattern, r.Tag)
	}
	r.re = re

	d.mu.Lock()
	defer d.mu.Unlock()

	r.seq = d.nextSeq
	d.nextSeq++

	next := make([]*Rule, len(d.rules), len(d.rules)+1)
	copy(next, d.rules)
	next = append(next, &r)
	sort.SliceStable(next, func(i, j int) bool {
		if next[i].Priority != next[j].Priority {
			return next[i].Priority < next[j].Priority
		}
		return next[i].seq < next[j].seq
	})
	d.rules = next

	return nil
}

// AddRules inserts rules in order, stopping at the first bad one.
func (d *Dispatcher) AddRules(rules []Rule) error {
	for _, r := range rules {
		if err := d.AddRule(r); err != nil {
			return err
		}
	}
	return nil
}

// Add registers a runtime rule that is consulted only after every
// existing rule.
func (d *Dispatcher) Add(pattern, tag string) error {
	d.mu.RLock()
	last := PriorityGeneral
	for _, r := range d.rules {
		if r.Priority > last {
			last = r.Priority
		}
	}
	d.mu.RUnlock()

	return d.AddRule(Rule{Pattern: pattern, Tag: tag, Priority: last + priorityStep})
}

// Remove drops the rule whose pattern is exactly pattern. It reports
// whether anything was removed.
func (d *Dispatcher) Remove(pattern string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, r := range d.rules {
		if r.Pattern == pattern {
			next := make([]*Rule, 0, len(d.rules)-1)
			next = append(next, d.rules[:i]...)
			next = append(next, d.rules[i+1:]...)
			d.rules = next
			return true
		}
	}
	return false
}

// Rules returns a snapshot of the table in match order.
func (d *Dispatcher) Rules() []Rule {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Rule, len(d.rules))
	for i, r := range d.rules {
		out[i] = Rule{Pattern: r.Pattern, Tag: r.Tag, Priority: r.Priority}
	}
	return out
}

// Dispatch serves one spoken command and always returns something
// speakable. Matching is case-insensitive via lowercasing; the first
// rule in priority order wins.
func (d *Dispatcher) Dispatch(ctx context.Context, raw string) string {
	input := strings.ToLower(strings.TrimSpace(raw))
	if input == "" {
		return MsgDidNotCatch
	}

	id := uuid.New()
	start := time.Now()
	log.Debug("dispatching", "id", id, "input", util.Truncate(input, 80))

	d.mu.RLock()
	rules := d.rules
	d.mu.RUnlock()

	response := ""
	tag := "fallback"
	matched := false
	for _, r := range rules {
		m := r.re.FindStringSubmatch(input)
		if m == nil {
			continue
		}
		matched = true
		tag = r.Tag

		arg := ""
		if len(m) > 1 {
			arg = m[1]
		}

		resp, err := invoke(ctx, d.handlers[r.Tag], arg)
		if err != nil {
			log.Error("handler failed", "id", id, "tag", r.Tag, "error", err)
			response = MsgHandlerError
		} else {
			response = resp
		}
		break
	}

	if !matched {
		if d.ask == nil {
			response = MsgDidNotCatch
		} else {
			response = d.ask(ctx, input)
		}
	}
	log.Info("command served", "id", id, "tag", tag, "took", time.Since(start))

	if d.notify != nil {
		d.notify(input, response)
	}
	return response
}

// invoke shields the dispatcher from a panicking handler so one bad
// rule cannot take down the command loop.
func invoke(ctx context.Context, h HandlerFunc, arg string) (resp string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	if h == nil {
		return "", fmt.Errorf("nil handler")
	}
	return h(ctx, arg)
}
