package assistant

import (
	"context"
	log "log/slog"
	"strings"
	"time"
)

// Spoken lines for the session boundaries.
const (
	WelcomeLine = "JARVIS is online and ready for commands, sir."
	GoodbyeLine = "JARVIS is shutting down. Goodbye sir."
	ackLine     = "Yes sir?"
)

// Listener hears one utterance. Empty text with a nil error means
// nobody spoke within the window.
type Listener interface {
	Listen(ctx context.Context, window time.Duration) (string, error)
}

// Speaker voices replies without blocking the command loop.
type Speaker interface {
	Speak(text string)
	SpeakNow(text string)
	Drain()
}

// Dispatcher routes one cleaned command to a speakable response.
type Dispatcher interface {
	Dispatch(ctx context.Context, text string) string
}

type Kind int

const (
	// KindText dispatches the given text as if it had been spoken.
	KindText Kind = iota
	// KindTrigger starts a wake cycle without the wake phrase.
	KindTrigger
	// KindSay speaks the given text verbatim.
	KindSay
)

// Request is work injected into the assistant loop, typically from
// the control socket.
type Request struct {
	Kind Kind
	Text string
	// ReplyTo, when set, receives the response. It must have room for
	// one message; the loop never blocks on it.
	ReplyTo chan string
}

// Options wire an Assistant.
type Options struct {
	// Listener is the microphone. Nil runs the assistant without a
	// wake loop; only injected requests are served.
	Listener   Listener
	Speaker    Speaker
	Dispatcher Dispatcher
	Cleaner    *Cleaner

	WakePhrases   []string
	WakeWindow    time.Duration
	CommandWindow time.Duration

	// OnWake runs after the wake phrase is acknowledged, before the
	// command window opens. Used to chime and duck other audio.
	OnWake func()
	// AfterCommand runs when a wake cycle ends.
	AfterCommand func()
}

// Assistant is the single worker that owns the session: it hears a
// wake phrase, captures the command, dispatches it and speaks the
// response. Requests from the control socket are woven into the same
// loop, so commands never execute concurrently.
type Assistant struct {
	listener Listener
	speaker  Speaker
	dispatch Dispatcher
	cleaner  *Cleaner

	wakePhrases   []string
	wakeWindow    time.Duration
	commandWindow time.Duration

	onWake       func()
	afterCommand func()

	requests chan Request
}

func New(opt Options) *Assistant {
	a := &Assistant{
		listener:      opt.Listener,
		speaker:       opt.Speaker,
		dispatch:      opt.Dispatcher,
		cleaner:       opt.Cleaner,
		wakePhrases:   opt.WakePhrases,
		wakeWindow:    opt.WakeWindow,
		commandWindow: opt.CommandWindow,
		onWake:        opt.OnWake,
		afterCommand:  opt.AfterCommand,
		requests:      make(chan Request, 8),
	}
	if a.cleaner == nil {
		a.cleaner = NewCleaner(nil)
	}
	if len(a.wakePhrases) == 0 {
		a.wakePhrases = []string{"hey jarvis", "jarvis"}
	}
	if a.wakeWindow <= 0 {
		a.wakeWindow = 2 * time.Second
	}
	if a.commandWindow <= 0 {
		a.commandWindow = 8 * time.Second
	}
	return a
}

// Submit hands a request to the loop without blocking. It reports
// false when the loop is saturated.
func (a *Assistant) Submit(req Request) bool {
	select {
	case a.requests <- req:
		return true
	default:
		return false
	}
}

// Run drives the session until ctx is canceled. It always says
// goodbye and lets queued speech finish before returning.
func (a *Assistant) Run(ctx context.Context) error {
	a.speaker.Speak(WelcomeLine)
	defer func() {
		a.speaker.Speak(GoodbyeLine)
		a.speaker.Drain()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case req := <-a.requests:
			a.serve(ctx, req)
			continue
		default:
		}

		if a.listener == nil {
			select {
			case <-ctx.Done():
				return nil
			case req := <-a.requests:
				a.serve(ctx, req)
			}
			continue
		}

		heard, err := a.listener.Listen(ctx, a.wakeWindow)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Warn("listening failed", "err", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		if !a.containsWake(heard) {
			continue
		}

		// The wake utterance may already carry the command, as in
		// "hey jarvis open calculator".
		if cmd := a.cleaner.Clean(heard); cmd != "" {
			a.respond(ctx, cmd)
			continue
		}
		a.wakeCycle(ctx)
	}
}

func (a *Assistant) serve(ctx context.Context, req Request) {
	switch req.Kind {
	case KindSay:
		a.speaker.Speak(req.Text)
		a.reply(req, req.Text)

	case KindText:
		resp := a.dispatch.Dispatch(ctx, a.cleaner.Clean(req.Text))
		a.speaker.Speak(resp)
		a.reply(req, resp)

	case KindTrigger:
		if a.listener == nil {
			a.reply(req, "The microphone is disabled, sir.")
			return
		}
		a.reply(req, ackLine)
		a.wakeCycle(ctx)
	}
}

func (a *Assistant) reply(req Request, text string) {
	if req.ReplyTo == nil {
		return
	}
	select {
	case req.ReplyTo <- text:
	default:
	}
}

// wakeCycle acknowledges the wake phrase and serves one follow-up
// command.
func (a *Assistant) wakeCycle(ctx context.Context) {
	a.speaker.SpeakNow(ackLine)
	if a.onWake != nil {
		a.onWake()
	}
	if a.afterCommand != nil {
		defer a.afterCommand()
	}

	heard, err := a.listener.Listen(ctx, a.commandWindow)
	if err != nil {
		if ctx.Err() == nil {
			log.Warn("command capture failed", "err", err)
		}
		return
	}
	if strings.TrimSpace(heard) == "" {
		// silence after the ack; go back to sleep quietly
		return
	}

	a.respond(ctx, a.cleaner.Clean(heard))
}

func (a *Assistant) respond(ctx context.Context, cmd string) {
	a.speaker.Speak(a.dispatch.Dispatch(ctx, cmd))
}

func (a *Assistant) containsWake(text string) bool {
	if text == "" {
		return false
	}
	for _, phrase := range a.wakePhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}
