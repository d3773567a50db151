package assistant

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSpeaker struct {
	mu    sync.Mutex
	lines []string
}

func (f *fakeSpeaker) Speak(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = append(f.lines, "speak:"+text)
}

func (f *fakeSpeaker) SpeakNow(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = append(f.lines, "now:"+text)
}

func (f *fakeSpeaker) Drain() {}

func (f *fakeSpeaker) all() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lines...)
}

// scriptedListener replays utterances in order, then signals done and
// parks until the context is canceled.
type scriptedListener struct {
	mu     sync.Mutex
	script []string
	done   chan struct{}
	once   sync.Once
}

func newScriptedListener(utterances ...string) *scriptedListener {
	return &scriptedListener{script: utterances, done: make(chan struct{})}
}

func (l *scriptedListener) Listen(ctx context.Context, _ time.Duration) (string, error) {
	l.mu.Lock()
	if len(l.script) > 0 {
		next := l.script[0]
		l.script = l.script[1:]
		l.mu.Unlock()
		return next, nil
	}
	l.mu.Unlock()

	l.once.Do(func() { close(l.done) })
	<-ctx.Done()
	return "", ctx.Err()
}

type fakeDispatcher struct {
	mu   sync.Mutex
	seen []string
}

func (d *fakeDispatcher) Dispatch(_ context.Context, text string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen = append(d.seen, text)
	return "did: " + text
}

func (d *fakeDispatcher) commands() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.seen...)
}

func testCleaner() *Cleaner {
	return NewCleaner([]string{"hey jarvis", "jarvis", "please", "can you"})
}

func TestWakePhraseWithEmbeddedCommand(t *testing.T) {
	lst := newScriptedListener("just some background noise", "hey jarvis open calculator")
	spk := &fakeSpeaker{}
	dsp := &fakeDispatcher{}
	a := New(Options{Listener: lst, Speaker: spk, Dispatcher: dsp, Cleaner: testCleaner()})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- a.Run(ctx) }()

	<-lst.done
	cancel()
	require.NoError(t, <-errCh)

	assert.Equal(t, []string{"open calculator"}, dsp.commands(),
		"chatter without the wake phrase must be ignored")

	lines := spk.all()
	require.NotEmpty(t, lines)
	assert.Equal(t, "speak:"+WelcomeLine, lines[0])
	assert.Contains(t, lines, "speak:did: open calculator")
	assert.Equal(t, "speak:"+GoodbyeLine, lines[len(lines)-1])
}

func TestBareWakeThenFollowUpCommand(t *testing.T) {
	lst := newScriptedListener("jarvis", "what time is it please")
	spk := &fakeSpeaker{}
	dsp := &fakeDispatcher{}

	var wakes, restores int
	a := New(Options{
		Listener: lst, Speaker: spk, Dispatcher: dsp, Cleaner: testCleaner(),
		OnWake:       func() { wakes++ },
		AfterCommand: func() { restores++ },
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- a.Run(ctx) }()

	<-lst.done
	cancel()
	require.NoError(t, <-errCh)

	assert.Equal(t, []string{
		"speak:" + WelcomeLine,
		"now:" + ackLine,
		"speak:did: what time is it",
		"speak:" + GoodbyeLine,
	}, spk.all())
	assert.Equal(t, []string{"what time is it"}, dsp.commands())
	assert.Equal(t, 1, wakes)
	assert.Equal(t, 1, restores)
}

func TestSilenceAfterAckStaysQuiet(t *testing.T) {
	lst := newScriptedListener("hey jarvis", "")
	spk := &fakeSpeaker{}
	dsp := &fakeDispatcher{}
	a := New(Options{Listener: lst, Speaker: spk, Dispatcher: dsp, Cleaner: testCleaner()})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- a.Run(ctx) }()

	<-lst.done
	cancel()
	require.NoError(t, <-errCh)

	assert.Empty(t, dsp.commands(), "silence must not reach the dispatcher")
	assert.Contains(t, spk.all(), "now:"+ackLine)
}

func TestInjectedRequestsWithoutMicrophone(t *testing.T) {
	spk := &fakeSpeaker{}
	dsp := &fakeDispatcher{}
	a := New(Options{Speaker: spk, Dispatcher: dsp, Cleaner: testCleaner()})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- a.Run(ctx) }()

	reply := make(chan string, 1)

	require.True(t, a.Submit(Request{Kind: KindText, Text: "Jarvis, open calculator please", ReplyTo: reply}))
	assert.Equal(t, "did: open calculator", <-reply)

	require.True(t, a.Submit(Request{Kind: KindSay, Text: "Dinner is ready", ReplyTo: reply}))
	assert.Equal(t, "Dinner is ready", <-reply)

	require.True(t, a.Submit(Request{Kind: KindTrigger, ReplyTo: reply}))
	assert.Equal(t, "The microphone is disabled, sir.", <-reply)

	cancel()
	require.NoError(t, <-errCh)

	assert.Equal(t, []string{"open calculator"}, dsp.commands())
	assert.Contains(t, spk.all(), "speak:Dinner is ready")
}

// triggerListener hears silence on wake polls and hands out one
// command when the longer command window opens.
type triggerListener struct {
	mu   sync.Mutex
	cmd  string
	used bool
}

func (l *triggerListener) Listen(ctx context.Context, window time.Duration) (string, error) {
	l.mu.Lock()
	if !l.used && window >= 5*time.Second {
		l.used = true
		l.mu.Unlock()
		return l.cmd, nil
	}
	l.mu.Unlock()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(time.Millisecond):
		return "", nil
	}
}

func TestTriggerRunsAWakeCycle(t *testing.T) {
	lst := &triggerListener{cmd: "set volume to 40"}
	spk := &fakeSpeaker{}
	dsp := &fakeDispatcher{}
	a := New(Options{Listener: lst, Speaker: spk, Dispatcher: dsp, Cleaner: testCleaner()})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- a.Run(ctx) }()

	reply := make(chan string, 1)
	require.True(t, a.Submit(Request{Kind: KindTrigger, ReplyTo: reply}))
	assert.Equal(t, ackLine, <-reply)

	require.Eventually(t, func() bool { return len(dsp.commands()) == 1 },
		2*time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-errCh)

	assert.Equal(t, []string{"set volume to 40"}, dsp.commands())
	assert.Contains(t, spk.all(), "now:"+ackLine)
}
