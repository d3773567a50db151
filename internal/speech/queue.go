package speech

import (
	log "log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/VanshGautamDev/jarvis-ai-desktop-assistant/pkg/util"
)

// DefaultQueueDepth bounds how many utterances may wait their turn.
const DefaultQueueDepth = 16

// Synthesizer turns one text into audible speech. Say blocks until
// the utterance finishes; Stop aborts it from another goroutine.
type Synthesizer interface {
	Say(text string) error
	Stop()
	Close() error
}

// Queue serializes speech so replies never talk over each other.
// Speak never blocks the caller; when the queue is full the utterance
// is dropped rather than stalling the command loop.
type Queue struct {
	synth Synthesizer
	ch    chan string
	done  chan struct{}

	wg       sync.WaitGroup
	sayMu    sync.Mutex
	speaking atomic.Bool

	mu     sync.Mutex
	closed bool
}

func NewQueue(s Synthesizer, depth int) *Queue {
	if depth <= 0 {
		depth = DefaultQueueDepth
	}
	q := &Queue{
		synth: s,
		ch:    make(chan string, depth),
		done:  make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *Queue) run() {
	for text := range q.ch {
		q.say(text)
		q.wg.Done()
	}
	close(q.done)
}

func (q *Queue) say(text string) {
	q.sayMu.Lock()
	defer q.sayMu.Unlock()

	q.speaking.Store(true)
	defer q.speaking.Store(false)

	if err := q.synth.Say(text); err != nil {
		log.Warn("speech failed", "err", err)
	}
}

// Speak enqueues text and returns immediately. Blank text and
// utterances beyond the queue depth are discarded.
func (q *Queue) Speak(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}

	q.wg.Add(1)
	select {
	case q.ch <- text:
	default:
		q.wg.Done()
		log.Warn("speech queue full, dropping", "text", util.Truncate(text, 40))
	}
}

// SpeakNow cuts the current utterance short and speaks text ahead of
// anything still queued. It blocks until text has been spoken.
func (q *Queue) SpeakNow(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.mu.Unlock()

	q.synth.Stop()
	q.say(text)
}

// Busy reports whether something is being spoken or waiting to be.
func (q *Queue) Busy() bool {
	return q.speaking.Load() || len(q.ch) > 0
}

// Drain blocks until every queued utterance has been spoken.
func (q *Queue) Drain() {
	q.wg.Wait()
}

// Close finishes queued speech, stops the worker and releases the
// synthesizer.
func (q *Queue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.mu.Unlock()

	q.wg.Wait()
	close(q.ch)
	<-q.done

	return q.synth.Close()
}
