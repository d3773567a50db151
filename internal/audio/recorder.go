package audio

import (
	"context"
	"math"
	"time"

	"github.com/gordonklaus/portaudio"
)

// Config tunes voice-activity detection. Zero values pick defaults
// that work for a desk microphone at arm's length.
type Config struct {
	SampleRate   int           // default 16000, what whisper expects
	FrameSize    int           // samples per read, default 320 (20 ms)
	SpeechRMS    float64       // frame RMS above this counts as speech
	SilenceHold  time.Duration // quiet time that ends an utterance
	MaxUtterance time.Duration // hard cap on one recording
}

func (c Config) withDefaults() Config {
	if c.SampleRate <= 0 {
		c.SampleRate = 16000
	}
	if c.FrameSize <= 0 {
		c.FrameSize = 320
	}
	if c.SpeechRMS <= 0 {
		c.SpeechRMS = 0.015
	}
	if c.SilenceHold <= 0 {
		c.SilenceHold = 600 * time.Millisecond
	}
	if c.MaxUtterance <= 0 {
		c.MaxUtterance = 10 * time.Second
	}
	return c
}

type Recorder struct {
	cfg Config
}

func NewRecorder(cfg Config) *Recorder {
	return &Recorder{cfg: cfg.withDefaults()}
}

func (r *Recorder) Init() error {
	return portaudio.Initialize()
}

func (r *Recorder) Close() {
	portaudio.Terminate()
}

// Capture waits up to window for speech to begin, then records until
// the speaker stays quiet for SilenceHold or MaxUtterance elapses.
// A nil sample slice with a nil error means nobody spoke.
func (r *Recorder) Capture(ctx context.Context, window time.Duration) ([]float32, error) {
	cfg := r.cfg

	buf := make([]float32, cfg.FrameSize)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(cfg.SampleRate), len(buf), buf)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, err
	}
	defer stream.Stop()

	frameDur := time.Duration(cfg.FrameSize) * time.Second / time.Duration(cfg.SampleRate)
	waitFrames := int(window / frameDur)
	holdFrames := int(cfg.SilenceHold / frameDur)
	maxSamples := int(cfg.MaxUtterance.Seconds() * float64(cfg.SampleRate))

	out := make([]float32, 0, cfg.SampleRate*3)

	var (
		speaking bool
		waited   int
		quiet    int
	)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := stream.Read(); err != nil {
			return nil, err
		}

		loud := rms(buf) > cfg.SpeechRMS

		if !speaking {
			if loud {
				speaking = true
				out = append(out, buf...)
				continue
			}
			waited++
			if waited >= waitFrames {
				return nil, nil
			}
			continue
		}

		out = append(out, buf...)

		if loud {
			quiet = 0
		} else {
			quiet++
			if quiet >= holdFrames {
				break
			}
		}

		if len(out) >= maxSamples {
			break
		}
	}

	return out, nil
}

func rms(frame []float32) float64 {
	var sum float64
	for _, x := range frame {
		sum += float64(x * x)
	}
	return math.Sqrt(sum / float64(len(frame)))
}
