package listen

import (
	"context"
	log "log/slog"
	"strings"
	"time"

	"github.com/VanshGautamDev/jarvis-ai-desktop-assistant/internal/audio"
	"github.com/VanshGautamDev/jarvis-ai-desktop-assistant/pkg/stt"
)

// Mic couples the microphone recorder with the speech recognizer.
type Mic struct {
	rec  *audio.Recorder
	tr   *stt.Transcriber
	lang string
}

func NewMic(rec *audio.Recorder, tr *stt.Transcriber, lang string) *Mic {
	return &Mic{rec: rec, tr: tr, lang: lang}
}

// Listen waits up to window for someone to start talking and returns
// the transcript, lowercased and trimmed. Empty text with a nil error
// means nobody spoke.
func (m *Mic) Listen(ctx context.Context, window time.Duration) (string, error) {
	pcm, err := m.rec.Capture(ctx, window)
	if err != nil {
		return "", err
	}
	if len(pcm) == 0 {
		return "", nil
	}

	res, err := m.tr.TranscribePCM(ctx, pcm, stt.Options{Language: m.lang})
	if err != nil {
		return "", err
	}

	text := strings.ToLower(strings.TrimSpace(res.Text))
	log.Debug("heard", "text", text, "samples", len(pcm))
	return text, nil
}
