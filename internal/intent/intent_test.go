package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		text string
		want Intent
	}{
		{"open app", "open firefox", Intent{CategorySystemControl, ActionOpen, 0.8}},
		{"launch", "LAUNCH the editor", Intent{CategorySystemControl, ActionOpen, 0.8}},
		{"close", "close spotify", Intent{CategorySystemControl, ActionClose, 0.8}},
		{"media", "play some jazz", Intent{CategoryMediaControl, ActionPlay, 0.8}},
		{"question", "what time is it", Intent{CategoryInformation, ActionAnswer, 0.7}},
		{"default", "tell me a joke", Intent{CategoryInformation, ActionAnswer, 0.5}},
		{"whole words only", "display the report", Intent{CategoryInformation, ActionAnswer, 0.5}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.text))
		})
	}
}

func TestClassifyOrderWins(t *testing.T) {
	// "open" outranks the media words even when both appear.
	got := Classify("open the music player")
	assert.Equal(t, CategorySystemControl, got.Category)
	assert.Equal(t, ActionOpen, got.Action)
}
