// Package intent is a keyword heuristic over command text. It is a
// diagnostic aid only: dispatch runs on the regex rule table, never on
// these categories.
package intent

import "strings"

const (
	CategorySystemControl = "system_control"
	CategoryMediaControl  = "media_control"
	CategoryInformation   = "information_request"

	ActionOpen   = "open"
	ActionClose  = "close"
	ActionPlay   = "play"
	ActionAnswer = "answer"
)

// Intent is a transient classification; confidence values are fixed
// per category, not computed.
type Intent struct {
	Category   string
	Action     string
	Confidence float64
}

var checks = []struct {
	words      []string
	category   string
	action     string
	confidence float64
}{
	{[]string{"open", "launch", "start", "run"}, CategorySystemControl, ActionOpen, 0.8},
	{[]string{"close", "quit", "exit", "shutdown"}, CategorySystemControl, ActionClose, 0.8},
	{[]string{"play", "music", "song", "video"}, CategoryMediaControl, ActionPlay, 0.8},
	{[]string{"what", "who", "when", "where", "why", "how"}, CategoryInformation, ActionAnswer, 0.7},
}

// Classify runs the checks in order; the first category with any
// keyword present as a whole word wins.
func Classify(text string) Intent {
	seen := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		seen[w] = true
	}

	for _, c := range checks {
		for _, w := range c.words {
			if seen[w] {
				return Intent{Category: c.category, Action: c.action, Confidence: c.confidence}
			}
		}
	}

	return Intent{Category: CategoryInformation, Action: ActionAnswer, Confidence: 0.5}
}
