package convo

import "context"

// Prompt carries everything a backend needs to produce one reply.
type Prompt struct {
	// System is the personality preamble.
	System string
	// Context is optional caller-supplied background, rendered as a
	// second system line when present.
	Context string
	// Turns are the most recent exchanges, oldest first.
	Turns []Turn
	// Question is the user's current input.
	Question string
}

// Backend generates one assistant reply. Implementations must honor
// ctx cancellation and return an error rather than a made-up answer
// when the underlying service fails.
type Backend interface {
	Name() string
	Generate(ctx context.Context, p Prompt) (string, error)
}
