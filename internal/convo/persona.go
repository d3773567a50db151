package convo

import (
	"fmt"
	"strings"
	"sync"
)

// Personality modes change the system preamble sent to the language
// model. The default preamble is deliberately not any of the named
// modes so that "reset" style behavior stays distinguishable.
const (
	ModeProfessional = "professional"
	ModeFriendly     = "friendly"
	ModeTechnical    = "technical"
	ModeIronMan      = "iron_man"
)

const defaultPreamble = "You are JARVIS, a voice-activated desktop assistant. " +
	"Address the user as 'sir'. Keep answers short and suitable for being read aloud. " +
	"You already handle system commands separately; only answer the question asked."

var personaPreambles = map[string]string{
	ModeProfessional: "You are JARVIS, a professional desktop assistant. " +
		"Address the user as 'sir'. Be formal, precise and brief. " +
		"Answers are spoken aloud, so avoid lists and markup.",
	ModeFriendly: "You are JARVIS, a friendly desktop assistant. " +
		"Address the user as 'sir' but keep a warm, casual tone. " +
		"Answers are spoken aloud, so keep them short and conversational.",
	ModeTechnical: "You are JARVIS, a technical desktop assistant for an engineer. " +
		"Address the user as 'sir'. Prefer exact terminology and concrete numbers. " +
		"Answers are spoken aloud, so stay concise.",
	ModeIronMan: "You are JARVIS, Tony Stark's AI assistant. " +
		"Address the user as 'sir', stay loyal and dryly witty. " +
		"Answers are spoken aloud, so keep them short.",
}

// Persona holds the active personality mode. Safe for concurrent use.
type Persona struct {
	mu   sync.RWMutex
	mode string
}

func NewPersona() *Persona {
	return &Persona{}
}

// ValidModes lists the accepted mode names in a stable order.
func ValidModes() []string {
	return []string{ModeProfessional, ModeFriendly, ModeTechnical, ModeIronMan}
}

// Set switches the personality. Unknown names leave the current mode
// untouched and return an error whose text is safe to speak.
func (p *Persona) Set(mode string) (string, error) {
	mode = strings.ToLower(strings.TrimSpace(mode))
	mode = strings.ReplaceAll(mode, " ", "_")
	if _, ok := personaPreambles[mode]; !ok {
		return "", fmt.Errorf("invalid personality mode. Available modes: %s", strings.Join(ValidModes(), ", "))
	}

	p.mu.Lock()
	p.mode = mode
	p.mu.Unlock()

	return fmt.Sprintf("Personality mode updated to %s, sir.", mode), nil
}

func (p *Persona) Mode() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.mode
}

// Preamble returns the system prompt for the active mode, or the
// default preamble when no mode has been set.
func (p *Persona) Preamble() string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if s, ok := personaPreambles[p.mode]; ok {
		return s
	}
	return defaultPreamble
}
