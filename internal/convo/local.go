package convo

import (
	"context"
	"strings"
	"time"
)

// Responder answers a handful of common questions without any model.
// It is the terminal fallback when no backend is reachable, so it must
// never fail.
type Responder struct {
	now func() time.Time
}

func NewResponder() *Responder {
	return &Responder{now: time.Now}
}

func (r *Responder) Name() string { return "local" }

func (r *Responder) Generate(_ context.Context, p Prompt) (string, error) {
	q := strings.ToLower(p.Question)

	switch {
	case containsAny(q, "hello", "hi", "hey"):
		return "Hello sir. How may I assist you today?", nil
	case strings.Contains(q, "time") || strings.Contains(q, "date"):
		now := r.now()
		return "It is currently " + now.Format("03:04 PM on January 2, 2006") + ", sir.", nil
	case strings.Contains(q, "weather"):
		return "I would need to access weather services to provide that information, sir.", nil
	case strings.Contains(q, "how are you"):
		return "All systems are operating at optimal capacity, sir.", nil
	}

	return "I apologize, sir, but I need access to my AI systems to answer that question properly.", nil
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
