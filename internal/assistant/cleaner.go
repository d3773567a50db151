package assistant

import (
	"regexp"
	"sort"
	"strings"
)

// Cleaner strips wake phrases and politeness fillers so the rule
// table sees only the command itself. Multi-word phrases are removed
// before their single-word parts, and only at word boundaries, so
// "pleased" survives a "please" filler.
type Cleaner struct {
	re *regexp.Regexp
}

func NewCleaner(words []string) *Cleaner {
	parts := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		fields := strings.Fields(w)
		for i := range fields {
			fields[i] = regexp.QuoteMeta(fields[i])
		}
		parts = append(parts, strings.Join(fields, `\s+`))
	}
	if len(parts) == 0 {
		return &Cleaner{}
	}

	sort.Slice(parts, func(i, j int) bool { return len(parts[i]) > len(parts[j]) })

	return &Cleaner{
		re: regexp.MustCompile(`\b(?:` + strings.Join(parts, "|") + `)\b`),
	}
}

// Clean lowercases text, removes the configured phrases, collapses
// whitespace and trims stray punctuation left behind by the speech
// recognizer.
func (c *Cleaner) Clean(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	if c.re != nil {
		text = c.re.ReplaceAllString(text, " ")
	}
	text = strings.Join(strings.Fields(text), " ")
	return strings.Trim(text, " .!?,;:")
}
