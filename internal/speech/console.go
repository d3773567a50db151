package speech

import (
	"fmt"
	"io"
	"os"
)

// Console prints replies instead of speaking them, for machines
// without espeak-ng or when running with --no-tts.
type Console struct {
	w io.Writer
}

func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{w: w}
}

func (c *Console) Say(text string) error {
	_, err := fmt.Fprintf(c.w, "JARVIS: %s\n", text)
	return err
}

func (c *Console) Stop() {}

func (c *Console) Close() error { return nil }
