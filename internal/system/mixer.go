package system

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	log "log/slog"
)

var volumeRe = regexp.MustCompile(`(\d+)\s*%`)

// sinkInput is one PulseAudio playback stream.
type sinkInput struct {
	ID     int
	Volume int
	App    string
}

// Duck lowers every foreign playback stream to factor of its current
// volume (never below 20%) and remembers the originals. Streams owned
// by the assistant itself are left alone. Calling Duck while already
// ducked is a no-op.
func (c *Controller) Duck(ctx context.Context, factor float64) error {
	c.duckMu.Lock()
	defer c.duckMu.Unlock()

	if c.ducked != nil {
		return nil
	}

	streams, err := c.listSinkInputs(ctx)
	if err != nil {
		return fmt.Errorf("list sink inputs: %w", err)
	}

	saved := make(map[int]int)
	for _, s := range streams {
		if c.isSelfAudio(s.App) {
			continue
		}

		target := int(float64(s.Volume) * factor)
		if target < 20 {
			target = 20
		}
		if target >= s.Volume {
			continue
		}

		if err := c.setSinkInputVolume(ctx, s.ID, target); err != nil {
			log.Warn("duck stream failed", "id", s.ID, "err", err)
			continue
		}
		saved[s.ID] = s.Volume
	}

	c.ducked = saved
	return nil
}

// Restore puts every ducked stream back to its remembered volume.
// Streams that disappeared while ducked are skipped.
func (c *Controller) Restore(ctx context.Context) error {
	c.duckMu.Lock()
	defer c.duckMu.Unlock()

	if c.ducked == nil {
		return nil
	}

	streams, err := c.listSinkInputs(ctx)
	if err != nil {
		c.ducked = nil
		return fmt.Errorf("list sink inputs: %w", err)
	}

	alive := make(map[int]bool, len(streams))
	for _, s := range streams {
		alive[s.ID] = true
	}

	for id, vol := range c.ducked {
		if !alive[id] {
			continue
		}
		if err := c.setSinkInputVolume(ctx, id, vol); err != nil {
			log.Warn("restore stream failed", "id", id, "err", err)
		}
	}

	c.ducked = nil
	return nil
}

func (c *Controller) isSelfAudio(app string) bool {
	for _, name := range c.selfAudio {
		if strings.EqualFold(app, name) {
			return true
		}
	}
	return false
}

// listSinkInputs parses `pactl list sink-inputs` output: one block per
// stream, introduced by "Sink Input #<id>", with a "Volume:" line and
// an `application.name = "..."` property.
func (c *Controller) listSinkInputs(ctx context.Context) ([]sinkInput, error) {
	out, err := c.run.Run(ctx, "pactl", "list", "sink-inputs")
	if err != nil {
		return nil, err
	}

	blocks := strings.Split(out, "Sink Input #")
	if len(blocks) <= 1 {
		return nil, nil
	}

	var streams []sinkInput
	for _, block := range blocks[1:] {
		nl := strings.IndexByte(block, '\n')
		if nl <= 0 {
			continue
		}

		id, err := strconv.Atoi(strings.TrimSpace(block[:nl]))
		if err != nil {
			continue
		}

		s := sinkInput{ID: id, Volume: -1}
		for _, line := range strings.Split(block[nl+1:], "\n") {
			line = strings.TrimSpace(line)

			if strings.HasPrefix(line, "Volume:") && s.Volume < 0 {
				if m := volumeRe.FindStringSubmatch(line); len(m) == 2 {
					if v, err := strconv.Atoi(m[1]); err == nil {
						s.Volume = v
					}
				}
			}

			if strings.HasPrefix(line, "application.name =") && s.App == "" {
				if open := strings.IndexByte(line, '"'); open >= 0 {
					rest := line[open+1:]
					if end := strings.IndexByte(rest, '"'); end >= 0 {
						s.App = rest[:end]
					}
				}
			}
		}

		if s.Volume < 0 {
			continue
		}
		streams = append(streams, s)
	}

	return streams, nil
}

func (c *Controller) setSinkInputVolume(ctx context.Context, id, percent int) error {
	if percent < 0 {
		percent = 0
	}
	if percent > 150 {
		percent = 150
	}

	_, err := c.run.Run(ctx, "pactl", "set-sink-input-volume",
		strconv.Itoa(id), fmt.Sprintf("%d%%", percent))
	return err
}
