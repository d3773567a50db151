package system

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	log "log/slog"

	"github.com/VanshGautamDev/jarvis-ai-desktop-assistant/pkg/util"
)

// appAliases maps spoken application names to executables. Anything
// not listed is tried verbatim via PATH lookup.
var appAliases = map[string]string{
	"calculator":         "gnome-calculator",
	"browser":            "firefox",
	"web browser":        "firefox",
	"terminal":           "gnome-terminal",
	"files":              "nautilus",
	"file manager":       "nautilus",
	"text editor":        "gedit",
	"editor":             "gedit",
	"settings":           "gnome-control-center",
	"vs code":            "code",
	"visual studio code": "code",
	"music player":       "rhythmbox",
}

var musicExts = map[string]bool{
	".mp3":  true,
	".ogg":  true,
	".oga":  true,
	".opus": true,
	".flac": true,
	".wav":  true,
	".m4a":  true,
}

// Options configure a Controller. Zero values mean: real exec, the
// current user's home, ~/Music, 10 search results.
type Options struct {
	Runner      Runner
	Home        string
	MusicDirs   []string
	SearchLimit int

	// SelfAudio lists PulseAudio application names that belong to the
	// assistant itself and must never be ducked.
	SelfAudio []string
}

// Controller performs the OS-level verbs behind voice commands. Every
// method returns a Result whose Message is spoken back to the user.
type Controller struct {
	run         Runner
	home        string
	musicDirs   []string
	searchLimit int
	selfAudio   []string

	sampler *Sampler

	duckMu sync.Mutex
	ducked map[int]int
}

func NewController(opts Options) *Controller {
	run := opts.Runner
	if run == nil {
		run = execRunner{}
	}

	home := opts.Home
	if home == "" {
		if h, err := os.UserHomeDir(); err == nil {
			home = h
		} else {
			home = "/"
		}
	}

	dirs := opts.MusicDirs
	if len(dirs) == 0 {
		dirs = []string{filepath.Join(home, "Music")}
	}

	limit := opts.SearchLimit
	if limit <= 0 {
		limit = 10
	}

	selfAudio := opts.SelfAudio
	if len(selfAudio) == 0 {
		selfAudio = []string{"jarvis", "espeak", "espeak-ng"}
	}

	return &Controller{
		run:         run,
		home:        home,
		musicDirs:   dirs,
		searchLimit: limit,
		selfAudio:   selfAudio,
		sampler:     NewSampler(),
	}
}

func (c *Controller) OpenApp(ctx context.Context, name string) Result {
	name = strings.TrimSpace(name)
	if name == "" {
		return failf("Which application should I open, sir?")
	}

	exe := name
	if alias, ok := appAliases[strings.ToLower(name)]; ok {
		exe = alias
	}

	if err := c.run.Start(exe); err != nil {
		log.Warn("open app failed", "app", exe, "err", err)
		return failf("I couldn't find or open %s, sir.", name)
	}

	return okf("Opening %s, sir.", name)
}

func (c *Controller) CloseApp(ctx context.Context, name string) Result {
	name = strings.TrimSpace(name)
	if name == "" {
		return failf("Which application should I close, sir?")
	}

	pattern := name
	if alias, ok := appAliases[strings.ToLower(name)]; ok {
		pattern = alias
	}

	if _, err := c.run.Run(ctx, "pkill", "-f", "-i", pattern); err != nil {
		return failf("I couldn't find a running application called %s, sir.", name)
	}

	return okf("Closing %s, sir.", name)
}

func (c *Controller) CreateFolder(ctx context.Context, name string) Result {
	name = strings.TrimSpace(name)
	if name == "" {
		return failf("I need a folder name, sir.")
	}

	path := c.resolvePath(name)
	if err := os.MkdirAll(path, 0o755); err != nil {
		log.Warn("create folder failed", "path", path, "err", err)
		return failf("I couldn't create the folder '%s', sir.", name)
	}

	return okf("Created folder '%s' in your home directory, sir.", name)
}

func (c *Controller) OpenFile(ctx context.Context, name string) Result {
	path := c.resolvePath(strings.TrimSpace(name))
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return failf("I couldn't find a file named %s, sir.", name)
	}

	if err := c.run.Start("xdg-open", path); err != nil {
		return failf("I couldn't open %s, sir.", name)
	}

	return okf("Opening %s, sir.", name)
}

func (c *Controller) OpenFolder(ctx context.Context, name string) Result {
	name = strings.TrimSpace(name)
	path := c.home
	spoken := "your home folder"
	if name != "" {
		path = c.resolvePath(name)
		spoken = name
	}

	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		return failf("I couldn't find a folder named %s, sir.", name)
	}

	if err := c.run.Start("xdg-open", path); err != nil {
		return failf("I couldn't open %s, sir.", spoken)
	}

	return okf("Opening %s, sir.", spoken)
}

func (c *Controller) DeleteFile(ctx context.Context, name string) Result {
	name = strings.TrimSpace(name)
	if name == "" {
		return failf("Which file should I delete, sir?")
	}

	path := c.resolvePath(name)
	info, err := os.Stat(path)
	if err != nil {
		return failf("I couldn't find a file named %s, sir.", name)
	}
	if info.IsDir() {
		return failf("%s is a folder, sir. I only delete files by voice.", name)
	}

	if err := os.Remove(path); err != nil {
		log.Warn("delete file failed", "path", path, "err", err)
		return failf("I couldn't delete %s, sir.", name)
	}

	return okf("Deleted %s, sir.", name)
}

func (c *Controller) SearchFiles(ctx context.Context, query string) Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return failf("What should I search for, sir?")
	}

	needle := strings.ToLower(query)
	var found int

	filepath.WalkDir(c.home, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if name := d.Name(); strings.HasPrefix(name, ".") && path != c.home {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.Contains(strings.ToLower(d.Name()), needle) {
			found++
			if found >= c.searchLimit {
				return filepath.SkipAll
			}
		}
		return nil
	})

	if found == 0 {
		return failf("No files found matching '%s', sir.", query)
	}

	return okf("Found %d files matching '%s', sir.", found, query)
}

func (c *Controller) SetVolume(ctx context.Context, level int) Result {
	level = util.Clamp(level, 0, 100)

	if err := c.setSinkVolume(ctx, fmt.Sprintf("%d%%", level)); err != nil {
		log.Warn("set volume failed", "err", err)
		return failf("I couldn't change the volume, sir.")
	}

	return okf("Volume set to %d%%, sir.", level)
}

func (c *Controller) VolumeUp(ctx context.Context) Result {
	if err := c.setSinkVolume(ctx, "+10%"); err != nil {
		return failf("I couldn't change the volume, sir.")
	}
	return okf("Volume increased, sir.")
}

func (c *Controller) VolumeDown(ctx context.Context) Result {
	if err := c.setSinkVolume(ctx, "-10%"); err != nil {
		return failf("I couldn't change the volume, sir.")
	}
	return okf("Volume decreased, sir.")
}

func (c *Controller) Mute(ctx context.Context) Result {
	if _, err := c.run.Run(ctx, "pactl", "set-sink-mute", "@DEFAULT_SINK@", "toggle"); err != nil {
		return failf("I couldn't change the audio, sir.")
	}
	return okf("Audio mute toggled, sir.")
}

// screenshotTools are tried in order; the first one present wins.
var screenshotTools = [][]string{
	{"grim"},
	{"gnome-screenshot", "-f"},
	{"scrot"},
	{"import", "-window", "root"},
}

func (c *Controller) Screenshot(ctx context.Context) Result {
	dir := filepath.Join(c.home, "Pictures")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return failf("I couldn't take a screenshot, sir.")
	}

	file := filepath.Join(dir, fmt.Sprintf("jarvis-%s.png", time.Now().Format("20060102-150405")))

	for _, tool := range screenshotTools {
		args := append(append([]string(nil), tool[1:]...), file)
		if _, err := c.run.Run(ctx, tool[0], args...); err == nil {
			return okf("Screenshot saved to your Pictures folder, sir.")
		}
	}

	return failf("I couldn't take a screenshot, sir.")
}

func (c *Controller) Shutdown(ctx context.Context) Result {
	if _, err := c.run.Run(ctx, "systemctl", "poweroff"); err != nil {
		return failf("I couldn't shut down the system, sir.")
	}
	return okf("Shutting down the system, sir. Goodbye.")
}

func (c *Controller) Restart(ctx context.Context) Result {
	if _, err := c.run.Run(ctx, "systemctl", "reboot"); err != nil {
		return failf("I couldn't restart the system, sir.")
	}
	return okf("Restarting the system, sir.")
}

func (c *Controller) Lock(ctx context.Context) Result {
	if _, err := c.run.Run(ctx, "loginctl", "lock-session"); err != nil {
		return failf("I couldn't lock the screen, sir.")
	}
	return okf("Locking the screen, sir.")
}

func (c *Controller) OpenURL(ctx context.Context, raw string) Result {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return failf("Which website should I open, sir?")
	}

	target := raw
	if !strings.Contains(target, "://") {
		target = "https://" + target
	}

	if err := c.run.Start("xdg-open", target); err != nil {
		return failf("I couldn't open %s, sir.", raw)
	}

	return okf("Opening %s, sir.", raw)
}

func (c *Controller) YouTube(ctx context.Context, query string) Result {
	query = strings.TrimSpace(query)
	if query == "" {
		if err := c.run.Start("xdg-open", "https://www.youtube.com"); err != nil {
			return failf("I couldn't open YouTube, sir.")
		}
		return okf("Opening YouTube, sir.")
	}

	target := "https://www.youtube.com/results?search_query=" + url.QueryEscape(query)
	if err := c.run.Start("xdg-open", target); err != nil {
		return failf("I couldn't open YouTube, sir.")
	}

	return okf("Searching YouTube for %s, sir.", query)
}

// PlayMusic looks for a local track whose file name contains the
// query and hands it to the default player.
func (c *Controller) PlayMusic(ctx context.Context, query string) Result {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return failf("What should I play, sir?")
	}

	var match string
	for _, dir := range c.musicDirs {
		filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			name := d.Name()
			if !musicExts[strings.ToLower(filepath.Ext(name))] {
				return nil
			}
			if strings.Contains(strings.ToLower(name), needle) {
				match = path
				return filepath.SkipAll
			}
			return nil
		})
		if match != "" {
			break
		}
	}

	if match == "" {
		return failf("I couldn't find any music matching %s, sir.", query)
	}

	if err := c.run.Start("xdg-open", match); err != nil {
		return failf("I couldn't play %s, sir.", query)
	}

	base := filepath.Base(match)
	track := strings.TrimSuffix(base, filepath.Ext(base))
	return okf("Playing %s, sir.", track)
}

func (c *Controller) Metrics(ctx context.Context) (Snapshot, error) {
	return c.sampler.Snapshot()
}

func (c *Controller) setSinkVolume(ctx context.Context, value string) error {
	_, err := c.run.Run(ctx, "pactl", "set-sink-volume", "@DEFAULT_SINK@", value)
	return err
}

func (c *Controller) resolvePath(name string) string {
	switch {
	case name == "":
		return c.home
	case filepath.IsAbs(name):
		return filepath.Clean(name)
	case name == "~":
		return c.home
	case strings.HasPrefix(name, "~/"):
		return filepath.Join(c.home, name[2:])
	default:
		return filepath.Join(c.home, name)
	}
}
