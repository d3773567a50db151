package dispatch

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/VanshGautamDev/jarvis-ai-desktop-assistant/internal/convo"
	"github.com/VanshGautamDev/jarvis-ai-desktop-assistant/internal/system"
)

// Actions is the slice of OS control the handlers drive.
type Actions interface {
	OpenApp(ctx context.Context, name string) system.Result
	CloseApp(ctx context.Context, name string) system.Result
	CreateFolder(ctx context.Context, name string) system.Result
	OpenFile(ctx context.Context, name string) system.Result
	OpenFolder(ctx context.Context, name string) system.Result
	DeleteFile(ctx context.Context, name string) system.Result
	SearchFiles(ctx context.Context, query string) system.Result
	SetVolume(ctx context.Context, level int) system.Result
	VolumeUp(ctx context.Context) system.Result
	VolumeDown(ctx context.Context) system.Result
	Mute(ctx context.Context) system.Result
	Screenshot(ctx context.Context) system.Result
	Shutdown(ctx context.Context) system.Result
	Restart(ctx context.Context) system.Result
	Lock(ctx context.Context) system.Result
	OpenURL(ctx context.Context, raw string) system.Result
	YouTube(ctx context.Context, query string) system.Result
	PlayMusic(ctx context.Context, query string) system.Result
	Metrics(ctx context.Context) (system.Snapshot, error)
}

// Conversation is the model-backed side a few commands manage.
type Conversation interface {
	ClearHistory() string
	SetPersonality(mode string) (string, error)
}

// musicApps are tried in order when the user asks for music without
// naming a track.
var musicApps = []string{"spotify", "vlc", "rhythmbox", "audacious"}

var greetings = []string{
	"Hello sir. How may I assist you today?",
	"At your service, sir.",
	"Yes sir, I'm listening.",
	"Good to see you, sir. What can I do for you?",
	"All systems ready, sir.",
}

const helpText = "I can open and close applications, manage files and folders, " +
	"control the volume, play music, take screenshots, open websites, " +
	"search YouTube, report system status, and answer questions, sir. " +
	"Just speak naturally."

// Handlers implements every built-in command tag.
type Handlers struct {
	sys  Actions
	chat Conversation
	now  func() time.Time
	pick func(n int) int
}

func NewHandlers(sys Actions, chat Conversation) *Handlers {
	return &Handlers{
		sys:  sys,
		chat: chat,
		now:  time.Now,
		pick: rand.IntN,
	}
}

// Registry maps rule tags to their implementations. DefaultRules
// references these tags.
func (h *Handlers) Registry() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		"open-app":        h.openApp,
		"close-app":       h.closeApp,
		"create-folder":   h.createFolder,
		"open-file":       h.openFile,
		"open-folder":     h.openFolder,
		"delete-file":     h.deleteFile,
		"search-files":    h.searchFiles,
		"set-volume":      h.setVolume,
		"volume-up":       h.volumeUp,
		"volume-down":     h.volumeDown,
		"mute":            h.mute,
		"play-music":      h.playMusic,
		"screenshot":      h.screenshot,
		"shutdown":        h.shutdown,
		"restart":         h.restart,
		"lock-screen":     h.lockScreen,
		"open-website":    h.openWebsite,
		"youtube":         h.youtube,
		"system-info":     h.systemInfo,
		"greeting":        h.greeting,
		"help":            h.help,
		"time":            h.tellTime,
		"date":            h.tellDate,
		"wake-ack":        h.wakeAck,
		"set-personality": h.setPersonality,
		"clear-history":   h.clearHistory,
	}
}

func (h *Handlers) openApp(ctx context.Context, arg string) (string, error) {
	return h.sys.OpenApp(ctx, arg).Message, nil
}

func (h *Handlers) closeApp(ctx context.Context, arg string) (string, error) {
	return h.sys.CloseApp(ctx, arg).Message, nil
}

func (h *Handlers) createFolder(ctx context.Context, arg string) (string, error) {
	if strings.TrimSpace(arg) == "" {
		return "Please specify a folder name, sir. For example: 'create folder MyDocuments'", nil
	}
	return h.sys.CreateFolder(ctx, arg).Message, nil
}

func (h *Handlers) openFile(ctx context.Context, arg string) (string, error) {
	return h.sys.OpenFile(ctx, arg).Message, nil
}

func (h *Handlers) openFolder(ctx context.Context, arg string) (string, error) {
	return h.sys.OpenFolder(ctx, arg).Message, nil
}

func (h *Handlers) deleteFile(ctx context.Context, arg string) (string, error) {
	return h.sys.DeleteFile(ctx, arg).Message, nil
}

func (h *Handlers) searchFiles(ctx context.Context, arg string) (string, error) {
	return h.sys.SearchFiles(ctx, arg).Message, nil
}

// setVolume validates the spoken level itself so the user hears what
// was wrong instead of a generic failure.
func (h *Handlers) setVolume(ctx context.Context, arg string) (string, error) {
	raw := strings.TrimSuffix(strings.TrimSpace(arg), "%")
	level, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Sprintf("Invalid volume level '%s', sir. Please specify a number between 0 and 100.", arg), nil
	}
	return h.sys.SetVolume(ctx, level).Message, nil
}

func (h *Handlers) volumeUp(ctx context.Context, _ string) (string, error) {
	return h.sys.VolumeUp(ctx).Message, nil
}

func (h *Handlers) volumeDown(ctx context.Context, _ string) (string, error) {
	return h.sys.VolumeDown(ctx).Message, nil
}

func (h *Handlers) mute(ctx context.Context, _ string) (string, error) {
	return h.sys.Mute(ctx).Message, nil
}

// playMusic plays a named track, or opens the first installed music
// application when no track was asked for.
func (h *Handlers) playMusic(ctx context.Context, arg string) (string, error) {
	if strings.TrimSpace(arg) == "" {
		for _, app := range musicApps {
			if r := h.sys.OpenApp(ctx, app); r.OK {
				return r.Message, nil
			}
		}
		return "Opening default music application, sir.", nil
	}
	return h.sys.PlayMusic(ctx, arg).Message, nil
}

func (h *Handlers) screenshot(ctx context.Context, _ string) (string, error) {
	return h.sys.Screenshot(ctx).Message, nil
}

func (h *Handlers) shutdown(ctx context.Context, _ string) (string, error) {
	return h.sys.Shutdown(ctx).Message, nil
}

func (h *Handlers) restart(ctx context.Context, _ string) (string, error) {
	return h.sys.Restart(ctx).Message, nil
}

func (h *Handlers) lockScreen(ctx context.Context, _ string) (string, error) {
	return h.sys.Lock(ctx).Message, nil
}

func (h *Handlers) openWebsite(ctx context.Context, arg string) (string, error) {
	return h.sys.OpenURL(ctx, arg).Message, nil
}

func (h *Handlers) youtube(ctx context.Context, arg string) (string, error) {
	return h.sys.YouTube(ctx, arg).Message, nil
}

func (h *Handlers) systemInfo(ctx context.Context, _ string) (string, error) {
	snap, err := h.sys.Metrics(ctx)
	if err != nil {
		return "Unable to retrieve system information, sir.", nil
	}
	return fmt.Sprintf("System status: CPU at %s, Memory at %s, Disk at %s, sir.",
		pct(snap.CPU), pct(snap.Memory), pct(snap.Disk)), nil
}

func pct(v float64) string {
	if v < 0 {
		return "unknown"
	}
	return fmt.Sprintf("%.0f%%", v)
}

func (h *Handlers) greeting(ctx context.Context, _ string) (string, error) {
	return greetings[h.pick(len(greetings))], nil
}

func (h *Handlers) help(ctx context.Context, _ string) (string, error) {
	return helpText, nil
}

func (h *Handlers) tellTime(ctx context.Context, _ string) (string, error) {
	return fmt.Sprintf("The current time is %s, sir.", h.now().Format("03:04 PM")), nil
}

func (h *Handlers) tellDate(ctx context.Context, _ string) (string, error) {
	return fmt.Sprintf("Today is %s, sir.", h.now().Format("January 2, 2006")), nil
}

func (h *Handlers) wakeAck(ctx context.Context, _ string) (string, error) {
	return "Yes sir?", nil
}

func (h *Handlers) setPersonality(ctx context.Context, arg string) (string, error) {
	msg, err := h.chat.SetPersonality(arg)
	if err != nil {
		return fmt.Sprintf("Invalid personality mode. Available modes: %s.",
			strings.Join(convo.ValidModes(), ", ")), nil
	}
	return msg, nil
}

func (h *Handlers) clearHistory(ctx context.Context, _ string) (string, error) {
	return h.chat.ClearHistory(), nil
}
