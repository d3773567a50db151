package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/VanshGautamDev/jarvis-ai-desktop-assistant/internal/assistant"
	"github.com/VanshGautamDev/jarvis-ai-desktop-assistant/internal/audio"
	"github.com/VanshGautamDev/jarvis-ai-desktop-assistant/internal/config"
	"github.com/VanshGautamDev/jarvis-ai-desktop-assistant/internal/convo"
	"github.com/VanshGautamDev/jarvis-ai-desktop-assistant/internal/dispatch"
	"github.com/VanshGautamDev/jarvis-ai-desktop-assistant/internal/display"
	"github.com/VanshGautamDev/jarvis-ai-desktop-assistant/internal/intent"
	"github.com/VanshGautamDev/jarvis-ai-desktop-assistant/internal/ipc"
	"github.com/VanshGautamDev/jarvis-ai-desktop-assistant/internal/listen"
	"github.com/VanshGautamDev/jarvis-ai-desktop-assistant/internal/notify"
	"github.com/VanshGautamDev/jarvis-ai-desktop-assistant/internal/proxy"
	"github.com/VanshGautamDev/jarvis-ai-desktop-assistant/internal/speech"
	"github.com/VanshGautamDev/jarvis-ai-desktop-assistant/internal/system"
	"github.com/VanshGautamDev/jarvis-ai-desktop-assistant/pkg/audioconv"
	"github.com/VanshGautamDev/jarvis-ai-desktop-assistant/pkg/stt"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

// controlWait bounds how long the socket holds a caller while the
// assistant works; the client side gives up a little later.
const controlWait = 75 * time.Second

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	noMic := cli.Bool("no-mic", false, "Disable the microphone wake loop")
	noTTS := cli.Bool("no-tts", false, "Print responses instead of speaking")
	cli.Parse()

	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: logLevelMap[*logLevel],
	})))

	log.Info("Booting up")

	godotenv.Load(*envFile)
	cfg := config.Load()

	httpClient, err := proxy.NewHTTPClient(cfg.ProxyAddr, 2*time.Minute)
	if err != nil {
		log.Error("Failed to dial socks proxy", "proxy", cfg.ProxyAddr, "err", err)
		os.Exit(1)
	}

	var backends []convo.Backend
	if cfg.AnthropicKey != "" {
		backends = append(backends, convo.NewAnthropicBackend(cfg.AnthropicKey, cfg.AnthropicModel, httpClient))
	}
	if cfg.OpenAIKey != "" {
		backends = append(backends, convo.NewOpenAIBackend(cfg.OpenAIKey, cfg.OpenAIModel, httpClient))
	}
	if cfg.OllamaHost != "" {
		backends = append(backends, convo.NewOllamaBackend(cfg.OllamaHost, cfg.OllamaModel, httpClient))
	}

	chat := convo.NewAdapter(convo.Options{
		Backends:  backends,
		Preferred: cfg.PreferredBackend,
		History:   convo.NewHistory(cfg.HistoryCapacity),
		Persona:   convo.NewPersona(),
		Timeout:   cfg.AskTimeout,
	})
	log.Debug("Loaded conversation", "backends", chat.Backends(), "active", chat.Active())

	sys := system.NewController(system.Options{MusicDirs: cfg.MusicDirs})
	transcript := display.NewTranscript(display.DefaultTranscriptLimit)
	hub := display.NewHub()
	defer hub.Close()

	dsp := dispatch.NewDispatcher(dispatch.Options{
		Handlers: dispatch.NewHandlers(sys, chat).Registry(),
		Ask: func(ctx context.Context, input string) string {
			return chat.Ask(ctx, input)
		},
		Notify: func(cmd, resp string) {
			guess := intent.Classify(cmd)
			log.Debug("intent", "category", guess.Category, "action", guess.Action)

			transcript.AddCommand(cmd)
			transcript.AddResponse(resp)
			hub.Command(cmd)
			hub.Response(resp)
		},
	})
	if err := dsp.AddRules(dispatch.DefaultRules()); err != nil {
		log.Error("Failed to load command rules", "err", err)
		os.Exit(1)
	}
	log.Debug("Loaded rules", "count", len(dsp.Rules()))

	var synth speech.Synthesizer
	if *noTTS {
		synth = speech.NewConsole(nil)
	} else if es, err := speech.NewEspeak(cfg.Voice, cfg.VoiceRate); err != nil {
		log.Warn("espeak unavailable, printing responses instead", "err", err)
		synth = speech.NewConsole(nil)
	} else {
		synth = es
	}
	queue := speech.NewQueue(synth, speech.DefaultQueueDepth)

	var (
		mic         *listen.Mic
		transcriber *stt.Transcriber
	)
	if !*noMic && cfg.WhisperModel != "" {
		rec := audio.NewRecorder(audio.Config{})
		if err := rec.Init(); err != nil {
			log.Error("Failed to init audio", "err", err)
			os.Exit(1)
		}
		defer rec.Close()

		transcriber, err = stt.NewTranscriber(cfg.WhisperModel)
		if err != nil {
			log.Error("Failed to init whisper", "model", cfg.WhisperModel, "err", err)
			os.Exit(1)
		}
		defer transcriber.Close()

		mic = listen.NewMic(rec, transcriber, cfg.Language)
		log.Debug("Loaded microphone", "model", cfg.WhisperModel)
	} else {
		log.Info("Microphone disabled, voice wake is off")
	}

	cleanWords := append(append([]string{}, cfg.WakePhrases...), cfg.FillerWords...)

	opts := assistant.Options{
		Speaker:       queue,
		Dispatcher:    dsp,
		Cleaner:       assistant.NewCleaner(cleanWords),
		WakePhrases:   cfg.WakePhrases,
		WakeWindow:    cfg.WakeWindow,
		CommandWindow: cfg.CommandWindow,
		OnWake: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()

			if cfg.ChimePath != "" {
				if err := notify.Chime(cfg.ChimePath); err != nil {
					log.Warn("chime failed", "err", err)
				}
			}
			if err := sys.Duck(ctx, 0.3); err != nil {
				log.Debug("duck skipped", "err", err)
			}
			notify.Desktop(ctx, "JARVIS", "Listening...")
		},
		AfterCommand: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()

			if err := sys.Restore(ctx); err != nil {
				log.Debug("restore skipped", "err", err)
			}
		},
	}
	if mic != nil {
		opts.Listener = mic
	}
	asst := assistant.New(opts)

	session := uuid.New().String()[:8]
	started := time.Now()

	statusFn := func() display.Status {
		cmds, resps := transcript.Counts()
		return display.Status{
			Session:     session,
			Uptime:      time.Since(started).Round(time.Second).String(),
			Backends:    chat.Backends(),
			Active:      chat.Active(),
			Personality: chat.Personality(),
			SpeechBusy:  queue.Busy(),
			Watchers:    hub.Watchers(),
			Rules:       len(dsp.Rules()),
			Commands:    cmds,
			Responses:   resps,
			History:     chat.HistoryLen(),
		}
	}

	router := mux.NewRouter()
	hub.Routes(router, statusFn, transcript.Render)
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}
	go func() {
		log.Info("watch interface listening", "addr", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server failed", "err", err)
		}
	}()

	ipcSrv, err := ipc.Serve(cfg.SocketPath, func(req ipc.Request) ipc.Reply {
		return handleControl(asst, transcriber, cfg.Language, statusFn, req)
	})
	if err != nil {
		log.Error("Failed ipc server", "err", err)
		os.Exit(1)
	}
	defer ipcSrv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go publishMetrics(ctx, sys, hub)

	log.Info("Boot up - successful", "session", session)

	if err := asst.Run(ctx); err != nil {
		log.Error("assistant stopped", "err", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	httpSrv.Shutdown(shutdownCtx)

	queue.Close()

	if err := transcript.WriteFile(cfg.SessionLog); err != nil {
		log.Warn("failed to save session log", "path", cfg.SessionLog, "err", err)
	} else {
		log.Info("session log saved", "path", cfg.SessionLog)
	}
}

// publishMetrics streams system readings to the watchers once a
// second. The first tick also warms the CPU sampler.
func publishMetrics(ctx context.Context, sys *system.Controller, hub *display.Hub) {
	tick := time.NewTicker(time.Second)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			if snap, err := sys.Metrics(ctx); err == nil {
				hub.Metrics(snap)
			}
		}
	}
}

// handleControl serves one socket verb by injecting work into the
// assistant loop, so control commands and voice commands never run
// concurrently.
func handleControl(asst *assistant.Assistant, tr *stt.Transcriber, lang string, statusFn func() display.Status, req ipc.Request) ipc.Reply {
	switch req.Cmd {
	case "trigger":
		return submitWait(asst, assistant.Request{Kind: assistant.KindTrigger})

	case "text":
		return submitWait(asst, assistant.Request{Kind: assistant.KindText, Text: req.Arg})

	case "say":
		return submitWait(asst, assistant.Request{Kind: assistant.KindSay, Text: req.Arg})

	case "audio":
		if tr == nil {
			return ipc.Reply{Response: "Speech recognition is not loaded, sir."}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		text, err := transcribeFile(ctx, tr, lang, req.Arg)
		if err != nil {
			log.Warn("audio transcription failed", "path", req.Arg, "err", err)
			return ipc.Reply{Response: "I couldn't understand that recording, sir."}
		}
		return submitWait(asst, assistant.Request{Kind: assistant.KindText, Text: text})

	case "status":
		s := statusFn()
		return ipc.Reply{OK: true, Response: fmt.Sprintf(
			"Session %s, up %s. Backends: %s, active %s. Rules: %d. Commands served: %d.",
			s.Session, s.Uptime, strings.Join(s.Backends, ", "), s.Active, s.Rules, s.Commands)}

	default:
		log.Warn("Unknown command", "cmd", req.Cmd)
		return ipc.Reply{Response: fmt.Sprintf("Unknown command '%s'.", req.Cmd)}
	}
}

func submitWait(asst *assistant.Assistant, req assistant.Request) ipc.Reply {
	reply := make(chan string, 1)
	req.ReplyTo = reply

	if !asst.Submit(req) {
		return ipc.Reply{Response: "I'm busy with another command, sir."}
	}

	select {
	case resp := <-reply:
		return ipc.Reply{OK: true, Response: resp}
	case <-time.After(controlWait):
		return ipc.Reply{Response: "That took too long, sir."}
	}
}

func transcribeFile(ctx context.Context, tr *stt.Transcriber, lang, path string) (string, error) {
	clip, err := audioconv.DecodeFile(path)
	if err != nil {
		return "", err
	}

	res, err := tr.TranscribePCM(ctx, clip.Mono16k(0), stt.Options{Language: lang})
	if err != nil {
		return "", err
	}
	return res.Text, nil
}
