package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries everything the daemon reads from the environment.
// CLI flags only pick the env file and log level; behavior lives here
// so `jarvis-ctl` and the daemon agree on defaults.
type Config struct {
	SocketPath string
	HTTPAddr   string

	WakePhrases []string
	FillerWords []string

	HistoryCapacity  int
	AskTimeout       time.Duration
	PreferredBackend string

	AnthropicKey   string
	AnthropicModel string
	OpenAIKey      string
	OpenAIModel    string
	OllamaHost     string
	OllamaModel    string

	WhisperModel string
	Language     string

	Voice     string
	VoiceRate int

	ProxyAddr  string
	ChimePath  string
	MusicDirs  []string
	SessionLog string

	WakeWindow    time.Duration
	CommandWindow time.Duration
}

// Load reads the environment. Call godotenv.Load first so a local
// .env file is already merged in.
func Load() Config {
	return Config{
		SocketPath: envStr("JARVIS_SOCKET", "/tmp/jarvis.sock"),
		HTTPAddr:   envStr("JARVIS_HTTP_ADDR", "127.0.0.1:8790"),

		WakePhrases: envList("JARVIS_WAKE_PHRASES", []string{"hey jarvis", "jarvis"}),
		FillerWords: envList("JARVIS_FILLER_WORDS", []string{"please", "can you", "could you", "would you", "jarvis"}),

		HistoryCapacity:  envInt("JARVIS_HISTORY_CAPACITY", 10),
		AskTimeout:       envDur("JARVIS_ASK_TIMEOUT", 30*time.Second),
		PreferredBackend: envStr("JARVIS_PREFERRED_BACKEND", "anthropic"),

		AnthropicKey:   os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel: envStr("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:    envStr("OPENAI_MODEL", "gpt-5-nano"),
		OllamaHost:     os.Getenv("OLLAMA_HOST"),
		OllamaModel:    envStr("OLLAMA_MODEL", "llama3.2"),

		WhisperModel: os.Getenv("JARVIS_WHISPER_MODEL"),
		Language:     envStr("JARVIS_LANGUAGE", "en"),

		Voice:     envStr("JARVIS_VOICE", "en"),
		VoiceRate: envInt("JARVIS_VOICE_RATE", 170),

		ProxyAddr:  os.Getenv("JARVIS_PROXY"),
		ChimePath:  os.Getenv("JARVIS_CHIME"),
		MusicDirs:  envList("JARVIS_MUSIC_DIRS", nil),
		SessionLog: envStr("JARVIS_SESSION_LOG", "jarvis_session.log"),

		WakeWindow:    envDur("JARVIS_WAKE_WINDOW", 2*time.Second),
		CommandWindow: envDur("JARVIS_COMMAND_WINDOW", 8*time.Second),
	}
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// envList splits a comma-separated value, dropping empty items.
func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
