package display

import (
	"encoding/json"
	"io"
	log "log/slog"
	"net/http"

	"github.com/gorilla/mux"
)

// Status is the health document served at /status.
type Status struct {
	Session     string   `json:"session"`
	Uptime      string   `json:"uptime"`
	Backends    []string `json:"backends"`
	Active      string   `json:"active_backend"`
	Personality string   `json:"personality,omitempty"`
	SpeechBusy  bool     `json:"speech_busy"`
	Watchers    int      `json:"watchers"`
	Rules       int      `json:"rules"`
	Commands    int      `json:"commands"`
	Responses   int      `json:"responses"`
	History     int      `json:"history"`
}

// Routes mounts the watch endpoints: live events on /ws, the health
// document on /status and the session transcript on /log.
func (h *Hub) Routes(r *mux.Router, status func() Status, transcript func() string) {
	r.HandleFunc("/ws", h.ServeWS)

	r.HandleFunc("/status", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status()); err != nil {
			log.Warn("encode status", "err", err)
		}
	}).Methods(http.MethodGet)

	r.HandleFunc("/log", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, transcript())
	}).Methods(http.MethodGet)
}
