package main

import (
	"fmt"
	"os"
	"time"

	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	ws "github.com/gorilla/websocket"

	"github.com/VanshGautamDev/jarvis-ai-desktop-assistant/internal/display"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

func main() {
	addr := cli.StringP("addr", "a", "127.0.0.1:8790", "Daemon watch address")
	logLevel := cli.StringP("log", "l", "warn", "Log level")
	showMetrics := cli.Bool("metrics", false, "Include once-a-second system readings")
	reconn := cli.Uint("reconnect", 2, "Seconds between reconnect attempts")
	cli.Parse()

	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: logLevelMap[*logLevel],
	})))

	url := "ws://" + *addr + "/ws"

	for {
		conn, _, err := ws.DefaultDialer.Dial(url, nil)
		if err != nil {
			log.Warn("Failed to dial daemon, retrying", "url", url, "err", err)
			time.Sleep(time.Second * time.Duration(*reconn))
			continue
		}

		fmt.Println("watching", url)
		tail(conn, *showMetrics)
		conn.Close()

		time.Sleep(time.Second * time.Duration(*reconn))
	}
}

// tail prints events until the connection drops.
func tail(conn *ws.Conn, showMetrics bool) {
	for {
		var ev display.Event
		if err := conn.ReadJSON(&ev); err != nil {
			if ws.IsCloseError(err, ws.CloseNormalClosure, ws.CloseGoingAway) {
				log.Info("daemon closed the stream")
			} else {
				log.Warn("connection lost", "err", err)
			}
			return
		}

		stamp := ev.At.Format("15:04:05")
		switch ev.Type {
		case display.EventCommand:
			fmt.Printf("%s  you     %s\n", stamp, ev.Text)
		case display.EventResponse:
			fmt.Printf("%s  jarvis  %s\n", stamp, ev.Text)
		case display.EventStatus:
			fmt.Printf("%s  status  %s\n", stamp, ev.Text)
		case display.EventMetrics:
			if !showMetrics || ev.Metrics == nil {
				continue
			}
			fmt.Printf("%s  system  cpu %s  mem %s  disk %s\n",
				stamp, pct(ev.Metrics.CPU), pct(ev.Metrics.Memory), pct(ev.Metrics.Disk))
		}
	}
}

func pct(v float64) string {
	if v < 0 {
		return "?"
	}
	return fmt.Sprintf("%.0f%%", v)
}
