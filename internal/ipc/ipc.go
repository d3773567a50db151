package ipc

import (
	"encoding/json"
	"errors"
	"fmt"
	log "log/slog"
	"net"
	"os"
	"sync"
	"time"
)

// DefaultSocket is where the daemon listens unless configured.
const DefaultSocket = "/tmp/jarvis.sock"

// sendTimeout bounds one request/reply round trip. Long enough for a
// command that waits on a model backend.
const sendTimeout = 90 * time.Second

// Request is one control verb sent to the daemon.
type Request struct {
	Cmd string `json:"cmd"`
	Arg string `json:"arg,omitempty"`
}

// Reply is the daemon's answer. Response is speakable text.
type Reply struct {
	OK       bool   `json:"ok"`
	Response string `json:"response,omitempty"`
}

// HandlerFunc serves one request.
type HandlerFunc func(req Request) Reply

// Server answers requests on a unix socket, one connection per
// request.
type Server struct {
	ln   net.Listener
	wg   sync.WaitGroup
	once sync.Once
}

// Serve binds path and starts accepting in the background. A stale
// socket file from a previous run is removed first.
func Serve(path string, handler HandlerFunc) (*Server, error) {
	if path == "" {
		path = DefaultSocket
	}
	os.Remove(path)

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", path, err)
	}

	s := &Server{ln: ln}
	s.wg.Add(1)
	go s.accept(handler)

	log.Info("control socket ready", "path", path)
	return s, nil
}

func (s *Server) accept(handler HandlerFunc) {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			log.Warn("accept failed", "err", err)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			serveConn(conn, handler)
		}()
	}
}

func serveConn(conn net.Conn, handler HandlerFunc) {
	defer conn.Close()

	var req Request
	if err := json.NewDecoder(conn).Decode(&req); err != nil {
		log.Warn("bad control request", "err", err)
		return
	}

	reply := handler(req)
	if err := json.NewEncoder(conn).Encode(reply); err != nil {
		log.Warn("write control reply", "err", err)
	}
}

// Close stops accepting and waits for in-flight requests.
func (s *Server) Close() error {
	var err error
	s.once.Do(func() {
		err = s.ln.Close()
		s.wg.Wait()
	})
	return err
}

// Send delivers one request to the daemon at path and waits for its
// reply.
func Send(path string, req Request) (Reply, error) {
	if path == "" {
		path = DefaultSocket
	}

	conn, err := net.Dial("unix", path)
	if err != nil {
		return Reply{}, fmt.Errorf("is the daemon running? dial %s: %w", path, err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(sendTimeout))

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return Reply{}, fmt.Errorf("send request: %w", err)
	}

	var reply Reply
	if err := json.NewDecoder(conn).Decode(&reply); err != nil {
		return Reply{}, fmt.Errorf("read reply: %w", err)
	}
	return reply, nil
}
