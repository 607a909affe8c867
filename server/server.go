// Package server exposes a Remote over HTTP so that one long-running
// process owns the PWM channel and any number of clients can ask it to
// transmit.
//
//	GET  /signals          configured signal names
//	POST /signals/{name}   transmit a signal
//	GET  /signals/stream   websocket of transmission events
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/sparques/irremote"
)

// Event describes one finished transmission.
type Event struct {
	Remote string    `json:"remote,omitempty"`
	Signal string    `json:"signal"`
	Code   uint32    `json:"code"`
	Repeat int       `json:"repeat"`
	Error  string    `json:"error,omitempty"`
	Time   time.Time `json:"time"`
}

// listenerBuffer is how many events a slow websocket client may fall
// behind before events are dropped for it.
const listenerBuffer = 16

// Server serves one Remote.
type Server struct {
	remote *irremote.Remote
	log    *slog.Logger
	mux    *http.ServeMux

	mu        sync.Mutex
	listeners map[chan Event]struct{}
}

// New returns a Server for r.
func New(r *irremote.Remote, log *slog.Logger) *Server {
	s := &Server{
		remote:    r,
		log:       log,
		mux:       http.NewServeMux(),
		listeners: make(map[chan Event]struct{}),
	}
	s.mux.HandleFunc("GET /signals", s.handleList)
	s.mux.HandleFunc("GET /signals/stream", s.handleStream)
	s.mux.HandleFunc("POST /signals/{name}", s.handleTransmit)
	return s
}

// ServeHTTP routes r to the signal API.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.remote.Signals())
}

func (s *Server) handleTransmit(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	code, err := s.remote.Lookup(name)
	if err != nil {
		s.log.Info("unknown signal requested", "signal", name, "remote_addr", r.RemoteAddr)
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}

	ev := Event{
		Remote: s.remote.Config().Name,
		Signal: name,
		Code:   code,
		Repeat: int(s.remote.Config().Repeat),
	}
	err = s.remote.Transmit(name)
	ev.Time = time.Now()
	if err != nil {
		ev.Error = err.Error()
		s.publish(ev)
		s.log.Error("transmit failed", "signal", name, "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, irremote.ErrSignalNotFound) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	s.publish(ev)
	s.log.Info("transmitted", "signal", name, "code", code, "remote_addr", r.RemoteAddr)
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.Warn("websocket accept failed", "error", err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "")
	s.log.Debug("stream client connected", "remote_addr", r.RemoteAddr)

	events := s.subscribe()
	defer s.unsubscribe(events)

	ctx := c.CloseRead(r.Context())
	for {
		select {
		case ev := <-events:
			if err := writeEvent(ctx, c, ev); err != nil {
				s.log.Debug("stream client gone", "remote_addr", r.RemoteAddr, "error", err)
				return
			}
		case <-ctx.Done():
			c.Close(websocket.StatusNormalClosure, "")
			return
		}
	}
}

func writeEvent(ctx context.Context, c *websocket.Conn, ev Event) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return wsjson.Write(ctx, c, ev)
}

func (s *Server) subscribe() chan Event {
	ch := make(chan Event, listenerBuffer)
	s.mu.Lock()
	s.listeners[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *Server) unsubscribe(ch chan Event) {
	s.mu.Lock()
	delete(s.listeners, ch)
	s.mu.Unlock()
}

func (s *Server) publish(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.listeners {
		select {
		case ch <- ev:
		default:
			s.log.Warn("dropping event for slow stream client", "signal", ev.Signal)
		}
	}
}

// listenerCount is used by tests to wait for a stream client to subscribe.
func (s *Server) listenerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
