// Package remote serves a virtual control surface over websockets, for a
// browser or tablet page standing in for hardware. Lights and text go out
// as JSON frames; presses and knob moves come back the same way.
package remote

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"go-surface/debug"
	"go-surface/device"
)

const (
	FrameLight = "light"
	FrameText  = "text"
	FrameInput = "input"
)

// Frame is the JSON wire format in both directions
type Frame struct {
	Type    string `json:"type"`
	Address string `json:"address"`
	Value   int    `json:"value,omitempty"`
	Text    string `json:"text,omitempty"`
}

const (
	writeWait  = 5 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 20 * time.Second
	sendBuf    = 256
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server is a device.Device whose outputs are every connected page. It
// keeps the last value per address so a page that connects late starts
// from the current state.
type Server struct {
	name   string
	events chan device.Event

	mu      sync.Mutex
	closed  bool
	clients map[*client]struct{}
	state   map[device.Address]Frame
}

type client struct {
	conn       *websocket.Conn
	send       chan []byte
	remoteAddr string
}

// NewServer creates a server. Mount it with Register or use it as an
// http.Handler directly.
func NewServer(name string) *Server {
	return &Server{
		name:    name,
		events:  make(chan device.Event, 256),
		clients: make(map[*client]struct{}),
		state:   make(map[device.Address]Frame),
	}
}

// Register mounts the websocket endpoint on mux
func (s *Server) Register(mux *http.ServeMux, path string) {
	mux.Handle(path, s)
}

func (s *Server) Name() string { return s.name }

func (s *Server) Events() <-chan device.Event { return s.events }

// Clients returns the number of connected pages
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) SendRaw(addr device.Address, value int) error {
	return s.publish(addr, Frame{Type: FrameLight, Address: addr.String(), Value: value})
}

func (s *Server) SendText(addr device.Address, text string) error {
	return s.publish(addr, Frame{Type: FrameText, Address: addr.String(), Text: text})
}

func (s *Server) publish(addr device.Address, f Frame) error {
	msg, err := json.Marshal(f)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return device.ErrClosed
	}
	s.state[addr] = f

	var slow []*client
	for c := range s.clients {
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	for _, c := range slow {
		s.dropLocked(c, "slow client")
	}
	return nil
}

func (s *Server) dropLocked(c *client, reason string) {
	if _, ok := s.clients[c]; !ok {
		return
	}
	delete(s.clients, c)
	close(c.send)
	c.conn.Close()
	debug.Info("remote", "%s: client %s disconnected (%s), %d left", s.name, c.remoteAddr, reason, len(s.clients))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		debug.Warn("remote", "upgrade failed: %v", err)
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return
	}
	c := &client{
		conn:       conn,
		send:       make(chan []byte, sendBuf+len(s.state)),
		remoteAddr: r.RemoteAddr,
	}
	s.clients[c] = struct{}{}
	for _, msg := range s.snapshotLocked() {
		c.send <- msg
	}
	n := len(s.clients)
	s.mu.Unlock()

	debug.Info("remote", "%s: client %s connected, %d total", s.name, c.remoteAddr, n)

	// the request context ends with this handler, the pumps outlive it
	go s.writePump(c)
	go s.readPump(c)
}

// snapshotLocked encodes the current state in address order
func (s *Server) snapshotLocked() [][]byte {
	frames := make([]Frame, 0, len(s.state))
	for _, f := range s.state {
		frames = append(frames, f)
	}
	sort.Slice(frames, func(i, j int) bool { return frames[i].Address < frames[j].Address })

	out := make([][]byte, 0, len(frames))
	for _, f := range frames {
		msg, err := json.Marshal(f)
		if err != nil {
			continue
		}
		out = append(out, msg)
	}
	return out
}

func (s *Server) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					debug.Log("remote", "%s: write to %s: %v", s.name, c.remoteAddr, err)
				}
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) readPump(c *client) {
	defer func() {
		s.mu.Lock()
		s.dropLocked(c, "read closed")
		s.mu.Unlock()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			var ce *websocket.CloseError
			if !errors.As(err, &ce) {
				debug.Log("remote", "%s: read from %s: %v", s.name, c.remoteAddr, err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		var f Frame
		if err := json.Unmarshal(data, &f); err != nil || f.Type != FrameInput {
			debug.LogEvery(50, "remote", "%s: ignoring frame %q", s.name, data)
			continue
		}
		addr, err := device.ParseAddress(f.Address)
		if err != nil {
			debug.LogEvery(50, "remote", "%s: %v", s.name, err)
			continue
		}
		s.emit(device.Event{Address: addr, Value: f.Value})
	}
}

func (s *Server) emit(ev device.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.events <- ev:
	default:
		debug.LogEvery(100, "remote", "%s: event queue full", s.name)
	}
}

// Close disconnects every page and closes Events
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	for c := range s.clients {
		s.dropLocked(c, "server closed")
	}
	s.closed = true
	close(s.events)
	return nil
}
