// Package server manages individual WebSocket sessions, bridging each
// connection to the simulation actor through a read pump, a write pump, and a
// private reply inbox.
package server

import (
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"gridchat/internal/protocol"
)

const (
	// inboxSize bounds a session's reply inbox. The actor drops replies
	// rather than block when a session stops draining.
	inboxSize = 256

	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	writeWait  = 10 * time.Second
)

// Session represents one connected player. It owns the WebSocket connection
// and the reply inbox; all player state lives in the simulation actor. The
// read pump forwards decoded requests to the actor and the write pump drains
// the inbox back onto the wire, so neither direction can starve the other.
type Session struct {
	conn    *websocket.Conn
	inbox   chan protocol.ServerMessage
	sim     *Sim
	id      string
	addr    string
	limiter *rate.Limiter
}

// NewSession wraps an upgraded connection. The id must be unique among live
// connections; it comes from AllocateName on the remote port.
func NewSession(conn *websocket.Conn, sim *Sim, id, addr string) *Session {
	cfg := currentConfig()
	if conn != nil {
		conn.SetReadLimit(cfg.MaxMessageSize)
	}

	return &Session{
		conn:    conn,
		inbox:   make(chan protocol.ServerMessage, inboxSize),
		sim:     sim,
		id:      id,
		addr:    addr,
		limiter: newSessionLimiter(cfg.RateLimit),
	}
}

// Inbox returns the channel the actor delivers replies into. Only the actor
// may close it.
func (s *Session) Inbox() chan<- protocol.ServerMessage {
	return s.inbox
}

// Start registers the session with the actor and launches both pumps. The
// Initialize reply and world snapshot are queued in the inbox before the
// write pump begins draining it, so the client always sees them first.
func (s *Session) Start() {
	s.sim.Connect(s.id, s.inbox)
	go s.writePump()
	go s.readPump()
}

func (s *Session) setupReadConnection() {
	if err := s.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		Log.Warnw("setting initial read deadline", "id", s.id, "err", err)
	}
	s.conn.SetPongHandler(func(string) error {
		if err := s.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			Log.Warnw("setting read deadline in pong handler", "id", s.id, "err", err)
		}
		return nil
	})
}

// readPump consumes inbound frames until the peer closes, a frame fails to
// decode, or the transport errors. Whatever the cause, it notifies the actor
// with exactly one Disconnect on the way out, so the registry stays
// consistent.
func (s *Session) readPump() {
	defer func() {
		s.sim.Disconnect(s.id)
		if err := s.conn.Close(); err != nil && !isExpectedCloseError(err) {
			Log.Warnw("closing connection in readPump", "id", s.id, "err", err)
		}
	}()

	s.setupReadConnection()

	for {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			s.logReadError(err)
			return
		}

		if msgType != websocket.BinaryMessage {
			// The protocol is binary frames only; anything else is noise.
			Log.Debugw("ignoring non-binary frame", "id", s.id, "type", msgType)
			continue
		}

		if s.limiter != nil && !s.limiter.Allow() {
			s.sim.Metrics().IncRateLimited()
			Log.Warnw("rate limit exceeded, discarding message", "id", s.id, "addr", s.addr)
			continue
		}

		if !s.processFrame(data) {
			return
		}
	}
}

// processFrame decodes one binary frame and forwards the request to the
// actor. A malformed frame is fatal to this session only.
func (s *Session) processFrame(data []byte) bool {
	msg, err := protocol.DecodeClient(data)
	if err != nil {
		s.sim.Metrics().IncDecodeErrors()
		Log.Warnw("malformed frame, closing session", "id", s.id, "err", err)
		return false
	}

	switch m := msg.(type) {
	case protocol.ChatRequest:
		s.sim.Chat(s.id, m.Text)
	case protocol.MoveRequest:
		s.sim.MoveTo(s.id, m.Pos)
	}
	return true
}

func (s *Session) logReadError(err error) {
	switch {
	case websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure):
		Log.Infow("session closed by peer", "id", s.id, "err", err)
	case isExpectedCloseError(err):
		Log.Infow("session connection closed", "id", s.id, "err", err)
	default:
		Log.Warnw("read error", "id", s.id, "err", err)
	}
}

// writePump drains the reply inbox onto the wire in order, one binary frame
// per reply, and keeps the connection alive with periodic pings. It exits
// when the actor closes the inbox or a write fails; closing the connection
// then unblocks the read pump, which performs the Disconnect.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := s.conn.Close(); err != nil && !isExpectedCloseError(err) {
			Log.Warnw("closing connection in writePump", "id", s.id, "err", err)
		}
	}()

	for {
		select {
		case msg, ok := <-s.inbox:
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				Log.Warnw("setting write deadline", "id", s.id, "err", err)
				return
			}
			if !ok {
				// Actor closed the inbox: this player was disconnected or
				// the server is shutting down.
				if err := s.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil && !isExpectedCloseError(err) {
					Log.Warnw("writing close message", "id", s.id, "err", err)
				}
				return
			}
			if !s.writeReply(msg) {
				return
			}
		case <-ticker.C:
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				Log.Warnw("setting write deadline for ping", "id", s.id, "err", err)
				return
			}
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if !isExpectedCloseError(err) {
					Log.Warnw("writing ping", "id", s.id, "err", err)
				}
				return
			}
		}
	}
}

func (s *Session) writeReply(msg protocol.ServerMessage) bool {
	data, err := protocol.EncodeServer(msg)
	if err != nil {
		// Encoding a known variant cannot fail; treat it as a bug, not a
		// reason to kill the session.
		Log.Errorw("encoding reply", "id", s.id, "err", err)
		return true
	}
	if err := s.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		if !isExpectedCloseError(err) {
			Log.Warnw("writing reply", "id", s.id, "err", err)
		}
		return false
	}
	return true
}
