// Package server implements the simulation actor: the single goroutine that
// owns all player state and fans replies out to session inboxes.
package server

import (
	"context"
	"time"

	"gridchat/internal/protocol"
)

type requestKind int

const (
	requestConnect requestKind = iota
	requestChat
	requestMove
	requestDisconnect
)

// request is one entry in the actor's inbound queue. Sessions of all
// connections produce into the same channel, which gives the actor a single
// totally ordered stream to consume.
type request struct {
	kind  requestKind
	id    string
	text  string
	pos   protocol.Position
	inbox chan<- protocol.ServerMessage
}

type playerEntry struct {
	inbox chan<- protocol.ServerMessage
	pos   protocol.Position
}

// Sim is the authoritative owner of all player state. Exactly one goroutine
// runs its event loop; the players map is never touched from anywhere else,
// so no locks guard it. Sessions talk to the actor only through the producer
// methods, and the actor talks back only through per-session inboxes.
type Sim struct {
	requests chan request
	players  map[string]*playerEntry
	metrics  *Metrics
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewSim creates a simulation actor ready to Run.
func NewSim() *Sim {
	ctx, cancel := context.WithCancel(context.Background())
	return &Sim{
		requests: make(chan request, 256),
		players:  make(map[string]*playerEntry),
		metrics:  &Metrics{},
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Metrics returns the actor's counter set. Safe to read concurrently.
func (s *Sim) Metrics() *Metrics {
	return s.metrics
}

// Connect registers a session's reply inbox under the given id. The actor
// answers with Initialize followed by a world snapshot. Only the actor ever
// closes the inbox, which it does when the id disconnects or the actor shuts
// down.
func (s *Sim) Connect(id string, inbox chan<- protocol.ServerMessage) {
	s.submit(request{kind: requestConnect, id: id, inbox: inbox})
}

// Chat fans a chat line from id out to every registered session, the sender
// included.
func (s *Sim) Chat(id, text string) {
	s.submit(request{kind: requestChat, id: id, text: text})
}

// MoveTo overwrites id's stored position and broadcasts the update.
func (s *Sim) MoveTo(id string, pos protocol.Position) {
	s.submit(request{kind: requestMove, id: id, pos: pos})
}

// Disconnect removes id and announces DeletePlayer to everyone remaining.
// Calling it for an absent id is a no-op, so a duplicate disconnect is
// harmless.
func (s *Sim) Disconnect(id string) {
	s.submit(request{kind: requestDisconnect, id: id})
}

func (s *Sim) submit(req request) {
	select {
	case s.requests <- req:
	case <-s.ctx.Done():
	}
}

// Run consumes the request queue until Shutdown. It must be called from
// exactly one goroutine.
func (s *Sim) Run() {
	defer close(s.done)
	Log.Info("simulation started")

	for {
		select {
		case <-s.ctx.Done():
			s.closeAllInboxes()
			Log.Info("simulation stopped")
			return
		case req := <-s.requests:
			s.dispatch(req)
		}
	}
}

// Shutdown stops the event loop and closes every session inbox. It returns
// context.DeadlineExceeded if the loop does not exit within the timeout.
func (s *Sim) Shutdown(timeout time.Duration) error {
	s.cancel()
	select {
	case <-s.done:
		return nil
	case <-time.After(timeout):
		return context.DeadlineExceeded
	}
}

func (s *Sim) dispatch(req request) {
	switch req.kind {
	case requestConnect:
		s.handleConnect(req.id, req.inbox)
	case requestChat:
		s.handleChat(req.id, req.text)
	case requestMove:
		s.handleMove(req.id, req.pos)
	case requestDisconnect:
		s.handleDisconnect(req.id)
	}
}

func (s *Sim) handleConnect(id string, inbox chan<- protocol.ServerMessage) {
	if _, ok := s.players[id]; ok {
		// Ids are unique per live connection, so this indicates a logic
		// error upstream rather than normal traffic.
		Log.Warnw("duplicate connect ignored", "id", id)
		close(inbox)
		return
	}

	Log.Infow("player connected", "id", id)
	entry := &playerEntry{inbox: inbox, pos: protocol.DefaultPosition}

	// Initialize must precede the snapshot so the client knows its own id
	// before other players start appearing.
	s.deliver(id, entry, protocol.Initialize{ID: id})
	for otherID, other := range s.players {
		s.deliver(id, entry, protocol.UpdatePlayer{ID: otherID, Pos: other.pos})
	}

	s.players[id] = entry

	// The new player hears about itself here too. Redundant but part of the
	// message sequence clients rely on.
	s.broadcast(protocol.UpdatePlayer{ID: id, Pos: entry.pos})

	// Counted last so the active-player gauge only moves once the join
	// sequence is fully delivered.
	s.metrics.IncConnects()
}

func (s *Sim) handleChat(id, text string) {
	if _, ok := s.players[id]; !ok {
		// Session already disconnected; stale line, drop it.
		return
	}
	Log.Debugw("chat", "id", id, "text", text)
	s.metrics.IncChat()
	s.broadcast(protocol.Chat{ID: id, Text: text})
}

func (s *Sim) handleMove(id string, pos protocol.Position) {
	entry, ok := s.players[id]
	if !ok {
		// Session already disconnected; stale move, drop it.
		return
	}
	entry.pos = pos
	s.metrics.IncMove()
	s.broadcast(protocol.UpdatePlayer{ID: id, Pos: pos})
}

func (s *Sim) handleDisconnect(id string) {
	entry, ok := s.players[id]
	if !ok {
		// Already removed; duplicate disconnects are a no-op.
		return
	}
	delete(s.players, id)
	close(entry.inbox)
	s.metrics.IncDisconnects()
	Log.Infow("player disconnected", "id", id)
	s.broadcast(protocol.DeletePlayer{ID: id})
}

func (s *Sim) broadcast(msg protocol.ServerMessage) {
	s.metrics.IncBroadcasts()
	for id, entry := range s.players {
		s.deliver(id, entry, msg)
	}
}

// deliver hands one reply to a session without ever blocking the actor. A
// full or already torn-down inbox costs that one session the reply; it never
// takes the actor or other sessions down with it.
func (s *Sim) deliver(id string, entry *playerEntry, msg protocol.ServerMessage) {
	defer func() {
		if r := recover(); r != nil {
			s.metrics.IncRepliesDropped()
			Log.Warnw("reply to closed session dropped", "id", id, "cause", r)
		}
	}()

	select {
	case entry.inbox <- msg:
	default:
		s.metrics.IncRepliesDropped()
		Log.Warnw("reply inbox full, dropping", "id", id)
	}
}

func (s *Sim) closeAllInboxes() {
	for id, entry := range s.players {
		close(entry.inbox)
		delete(s.players, id)
	}
}
