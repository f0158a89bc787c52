// Package server tracks runtime counters for monitoring the simulation and
// its sessions.
package server

import "sync/atomic"

// Metrics records counters for the simulation and the sessions feeding it.
// All fields are updated atomically and may be read from any goroutine.
type Metrics struct {
	ConnectsTotal    int64
	DisconnectsTotal int64
	PlayersActive    int64
	ChatMessages     int64
	MoveMessages     int64
	BroadcastsTotal  int64
	RepliesDropped   int64
	DecodeErrors     int64
	RateLimited      int64
}

func (m *Metrics) IncConnects() {
	atomic.AddInt64(&m.ConnectsTotal, 1)
	atomic.AddInt64(&m.PlayersActive, 1)
}

func (m *Metrics) IncDisconnects() {
	atomic.AddInt64(&m.DisconnectsTotal, 1)
	atomic.AddInt64(&m.PlayersActive, -1)
}

func (m *Metrics) IncChat()           { atomic.AddInt64(&m.ChatMessages, 1) }
func (m *Metrics) IncMove()           { atomic.AddInt64(&m.MoveMessages, 1) }
func (m *Metrics) IncBroadcasts()     { atomic.AddInt64(&m.BroadcastsTotal, 1) }
func (m *Metrics) IncRepliesDropped() { atomic.AddInt64(&m.RepliesDropped, 1) }
func (m *Metrics) IncDecodeErrors()   { atomic.AddInt64(&m.DecodeErrors, 1) }
func (m *Metrics) IncRateLimited()    { atomic.AddInt64(&m.RateLimited, 1) }

// ActivePlayers returns the number of currently registered players.
func (m *Metrics) ActivePlayers() int64 {
	return atomic.LoadInt64(&m.PlayersActive)
}

// Snapshot returns a read-only copy of all counters for HTTP output.
func (m *Metrics) Snapshot() map[string]any {
	return map[string]any{
		"connects_total":    atomic.LoadInt64(&m.ConnectsTotal),
		"disconnects_total": atomic.LoadInt64(&m.DisconnectsTotal),
		"players_active":    atomic.LoadInt64(&m.PlayersActive),
		"chat_messages":     atomic.LoadInt64(&m.ChatMessages),
		"move_messages":     atomic.LoadInt64(&m.MoveMessages),
		"broadcasts_total":  atomic.LoadInt64(&m.BroadcastsTotal),
		"replies_dropped":   atomic.LoadInt64(&m.RepliesDropped),
		"decode_errors":     atomic.LoadInt64(&m.DecodeErrors),
		"rate_limited":      atomic.LoadInt64(&m.RateLimited),
	}
}
