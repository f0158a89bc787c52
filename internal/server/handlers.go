// Package server exposes HTTP handlers, including the WebSocket upgrade that
// turns a request into a player session, plus health and metrics endpoints.
package server

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     checkOrigin,
}

var (
	sim     = NewSim()
	simOnce sync.Once
)

// StartSim launches the simulation actor's event loop. Safe to call more
// than once; only the first call starts the goroutine.
func StartSim() {
	simOnce.Do(func() {
		go sim.Run()
		Log.Info("simulation actor started")
	})
}

// GetSim returns the global simulation actor for shutdown coordination.
func GetSim() *Sim {
	return sim
}

// WebSocketHandler upgrades the connection, derives the player's id from the
// remote port, and hands the connection to a new session.
func WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	id, ok := clientIDFromAddr(r.RemoteAddr)
	if !ok {
		http.Error(w, "Cannot determine remote port.", http.StatusBadRequest)
		return
	}

	// Proxied deployments carry the caller's real address here; log it next
	// to the assigned id since the id only encodes the proxy-side port.
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		Log.Infow("client real ip", "id", id, "ip", realIP)
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.Warnw("WebSocket upgrade failed", "addr", r.RemoteAddr, "err", err)
		return
	}

	Log.Infow("connection mapped", "addr", r.RemoteAddr, "id", id)
	NewSession(conn, sim, id, r.RemoteAddr).Start()
}

// clientIDFromAddr derives the stable display id from the remote endpoint's
// port number.
func clientIDFromAddr(remoteAddr string) (string, bool) {
	_, portStr, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return "", false
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return "", false
	}
	return AllocateName(uint16(port)), true
}

// HealthHandler provides a simple health check endpoint that returns server
// status.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "gridchat server is running!")
}

// MetricsHandler reports the simulation's runtime counters as JSON.
func MetricsHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	payload := map[string]any{
		"players": sim.Metrics().ActivePlayers(),
		"metrics": sim.Metrics().Snapshot(),
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		Log.Warnw("writing metrics response", "err", err)
	}
}
