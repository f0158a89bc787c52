// Package integration exercises the HTTP surface of the gridchat server:
// health and metrics endpoints, method validation, and origin enforcement.
package integration

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gorilla/websocket"

	"gridchat/internal/server"
	"gridchat/test/testhelpers"
)

// TestHealthEndpoint verifies the plain-text health check on both routes.
func TestHealthEndpoint(t *testing.T) {
	testServer, _ := startTestServer(t)

	for _, path := range []string{"/", "/healthz"} {
		resp := testhelpers.MakeRequest(t, http.MethodGet, testServer.URL+path)
		testhelpers.AssertStatusCode(t, resp, http.StatusOK)
		testhelpers.AssertContentType(t, resp, "text/plain")
	}
}

// TestMetricsEndpoint verifies that the metrics endpoint serves JSON with a
// player gauge.
func TestMetricsEndpoint(t *testing.T) {
	testServer, wsURL := startTestServer(t)

	conn, _ := joinPlayer(t, wsURL, testServer.URL)
	drainJoin(t, conn, 1)

	resp := testhelpers.MakeRequest(t, http.MethodGet, testServer.URL+"/metrics")
	testhelpers.AssertStatusCode(t, resp, http.StatusOK)
	testhelpers.AssertContentType(t, resp, "application/json")

	var payload struct {
		Players int64          `json:"players"`
		Metrics map[string]any `json:"metrics"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("Failed to decode metrics payload: %v", err)
	}
	if payload.Players < 1 {
		t.Errorf("Metrics players = %d, want at least 1", payload.Players)
	}
	if _, ok := payload.Metrics["connects_total"]; !ok {
		t.Error("Metrics payload missing connects_total")
	}
}

// TestWebSocketEndpointRejectsNonGet verifies that non-GET requests to the
// WebSocket endpoint are refused.
func TestWebSocketEndpointRejectsNonGet(t *testing.T) {
	testServer, _ := startTestServer(t)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		resp := testhelpers.MakeRequest(t, method, testServer.URL+"/ws")
		testhelpers.AssertStatusCode(t, resp, http.StatusMethodNotAllowed)
	}
}

// TestOriginValidation verifies that the upgrade succeeds only for allowed
// origins.
func TestOriginValidation(t *testing.T) {
	server.StartSim()
	waitForEmptyWorld(t)
	testServer := testhelpers.CreateTestServer(server.SetupRoutes())
	t.Cleanup(testServer.Close)

	allowedOrigin := "http://allowed.test"
	configureServerForTest(t, testServer.URL, func(cfg *server.Config) {
		cfg.AllowedOrigins = []string{testServer.URL, allowedOrigin}
	})
	wsURL := testhelpers.WebSocketURL(t, testServer.URL)

	t.Run("Allowed origin connects", func(t *testing.T) {
		conn, _ := joinPlayer(t, wsURL, allowedOrigin)
		drainJoin(t, conn, 1)
	})

	t.Run("Disallowed origin is blocked", func(t *testing.T) {
		header := http.Header{}
		header.Set("Origin", "http://blocked.test")
		conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
		if err == nil {
			_ = conn.Close()
			t.Fatal("Handshake succeeded for disallowed origin")
		}
		if resp != nil {
			defer func() { _ = resp.Body.Close() }()
			if resp.StatusCode == http.StatusSwitchingProtocols {
				t.Errorf("Expected handshake rejection, got status %d", resp.StatusCode)
			}
		}
	})

	t.Run("Missing origin is blocked", func(t *testing.T) {
		conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err == nil {
			_ = conn.Close()
			t.Fatal("Handshake succeeded without an Origin header")
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
	})
}
