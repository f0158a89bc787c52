// Package testhelpers provides common utilities and helper functions for
// testing the gridchat server.
//
// It contains reusable helpers shared across unit and integration tests:
// creating test servers, dialing WebSocket players, and reading decoded
// replies with deadlines, to reduce duplication in test files.
package testhelpers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"gridchat/internal/protocol"
)

// CreateTestServer creates a test HTTP server with the given handler. The
// returned server should be closed after use.
func CreateTestServer(handler http.Handler) *httptest.Server {
	return httptest.NewServer(handler)
}

// WebSocketURL rewrites a test server's base URL to point at the /ws
// endpoint with the ws scheme.
func WebSocketURL(t *testing.T, baseURL string) string {
	t.Helper()
	u, err := url.Parse(baseURL)
	if err != nil {
		t.Fatalf("Failed to parse test server URL: %v", err)
	}
	u.Scheme = "ws"
	u.Path = "/ws"
	return u.String()
}

// DialPlayer opens a WebSocket connection with the given Origin header and
// fails the test if the handshake does not complete.
func DialPlayer(t *testing.T, wsURL, origin string) *websocket.Conn {
	t.Helper()
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// ReadReply reads one binary frame from the connection and decodes it as a
// server-to-client message, failing the test on timeout or a malformed frame.
func ReadReply(t *testing.T, conn *websocket.Conn) protocol.ServerMessage {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("Failed to set read deadline: %v", err)
	}
	msgType, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read reply: %v", err)
	}
	if msgType != websocket.BinaryMessage {
		t.Fatalf("Reply frame type = %d, want binary", msgType)
	}
	msg, err := protocol.DecodeServer(data)
	if err != nil {
		t.Fatalf("Failed to decode reply: %v", err)
	}
	return msg
}

// SendRequest encodes a client-to-server message and writes it as one binary
// frame.
func SendRequest(t *testing.T, conn *websocket.Conn, msg protocol.ClientMessage) {
	t.Helper()
	data, err := protocol.EncodeClient(msg)
	if err != nil {
		t.Fatalf("Failed to encode request: %v", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		t.Fatalf("Failed to send request: %v", err)
	}
}

// AssertStatusCode checks if the HTTP response has the expected status code.
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("Expected status code %d, got %d", expected, resp.StatusCode)
	}
}

// AssertContentType checks if the HTTP response has the expected
// Content-Type header.
func AssertContentType(t *testing.T, resp *http.Response, expected string) {
	t.Helper()
	contentType := resp.Header.Get("Content-Type")
	if contentType != expected {
		t.Errorf("Expected content type %s, got %s", expected, contentType)
	}
}

// MakeRequest creates and executes an HTTP request, returning the response.
func MakeRequest(t *testing.T, method, url string) *http.Response {
	t.Helper()
	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}
