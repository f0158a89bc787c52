// Package server implements the gridchat presence server: a single
// simulation actor that owns all player state, fed by one session per
// WebSocket connection.
//
// The implementation is organized into specialized files for configuration,
// the simulation actor, sessions, identity allocation, routing, and HTTP
// handlers to keep the codebase maintainable and testable as the project
// grows.
package server
