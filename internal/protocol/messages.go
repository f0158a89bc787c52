// Package protocol defines the wire message set exchanged between the
// gridchat server and its clients, along with the msgpack codec that turns
// each message into exactly one binary WebSocket frame.
package protocol

import "fmt"

// Direction is a compass facing. The ordinal values cross the wire and must
// not be reordered.
type Direction uint8

const (
	North Direction = iota
	East
	South
	West
)

// String returns the lowercase compass name of the direction.
func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	}
	return fmt.Sprintf("Direction(%d)", uint8(d))
}

// Valid reports whether d is one of the four defined facings.
func (d Direction) Valid() bool {
	return d <= West
}

// Position is a player location on the tile grid.
type Position struct {
	X      int32     `msgpack:"x"`
	Y      int32     `msgpack:"y"`
	Facing Direction `msgpack:"f"`
}

// DefaultPosition is where every player spawns.
var DefaultPosition = Position{X: 127, Y: 154, Facing: South}

// ClientMessage is a message sent from a client to the server.
type ClientMessage interface {
	isClientMessage()
}

// ChatRequest asks the server to fan a chat line out to every player.
type ChatRequest struct {
	Text string
}

// MoveRequest reports the sender's new position. The server stores it
// verbatim; bounds checking is the client's concern.
type MoveRequest struct {
	Pos Position
}

func (ChatRequest) isClientMessage() {}
func (MoveRequest) isClientMessage() {}

// ServerMessage is a message sent from the server to a client.
type ServerMessage interface {
	isServerMessage()
}

// Initialize tells a freshly connected client its assigned id.
type Initialize struct {
	ID string
}

// Chat carries one chat line from the named player, echoed to everyone
// including the sender.
type Chat struct {
	ID   string
	Text string
}

// UpdatePlayer announces a player's current position.
type UpdatePlayer struct {
	ID  string
	Pos Position
}

// DeletePlayer announces that a player has disconnected.
type DeletePlayer struct {
	ID string
}

func (Initialize) isServerMessage()   {}
func (Chat) isServerMessage()         {}
func (UpdatePlayer) isServerMessage() {}
func (DeletePlayer) isServerMessage() {}
