// Package protocol implements the binary codec. Every message is carried as
// one msgpack-encoded envelope per WebSocket binary frame; the envelope's kind
// tag selects the variant and the remaining fields carry its payload.
package protocol

import (
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Client to server kinds. The values cross the wire; do not reorder.
const (
	kindChatRequest uint8 = iota
	kindMoveRequest
)

// Server to client kinds.
const (
	kindInitialize uint8 = iota
	kindChat
	kindUpdatePlayer
	kindDeletePlayer
)

// ErrMalformedMessage reports an envelope whose kind tag or payload fields do
// not form a valid message. Sessions treat it as fatal.
var ErrMalformedMessage = errors.New("protocol: malformed message")

type clientEnvelope struct {
	Kind uint8     `msgpack:"k"`
	Text string    `msgpack:"t,omitempty"`
	Pos  *Position `msgpack:"p,omitempty"`
}

type serverEnvelope struct {
	Kind uint8     `msgpack:"k"`
	ID   string    `msgpack:"id,omitempty"`
	Text string    `msgpack:"t,omitempty"`
	Pos  *Position `msgpack:"p,omitempty"`
}

// EncodeClient serializes a client-to-server message into a single frame
// payload.
func EncodeClient(msg ClientMessage) ([]byte, error) {
	var env clientEnvelope
	switch m := msg.(type) {
	case ChatRequest:
		env = clientEnvelope{Kind: kindChatRequest, Text: m.Text}
	case MoveRequest:
		pos := m.Pos
		env = clientEnvelope{Kind: kindMoveRequest, Pos: &pos}
	default:
		return nil, fmt.Errorf("protocol: cannot encode client message %T", msg)
	}
	return msgpack.Marshal(&env)
}

// DecodeClient parses a single frame payload into a client-to-server message.
func DecodeClient(data []byte) (ClientMessage, error) {
	var env clientEnvelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("protocol: decode client frame: %w", err)
	}
	switch env.Kind {
	case kindChatRequest:
		return ChatRequest{Text: env.Text}, nil
	case kindMoveRequest:
		if env.Pos == nil {
			return nil, fmt.Errorf("%w: move without position", ErrMalformedMessage)
		}
		if !env.Pos.Facing.Valid() {
			return nil, fmt.Errorf("%w: facing %d out of range", ErrMalformedMessage, env.Pos.Facing)
		}
		return MoveRequest{Pos: *env.Pos}, nil
	}
	return nil, fmt.Errorf("%w: unknown client kind %d", ErrMalformedMessage, env.Kind)
}

// EncodeServer serializes a server-to-client message into a single frame
// payload.
func EncodeServer(msg ServerMessage) ([]byte, error) {
	var env serverEnvelope
	switch m := msg.(type) {
	case Initialize:
		env = serverEnvelope{Kind: kindInitialize, ID: m.ID}
	case Chat:
		env = serverEnvelope{Kind: kindChat, ID: m.ID, Text: m.Text}
	case UpdatePlayer:
		pos := m.Pos
		env = serverEnvelope{Kind: kindUpdatePlayer, ID: m.ID, Pos: &pos}
	case DeletePlayer:
		env = serverEnvelope{Kind: kindDeletePlayer, ID: m.ID}
	default:
		return nil, fmt.Errorf("protocol: cannot encode server message %T", msg)
	}
	return msgpack.Marshal(&env)
}

// DecodeServer parses a single frame payload into a server-to-client message.
func DecodeServer(data []byte) (ServerMessage, error) {
	var env serverEnvelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("protocol: decode server frame: %w", err)
	}
	switch env.Kind {
	case kindInitialize:
		return Initialize{ID: env.ID}, nil
	case kindChat:
		return Chat{ID: env.ID, Text: env.Text}, nil
	case kindUpdatePlayer:
		if env.Pos == nil {
			return nil, fmt.Errorf("%w: update without position", ErrMalformedMessage)
		}
		if !env.Pos.Facing.Valid() {
			return nil, fmt.Errorf("%w: facing %d out of range", ErrMalformedMessage, env.Pos.Facing)
		}
		return UpdatePlayer{ID: env.ID, Pos: *env.Pos}, nil
	case kindDeletePlayer:
		return DeletePlayer{ID: env.ID}, nil
	}
	return nil, fmt.Errorf("%w: unknown server kind %d", ErrMalformedMessage, env.Kind)
}
