package protocol

import (
	"errors"
	"math"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

// TestClientRoundTrip verifies that every client-to-server variant survives
// an encode/decode cycle unchanged.
func TestClientRoundTrip(t *testing.T) {
	messages := []ClientMessage{
		ChatRequest{Text: "hello"},
		ChatRequest{Text: ""},
		MoveRequest{Pos: Position{X: 5, Y: 5, Facing: East}},
		MoveRequest{Pos: Position{X: math.MinInt32, Y: math.MaxInt32, Facing: West}},
		MoveRequest{Pos: DefaultPosition},
	}

	for _, msg := range messages {
		data, err := EncodeClient(msg)
		if err != nil {
			t.Fatalf("EncodeClient(%#v): %v", msg, err)
		}
		got, err := DecodeClient(data)
		if err != nil {
			t.Fatalf("DecodeClient(%#v): %v", msg, err)
		}
		if got != msg {
			t.Errorf("round trip changed message: sent %#v, got %#v", msg, got)
		}
	}
}

// TestServerRoundTrip verifies that every server-to-client variant survives
// an encode/decode cycle unchanged.
func TestServerRoundTrip(t *testing.T) {
	messages := []ServerMessage{
		Initialize{ID: "Anubis0"},
		Chat{ID: "Thoth2", Text: "hi all"},
		UpdatePlayer{ID: "Isis1", Pos: Position{X: -3, Y: 7, Facing: North}},
		UpdatePlayer{ID: "Ra0", Pos: Position{X: math.MinInt32, Y: math.MinInt32, Facing: West}},
		DeletePlayer{ID: "Apep3"},
	}

	for _, msg := range messages {
		data, err := EncodeServer(msg)
		if err != nil {
			t.Fatalf("EncodeServer(%#v): %v", msg, err)
		}
		got, err := DecodeServer(data)
		if err != nil {
			t.Fatalf("DecodeServer(%#v): %v", msg, err)
		}
		if got != msg {
			t.Errorf("round trip changed message: sent %#v, got %#v", msg, got)
		}
	}
}

// TestDecodeRejectsGarbage verifies that byte soup does not decode into a
// message.
func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := DecodeClient([]byte{0xc1, 0xff, 0x00}); err == nil {
		t.Error("DecodeClient accepted invalid msgpack")
	}
	if _, err := DecodeServer([]byte{0xc1, 0xff, 0x00}); err == nil {
		t.Error("DecodeServer accepted invalid msgpack")
	}
}

// TestDecodeRejectsUnknownKind verifies that an envelope with an unused kind
// tag is reported as malformed.
func TestDecodeRejectsUnknownKind(t *testing.T) {
	raw, err := msgpack.Marshal(&clientEnvelope{Kind: 200})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	if _, err := DecodeClient(raw); !errors.Is(err, ErrMalformedMessage) {
		t.Errorf("DecodeClient(kind 200) error = %v, want ErrMalformedMessage", err)
	}
	raw, err = msgpack.Marshal(&serverEnvelope{Kind: 200})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	if _, err := DecodeServer(raw); !errors.Is(err, ErrMalformedMessage) {
		t.Errorf("DecodeServer(kind 200) error = %v, want ErrMalformedMessage", err)
	}
}

// TestDecodeRejectsBadFacing verifies that an out-of-range facing is fatal at
// the codec boundary rather than reaching the simulation.
func TestDecodeRejectsBadFacing(t *testing.T) {
	env := clientEnvelope{Kind: kindMoveRequest, Pos: &Position{X: 1, Y: 1, Facing: Direction(9)}}
	raw, err := msgpack.Marshal(&env)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	if _, err := DecodeClient(raw); !errors.Is(err, ErrMalformedMessage) {
		t.Errorf("DecodeClient(facing 9) error = %v, want ErrMalformedMessage", err)
	}
}
