package server

import (
	"strconv"
	"testing"
)

// TestAllocateNameFoldsPortBytes verifies the byte-swap fold that turns a
// port number into a name-list index.
func TestAllocateNameFoldsPortBytes(t *testing.T) {
	// Port 0x0100 swaps to index 1, so the second name with suffix 0.
	if got := AllocateName(0x0100); got != playerNames[1]+"0" {
		t.Errorf("AllocateName(0x0100) = %q, want %q", got, playerNames[1]+"0")
	}
	// Port 0x0015 swaps to index 21, which wraps to the first name with
	// suffix 1.
	if got := AllocateName(0x1500); got != playerNames[0]+"1" {
		t.Errorf("AllocateName(0x1500) = %q, want %q", got, playerNames[0]+"1")
	}
}

// TestAllocateNameDeterministic verifies that the same port always maps to
// the same name.
func TestAllocateNameDeterministic(t *testing.T) {
	for _, port := range []uint16{0, 1, 80, 443, 9001, 54321, 65535} {
		a := AllocateName(port)
		b := AllocateName(port)
		if a != b {
			t.Errorf("AllocateName(%d) not deterministic: %q vs %q", port, a, b)
		}
		if a == "" {
			t.Errorf("AllocateName(%d) returned empty name", port)
		}
	}
}

// TestAllocateNameSuffixDisambiguates verifies that ports folding to indexes
// exactly one list length apart share a base name but not a suffix.
func TestAllocateNameSuffixDisambiguates(t *testing.T) {
	n := len(playerNames)
	for quotient := 0; quotient < 3; quotient++ {
		idx := quotient * n
		// Rebuild a port whose byte swap yields idx.
		port := uint16(idx)>>8 | (uint16(idx)&0xff)<<8
		want := playerNames[0] + strconv.Itoa(quotient)
		if got := AllocateName(port); got != want {
			t.Errorf("AllocateName(%#x) = %q, want %q", port, got, want)
		}
	}
}
