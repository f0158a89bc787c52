// Package server derives stable display names for connections from the
// remote endpoint's port number.
package server

import "strconv"

// https://en.wikipedia.org/wiki/List_of_Egyptian_deities
var playerNames = []string{
	"Anubis", "Wosret", "Pakhet", "Aten", "Anuket", "Isis", "Maat",
	"Nefertum", "Ra", "Thoth", "Khepri", "Kek", "Ba'alat", "Mafdet",
	"Qerhet", "Satet", "Esna", "Thmei", "Tafner", "Unnit", "Apep",
}

// AllocateName maps a remote port to a human-readable display name. The two
// port bytes are swapped to form an index into the name list, and the integer
// quotient is appended so wrapped-around indexes stay unique. Pure and
// deterministic: the same port always yields the same name.
func AllocateName(port uint16) string {
	idx := int(port>>8 | (port&0xff)<<8)
	return playerNames[idx%len(playerNames)] + strconv.Itoa(idx/len(playerNames))
}
