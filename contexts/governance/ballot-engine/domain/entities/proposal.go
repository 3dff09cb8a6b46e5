package entities

import (
	"bytes"
	"encoding/hex"
)

// ProposalNameLength is the fixed width of a proposal identifier.
const ProposalNameLength = 32

// ProposalName is a fixed-length identifier, right-padded with zero bytes.
type ProposalName [ProposalNameLength]byte

// NewProposalName packs a string into a ProposalName. It reports false when the
// string does not fit.
func NewProposalName(value string) (ProposalName, bool) {
	var name ProposalName
	if len(value) > ProposalNameLength {
		return name, false
	}
	copy(name[:], value)
	return name, true
}

// ProposalNameFromBytes copies raw storage bytes into a ProposalName.
func ProposalNameFromBytes(raw []byte) ProposalName {
	var name ProposalName
	copy(name[:], raw)
	return name
}

// String drops the zero padding.
func (n ProposalName) String() string {
	return string(bytes.TrimRight(n[:], "\x00"))
}

// Hex renders the full 32 bytes, as the name would appear on chain.
func (n ProposalName) Hex() string {
	return "0x" + hex.EncodeToString(n[:])
}

// Proposal is one entry of the fixed proposal registry.
type Proposal struct {
	Name      ProposalName
	VoteCount uint64
}
