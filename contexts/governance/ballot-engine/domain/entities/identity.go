package entities

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Identity is the account address a caller or voter is known by.
type Identity = common.Address

// ParseIdentity accepts a 0x-prefixed (or bare) 40 hex digit address.
// The zero address is rejected because it is indistinguishable from "no delegate".
func ParseIdentity(raw string) (Identity, bool) {
	raw = strings.TrimSpace(raw)
	if !common.IsHexAddress(raw) {
		return Identity{}, false
	}
	identity := common.HexToAddress(raw)
	if identity == (Identity{}) {
		return Identity{}, false
	}
	return identity, true
}
