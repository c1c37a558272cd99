package validation

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// CheckAddress validates a destination account identifier. The identifier must
// match the network's address grammar and must not be the sender's own address.
func CheckAddress(addr, sender string) Result {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return invalid("destination address is required")
	}
	if !common.IsHexAddress(addr) {
		return invalid("destination is not a valid address")
	}
	if sender != "" && strings.EqualFold(addr, sender) {
		return invalid("destination cannot be your own address")
	}
	return ok()
}
