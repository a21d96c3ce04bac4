package events

import (
	"math/big"

	"mvstaking/core/types"
)

// Event is implemented by every structured payload that can be converted
// into a broadcastable ledger event.
type Event interface {
	EventType() string
	Event() *types.Event
}

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
