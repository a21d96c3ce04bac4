package staking

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// The staking asset forwards approve-and-call payloads of the form
// selector || abi(address, uint256, uint256). The selectors are derived
// from the canonical handler signatures.
var (
	DepositSelector  = crypto.Keccak256([]byte("approveAndCallHandlerDeposit(address,uint256,uint256)"))[:4]
	IncreaseSelector = crypto.Keccak256([]byte("approveAndCallHandlerIncrease(address,uint256,uint256)"))[:4]

	relayArguments abi.Arguments
)

func init() {
	addressType, err := abi.NewType("address", "", nil)
	if err != nil {
		panic(err)
	}
	uint256Type, err := abi.NewType("uint256", "", nil)
	if err != nil {
		panic(err)
	}
	relayArguments = abi.Arguments{
		{Type: addressType},
		{Type: uint256Type},
		{Type: uint256Type},
	}
}

// RelayKind tags a decoded relay payload.
type RelayKind int

const (
	// RelayDeposit creates a new position on behalf of the approver.
	RelayDeposit RelayKind = iota
	// RelayIncrease adds stake to an existing position of the approver.
	RelayIncrease
)

// RelayedCall is the tagged message decoded from a forwarded payload.
type RelayedCall struct {
	Kind    RelayKind
	Staker  common.Address
	TokenID *big.Int
	Amount  *big.Int
}

// DecodeRelayPayload parses a forwarded approve-and-call payload into a
// tagged message. Unknown selectors and short or malformed argument
// blocks fail without partial application.
func DecodeRelayPayload(data []byte) (*RelayedCall, error) {
	if len(data) < 4 {
		return nil, errMalformedRelay
	}
	call := &RelayedCall{}
	switch {
	case bytes.Equal(data[:4], DepositSelector):
		call.Kind = RelayDeposit
	case bytes.Equal(data[:4], IncreaseSelector):
		call.Kind = RelayIncrease
	default:
		return nil, fmt.Errorf("%w: unknown selector %x", errMalformedRelay, data[:4])
	}
	values, err := relayArguments.Unpack(data[4:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedRelay, err)
	}
	staker, ok := values[0].(common.Address)
	if !ok {
		return nil, errMalformedRelay
	}
	tokenID, ok := values[1].(*big.Int)
	if !ok {
		return nil, errMalformedRelay
	}
	amount, ok := values[2].(*big.Int)
	if !ok {
		return nil, errMalformedRelay
	}
	call.Staker = staker
	call.TokenID = tokenID
	call.Amount = amount
	return call, nil
}

// EncodeRelayPayload builds a forwardable payload for the given call.
// The inverse of DecodeRelayPayload; used by clients and tests.
func EncodeRelayPayload(call *RelayedCall) ([]byte, error) {
	packed, err := relayArguments.Pack(call.Staker, call.TokenID, call.Amount)
	if err != nil {
		return nil, err
	}
	selector := DepositSelector
	if call.Kind == RelayIncrease {
		selector = IncreaseSelector
	}
	return append(append([]byte(nil), selector...), packed...), nil
}

// HandleApproveAndCall is the entry point invoked by the staking asset
// after an approval. The leading encoded address must equal the actual
// approval caller, which stops a relay from acting for an unrelated
// account; the check runs before any dispatch.
func (e *Engine) HandleApproveAndCall(sender common.Address, data []byte) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	call, err := DecodeRelayPayload(data)
	if err != nil {
		return err
	}
	if call.Staker != sender {
		return errRelaySenderMismatch
	}
	switch call.Kind {
	case RelayDeposit:
		return e.Deposit(sender, call.Staker, call.TokenID, call.Amount, nil)
	case RelayIncrease:
		return e.IncreasePosition(sender, call.TokenID, call.Amount)
	default:
		return errMalformedRelay
	}
}
