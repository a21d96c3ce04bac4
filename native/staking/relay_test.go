package staking

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRelayPayloadRoundTrip(t *testing.T) {
	staker := makeAddress(0x01)
	call := &RelayedCall{
		Kind:    RelayDeposit,
		Staker:  staker,
		TokenID: big.NewInt(7),
		Amount:  big.NewInt(1234),
	}
	payload, err := EncodeRelayPayload(call)
	require.NoError(t, err)
	require.Equal(t, DepositSelector, payload[:4])

	decoded, err := DecodeRelayPayload(payload)
	require.NoError(t, err)
	require.Equal(t, RelayDeposit, decoded.Kind)
	require.Equal(t, staker, decoded.Staker)
	require.Zero(t, decoded.TokenID.Cmp(big.NewInt(7)))
	require.Zero(t, decoded.Amount.Cmp(big.NewInt(1234)))

	call.Kind = RelayIncrease
	payload, err = EncodeRelayPayload(call)
	require.NoError(t, err)
	require.Equal(t, IncreaseSelector, payload[:4])

	decoded, err = DecodeRelayPayload(payload)
	require.NoError(t, err)
	require.Equal(t, RelayIncrease, decoded.Kind)
}

func TestDecodeRelayPayloadRejectsGarbage(t *testing.T) {
	_, err := DecodeRelayPayload(nil)
	require.ErrorIs(t, err, errMalformedRelay)

	_, err = DecodeRelayPayload([]byte{0x01, 0x02, 0x03})
	require.ErrorIs(t, err, errMalformedRelay)

	_, err = DecodeRelayPayload([]byte{0xde, 0xad, 0xbe, 0xef})
	require.ErrorIs(t, err, errMalformedRelay)

	// A known selector with a truncated argument block.
	short := append(append([]byte(nil), DepositSelector...), 0x01, 0x02)
	_, err = DecodeRelayPayload(short)
	require.ErrorIs(t, err, errMalformedRelay)
}

func TestHandleApproveAndCallDeposits(t *testing.T) {
	f := newEngineFixture(t, nil)
	staker := makeAddress(0x01)

	payload, err := EncodeRelayPayload(&RelayedCall{
		Kind:    RelayDeposit,
		Staker:  staker,
		TokenID: big.NewInt(9),
		Amount:  big.NewInt(500),
	})
	require.NoError(t, err)
	require.NoError(t, f.engine.HandleApproveAndCall(staker, payload))

	pos, _ := f.state.Position(big.NewInt(9))
	require.NotNil(t, pos)
	require.Zero(t, pos.Amount.Cmp(big.NewInt(500)))
	owner, err := f.nft.OwnerOf(big.NewInt(9))
	require.NoError(t, err)
	require.Equal(t, staker, owner)
}

func TestHandleApproveAndCallIncreases(t *testing.T) {
	f := newEngineFixture(t, nil)
	staker := makeAddress(0x01)
	f.deposit(t, staker, 9, 100)

	payload, err := EncodeRelayPayload(&RelayedCall{
		Kind:    RelayIncrease,
		Staker:  staker,
		TokenID: big.NewInt(9),
		Amount:  big.NewInt(50),
	})
	require.NoError(t, err)
	require.NoError(t, f.engine.HandleApproveAndCall(staker, payload))

	pos, _ := f.state.Position(big.NewInt(9))
	require.Zero(t, pos.Amount.Cmp(big.NewInt(150)))
}

func TestHandleApproveAndCallRejectsSenderMismatch(t *testing.T) {
	f := newEngineFixture(t, nil)
	staker := makeAddress(0x01)
	relayer := makeAddress(0x02)

	payload, err := EncodeRelayPayload(&RelayedCall{
		Kind:    RelayDeposit,
		Staker:  staker,
		TokenID: big.NewInt(9),
		Amount:  big.NewInt(500),
	})
	require.NoError(t, err)

	err = f.engine.HandleApproveAndCall(relayer, payload)
	require.ErrorIs(t, err, errRelaySenderMismatch)
	pos, _ := f.state.Position(big.NewInt(9))
	require.Nil(t, pos)
}
