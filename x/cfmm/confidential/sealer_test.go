package confidential_test

import (
	"bytes"
	"context"
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/paw-chain/cfmm/x/cfmm/confidential"
)

var (
	alice = sdk.AccAddress(bytes.Repeat([]byte{1}, 20))
	bob   = sdk.AccAddress(bytes.Repeat([]byte{2}, 20))
)

func TestNewSealer_KeySize(t *testing.T) {
	_, err := confidential.NewSealer([]byte("short"))
	require.ErrorIs(t, err, confidential.ErrInvalidKey)
}

func TestSealer_RoundTrip(t *testing.T) {
	s, err := confidential.NewSealer(bytes.Repeat([]byte{7}, confidential.KeySize))
	require.NoError(t, err)

	rapid.Check(t, func(rt *rapid.T) {
		amount := math.NewIntFromUint64(rapid.Uint64().Draw(rt, "amount"))
		sealed, err := s.Seal(alice, amount)
		require.NoError(rt, err)

		got, err := s.Decrypt(context.Background(), alice, sealed)
		require.NoError(rt, err)
		require.True(rt, amount.Equal(got))
	})
}

func TestSealer_RejectsForeignOwnerAndKey(t *testing.T) {
	s, err := confidential.NewSealer(bytes.Repeat([]byte{7}, confidential.KeySize))
	require.NoError(t, err)
	other, err := confidential.NewSealer(bytes.Repeat([]byte{8}, confidential.KeySize))
	require.NoError(t, err)

	sealed, err := s.Seal(alice, math.NewInt(42))
	require.NoError(t, err)

	_, err = s.Decrypt(context.Background(), bob, sealed)
	require.ErrorIs(t, err, confidential.ErrInvalidProof)

	_, err = other.Decrypt(context.Background(), alice, sealed)
	require.ErrorIs(t, err, confidential.ErrInvalidProof)
}

func TestSealer_FreshNoncePerSeal(t *testing.T) {
	s, err := confidential.NewSealer(bytes.Repeat([]byte{7}, confidential.KeySize))
	require.NoError(t, err)

	first, err := s.Seal(alice, math.NewInt(42))
	require.NoError(t, err)
	second, err := s.Seal(alice, math.NewInt(42))
	require.NoError(t, err)
	require.NotEqual(t, first.Ciphertext, second.Ciphertext)
}
