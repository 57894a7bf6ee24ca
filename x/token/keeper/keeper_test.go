package keeper_test

import (
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	keepertest "github.com/paw-chain/cfmm/testutil/keeper"
	"github.com/paw-chain/cfmm/x/token/types"
)

const denom = "uatom"

func TestMintBurn(t *testing.T) {
	k, ctx := keepertest.TokenKeeper(t)
	alice := keepertest.Addr("alice")

	require.NoError(t, k.Mint(ctx, denom, alice, math.NewInt(100)))
	require.Equal(t, math.NewInt(100), k.BalanceOf(ctx, denom, alice))
	require.Equal(t, math.NewInt(100), k.TotalSupply(ctx, denom))

	require.NoError(t, k.Burn(ctx, denom, alice, math.NewInt(40)))
	require.Equal(t, math.NewInt(60), k.BalanceOf(ctx, denom, alice))
	require.Equal(t, math.NewInt(60), k.TotalSupply(ctx, denom))

	err := k.Burn(ctx, denom, alice, math.NewInt(61))
	require.ErrorIs(t, err, types.ErrInsufficientBalance)

	require.ErrorIs(t, k.Mint(ctx, "1x", alice, math.NewInt(1)), types.ErrInvalidToken)
	require.ErrorIs(t, k.Mint(ctx, denom, nil, math.NewInt(1)), types.ErrInvalidAddress)
	require.ErrorIs(t, k.Mint(ctx, denom, alice, math.NewInt(-1)), types.ErrInvalidAmount)
}

func TestTransfer(t *testing.T) {
	k, ctx := keepertest.TokenKeeper(t)
	alice, bob := keepertest.Addr("alice"), keepertest.Addr("bob")
	require.NoError(t, k.Mint(ctx, denom, alice, math.NewInt(100)))

	require.NoError(t, k.Transfer(ctx, denom, alice, bob, math.NewInt(30)))
	require.Equal(t, math.NewInt(70), k.BalanceOf(ctx, denom, alice))
	require.Equal(t, math.NewInt(30), k.BalanceOf(ctx, denom, bob))
	require.Equal(t, math.NewInt(100), k.TotalSupply(ctx, denom))

	err := k.Transfer(ctx, denom, bob, alice, math.NewInt(31))
	require.ErrorIs(t, err, types.ErrInsufficientBalance)

	events := len(ctx.EventManager().Events())
	require.NoError(t, k.Transfer(ctx, denom, bob, alice, math.ZeroInt()))
	require.Len(t, ctx.EventManager().Events(), events, "a zero transfer emits nothing")
}

func TestTransferFrom_ConsumesAllowance(t *testing.T) {
	k, ctx := keepertest.TokenKeeper(t)
	owner, spender, to := keepertest.Addr("owner"), keepertest.Addr("spender"), keepertest.Addr("to")
	require.NoError(t, k.Mint(ctx, denom, owner, math.NewInt(100)))

	err := k.TransferFrom(ctx, denom, spender, owner, to, math.NewInt(1))
	require.ErrorIs(t, err, types.ErrInsufficientAllowance)

	require.NoError(t, k.Approve(ctx, denom, owner, spender, math.NewInt(50)))
	require.NoError(t, k.TransferFrom(ctx, denom, spender, owner, to, math.NewInt(20)))
	require.Equal(t, math.NewInt(30), k.Allowance(ctx, denom, owner, spender))
	require.Equal(t, math.NewInt(20), k.BalanceOf(ctx, denom, to))

	// approve replaces rather than adds
	require.NoError(t, k.Approve(ctx, denom, owner, spender, math.NewInt(5)))
	require.Equal(t, math.NewInt(5), k.Allowance(ctx, denom, owner, spender))

	// moving one's own tokens needs no allowance
	require.NoError(t, k.TransferFrom(ctx, denom, owner, owner, to, math.NewInt(80)))
	require.True(t, k.BalanceOf(ctx, denom, owner).IsZero())
}

func TestIterateBalances(t *testing.T) {
	k, ctx := keepertest.TokenKeeper(t)
	alice, bob := keepertest.Addr("alice"), keepertest.Addr("bob")
	require.NoError(t, k.Mint(ctx, "uatom", alice, math.NewInt(1)))
	require.NoError(t, k.Mint(ctx, "uosmo", bob, math.NewInt(2)))
	require.NoError(t, k.Mint(ctx, "uatom", bob, math.NewInt(3)))
	require.NoError(t, k.Burn(ctx, "uatom", alice, math.NewInt(1)))

	total := math.ZeroInt()
	count := 0
	require.NoError(t, k.IterateBalances(ctx, func(token string, account sdk.AccAddress, amount math.Int) bool {
		require.True(t, account.Equals(bob))
		total = total.Add(amount)
		count++
		return false
	}))
	require.Equal(t, 2, count, "emptied balances are removed")
	require.Equal(t, math.NewInt(5), total)
}
