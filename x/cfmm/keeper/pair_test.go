package keeper_test

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	keepertest "github.com/paw-chain/cfmm/testutil/keeper"
	"github.com/paw-chain/cfmm/x/cfmm/keeper"
	"github.com/paw-chain/cfmm/x/cfmm/types"
)

func TestSwap_SeededScenario(t *testing.T) {
	f := keepertest.CFMMKeeper(t)
	creator, trader := keepertest.Addr("creator"), keepertest.Addr("trader")
	pair := f.CreatePair(t, creator, tokenA, tokenB, math.NewInt(100000), math.NewInt(200000))
	f.Fund(t, trader, math.NewInt(10000), tokenA)

	quoted, err := f.Keeper.QuoteSwap(f.Ctx, tokenA, tokenB, math.NewInt(10000))
	require.NoError(t, err)

	out, err := f.Keeper.Swap(f.Ctx, trader, tokenA, tokenB, math.NewInt(10000), math.ZeroInt(), trader)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(18132), out)
	require.Equal(t, quoted, out)
	require.Equal(t, out, f.Balance(trader, tokenB))

	after, err := f.Keeper.GetPair(f.Ctx, pair.Id)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(110000), after.Reserve0)
	require.Equal(t, math.NewInt(200000-18132), after.Reserve1)
	require.True(t, after.K().GT(pair.K()))
	require.Equal(t, after.Reserve0, f.Balance(pair.GetAddress(), tokenA))
	require.Equal(t, after.Reserve1, f.Balance(pair.GetAddress(), tokenB))
}

func TestSwap_ProtocolFeeAccrual(t *testing.T) {
	f := keepertest.CFMMKeeper(t)
	creator, trader, treasury := keepertest.Addr("creator"), keepertest.Addr("trader"), keepertest.Addr("treasury")
	f.SetParams(t, func(p *types.Params) { p.FeeRecipient = treasury.String() })
	pair := f.CreatePair(t, creator, tokenA, tokenB, math.NewInt(100000), math.NewInt(200000))
	f.Fund(t, trader, math.NewInt(10000), tokenA)

	out, err := f.Keeper.Swap(f.Ctx, trader, tokenA, tokenB, math.NewInt(10000), math.ZeroInt(), trader)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(18132), out)

	// gross fee 30, protocol share floor(30*1667/10000) = 5
	after, err := f.Keeper.GetPair(f.Ctx, pair.Id)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(109995), after.Reserve0)
	require.True(t, after.K().GT(pair.K()))
	require.Equal(t, math.NewInt(5), f.Keeper.GetProtocolFees(f.Ctx, treasury, tokenA))
	require.Equal(t, math.NewInt(5), f.Balance(f.Keeper.FeeVaultAddress(), tokenA))

	withdrawn, err := f.Keeper.WithdrawProtocolFees(f.Ctx, treasury, tokenA)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(5), withdrawn)
	require.Equal(t, math.NewInt(5), f.Balance(treasury, tokenA))
	require.True(t, f.Keeper.GetProtocolFees(f.Ctx, treasury, tokenA).IsZero())

	_, err = f.Keeper.WithdrawProtocolFees(f.Ctx, treasury, tokenA)
	require.ErrorIs(t, err, types.ErrInsufficientFunds)
}

func TestSwap_BelowMinimumRollsBack(t *testing.T) {
	f := keepertest.CFMMKeeper(t)
	creator, trader := keepertest.Addr("creator"), keepertest.Addr("trader")
	pair := f.CreatePair(t, creator, tokenA, tokenB, math.NewInt(100000), math.NewInt(200000))
	f.Fund(t, trader, math.NewInt(10000), tokenA)

	_, err := f.Keeper.Swap(f.Ctx, trader, tokenA, tokenB, math.NewInt(10000), math.NewInt(18133), trader)
	require.ErrorIs(t, err, types.ErrInsufficientOutputAmount)
	require.Equal(t, types.ClassSlippageExceeded, types.Classify(err))

	after, err := f.Keeper.GetPair(f.Ctx, pair.Id)
	require.NoError(t, err)
	require.True(t, pair.Reserve0.Equal(after.Reserve0))
	require.True(t, pair.Reserve1.Equal(after.Reserve1))
	require.Equal(t, math.NewInt(10000), f.Balance(trader, tokenA))
	require.True(t, f.Balance(trader, tokenB).IsZero())
}

func TestSwap_UnknownPair(t *testing.T) {
	f := keepertest.CFMMKeeper(t)
	trader := keepertest.Addr("trader")
	f.Fund(t, trader, math.NewInt(10000), tokenA)

	_, err := f.Keeper.Swap(f.Ctx, trader, tokenA, tokenC, math.NewInt(100), math.ZeroInt(), trader)
	require.ErrorIs(t, err, types.ErrPairNotFound)
	require.Equal(t, types.ClassNotFound, types.Classify(err))
}

func TestDeposit_MatchesReserveRatio(t *testing.T) {
	f := keepertest.CFMMKeeper(t)
	creator, provider := keepertest.Addr("creator"), keepertest.Addr("provider")
	pair := f.CreatePair(t, creator, tokenA, tokenB, math.NewInt(100000), math.NewInt(200000))
	f.Fund(t, provider, math.NewInt(50000), tokenA, tokenB)

	amountA, amountB, shares, err := f.Keeper.Deposit(f.Ctx, provider, tokenA, tokenB, math.NewInt(10000), math.NewInt(50000), provider)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(10000), amountA)
	require.Equal(t, math.NewInt(20000), amountB)
	require.Equal(t, math.NewInt(14142), shares)

	// the unmatched B never left the provider
	require.Equal(t, math.NewInt(40000), f.Balance(provider, tokenA))
	require.Equal(t, math.NewInt(30000), f.Balance(provider, tokenB))
	require.Equal(t, shares, f.Keeper.GetShares(f.Ctx, pair.Id, provider))

	after, err := f.Keeper.GetPair(f.Ctx, pair.Id)
	require.NoError(t, err)
	require.Equal(t, pair.TotalShares.Add(shares), after.TotalShares)
}

func TestWithdraw(t *testing.T) {
	f := keepertest.CFMMKeeper(t)
	creator := keepertest.Addr("creator")
	pair := f.CreatePair(t, creator, tokenA, tokenB, math.NewInt(100000), math.NewInt(200000))
	held := f.Keeper.GetShares(f.Ctx, pair.Id, creator)

	_, _, err := f.Keeper.Withdraw(f.Ctx, creator, tokenA, tokenB, held.AddRaw(1), creator)
	require.ErrorIs(t, err, types.ErrInsufficientShares)

	amountB, amountA, err := f.Keeper.Withdraw(f.Ctx, creator, tokenB, tokenA, held, creator)
	require.NoError(t, err)
	require.Equal(t, held.Mul(pair.Reserve0).Quo(pair.TotalShares), amountA)
	require.Equal(t, held.Mul(pair.Reserve1).Quo(pair.TotalShares), amountB)
	require.Equal(t, amountA, f.Balance(creator, tokenA))
	require.Equal(t, amountB, f.Balance(creator, tokenB))

	// the locked minimum liquidity keeps the pair seeded
	after, err := f.Keeper.GetPair(f.Ctx, pair.Id)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(types.DefaultMinimumLiquidity), after.TotalShares)
	require.True(t, after.Reserve0.IsPositive())
	require.True(t, after.Reserve1.IsPositive())

	_, broken := keeper.AllInvariants(f.Keeper)(f.Ctx)
	require.False(t, broken)
}

func TestProperty_ShareProportionality(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := keepertest.CFMMKeeper(t)
		creator, provider := keepertest.Addr("creator"), keepertest.Addr("provider")

		r0 := math.NewInt(rapid.Int64Range(10_000, 100_000_000).Draw(rt, "reserve0"))
		r1 := math.NewInt(rapid.Int64Range(10_000, 100_000_000).Draw(rt, "reserve1"))
		a := math.NewInt(rapid.Int64Range(10_000, 100_000_000).Draw(rt, "depositA"))
		pair := f.CreatePair(t, creator, tokenA, tokenB, r0, r1)
		supply := pair.TotalShares

		huge := math.NewInt(1_000_000_000_000_000)
		f.Fund(t, provider, huge, tokenA, tokenB)

		amountA, amountB, minted, err := f.Keeper.Deposit(f.Ctx, provider, tokenA, tokenB, a, huge, provider)
		if err != nil {
			// deposits too small to mint a share are rejected outright
			require.ErrorIs(rt, err, types.ErrInsufficientLiquidity)
			return
		}
		require.Equal(rt, a, amountA)

		// minted is the proportional share amount rounded down by less than one unit
		require.True(rt, minted.Mul(r1).LTE(amountB.Mul(supply)))
		require.True(rt, minted.AddRaw(1).Mul(r1).GT(amountB.Mul(supply)))

		// redeeming immediately never returns more than was deposited
		backA, backB, err := f.Keeper.Withdraw(f.Ctx, provider, tokenA, tokenB, minted, provider)
		if err != nil {
			require.ErrorIs(rt, err, types.ErrInsufficientLiquidity)
			return
		}
		require.True(rt, backA.LTE(amountA))
		require.True(rt, backB.LTE(amountB))
	})
}
