package keeper_test

import (
	"fmt"
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	keepertest "github.com/paw-chain/cfmm/testutil/keeper"
	"github.com/paw-chain/cfmm/x/cfmm/keeper"
	"github.com/paw-chain/cfmm/x/cfmm/types"
)

const (
	tokenA types.Token = "atoken"
	tokenB types.Token = "btoken"
	tokenC types.Token = "ctoken"
	tokenD types.Token = "dtoken"
)

func TestCreatePair_SeedsReservesAndShares(t *testing.T) {
	f := keepertest.CFMMKeeper(t)
	creator := keepertest.Addr("creator")

	pair := f.CreatePair(t, creator, tokenB, tokenA, math.NewInt(200000), math.NewInt(100000))

	require.Equal(t, uint64(1), pair.Id)
	require.Equal(t, tokenA, pair.Token0)
	require.Equal(t, tokenB, pair.Token1)
	require.Equal(t, math.NewInt(100000), pair.Reserve0)
	require.Equal(t, math.NewInt(200000), pair.Reserve1)
	require.Equal(t, math.NewInt(141421), pair.TotalShares)

	minLiquidity := math.NewInt(types.DefaultMinimumLiquidity)
	require.Equal(t, math.NewInt(141421).Sub(minLiquidity), f.Keeper.GetShares(f.Ctx, pair.Id, creator))
	require.Equal(t, minLiquidity, f.Keeper.GetShares(f.Ctx, pair.Id, pair.GetAddress()))

	require.Equal(t, pair.Reserve0, f.Balance(pair.GetAddress(), tokenA))
	require.Equal(t, pair.Reserve1, f.Balance(pair.GetAddress(), tokenB))
	require.True(t, f.Balance(creator, tokenA).IsZero())
	require.True(t, f.Balance(creator, tokenB).IsZero())
}

func TestCreatePair_Errors(t *testing.T) {
	f := keepertest.CFMMKeeper(t)
	creator := keepertest.Addr("creator")
	f.Fund(t, creator, math.NewInt(1_000_000), tokenA, tokenB)

	_, _, err := f.Keeper.CreatePair(f.Ctx, creator, tokenA, tokenA, math.NewInt(1000), math.NewInt(1000))
	require.ErrorIs(t, err, types.ErrIdenticalTokens)

	_, _, err = f.Keeper.CreatePair(f.Ctx, creator, tokenA, tokenB, math.ZeroInt(), math.NewInt(1000))
	require.ErrorIs(t, err, types.ErrInvalidSeed)

	_, _, err = f.Keeper.CreatePair(f.Ctx, creator, tokenA, tokenB, math.NewInt(10), math.NewInt(10))
	require.ErrorIs(t, err, types.ErrInvalidSeed, "seed below minimum liquidity")

	_, _, err = f.Keeper.CreatePair(f.Ctx, creator, tokenA, "not a token!", math.NewInt(1000), math.NewInt(1000))
	require.ErrorIs(t, err, types.ErrInvalidToken)

	// failed attempts leave nothing behind
	require.Zero(t, f.Keeper.PairCount(f.Ctx))
	require.Nil(t, f.Keeper.GetPairAddress(f.Ctx, tokenA, tokenB))
	require.Equal(t, math.NewInt(1_000_000), f.Balance(creator, tokenA))
}

func TestCreatePair_RequiresAllowance(t *testing.T) {
	f := keepertest.CFMMKeeper(t)
	creator := keepertest.Addr("creator")
	require.NoError(t, f.Tokens.Mint(f.Ctx, string(tokenA), creator, math.NewInt(100000)))
	require.NoError(t, f.Tokens.Mint(f.Ctx, string(tokenB), creator, math.NewInt(100000)))

	_, _, err := f.Keeper.CreatePair(f.Ctx, creator, tokenA, tokenB, math.NewInt(100000), math.NewInt(100000))
	require.Error(t, err)
	require.Equal(t, types.ClassInsufficientFunds, types.Classify(err))
	require.Zero(t, f.Keeper.PairCount(f.Ctx))
	require.Equal(t, math.NewInt(100000), f.Balance(creator, tokenA))
}

func TestCreatePair_DuplicateEitherOrder(t *testing.T) {
	f := keepertest.CFMMKeeper(t)
	creator := keepertest.Addr("creator")
	f.CreatePair(t, creator, tokenA, tokenB, math.NewInt(100000), math.NewInt(100000))
	f.Fund(t, creator, math.NewInt(100000), tokenA, tokenB)

	_, _, err := f.Keeper.CreatePair(f.Ctx, creator, tokenB, tokenA, math.NewInt(50000), math.NewInt(50000))
	require.ErrorIs(t, err, types.ErrPairExists)
	require.Equal(t, types.ClassAlreadyExists, types.Classify(err))
	require.Equal(t, uint64(1), f.Keeper.PairCount(f.Ctx))
}

func TestGetPairAddress_Commutative(t *testing.T) {
	f := keepertest.CFMMKeeper(t)
	creator := keepertest.Addr("creator")

	require.Nil(t, f.Keeper.GetPairAddress(f.Ctx, tokenA, tokenB))
	pair := f.CreatePair(t, creator, tokenB, tokenA, math.NewInt(100000), math.NewInt(100000))

	ab := f.Keeper.GetPairAddress(f.Ctx, tokenA, tokenB)
	ba := f.Keeper.GetPairAddress(f.Ctx, tokenB, tokenA)
	require.NotNil(t, ab)
	require.Equal(t, ab, ba)
	require.Equal(t, pair.GetAddress(), ab)
	require.True(t, f.Keeper.IsPair(f.Ctx, ab))
	require.False(t, f.Keeper.IsPair(f.Ctx, creator))
}

func TestProperty_RegistryCountAndLookup(t *testing.T) {
	tokens := []types.Token{"atoken", "btoken", "ctoken", "dtoken", "etoken"}
	rapid.Check(t, func(rt *rapid.T) {
		f := keepertest.CFMMKeeper(t)
		creator := keepertest.Addr("creator")
		created := map[string]bool{}

		steps := rapid.IntRange(1, 12).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			x := rapid.SampledFrom(tokens).Draw(rt, fmt.Sprintf("x%d", i))
			y := rapid.SampledFrom(tokens).Draw(rt, fmt.Sprintf("y%d", i))
			f.Fund(t, creator, math.NewInt(10000), x, y)

			key := string(types.PairByTokensKey(x, y))
			before := f.Keeper.PairCount(f.Ctx)
			_, _, err := f.Keeper.CreatePair(f.Ctx, creator, x, y, math.NewInt(5000), math.NewInt(5000))
			switch {
			case x == y:
				require.ErrorIs(rt, err, types.ErrIdenticalTokens)
				require.Equal(rt, before, f.Keeper.PairCount(f.Ctx))
			case created[key]:
				require.ErrorIs(rt, err, types.ErrPairExists)
				require.Equal(rt, before, f.Keeper.PairCount(f.Ctx))
			default:
				require.NoError(rt, err)
				created[key] = true
				require.Equal(rt, before+1, f.Keeper.PairCount(f.Ctx))
			}
			if x != y {
				require.Equal(rt, f.Keeper.GetPairAddress(f.Ctx, x, y), f.Keeper.GetPairAddress(f.Ctx, y, x))
			}
		}

		require.Equal(rt, uint64(len(created)), f.Keeper.PairCount(f.Ctx))
		_, broken := keeper.AllInvariants(f.Keeper)(f.Ctx)
		require.False(rt, broken)
	})
}
