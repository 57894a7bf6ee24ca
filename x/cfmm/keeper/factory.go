package keeper

import (
	"context"
	"strconv"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/cfmm/x/cfmm/types"
)

// CreatePair registers the pair for tokenX/tokenY and seeds it with
// amountX/amountY pulled from creator. Initial shares go to the creator.
func (k Keeper) CreatePair(
	ctx context.Context,
	creator sdk.AccAddress,
	tokenX, tokenY types.Token,
	amountX, amountY math.Int,
) (types.Pair, math.Int, error) {
	type result struct {
		pair   types.Pair
		shares math.Int
	}
	res, err := atomically(ctx, func(ctx sdk.Context) (result, error) {
		pair, shares, err := k.createPair(ctx, creator, creator, tokenX, tokenY, amountX, amountY)
		return result{pair, shares}, err
	})
	if err != nil {
		return types.Pair{}, math.ZeroInt(), err
	}
	return res.pair, res.shares, nil
}

func (k Keeper) createPair(
	ctx sdk.Context,
	payer, to sdk.AccAddress,
	tokenX, tokenY types.Token,
	amountX, amountY math.Int,
) (types.Pair, math.Int, error) {
	if err := types.ValidateTokenPair(tokenX, tokenY); err != nil {
		return types.Pair{}, math.ZeroInt(), err
	}
	if k.hasPair(ctx, tokenX, tokenY) {
		return types.Pair{}, math.ZeroInt(), types.ErrPairExists.Wrapf("%s/%s", tokenX, tokenY)
	}

	token0, token1 := types.SortTokens(tokenX, tokenY)
	id := k.PairCount(ctx) + 1
	pair := types.Pair{
		Id:          id,
		Address:     types.PairAddress(token0, token1).String(),
		Token0:      token0,
		Token1:      token1,
		Reserve0:    math.ZeroInt(),
		Reserve1:    math.ZeroInt(),
		TotalShares: math.ZeroInt(),
		Creator:     payer.String(),
	}
	if err := k.SetPair(ctx, pair); err != nil {
		return types.Pair{}, math.ZeroInt(), err
	}
	k.setPairCount(ctx, id)

	amount0, amount1 := pair.Ordered(tokenX, amountX, amountY)
	shares, err := k.createWithSeed(ctx, &pair, payer, to, amount0, amount1)
	if err != nil {
		return types.Pair{}, math.ZeroInt(), err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypePairCreated,
			sdk.NewAttribute(types.AttributeKeyPairID, strconv.FormatUint(id, 10)),
			sdk.NewAttribute(types.AttributeKeyPair, pair.Address),
			sdk.NewAttribute(types.AttributeKeyToken0, token0.String()),
			sdk.NewAttribute(types.AttributeKeyToken1, token1.String()),
			sdk.NewAttribute(types.AttributeKeyCreator, payer.String()),
		),
	)
	k.Logger(ctx).Info("pair created", "pair_id", id, "token0", token0.String(), "token1", token1.String())
	observe(ctx, func() { k.metrics.PairsTotal.Set(float64(id)) })
	return pair, shares, nil
}

// GetPairAddress returns the pair handle for tokenA/tokenB in either order,
// or nil when no pair exists.
func (k Keeper) GetPairAddress(ctx context.Context, tokenA, tokenB types.Token) sdk.AccAddress {
	if !k.hasPair(ctx, tokenA, tokenB) {
		return nil
	}
	return types.PairAddress(tokenA, tokenB)
}

// IsPair reports whether addr is a registered pair
func (k Keeper) IsPair(ctx context.Context, addr sdk.AccAddress) bool {
	return k.getStore(ctx).Has(types.PairByAddressKey(addr))
}

// PairCount returns the number of pairs created
func (k Keeper) PairCount(ctx context.Context) uint64 {
	bz := k.getStore(ctx).Get(types.PairCountKey)
	if bz == nil {
		return 0
	}
	return sdk.BigEndianToUint64(bz)
}

func (k Keeper) setPairCount(ctx context.Context, count uint64) {
	k.getStore(ctx).Set(types.PairCountKey, sdk.Uint64ToBigEndian(count))
}

func (k Keeper) hasPair(ctx context.Context, tokenA, tokenB types.Token) bool {
	return k.getStore(ctx).Has(types.PairByTokensKey(tokenA, tokenB))
}
