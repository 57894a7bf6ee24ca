package keeper

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/cfmm/x/cfmm/types"
)

// GetPair returns the pair with the given id
func (k Keeper) GetPair(ctx context.Context, pairID uint64) (types.Pair, error) {
	bz := k.getStore(ctx).Get(types.PairKey(pairID))
	if bz == nil {
		return types.Pair{}, types.ErrPairNotFound.Wrapf("pair %d", pairID)
	}
	var pair types.Pair
	if err := json.Unmarshal(bz, &pair); err != nil {
		return types.Pair{}, fmt.Errorf("GetPair: unmarshal: %w", err)
	}
	return pair, nil
}

// SetPair stores a pair and its lookup indexes
func (k Keeper) SetPair(ctx context.Context, pair types.Pair) error {
	bz, err := json.Marshal(pair)
	if err != nil {
		return fmt.Errorf("SetPair: marshal: %w", err)
	}
	store := k.getStore(ctx)
	id := sdk.Uint64ToBigEndian(pair.Id)
	store.Set(types.PairKey(pair.Id), bz)
	store.Set(types.PairByTokensKey(pair.Token0, pair.Token1), id)
	store.Set(types.PairByAddressKey(pair.GetAddress()), id)
	return nil
}

// GetPairByTokens returns the pair for an unordered token combination
func (k Keeper) GetPairByTokens(ctx context.Context, tokenA, tokenB types.Token) (types.Pair, error) {
	bz := k.getStore(ctx).Get(types.PairByTokensKey(tokenA, tokenB))
	if bz == nil {
		return types.Pair{}, types.ErrPairNotFound.Wrapf("%s/%s", tokenA, tokenB)
	}
	return k.GetPair(ctx, sdk.BigEndianToUint64(bz))
}

// GetPairByAddress returns the pair custodied at addr
func (k Keeper) GetPairByAddress(ctx context.Context, addr sdk.AccAddress) (types.Pair, error) {
	bz := k.getStore(ctx).Get(types.PairByAddressKey(addr))
	if bz == nil {
		return types.Pair{}, types.ErrPairNotFound.Wrapf("address %s", addr)
	}
	return k.GetPair(ctx, sdk.BigEndianToUint64(bz))
}

// IteratePairs walks every pair in id order
func (k Keeper) IteratePairs(ctx context.Context, cb func(pair types.Pair) (stop bool)) error {
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), types.PairKeyPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var pair types.Pair
		if err := json.Unmarshal(iterator.Value(), &pair); err != nil {
			return fmt.Errorf("IteratePairs: unmarshal: %w", err)
		}
		if cb(pair) {
			break
		}
	}
	return nil
}

// GetAllPairs returns every pair in id order
func (k Keeper) GetAllPairs(ctx context.Context) ([]types.Pair, error) {
	var pairs []types.Pair
	err := k.IteratePairs(ctx, func(pair types.Pair) bool {
		pairs = append(pairs, pair)
		return false
	})
	return pairs, err
}

// GetShares returns holder's share balance in a pair
func (k Keeper) GetShares(ctx context.Context, pairID uint64, holder sdk.AccAddress) math.Int {
	bz := k.getStore(ctx).Get(types.SharesKey(pairID, holder))
	if bz == nil {
		return math.ZeroInt()
	}
	shares := math.ZeroInt()
	if err := shares.Unmarshal(bz); err != nil {
		k.Logger(ctx).Error("corrupt share balance", "pair_id", pairID, "holder", holder.String(), "error", err)
		return math.ZeroInt()
	}
	return shares
}

// SetShares sets holder's share balance; zero removes the entry
func (k Keeper) SetShares(ctx context.Context, pairID uint64, holder sdk.AccAddress, shares math.Int) error {
	store := k.getStore(ctx)
	if shares.IsZero() {
		store.Delete(types.SharesKey(pairID, holder))
		return nil
	}
	bz, err := shares.Marshal()
	if err != nil {
		return err
	}
	store.Set(types.SharesKey(pairID, holder), bz)
	return nil
}

// IterateShares walks every share balance of a pair
func (k Keeper) IterateShares(ctx context.Context, pairID uint64, cb func(holder sdk.AccAddress, shares math.Int) (stop bool)) error {
	prefix := types.SharesPrefix(pairID)
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), prefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		shares := math.ZeroInt()
		if err := shares.Unmarshal(iterator.Value()); err != nil {
			return fmt.Errorf("IterateShares: unmarshal: %w", err)
		}
		holder := sdk.AccAddress(iterator.Key()[len(prefix):])
		if cb(holder, shares) {
			break
		}
	}
	return nil
}

// Deposit adds liquidity to an existing, seeded pair. The deposit is trimmed
// to the current reserve ratio; only the matched amounts are pulled from
// provider, so over-supply of one side never leaves the provider's account.
func (k Keeper) Deposit(
	ctx context.Context,
	provider sdk.AccAddress,
	tokenA, tokenB types.Token,
	amountADesired, amountBDesired math.Int,
	to sdk.AccAddress,
) (amountA, amountB, shares math.Int, err error) {
	type result struct{ a, b, shares math.Int }
	res, err := atomically(ctx, func(ctx sdk.Context) (result, error) {
		pair, err := k.GetPairByTokens(ctx, tokenA, tokenB)
		if err != nil {
			return result{}, err
		}
		a, b, err := optimalAmounts(pair, tokenA, amountADesired, amountBDesired, math.ZeroInt(), math.ZeroInt())
		if err != nil {
			return result{}, err
		}
		amount0, amount1 := pair.Ordered(tokenA, a, b)
		minted, err := k.deposit(ctx, &pair, provider, to, amount0, amount1)
		if err != nil {
			return result{}, err
		}
		return result{a, b, minted}, nil
	})
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), math.ZeroInt(), err
	}
	return res.a, res.b, res.shares, nil
}

// Withdraw burns shares of holder in the pair of tokenA/tokenB and sends the
// proportional reserves to `to`. Amounts are returned in (tokenA, tokenB) order.
func (k Keeper) Withdraw(
	ctx context.Context,
	holder sdk.AccAddress,
	tokenA, tokenB types.Token,
	shares math.Int,
	to sdk.AccAddress,
) (amountA, amountB math.Int, err error) {
	amounts, err := atomically(ctx, func(ctx sdk.Context) ([2]math.Int, error) {
		pair, err := k.GetPairByTokens(ctx, tokenA, tokenB)
		if err != nil {
			return [2]math.Int{}, err
		}
		amount0, amount1, err := k.withdraw(ctx, &pair, holder, shares, to)
		if err != nil {
			return [2]math.Int{}, err
		}
		a, b := pair.Ordered(tokenA, amount0, amount1)
		return [2]math.Int{a, b}, nil
	})
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	return amounts[0], amounts[1], nil
}

// Swap exchanges exactly amountIn of tokenIn for tokenOut through their pair
// and fails if the output is below minAmountOut.
func (k Keeper) Swap(
	ctx context.Context,
	sender sdk.AccAddress,
	tokenIn, tokenOut types.Token,
	amountIn, minAmountOut math.Int,
	to sdk.AccAddress,
) (math.Int, error) {
	out, err := atomically(ctx, func(ctx sdk.Context) (math.Int, error) {
		if err := types.ValidateTokenPair(tokenIn, tokenOut); err != nil {
			return math.ZeroInt(), err
		}
		pair, err := k.GetPairByTokens(ctx, tokenIn, tokenOut)
		if err != nil {
			return math.ZeroInt(), err
		}
		if err := types.ValidatePositiveAmount("amount in", amountIn); err != nil {
			return math.ZeroInt(), err
		}
		if err := k.pull(ctx, tokenIn, sender, pair.GetAddress(), amountIn); err != nil {
			return math.ZeroInt(), err
		}
		out, err := k.swapHop(ctx, pair.Id, tokenIn, amountIn, sender, to)
		if err != nil {
			return math.ZeroInt(), err
		}
		if !minAmountOut.IsNil() && out.LT(minAmountOut) {
			return math.ZeroInt(), types.ErrInsufficientOutputAmount.Wrapf("got %s, want at least %s", out, minAmountOut)
		}
		return out, nil
	})
	k.recordSwap(ctx, err)
	if err != nil {
		return math.ZeroInt(), err
	}
	return out, nil
}

// QuoteSwap prices an exact-input swap against the live reserves without
// mutating state.
func (k Keeper) QuoteSwap(ctx context.Context, tokenIn, tokenOut types.Token, amountIn math.Int) (math.Int, error) {
	pair, err := k.GetPairByTokens(ctx, tokenIn, tokenOut)
	if err != nil {
		return math.ZeroInt(), err
	}
	params, err := k.GetParams(ctx)
	if err != nil {
		return math.ZeroInt(), err
	}
	return quotePair(pair, tokenIn, amountIn, params.SwapFeeBps)
}

func quotePair(pair types.Pair, tokenIn types.Token, amountIn math.Int, feeBps uint32) (math.Int, error) {
	reserveIn, reserveOut, _, err := pair.ReservesFor(tokenIn)
	if err != nil {
		return math.ZeroInt(), err
	}
	out, _, err := GetAmountOut(amountIn, reserveIn, reserveOut, feeBps)
	return out, err
}

// createWithSeed seeds an empty pair. floor(sqrt(amount0*amount1)) shares are
// issued; MinimumLiquidity of them are locked at the pair's own address and
// the rest go to `to`.
func (k Keeper) createWithSeed(ctx sdk.Context, pair *types.Pair, payer, to sdk.AccAddress, amount0, amount1 math.Int) (math.Int, error) {
	if amount0.IsNil() || amount1.IsNil() || !amount0.IsPositive() || !amount1.IsPositive() {
		return math.ZeroInt(), types.ErrInvalidSeed.Wrap("seed amounts must both be non-zero")
	}
	if err := types.ValidatePositiveAmount("seed amount0", amount0); err != nil {
		return math.ZeroInt(), err
	}
	if err := types.ValidatePositiveAmount("seed amount1", amount1); err != nil {
		return math.ZeroInt(), err
	}
	if !pair.TotalShares.IsZero() {
		return math.ZeroInt(), types.ErrInvalidState.Wrapf("pair %d is already seeded", pair.Id)
	}

	params, err := k.GetParams(ctx)
	if err != nil {
		return math.ZeroInt(), err
	}
	total := InitialShares(amount0, amount1)
	if total.LTE(params.MinimumLiquidity) {
		return math.ZeroInt(), types.ErrInvalidSeed.Wrapf(
			"seed yields %s shares, must exceed minimum liquidity %s", total, params.MinimumLiquidity)
	}

	pairAddr := pair.GetAddress()
	if err := k.pull(ctx, pair.Token0, payer, pairAddr, amount0); err != nil {
		return math.ZeroInt(), err
	}
	if err := k.pull(ctx, pair.Token1, payer, pairAddr, amount1); err != nil {
		return math.ZeroInt(), err
	}

	minted := total.Sub(params.MinimumLiquidity)
	if params.MinimumLiquidity.IsPositive() {
		if err := k.SetShares(ctx, pair.Id, pairAddr, params.MinimumLiquidity); err != nil {
			return math.ZeroInt(), err
		}
	}
	if err := k.SetShares(ctx, pair.Id, to, k.GetShares(ctx, pair.Id, to).Add(minted)); err != nil {
		return math.ZeroInt(), err
	}

	pair.Reserve0 = amount0
	pair.Reserve1 = amount1
	pair.TotalShares = total
	if err := k.SetPair(ctx, *pair); err != nil {
		return math.ZeroInt(), err
	}

	k.emitMint(ctx, *pair, payer, to, amount0, amount1, minted)
	return minted, nil
}

// deposit pulls amount0/amount1 from payer into a seeded pair and mints
// min(amount0*S/r0, amount1*S/r1) shares to `to`.
func (k Keeper) deposit(ctx sdk.Context, pair *types.Pair, payer, to sdk.AccAddress, amount0, amount1 math.Int) (math.Int, error) {
	if !pair.Reserve0.IsPositive() || !pair.Reserve1.IsPositive() || !pair.TotalShares.IsPositive() {
		return math.ZeroInt(), types.ErrInsufficientLiquidity.Wrapf("pair %d has no reserves", pair.Id)
	}
	if err := types.ValidatePositiveAmount("amount0", amount0); err != nil {
		return math.ZeroInt(), err
	}
	if err := types.ValidatePositiveAmount("amount1", amount1); err != nil {
		return math.ZeroInt(), err
	}

	minted := SharesForDeposit(amount0, amount1, pair.Reserve0, pair.Reserve1, pair.TotalShares)
	if !minted.IsPositive() {
		return math.ZeroInt(), types.ErrInsufficientLiquidity.Wrap("deposit too small to mint shares")
	}

	pairAddr := pair.GetAddress()
	if err := k.pull(ctx, pair.Token0, payer, pairAddr, amount0); err != nil {
		return math.ZeroInt(), err
	}
	if err := k.pull(ctx, pair.Token1, payer, pairAddr, amount1); err != nil {
		return math.ZeroInt(), err
	}

	pair.Reserve0 = pair.Reserve0.Add(amount0)
	pair.Reserve1 = pair.Reserve1.Add(amount1)
	if pair.Reserve0.GT(types.MaxReserve) || pair.Reserve1.GT(types.MaxReserve) {
		return math.ZeroInt(), types.ErrInvalidAmount.Wrapf("pair %d reserves would exceed maximum", pair.Id)
	}
	pair.TotalShares = pair.TotalShares.Add(minted)
	if err := k.SetShares(ctx, pair.Id, to, k.GetShares(ctx, pair.Id, to).Add(minted)); err != nil {
		return math.ZeroInt(), err
	}
	if err := k.SetPair(ctx, *pair); err != nil {
		return math.ZeroInt(), err
	}

	k.emitMint(ctx, *pair, payer, to, amount0, amount1, minted)
	return minted, nil
}

// withdraw burns holder's shares and pays out reserve*shares/totalShares of
// each token to `to`.
func (k Keeper) withdraw(ctx sdk.Context, pair *types.Pair, holder sdk.AccAddress, shares math.Int, to sdk.AccAddress) (math.Int, math.Int, error) {
	if shares.IsNil() || !shares.IsPositive() {
		return math.ZeroInt(), math.ZeroInt(), types.ErrInvalidAmount.Wrap("shares must be positive")
	}
	balance := k.GetShares(ctx, pair.Id, holder)
	if balance.LT(shares) {
		return math.ZeroInt(), math.ZeroInt(), types.ErrInsufficientShares.Wrapf("holder has %s, requested %s", balance, shares)
	}

	amount0 := shares.Mul(pair.Reserve0).Quo(pair.TotalShares)
	amount1 := shares.Mul(pair.Reserve1).Quo(pair.TotalShares)
	if amount0.IsZero() || amount1.IsZero() {
		return math.ZeroInt(), math.ZeroInt(), types.ErrInsufficientLiquidity.Wrap("withdrawal too small")
	}

	if err := k.SetShares(ctx, pair.Id, holder, balance.Sub(shares)); err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	pair.TotalShares = pair.TotalShares.Sub(shares)
	pair.Reserve0 = pair.Reserve0.Sub(amount0)
	pair.Reserve1 = pair.Reserve1.Sub(amount1)
	if err := k.SetPair(ctx, *pair); err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}

	pairAddr := pair.GetAddress()
	if err := k.bankKeeper.Transfer(ctx, string(pair.Token0), pairAddr, to, amount0); err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	if err := k.bankKeeper.Transfer(ctx, string(pair.Token1), pairAddr, to, amount1); err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}

	pairIDStr := strconv.FormatUint(pair.Id, 10)
	ctx.EventManager().EmitEvents(sdk.Events{
		sdk.NewEvent(
			types.EventTypeBurn,
			sdk.NewAttribute(types.AttributeKeyPairID, pairIDStr),
			sdk.NewAttribute(types.AttributeKeySender, holder.String()),
			sdk.NewAttribute(types.AttributeKeyRecipient, to.String()),
			sdk.NewAttribute(types.AttributeKeyAmount0, amount0.String()),
			sdk.NewAttribute(types.AttributeKeyAmount1, amount1.String()),
			sdk.NewAttribute(types.AttributeKeyShares, shares.String()),
			sdk.NewAttribute(types.AttributeKeyTotalShares, pair.TotalShares.String()),
		),
		syncEvent(*pair),
	})
	observe(ctx, func() { k.metrics.LiquidityBurned.WithLabelValues(pairIDStr).Add(amountFloat(shares)) })
	return amount0, amount1, nil
}

// swapHop executes one exact-input hop. amountIn of tokenIn must already sit
// at the pair's address on top of its reserve. The protocol part of the fee
// moves to the fee vault; the LP part stays in the reserve.
func (k Keeper) swapHop(ctx sdk.Context, pairID uint64, tokenIn types.Token, amountIn math.Int, sender, to sdk.AccAddress) (math.Int, error) {
	pair, err := k.GetPair(ctx, pairID)
	if err != nil {
		return math.ZeroInt(), err
	}
	params, err := k.GetParams(ctx)
	if err != nil {
		return math.ZeroInt(), err
	}
	tokenOut, err := pair.Other(tokenIn)
	if err != nil {
		return math.ZeroInt(), err
	}
	reserveIn, reserveOut, zeroForOne, err := pair.ReservesFor(tokenIn)
	if err != nil {
		return math.ZeroInt(), err
	}

	pairAddr := pair.GetAddress()
	received := k.bankKeeper.BalanceOf(ctx, string(tokenIn), pairAddr).Sub(reserveIn)
	if received.LT(amountIn) {
		return math.ZeroInt(), types.ErrInsufficientFunds.Wrapf("pair %d received %s%s, expected %s", pair.Id, received, tokenIn, amountIn)
	}

	amountOut, grossFee, err := GetAmountOut(amountIn, reserveIn, reserveOut, params.SwapFeeBps)
	if err != nil {
		return math.ZeroInt(), err
	}
	protocolFee, lpFee := math.ZeroInt(), grossFee
	recipient := params.FeeRecipientAddress()
	if recipient != nil {
		protocolFee, lpFee = SplitFee(grossFee, params.ProtocolFeeShareBps)
	}

	newReserveIn := reserveIn.Add(amountIn).Sub(protocolFee)
	newReserveOut := reserveOut.Sub(amountOut)
	if newReserveIn.GT(types.MaxReserve) {
		return math.ZeroInt(), types.ErrInvalidAmount.Wrapf("pair %d reserve would exceed maximum", pair.Id)
	}
	oldK := reserveIn.Mul(reserveOut)
	newK := newReserveIn.Mul(newReserveOut)
	if newK.LT(oldK) {
		return math.ZeroInt(), types.ErrInvariantViolation.Wrapf("pair %d: k decreased from %s to %s", pair.Id, oldK, newK)
	}

	if protocolFee.IsPositive() {
		if err := k.bankKeeper.Transfer(ctx, string(tokenIn), pairAddr, k.feeVaultAddress, protocolFee); err != nil {
			return math.ZeroInt(), err
		}
		if err := k.accrueProtocolFee(ctx, recipient, tokenIn, protocolFee); err != nil {
			return math.ZeroInt(), err
		}
	}
	if zeroForOne {
		pair.Reserve0, pair.Reserve1 = newReserveIn, newReserveOut
	} else {
		pair.Reserve0, pair.Reserve1 = newReserveOut, newReserveIn
	}
	if err := k.SetPair(ctx, pair); err != nil {
		return math.ZeroInt(), err
	}
	if err := k.bankKeeper.Transfer(ctx, string(tokenOut), pairAddr, to, amountOut); err != nil {
		return math.ZeroInt(), err
	}

	ctx.EventManager().EmitEvents(sdk.Events{
		sdk.NewEvent(
			types.EventTypeSwap,
			sdk.NewAttribute(types.AttributeKeyPairID, strconv.FormatUint(pair.Id, 10)),
			sdk.NewAttribute(types.AttributeKeyPayer, sender.String()),
			sdk.NewAttribute(types.AttributeKeyRecipient, to.String()),
			sdk.NewAttribute(types.AttributeKeyTokenIn, tokenIn.String()),
			sdk.NewAttribute(types.AttributeKeyTokenOut, tokenOut.String()),
			sdk.NewAttribute(types.AttributeKeyAmountIn, amountIn.String()),
			sdk.NewAttribute(types.AttributeKeyAmountOut, amountOut.String()),
			sdk.NewAttribute(types.AttributeKeyLPFee, lpFee.String()),
			sdk.NewAttribute(types.AttributeKeyProtocolFee, protocolFee.String()),
		),
		syncEvent(pair),
	})

	observe(ctx, func() { k.metrics.SwapVolume.WithLabelValues(tokenIn.String()).Add(amountFloat(amountIn)) })
	return amountOut, nil
}

// pull moves amount of token from owner to dest using the module's allowance.
// The module account itself never pays: it spends its own balance without an
// allowance, and that balance is the flash loan reserve.
func (k Keeper) pull(ctx sdk.Context, token types.Token, owner, dest sdk.AccAddress, amount math.Int) error {
	if owner.Equals(k.moduleAddress) {
		return types.ErrUnauthorized.Wrapf("module account %s cannot pay into the pool", owner)
	}
	if err := k.bankKeeper.TransferFrom(ctx, string(token), k.moduleAddress, owner, dest, amount); err != nil {
		return types.ErrInsufficientFunds.Wrapf("pull %s%s from %s: %v", amount, token, owner, err)
	}
	return nil
}

func (k Keeper) emitMint(ctx sdk.Context, pair types.Pair, payer, to sdk.AccAddress, amount0, amount1, minted math.Int) {
	pairIDStr := strconv.FormatUint(pair.Id, 10)
	ctx.EventManager().EmitEvents(sdk.Events{
		sdk.NewEvent(
			types.EventTypeMint,
			sdk.NewAttribute(types.AttributeKeyPairID, pairIDStr),
			sdk.NewAttribute(types.AttributeKeyPayer, payer.String()),
			sdk.NewAttribute(types.AttributeKeyRecipient, to.String()),
			sdk.NewAttribute(types.AttributeKeyAmount0, amount0.String()),
			sdk.NewAttribute(types.AttributeKeyAmount1, amount1.String()),
			sdk.NewAttribute(types.AttributeKeyShares, minted.String()),
			sdk.NewAttribute(types.AttributeKeyTotalShares, pair.TotalShares.String()),
		),
		syncEvent(pair),
	})
	observe(ctx, func() { k.metrics.LiquidityMinted.WithLabelValues(pairIDStr).Add(amountFloat(minted)) })
}

func syncEvent(pair types.Pair) sdk.Event {
	return sdk.NewEvent(
		types.EventTypeSync,
		sdk.NewAttribute(types.AttributeKeyPairID, strconv.FormatUint(pair.Id, 10)),
		sdk.NewAttribute(types.AttributeKeyReserve0, pair.Reserve0.String()),
		sdk.NewAttribute(types.AttributeKeyReserve1, pair.Reserve1.String()),
	)
}

// optimalAmounts matches the desired amounts to the pair's reserve ratio,
// returning amounts in (tokenA, tokenB) order.
func optimalAmounts(pair types.Pair, tokenA types.Token, amountADesired, amountBDesired, amountAMin, amountBMin math.Int) (math.Int, math.Int, error) {
	if err := types.ValidatePositiveAmount("amount A desired", amountADesired); err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	if err := types.ValidatePositiveAmount("amount B desired", amountBDesired); err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	reserveA, reserveB, _, err := pair.ReservesFor(tokenA)
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	if !reserveA.IsPositive() || !reserveB.IsPositive() {
		return math.ZeroInt(), math.ZeroInt(), types.ErrInsufficientLiquidity.Wrapf("pair %d has no reserves", pair.Id)
	}

	amountBOptimal, err := Quote(amountADesired, reserveA, reserveB)
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	if amountBOptimal.LTE(amountBDesired) {
		if amountBOptimal.LT(amountBMin) {
			return math.ZeroInt(), math.ZeroInt(), types.ErrInsufficientBAmount.Wrapf("matched %s below minimum %s", amountBOptimal, amountBMin)
		}
		return amountADesired, amountBOptimal, nil
	}

	amountAOptimal, err := Quote(amountBDesired, reserveB, reserveA)
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	if amountAOptimal.LT(amountAMin) {
		return math.ZeroInt(), math.ZeroInt(), types.ErrInsufficientAAmount.Wrapf("matched %s below minimum %s", amountAOptimal, amountAMin)
	}
	return amountAOptimal, amountBDesired, nil
}
