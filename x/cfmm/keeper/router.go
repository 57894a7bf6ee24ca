package keeper

import (
	"context"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/cfmm/x/cfmm/types"
)

// GetAmountsOut chains amountIn through every hop of path against the live
// reserves. amounts[0] is amountIn and amounts[i] is the output of hop i.
func (k Keeper) GetAmountsOut(ctx context.Context, amountIn math.Int, path []types.Token) ([]math.Int, error) {
	params, err := k.GetParams(ctx)
	if err != nil {
		return nil, err
	}
	pairs, err := k.pairsForPath(ctx, path, params.MaxHops)
	if err != nil {
		return nil, err
	}
	if err := types.ValidatePositiveAmount("amount in", amountIn); err != nil {
		return nil, err
	}

	amounts := make([]math.Int, len(path))
	amounts[0] = amountIn
	for i, pair := range pairs {
		out, err := quotePair(pair, path[i], amounts[i], params.SwapFeeBps)
		if err != nil {
			return nil, err
		}
		amounts[i+1] = out
	}
	return amounts, nil
}

// GetAmountsIn walks path backwards and returns the inputs needed for the
// last hop to produce amountOut. amounts[len(path)-1] is amountOut.
func (k Keeper) GetAmountsIn(ctx context.Context, amountOut math.Int, path []types.Token) ([]math.Int, error) {
	params, err := k.GetParams(ctx)
	if err != nil {
		return nil, err
	}
	pairs, err := k.pairsForPath(ctx, path, params.MaxHops)
	if err != nil {
		return nil, err
	}
	if err := types.ValidatePositiveAmount("amount out", amountOut); err != nil {
		return nil, err
	}

	amounts := make([]math.Int, len(path))
	amounts[len(path)-1] = amountOut
	for i := len(pairs) - 1; i >= 0; i-- {
		reserveIn, reserveOut, _, err := pairs[i].ReservesFor(path[i])
		if err != nil {
			return nil, err
		}
		in, err := GetAmountIn(amounts[i+1], reserveIn, reserveOut, params.SwapFeeBps)
		if err != nil {
			return nil, err
		}
		amounts[i] = in
	}
	return amounts, nil
}

// SwapExactTokensForTokens swaps exactly amountIn of path[0] along path and
// sends the final output to `to`. Every hop re-reads live reserves; the call
// fails unless the realized final output is at least amountOutMin.
func (k Keeper) SwapExactTokensForTokens(
	ctx context.Context,
	sender sdk.AccAddress,
	amountIn, amountOutMin math.Int,
	path []types.Token,
	to sdk.AccAddress,
	deadline time.Time,
) ([]math.Int, error) {
	amounts, err := atomically(ctx, func(ctx sdk.Context) ([]math.Int, error) {
		if err := checkDeadline(ctx, deadline); err != nil {
			return nil, err
		}
		realized, err := k.executePath(ctx, sender, amountIn, path, to)
		if err != nil {
			return nil, err
		}
		if out := realized[len(realized)-1]; out.LT(amountOutMin) {
			return nil, types.ErrInsufficientOutputAmount.Wrapf("realized %s, want at least %s", out, amountOutMin)
		}
		return realized, nil
	})
	k.recordSwap(ctx, err)
	return amounts, err
}

// SwapTokensForExactTokens buys at least amountOut of the last token in path,
// spending no more than amountInMax of path[0].
func (k Keeper) SwapTokensForExactTokens(
	ctx context.Context,
	sender sdk.AccAddress,
	amountOut, amountInMax math.Int,
	path []types.Token,
	to sdk.AccAddress,
	deadline time.Time,
) ([]math.Int, error) {
	amounts, err := atomically(ctx, func(ctx sdk.Context) ([]math.Int, error) {
		if err := checkDeadline(ctx, deadline); err != nil {
			return nil, err
		}
		amountIn, err := k.requiredInput(ctx, amountOut, amountInMax, path)
		if err != nil {
			return nil, err
		}

		realized, err := k.executePath(ctx, sender, amountIn, path, to)
		if err != nil {
			return nil, err
		}
		if out := realized[len(realized)-1]; out.LT(amountOut) {
			return nil, types.ErrInsufficientOutputAmount.Wrapf("realized %s, want %s", out, amountOut)
		}
		return realized, nil
	})
	k.recordSwap(ctx, err)
	return amounts, err
}

// executePath pulls amountIn from sender into the first pair and swaps hop
// by hop. Intermediate outputs go straight to the next pair.
func (k Keeper) executePath(ctx sdk.Context, sender sdk.AccAddress, amountIn math.Int, path []types.Token, to sdk.AccAddress) ([]math.Int, error) {
	params, err := k.GetParams(ctx)
	if err != nil {
		return nil, err
	}
	pairs, err := k.pairsForPath(ctx, path, params.MaxHops)
	if err != nil {
		return nil, err
	}
	if err := types.ValidatePositiveAmount("amount in", amountIn); err != nil {
		return nil, err
	}
	if err := k.pull(ctx, path[0], sender, pairs[0].GetAddress(), amountIn); err != nil {
		return nil, err
	}

	amounts := make([]math.Int, len(path))
	amounts[0] = amountIn
	for i, pair := range pairs {
		dest := to
		if i < len(pairs)-1 {
			dest = pairs[i+1].GetAddress()
		}
		out, err := k.swapHop(ctx, pair.Id, path[i], amounts[i], sender, dest)
		if err != nil {
			return nil, err
		}
		amounts[i+1] = out
	}
	return amounts, nil
}

// AddLiquidity deposits into the tokenA/tokenB pair, creating and seeding it
// with the desired amounts if it does not exist yet. Amounts are returned in
// (tokenA, tokenB) order.
func (k Keeper) AddLiquidity(
	ctx context.Context,
	sender sdk.AccAddress,
	tokenA, tokenB types.Token,
	amountADesired, amountBDesired, amountAMin, amountBMin math.Int,
	to sdk.AccAddress,
	deadline time.Time,
) (amountA, amountB, shares math.Int, err error) {
	type result struct{ a, b, shares math.Int }
	res, err := atomically(ctx, func(ctx sdk.Context) (result, error) {
		if err := checkDeadline(ctx, deadline); err != nil {
			return result{}, err
		}
		if err := types.ValidateTokenPair(tokenA, tokenB); err != nil {
			return result{}, err
		}

		if !k.hasPair(ctx, tokenA, tokenB) {
			_, minted, err := k.createPair(ctx, sender, to, tokenA, tokenB, amountADesired, amountBDesired)
			if err != nil {
				return result{}, err
			}
			return result{amountADesired, amountBDesired, minted}, nil
		}

		pair, err := k.GetPairByTokens(ctx, tokenA, tokenB)
		if err != nil {
			return result{}, err
		}
		if pair.TotalShares.IsZero() {
			amount0, amount1 := pair.Ordered(tokenA, amountADesired, amountBDesired)
			minted, err := k.createWithSeed(ctx, &pair, sender, to, amount0, amount1)
			if err != nil {
				return result{}, err
			}
			return result{amountADesired, amountBDesired, minted}, nil
		}

		a, b, err := optimalAmounts(pair, tokenA, amountADesired, amountBDesired, amountAMin, amountBMin)
		if err != nil {
			return result{}, err
		}
		amount0, amount1 := pair.Ordered(tokenA, a, b)
		minted, err := k.deposit(ctx, &pair, sender, to, amount0, amount1)
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

// RemoveLiquidity burns shares of sender and sends the proceeds to `to`,
// failing if either side falls below its minimum.
func (k Keeper) RemoveLiquidity(
	ctx context.Context,
	sender sdk.AccAddress,
	tokenA, tokenB types.Token,
	shares, amountAMin, amountBMin math.Int,
	to sdk.AccAddress,
	deadline time.Time,
) (amountA, amountB math.Int, err error) {
	amounts, err := atomically(ctx, func(ctx sdk.Context) ([2]math.Int, error) {
		if err := checkDeadline(ctx, deadline); err != nil {
			return [2]math.Int{}, err
		}
		pair, err := k.GetPairByTokens(ctx, tokenA, tokenB)
		if err != nil {
			return [2]math.Int{}, err
		}
		amount0, amount1, err := k.withdraw(ctx, &pair, sender, shares, to)
		if err != nil {
			return [2]math.Int{}, err
		}
		a, b := pair.Ordered(tokenA, amount0, amount1)
		if a.LT(amountAMin) {
			return [2]math.Int{}, types.ErrInsufficientAAmount.Wrapf("got %s, want at least %s", a, amountAMin)
		}
		if b.LT(amountBMin) {
			return [2]math.Int{}, types.ErrInsufficientBAmount.Wrapf("got %s, want at least %s", b, amountBMin)
		}
		return [2]math.Int{a, b}, nil
	})
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	return amounts[0], amounts[1], nil
}

// requiredInput returns the smallest input of path[0] that buys amountOut,
// failing if it exceeds amountInMax. When a pair appears more than once in
// path, earlier hops move its reserves, so the input is searched against a
// simulation of the whole path instead of per-hop snapshot quotes.
func (k Keeper) requiredInput(ctx context.Context, amountOut, amountInMax math.Int, path []types.Token) (math.Int, error) {
	params, err := k.GetParams(ctx)
	if err != nil {
		return math.ZeroInt(), err
	}
	pairs, err := k.pairsForPath(ctx, path, params.MaxHops)
	if err != nil {
		return math.ZeroInt(), err
	}
	if !repeatsPair(pairs) {
		required, err := k.GetAmountsIn(ctx, amountOut, path)
		if err != nil {
			return math.ZeroInt(), err
		}
		if required[0].GT(amountInMax) {
			return math.ZeroInt(), types.ErrExcessiveInputAmount.Wrapf("requires %s, allowed at most %s", required[0], amountInMax)
		}
		return required[0], nil
	}

	if err := types.ValidatePositiveAmount("amount out", amountOut); err != nil {
		return math.ZeroInt(), err
	}
	if amountInMax.IsNil() || !amountInMax.IsPositive() {
		return math.ZeroInt(), types.ErrExcessiveInputAmount.Wrapf("allowed input %s buys nothing", amountInMax)
	}
	buys := func(amountIn math.Int) bool {
		amounts, err := simulatePath(pairs, path, amountIn, params)
		return err == nil && amounts[len(amounts)-1].GTE(amountOut)
	}
	hi := math.MinInt(amountInMax, types.MaxReserve)
	if !buys(hi) {
		return math.ZeroInt(), types.ErrExcessiveInputAmount.Wrapf("%s of %s does not buy %s", hi, path[0], amountOut)
	}
	lo := math.OneInt()
	for lo.LT(hi) {
		mid := lo.Add(hi).QuoRaw(2)
		if buys(mid) {
			hi = mid
		} else {
			lo = mid.AddRaw(1)
		}
	}
	return lo, nil
}

// simulatePath prices amountIn through pairs the way executePath settles it,
// carrying each hop's reserve change into later hops through the same pair.
func simulatePath(pairs []types.Pair, path []types.Token, amountIn math.Int, params types.Params) ([]math.Int, error) {
	live := make(map[uint64]types.Pair, len(pairs))
	for _, pair := range pairs {
		live[pair.Id] = pair
	}
	splitsFee := params.FeeRecipientAddress() != nil

	amounts := make([]math.Int, len(path))
	amounts[0] = amountIn
	for i, hop := range pairs {
		pair := live[hop.Id]
		reserveIn, reserveOut, zeroForOne, err := pair.ReservesFor(path[i])
		if err != nil {
			return nil, err
		}
		out, grossFee, err := GetAmountOut(amounts[i], reserveIn, reserveOut, params.SwapFeeBps)
		if err != nil {
			return nil, err
		}
		protocolFee := math.ZeroInt()
		if splitsFee {
			protocolFee, _ = SplitFee(grossFee, params.ProtocolFeeShareBps)
		}
		newReserveIn, newReserveOut := reserveIn.Add(amounts[i]).Sub(protocolFee), reserveOut.Sub(out)
		if zeroForOne {
			pair.Reserve0, pair.Reserve1 = newReserveIn, newReserveOut
		} else {
			pair.Reserve0, pair.Reserve1 = newReserveOut, newReserveIn
		}
		live[pair.Id] = pair
		amounts[i+1] = out
	}
	return amounts, nil
}

func repeatsPair(pairs []types.Pair) bool {
	seen := make(map[uint64]struct{}, len(pairs))
	for _, pair := range pairs {
		if _, ok := seen[pair.Id]; ok {
			return true
		}
		seen[pair.Id] = struct{}{}
	}
	return false
}

// pairsForPath validates path and resolves the pair of every hop.
func (k Keeper) pairsForPath(ctx context.Context, path []types.Token, maxHops uint32) ([]types.Pair, error) {
	if len(path) < 2 {
		return nil, types.ErrInvalidPath.Wrapf("path needs at least 2 tokens, got %d", len(path))
	}
	if hops := len(path) - 1; hops > int(maxHops) {
		return nil, types.ErrInvalidPath.Wrapf("path has %d hops, maximum is %d", hops, maxHops)
	}
	pairs := make([]types.Pair, 0, len(path)-1)
	for i := 0; i < len(path)-1; i++ {
		if err := types.ValidateTokenPair(path[i], path[i+1]); err != nil {
			return nil, types.ErrInvalidPath.Wrapf("hop %d: %v", i, err)
		}
		pair, err := k.GetPairByTokens(ctx, path[i], path[i+1])
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, pair)
	}
	return pairs, nil
}

// recordSwap counts a failure right away and a success once it is committed.
func (k Keeper) recordSwap(ctx context.Context, err error) {
	if err != nil {
		k.metrics.SwapsTotal.WithLabelValues("failed").Inc()
		return
	}
	observe(ctx, func() { k.metrics.SwapsTotal.WithLabelValues("success").Inc() })
}

// checkDeadline fails once the block time is past deadline.
func checkDeadline(ctx sdk.Context, deadline time.Time) error {
	if now := ctx.BlockTime(); now.After(deadline) {
		return types.ErrExpired.Wrapf("block time %s is past deadline %s", now.UTC().Format(time.RFC3339), deadline.UTC().Format(time.RFC3339))
	}
	return nil
}
