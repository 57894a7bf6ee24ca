package keeper

import (
	"context"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/cfmm/x/cfmm/types"
)

// ConfidentialSwapExactTokensForTokens reveals a sealed input amount and
// then behaves exactly like SwapExactTokensForTokens.
func (k Keeper) ConfidentialSwapExactTokensForTokens(
	ctx context.Context,
	sender sdk.AccAddress,
	sealedIn types.SealedAmount,
	amountOutMin math.Int,
	path []types.Token,
	to sdk.AccAddress,
	deadline time.Time,
) ([]math.Int, error) {
	amountIn, err := k.reveal(ctx, sender, sealedIn)
	if err != nil {
		return nil, err
	}
	return k.SwapExactTokensForTokens(ctx, sender, amountIn, amountOutMin, path, to, deadline)
}

// ConfidentialAddLiquidity reveals both sealed desired amounts and then
// behaves exactly like AddLiquidity.
func (k Keeper) ConfidentialAddLiquidity(
	ctx context.Context,
	sender sdk.AccAddress,
	tokenA, tokenB types.Token,
	sealedA, sealedB types.SealedAmount,
	amountAMin, amountBMin math.Int,
	to sdk.AccAddress,
	deadline time.Time,
) (amountA, amountB, shares math.Int, err error) {
	desiredA, err := k.reveal(ctx, sender, sealedA)
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), math.ZeroInt(), err
	}
	desiredB, err := k.reveal(ctx, sender, sealedB)
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), math.ZeroInt(), err
	}
	return k.AddLiquidity(ctx, sender, tokenA, tokenB, desiredA, desiredB, amountAMin, amountBMin, to, deadline)
}

func (k Keeper) reveal(ctx context.Context, owner sdk.AccAddress, sealed types.SealedAmount) (math.Int, error) {
	if k.decryptor == nil {
		return math.ZeroInt(), types.ErrDecryptionFailed.Wrap("no decryptor configured")
	}
	if len(sealed.Ciphertext) == 0 {
		return math.ZeroInt(), types.ErrDecryptionFailed.Wrap("empty ciphertext")
	}
	amount, err := k.decryptor.Decrypt(ctx, owner, sealed)
	if err != nil {
		return math.ZeroInt(), types.ErrDecryptionFailed.Wrap(err.Error())
	}
	if err := types.ValidatePositiveAmount("revealed amount", amount); err != nil {
		return math.ZeroInt(), err
	}
	return amount, nil
}
