package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/cfmm/x/cfmm/types"
)

// GetProtocolFees returns the unwithdrawn protocol fees of recipient in token
func (k Keeper) GetProtocolFees(ctx context.Context, recipient sdk.AccAddress, token types.Token) math.Int {
	bz := k.getStore(ctx).Get(types.ProtocolFeeKey(recipient, token))
	if bz == nil {
		return math.ZeroInt()
	}
	amount := math.ZeroInt()
	if err := amount.Unmarshal(bz); err != nil {
		k.Logger(ctx).Error("corrupt protocol fee accrual", "recipient", recipient.String(), "token", token.String(), "error", err)
		return math.ZeroInt()
	}
	return amount
}

func (k Keeper) setProtocolFees(ctx context.Context, recipient sdk.AccAddress, token types.Token, amount math.Int) error {
	store := k.getStore(ctx)
	key := types.ProtocolFeeKey(recipient, token)
	if amount.IsZero() {
		store.Delete(key)
		return nil
	}
	bz, err := amount.Marshal()
	if err != nil {
		return fmt.Errorf("marshal protocol fee: %w", err)
	}
	store.Set(key, bz)
	return nil
}

// accrueProtocolFee credits recipient with a protocol fee already moved to the vault.
func (k Keeper) accrueProtocolFee(ctx sdk.Context, recipient sdk.AccAddress, token types.Token, amount math.Int) error {
	if err := k.setProtocolFees(ctx, recipient, token, k.GetProtocolFees(ctx, recipient, token).Add(amount)); err != nil {
		return err
	}
	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeProtocolFeeAccrued,
			sdk.NewAttribute(types.AttributeKeyRecipient, recipient.String()),
			sdk.NewAttribute(types.AttributeKeyToken, token.String()),
			sdk.NewAttribute(types.AttributeKeyAmount, amount.String()),
		),
	)
	observe(ctx, func() { k.metrics.ProtocolFeesAccrued.WithLabelValues(token.String()).Add(amountFloat(amount)) })
	return nil
}

// WithdrawProtocolFees pays recipient everything accrued to it in token.
func (k Keeper) WithdrawProtocolFees(ctx context.Context, recipient sdk.AccAddress, token types.Token) (math.Int, error) {
	return atomically(ctx, func(ctx sdk.Context) (math.Int, error) {
		amount := k.GetProtocolFees(ctx, recipient, token)
		if !amount.IsPositive() {
			return math.ZeroInt(), types.ErrInsufficientFunds.Wrapf("no %s protocol fees accrued to %s", token, recipient)
		}
		if err := k.setProtocolFees(ctx, recipient, token, math.ZeroInt()); err != nil {
			return math.ZeroInt(), err
		}
		if err := k.bankKeeper.Transfer(ctx, string(token), k.feeVaultAddress, recipient, amount); err != nil {
			return math.ZeroInt(), err
		}

		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeProtocolFeeWithdrawn,
				sdk.NewAttribute(types.AttributeKeyRecipient, recipient.String()),
				sdk.NewAttribute(types.AttributeKeyToken, token.String()),
				sdk.NewAttribute(types.AttributeKeyAmount, amount.String()),
			),
		)
		return amount, nil
	})
}

// IterateProtocolFees walks every non-zero accrual
func (k Keeper) IterateProtocolFees(ctx context.Context, cb func(recipient sdk.AccAddress, token types.Token, amount math.Int) (stop bool)) error {
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), types.ProtocolFeeKeyPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		amount := math.ZeroInt()
		if err := amount.Unmarshal(iterator.Value()); err != nil {
			return fmt.Errorf("IterateProtocolFees: unmarshal: %w", err)
		}
		recipient, token, err := types.SplitProtocolFeeKey(iterator.Key())
		if err != nil {
			return fmt.Errorf("IterateProtocolFees: %w", err)
		}
		if cb(recipient, token, amount) {
			break
		}
	}
	return nil
}
