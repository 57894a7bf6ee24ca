package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/cfmm/x/token/types"
)

// Keeper is a fungible-asset ledger: balances, allowances and supply per token.
type Keeper struct {
	storeKey storetypes.StoreKey
}

// NewKeeper creates a new token Keeper instance
func NewKeeper(key storetypes.StoreKey) Keeper {
	return Keeper{storeKey: key}
}

func (k Keeper) getStore(ctx context.Context) storetypes.KVStore {
	return sdk.UnwrapSDKContext(ctx).KVStore(k.storeKey)
}

// Logger returns a module-specific logger.
func (k Keeper) Logger(ctx context.Context) log.Logger {
	return sdk.UnwrapSDKContext(ctx).Logger().With("module", "x/"+types.ModuleName)
}

// BalanceOf returns the balance of account in token
func (k Keeper) BalanceOf(ctx context.Context, token string, account sdk.AccAddress) math.Int {
	return k.getAmount(ctx, types.BalanceKey(token, account))
}

// Allowance returns how much of owner's token spender may move
func (k Keeper) Allowance(ctx context.Context, token string, owner, spender sdk.AccAddress) math.Int {
	return k.getAmount(ctx, types.AllowanceKey(token, owner, spender))
}

// TotalSupply returns the minted-minus-burned amount of token
func (k Keeper) TotalSupply(ctx context.Context, token string) math.Int {
	return k.getAmount(ctx, types.SupplyKey(token))
}

// Mint creates amount of token in account
func (k Keeper) Mint(ctx context.Context, token string, to sdk.AccAddress, amount math.Int) error {
	if err := validateTransfer(token, to, amount); err != nil {
		return err
	}
	if err := k.setAmount(ctx, types.BalanceKey(token, to), k.BalanceOf(ctx, token, to).Add(amount)); err != nil {
		return err
	}
	if err := k.setAmount(ctx, types.SupplyKey(token), k.TotalSupply(ctx, token).Add(amount)); err != nil {
		return err
	}

	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeMint,
			sdk.NewAttribute(types.AttributeKeyToken, token),
			sdk.NewAttribute(types.AttributeKeyTo, to.String()),
			sdk.NewAttribute(types.AttributeKeyAmount, amount.String()),
		),
	)
	return nil
}

// Burn destroys amount of token held by from
func (k Keeper) Burn(ctx context.Context, token string, from sdk.AccAddress, amount math.Int) error {
	if err := validateTransfer(token, from, amount); err != nil {
		return err
	}
	balance := k.BalanceOf(ctx, token, from)
	if balance.LT(amount) {
		return types.ErrInsufficientBalance.Wrapf("%s has %s%s, needs %s", from, balance, token, amount)
	}
	if err := k.setAmount(ctx, types.BalanceKey(token, from), balance.Sub(amount)); err != nil {
		return err
	}
	if err := k.setAmount(ctx, types.SupplyKey(token), k.TotalSupply(ctx, token).Sub(amount)); err != nil {
		return err
	}

	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeBurn,
			sdk.NewAttribute(types.AttributeKeyToken, token),
			sdk.NewAttribute(types.AttributeKeyFrom, from.String()),
			sdk.NewAttribute(types.AttributeKeyAmount, amount.String()),
		),
	)
	return nil
}

// Transfer moves amount of token from one account to another. A zero amount
// is a no-op.
func (k Keeper) Transfer(ctx context.Context, token string, from, to sdk.AccAddress, amount math.Int) error {
	if err := validateTransfer(token, to, amount); err != nil {
		return err
	}
	if from.Empty() {
		return types.ErrInvalidAddress.Wrap("sender cannot be empty")
	}
	if amount.IsZero() {
		return nil
	}

	balance := k.BalanceOf(ctx, token, from)
	if balance.LT(amount) {
		return types.ErrInsufficientBalance.Wrapf("%s has %s%s, needs %s", from, balance, token, amount)
	}
	if err := k.setAmount(ctx, types.BalanceKey(token, from), balance.Sub(amount)); err != nil {
		return err
	}
	if err := k.setAmount(ctx, types.BalanceKey(token, to), k.BalanceOf(ctx, token, to).Add(amount)); err != nil {
		return err
	}

	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeTransfer,
			sdk.NewAttribute(types.AttributeKeyToken, token),
			sdk.NewAttribute(types.AttributeKeyFrom, from.String()),
			sdk.NewAttribute(types.AttributeKeyTo, to.String()),
			sdk.NewAttribute(types.AttributeKeyAmount, amount.String()),
		),
	)
	return nil
}

// TransferFrom moves owner's tokens on behalf of spender, consuming allowance.
// An owner moving its own tokens needs no allowance.
func (k Keeper) TransferFrom(ctx context.Context, token string, spender, from, to sdk.AccAddress, amount math.Int) error {
	if !spender.Equals(from) {
		allowance := k.Allowance(ctx, token, from, spender)
		if allowance.LT(amount) {
			return types.ErrInsufficientAllowance.Wrapf(
				"%s may spend %s%s of %s, needs %s", spender, allowance, token, from, amount)
		}
		if err := k.setAmount(ctx, types.AllowanceKey(token, from, spender), allowance.Sub(amount)); err != nil {
			return err
		}
	}
	return k.Transfer(ctx, token, from, to, amount)
}

// Approve sets the allowance owner grants spender, replacing any prior value
func (k Keeper) Approve(ctx context.Context, token string, owner, spender sdk.AccAddress, amount math.Int) error {
	if err := validateTransfer(token, spender, amount); err != nil {
		return err
	}
	if owner.Empty() {
		return types.ErrInvalidAddress.Wrap("owner cannot be empty")
	}
	if err := k.setAmount(ctx, types.AllowanceKey(token, owner, spender), amount); err != nil {
		return err
	}

	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeApproval,
			sdk.NewAttribute(types.AttributeKeyToken, token),
			sdk.NewAttribute(types.AttributeKeyOwner, owner.String()),
			sdk.NewAttribute(types.AttributeKeySpender, spender.String()),
			sdk.NewAttribute(types.AttributeKeyAmount, amount.String()),
		),
	)
	return nil
}

// IterateBalances walks every non-zero balance in key order
func (k Keeper) IterateBalances(ctx context.Context, cb func(token string, account sdk.AccAddress, amount math.Int) (stop bool)) error {
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), types.BalanceKeyPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		amount := math.ZeroInt()
		if err := amount.Unmarshal(iterator.Value()); err != nil {
			return fmt.Errorf("IterateBalances: unmarshal balance: %w", err)
		}
		token, account := types.SplitBalanceKey(iterator.Key())
		if cb(token, account, amount) {
			break
		}
	}
	return nil
}

func (k Keeper) getAmount(ctx context.Context, key []byte) math.Int {
	bz := k.getStore(ctx).Get(key)
	if bz == nil {
		return math.ZeroInt()
	}
	amount := math.ZeroInt()
	if err := amount.Unmarshal(bz); err != nil {
		k.Logger(ctx).Error("corrupt amount in store", "key", fmt.Sprintf("%X", key), "error", err)
		return math.ZeroInt()
	}
	return amount
}

func (k Keeper) setAmount(ctx context.Context, key []byte, amount math.Int) error {
	store := k.getStore(ctx)
	if amount.IsZero() {
		store.Delete(key)
		return nil
	}
	bz, err := amount.Marshal()
	if err != nil {
		return fmt.Errorf("marshal amount: %w", err)
	}
	store.Set(key, bz)
	return nil
}

func validateTransfer(token string, to sdk.AccAddress, amount math.Int) error {
	if err := sdk.ValidateDenom(token); err != nil {
		return types.ErrInvalidToken.Wrapf("%q: %v", token, err)
	}
	if to.Empty() {
		return types.ErrInvalidAddress.Wrap("recipient cannot be empty")
	}
	if amount.IsNil() || amount.IsNegative() {
		return types.ErrInvalidAmount.Wrapf("amount %s must be non-negative", amount)
	}
	return nil
}
