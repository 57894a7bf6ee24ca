package keeper

import (
	"context"
	"encoding/json"
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/cfmm/x/cfmm/types"
)

// ActiveFlashLoan is stored while a borrower callback runs. Its presence is
// the Lending state; it never survives the enclosing call.
type ActiveFlashLoan struct {
	Receiver string   `json:"receiver"`
	Token    string   `json:"token"`
	Amount   math.Int `json:"amount"`
	Fee      math.Int `json:"fee"`
	Height   int64    `json:"height"`
}

// FlashLoan lends amount of token from the module reserve to receiver, runs
// borrower synchronously, and requires the reserve to hold at least its
// pre-loan balance plus fee afterwards. Any failure rolls the whole call back.
func (k Keeper) FlashLoan(
	ctx context.Context,
	receiver sdk.AccAddress,
	borrower types.FlashBorrower,
	token types.Token,
	amount math.Int,
	data []byte,
) (math.Int, error) {
	fee, err := atomically(ctx, func(ctx sdk.Context) (math.Int, error) {
		return k.flashLoan(ctx, receiver, borrower, token, amount, data)
	})
	if err != nil {
		k.metrics.FlashLoansTotal.WithLabelValues(token.String(), "failed").Inc()
		k.Logger(ctx).Debug("flash loan failed", "token", token.String(), "amount", amount.String(), "error", err)
		return math.ZeroInt(), err
	}
	observe(ctx, func() { k.metrics.FlashLoansTotal.WithLabelValues(token.String(), "repaid").Inc() })
	return fee, nil
}

func (k Keeper) flashLoan(
	ctx sdk.Context,
	receiver sdk.AccAddress,
	borrower types.FlashBorrower,
	token types.Token,
	amount math.Int,
	data []byte,
) (math.Int, error) {
	if _, active := k.GetActiveFlashLoan(ctx); active {
		return math.ZeroInt(), types.ErrFlashLoanActive
	}
	if borrower == nil {
		return math.ZeroInt(), types.ErrInvalidAmount.Wrap("flash loan needs a borrower")
	}
	if err := token.Validate(); err != nil {
		return math.ZeroInt(), err
	}
	if err := types.ValidatePositiveAmount("flash loan amount", amount); err != nil {
		return math.ZeroInt(), err
	}

	params, err := k.GetParams(ctx)
	if err != nil {
		return math.ZeroInt(), err
	}
	preBalance := k.FlashReserve(ctx, token)
	if preBalance.LT(amount) {
		return math.ZeroInt(), types.ErrInsufficientLiquidity.Wrapf("reserve holds %s%s, requested %s", preBalance, token, amount)
	}
	fee := FlashLoanFee(amount, params.FlashLoanFeeBps)

	if err := k.setActiveFlashLoan(ctx, ActiveFlashLoan{
		Receiver: receiver.String(),
		Token:    token.String(),
		Amount:   amount,
		Fee:      fee,
		Height:   ctx.BlockHeight(),
	}); err != nil {
		return math.ZeroInt(), err
	}

	if err := k.bankKeeper.Transfer(ctx, string(token), k.moduleAddress, receiver, amount); err != nil {
		return math.ZeroInt(), err
	}
	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeFlashLoan,
			sdk.NewAttribute(types.AttributeKeyBorrower, receiver.String()),
			sdk.NewAttribute(types.AttributeKeyToken, token.String()),
			sdk.NewAttribute(types.AttributeKeyAmount, amount.String()),
			sdk.NewAttribute(types.AttributeKeyFee, fee.String()),
		),
	)

	if err := borrower.OnFlashLoan(ctx, receiver, token, amount, fee, data); err != nil {
		return math.ZeroInt(), fmt.Errorf("flash loan callback: %w", err)
	}

	postBalance := k.FlashReserve(ctx, token)
	if due := preBalance.Add(fee); postBalance.LT(due) {
		return math.ZeroInt(), types.ErrRepaymentFailed.Wrapf("reserve holds %s%s, owed %s", postBalance, token, due)
	}

	k.getStore(ctx).Delete(types.FlashLoanLockKey)
	if err := k.addFlashFeesEarned(ctx, token, fee); err != nil {
		return math.ZeroInt(), err
	}
	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeFlashLoanRepaid,
			sdk.NewAttribute(types.AttributeKeyBorrower, receiver.String()),
			sdk.NewAttribute(types.AttributeKeyToken, token.String()),
			sdk.NewAttribute(types.AttributeKeyAmount, postBalance.Sub(preBalance).Add(amount).String()),
			sdk.NewAttribute(types.AttributeKeyFee, fee.String()),
		),
	)
	return fee, nil
}

// GetActiveFlashLoan returns the loan whose callback is currently running
func (k Keeper) GetActiveFlashLoan(ctx context.Context) (ActiveFlashLoan, bool) {
	bz := k.getStore(ctx).Get(types.FlashLoanLockKey)
	if bz == nil {
		return ActiveFlashLoan{}, false
	}
	var loan ActiveFlashLoan
	if err := json.Unmarshal(bz, &loan); err != nil {
		k.Logger(ctx).Error("corrupt active flash loan record", "error", err)
	}
	return loan, true
}

func (k Keeper) setActiveFlashLoan(ctx context.Context, loan ActiveFlashLoan) error {
	bz, err := json.Marshal(loan)
	if err != nil {
		return fmt.Errorf("marshal active flash loan: %w", err)
	}
	k.getStore(ctx).Set(types.FlashLoanLockKey, bz)
	return nil
}

// FlashReserve returns how much of token the provider can lend
func (k Keeper) FlashReserve(ctx context.Context, token types.Token) math.Int {
	return k.bankKeeper.BalanceOf(ctx, string(token), k.moduleAddress)
}

// FundFlashReserve pulls amount of token from funder into the lending reserve.
func (k Keeper) FundFlashReserve(ctx context.Context, funder sdk.AccAddress, token types.Token, amount math.Int) error {
	_, err := atomically(ctx, func(ctx sdk.Context) (struct{}, error) {
		if err := token.Validate(); err != nil {
			return struct{}{}, err
		}
		if err := types.ValidatePositiveAmount("amount", amount); err != nil {
			return struct{}{}, err
		}
		if err := k.pull(ctx, token, funder, k.moduleAddress, amount); err != nil {
			return struct{}{}, err
		}
		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeFlashReserveFunded,
				sdk.NewAttribute(types.AttributeKeySender, funder.String()),
				sdk.NewAttribute(types.AttributeKeyToken, token.String()),
				sdk.NewAttribute(types.AttributeKeyAmount, amount.String()),
			),
		)
		return struct{}{}, nil
	})
	return err
}

// WithdrawFlashReserve moves lending reserve to `to` on behalf of the module authority.
func (k Keeper) WithdrawFlashReserve(ctx context.Context, authority string, token types.Token, amount math.Int, to sdk.AccAddress) error {
	if authority != k.authority {
		return types.ErrUnauthorized.Wrapf("expected %s, got %s", k.authority, authority)
	}
	_, err := atomically(ctx, func(ctx sdk.Context) (struct{}, error) {
		if _, active := k.GetActiveFlashLoan(ctx); active {
			return struct{}{}, types.ErrFlashLoanActive
		}
		if err := types.ValidatePositiveAmount("amount", amount); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, k.bankKeeper.Transfer(ctx, string(token), k.moduleAddress, to, amount)
	})
	return err
}

// FlashFeesEarned returns the total flash loan fees collected in token
func (k Keeper) FlashFeesEarned(ctx context.Context, token types.Token) math.Int {
	bz := k.getStore(ctx).Get(types.FlashFeeKey(token))
	if bz == nil {
		return math.ZeroInt()
	}
	earned := math.ZeroInt()
	if err := earned.Unmarshal(bz); err != nil {
		k.Logger(ctx).Error("corrupt flash fee record", "token", token.String(), "error", err)
		return math.ZeroInt()
	}
	return earned
}

func (k Keeper) addFlashFeesEarned(ctx context.Context, token types.Token, fee math.Int) error {
	if fee.IsZero() {
		return nil
	}
	bz, err := k.FlashFeesEarned(ctx, token).Add(fee).Marshal()
	if err != nil {
		return fmt.Errorf("marshal flash fees: %w", err)
	}
	k.getStore(ctx).Set(types.FlashFeeKey(token), bz)
	return nil
}
