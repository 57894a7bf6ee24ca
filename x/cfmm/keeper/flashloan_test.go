package keeper_test

import (
	"errors"
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	keepertest "github.com/paw-chain/cfmm/testutil/keeper"
	"github.com/paw-chain/cfmm/x/cfmm/types"
)

func fundedFlashReserve(t *testing.T) keepertest.Fixture {
	f := keepertest.CFMMKeeper(t)
	lender := keepertest.Addr("lender")
	f.Fund(t, lender, math.NewInt(10000), tokenA)
	require.NoError(t, f.Keeper.FundFlashReserve(f.Ctx, lender, tokenA, math.NewInt(10000)))
	require.Equal(t, math.NewInt(10000), f.Keeper.FlashReserve(f.Ctx, tokenA))
	return f
}

// repay returns a borrower that sends `amount` of the loaned token back to the lender
func repay(f keepertest.Fixture, amount func(loan, fee math.Int) math.Int) types.FlashBorrowerFunc {
	return func(ctx sdk.Context, initiator sdk.AccAddress, token types.Token, loan, fee math.Int, _ []byte) error {
		return f.Tokens.Transfer(ctx, string(token), initiator, f.Keeper.ModuleAddress(), amount(loan, fee))
	}
}

func TestFlashLoan_RepaidWithFee(t *testing.T) {
	f := fundedFlashReserve(t)
	borrower := keepertest.Addr("borrower")
	require.NoError(t, f.Tokens.Mint(f.Ctx, string(tokenA), borrower, math.NewInt(3)))

	var seenLoan, seenFee math.Int
	var seenData []byte
	cb := types.FlashBorrowerFunc(func(ctx sdk.Context, initiator sdk.AccAddress, token types.Token, loan, fee math.Int, data []byte) error {
		seenLoan, seenFee, seenData = loan, fee, data
		_, active := f.Keeper.GetActiveFlashLoan(ctx)
		require.True(t, active)
		require.Equal(t, math.NewInt(9000), f.Keeper.FlashReserve(ctx, token))
		return repay(f, func(l, fee math.Int) math.Int { return l.Add(fee) })(ctx, initiator, token, loan, fee, data)
	})

	fee, err := f.Keeper.FlashLoan(f.Ctx, borrower, cb, tokenA, math.NewInt(1000), []byte("arb"))
	require.NoError(t, err)
	require.Equal(t, math.NewInt(3), fee)
	require.Equal(t, math.NewInt(1000), seenLoan)
	require.Equal(t, math.NewInt(3), seenFee)
	require.Equal(t, []byte("arb"), seenData)

	require.Equal(t, math.NewInt(10003), f.Keeper.FlashReserve(f.Ctx, tokenA))
	require.Equal(t, math.NewInt(3), f.Keeper.FlashFeesEarned(f.Ctx, tokenA))
	require.True(t, f.Balance(borrower, tokenA).IsZero())
	_, active := f.Keeper.GetActiveFlashLoan(f.Ctx)
	require.False(t, active)
}

func TestFlashLoan_ShortRepaymentRollsBack(t *testing.T) {
	f := fundedFlashReserve(t)
	borrower := keepertest.Addr("borrower")
	require.NoError(t, f.Tokens.Mint(f.Ctx, string(tokenA), borrower, math.NewInt(3)))
	events := len(f.Ctx.EventManager().Events())

	// lend 1000 with fee 3, repay only 999
	_, err := f.Keeper.FlashLoan(f.Ctx, borrower, repay(f, func(math.Int, math.Int) math.Int { return math.NewInt(999) }),
		tokenA, math.NewInt(1000), nil)
	require.ErrorIs(t, err, types.ErrRepaymentFailed)
	require.Equal(t, types.ClassInsufficientFunds, types.Classify(err))

	require.Equal(t, math.NewInt(10000), f.Keeper.FlashReserve(f.Ctx, tokenA))
	require.Equal(t, math.NewInt(3), f.Balance(borrower, tokenA))
	require.True(t, f.Keeper.FlashFeesEarned(f.Ctx, tokenA).IsZero())
	require.Len(t, f.Ctx.EventManager().Events(), events)
	_, active := f.Keeper.GetActiveFlashLoan(f.Ctx)
	require.False(t, active)
}

func TestFlashLoan_RepayingPrincipalWithoutFeeFails(t *testing.T) {
	f := fundedFlashReserve(t)
	borrower := keepertest.Addr("borrower")

	_, err := f.Keeper.FlashLoan(f.Ctx, borrower, repay(f, func(l, _ math.Int) math.Int { return l }),
		tokenA, math.NewInt(1000), nil)
	require.ErrorIs(t, err, types.ErrRepaymentFailed)
	require.Equal(t, math.NewInt(10000), f.Keeper.FlashReserve(f.Ctx, tokenA))
	require.True(t, f.Balance(borrower, tokenA).IsZero())
}

func TestFlashLoan_ReentryRejected(t *testing.T) {
	f := fundedFlashReserve(t)
	borrower := keepertest.Addr("borrower")
	require.NoError(t, f.Tokens.Mint(f.Ctx, string(tokenA), borrower, math.NewInt(100)))

	var inner error
	cb := types.FlashBorrowerFunc(func(ctx sdk.Context, initiator sdk.AccAddress, token types.Token, loan, fee math.Int, data []byte) error {
		_, inner = f.Keeper.FlashLoan(ctx, initiator, repay(f, func(l, fee math.Int) math.Int { return l.Add(fee) }), token, math.NewInt(10), nil)
		return repay(f, func(l, fee math.Int) math.Int { return l.Add(fee) })(ctx, initiator, token, loan, fee, data)
	})

	_, err := f.Keeper.FlashLoan(f.Ctx, borrower, cb, tokenA, math.NewInt(1000), nil)
	require.NoError(t, err)
	require.ErrorIs(t, inner, types.ErrFlashLoanActive)
	require.Equal(t, math.NewInt(10003), f.Keeper.FlashReserve(f.Ctx, tokenA))
}

func TestFlashLoan_Errors(t *testing.T) {
	f := fundedFlashReserve(t)
	borrower := keepertest.Addr("borrower")
	noop := types.FlashBorrowerFunc(func(sdk.Context, sdk.AccAddress, types.Token, math.Int, math.Int, []byte) error { return nil })

	_, err := f.Keeper.FlashLoan(f.Ctx, borrower, noop, tokenA, math.NewInt(10001), nil)
	require.ErrorIs(t, err, types.ErrInsufficientLiquidity)

	_, err = f.Keeper.FlashLoan(f.Ctx, borrower, noop, tokenA, math.ZeroInt(), nil)
	require.ErrorIs(t, err, types.ErrInvalidAmount)

	boom := errors.New("boom")
	_, err = f.Keeper.FlashLoan(f.Ctx, borrower,
		types.FlashBorrowerFunc(func(sdk.Context, sdk.AccAddress, types.Token, math.Int, math.Int, []byte) error { return boom }),
		tokenA, math.NewInt(100), nil)
	require.ErrorIs(t, err, boom)
	require.Equal(t, math.NewInt(10000), f.Keeper.FlashReserve(f.Ctx, tokenA))
	require.True(t, f.Balance(borrower, tokenA).IsZero())
}

func TestFlashLoan_ArbitrageAcrossPairs(t *testing.T) {
	f := fundedFlashReserve(t)
	creator, arb := keepertest.Addr("creator"), keepertest.Addr("arb")
	// B is cheap against A directly and dear against A through C
	f.CreatePair(t, creator, tokenA, tokenB, math.NewInt(100000), math.NewInt(400000))
	f.CreatePair(t, creator, tokenB, tokenC, math.NewInt(200000), math.NewInt(200000))
	f.CreatePair(t, creator, tokenC, tokenA, math.NewInt(200000), math.NewInt(100000))

	cb := types.FlashBorrowerFunc(func(ctx sdk.Context, initiator sdk.AccAddress, token types.Token, loan, fee math.Int, _ []byte) error {
		if err := f.Tokens.Approve(ctx, string(token), initiator, f.Keeper.ModuleAddress(), loan); err != nil {
			return err
		}
		amounts, err := f.Keeper.SwapExactTokensForTokens(ctx, initiator, loan, loan.Add(fee),
			[]types.Token{tokenA, tokenB, tokenC, tokenA}, initiator, f.Deadline())
		if err != nil {
			return err
		}
		require.True(t, amounts[3].GT(loan.Add(fee)))
		return f.Tokens.Transfer(ctx, string(token), initiator, f.Keeper.ModuleAddress(), loan.Add(fee))
	})

	fee, err := f.Keeper.FlashLoan(f.Ctx, arb, cb, tokenA, math.NewInt(1000), nil)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(10000).Add(fee), f.Keeper.FlashReserve(f.Ctx, tokenA))
	require.True(t, f.Balance(arb, tokenA).IsPositive(), "arbitrage profit stays with the borrower")
}

func TestWithdrawFlashReserve(t *testing.T) {
	f := fundedFlashReserve(t)
	treasury := keepertest.Addr("treasury")

	err := f.Keeper.WithdrawFlashReserve(f.Ctx, keepertest.Addr("mallory").String(), tokenA, math.NewInt(100), treasury)
	require.ErrorIs(t, err, types.ErrUnauthorized)

	err = f.Keeper.WithdrawFlashReserve(f.Ctx, keepertest.Authority, tokenA, math.NewInt(10001), treasury)
	require.Error(t, err)
	require.Equal(t, math.NewInt(10000), f.Keeper.FlashReserve(f.Ctx, tokenA))

	require.NoError(t, f.Keeper.WithdrawFlashReserve(f.Ctx, keepertest.Authority, tokenA, math.NewInt(4000), treasury))
	require.Equal(t, math.NewInt(6000), f.Keeper.FlashReserve(f.Ctx, tokenA))
	require.Equal(t, math.NewInt(4000), f.Balance(treasury, tokenA))
}

func TestFlashReserve_NotSpendableThroughPools(t *testing.T) {
	f := fundedFlashReserve(t)
	f.CreatePair(t, keepertest.Addr("creator"), tokenA, tokenB, math.NewInt(100000), math.NewInt(200000))
	module := f.Keeper.ModuleAddress()

	_, err := f.Keeper.Swap(f.Ctx, module, tokenA, tokenB, math.NewInt(1000), math.ZeroInt(), module)
	require.ErrorIs(t, err, types.ErrUnauthorized)

	_, err = f.Keeper.SwapExactTokensForTokens(f.Ctx, module, math.NewInt(1000), math.ZeroInt(),
		[]types.Token{tokenA, tokenB}, module, f.Deadline())
	require.ErrorIs(t, err, types.ErrUnauthorized)

	require.Equal(t, math.NewInt(10000), f.Keeper.FlashReserve(f.Ctx, tokenA))
	require.True(t, f.Balance(module, tokenB).IsZero())
}
