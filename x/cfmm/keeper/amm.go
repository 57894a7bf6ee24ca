package keeper

import (
	"math/big"

	"cosmossdk.io/math"

	"github.com/paw-chain/cfmm/x/cfmm/types"
)

var feeDenominator = math.NewInt(types.FeeDenominator)

// GetAmountOut prices an exact-input swap against (reserveIn, reserveOut):
//
//	amountInAfterFee = amountIn * (FEE_DENOM - feeBps) / FEE_DENOM
//	amountOut        = reserveOut * amountInAfterFee / (reserveIn + amountInAfterFee)
//
// grossFee is amountIn - amountInAfterFee, so truncation of the fee-adjusted
// input is charged to the swapper.
func GetAmountOut(amountIn, reserveIn, reserveOut math.Int, feeBps uint32) (amountOut, grossFee math.Int, err error) {
	if err := types.ValidatePositiveAmount("amount in", amountIn); err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	if !reserveIn.IsPositive() || !reserveOut.IsPositive() {
		return math.ZeroInt(), math.ZeroInt(), types.ErrInsufficientLiquidity.Wrap("pair reserves must be positive")
	}

	amountInAfterFee := amountIn.MulRaw(int64(types.FeeDenominator - feeBps)).Quo(feeDenominator)
	grossFee = amountIn.Sub(amountInAfterFee)

	numerator := reserveOut.Mul(amountInAfterFee)
	denominator := reserveIn.Add(amountInAfterFee)
	amountOut = numerator.Quo(denominator)

	if amountOut.IsZero() {
		return math.ZeroInt(), math.ZeroInt(), types.ErrInsufficientOutput.Wrapf("amount in %s yields nothing", amountIn)
	}
	// Unreachable while reserveIn > 0, since then amountOut < reserveOut.
	// Kept so the reserve bound does not rest on the formula alone.
	if amountOut.GTE(reserveOut) {
		return math.ZeroInt(), math.ZeroInt(), types.ErrInsufficientReserve.Wrapf("output %s >= reserve %s", amountOut, reserveOut)
	}
	return amountOut, grossFee, nil
}

// GetAmountIn returns the smallest input for which GetAmountOut yields at
// least amountOut.
func GetAmountIn(amountOut, reserveIn, reserveOut math.Int, feeBps uint32) (math.Int, error) {
	if err := types.ValidatePositiveAmount("amount out", amountOut); err != nil {
		return math.ZeroInt(), err
	}
	if !reserveIn.IsPositive() || !reserveOut.IsPositive() {
		return math.ZeroInt(), types.ErrInsufficientLiquidity.Wrap("pair reserves must be positive")
	}
	if amountOut.GTE(reserveOut) {
		return math.ZeroInt(), types.ErrInsufficientReserve.Wrapf("output %s >= reserve %s", amountOut, reserveOut)
	}

	// smallest fee-adjusted input x with reserveOut*x/(reserveIn+x) >= amountOut
	afterFee := ceilQuo(reserveIn.Mul(amountOut), reserveOut.Sub(amountOut))
	// smallest amountIn with floor(amountIn*(D-fee)/D) >= afterFee
	amountIn := ceilQuo(afterFee.Mul(feeDenominator), math.NewInt(int64(types.FeeDenominator-feeBps)))
	if amountIn.GT(types.MaxReserve) {
		return math.ZeroInt(), types.ErrInvalidAmount.Wrapf("required input %s exceeds maximum", amountIn)
	}
	return amountIn, nil
}

// Quote returns the amount of B matching amountA at the current reserve ratio.
func Quote(amountA, reserveA, reserveB math.Int) (math.Int, error) {
	if amountA.IsNil() || !amountA.IsPositive() {
		return math.ZeroInt(), types.ErrInvalidAmount.Wrap("quote amount must be positive")
	}
	if !reserveA.IsPositive() || !reserveB.IsPositive() {
		return math.ZeroInt(), types.ErrInsufficientLiquidity.Wrap("pair reserves must be positive")
	}
	return amountA.Mul(reserveB).Quo(reserveA), nil
}

// SplitFee divides a gross swap fee into the protocol's part and the part
// that stays in the pool. protocol + lp == grossFee; the rounding remainder
// goes to the LPs.
func SplitFee(grossFee math.Int, protocolShareBps uint32) (protocol, lp math.Int) {
	if grossFee.IsNil() || !grossFee.IsPositive() || protocolShareBps == 0 {
		return math.ZeroInt(), grossFee
	}
	protocol = grossFee.MulRaw(int64(protocolShareBps)).Quo(feeDenominator)
	return protocol, grossFee.Sub(protocol)
}

// FlashLoanFee is amount * feeBps / FEE_DENOM rounded up, so any non-zero
// rate charges at least one unit.
func FlashLoanFee(amount math.Int, feeBps uint32) math.Int {
	if feeBps == 0 {
		return math.ZeroInt()
	}
	return ceilQuo(amount.MulRaw(int64(feeBps)), feeDenominator)
}

// InitialShares is the geometric mean of the seed amounts, rounded down.
func InitialShares(amount0, amount1 math.Int) math.Int {
	product := amount0.Mul(amount1)
	return math.NewIntFromBigInt(new(big.Int).Sqrt(product.BigInt()))
}

// SharesForDeposit mints min(amount0*supply/reserve0, amount1*supply/reserve1).
func SharesForDeposit(amount0, amount1, reserve0, reserve1, totalShares math.Int) math.Int {
	s0 := amount0.Mul(totalShares).Quo(reserve0)
	s1 := amount1.Mul(totalShares).Quo(reserve1)
	return math.MinInt(s0, s1)
}

func ceilQuo(a, b math.Int) math.Int {
	q := a.Quo(b)
	if !a.Mod(b).IsZero() {
		q = q.AddRaw(1)
	}
	return q
}
