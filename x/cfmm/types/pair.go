package types

import (
	"math/big"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"
)

// MaxReserve bounds every reserve and amount (2^112 - 1) so that products of
// two reserves and a fee numerator stay well inside math.Int's 256 bits.
var MaxReserve = math.NewIntFromBigInt(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 112), big.NewInt(1)))

// Pair holds the reserves and share supply of one canonical token pair.
type Pair struct {
	Id          uint64   `json:"id"`
	Address     string   `json:"address"`
	Token0      Token    `json:"token0"`
	Token1      Token    `json:"token1"`
	Reserve0    math.Int `json:"reserve0"`
	Reserve1    math.Int `json:"reserve1"`
	TotalShares math.Int `json:"total_shares"`
	Creator     string   `json:"creator"`
}

// PairAddress derives the deterministic account that custodies a pair's
// reserves. It depends only on the canonical token order.
func PairAddress(tokenA, tokenB Token) sdk.AccAddress {
	token0, token1 := SortTokens(tokenA, tokenB)
	return sdk.AccAddress(address.Module(ModuleName, []byte("pair"), []byte(token0), []byte(token1)))
}

// GetAddress returns the pair account address
func (p Pair) GetAddress() sdk.AccAddress {
	addr, err := sdk.AccAddressFromBech32(p.Address)
	if err != nil {
		return PairAddress(p.Token0, p.Token1)
	}
	return addr
}

// Contains reports whether token is one side of the pair
func (p Pair) Contains(token Token) bool {
	return token == p.Token0 || token == p.Token1
}

// Other returns the counter token of token within the pair.
func (p Pair) Other(token Token) (Token, error) {
	switch token {
	case p.Token0:
		return p.Token1, nil
	case p.Token1:
		return p.Token0, nil
	default:
		return "", ErrInvalidToken.Wrapf("token %s is not part of pair %s/%s", token, p.Token0, p.Token1)
	}
}

// ReservesFor returns (reserveIn, reserveOut) for a swap that pays tokenIn.
func (p Pair) ReservesFor(tokenIn Token) (reserveIn, reserveOut math.Int, zeroForOne bool, err error) {
	switch tokenIn {
	case p.Token0:
		return p.Reserve0, p.Reserve1, true, nil
	case p.Token1:
		return p.Reserve1, p.Reserve0, false, nil
	default:
		return math.ZeroInt(), math.ZeroInt(), false, ErrInvalidToken.Wrapf(
			"token %s is not part of pair %s/%s", tokenIn, p.Token0, p.Token1)
	}
}

// Ordered returns the amounts given for (tokenA, tokenB) in canonical order.
func (p Pair) Ordered(tokenA Token, amountA, amountB math.Int) (amount0, amount1 math.Int) {
	if tokenA == p.Token0 {
		return amountA, amountB
	}
	return amountB, amountA
}

// K returns the constant-product value reserve0 * reserve1
func (p Pair) K() math.Int {
	return p.Reserve0.Mul(p.Reserve1)
}

// Validate performs stateless checks on a stored pair
func (p Pair) Validate() error {
	if err := ValidateTokenPair(p.Token0, p.Token1); err != nil {
		return err
	}
	if !p.Token0.Less(p.Token1) {
		return ErrInvalidState.Wrapf("pair %d tokens not in canonical order", p.Id)
	}
	if p.Reserve0.IsNil() || p.Reserve1.IsNil() || p.TotalShares.IsNil() {
		return ErrInvalidState.Wrapf("pair %d has unset amounts", p.Id)
	}
	if p.Reserve0.IsNegative() || p.Reserve1.IsNegative() || p.TotalShares.IsNegative() {
		return ErrInvalidState.Wrapf("pair %d has negative amounts", p.Id)
	}
	if p.TotalShares.IsZero() != (p.Reserve0.IsZero() && p.Reserve1.IsZero()) {
		return ErrInvalidState.Wrapf("pair %d: share supply and reserves disagree on emptiness", p.Id)
	}
	if _, err := sdk.AccAddressFromBech32(p.Address); err != nil {
		return ErrInvalidState.Wrapf("pair %d address: %v", p.Id, err)
	}
	return nil
}

// ValidatePositiveAmount checks that amount is set, positive and within MaxReserve.
func ValidatePositiveAmount(name string, amount math.Int) error {
	if amount.IsNil() || !amount.IsPositive() {
		return ErrInvalidAmount.Wrapf("%s must be positive", name)
	}
	if amount.GT(MaxReserve) {
		return ErrInvalidAmount.Wrapf("%s %s exceeds maximum %s", name, amount, MaxReserve)
	}
	return nil
}
