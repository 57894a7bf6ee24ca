package types

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Default parameter values
const (
	DefaultSwapFeeBps          uint32 = 30   // 0.30%
	DefaultProtocolFeeShareBps uint32 = 1667 // ~1/6 of the swap fee
	DefaultFlashLoanFeeBps     uint32 = 30   // 0.30%
	DefaultMinimumLiquidity    int64  = 1000
	DefaultMaxHops             uint32 = 5
)

// Params defines the tunable constants of the CFMM module.
type Params struct {
	// SwapFeeBps is the gross fee charged on every swap input.
	SwapFeeBps uint32 `json:"swap_fee_bps"`
	// ProtocolFeeShareBps is the part of the gross fee routed to FeeRecipient.
	ProtocolFeeShareBps uint32 `json:"protocol_fee_share_bps"`
	// FeeRecipient receives protocol fee accruals. Empty disables the protocol share.
	FeeRecipient     string   `json:"fee_recipient"`
	FlashLoanFeeBps  uint32   `json:"flash_loan_fee_bps"`
	MinimumLiquidity math.Int `json:"minimum_liquidity"`
	MaxHops          uint32   `json:"max_hops"`
}

// DefaultParams returns the default parameters
func DefaultParams() Params {
	return Params{
		SwapFeeBps:          DefaultSwapFeeBps,
		ProtocolFeeShareBps: DefaultProtocolFeeShareBps,
		FeeRecipient:        "",
		FlashLoanFeeBps:     DefaultFlashLoanFeeBps,
		MinimumLiquidity:    math.NewInt(DefaultMinimumLiquidity),
		MaxHops:             DefaultMaxHops,
	}
}

// Validate validates the set of params
func (p Params) Validate() error {
	if p.SwapFeeBps >= FeeDenominator {
		return ErrInvalidParams.Wrapf("swap fee %d bps must be below %d", p.SwapFeeBps, FeeDenominator)
	}
	if p.ProtocolFeeShareBps >= FeeDenominator {
		return ErrInvalidParams.Wrapf("protocol fee share %d bps must be below %d", p.ProtocolFeeShareBps, FeeDenominator)
	}
	if p.FlashLoanFeeBps >= FeeDenominator {
		return ErrInvalidParams.Wrapf("flash loan fee %d bps must be below %d", p.FlashLoanFeeBps, FeeDenominator)
	}
	if p.MinimumLiquidity.IsNil() || p.MinimumLiquidity.IsNegative() {
		return ErrInvalidParams.Wrap("minimum liquidity must be non-negative")
	}
	if p.MaxHops == 0 {
		return ErrInvalidParams.Wrap("max hops must be positive")
	}
	if p.FeeRecipient != "" {
		if _, err := sdk.AccAddressFromBech32(p.FeeRecipient); err != nil {
			return ErrInvalidParams.Wrapf("fee recipient: %v", err)
		}
	}
	return nil
}

// FeeRecipientAddress returns the protocol fee recipient, or nil when the
// protocol share is disabled.
func (p Params) FeeRecipientAddress() sdk.AccAddress {
	if p.FeeRecipient == "" {
		return nil
	}
	addr, err := sdk.AccAddressFromBech32(p.FeeRecipient)
	if err != nil {
		return nil
	}
	return addr
}
