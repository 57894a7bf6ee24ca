package types

import (
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// ShareBalance is one holder's share balance in a pair
type ShareBalance struct {
	PairId uint64   `json:"pair_id"`
	Holder string   `json:"holder"`
	Shares math.Int `json:"shares"`
}

// ProtocolFeeAccrual is a recipient's accrued, unwithdrawn protocol fee
type ProtocolFeeAccrual struct {
	Recipient string   `json:"recipient"`
	Token     Token    `json:"token"`
	Amount    math.Int `json:"amount"`
}

// GenesisState defines the cfmm module's genesis state
type GenesisState struct {
	Params       Params               `json:"params"`
	Pairs        []Pair               `json:"pairs"`
	Shares       []ShareBalance       `json:"shares"`
	ProtocolFees []ProtocolFeeAccrual `json:"protocol_fees"`
}

// DefaultGenesis returns the default genesis state
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Params:       DefaultParams(),
		Pairs:        []Pair{},
		Shares:       []ShareBalance{},
		ProtocolFees: []ProtocolFeeAccrual{},
	}
}

// Validate performs basic genesis state validation
func (gs GenesisState) Validate() error {
	if err := gs.Params.Validate(); err != nil {
		return err
	}

	pairs := make(map[uint64]Pair, len(gs.Pairs))
	seen := make(map[string]bool, len(gs.Pairs))
	for _, pair := range gs.Pairs {
		if err := pair.Validate(); err != nil {
			return err
		}
		if _, dup := pairs[pair.Id]; dup {
			return fmt.Errorf("duplicate pair id %d", pair.Id)
		}
		key := string(PairByTokensKey(pair.Token0, pair.Token1))
		if seen[key] {
			return ErrPairExists.Wrapf("duplicate pair %s/%s", pair.Token0, pair.Token1)
		}
		if !pair.GetAddress().Equals(PairAddress(pair.Token0, pair.Token1)) {
			return ErrInvalidState.Wrapf("pair %d address does not match its tokens", pair.Id)
		}
		seen[key] = true
		pairs[pair.Id] = pair
	}
	for id := uint64(1); id <= uint64(len(gs.Pairs)); id++ {
		if _, ok := pairs[id]; !ok {
			return ErrInvalidState.Wrapf("pair ids must be 1..%d, missing %d", len(gs.Pairs), id)
		}
	}

	sums := make(map[uint64]math.Int, len(gs.Pairs))
	for _, sb := range gs.Shares {
		if _, ok := pairs[sb.PairId]; !ok {
			return ErrPairNotFound.Wrapf("shares reference pair %d", sb.PairId)
		}
		if _, err := sdk.AccAddressFromBech32(sb.Holder); err != nil {
			return fmt.Errorf("invalid share holder %q: %w", sb.Holder, err)
		}
		if sb.Shares.IsNil() || !sb.Shares.IsPositive() {
			return ErrInvalidAmount.Wrapf("shares of %s in pair %d must be positive", sb.Holder, sb.PairId)
		}
		sum, ok := sums[sb.PairId]
		if !ok {
			sum = math.ZeroInt()
		}
		sums[sb.PairId] = sum.Add(sb.Shares)
	}
	for id, pair := range pairs {
		sum, ok := sums[id]
		if !ok {
			sum = math.ZeroInt()
		}
		if !sum.Equal(pair.TotalShares) {
			return ErrInvalidState.Wrapf("pair %d: holder shares %s != total %s", id, sum, pair.TotalShares)
		}
	}

	for _, fee := range gs.ProtocolFees {
		if _, err := sdk.AccAddressFromBech32(fee.Recipient); err != nil {
			return fmt.Errorf("invalid fee recipient %q: %w", fee.Recipient, err)
		}
		if err := fee.Token.Validate(); err != nil {
			return err
		}
		if fee.Amount.IsNil() || fee.Amount.IsNegative() {
			return ErrInvalidAmount.Wrapf("protocol fee for %s must be non-negative", fee.Recipient)
		}
	}
	return nil
}
