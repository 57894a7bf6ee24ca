package types

import (
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Balance is one account's holding of one token
type Balance struct {
	Token   string   `json:"token"`
	Address string   `json:"address"`
	Amount  math.Int `json:"amount"`
}

// GenesisState defines the token module's genesis state
type GenesisState struct {
	Balances []Balance `json:"balances"`
}

// DefaultGenesis returns an empty ledger
func DefaultGenesis() *GenesisState {
	return &GenesisState{Balances: []Balance{}}
}

// Validate performs basic genesis state validation
func (gs GenesisState) Validate() error {
	seen := make(map[string]bool, len(gs.Balances))
	for _, b := range gs.Balances {
		if err := sdk.ValidateDenom(b.Token); err != nil {
			return ErrInvalidToken.Wrapf("%q: %v", b.Token, err)
		}
		if _, err := sdk.AccAddressFromBech32(b.Address); err != nil {
			return ErrInvalidAddress.Wrapf("%q: %v", b.Address, err)
		}
		if b.Amount.IsNil() || b.Amount.IsNegative() {
			return ErrInvalidAmount.Wrapf("balance of %s in %s", b.Address, b.Token)
		}
		key := fmt.Sprintf("%s/%s", b.Token, b.Address)
		if seen[key] {
			return fmt.Errorf("duplicate balance for %s", key)
		}
		seen[key] = true
	}
	return nil
}
