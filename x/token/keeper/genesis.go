package keeper

import (
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/cfmm/x/token/types"
)

// InitGenesis mints every genesis balance
func (k Keeper) InitGenesis(ctx sdk.Context, gs types.GenesisState) error {
	if err := gs.Validate(); err != nil {
		return fmt.Errorf("InitGenesis: %w", err)
	}
	for _, b := range gs.Balances {
		addr, err := sdk.AccAddressFromBech32(b.Address)
		if err != nil {
			return fmt.Errorf("InitGenesis: %w", err)
		}
		if err := k.Mint(ctx, b.Token, addr, b.Amount); err != nil {
			return fmt.Errorf("InitGenesis: mint %s to %s: %w", b.Token, b.Address, err)
		}
	}
	return nil
}

// ExportGenesis returns every balance held in the ledger
func (k Keeper) ExportGenesis(ctx sdk.Context) (*types.GenesisState, error) {
	gs := types.DefaultGenesis()
	err := k.IterateBalances(ctx, func(token string, account sdk.AccAddress, amount math.Int) bool {
		gs.Balances = append(gs.Balances, types.Balance{
			Token:   token,
			Address: account.String(),
			Amount:  amount,
		})
		return false
	})
	if err != nil {
		return nil, fmt.Errorf("ExportGenesis: %w", err)
	}
	return gs, nil
}
