package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/cfmm/x/cfmm/types"
)

// InitGenesis initializes the cfmm module's state from a genesis state. The
// token balances backing pair reserves and fee accruals are imported by the
// token module's own genesis.
func (k Keeper) InitGenesis(ctx context.Context, genState types.GenesisState) error {
	if err := genState.Validate(); err != nil {
		return fmt.Errorf("invalid genesis state: %w", err)
	}

	if err := k.SetParams(ctx, genState.Params); err != nil {
		return fmt.Errorf("failed to set params: %w", err)
	}

	for _, pair := range genState.Pairs {
		if err := k.SetPair(ctx, pair); err != nil {
			return fmt.Errorf("failed to set pair %d: %w", pair.Id, err)
		}
	}
	k.setPairCount(ctx, uint64(len(genState.Pairs)))
	pairCount := float64(len(genState.Pairs))
	observe(ctx, func() { k.metrics.PairsTotal.Set(pairCount) })

	for _, sb := range genState.Shares {
		holder, err := sdk.AccAddressFromBech32(sb.Holder)
		if err != nil {
			return fmt.Errorf("invalid share holder %s: %w", sb.Holder, err)
		}
		if err := k.SetShares(ctx, sb.PairId, holder, sb.Shares); err != nil {
			return fmt.Errorf("failed to set shares for pair %d, holder %s: %w", sb.PairId, sb.Holder, err)
		}
	}

	for _, fee := range genState.ProtocolFees {
		recipient, err := sdk.AccAddressFromBech32(fee.Recipient)
		if err != nil {
			return fmt.Errorf("invalid fee recipient %s: %w", fee.Recipient, err)
		}
		if err := k.setProtocolFees(ctx, recipient, fee.Token, fee.Amount); err != nil {
			return fmt.Errorf("failed to set protocol fees for %s: %w", fee.Recipient, err)
		}
	}
	return nil
}

// ExportGenesis returns the cfmm module's exported genesis
func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	params, err := k.GetParams(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get params: %w", err)
	}
	gs := types.DefaultGenesis()
	gs.Params = params

	pairs, err := k.GetAllPairs(ctx)
	if err != nil {
		return nil, err
	}
	for _, pair := range pairs {
		gs.Pairs = append(gs.Pairs, pair)
		if err := k.IterateShares(ctx, pair.Id, func(holder sdk.AccAddress, shares math.Int) bool {
			gs.Shares = append(gs.Shares, types.ShareBalance{
				PairId: pair.Id,
				Holder: holder.String(),
				Shares: shares,
			})
			return false
		}); err != nil {
			return nil, err
		}
	}

	if err := k.IterateProtocolFees(ctx, func(recipient sdk.AccAddress, token types.Token, amount math.Int) bool {
		gs.ProtocolFees = append(gs.ProtocolFees, types.ProtocolFeeAccrual{
			Recipient: recipient.String(),
			Token:     token,
			Amount:    amount,
		})
		return false
	}); err != nil {
		return nil, err
	}
	return gs, nil
}
