package keeper

import (
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/cfmm/x/cfmm/types"
)

// RegisterInvariants registers all cfmm invariants
func RegisterInvariants(ir sdk.InvariantRegistry, k Keeper) {
	ir.RegisterRoute(types.ModuleName, "reserves-backed", ReservesBackedInvariant(k))
	ir.RegisterRoute(types.ModuleName, "shares-sum", SharesSumInvariant(k))
	ir.RegisterRoute(types.ModuleName, "pair-registry", PairRegistryInvariant(k))
	ir.RegisterRoute(types.ModuleName, "protocol-fees-backed", ProtocolFeesBackedInvariant(k))
}

// AllInvariants runs all invariants of the cfmm module
func AllInvariants(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		for _, inv := range []sdk.Invariant{
			ReservesBackedInvariant(k),
			SharesSumInvariant(k),
			PairRegistryInvariant(k),
			ProtocolFeesBackedInvariant(k),
		} {
			if res, stop := inv(ctx); stop {
				return res, stop
			}
		}
		return "", false
	}
}

// ReservesBackedInvariant checks that every pair address holds at least its
// recorded reserves.
func ReservesBackedInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			msg   string
			count int
		)

		err := k.IteratePairs(ctx, func(pair types.Pair) bool {
			addr := pair.GetAddress()
			balance0 := k.bankKeeper.BalanceOf(ctx, string(pair.Token0), addr)
			balance1 := k.bankKeeper.BalanceOf(ctx, string(pair.Token1), addr)
			if balance0.LT(pair.Reserve0) {
				count++
				msg += fmt.Sprintf("pair %d: balance of %s (%s) < reserve (%s)\n", pair.Id, pair.Token0, balance0, pair.Reserve0)
			}
			if balance1.LT(pair.Reserve1) {
				count++
				msg += fmt.Sprintf("pair %d: balance of %s (%s) < reserve (%s)\n", pair.Id, pair.Token1, balance1, pair.Reserve1)
			}
			return false
		})
		if err != nil {
			count++
			msg += err.Error() + "\n"
		}

		return sdk.FormatInvariant(
			types.ModuleName, "reserves-backed",
			fmt.Sprintf("found %d unbacked reserves\n%s", count, msg),
		), count != 0
	}
}

// SharesSumInvariant checks that holder balances add up to each pair's
// total share supply, and that supply is zero only with empty reserves.
func SharesSumInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			msg   string
			count int
		)

		err := k.IteratePairs(ctx, func(pair types.Pair) bool {
			sum := math.ZeroInt()
			if err := k.IterateShares(ctx, pair.Id, func(_ sdk.AccAddress, shares math.Int) bool {
				sum = sum.Add(shares)
				return false
			}); err != nil {
				count++
				msg += fmt.Sprintf("pair %d: %v\n", pair.Id, err)
				return false
			}
			if !sum.Equal(pair.TotalShares) {
				count++
				msg += fmt.Sprintf("pair %d: holder shares %s != total shares %s\n", pair.Id, sum, pair.TotalShares)
			}
			if err := pair.Validate(); err != nil {
				count++
				msg += fmt.Sprintf("pair %d: %v\n", pair.Id, err)
			}
			return false
		})
		if err != nil {
			count++
			msg += err.Error() + "\n"
		}

		return sdk.FormatInvariant(
			types.ModuleName, "shares-sum",
			fmt.Sprintf("found %d share supply mismatches\n%s", count, msg),
		), count != 0
	}
}

// PairRegistryInvariant checks that the pair counter equals the number of
// stored pairs and that both lookup indexes resolve to each pair.
func PairRegistryInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			msg   string
			count int
			pairs uint64
		)

		err := k.IteratePairs(ctx, func(pair types.Pair) bool {
			pairs++
			byTokens, err := k.GetPairByTokens(ctx, pair.Token1, pair.Token0)
			if err != nil || byTokens.Id != pair.Id {
				count++
				msg += fmt.Sprintf("pair %d: token index does not resolve\n", pair.Id)
			}
			if !k.IsPair(ctx, pair.GetAddress()) {
				count++
				msg += fmt.Sprintf("pair %d: address %s not registered\n", pair.Id, pair.Address)
			}
			return false
		})
		if err != nil {
			count++
			msg += err.Error() + "\n"
		}
		if n := k.PairCount(ctx); n != pairs {
			count++
			msg += fmt.Sprintf("pair count %d != stored pairs %d\n", n, pairs)
		}

		return sdk.FormatInvariant(
			types.ModuleName, "pair-registry",
			fmt.Sprintf("found %d registry inconsistencies\n%s", count, msg),
		), count != 0
	}
}

// ProtocolFeesBackedInvariant checks that the fee vault holds every
// unwithdrawn accrual.
func ProtocolFeesBackedInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			msg   string
			count int
		)

		owed := make(map[types.Token]math.Int)
		err := k.IterateProtocolFees(ctx, func(_ sdk.AccAddress, token types.Token, amount math.Int) bool {
			sum, ok := owed[token]
			if !ok {
				sum = math.ZeroInt()
			}
			owed[token] = sum.Add(amount)
			return false
		})
		if err != nil {
			count++
			msg += err.Error() + "\n"
		}
		for token, amount := range owed {
			if balance := k.bankKeeper.BalanceOf(ctx, string(token), k.feeVaultAddress); balance.LT(amount) {
				count++
				msg += fmt.Sprintf("fee vault holds %s%s, owes %s\n", balance, token, amount)
			}
		}

		return sdk.FormatInvariant(
			types.ModuleName, "protocol-fees-backed",
			fmt.Sprintf("found %d unbacked protocol fee balances\n%s", count, msg),
		), count != 0
	}
}
