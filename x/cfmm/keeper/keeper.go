package keeper

import (
	"context"

	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"

	"github.com/paw-chain/cfmm/x/cfmm/types"
)

// Keeper of the cfmm store. It owns the pair registry, every pair's reserves
// and share ledger, protocol fee accruals and the flash loan reserve.
type Keeper struct {
	storeKey   storetypes.StoreKey
	bankKeeper types.BankKeeper
	decryptor  types.AmountDecryptor
	authority  string
	metrics    *CFMMMetrics

	moduleAddress   sdk.AccAddress
	feeVaultAddress sdk.AccAddress
}

// NewKeeper creates a new cfmm Keeper instance. authority may update params
// and withdraw from the flash loan reserve.
func NewKeeper(key storetypes.StoreKey, bankKeeper types.BankKeeper, authority string) Keeper {
	return Keeper{
		storeKey:        key,
		bankKeeper:      bankKeeper,
		authority:       authority,
		metrics:         NewCFMMMetrics(),
		moduleAddress:   authtypes.NewModuleAddress(types.ModuleName),
		feeVaultAddress: sdk.AccAddress(address.Module(types.ModuleName, []byte("protocol_fees"))),
	}
}

// WithDecryptor returns a copy of the keeper that accepts sealed amounts.
func (k Keeper) WithDecryptor(d types.AmountDecryptor) Keeper {
	k.decryptor = d
	return k
}

// getStore returns the KVStore for the cfmm module
func (k Keeper) getStore(ctx context.Context) storetypes.KVStore {
	return sdk.UnwrapSDKContext(ctx).KVStore(k.storeKey)
}

// Logger returns a module-specific logger.
func (k Keeper) Logger(ctx context.Context) log.Logger {
	return sdk.UnwrapSDKContext(ctx).Logger().With("module", "x/"+types.ModuleName)
}

// GetAuthority returns the module's authority
func (k Keeper) GetAuthority() string {
	return k.authority
}

// ModuleAddress is the module account: the spender users approve and the
// holder of the flash loan reserve.
func (k Keeper) ModuleAddress() sdk.AccAddress {
	return k.moduleAddress
}

// FeeVaultAddress holds protocol fees until their recipient withdraws them.
func (k Keeper) FeeVaultAddress() sdk.AccAddress {
	return k.feeVaultAddress
}

// atomically runs fn on a branch of ctx and commits the branch only when fn
// succeeds, so a failed operation leaves no state, events or metrics behind.
// Metrics observed inside fn are handed to the enclosing branch, or recorded
// once the outermost branch is written.
func atomically[T any](ctx context.Context, fn func(ctx sdk.Context) (T, error)) (T, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	parent := pendingMetricsFrom(sdkCtx)
	pending := &pendingMetrics{}

	cacheCtx, write := sdkCtx.CacheContext()
	res, err := fn(cacheCtx.WithValue(pendingMetricsKey{}, pending))
	if err != nil {
		var zero T
		return zero, err
	}
	write()
	if parent != nil {
		parent.ops = append(parent.ops, pending.ops...)
	} else {
		pending.flush()
	}
	return res, nil
}
