package keeper

import (
	"testing"

	"cosmossdk.io/log"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	tokenkeeper "github.com/paw-chain/cfmm/x/token/keeper"
	tokentypes "github.com/paw-chain/cfmm/x/token/types"
)

// TokenKeeper creates a standalone token ledger over an in-memory store
func TokenKeeper(t testing.TB) (tokenkeeper.Keeper, sdk.Context) {
	storeKey := storetypes.NewKVStoreKey(tokentypes.StoreKey)

	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	require.NoError(t, stateStore.LoadLatestVersion())

	ctx := sdk.NewContext(stateStore, cmtproto.Header{Height: 1, Time: GenesisTime}, false, log.NewNopLogger())
	return tokenkeeper.NewKeeper(storeKey), ctx
}
