package keeper

import (
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/cfmm/x/cfmm/keeper"
	"github.com/paw-chain/cfmm/x/cfmm/types"
	tokenkeeper "github.com/paw-chain/cfmm/x/token/keeper"
	tokentypes "github.com/paw-chain/cfmm/x/token/types"
)

// GenesisTime is the block time of contexts built by CFMMKeeper
var GenesisTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// Authority is the governance address wired into test keepers
var Authority = authtypes.NewModuleAddress("gov").String()

// Fixture bundles the cfmm keeper with the token ledger that backs it
type Fixture struct {
	Keeper keeper.Keeper
	Tokens tokenkeeper.Keeper
	Ctx    sdk.Context
}

// CFMMKeeper creates a cfmm keeper over an in-memory IAVL store, backed by a
// real token ledger, with default params.
func CFMMKeeper(t testing.TB) Fixture {
	storeKey := storetypes.NewKVStoreKey(types.StoreKey)
	tokenStoreKey := storetypes.NewKVStoreKey(tokentypes.StoreKey)

	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	stateStore.MountStoreWithDB(tokenStoreKey, storetypes.StoreTypeIAVL, db)
	require.NoError(t, stateStore.LoadLatestVersion())

	tokens := tokenkeeper.NewKeeper(tokenStoreKey)
	k := keeper.NewKeeper(storeKey, tokens, Authority)

	ctx := sdk.NewContext(stateStore, cmtproto.Header{Height: 1, Time: GenesisTime}, false, log.NewNopLogger())
	require.NoError(t, k.InitGenesis(ctx, *types.DefaultGenesis()))

	return Fixture{Keeper: k, Tokens: tokens, Ctx: ctx}
}

// Deadline returns a deadline one hour after the fixture's block time
func (f Fixture) Deadline() time.Time {
	return f.Ctx.BlockTime().Add(time.Hour)
}

// Fund mints amount of each token to addr and approves the cfmm module to
// spend all of it.
func (f Fixture) Fund(t testing.TB, addr sdk.AccAddress, amount math.Int, tokens ...types.Token) {
	for _, token := range tokens {
		require.NoError(t, f.Tokens.Mint(f.Ctx, string(token), addr, amount))
		f.Approve(t, addr, token)
	}
}

// Approve grants the cfmm module account addr's whole balance of token
func (f Fixture) Approve(t testing.TB, addr sdk.AccAddress, token types.Token) {
	balance := f.Tokens.BalanceOf(f.Ctx, string(token), addr)
	require.NoError(t, f.Tokens.Approve(f.Ctx, string(token), addr, f.Keeper.ModuleAddress(), balance))
}

// Balance returns addr's ledger balance of token
func (f Fixture) Balance(addr sdk.AccAddress, token types.Token) math.Int {
	return f.Tokens.BalanceOf(f.Ctx, string(token), addr)
}

// CreatePair funds creator and creates the tokenA/tokenB pair seeded with
// amountA/amountB.
func (f Fixture) CreatePair(t testing.TB, creator sdk.AccAddress, tokenA, tokenB types.Token, amountA, amountB math.Int) types.Pair {
	require.NoError(t, f.Tokens.Mint(f.Ctx, string(tokenA), creator, amountA))
	require.NoError(t, f.Tokens.Mint(f.Ctx, string(tokenB), creator, amountB))
	f.Approve(t, creator, tokenA)
	f.Approve(t, creator, tokenB)

	pair, _, err := f.Keeper.CreatePair(f.Ctx, creator, tokenA, tokenB, amountA, amountB)
	require.NoError(t, err)
	return pair
}

// SetParams overrides the fixture's params
func (f Fixture) SetParams(t testing.TB, mutate func(*types.Params)) {
	params, err := f.Keeper.GetParams(f.Ctx)
	require.NoError(t, err)
	mutate(&params)
	require.NoError(t, f.Keeper.SetParams(f.Ctx, params))
}

// Addr returns a deterministic test account address
func Addr(name string) sdk.AccAddress {
	return authtypes.NewModuleAddress("test/" + name)
}
