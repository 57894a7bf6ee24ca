package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	govtypes "github.com/cosmos/cosmos-sdk/x/gov/types"

	"github.com/paw-chain/cfmm/x/cfmm/confidential"
	cfmmkeeper "github.com/paw-chain/cfmm/x/cfmm/keeper"
	cfmmtypes "github.com/paw-chain/cfmm/x/cfmm/types"
	tokenkeeper "github.com/paw-chain/cfmm/x/token/keeper"
	tokentypes "github.com/paw-chain/cfmm/x/token/types"
)

var _ sdk.InvariantRegistry = (*App)(nil)

// App hosts the token ledger and the cfmm module over a commit multistore.
// Calls are serialized: each runs to completion on its own cache branch and
// is committed to the working state only when it succeeds.
type App struct {
	logger log.Logger
	cms    storetypes.CommitMultiStore
	keys   map[string]*storetypes.KVStoreKey

	TokenKeeper tokenkeeper.Keeper
	CFMMKeeper  cfmmkeeper.Keeper
	// Sealer is set when a confidential master key is configured.
	Sealer *confidential.Sealer

	sink            EventSink
	archiveTimeout  time.Duration
	checkInvariants bool
	invariants      []invariantRoute

	mu       sync.Mutex
	height   int64
	sequence uint64
}

type invariantRoute struct {
	route string
	check sdk.Invariant
}

// NewApp mounts the module stores on db, loads the latest committed version
// and wires the keepers. sink may be nil.
func NewApp(logger log.Logger, db dbm.DB, cfg Config, sink EventSink) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	keys := storetypes.NewKVStoreKeys(tokentypes.StoreKey, cfmmtypes.StoreKey)
	cms := store.NewCommitMultiStore(db, logger, metrics.NewNoOpMetrics())
	for _, key := range keys {
		cms.MountStoreWithDB(key, storetypes.StoreTypeIAVL, nil)
	}
	if err := cms.LoadLatestVersion(); err != nil {
		return nil, fmt.Errorf("load latest version: %w", err)
	}

	a := &App{
		logger:          logger.With("module", "app"),
		cms:             cms,
		keys:            keys,
		sink:            sink,
		archiveTimeout:  cfg.Indexer.ArchiveTimeout,
		checkInvariants: cfg.CFMM.CheckInvariants,
		height:          cms.LastCommitID().Version + 1,
	}

	a.TokenKeeper = tokenkeeper.NewKeeper(keys[tokentypes.StoreKey])
	a.CFMMKeeper = cfmmkeeper.NewKeeper(
		keys[cfmmtypes.StoreKey],
		a.TokenKeeper,
		authtypes.NewModuleAddress(govtypes.ModuleName).String(),
	)

	masterKey, err := cfg.SealerMasterKey()
	if err != nil {
		return nil, err
	}
	if masterKey != nil {
		sealer, err := confidential.NewSealer(masterKey)
		if err != nil {
			return nil, err
		}
		a.Sealer = sealer
		a.CFMMKeeper = a.CFMMKeeper.WithDecryptor(sealer)
	}

	cfmmkeeper.RegisterInvariants(a, a.CFMMKeeper)
	return a, nil
}

// RegisterRoute implements sdk.InvariantRegistry
func (a *App) RegisterRoute(moduleName, route string, invar sdk.Invariant) {
	a.invariants = append(a.invariants, invariantRoute{
		route: moduleName + "/" + route,
		check: invar,
	})
	sort.Slice(a.invariants, func(i, j int) bool { return a.invariants[i].route < a.invariants[j].route })
}

// Height returns the height the next call executes at.
func (a *App) Height() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.height
}

// Execute runs fn as one atomic top-level call at blockTime. Either every
// effect of fn is applied or none is; the events of a committed call are
// returned and handed to the event sink. Archiving is bounded by the
// configured archive timeout.
func (a *App) Execute(blockTime time.Time, fn func(ctx sdk.Context) error) (sdk.Events, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	ctx := a.newContext(a.cms, blockTime)
	cacheCtx, write := ctx.CacheContext()
	cacheCtx, flushMetrics := cfmmkeeper.DeferMetrics(cacheCtx)

	err := fn(cacheCtx)
	if err == nil && a.checkInvariants {
		err = a.assertInvariants(cacheCtx)
	}
	if err != nil {
		a.logger.Info("call failed",
			"height", a.height,
			"class", cfmmtypes.Classify(err),
			"error", err,
		)
		return nil, err
	}
	write()
	flushMetrics()
	a.sequence++

	events := cacheCtx.EventManager().Events()
	if a.sink != nil {
		call := CallInfo{Height: a.height, BlockTime: blockTime, Sequence: a.sequence}
		archiveCtx, cancel := context.WithTimeout(context.Background(), a.archiveTimeout)
		err := a.sink.Archive(archiveCtx, call, toABCI(events))
		cancel()
		if err != nil {
			a.logger.Error("failed to archive events",
				"height", call.Height,
				"sequence", call.Sequence,
				"error", err,
			)
		}
	}
	return events, nil
}

// Query runs fn against a throwaway branch of the working state.
func (a *App) Query(blockTime time.Time, fn func(ctx sdk.Context) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return fn(a.newContext(a.cms.CacheMultiStore(), blockTime))
}

// Commit persists the working state as a new version and advances the height.
func (a *App) Commit() storetypes.CommitID {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.cms.Commit()
	a.height = id.Version + 1
	a.sequence = 0
	a.logger.Debug("committed", "version", id.Version, "hash", fmt.Sprintf("%X", id.Hash))
	return id
}

// CheckInvariants runs every registered invariant against the working state.
func (a *App) CheckInvariants(blockTime time.Time) error {
	return a.Query(blockTime, a.assertInvariants)
}

func (a *App) assertInvariants(ctx sdk.Context) error {
	for _, inv := range a.invariants {
		if msg, broken := inv.check(ctx); broken {
			return cfmmtypes.ErrInvariantViolation.Wrap(msg)
		}
	}
	return nil
}

func (a *App) newContext(ms storetypes.MultiStore, blockTime time.Time) sdk.Context {
	header := cmtproto.Header{Height: a.height, Time: blockTime}
	return sdk.NewContext(ms, header, false, a.logger)
}
