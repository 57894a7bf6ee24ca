package app

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"

	cfmmtypes "github.com/paw-chain/cfmm/x/cfmm/types"
	tokentypes "github.com/paw-chain/cfmm/x/token/types"
)

// GenesisState is the raw genesis of every module, keyed by module name
type GenesisState map[string]json.RawMessage

// NewDefaultGenesisState returns an empty ledger and a cfmm module with the
// configured params.
func NewDefaultGenesisState(cfg Config) GenesisState {
	genesis := make(GenesisState)
	genesis[tokentypes.ModuleName] = mustMarshalJSON(tokentypes.DefaultGenesis())

	cfmmGenesis := cfmmtypes.DefaultGenesis()
	cfmmGenesis.Params = cfg.Params()
	genesis[cfmmtypes.ModuleName] = mustMarshalJSON(cfmmGenesis)
	return genesis
}

// ReadGenesisFile loads a genesis document written by WriteGenesisFile
func ReadGenesisFile(path string) (GenesisState, error) {
	bz, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var gs GenesisState
	if err := json.Unmarshal(bz, &gs); err != nil {
		return nil, fmt.Errorf("parse genesis %s: %w", path, err)
	}
	return gs, nil
}

// WriteGenesisFile stores gs as indented JSON
func WriteGenesisFile(path string, gs GenesisState) error {
	bz, err := json.MarshalIndent(gs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, bz, 0o600)
}

// Modules decodes and validates both module genesis states. A missing
// module section means its default genesis.
func (gs GenesisState) Modules() (tokentypes.GenesisState, cfmmtypes.GenesisState, error) {
	tokenGenesis := *tokentypes.DefaultGenesis()
	if raw, ok := gs[tokentypes.ModuleName]; ok {
		if err := json.Unmarshal(raw, &tokenGenesis); err != nil {
			return tokenGenesis, cfmmtypes.GenesisState{}, fmt.Errorf("%s genesis: %w", tokentypes.ModuleName, err)
		}
	}
	cfmmGenesis := *cfmmtypes.DefaultGenesis()
	if raw, ok := gs[cfmmtypes.ModuleName]; ok {
		if err := json.Unmarshal(raw, &cfmmGenesis); err != nil {
			return tokenGenesis, cfmmGenesis, fmt.Errorf("%s genesis: %w", cfmmtypes.ModuleName, err)
		}
	}
	if err := tokenGenesis.Validate(); err != nil {
		return tokenGenesis, cfmmGenesis, fmt.Errorf("%s genesis: %w", tokentypes.ModuleName, err)
	}
	if err := cfmmGenesis.Validate(); err != nil {
		return tokenGenesis, cfmmGenesis, fmt.Errorf("%s genesis: %w", cfmmtypes.ModuleName, err)
	}
	return tokenGenesis, cfmmGenesis, nil
}

// InitChain imports gs as one atomic call. The caller commits.
func (a *App) InitChain(genesisTime time.Time, gs GenesisState) error {
	tokenGenesis, cfmmGenesis, err := gs.Modules()
	if err != nil {
		return err
	}
	_, err = a.Execute(genesisTime, func(ctx sdk.Context) error {
		if err := a.TokenKeeper.InitGenesis(ctx, tokenGenesis); err != nil {
			return err
		}
		if err := a.CFMMKeeper.InitGenesis(ctx, cfmmGenesis); err != nil {
			return err
		}
		return a.assertInvariants(ctx)
	})
	return err
}

// ExportGenesis exports the working state of both modules.
func (a *App) ExportGenesis(blockTime time.Time) (GenesisState, error) {
	genesis := make(GenesisState)
	err := a.Query(blockTime, func(ctx sdk.Context) error {
		tokenGenesis, err := a.TokenKeeper.ExportGenesis(ctx)
		if err != nil {
			return err
		}
		cfmmGenesis, err := a.CFMMKeeper.ExportGenesis(ctx)
		if err != nil {
			return err
		}
		genesis[tokentypes.ModuleName] = mustMarshalJSON(tokenGenesis)
		genesis[cfmmtypes.ModuleName] = mustMarshalJSON(cfmmGenesis)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return genesis, nil
}

func mustMarshalJSON(v any) json.RawMessage {
	bz, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return bz
}
