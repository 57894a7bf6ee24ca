package app

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"cosmossdk.io/math"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/paw-chain/cfmm/x/cfmm/types"
)

// EnvPrefix prefixes every environment override, e.g. CFMM_CFMM_SWAP_FEE_BPS.
const EnvPrefix = "CFMM"

// Config is the host configuration read from app.toml and the environment.
type Config struct {
	Log     LogConfig
	CFMM    CFMMConfig
	Indexer IndexerConfig
}

// LogConfig selects the log level and output format
type LogConfig struct {
	Level string
	JSON  bool
}

// CFMMConfig carries the genesis params of the cfmm module and host options.
type CFMMConfig struct {
	SwapFeeBps          uint32
	ProtocolFeeShareBps uint32
	FeeRecipient        string
	FlashLoanFeeBps     uint32
	MinimumLiquidity    int64
	MaxHops             uint32

	// SealerKey is the hex master key for confidential amounts. Empty disables
	// the confidential entry points.
	SealerKey string

	// CheckInvariants runs every registered invariant before committing a call.
	CheckInvariants bool
}

// IndexerConfig points the event archive at a Postgres database. An empty
// DatabaseURL disables archiving.
type IndexerConfig struct {
	DatabaseURL  string
	MaxOpenConns int
	// ArchiveTimeout bounds how long a committed call waits on the archive.
	ArchiveTimeout time.Duration
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	params := types.DefaultParams()
	return Config{
		Log: LogConfig{Level: "info"},
		CFMM: CFMMConfig{
			SwapFeeBps:          params.SwapFeeBps,
			ProtocolFeeShareBps: params.ProtocolFeeShareBps,
			FeeRecipient:        params.FeeRecipient,
			FlashLoanFeeBps:     params.FlashLoanFeeBps,
			MinimumLiquidity:    params.MinimumLiquidity.Int64(),
			MaxHops:             params.MaxHops,
		},
		Indexer: IndexerConfig{MaxOpenConns: 4, ArchiveTimeout: 5 * time.Second},
	}
}

// LoadConfig reads the TOML file at path, when given, and applies CFMM_*
// environment overrides on top of the defaults.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	def := DefaultConfig()
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.json", def.Log.JSON)
	v.SetDefault("cfmm.swap_fee_bps", def.CFMM.SwapFeeBps)
	v.SetDefault("cfmm.protocol_fee_share_bps", def.CFMM.ProtocolFeeShareBps)
	v.SetDefault("cfmm.fee_recipient", def.CFMM.FeeRecipient)
	v.SetDefault("cfmm.flash_loan_fee_bps", def.CFMM.FlashLoanFeeBps)
	v.SetDefault("cfmm.minimum_liquidity", def.CFMM.MinimumLiquidity)
	v.SetDefault("cfmm.max_hops", def.CFMM.MaxHops)
	v.SetDefault("cfmm.sealer_key", "")
	v.SetDefault("cfmm.check_invariants", def.CFMM.CheckInvariants)
	v.SetDefault("indexer.database_url", def.Indexer.DatabaseURL)
	v.SetDefault("indexer.max_open_conns", def.Indexer.MaxOpenConns)
	v.SetDefault("indexer.archive_timeout", def.Indexer.ArchiveTimeout)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var (
		cfg  Config
		errs []error
	)
	toUint32 := func(key string) uint32 {
		n, err := cast.ToUint32E(v.Get(key))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return n
	}
	toBool := func(key string) bool {
		b, err := cast.ToBoolE(v.Get(key))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return b
	}

	cfg.Log.Level = cast.ToString(v.Get("log.level"))
	cfg.Log.JSON = toBool("log.json")

	cfg.CFMM.SwapFeeBps = toUint32("cfmm.swap_fee_bps")
	cfg.CFMM.ProtocolFeeShareBps = toUint32("cfmm.protocol_fee_share_bps")
	cfg.CFMM.FeeRecipient = cast.ToString(v.Get("cfmm.fee_recipient"))
	cfg.CFMM.FlashLoanFeeBps = toUint32("cfmm.flash_loan_fee_bps")
	minLiquidity, err := cast.ToInt64E(v.Get("cfmm.minimum_liquidity"))
	if err != nil {
		errs = append(errs, fmt.Errorf("cfmm.minimum_liquidity: %w", err))
	}
	cfg.CFMM.MinimumLiquidity = minLiquidity
	cfg.CFMM.MaxHops = toUint32("cfmm.max_hops")
	cfg.CFMM.SealerKey = cast.ToString(v.Get("cfmm.sealer_key"))
	cfg.CFMM.CheckInvariants = toBool("cfmm.check_invariants")

	cfg.Indexer.DatabaseURL = cast.ToString(v.Get("indexer.database_url"))
	maxConns, err := cast.ToIntE(v.Get("indexer.max_open_conns"))
	if err != nil {
		errs = append(errs, fmt.Errorf("indexer.max_open_conns: %w", err))
	}
	cfg.Indexer.MaxOpenConns = maxConns
	archiveTimeout, err := cast.ToDurationE(v.Get("indexer.archive_timeout"))
	if err != nil {
		errs = append(errs, fmt.Errorf("indexer.archive_timeout: %w", err))
	}
	cfg.Indexer.ArchiveTimeout = archiveTimeout

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("invalid config: %v", errs)
	}
	return cfg, cfg.Validate()
}

// Params converts the cfmm section into module params.
func (c Config) Params() types.Params {
	return types.Params{
		SwapFeeBps:          c.CFMM.SwapFeeBps,
		ProtocolFeeShareBps: c.CFMM.ProtocolFeeShareBps,
		FeeRecipient:        c.CFMM.FeeRecipient,
		FlashLoanFeeBps:     c.CFMM.FlashLoanFeeBps,
		MinimumLiquidity:    math.NewInt(c.CFMM.MinimumLiquidity),
		MaxHops:             c.CFMM.MaxHops,
	}
}

// SealerMasterKey decodes the confidential master key; nil when unset.
func (c Config) SealerMasterKey() ([]byte, error) {
	if c.CFMM.SealerKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.CFMM.SealerKey)
	if err != nil {
		return nil, fmt.Errorf("cfmm.sealer_key: %w", err)
	}
	return key, nil
}

// Validate checks the params and the sealer key encoding.
func (c Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return err
	}
	if _, err := c.SealerMasterKey(); err != nil {
		return err
	}
	if c.Indexer.MaxOpenConns < 0 {
		return fmt.Errorf("indexer.max_open_conns must be non-negative")
	}
	if c.Indexer.ArchiveTimeout <= 0 {
		return fmt.Errorf("indexer.archive_timeout must be positive")
	}
	return nil
}
