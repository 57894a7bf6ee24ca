package indexer

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/paw-chain/cfmm/app"
)

//go:embed schema.sql
var schemaFile embed.FS

var _ app.EventSink = (*Postgres)(nil)

// Config holds database configuration
type Config struct {
	URL            string
	MaxConnections int
	MaxIdle        int
	ConnMaxLife    time.Duration
}

// Postgres archives committed calls into a Postgres database
type Postgres struct {
	db     *sql.DB
	logger zerolog.Logger
}

// Open connects to the database and verifies the connection
func Open(ctx context.Context, cfg Config, logger zerolog.Logger) (*Postgres, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(cfg.ConnMaxLife)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().Msg("connected to event archive")
	return &Postgres{db: db, logger: logger}, nil
}

// InitSchema creates the archive tables when missing
func (p *Postgres) InitSchema(ctx context.Context) error {
	schema, err := schemaFile.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}
	if _, err := p.db.ExecContext(ctx, string(schema)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Ping reports whether the database is reachable
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close closes the connection pool
func (p *Postgres) Close() error {
	return p.db.Close()
}

// Archive implements app.EventSink. A call archived again at the same
// height and sequence replaces the earlier rows, so replaying uncommitted
// calls after a restart does not duplicate them.
func (p *Postgres) Archive(ctx context.Context, call app.CallInfo, events []abci.Event) error {
	batch, err := Flatten(uuid.New(), call, events)
	if err != nil {
		return err
	}
	if err := p.write(ctx, batch); err != nil {
		return fmt.Errorf("archive call %d/%d: %w", call.Height, call.Sequence, err)
	}
	p.logger.Debug().
		Int64("height", batch.Height).
		Uint64("sequence", batch.Sequence).
		Int("events", len(batch.Events)).
		Int("swaps", len(batch.Swaps)).
		Msg("archived call")
	return nil
}

func (p *Postgres) write(ctx context.Context, b Batch) (err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				p.logger.Error().Err(rbErr).Msg("rollback failed")
			}
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM cfmm_calls WHERE height = $1 AND sequence = $2`,
		b.Height, int64(b.Sequence),
	); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO cfmm_calls (call_id, height, sequence, block_time)
		VALUES ($1, $2, $3, $4)
	`, b.CallID.String(), b.Height, int64(b.Sequence), b.BlockTime); err != nil {
		return err
	}

	for _, ev := range b.Events {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO cfmm_events (call_id, event_index, event_type, attributes)
			VALUES ($1, $2, $3, $4)
		`, b.CallID.String(), ev.Index, ev.Type, string(ev.Attributes)); err != nil {
			return err
		}
	}

	for _, pair := range b.Pairs {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO cfmm_pairs (pair_id, address, token0, token1, creator, created_height)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (pair_id) DO UPDATE SET
				address = EXCLUDED.address,
				token0 = EXCLUDED.token0,
				token1 = EXCLUDED.token1,
				creator = EXCLUDED.creator,
				created_height = EXCLUDED.created_height
		`, int64(pair.PairID), pair.Address, pair.Token0, pair.Token1, pair.Creator, b.Height); err != nil {
			return err
		}
	}

	for _, r := range b.Reserves {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO cfmm_pairs (pair_id, reserve0, reserve1, updated_height)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (pair_id) DO UPDATE SET
				reserve0 = EXCLUDED.reserve0,
				reserve1 = EXCLUDED.reserve1,
				updated_height = EXCLUDED.updated_height
		`, int64(r.PairID), r.Reserve0, r.Reserve1, b.Height); err != nil {
			return err
		}
	}

	for _, s := range b.Swaps {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO cfmm_swaps (call_id, event_index, pair_id, payer, recipient, token_in, token_out,
				amount_in, amount_out, lp_fee, protocol_fee, block_time)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`, b.CallID.String(), s.EventIndex, int64(s.PairID), s.Payer, s.Recipient, s.TokenIn, s.TokenOut,
			s.AmountIn, s.AmountOut, s.LPFee, s.ProtocolFee, b.BlockTime); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LastArchived returns the position of the most recently archived call, or
// zeros for an empty archive.
func (p *Postgres) LastArchived(ctx context.Context) (height int64, sequence uint64, err error) {
	var seq int64
	err = p.db.QueryRowContext(ctx,
		`SELECT height, sequence FROM cfmm_calls ORDER BY height DESC, sequence DESC LIMIT 1`,
	).Scan(&height, &seq)
	if err == sql.ErrNoRows {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, err
	}
	return height, uint64(seq), nil
}

// PairReserves returns the archived reserves of a pair as decimal strings
func (p *Postgres) PairReserves(ctx context.Context, pairID uint64) (reserve0, reserve1 string, err error) {
	err = p.db.QueryRowContext(ctx,
		`SELECT reserve0::TEXT, reserve1::TEXT FROM cfmm_pairs WHERE pair_id = $1`, int64(pairID),
	).Scan(&reserve0, &reserve1)
	return reserve0, reserve1, err
}

// SwapCount returns the number of archived swap hops through a pair
func (p *Postgres) SwapCount(ctx context.Context, pairID uint64) (int, error) {
	var n int
	err := p.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cfmm_swaps WHERE pair_id = $1`, int64(pairID),
	).Scan(&n)
	return n, err
}

// Reset truncates every archive table
func (p *Postgres) Reset(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `TRUNCATE TABLE cfmm_swaps, cfmm_events, cfmm_pairs, cfmm_calls CASCADE`)
	return err
}
