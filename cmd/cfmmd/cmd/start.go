package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"cosmossdk.io/log"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/paw-chain/cfmm/app"
	"github.com/paw-chain/cfmm/app/health"
	"github.com/paw-chain/cfmm/indexer"
)

const defaultListen = "127.0.0.1:36661"

// StartCmd runs the host: state on disk, optional event archive, and the
// health and metrics endpoints.
func StartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the host and serve health and metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := app.NewLogger(cmd.ErrOrStderr(), cfg.Log)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, closer, checks, err := openApp(ctx, cmd, cfg, logger, true)
			if err != nil {
				return err
			}
			defer closer()

			if a.Height() == 1 {
				if err := initChain(cmd, cfg, a); err != nil {
					return err
				}
			}

			listen, err := cmd.Flags().GetString(flagListen)
			if err != nil {
				return err
			}
			srv := &http.Server{
				Addr:              listen,
				Handler:           a.NewRouter(health.DefaultConfig(), checks),
				ReadHeaderTimeout: 5 * time.Second,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logger.Info("serving health and metrics", "addr", listen, "height", a.Height())
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
	cmd.Flags().String(flagHome, defaultHome(), "directory holding the state database")
	cmd.Flags().String(flagGenesis, "", "genesis file imported on first start; defaults to an empty ledger")
	cmd.Flags().String(flagListen, defaultListen, "address of the health and metrics server")
	return cmd
}

// ExportCmd prints the committed state as a genesis document
func ExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the committed state as genesis JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			a, closer, _, err := openApp(cmd.Context(), cmd, cfg, log.NewNopLogger(), false)
			if err != nil {
				return err
			}
			defer closer()

			gs, err := a.ExportGenesis(time.Now().UTC())
			if err != nil {
				return err
			}
			bz, err := json.MarshalIndent(gs, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(bz))
			return err
		},
	}
	cmd.Flags().String(flagHome, defaultHome(), "directory holding the state database")
	return cmd
}

func openApp(ctx context.Context, cmd *cobra.Command, cfg app.Config, logger log.Logger, withArchive bool) (*app.App, func(), map[string]health.CheckFunc, error) {
	home, err := cmd.Flags().GetString(flagHome)
	if err != nil {
		return nil, nil, nil, err
	}
	db, err := dbm.NewDB("application", dbm.GoLevelDBBackend, filepath.Join(home, "data"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open state database: %w", err)
	}
	closers := []func() error{db.Close}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Error("close failed", "error", err)
			}
		}
	}

	checks := make(map[string]health.CheckFunc)
	var sink app.EventSink
	if withArchive && cfg.Indexer.DatabaseURL != "" {
		zl := zerolog.New(cmd.ErrOrStderr()).With().Timestamp().Str("module", "indexer").Logger()
		pg, err := indexer.Open(ctx, indexer.Config{
			URL:            cfg.Indexer.DatabaseURL,
			MaxConnections: cfg.Indexer.MaxOpenConns,
			MaxIdle:        cfg.Indexer.MaxOpenConns,
			ConnMaxLife:    30 * time.Minute,
		}, zl)
		if err != nil {
			closeAll()
			return nil, nil, nil, err
		}
		closers = append(closers, pg.Close)
		if err := pg.InitSchema(ctx); err != nil {
			closeAll()
			return nil, nil, nil, err
		}
		sink = pg
		checks["archive"] = pg.Ping
	}

	a, err := app.NewApp(logger, db, cfg, sink)
	if err != nil {
		closeAll()
		return nil, nil, nil, err
	}
	return a, closeAll, checks, nil
}

func initChain(cmd *cobra.Command, cfg app.Config, a *app.App) error {
	path, err := cmd.Flags().GetString(flagGenesis)
	if err != nil {
		return err
	}
	gs := app.NewDefaultGenesisState(cfg)
	if path != "" {
		if gs, err = app.ReadGenesisFile(path); err != nil {
			return err
		}
	}
	if err := a.InitChain(time.Now().UTC(), gs); err != nil {
		return fmt.Errorf("init chain: %w", err)
	}
	a.Commit()
	return nil
}

func defaultHome() string {
	if home := os.Getenv("CFMM_HOME"); home != "" {
		return home
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return ".cfmmd"
	}
	return filepath.Join(userHome, ".cfmmd")
}
