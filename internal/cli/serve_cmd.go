package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/freenote/freenote/internal/config"
	"github.com/freenote/freenote/internal/logging"
	"github.com/freenote/freenote/internal/server"
	"github.com/freenote/freenote/internal/store"
	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a notes server",
		Long: heredoc.Doc(`
			Run a notes server that keeps each user's tree in SQLite or Postgres.

			Clients identify themselves with the X-Freenote-User header. When a
			token hash is configured every request must also carry the matching
			X-Freenote-Token; create the hash with "freenote serve hash-token".
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Config.Serve

			logger := app.Logger
			if app.Config.Log.File == "" {
				l, closer, err := logging.New(logging.Options{File: logging.Stderr, Level: app.Config.Log.Level})
				if err != nil {
					return err
				}
				defer closer.Close()
				logger = l
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			if cfg.TokenHash == "" {
				logger.Warn().Msg("no token hash configured; the API is open to anyone who can reach it")
			}
			srv := server.New(server.Options{Store: st, TokenHash: cfg.TokenHash, Logger: logger})
			logger.Info().Str("driver", cfg.Driver).Str("addr", cfg.Addr).Msg("starting server")
			return srv.ListenAndServe(ctx, cfg.Addr)
		},
	}

	def := config.Default().Serve
	cmd.Flags().String("addr", def.Addr, "listen address")
	cmd.Flags().String("driver", def.Driver, "storage driver: sqlite or postgres")
	cmd.Flags().String("db", def.DB, "SQLite database path")
	cmd.Flags().String("dsn", def.DSN, "Postgres connection string")
	cmd.Flags().String("token-hash", def.TokenHash, "bcrypt hash of the access token")

	cmd.AddCommand(newHashTokenCmd())

	return cmd
}

func openStore(ctx context.Context, cfg config.ServeConfig) (store.Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return store.OpenSQLite(cfg.DB)
	case config.DriverPostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("%s is required for the postgres driver", config.KeyServeDSN)
		}
		return store.OpenPostgres(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown driver %q", cfg.Driver)
	}
}

func newHashTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-token TOKEN",
		Short: "Print the bcrypt hash of an access token for serve.token_hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := server.HashToken(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
