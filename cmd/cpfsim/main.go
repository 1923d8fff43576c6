package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	postgresRepo "github.com/antscrawling/cpfsim/internal/adapter/repository/postgres"
	"github.com/antscrawling/cpfsim/internal/app"
	"github.com/antscrawling/cpfsim/internal/infrastructure/config"
	"github.com/antscrawling/cpfsim/internal/infrastructure/logger"
	"github.com/antscrawling/cpfsim/internal/infrastructure/metrics"
	"github.com/antscrawling/cpfsim/internal/usecase"
)

var version = "dev"

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cli holds the persistent flags and output streams shared by every command.
type cli struct {
	out     io.Writer
	errOut  io.Writer
	envFile string
	store   string
	level   string
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{out: out, errOut: errOut}

	rootCmd := &cobra.Command{
		Use:           "cpfsim",
		Short:         "CPF retirement ledger simulator",
		Long:          `Simulates CPF account balances month by month and records every movement in an append-only ledger.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.PersistentFlags().StringVar(&c.envFile, "env-file", "", "Load environment variables from this file")
	rootCmd.PersistentFlags().StringVar(&c.store, "store", "", "Override STORE_DRIVER (memory, sqlite, postgres)")
	rootCmd.PersistentFlags().StringVar(&c.level, "log-level", "", "Override LOG_LEVEL")

	rootCmd.AddCommand(
		c.runCmd(),
		c.rowsCmd(),
		c.entriesCmd(),
		c.consistencyCmd(),
		c.rulesCmd(),
		c.migrateCmd(),
		c.versionCmd(),
	)

	return rootCmd
}

func (c *cli) config() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(c.envFile)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if c.store != "" {
		cfg.StoreDriver = c.store
		if err := cfg.Validate(); err != nil {
			return nil, zerolog.Nop(), err
		}
	}
	if c.level != "" {
		cfg.LogLevel = c.level
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Output:  c.errOut,
		Service: "cpfsim",
	})
	return cfg, log, nil
}

// session is an opened backend plus the use cases built on it.
type session struct {
	cfg        *config.Config
	log        zerolog.Logger
	backend    *app.Backend
	simulation *usecase.SimulationUseCase
	ledger     *usecase.LedgerUseCase
}

func (c *cli) open(ctx context.Context) (*session, error) {
	cfg, log, err := c.config()
	if err != nil {
		return nil, err
	}

	backend, err := app.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	m := metrics.New(prometheus.NewRegistry())
	return &session{
		cfg:        cfg,
		log:        log,
		backend:    backend,
		simulation: usecase.NewSimulationUseCase(backend.Repo, backend.Refs, postgresRepo.NewULIDGenerator(), m, log),
		ledger:     usecase.NewLedgerUseCase(backend.Repo),
	}, nil
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(c.out, "cpfsim %s\n", version)
			return nil
		},
	}
}
