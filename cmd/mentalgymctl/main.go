// Command mentalgymctl runs one-off operator tasks against the MentalGym
// database: migrations, catalog sync, ad hoc analysis and weekly report runs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/mentalgym-backend/internal/app"
	"github.com/yungbote/mentalgym-backend/internal/data/db"
	"github.com/yungbote/mentalgym-backend/internal/data/repos"
	"github.com/yungbote/mentalgym-backend/internal/plans"
	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
)

var rootCmd = &cobra.Command{
	Use:           "mentalgymctl",
	Short:         "Operator tools for the MentalGym backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	app.LoadEnv()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.AddCommand(migrateCmd, dimensionsCmd, analyzeCmd, weeklyReportCmd)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// store is the subset of the app every subcommand needs.
type store struct {
	log   *logger.Logger
	db    *db.Service
	repos repos.Set
	plans *plans.Table
	cfg   app.Config
}

func openStore() (*store, error) {
	log, err := app.NewLogger()
	if err != nil {
		return nil, err
	}
	cfg := app.LoadConfig()
	table := plans.Default()
	if cfg.PlansFile != "" {
		if table, err = plans.Load(cfg.PlansFile); err != nil {
			log.Sync()
			return nil, err
		}
	}
	dbs, err := db.Open(log, cfg.DB)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("open db: %w", err)
	}
	return &store{log: log, db: dbs, repos: repos.NewSet(dbs.DB(), log), plans: table, cfg: cfg}, nil
}

func (s *store) Close() {
	if err := s.db.Close(); err != nil {
		s.log.Warn("DB close failed", "error", err)
	}
	s.log.Sync()
}
