package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/mentalgym-backend/internal/data/db"
	"github.com/yungbote/mentalgym-backend/internal/data/seed"
	"github.com/yungbote/mentalgym-backend/internal/modules/insights"
	"github.com/yungbote/mentalgym-backend/internal/modules/notifications"
	"github.com/yungbote/mentalgym-backend/internal/platform/dbctx"
	"github.com/yungbote/mentalgym-backend/internal/platform/mail"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update every table",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()
		if err := db.AutoMigrateAll(s.db.DB()); err != nil {
			return err
		}
		s.log.Info("Migration complete")
		return nil
	},
}

var dimensionsCmd = &cobra.Command{
	Use:   "dimensions",
	Short: "Manage the skill dimension catalog",
}

var dimensionsSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Upsert practice modes and skill dimensions from a catalog file",
	Long: `Upsert practice modes and skill dimensions by key.

Without --file the built-in catalog is used. Rows absent from the catalog are
left untouched; mark them "active: false" to retire them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		catalog := seed.Default()
		if path != "" {
			loaded, err := seed.Load(path)
			if err != nil {
				return err
			}
			catalog = loaded
		}
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()
		dbc := dbctx.Context{Ctx: cmd.Context()}
		if err := seed.Sync(dbc, s.repos.PracticeMode, s.repos.SkillDimension, catalog); err != nil {
			return err
		}
		s.log.Info("Catalog synced", "practice_modes", len(catalog.PracticeModes), "dimensions", len(catalog.Dimensions))
		return nil
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Print a user's ungated blind spot analysis as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetString("user")
		userID, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("--user: %w", err)
		}
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()
		analysis, err := newInsights(s).Analyze(cmd.Context(), userID)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	},
}

var weeklyReportCmd = &cobra.Command{
	Use:   "weekly-report",
	Short: "Weekly blind spot report",
}

var weeklyReportRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Send this week's report to every eligible user now",
	Long: `Send the weekly report immediately. Users who already have a report for
the ISO week of --at (default now) are skipped, so reruns are safe.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		at := time.Now()
		if raw, _ := cmd.Flags().GetString("at"); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return fmt.Errorf("--at: %w", err)
			}
			at = parsed
		}
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()
		sender, err := mail.NewFromEnv(s.log)
		if err != nil {
			return err
		}
		n := notifications.New(notifications.UsecasesDeps{
			DB:       s.db.DB(),
			Log:      s.log,
			Config:   s.cfg.Notifications,
			Plans:    s.plans,
			Mail:     sender,
			Analyzer: newInsights(s),
			Users:    s.repos.User,
			Emails:   s.repos.BlindSpotEmail,
		})
		summary, err := n.RunWeekly(cmd.Context(), at)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "run %s week %d/%d: eligible=%d sent=%d skipped=%d failed=%d\n",
			summary.RunID, summary.Week, summary.Year, summary.Eligible, summary.Sent, summary.Skipped, summary.Failed)
		return nil
	},
}

func init() {
	dimensionsSyncCmd.Flags().String("file", "", "catalog YAML (default: built-in catalog)")
	dimensionsCmd.AddCommand(dimensionsSyncCmd)

	analyzeCmd.Flags().String("user", "", "user id")
	_ = analyzeCmd.MarkFlagRequired("user")

	weeklyReportRunCmd.Flags().String("at", "", "RFC3339 time that selects the ISO week (default now)")
	weeklyReportCmd.AddCommand(weeklyReportRunCmd)
}

func newInsights(s *store) insights.Usecases {
	return insights.New(insights.UsecasesDeps{
		DB:           s.db.DB(),
		Log:          s.log,
		Config:       s.cfg.Insights,
		Plans:        s.plans,
		Users:        s.repos.User,
		Sessions:     s.repos.TrainingSession,
		Scores:       s.repos.DrillScore,
		Dimensions:   s.repos.SkillDimension,
		Observations: s.repos.Observation,
	})
}
