package cmd

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/employee-api/internal/store"
	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	migrate.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			logger, closer, err := opts.newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closer.Close()

			db, err := store.Open(cmd.Context(), cfg.Database, logger)
			if err != nil {
				return err
			}
			defer store.Close(db)

			results, err := store.Migrate(cmd.Context(), db, cfg.Database.Driver)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, "schema is up to date")
				return nil
			}
			for _, r := range results {
				fmt.Fprintf(out, "OK   %s (%s)\n", filepath.Base(r.Source.Path), r.Duration)
			}
			return nil
		},
	})

	migrate.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the state of each migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			logger, closer, err := opts.newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closer.Close()

			db, err := store.Open(cmd.Context(), cfg.Database, logger)
			if err != nil {
				return err
			}
			defer store.Close(db)

			statuses, err := store.MigrationStatus(cmd.Context(), db, cfg.Database.Driver)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "VERSION\tMIGRATION\tSTATE\tAPPLIED AT")
			for _, s := range statuses {
				applied := "-"
				if !s.AppliedAt.IsZero() {
					applied = s.AppliedAt.Format("2006-01-02 15:04:05")
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.Source.Version, filepath.Base(s.Source.Path), s.State, applied)
			}
			return tw.Flush()
		},
	})

	return migrate
}
