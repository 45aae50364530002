package main

import (
	"errors"

	"github.com/aleister1102/changewatch/internal/datastore"
	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the most recent check cycles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cfg.StorageConfig.HistoryEnabled {
				return errors.New("cycle history is disabled (storage_config.history_enabled)")
			}
			db, err := datastore.NewHistoryDB(a.cfg.StorageConfig.HistoryDBPath, a.logger)
			if err != nil {
				return err
			}
			defer db.Close()

			entries, err := db.RecentCycles(contextOrBackground(cmd.Context()), limit)
			if err != nil {
				return err
			}
			return a.reporter.RenderHistory(entries)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of cycles to show")
	return cmd
}
