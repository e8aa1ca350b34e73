package main

import (
	"github.com/spf13/cobra"

	"library-backend/internal/platform/db"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables from the embedded schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, log, conn, err := bootstrap()
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := db.Migrate(cmd.Context(), conn); err != nil {
				return err
			}
			log.WithField("statements", len(db.Statements())).Info("schema up to date")
			return nil
		},
	}
}
