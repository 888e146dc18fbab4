package main

import (
	"github.com/spf13/cobra"

	"github.com/Clark-Hu/movie-catalog/db"
)

var migrateCmd = &cobra.Command{
	Use:     "migrate",
	Short:   "Apply the embedded schema migrations",
	Args:    cobra.NoArgs,
	PreRunE: requireStore,
	RunE: func(cmd *cobra.Command, args []string) error {
		return st.Migrate(cmd.Context(), db.Migrations, db.MigrationsDir)
	},
}
