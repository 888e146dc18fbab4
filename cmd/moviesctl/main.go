// Command moviesctl administers the movie catalog database: it applies
// migrations, loads seed data and prints the catalog.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Clark-Hu/movie-catalog/internal/config"
	"github.com/Clark-Hu/movie-catalog/internal/store"
)

var (
	flagDBURL   string
	flagTimeout time.Duration

	// st is opened by the PreRunE of commands that talk to the database and
	// closed after the command finishes.
	st *store.Store
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "moviesctl",
	Short:         "Administer the movie catalog database",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if st != nil {
			st.Close()
			st = nil
		}
	},
}

func init() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	rootCmd.PersistentFlags().StringVar(&flagDBURL, "db-url", os.Getenv("DB_URL"), "Postgres connection string (default $DB_URL)")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 30*time.Second, "database connect timeout")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(listCmd)
}

// requireStore is the PreRunE of every database command; help and completion
// never reach it.
func requireStore(cmd *cobra.Command, args []string) error {
	return openStore(cmd.Context())
}

func openStore(ctx context.Context) error {
	if flagDBURL == "" {
		return fmt.Errorf("--db-url or DB_URL is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logger := log.New(os.Stderr, "[moviesctl] ", log.LstdFlags)
	var err error
	st, err = store.New(ctx, flagDBURL, store.Options{MaxConns: 4, ConnTimeout: flagTimeout, Logger: logger})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	return nil
}
