package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Clark-Hu/movie-catalog/internal/domain"
	"github.com/Clark-Hu/movie-catalog/internal/repository"
)

var (
	flagRatings string
	flagSort    string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the catalog, optionally filtered by rating",
	Example: `  moviesctl list
  moviesctl list --ratings PG,R --sort release_date`,
	Args:    cobra.NoArgs,
	PreRunE: requireStore,
	RunE:    runList,
}

func init() {
	listCmd.Flags().StringVar(&flagRatings, "ratings", "", "comma-separated ratings to include (default all)")
	listCmd.Flags().StringVar(&flagSort, "sort", string(domain.DefaultSort), "sort field: title or release_date")
}

func runList(cmd *cobra.Command, args []string) error {
	order, err := domain.ParseSortField(flagSort)
	if err != nil {
		return err
	}
	var ratings domain.RatingSet
	if flagRatings != "" {
		ratings = domain.ParseRatingSet(strings.Split(flagRatings, ","))
	}

	movies, err := repository.New(st).Movies.FindAllByRating(cmd.Context(), ratings, order)
	if err != nil {
		return fmt.Errorf("list movies: %w", err)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tRATING\tRELEASED\tDIRECTOR")
	for _, m := range movies {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.Title, m.Rating, m.ReleaseDateString(), m.DirectorName())
	}
	return tw.Flush()
}
