package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Clark-Hu/movie-catalog/internal/domain"
	"github.com/Clark-Hu/movie-catalog/internal/repository"
)

// seedFile is the YAML layout accepted by "moviesctl seed".
type seedFile struct {
	Movies []seedMovie `yaml:"movies"`
}

type seedMovie struct {
	Title       string `yaml:"title"`
	Director    string `yaml:"director"`
	Rating      string `yaml:"rating"`
	ReleaseDate string `yaml:"release_date"`
	Description string `yaml:"description"`
}

var seedCmd = &cobra.Command{
	Use:     "seed <file.yaml>",
	Short:   "Insert movies from a YAML file, skipping titles already present",
	Example: `  moviesctl seed cmd/moviesctl/testdata/movies.yaml`,
	Args:    cobra.ExactArgs(1),
	PreRunE: requireStore,
	RunE:    runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	params, err := parseSeed(f)
	if err != nil {
		return err
	}

	movies := repository.New(st).Movies
	var created, skipped int
	for _, p := range params {
		if _, err := movies.GetByTitle(cmd.Context(), p.Title); err == nil {
			skipped++
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("look up %q: %w", p.Title, err)
		}
		if _, err := movies.Create(cmd.Context(), p); err != nil {
			return fmt.Errorf("create %q: %w", p.Title, err)
		}
		created++
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d movie(s), skipped %d existing\n", created, skipped)
	return nil
}

// parseSeed decodes a seed document into create params. Ratings are
// canonicalized and dates must use YYYY-MM-DD.
func parseSeed(r io.Reader) ([]repository.MovieCreateParams, error) {
	var doc seedFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode seed file: %w", err)
	}

	out := make([]repository.MovieCreateParams, 0, len(doc.Movies))
	for i, m := range doc.Movies {
		rating, err := domain.ParseRating(m.Rating)
		if err != nil {
			return nil, fmt.Errorf("movie %d (%q): %w", i+1, m.Title, err)
		}
		p := repository.MovieCreateParams{
			Title:       strings.TrimSpace(m.Title),
			Rating:      rating,
			Director:    nonEmpty(m.Director),
			Description: nonEmpty(m.Description),
		}
		if d := strings.TrimSpace(m.ReleaseDate); d != "" {
			t, err := time.Parse(domain.DateLayout, d)
			if err != nil {
				return nil, fmt.Errorf("movie %d (%q): release_date %q: %w", i+1, m.Title, d, err)
			}
			p.ReleaseDate = &t
		}
		out = append(out, p)
	}
	return out, nil
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
