package httpserver

import (
	"net/url"
	"strings"
	"time"

	"github.com/Clark-Hu/movie-catalog/internal/domain"
	"github.com/Clark-Hu/movie-catalog/internal/repository"
)

var movieFields = []string{"title", "director", "rating", "release_date", "description"}

// movieForm holds raw form input so a rejected submission can be re-rendered as typed.
type movieForm struct {
	Title       string
	Director    string
	Rating      string
	ReleaseDate string
	Description string

	present map[string]bool
}

// readMovieForm accepts both nested "movie[title]" and bare "title" field names.
func readMovieForm(values url.Values) movieForm {
	form := movieForm{present: make(map[string]bool, len(movieFields))}
	for _, field := range movieFields {
		raw, ok := lookupField(values, field)
		if !ok {
			continue
		}
		form.present[field] = true
		switch field {
		case "title":
			form.Title = raw
		case "director":
			form.Director = raw
		case "rating":
			form.Rating = raw
		case "release_date":
			form.ReleaseDate = raw
		case "description":
			form.Description = raw
		}
	}
	return form
}

func lookupField(values url.Values, field string) (string, bool) {
	if vals, ok := values["movie["+field+"]"]; ok && len(vals) > 0 {
		return vals[0], true
	}
	if vals, ok := values[field]; ok && len(vals) > 0 {
		return vals[0], true
	}
	return "", false
}

func formFromMovie(m domain.Movie) movieForm {
	return movieForm{
		Title:       m.Title,
		Director:    m.DirectorName(),
		Rating:      string(m.Rating),
		ReleaseDate: m.ReleaseDateString(),
		Description: m.DescriptionText(),
	}
}

// createParams passes the submitted attributes through; the repository validates them.
func (f movieForm) createParams() (repository.MovieCreateParams, error) {
	params := repository.MovieCreateParams{
		Title:       f.Title,
		Rating:      normalizeRating(f.Rating),
		Director:    optionalString(f.Director),
		Description: optionalString(f.Description),
	}
	date, err := parseDate(f.ReleaseDate)
	if err != nil {
		return params, err
	}
	params.ReleaseDate = date
	return params, nil
}

// updateParams includes only the fields the request carried. A submitted blank
// optional field clears the stored value.
func (f movieForm) updateParams() (repository.MovieUpdateParams, error) {
	var params repository.MovieUpdateParams
	if f.present["title"] {
		title := f.Title
		params.Title = &title
	}
	if f.present["director"] {
		if d := optionalString(f.Director); d != nil {
			params.Director = d
		} else {
			params.ClearDirector = true
		}
	}
	if f.present["rating"] {
		rating := normalizeRating(f.Rating)
		params.Rating = &rating
	}
	if f.present["release_date"] {
		date, err := parseDate(f.ReleaseDate)
		if err != nil {
			return params, err
		}
		if date != nil {
			params.ReleaseDate = date
		} else {
			params.ClearReleaseDate = true
		}
	}
	if f.present["description"] {
		if d := optionalString(f.Description); d != nil {
			params.Description = d
		} else {
			params.ClearDescription = true
		}
	}
	return params, nil
}

// normalizeRating canonicalizes known ratings and leaves anything else for validation to reject.
func normalizeRating(raw string) domain.Rating {
	if r, err := domain.ParseRating(raw); err == nil {
		return r
	}
	return domain.Rating(strings.TrimSpace(raw))
}

func parseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(domain.DateLayout, raw)
	if err != nil {
		return nil, &repository.ValidationError{Fields: map[string]string{"release_date": "must follow YYYY-MM-DD format"}}
	}
	return &t, nil
}

func optionalString(raw string) *string {
	val := strings.TrimSpace(raw)
	if val == "" {
		return nil
	}
	return &val
}

// parseRatingsParam understands "ratings=PG", repeated "ratings", comma lists and
// checkbox-style "ratings[PG]=1". An unchecked box ("0", "false", "off" or empty)
// is not selected, and a blank value or unchecked box alone means all ratings.
// ok is false when the request carries no ratings, or only names no known
// rating, so the session filter is kept.
func parseRatingsParam(values url.Values) (domain.RatingSet, bool) {
	var (
		raw     []string
		cleared bool
	)
	for key, vals := range values {
		switch {
		case key == "ratings" || key == "ratings[]":
			for _, v := range vals {
				for _, token := range strings.Split(v, ",") {
					if strings.TrimSpace(token) == "" {
						cleared = true
						continue
					}
					raw = append(raw, token)
				}
			}
		case strings.HasPrefix(key, "ratings[") && strings.HasSuffix(key, "]"):
			if checked(vals) {
				raw = append(raw, strings.TrimSuffix(strings.TrimPrefix(key, "ratings["), "]"))
			} else {
				cleared = true
			}
		}
	}
	set := domain.ParseRatingSet(raw)
	if len(set) == 0 && !cleared {
		return nil, false
	}
	return set, true
}

func checked(vals []string) bool {
	for _, v := range vals {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "", "0", "false", "off":
		default:
			return true
		}
	}
	return false
}

// parseSortParam returns the requested sort field; unknown values are ignored.
func parseSortParam(values url.Values) (domain.SortField, bool) {
	raw := strings.TrimSpace(values.Get("sort"))
	if raw == "" {
		return "", false
	}
	field, err := domain.ParseSortField(raw)
	if err != nil {
		return "", false
	}
	return field, true
}
