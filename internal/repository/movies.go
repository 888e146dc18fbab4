package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/movie-catalog/internal/domain"
)

// MoviesRepository provides persistence helpers for movie entities.
type MoviesRepository struct {
	pool *pgxpool.Pool
}

const movieColumns = `
    id::text,
    title,
    director,
    rating,
    release_date,
    description,
    created_at,
    updated_at
`

// MovieCreateParams bundles the recognized attributes of a new movie.
type MovieCreateParams struct {
	Title       string        `form:"title" validate:"required,max=255"`
	Director    *string       `form:"director" validate:"omitempty,max=255"`
	Rating      domain.Rating `form:"rating" validate:"required,mpa_rating"`
	ReleaseDate *time.Time    `form:"release_date"`
	Description *string       `form:"description"`
}

// MovieUpdateParams carries a partial attribute set. Nil fields are left untouched;
// the Clear flags null out optional columns.
type MovieUpdateParams struct {
	Title       *string        `form:"title" validate:"omitnil,min=1,max=255"`
	Director    *string        `form:"director" validate:"omitnil,min=1,max=255"`
	Rating      *domain.Rating `form:"rating" validate:"omitnil,mpa_rating"`
	ReleaseDate *time.Time     `form:"release_date"`
	Description *string        `form:"description"`

	ClearDirector    bool `form:"-"`
	ClearReleaseDate bool `form:"-"`
	ClearDescription bool `form:"-"`
}

// Empty reports whether the update would change nothing.
func (p MovieUpdateParams) Empty() bool {
	return p.Title == nil && p.Director == nil && p.Rating == nil && p.ReleaseDate == nil &&
		p.Description == nil && !p.ClearDirector && !p.ClearReleaseDate && !p.ClearDescription
}

// Create validates and inserts a new movie row and returns the stored entity.
func (r *MoviesRepository) Create(ctx context.Context, params MovieCreateParams) (domain.Movie, error) {
	params.Title = strings.TrimSpace(params.Title)
	params.Director = trimOptional(params.Director)
	params.Description = trimOptional(params.Description)
	if err := validateParams(params); err != nil {
		return domain.Movie{}, err
	}

	query := fmt.Sprintf(`
        INSERT INTO movies (title, director, rating, release_date, description)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING %s
    `, movieColumns)

	row := r.pool.QueryRow(ctx, query,
		params.Title, params.Director, string(params.Rating), dateOnly(params.ReleaseDate), params.Description)
	movie, err := scanMovie(row)
	if err != nil {
		return domain.Movie{}, fmt.Errorf("insert movie: %w", err)
	}
	return movie, nil
}

// GetByID fetches a movie by its identifier.
func (r *MoviesRepository) GetByID(ctx context.Context, id string) (domain.Movie, error) {
	if !validID(id) {
		return domain.Movie{}, ErrNotFound
	}
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE id = $1`, movieColumns)
	return r.getOne(ctx, query, id)
}

// GetByTitle fetches the earliest created movie carrying exactly this title.
func (r *MoviesRepository) GetByTitle(ctx context.Context, title string) (domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE title = $1 ORDER BY created_at, id LIMIT 1`, movieColumns)
	return r.getOne(ctx, query, title)
}

// FindAllByRating returns movies whose rating is in ratings, ordered ascending by
// the given field. An empty set applies no rating filter.
func (r *MoviesRepository) FindAllByRating(ctx context.Context, ratings domain.RatingSet, order domain.SortField) ([]domain.Movie, error) {
	orderBy, err := orderClause(order)
	if err != nil {
		return nil, err
	}

	queryBuilder := strings.Builder{}
	queryBuilder.WriteString("SELECT ")
	queryBuilder.WriteString(movieColumns)
	queryBuilder.WriteString(" FROM movies")

	args := make([]interface{}, 0, 1)
	if !ratings.IsAll() {
		args = append(args, ratings.Strings())
		queryBuilder.WriteString(" WHERE rating = ANY($1)")
	}
	queryBuilder.WriteString(" ORDER BY ")
	queryBuilder.WriteString(orderBy)

	return r.getMany(ctx, queryBuilder.String(), args...)
}

// FindBySimilarDirector returns every movie directed by director, including the
// movie the search started from. A blank director matches nothing.
func (r *MoviesRepository) FindBySimilarDirector(ctx context.Context, director string) ([]domain.Movie, error) {
	director = strings.TrimSpace(director)
	if director == "" {
		return []domain.Movie{}, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE director = $1 ORDER BY title ASC, id ASC`, movieColumns)
	return r.getMany(ctx, query, director)
}

// Update merges a partial attribute set into an existing movie.
func (r *MoviesRepository) Update(ctx context.Context, id string, params MovieUpdateParams) (domain.Movie, error) {
	if !validID(id) {
		return domain.Movie{}, ErrNotFound
	}
	if params.Title != nil {
		title := strings.TrimSpace(*params.Title)
		params.Title = &title
	}
	if params.Director != nil {
		director := strings.TrimSpace(*params.Director)
		params.Director = &director
	}
	if err := validateParams(params); err != nil {
		return domain.Movie{}, err
	}

	var rating *string
	if params.Rating != nil {
		value := string(*params.Rating)
		rating = &value
	}

	query := fmt.Sprintf(`
        UPDATE movies
        SET title = COALESCE($2, title),
            director = CASE WHEN $3::boolean THEN NULL ELSE COALESCE($4, director) END,
            rating = COALESCE($5, rating),
            release_date = CASE WHEN $6::boolean THEN NULL ELSE COALESCE($7, release_date) END,
            description = CASE WHEN $8::boolean THEN NULL ELSE COALESCE($9, description) END,
            updated_at = now()
        WHERE id = $1
        RETURNING %s
    `, movieColumns)

	return r.getOne(ctx, query, id,
		params.Title,
		params.ClearDirector, params.Director,
		rating,
		params.ClearReleaseDate, dateOnly(params.ReleaseDate),
		params.ClearDescription, params.Description,
	)
}

// Delete removes a movie. Unknown ids yield ErrNotFound.
func (r *MoviesRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM movies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete movie: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of stored movies.
func (r *MoviesRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM movies`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count movies: %w", err)
	}
	return n, nil
}

func (r *MoviesRepository) getOne(ctx context.Context, query string, args ...interface{}) (domain.Movie, error) {
	movie, err := scanMovie(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, err
	}
	return movie, nil
}

func (r *MoviesRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]domain.Movie, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Movie, 0)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func orderClause(field domain.SortField) (string, error) {
	if field == "" {
		field = domain.DefaultSort
	}
	switch field {
	case domain.SortByTitle:
		return "title ASC, id ASC", nil
	case domain.SortByReleaseDate:
		return "release_date ASC NULLS LAST, title ASC, id ASC", nil
	default:
		return "", fmt.Errorf("unsupported sort field %q", field)
	}
}

func scanMovie(row pgx.Row) (domain.Movie, error) {
	var (
		movie       domain.Movie
		rating      string
		releaseDate *time.Time
	)

	err := row.Scan(
		&movie.ID,
		&movie.Title,
		&movie.Director,
		&rating,
		&releaseDate,
		&movie.Description,
		&movie.CreatedAt,
		&movie.UpdatedAt,
	)
	if err != nil {
		return domain.Movie{}, err
	}

	movie.Rating = domain.Rating(rating)
	if releaseDate != nil {
		d := releaseDate.UTC()
		movie.ReleaseDate = &d
	}
	return movie, nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func trimOptional(ptr *string) *string {
	if ptr == nil {
		return nil
	}
	val := strings.TrimSpace(*ptr)
	if val == "" {
		return nil
	}
	return &val
}

func dateOnly(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}
