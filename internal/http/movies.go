package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Clark-Hu/movie-catalog/internal/domain"
	"github.com/Clark-Hu/movie-catalog/internal/repository"
)

const moviesPath = "/movies"

const (
	templateIndex         = "index"
	templateShow          = "show"
	templateNew           = "new"
	templateEdit          = "edit"
	templateSearchSimilar = "search_similar"
	templateError         = "error"
)

type indexView struct {
	Movies     []domain.Movie
	AllRatings []domain.Rating
	Selected   domain.RatingSet
	Sort       domain.SortField
	Total      int64
	Flashes    []string
}

type movieView struct {
	Movie   domain.Movie
	Flashes []string
}

type similarView struct {
	Movie   domain.Movie
	Movies  []domain.Movie
	Flashes []string
}

type formView struct {
	Movie      domain.Movie
	Form       movieForm
	Errors     map[string]string
	AllRatings []domain.Rating
	Action     string
	Method     string
	Flashes    []string
}

type errorView struct {
	Status     int
	StatusText string
	Message    string
	Flashes    []string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Malformed request parameters")
		return
	}

	state, err := s.sessions.Load(r)
	if err != nil {
		s.logger.Printf("load session: %v", err)
	}
	if field, ok := parseSortParam(r.Form); ok {
		state.SetSort(field)
	}
	if ratings, ok := parseRatingsParam(r.Form); ok {
		state.SetRatings(ratings)
	}
	// Drained before Save so the cookie is written once.
	notices, err := s.sessions.Flashes(r)
	if err != nil {
		s.logger.Printf("read flashes: %v", err)
	}
	if err := s.sessions.Save(w, r, state); err != nil {
		s.logger.Printf("save session: %v", err)
	}

	movies, err := s.movies.FindAllByRating(r.Context(), state.Ratings, state.Sort)
	if err != nil {
		s.logger.Printf("list movies error: %v", err)
		s.renderError(w, r, http.StatusInternalServerError, "Failed to list movies")
		return
	}
	total, err := s.movies.Count(r.Context())
	if err != nil {
		s.logger.Printf("count movies error: %v", err)
		total = int64(len(movies))
	}

	s.render(w, r, http.StatusOK, templateIndex, indexView{
		Movies:     movies,
		AllRatings: domain.AllRatings,
		Selected:   state.Ratings,
		Sort:       state.Sort,
		Total:      total,
		Flashes:    notices,
	})
}

func (s *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	movie, err := s.movies.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.flash(w, r, "Movie not found.")
			s.redirect(w, r, moviesPath)
			return
		}
		s.logger.Printf("fetch movie error: %v", err)
		s.renderError(w, r, http.StatusInternalServerError, "Failed to load movie")
		return
	}
	s.render(w, r, http.StatusOK, templateShow, movieView{Movie: movie, Flashes: s.flashes(w, r)})
}

// handleSearchSimilar renders movies sharing the director of the requested movie.
// A movie without director info is not an error: the visitor is sent back to the
// listing with a notice.
func (s *Server) handleSearchSimilar(w http.ResponseWriter, r *http.Request) {
	movie, err := s.movies.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.flash(w, r, "Movie not found.")
			s.redirect(w, r, moviesPath)
			return
		}
		s.logger.Printf("fetch movie for similar search failed: %v", err)
		s.renderError(w, r, http.StatusInternalServerError, "Failed to search similar movies")
		return
	}

	if !movie.HasDirector() {
		s.flash(w, r, fmt.Sprintf("'%s' has no director info", movie.Title))
		s.redirect(w, r, moviesPath)
		return
	}

	movies, err := s.movies.FindBySimilarDirector(r.Context(), movie.DirectorName())
	if err != nil {
		s.logger.Printf("similar director search failed: %v", err)
		s.renderError(w, r, http.StatusInternalServerError, "Failed to search similar movies")
		return
	}
	s.render(w, r, http.StatusOK, templateSearchSimilar, similarView{
		Movie:   movie,
		Movies:  movies,
		Flashes: s.flashes(w, r),
	})
}

func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, templateNew, formView{
		Form:       movieForm{Rating: string(domain.RatingG)},
		AllRatings: domain.AllRatings,
		Action:     moviesPath,
		Method:     http.MethodPost,
		Flashes:    s.flashes(w, r),
	})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Unable to parse request body")
		return
	}
	form := readMovieForm(r.PostForm)

	params, err := form.createParams()
	var movie domain.Movie
	if err == nil {
		movie, err = s.movies.Create(r.Context(), params)
	}
	if err != nil {
		var ve *repository.ValidationError
		if errors.As(err, &ve) {
			s.render(w, r, http.StatusUnprocessableEntity, templateNew, formView{
				Form:       form,
				Errors:     ve.Fields,
				AllRatings: domain.AllRatings,
				Action:     moviesPath,
				Method:     http.MethodPost,
			})
			return
		}
		s.logger.Printf("create movie error: %v", err)
		s.renderError(w, r, http.StatusInternalServerError, "Failed to create movie")
		return
	}

	s.flash(w, r, fmt.Sprintf("%s was successfully created.", movie.Title))
	s.redirect(w, r, moviesPath)
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	movie, ok := s.loadMovie(w, r)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, templateEdit, formView{
		Movie:      movie,
		Form:       formFromMovie(movie),
		AllRatings: domain.AllRatings,
		Action:     moviePath(movie.ID),
		Method:     http.MethodPut,
		Flashes:    s.flashes(w, r),
	})
}

// handleUpdate applies only the attributes present in the request.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	movie, ok := s.loadMovie(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Unable to parse request body")
		return
	}
	form := readMovieForm(r.PostForm)

	params, err := form.updateParams()
	updated := movie
	if err == nil && !params.Empty() {
		updated, err = s.movies.Update(r.Context(), movie.ID, params)
	}
	if err != nil {
		var ve *repository.ValidationError
		switch {
		case errors.As(err, &ve):
			s.render(w, r, http.StatusUnprocessableEntity, templateEdit, formView{
				Movie:      movie,
				Form:       mergeForm(formFromMovie(movie), form),
				Errors:     ve.Fields,
				AllRatings: domain.AllRatings,
				Action:     moviePath(movie.ID),
				Method:     http.MethodPut,
			})
		case errors.Is(err, repository.ErrNotFound):
			s.renderError(w, r, http.StatusNotFound, "Resource not found")
		default:
			s.logger.Printf("update movie error: %v", err)
			s.renderError(w, r, http.StatusInternalServerError, "Failed to update movie")
		}
		return
	}

	s.flash(w, r, fmt.Sprintf("%s was successfully updated.", updated.Title))
	s.redirect(w, r, moviePath(updated.ID))
}

func (s *Server) handleDestroy(w http.ResponseWriter, r *http.Request) {
	movie, ok := s.loadMovie(w, r)
	if !ok {
		return
	}
	if err := s.movies.Delete(r.Context(), movie.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.renderError(w, r, http.StatusNotFound, "Resource not found")
			return
		}
		s.logger.Printf("delete movie error: %v", err)
		s.renderError(w, r, http.StatusInternalServerError, "Failed to delete movie")
		return
	}
	s.flash(w, r, fmt.Sprintf("Movie '%s' deleted.", movie.Title))
	s.redirect(w, r, moviesPath)
}

// loadMovie fetches the {id} movie for edit/update/destroy, answering 404 itself.
func (s *Server) loadMovie(w http.ResponseWriter, r *http.Request) (domain.Movie, bool) {
	movie, err := s.movies.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.renderError(w, r, http.StatusNotFound, "Resource not found")
			return domain.Movie{}, false
		}
		s.logger.Printf("fetch movie error: %v", err)
		s.renderError(w, r, http.StatusInternalServerError, "Failed to load movie")
		return domain.Movie{}, false
	}
	return movie, true
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data interface{}) {
	if err := s.renderer.Render(w, status, name, data); err != nil {
		s.logger.Printf("render %s failed for %s: %v", name, r.URL.Path, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.render(w, r, status, templateError, errorView{
		Status:     status,
		StatusText: http.StatusText(status),
		Message:    message,
	})
}

// redirect uses 303 after non-GET requests so browsers follow up with a GET.
func (s *Server) redirect(w http.ResponseWriter, r *http.Request, target string) {
	status := http.StatusFound
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		status = http.StatusSeeOther
	}
	http.Redirect(w, r, target, status)
}

func (s *Server) flash(w http.ResponseWriter, r *http.Request, message string) {
	if err := s.sessions.AddFlash(w, r, message); err != nil {
		s.logger.Printf("add flash: %v", err)
	}
}

func (s *Server) flashes(w http.ResponseWriter, r *http.Request) []string {
	msgs, err := s.sessions.Flashes(r)
	if err != nil {
		s.logger.Printf("read flashes: %v", err)
	}
	if len(msgs) > 0 {
		if err := s.sessions.Commit(w, r); err != nil {
			s.logger.Printf("clear flashes: %v", err)
		}
	}
	return msgs
}

func moviePath(id string) string {
	return moviesPath + "/" + id
}

// mergeForm overlays submitted fields on the stored values for re-rendering.
func mergeForm(stored, submitted movieForm) movieForm {
	for field := range submitted.present {
		switch field {
		case "title":
			stored.Title = submitted.Title
		case "director":
			stored.Director = submitted.Director
		case "rating":
			stored.Rating = submitted.Rating
		case "release_date":
			stored.ReleaseDate = submitted.ReleaseDate
		case "description":
			stored.Description = submitted.Description
		}
	}
	return stored
}
