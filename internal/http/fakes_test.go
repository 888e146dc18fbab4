package httpserver

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Clark-Hu/movie-catalog/internal/config"
	"github.com/Clark-Hu/movie-catalog/internal/domain"
	"github.com/Clark-Hu/movie-catalog/internal/repository"
	"github.com/Clark-Hu/movie-catalog/internal/session"
)

// fakeMovies is an in-memory MovieRepository that records how it was called.
type fakeMovies struct {
	mu     sync.Mutex
	movies map[string]domain.Movie

	findAllCalls    int
	lastRatings     domain.RatingSet
	lastOrder       domain.SortField
	similarCalls    []string
	lastCreate      *repository.MovieCreateParams
	lastUpdate      *repository.MovieUpdateParams
	deleted         []string
	failFindAllWith error
}

func newFakeMovies() *fakeMovies {
	return &fakeMovies{movies: make(map[string]domain.Movie)}
}

func (f *fakeMovies) seed(title string, rating domain.Rating, director string, released string) domain.Movie {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := domain.Movie{ID: uuid.NewString(), Title: title, Rating: rating, CreatedAt: time.Now()}
	if director != "" {
		d := director
		m.Director = &d
	}
	if released != "" {
		t, _ := time.Parse(domain.DateLayout, released)
		m.ReleaseDate = &t
	}
	f.movies[m.ID] = m
	return m
}

func (f *fakeMovies) Create(ctx context.Context, params repository.MovieCreateParams) (domain.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCreate = &params
	fields := map[string]string{}
	if strings.TrimSpace(params.Title) == "" {
		fields["title"] = "can't be blank"
	}
	if !params.Rating.Valid() {
		fields["rating"] = "is not included in the list"
	}
	if len(fields) > 0 {
		return domain.Movie{}, &repository.ValidationError{Fields: fields}
	}
	m := domain.Movie{
		ID:          uuid.NewString(),
		Title:       params.Title,
		Director:    params.Director,
		Rating:      params.Rating,
		ReleaseDate: params.ReleaseDate,
		Description: params.Description,
	}
	f.movies[m.ID] = m
	return m, nil
}

func (f *fakeMovies) GetByID(ctx context.Context, id string) (domain.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.movies[id]
	if !ok {
		return domain.Movie{}, repository.ErrNotFound
	}
	return m, nil
}

func (f *fakeMovies) FindAllByRating(ctx context.Context, ratings domain.RatingSet, order domain.SortField) ([]domain.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findAllCalls++
	f.lastRatings = ratings
	f.lastOrder = order
	if f.failFindAllWith != nil {
		return nil, f.failFindAllWith
	}
	out := make([]domain.Movie, 0, len(f.movies))
	for _, m := range f.movies {
		if ratings.Contains(m.Rating) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if order == domain.SortByReleaseDate {
			return out[i].ReleaseDateString() < out[j].ReleaseDateString()
		}
		return out[i].Title < out[j].Title
	})
	return out, nil
}

func (f *fakeMovies) FindBySimilarDirector(ctx context.Context, director string) ([]domain.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.similarCalls = append(f.similarCalls, director)
	out := make([]domain.Movie, 0)
	for _, m := range f.movies {
		if m.DirectorName() == director {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (f *fakeMovies) Update(ctx context.Context, id string, params repository.MovieUpdateParams) (domain.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUpdate = &params
	m, ok := f.movies[id]
	if !ok {
		return domain.Movie{}, repository.ErrNotFound
	}
	if params.Rating != nil && !params.Rating.Valid() {
		return domain.Movie{}, &repository.ValidationError{Fields: map[string]string{"rating": "is not included in the list"}}
	}
	if params.Title != nil {
		m.Title = *params.Title
	}
	if params.Director != nil {
		m.Director = params.Director
	}
	if params.ClearDirector {
		m.Director = nil
	}
	if params.Rating != nil {
		m.Rating = *params.Rating
	}
	if params.ReleaseDate != nil {
		m.ReleaseDate = params.ReleaseDate
	}
	if params.ClearReleaseDate {
		m.ReleaseDate = nil
	}
	if params.Description != nil {
		m.Description = params.Description
	}
	if params.ClearDescription {
		m.Description = nil
	}
	f.movies[id] = m
	return m, nil
}

func (f *fakeMovies) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.movies[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.movies, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeMovies) Count(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.movies)), nil
}

// recordingRenderer captures the last rendered view instead of producing HTML.
type recordingRenderer struct {
	renders []renderCall
}

type renderCall struct {
	status int
	name   string
	data   interface{}
}

func (r *recordingRenderer) Render(w http.ResponseWriter, status int, name string, data interface{}) error {
	r.renders = append(r.renders, renderCall{status: status, name: name, data: data})
	w.WriteHeader(status)
	return nil
}

func (r *recordingRenderer) last() (renderCall, bool) {
	if len(r.renders) == 0 {
		return renderCall{}, false
	}
	return r.renders[len(r.renders)-1], true
}

type testHarness struct {
	srv      *Server
	movies   *fakeMovies
	renderer *recordingRenderer
	cookies  map[string]*http.Cookie
}

func newHarness(tb testing.TB) *testHarness {
	tb.Helper()
	cfg := config.Config{Port: "0", ReadTimeoutSecs: 15, WriteTimeoutSecs: 15, IdleTimeoutSecs: 60}
	movies := newFakeMovies()
	sessions := session.NewCookieManager([]byte("0123456789abcdef0123456789abcdef"), session.Options{Name: "movies_test"})
	logger := log.New(io.Discard, "", 0)

	srv := New(cfg, nil, movies, sessions, nil, logger)
	// Replace chi router to avoid default middleware noise.
	srv.router = chi.NewRouter()
	srv.router.Use(methodOverride)
	srv.registerRoutes()

	renderer := &recordingRenderer{}
	srv.renderer = renderer
	return &testHarness{srv: srv, movies: movies, renderer: renderer, cookies: map[string]*http.Cookie{}}
}

// do sends a request through the router, carrying the session cookie like a browser.
func (h *testHarness) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range h.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.srv.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		h.cookies[c.Name] = c
	}
	return rec
}

// sessionState reads the listing state the browser currently holds.
func (h *testHarness) sessionState(tb testing.TB) *session.State {
	tb.Helper()
	req := httptest.NewRequest(http.MethodGet, "/movies", nil)
	for _, c := range h.cookies {
		req.AddCookie(c)
	}
	state, err := h.srv.sessions.Load(req)
	if err != nil {
		tb.Fatalf("load session: %v", err)
	}
	return state
}

func attachIDParam(req *http.Request, id string) *http.Request {
	ctx := chi.NewRouteContext()
	ctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, ctx))
}
