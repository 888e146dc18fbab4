package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/movie-catalog/internal/domain"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestManager() *Manager {
	return NewCookieManager(testSecret, Options{Name: "movies_test", MaxAge: 3600})
}

// roundTrip saves state in one request and returns a follow-up request carrying the cookie.
func roundTrip(t *testing.T, m *Manager, prev *http.Request, mutate func(w http.ResponseWriter, r *http.Request)) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/movies", nil)
	if prev != nil {
		for _, c := range prev.Cookies() {
			req.AddCookie(c)
		}
	}
	rec := httptest.NewRecorder()
	mutate(rec, req)

	next := httptest.NewRequest(http.MethodGet, "/movies", nil)
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 && prev != nil {
		cookies = prev.Cookies()
	}
	for _, c := range cookies {
		next.AddCookie(c)
	}
	return next
}

func TestLoad_DefaultsOnFirstAccess(t *testing.T) {
	m := newTestManager()
	state, err := m.Load(httptest.NewRequest(http.MethodGet, "/movies", nil))
	require.NoError(t, err)
	assert.Equal(t, domain.SortByTitle, state.Sort)
	assert.True(t, state.Ratings.IsAll())
}

func TestSave_PersistsSortAndRatings(t *testing.T) {
	m := newTestManager()

	next := roundTrip(t, m, nil, func(w http.ResponseWriter, r *http.Request) {
		state, err := m.Load(r)
		require.NoError(t, err)
		state.SetSort(domain.SortByReleaseDate)
		state.SetRatings(domain.NewRatingSet(domain.RatingR, domain.RatingG))
		require.NoError(t, m.Save(w, r, state))
	})

	state, err := m.Load(next)
	require.NoError(t, err)
	assert.Equal(t, domain.SortByReleaseDate, state.Sort)
	assert.Equal(t, domain.RatingSet{domain.RatingG, domain.RatingR}, state.Ratings)
}

func TestSetRatings_ReplacesPreviousFilter(t *testing.T) {
	m := newTestManager()

	first := roundTrip(t, m, nil, func(w http.ResponseWriter, r *http.Request) {
		state, _ := m.Load(r)
		state.SetRatings(domain.NewRatingSet(domain.RatingR))
		require.NoError(t, m.Save(w, r, state))
	})
	second := roundTrip(t, m, first, func(w http.ResponseWriter, r *http.Request) {
		state, _ := m.Load(r)
		require.Equal(t, domain.RatingSet{domain.RatingR}, state.Ratings)
		state.SetRatings(domain.NewRatingSet(domain.RatingPG))
		require.NoError(t, m.Save(w, r, state))
	})

	state, err := m.Load(second)
	require.NoError(t, err)
	assert.Equal(t, domain.RatingSet{domain.RatingPG}, state.Ratings, "ratings must be replaced, not merged")
}

func TestLoad_TamperedCookieStartsFresh(t *testing.T) {
	m := newTestManager()
	req := httptest.NewRequest(http.MethodGet, "/movies", nil)
	req.AddCookie(&http.Cookie{Name: "movies_test", Value: "garbage"})

	state, err := m.Load(req)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSort, state.Sort)
}

func TestFlashes_AreDrainedOnce(t *testing.T) {
	m := newTestManager()

	next := roundTrip(t, m, nil, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, m.AddFlash(w, r, "'Alien' has no director info"))
	})

	var drained []string
	after := roundTrip(t, m, next, func(w http.ResponseWriter, r *http.Request) {
		var err error
		drained, err = m.Flashes(r)
		require.NoError(t, err)
		require.NoError(t, m.Commit(w, r))
	})
	assert.Equal(t, []string{"'Alien' has no director info"}, drained)

	again, err := m.Flashes(after)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestFlashes_DrainIsWrittenBySave(t *testing.T) {
	m := newTestManager()

	next := roundTrip(t, m, nil, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, m.AddFlash(w, r, "Milk was successfully created."))
	})

	rec := httptest.NewRecorder()
	msgs, err := m.Flashes(next)
	require.NoError(t, err)
	require.Equal(t, []string{"Milk was successfully created."}, msgs)
	state, err := m.Load(next)
	require.NoError(t, err)
	state.SetSort(domain.SortByReleaseDate)
	require.NoError(t, m.Save(rec, next, state))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1, "one Set-Cookie per request")

	follow := httptest.NewRequest(http.MethodGet, "/movies", nil)
	follow.AddCookie(cookies[0])
	again, err := m.Flashes(follow)
	require.NoError(t, err)
	assert.Empty(t, again)
	saved, err := m.Load(follow)
	require.NoError(t, err)
	assert.Equal(t, domain.SortByReleaseDate, saved.Sort)
}
