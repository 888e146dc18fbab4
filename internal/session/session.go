// Package session keeps per-visitor listing preferences (sort order, rating
// filter) and one-shot flash notices in a signed cookie.
package session

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/Clark-Hu/movie-catalog/internal/domain"
)

const (
	keySort    = "sort"
	keyRatings = "ratings"
	keyFlash   = "flash"
)

// State is the listing preference of one session.
type State struct {
	Sort    domain.SortField
	Ratings domain.RatingSet
}

// DefaultState is what a session starts with: sorted by title, no rating filter.
func DefaultState() *State {
	return &State{Sort: domain.DefaultSort}
}

// SetSort overwrites the active sort field.
func (s *State) SetSort(field domain.SortField) {
	s.Sort = field
}

// SetRatings replaces the active rating filter. It never merges with the old set.
func (s *State) SetRatings(ratings domain.RatingSet) {
	s.Ratings = domain.NewRatingSet(ratings...)
}

// Options configures the session cookie.
type Options struct {
	Name   string
	MaxAge int
	Secure bool
}

// Manager loads and saves State through a gorilla/sessions store.
type Manager struct {
	store sessions.Store
	name  string
}

// NewCookieManager builds a Manager on an HMAC-signed cookie store.
func NewCookieManager(secret []byte, opts Options) *Manager {
	cs := sessions.NewCookieStore(secret)
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   opts.MaxAge,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if opts.MaxAge > 0 {
		// keeps the codec's timestamp check in line with the cookie lifetime
		cs.MaxAge(opts.MaxAge)
	}
	return NewManager(cs, opts.Name)
}

// NewManager wraps any gorilla/sessions store.
func NewManager(store sessions.Store, name string) *Manager {
	return &Manager{store: store, name: name}
}

// session returns the named session. A cookie that fails to decode yields a
// fresh session rather than an error.
func (m *Manager) session(r *http.Request) (*sessions.Session, error) {
	sess, err := m.store.Get(r, m.name)
	if sess == nil {
		return nil, fmt.Errorf("session: load %s: %w", m.name, err)
	}
	return sess, nil
}

// Load returns the session's listing state, initialized to defaults on first access.
func (m *Manager) Load(r *http.Request) (*State, error) {
	sess, err := m.session(r)
	if err != nil {
		return DefaultState(), err
	}

	state := DefaultState()
	if raw, ok := sess.Values[keySort].(string); ok {
		if field, err := domain.ParseSortField(raw); err == nil {
			state.Sort = field
		}
	}
	switch raw := sess.Values[keyRatings].(type) {
	case []string:
		state.Ratings = domain.ParseRatingSet(raw)
	case string:
		state.Ratings = domain.ParseRatingSet([]string{raw})
	}
	return state, nil
}

// Save writes state back into the session cookie.
func (m *Manager) Save(w http.ResponseWriter, r *http.Request, state *State) error {
	sess, err := m.session(r)
	if err != nil {
		return err
	}
	sess.Values[keySort] = string(state.Sort)
	sess.Values[keyRatings] = state.Ratings.Strings()
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	return nil
}

// AddFlash queues a notice for the next rendered page.
func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, message string) error {
	sess, err := m.session(r)
	if err != nil {
		return err
	}
	pending, _ := sess.Values[keyFlash].([]string)
	sess.Values[keyFlash] = append(pending, message)
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("session: save flash: %w", err)
	}
	return nil
}

// Flashes drains queued notices. The drain is written out by the next Save or
// Commit, so a handler that also saves listing state sets the cookie only once.
func (m *Manager) Flashes(r *http.Request) ([]string, error) {
	sess, err := m.session(r)
	if err != nil {
		return nil, err
	}
	pending, _ := sess.Values[keyFlash].([]string)
	if len(pending) == 0 {
		return nil, nil
	}
	delete(sess.Values, keyFlash)
	return pending, nil
}

// Commit writes the session cookie as it currently stands.
func (m *Manager) Commit(w http.ResponseWriter, r *http.Request) error {
	sess, err := m.session(r)
	if err != nil {
		return err
	}
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("session: commit: %w", err)
	}
	return nil
}
