package domain

import "time"

// DateLayout is the wire format for release dates in forms and seed files.
const DateLayout = "2006-01-02"

// Movie represents the canonical movie entity in the database/service.
type Movie struct {
	ID          string
	Title       string
	Director    *string
	Rating      Rating
	ReleaseDate *time.Time
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasDirector reports whether the movie carries usable director information.
func (m Movie) HasDirector() bool {
	return m.Director != nil && *m.Director != ""
}

// DirectorName returns the director or an empty string.
func (m Movie) DirectorName() string {
	if m.Director == nil {
		return ""
	}
	return *m.Director
}

// ReleaseDateString formats the release date for display, empty when unknown.
func (m Movie) ReleaseDateString() string {
	if m.ReleaseDate == nil {
		return ""
	}
	return m.ReleaseDate.Format(DateLayout)
}

// DescriptionText returns the description or an empty string.
func (m Movie) DescriptionText() string {
	if m.Description == nil {
		return ""
	}
	return *m.Description
}
