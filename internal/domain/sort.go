package domain

import "fmt"

// SortField selects the listing order.
type SortField string

const (
	SortByTitle       SortField = "title"
	SortByReleaseDate SortField = "release_date"
)

// DefaultSort is used before a session has chosen an order.
const DefaultSort = SortByTitle

// ParseSortField accepts only the known sort columns.
func ParseSortField(raw string) (SortField, error) {
	switch SortField(raw) {
	case SortByTitle:
		return SortByTitle, nil
	case SortByReleaseDate:
		return SortByReleaseDate, nil
	default:
		return "", fmt.Errorf("unknown sort field %q", raw)
	}
}

func (f SortField) String() string { return string(f) }
