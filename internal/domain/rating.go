package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Rating is an MPAA content classification.
type Rating string

const (
	RatingG    Rating = "G"
	RatingPG   Rating = "PG"
	RatingPG13 Rating = "PG-13"
	RatingNC17 Rating = "NC-17"
	RatingR    Rating = "R"
)

// AllRatings lists every known rating in display order.
var AllRatings = []Rating{RatingG, RatingPG, RatingPG13, RatingNC17, RatingR}

// ParseRating converts user input into a Rating. Matching is case-insensitive.
func ParseRating(raw string) (Rating, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "G":
		return RatingG, nil
	case "PG":
		return RatingPG, nil
	case "PG-13":
		return RatingPG13, nil
	case "NC-17":
		return RatingNC17, nil
	case "R":
		return RatingR, nil
	default:
		return "", fmt.Errorf("unknown rating %q", raw)
	}
}

// Valid reports whether r is one of AllRatings.
func (r Rating) Valid() bool {
	switch r {
	case RatingG, RatingPG, RatingPG13, RatingNC17, RatingR:
		return true
	default:
		return false
	}
}

func (r Rating) String() string { return string(r) }

// RatingSet is a normalized set of ratings. The empty set means "all ratings".
type RatingSet []Rating

// NewRatingSet builds a sorted, de-duplicated set from the given ratings.
func NewRatingSet(ratings ...Rating) RatingSet {
	seen := make(map[Rating]struct{}, len(ratings))
	set := make(RatingSet, 0, len(ratings))
	for _, r := range ratings {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		set = append(set, r)
	}
	sort.Slice(set, func(i, j int) bool { return ratingIndex(set[i]) < ratingIndex(set[j]) })
	return set
}

// ParseRatingSet parses raw values, silently dropping anything that is not a rating.
func ParseRatingSet(values []string) RatingSet {
	ratings := make([]Rating, 0, len(values))
	for _, v := range values {
		if r, err := ParseRating(v); err == nil {
			ratings = append(ratings, r)
		}
	}
	return NewRatingSet(ratings...)
}

// IsAll reports whether the set applies no filter.
func (s RatingSet) IsAll() bool { return len(s) == 0 }

// Contains reports whether r passes the filter. An empty set contains everything.
func (s RatingSet) Contains(r Rating) bool {
	if s.IsAll() {
		return true
	}
	for _, candidate := range s {
		if candidate == r {
			return true
		}
	}
	return false
}

// Strings returns the set as plain strings, in display order.
func (s RatingSet) Strings() []string {
	out := make([]string, len(s))
	for i, r := range s {
		out[i] = string(r)
	}
	return out
}

func ratingIndex(r Rating) int {
	for i, known := range AllRatings {
		if known == r {
			return i
		}
	}
	return len(AllRatings)
}
