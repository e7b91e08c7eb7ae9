// Package profile defines the types extracted from SensCritique profile pages.
package profile

import (
	"errors"
)

// Common errors returned by extraction packages.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidUsername = errors.New("invalid username")
)

// DefaultDate is used for reviews whose page shows no date.
const DefaultDate = "Récemment"

// ExclusionMarker marks images that are site decorations rather than works.
const ExclusionMarker = "KiMi_"

// Review is a written critique listed on a user's /critiques page.
type Review struct {
	Title   string `json:"title"`
	Content string `json:"content"` // At most 200 runes, plus "..." when cut
	Date    string `json:"date"`
	URL     string `json:"url"`    // Absolute, empty if the entry had no work link
	Rating  *int   `json:"rating"` // nil when no digit run was found
}

// Favorite is a work shown as a poster image on a profile or collection page.
type Favorite struct {
	Title string `json:"title"`
	Image string `json:"image"`
}

// Stats holds per-category rating counts.
//
// Placeholder is true when the counts are configured defaults substituted for
// an all-zero extraction, so callers can tell them apart from real data.
type Stats struct {
	Films       int  `json:"films"`
	Series      int  `json:"series"`
	Jeux        int  `json:"jeux"`
	Livres      int  `json:"livres"`
	Total       int  `json:"total"`
	Placeholder bool `json:"placeholder,omitempty"`
}

// Empty reports whether the counts that gate placeholder substitution are all zero.
func (s Stats) Empty() bool {
	return s.Total == 0 && s.Films == 0 && s.Series == 0
}

// Profile is the aggregate result for one user.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Profile struct {
	Username    string     `json:"username"`
	Location    string     `json:"location"`
	Gender      string     `json:"gender"`
	Stats       Stats      `json:"stats"`
	Collections []Favorite `json:"collections"`
	Reviews     []Review   `json:"reviews"`
	ProfileURL  string     `json:"profileUrl"`
	Avatar      string     `json:"avatar"`
}
