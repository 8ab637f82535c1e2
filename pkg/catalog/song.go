// Package catalog stores the songs and cover images served by topsongs.
//
// The catalog is a SQLite database. It is the source of truth for song
// details and images; the search index is rebuilt from it.
package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the format of release dates in the database and in import files.
const DateLayout = "2006-01-02"

// ErrNotFound is returned when a song or image does not exist.
var ErrNotFound = errors.New("not found")

// Song is a chart-topping single.
type Song struct {
	URI         string    `json:"uri"`
	Title       string    `json:"title"`
	Artist      string    `json:"artist"`
	Album       string    `json:"album,omitempty"`
	Genres      []string  `json:"genres,omitempty"`
	Released    time.Time `json:"released"`
	Label       string    `json:"label,omitempty"`
	Writers     []string  `json:"writers,omitempty"`
	Producers   []string  `json:"producers,omitempty"`
	WeeksAtTop  int       `json:"weeks_at_top"`
	Description string    `json:"description,omitempty"`
	HasImage    bool      `json:"has_image"`
}

// Year returns the release year, or 0 when the release date is unknown.
func (s Song) Year() int {
	if s.Released.IsZero() {
		return 0
	}
	return s.Released.Year()
}

// Decade returns the release decade as "1980s", or "" when unknown.
func (s Song) Decade() string {
	if s.Released.IsZero() {
		return ""
	}
	return fmt.Sprintf("%ds", s.Released.Year()/10*10)
}

// Validate checks the fields required to index a song.
func (s Song) Validate() error {
	if strings.TrimSpace(s.URI) == "" {
		return errors.New("song has no uri")
	}
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("song %s has no title", s.URI)
	}
	if strings.TrimSpace(s.Artist) == "" {
		return fmt.Errorf("song %s has no artist", s.URI)
	}
	return nil
}
