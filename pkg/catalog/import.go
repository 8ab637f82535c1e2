package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// record is one song in an import file. Image is a path relative to the file.
type record struct {
	URI         string   `json:"uri"`
	Title       string   `json:"title"`
	Artist      string   `json:"artist"`
	Album       string   `json:"album"`
	Genres      []string `json:"genres"`
	Released    string   `json:"released"`
	Label       string   `json:"label"`
	Writers     []string `json:"writers"`
	Producers   []string `json:"producers"`
	WeeksAtTop  int      `json:"weeks_at_top"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
}

// ImportResult summarises an import.
type ImportResult struct {
	Songs  int
	Images int
}

// NewURI returns a fresh song uri.
func NewURI() string {
	return "/songs/" + uuid.NewString()
}

// ImportFile loads a JSON array of songs into the store. Songs without a uri
// get a generated one. The first invalid record aborts the import; records
// stored before it are kept.
func ImportFile(ctx context.Context, store *Store, path string) (ImportResult, error) {
	var result ImportResult

	data, err := os.ReadFile(path)
	if err != nil {
		return result, fmt.Errorf("reading %s: %w", path, err)
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return result, fmt.Errorf("decoding %s: %w", path, err)
	}

	baseDir := filepath.Dir(path)
	for i, rec := range records {
		song, err := rec.song()
		if err != nil {
			return result, fmt.Errorf("%s record %d: %w", path, i, err)
		}
		if err := store.Put(ctx, song); err != nil {
			return result, fmt.Errorf("%s record %d: %w", path, i, err)
		}
		result.Songs++

		if rec.Image == "" {
			continue
		}
		imgPath := rec.Image
		if !filepath.IsAbs(imgPath) {
			imgPath = filepath.Join(baseDir, imgPath)
		}
		img, err := os.ReadFile(imgPath)
		if err != nil {
			return result, fmt.Errorf("reading image for %s: %w", song.URI, err)
		}
		if err := store.PutImage(ctx, song.URI, contentType(imgPath, img), img); err != nil {
			return result, err
		}
		result.Images++
	}

	logger.Infof("imported %d songs and %d images from %s", result.Songs, result.Images, path)
	return result, nil
}

func (r record) song() (Song, error) {
	song := Song{
		URI:         r.URI,
		Title:       r.Title,
		Artist:      r.Artist,
		Album:       r.Album,
		Genres:      r.Genres,
		Label:       r.Label,
		Writers:     r.Writers,
		Producers:   r.Producers,
		WeeksAtTop:  r.WeeksAtTop,
		Description: r.Description,
	}
	if song.URI == "" {
		song.URI = NewURI()
	}
	if r.Released != "" {
		released, err := time.Parse(DateLayout, r.Released)
		if err != nil {
			return song, fmt.Errorf("invalid release date %q: %w", r.Released, err)
		}
		song.Released = released
	}
	return song, song.Validate()
}

func contentType(path string, data []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}
