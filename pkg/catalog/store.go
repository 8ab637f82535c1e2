package catalog

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/rubiojr/topsongs/pkg/db"
	"github.com/rubiojr/topsongs/pkg/log"
)

var logger = log.ForService("catalog")

// Store is the SQLite backed song catalog. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the catalog at dbPath and applies pending
// migrations.
func Open(dbPath string) (*Store, error) {
	conn, err := OpenDB(dbPath)
	if err != nil {
		return nil, err
	}

	applied, err := db.NewMigrationManager(conn).ApplyPending()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrating catalog: %w", err)
	}
	if applied > 0 {
		logger.Infof("applied %d migrations to %s", applied, dbPath)
	}

	return &Store{db: conn}, nil
}

// OpenDB opens the catalog database without migrating it.
func OpenDB(dbPath string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 30000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA temp_store = memory",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("applying pragma %q: %w", pragma, err)
		}
	}
	return conn, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the connection for migration tooling.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Put inserts or replaces a song.
func (s *Store) Put(ctx context.Context, song Song) error {
	if err := song.Validate(); err != nil {
		return err
	}

	genres, err := json.Marshal(nonNil(song.Genres))
	if err != nil {
		return fmt.Errorf("marshaling genres for %s: %w", song.URI, err)
	}
	writers, err := json.Marshal(nonNil(song.Writers))
	if err != nil {
		return fmt.Errorf("marshaling writers for %s: %w", song.URI, err)
	}
	producers, err := json.Marshal(nonNil(song.Producers))
	if err != nil {
		return fmt.Errorf("marshaling producers for %s: %w", song.URI, err)
	}

	released := ""
	if !song.Released.IsZero() {
		released = song.Released.Format(DateLayout)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO songs
			(uri, title, artist, album, genres, released, label, writers, producers, weeks_at_top, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		song.URI, song.Title, song.Artist, song.Album, string(genres), released,
		song.Label, string(writers), string(producers), song.WeeksAtTop, song.Description,
	)
	if err != nil {
		return fmt.Errorf("storing song %s: %w", song.URI, err)
	}
	return nil
}

// PutImage stores the cover image of an existing song.
func (s *Store) PutImage(ctx context.Context, uri, contentType string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO images (uri, content_type, data) VALUES (?, ?, ?)",
		uri, contentType, data,
	)
	if err != nil {
		return fmt.Errorf("storing image for %s: %w", uri, err)
	}
	return nil
}

const selectSongs = `
	SELECT s.uri, s.title, s.artist, s.album, s.genres, s.released, s.label,
	       s.writers, s.producers, s.weeks_at_top, s.description,
	       EXISTS (SELECT 1 FROM images i WHERE i.uri = s.uri)
	FROM songs s`

// Get returns the song stored under uri.
func (s *Store) Get(ctx context.Context, uri string) (*Song, error) {
	row := s.db.QueryRowContext(ctx, selectSongs+" WHERE s.uri = ?", uri)
	song, err := scanSong(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("song %s: %w", uri, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return song, nil
}

// All returns every song ordered by uri.
func (s *Store) All(ctx context.Context) ([]Song, error) {
	rows, err := s.db.QueryContext(ctx, selectSongs+" ORDER BY s.uri")
	if err != nil {
		return nil, fmt.Errorf("querying songs: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Warnf("failed to close rows: %v", err)
		}
	}()

	var songs []Song
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, *song)
	}
	return songs, rows.Err()
}

// Count returns the number of songs.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM songs").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting songs: %w", err)
	}
	return n, nil
}

// Image returns the cover image of a song and its content type.
func (s *Store) Image(ctx context.Context, uri string) (io.ReadCloser, string, error) {
	var contentType string
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT content_type, data FROM images WHERE uri = ?", uri).Scan(&contentType, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", fmt.Errorf("image %s: %w", uri, ErrNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("reading image %s: %w", uri, err)
	}
	return io.NopCloser(bytes.NewReader(data)), contentType, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSong(row scanner) (*Song, error) {
	var song Song
	var genres, writers, producers, released string

	err := row.Scan(&song.URI, &song.Title, &song.Artist, &song.Album, &genres, &released,
		&song.Label, &writers, &producers, &song.WeeksAtTop, &song.Description, &song.HasImage)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(genres), &song.Genres); err != nil {
		return nil, fmt.Errorf("unmarshaling genres for %s: %w", song.URI, err)
	}
	if err := json.Unmarshal([]byte(writers), &song.Writers); err != nil {
		return nil, fmt.Errorf("unmarshaling writers for %s: %w", song.URI, err)
	}
	if err := json.Unmarshal([]byte(producers), &song.Producers); err != nil {
		return nil, fmt.Errorf("unmarshaling producers for %s: %w", song.URI, err)
	}
	if released != "" {
		song.Released, err = time.Parse(DateLayout, released)
		if err != nil {
			return nil, fmt.Errorf("parsing release date for %s: %w", song.URI, err)
		}
	}
	return &song, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
