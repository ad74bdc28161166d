package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"riffbox/internal/riffbox"
	"riffbox/internal/store/migrations"
)

// SQLiteStore keeps collections in a SQLite database, one row per
// collection and one row per video ordered by position.
type SQLiteStore struct {
	mu     sync.Mutex
	db     *sql.DB
	clock  riffbox.Clock
	logger riffbox.Logger
}

var _ riffbox.CollectionStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens the database at path and migrates it to the latest
// schema.
func NewSQLiteStore(path string, clock riffbox.Clock, logger riffbox.Logger) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	if err := migrations.CheckDBMigrationStatus(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}
	return &SQLiteStore{db: db, clock: clock, logger: logger}, nil
}

// OpenConnection opens a SQLite connection with foreign keys enabled.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return db, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) List() []riffbox.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT id, title FROM collections ORDER BY rowid")
	if err != nil {
		s.logger.Error("failed to list collections", "error", err)
		return nil
	}

	var headers []riffbox.Collection
	for rows.Next() {
		var c riffbox.Collection
		if err := rows.Scan(&c.ID, &c.Title); err != nil {
			s.logger.Warn("skipping unreadable collection row", "error", err)
			continue
		}
		headers = append(headers, c)
	}
	if err := rows.Err(); err != nil {
		s.logger.Warn("collection listing interrupted", "error", err)
	}
	rows.Close()

	out := make([]riffbox.Collection, 0, len(headers))
	for _, c := range headers {
		videos, err := s.videos(c.ID)
		if err != nil {
			s.logger.Warn("skipping collection with unreadable videos", "collection_id", c.ID, "error", err)
			continue
		}
		c.Videos = videos
		out = append(out, c)
	}
	return out
}

func (s *SQLiteStore) GetByID(id string) (riffbox.Collection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := riffbox.Collection{ID: id}
	err := s.db.QueryRow("SELECT title FROM collections WHERE id = ?", id).Scan(&c.Title)
	if err != nil {
		if err != sql.ErrNoRows {
			s.logger.Warn("failed to read collection", "collection_id", id, "error", err)
		}
		return riffbox.Collection{}, false
	}

	videos, err := s.videos(id)
	if err != nil {
		s.logger.Warn("failed to read collection videos", "collection_id", id, "error", err)
		return riffbox.Collection{}, false
	}
	c.Videos = videos
	return c, true
}

func (s *SQLiteStore) Add(c riffbox.Collection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.upsert(c); err != nil {
		s.logger.Error("failed to write collection", "collection_id", c.ID, "error", err)
		return
	}
	s.logger.Debug("collection written", "collection_id", c.ID)
}

func (s *SQLiteStore) upsert(c riffbox.Collection) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	createdAt := clockOrDefault(s.clock).Now().UTC().Format("2006-01-02T15:04:05Z")
	_, err = tx.Exec(`INSERT INTO collections (id, title, created_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title`, c.ID, c.Title, createdAt)
	if err != nil {
		return fmt.Errorf("upserting collection: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM videos WHERE collection_id = ?", c.ID); err != nil {
		return fmt.Errorf("clearing videos: %w", err)
	}

	for i, v := range c.Videos {
		style, err := json.Marshal(nonNilStyles(v.Style))
		if err != nil {
			return fmt.Errorf("encoding style of %s: %w", v.Path, err)
		}
		tags, err := json.Marshal(nonNilTags(v.Tags))
		if err != nil {
			return fmt.Errorf("encoding tags of %s: %w", v.Path, err)
		}
		_, err = tx.Exec(`INSERT INTO videos
			(collection_id, position, id, path, name, artist, song, style, tags, thumbnail, size_bytes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, i, v.ID, v.Path, v.Name, v.Artist, v.Song, string(style), string(tags), v.Thumbnail, int64(v.SizeBytes))
		if err != nil {
			return fmt.Errorf("inserting video %s: %w", v.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) videos(collectionID string) ([]riffbox.Video, error) {
	rows, err := s.db.Query(`SELECT id, path, name, artist, song, style, tags, thumbnail, size_bytes
		FROM videos WHERE collection_id = ? ORDER BY position`, collectionID)
	if err != nil {
		return nil, fmt.Errorf("querying videos: %w", err)
	}
	defer rows.Close()

	videos := []riffbox.Video{}
	for rows.Next() {
		var (
			v           riffbox.Video
			style, tags string
			size        int64
		)
		if err := rows.Scan(&v.ID, &v.Path, &v.Name, &v.Artist, &v.Song, &style, &tags, &v.Thumbnail, &size); err != nil {
			return nil, fmt.Errorf("scanning video: %w", err)
		}
		if err := json.Unmarshal([]byte(style), &v.Style); err != nil {
			return nil, fmt.Errorf("decoding style of %s: %w", v.Path, err)
		}
		if err := json.Unmarshal([]byte(tags), &v.Tags); err != nil {
			return nil, fmt.Errorf("decoding tags of %s: %w", v.Path, err)
		}
		v.SizeBytes = uint64(size)
		videos = append(videos, v.Clone())
	}
	return videos, rows.Err()
}

func nonNilStyles(s []riffbox.Style) []riffbox.Style {
	if s == nil {
		return []riffbox.Style{}
	}
	return s
}

func nonNilTags(t []string) []string {
	if t == nil {
		return []string{}
	}
	return t
}
