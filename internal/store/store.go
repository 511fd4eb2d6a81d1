// Package store persists the match registry and render history in SQLite.
package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/trackside-data/pitchclip/internal/monitoring"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps the SQLite connection.
type DB struct {
	*sql.DB
}

// Open opens (or creates) the database at path and applies any pending
// migrations. Use ":memory:" for an ephemeral database in tests.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	db := &DB{sqlDB}
	if err := db.migrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) migrateUp() error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("sqlite migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	// Closing m would close the underlying DB connection, so it is left to
	// the garbage collector.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// Match is one registry row, written each time a match's tracking data is
// loaded.
type Match struct {
	ID          string    `json:"match_id"`
	HomeTeam    string    `json:"home_team"`
	AwayTeam    string    `json:"away_team"`
	FrameCount  int       `json:"frame_count"`
	FrameRate   float64   `json:"frame_rate"`
	PitchLength float64   `json:"pitch_length"`
	PitchWidth  float64   `json:"pitch_width"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// UpsertMatch records a loaded match, replacing any earlier registry row
// for the same id.
func (db *DB) UpsertMatch(m *Match) error {
	if m.LoadedAt.IsZero() {
		m.LoadedAt = time.Now().UTC()
	}
	_, err := db.Exec(`
		INSERT INTO matches (match_id, home_team, away_team, frame_count, frame_rate, pitch_length, pitch_width, loaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(match_id) DO UPDATE SET
			home_team = excluded.home_team,
			away_team = excluded.away_team,
			frame_count = excluded.frame_count,
			frame_rate = excluded.frame_rate,
			pitch_length = excluded.pitch_length,
			pitch_width = excluded.pitch_width,
			loaded_at = excluded.loaded_at`,
		m.ID, m.HomeTeam, m.AwayTeam, m.FrameCount, m.FrameRate, m.PitchLength, m.PitchWidth,
		m.LoadedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert match %s: %w", m.ID, err)
	}
	return nil
}

// Match returns the registry row for the given id, or sql.ErrNoRows.
func (db *DB) Match(id string) (*Match, error) {
	row := db.QueryRow(`
		SELECT match_id, home_team, away_team, frame_count, frame_rate, pitch_length, pitch_width, loaded_at
		FROM matches WHERE match_id = ?`, id)
	return scanMatch(row)
}

// Matches lists every registered match, most recently loaded first.
func (db *DB) Matches() ([]Match, error) {
	rows, err := db.Query(`
		SELECT match_id, home_team, away_team, frame_count, frame_rate, pitch_length, pitch_width, loaded_at
		FROM matches ORDER BY loaded_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(row rowScanner) (*Match, error) {
	var m Match
	var loadedAt string
	if err := row.Scan(&m.ID, &m.HomeTeam, &m.AwayTeam, &m.FrameCount, &m.FrameRate,
		&m.PitchLength, &m.PitchWidth, &loadedAt); err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, loadedAt)
	if err != nil {
		return nil, fmt.Errorf("parse loaded_at %q: %w", loadedAt, err)
	}
	m.LoadedAt = t
	return &m, nil
}

// RenderRecord is one entry in the render history.
type RenderRecord struct {
	ID              string    `json:"render_id"`
	MatchID         string    `json:"match_id"`
	Format          string    `json:"format"`
	FileName        string    `json:"file_name"`
	FirstFrame      int64     `json:"first_frame"`
	LastFrame       int64     `json:"last_frame"`
	FrameCount      int       `json:"frame_count"`
	FPS             float64   `json:"fps"`
	DurationSeconds float64   `json:"duration_seconds"`
	SizeBytes       int64     `json:"size_bytes"`
	CreatedAt       time.Time `json:"created_at"`
}

// RecordRender appends a render to the history, assigning an id and
// timestamp when the caller left them unset.
func (db *DB) RecordRender(rec *RenderRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := db.Exec(`
		INSERT INTO renders (render_id, match_id, format, file_name, first_frame, last_frame, frame_count, fps, duration_s, size_bytes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.MatchID, rec.Format, rec.FileName, rec.FirstFrame, rec.LastFrame,
		rec.FrameCount, rec.FPS, rec.DurationSeconds, rec.SizeBytes,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record render for match %s: %w", rec.MatchID, err)
	}
	monitoring.Logf("store: recorded render %s (%s, %d frames)", rec.ID, rec.Format, rec.FrameCount)
	return nil
}

// Renders lists the render history, newest first. A non-empty matchID
// filters to one match; limit <= 0 means no limit.
func (db *DB) Renders(matchID string, limit int) ([]RenderRecord, error) {
	query := `
		SELECT render_id, match_id, format, file_name, first_frame, last_frame, frame_count, fps, duration_s, size_bytes, created_at
		FROM renders`
	var args []interface{}
	if matchID != "" {
		query += " WHERE match_id = ?"
		args = append(args, matchID)
	}
	query += " ORDER BY created_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []RenderRecord
	for rows.Next() {
		var rec RenderRecord
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.MatchID, &rec.Format, &rec.FileName, &rec.FirstFrame,
			&rec.LastFrame, &rec.FrameCount, &rec.FPS, &rec.DurationSeconds, &rec.SizeBytes,
			&createdAt); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
		}
		rec.CreatedAt = t
		records = append(records, rec)
	}
	return records, rows.Err()
}
