// Package store persists extraction results to a local SQLite
// database, one row per processed document keyed by process number and
// source file.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	_ "modernc.org/sqlite"

	"github.com/pbaptista/diesp/internal/extractor"
)

// ErrNotFound is returned when no row matches the requested key.
var ErrNotFound = errors.New("process not found")

const schema = `
CREATE TABLE IF NOT EXISTS processes (
	process_number TEXT NOT NULL,
	source         TEXT NOT NULL,
	json           TEXT NOT NULL,
	created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (process_number, source)
);
`

// Store wraps the database handle.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, logger: logger.With("component", "store")}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record is one persisted extraction row.
type Record struct {
	ProcessNumber string              `json:"process_number"`
	Source        string              `json:"source"`
	Document      *extractor.Document `json:"document"`
	CreatedAt     time.Time           `json:"created_at"`
}

// Save upserts the document under its process number and source file.
// Writes retry on transient lock contention.
func (s *Store) Save(ctx context.Context, doc *extractor.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	key := doc.ProcessNumber
	if key == "" {
		key = doc.Source
	}

	err = retry.Do(
		func() error {
			_, err := s.db.ExecContext(ctx, `
				INSERT INTO processes (process_number, source, json)
				VALUES (?, ?, ?)
				ON CONFLICT (process_number, source) DO UPDATE SET
					json = excluded.json,
					created_at = CURRENT_TIMESTAMP`,
				key, doc.Source, string(payload))
			return err
		},
		retry.Context(ctx),
		retry.Attempts(5),
		retry.Delay(100*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(isBusy),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("save process %s: %w", key, err)
	}
	s.logger.Debug("saved process", "process", key, "source", doc.Source)
	return nil
}

// Get loads the document for a process number. When several sources
// share the number, the most recent row wins.
func (s *Store) Get(ctx context.Context, processNumber string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT process_number, source, json, created_at
		FROM processes
		WHERE process_number = ?
		ORDER BY created_at DESC
		LIMIT 1`, processNumber)
	return scanRecord(row)
}

// List returns every persisted record, most recent first.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT process_number, source, json, created_at
		FROM processes
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var rec Record
	var payload string
	err := row.Scan(&rec.ProcessNumber, &rec.Source, &payload, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan process row: %w", err)
	}
	if err := json.Unmarshal([]byte(payload), &rec.Document); err != nil {
		return nil, fmt.Errorf("unmarshal process %s: %w", rec.ProcessNumber, err)
	}
	return &rec, nil
}

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "busy") || strings.Contains(msg, "locked")
}
