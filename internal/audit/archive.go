package audit

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Archive provides durable retention of audit trails.
// Uses SQLite with WAL mode for concurrent read access.
//
// The archive is write-mostly: a pipeline run appends its trail once at the
// end, and humans query it later. Nothing in the live store path depends on
// it.
type Archive struct {
	db *sql.DB
}

// OpenArchive creates or opens a SQLite archive at the given path.
// Applies required pragmas and the schema automatically; safe to call
// multiple times.
func OpenArchive(path string) (*Archive, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to archive: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Archive{db: db}, nil
}

// Close closes the archive connection.
func (a *Archive) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// WriteTrail inserts a full audit trail for a story in one transaction.
// Uses ON CONFLICT(story_id, seq) DO NOTHING for idempotency - re-archiving
// the same trail is a no-op for entries already present.
func (a *Archive) WriteTrail(ctx context.Context, storyID string, entries []Entry) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("archive trail: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO audit_entries
		(story_id, seq, timestamp, action, keys, value_type, size_kb)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(story_id, seq) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("archive trail: prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		keysJSON, err := marshalKeys(e.Keys)
		if err != nil {
			return fmt.Errorf("archive trail: seq %d: %w", e.Seq, err)
		}

		_, err = stmt.ExecContext(ctx,
			storyID,
			e.Seq,
			e.Timestamp.UTC().Format(time.RFC3339Nano),
			string(e.Action),
			keysJSON,
			e.ValueType,
			e.SizeKB,
		)
		if err != nil {
			return fmt.Errorf("archive trail: insert seq %d: %w", e.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("archive trail: commit: %w", err)
	}
	return nil
}

// ReadTrail returns the archived entries for a story, ordered by seq ASC.
// Returns an empty slice (not nil) when the story has no archived entries.
func (a *Archive) ReadTrail(ctx context.Context, storyID string) ([]Entry, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT seq, timestamp, action, keys, value_type, size_kb
		FROM audit_entries
		WHERE story_id = ?
		ORDER BY seq ASC
	`, storyID)
	if err != nil {
		return nil, fmt.Errorf("query trail: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts, action, keysJSON string
		if err := rows.Scan(&e.Seq, &ts, &action, &keysJSON, &e.ValueType, &e.SizeKB); err != nil {
			return nil, fmt.Errorf("scan trail entry: %w", err)
		}

		e.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse trail timestamp: %w", err)
		}
		e.Action = Action(action)

		e.Keys, err = unmarshalKeys(keysJSON)
		if err != nil {
			return nil, fmt.Errorf("parse trail keys: %w", err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trail: %w", err)
	}

	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// StoryIDs returns the distinct story ids present in the archive, sorted.
func (a *Archive) StoryIDs(ctx context.Context) ([]string, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT DISTINCT story_id FROM audit_entries ORDER BY story_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query story ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan story id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate story ids: %w", err)
	}

	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// marshalKeys serializes the key list as JSON TEXT for storage.
func marshalKeys(keys []string) (string, error) {
	if keys == nil {
		keys = []string{}
	}
	data, err := json.Marshal(keys)
	if err != nil {
		return "", fmt.Errorf("marshal keys: %w", err)
	}
	return string(data), nil
}

// unmarshalKeys parses JSON TEXT back into a key list.
func unmarshalKeys(data string) ([]string, error) {
	var keys []string
	if err := json.Unmarshal([]byte(data), &keys); err != nil {
		return nil, fmt.Errorf("unmarshal keys: %w", err)
	}
	return keys, nil
}
