// Package journal persists applied instructions to SQLite.
//
// The journal is an append-only forensic log: every instruction the
// sink accepted is recorded with the content hashes of the snapshots on
// either side and the canonical JSON payload of its operations. The
// entry ID is itself a content hash, so recording the same application
// twice is a no-op and crash-replay cannot duplicate entries.
//
// Uses WAL mode with a single writer, matching SQLite's one-writer
// concurrency model.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ezoushen/listproxy/internal/diffkit"
	"github.com/ezoushen/listproxy/internal/model"
)

//go:embed schema.sql
var schemaSQL string

const currentSchemaVersion = 1

// Entry is one recorded application.
type Entry struct {
	// ID is hash(before_hash, after_hash, payload) under the journal
	// domain. It doubles as the idempotency key.
	ID string

	// BeforeHash and AfterHash are the content hashes of the snapshots
	// on either side of the application.
	BeforeHash string
	AfterHash  string

	// Ops is the instruction's operation payload.
	Ops diffkit.Ops

	// OpCount is the total operation count, denormalized for cheap
	// timeline summaries.
	OpCount int

	// RecordedAt is the wall-clock time of the first recording, UTC.
	RecordedAt time.Time
}

// Journal is an applied-instruction log backed by SQLite.
type Journal struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Journal.
type Option func(*Journal)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(j *Journal) {
		j.logger = logger
	}
}

// WithClock overrides the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(j *Journal) {
		j.now = now
	}
}

// Open creates or opens the journal database at path. ":memory:" gives
// an ephemeral journal. Pragmas and schema are applied idempotently.
func Open(path string, opts ...Option) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect journal: %w", err)
	}

	// SQLite supports one writer at a time; a single pooled connection
	// avoids SQLITE_BUSY and keeps :memory: databases coherent.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, err
	}

	j := &Journal{
		db:     db,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Record appends one applied instruction. Returns whether a new entry
// was inserted; re-recording an identical application reports false.
func (j *Journal) Record(ctx context.Context, before, after model.Snapshot, in *diffkit.Instruction) (bool, error) {
	payload, err := json.Marshal(in.Ops())
	if err != nil {
		return false, fmt.Errorf("record instruction: marshal payload: %w", err)
	}

	beforeHash := before.ContentHash()
	afterHash := after.ContentHash()
	id := model.HashFields(model.DomainJournal, beforeHash, afterHash, string(payload))

	res, err := j.db.ExecContext(ctx, `
		INSERT INTO instructions
		(id, before_hash, after_hash, payload, op_count, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		id,
		beforeHash,
		afterHash,
		string(payload),
		in.OpCount(),
		j.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return false, fmt.Errorf("record instruction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record instruction: rows affected: %w", err)
	}
	return affected > 0, nil
}

// InstructionApplied implements the binder's ApplyObserver. Recording
// failures are logged, not surfaced: journaling is forensic and must
// never fail an otherwise applied mutation.
func (j *Journal) InstructionApplied(ctx context.Context, before, after model.Snapshot, in *diffkit.Instruction) {
	if _, err := j.Record(ctx, before, after, in); err != nil {
		j.logger.Error("journal record failed", "error", err)
	}
}

// Timeline returns all entries in recording order. Returns an empty
// slice (not nil) when the journal is empty.
func (j *Journal) Timeline(ctx context.Context) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, before_hash, after_hash, payload, op_count, recorded_at
		FROM instructions
		ORDER BY rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query timeline: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timeline: %w", err)
	}
	return entries, nil
}

// EntriesFrom returns the entries whose before-hash matches the given
// snapshot hash, in recording order. Used to answer "what was ever
// applied on top of this state".
func (j *Journal) EntriesFrom(ctx context.Context, beforeHash string) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, before_hash, after_hash, payload, op_count, recorded_at
		FROM instructions
		WHERE before_hash = ?
		ORDER BY rowid ASC
	`, beforeHash)
	if err != nil {
		return nil, fmt.Errorf("query entries from: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries from: %w", err)
	}
	return entries, nil
}

// Len returns the number of recorded entries.
func (j *Journal) Len(ctx context.Context) (int, error) {
	var n int
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM instructions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		e          Entry
		payload    string
		recordedAt string
	)
	if err := rows.Scan(&e.ID, &e.BeforeHash, &e.AfterHash, &payload, &e.OpCount, &recordedAt); err != nil {
		return Entry{}, fmt.Errorf("scan entry: %w", err)
	}
	if err := json.Unmarshal([]byte(payload), &e.Ops); err != nil {
		return Entry{}, fmt.Errorf("decode payload: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, recordedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("parse recorded_at: %w", err)
	}
	e.RecordedAt = ts
	return e, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("apply %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}
