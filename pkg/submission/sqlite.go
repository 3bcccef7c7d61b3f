package submission

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS submissions (
	id           TEXT PRIMARY KEY,
	submitted_at TEXT NOT NULL,
	title        TEXT NOT NULL DEFAULT '',
	overall      REAL NOT NULL DEFAULT 0,
	enps         REAL NOT NULL DEFAULT 0,
	payload      TEXT NOT NULL
);
`

// Record is a stored submission row.
type Record struct {
	ID          string  `db:"id"`
	SubmittedAt string  `db:"submitted_at"`
	Title       string  `db:"title"`
	Overall     float64 `db:"overall"`
	ENPS        float64 `db:"enps"`
	Payload     string  `db:"payload"`
}

// Decode unmarshals the stored payload.
func (r Record) Decode() (Submission, error) {
	var sub Submission
	if err := json.Unmarshal([]byte(r.Payload), &sub); err != nil {
		return Submission{}, fmt.Errorf("submission: decode %s: %w", r.ID, err)
	}
	return sub, nil
}

func newRecord(sub Submission) (Record, error) {
	payload, err := json.Marshal(sub)
	if err != nil {
		return Record{}, fmt.Errorf("submission: encode %s: %w", sub.ID, err)
	}
	return Record{
		ID:          sub.ID,
		SubmittedAt: sub.SubmittedAt.Format(time.RFC3339Nano),
		Title:       sub.Title(),
		Overall:     sub.Scores.Overall,
		ENPS:        sub.Scores.ENPS,
		Payload:     string(payload),
	}, nil
}

// SQLiteSink stores submissions in a local SQLite database.
type SQLiteSink struct {
	db *sqlx.DB
}

// NewSQLiteSink opens (or creates) the database at path. Use ":memory:" for
// an ephemeral store.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("submission: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("submission: create schema: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

// Submit implements Sink.
func (s *SQLiteSink) Submit(ctx context.Context, sub Submission) (Receipt, error) {
	rec, err := newRecord(sub)
	if err != nil {
		return Receipt{}, err
	}
	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO submissions (id, submitted_at, title, overall, enps, payload)
		VALUES (:id, :submitted_at, :title, :overall, :enps, :payload)`, rec)
	if err != nil {
		return Receipt{}, fmt.Errorf("submission: insert %s: %w", sub.ID, err)
	}
	return NewReceipt("sqlite", sub), nil
}

// Records lists stored submissions, newest first.
func (s *SQLiteSink) Records(ctx context.Context) ([]Record, error) {
	var out []Record
	if err := s.db.SelectContext(ctx, &out, `
		SELECT id, submitted_at, title, overall, enps, payload
		FROM submissions ORDER BY submitted_at DESC`); err != nil {
		return nil, fmt.Errorf("submission: list: %w", err)
	}
	return out, nil
}

// Close releases the database.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
