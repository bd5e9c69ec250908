// CLAUDE:SUMMARY SQLite cache of extraction results keyed by content hash — skip reprocessing unchanged files.
// Package store caches extraction results in SQLite, keyed by the source
// file's SHA-256. Callers hash the file, look the digest up, and only run
// the extraction pipeline on a miss.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Renopop/RAG-v7/dbopen"
)

// ErrNotFound is returned by Get when no record matches the digest.
var ErrNotFound = errors.New("store: record not found")

const schema = `
CREATE TABLE IF NOT EXISTS extractions (
	sha256          TEXT PRIMARY KEY,
	path            TEXT NOT NULL,
	format          TEXT NOT NULL,
	method          TEXT NOT NULL,
	text            TEXT NOT NULL,
	slides_count    INTEGER NOT NULL DEFAULT 0,
	images_count    INTEGER NOT NULL DEFAULT 0,
	images_ocr      INTEGER NOT NULL DEFAULT 0,
	processing_time REAL NOT NULL DEFAULT 0,
	created_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_extractions_created ON extractions(created_at);
`

// Record is one cached extraction result.
type Record struct {
	SHA256         string    `json:"sha256"`
	Path           string    `json:"path"`
	Format         string    `json:"format"`
	Method         string    `json:"method"`
	Text           string    `json:"text"`
	SlidesCount    int       `json:"slides_count"`
	ImagesCount    int       `json:"images_count"`
	ImagesOCR      int       `json:"images_ocr"`
	ProcessingTime float64   `json:"processing_time"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store wraps the extraction cache database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the cache database at path.
func Open(path string) (*Store, error) {
	db, err := dbopen.Open(path, dbopen.WithMkdirAll(), dbopen.WithSchema(schema))
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put inserts or replaces the record for its digest.
func (s *Store) Put(ctx context.Context, rec Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := dbopen.Exec(ctx, s.db, `
		INSERT OR REPLACE INTO extractions
		(sha256, path, format, method, text, slides_count, images_count, images_ocr, processing_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SHA256, rec.Path, rec.Format, rec.Method, rec.Text,
		rec.SlidesCount, rec.ImagesCount, rec.ImagesOCR, rec.ProcessingTime,
		rec.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("store: put %s: %w", rec.SHA256, err)
	}
	return nil
}

// Get returns the record for a digest, or ErrNotFound.
func (s *Store) Get(ctx context.Context, sha string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT sha256, path, format, method, text, slides_count, images_count, images_ocr, processing_time, created_at
		FROM extractions WHERE sha256 = ?`, sha)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("store: get %s: %w", sha, err)
	}
	return rec, nil
}

// Recent returns the n most recently cached records, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sha256, path, format, method, text, slides_count, images_count, images_ocr, processing_time, created_at
		FROM extractions ORDER BY created_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("store: recent: %w", err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("store: recent: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Prune deletes all but the keep newest records and returns how many were
// removed. Count and delete run in one transaction so a concurrent Put
// cannot slip between them.
func (s *Store) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	removed := 0
	err := dbopen.RunTx(ctx, s.db, func(tx *sql.Tx) error {
		var total int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM extractions`).Scan(&total); err != nil {
			return err
		}
		if total <= keep {
			return nil
		}
		res, err := tx.ExecContext(ctx, `
			DELETE FROM extractions WHERE sha256 NOT IN (
				SELECT sha256 FROM extractions ORDER BY created_at DESC LIMIT ?)`, keep)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		removed = int(n)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("store: prune: %w", err)
	}
	return removed, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var rec Record
	var created string
	err := row.Scan(&rec.SHA256, &rec.Path, &rec.Format, &rec.Method, &rec.Text,
		&rec.SlidesCount, &rec.ImagesCount, &rec.ImagesOCR, &rec.ProcessingTime, &created)
	if err != nil {
		return Record{}, err
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return rec, nil
}

// HashFile returns the hex SHA-256 of the file contents.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
