package db

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Database caches compile results so identical submissions skip the
// metered Judge0 call. Only a hash of the submission is stored, never
// the code itself.
type Database struct {
	db *sql.DB
}

type CachedResult struct {
	Hash       string
	Language   string
	Output     string
	Hits       int
	CreatedAt  time.Time
	LastUsedAt time.Time
}

func New(dbPath string) (*Database, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	log.Printf("Database initialized at %s", dbPath)
	return &Database{db: db}, nil
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS compile_results (
		hash TEXT PRIMARY KEY,
		language TEXT NOT NULL,
		output TEXT NOT NULL,
		hits INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_used_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_compile_results_created_at ON compile_results(created_at);
	`

	_, err := db.Exec(schema)
	return err
}

func (d *Database) Close() error {
	return d.db.Close()
}

// HashSubmission derives the cache key for a language/code pair.
func HashSubmission(language, code string) string {
	h := sha256.New()
	h.Write([]byte(language))
	h.Write([]byte{0})
	h.Write([]byte(code))
	return hex.EncodeToString(h.Sum(nil))
}

// SaveResult stores or replaces the cached output for a submission hash.
func (d *Database) SaveResult(hash, language, output string) error {
	_, err := d.db.Exec(`
		INSERT INTO compile_results (hash, language, output)
		VALUES (?, ?, ?)
		ON CONFLICT(hash) DO UPDATE SET
			output = excluded.output,
			last_used_at = CURRENT_TIMESTAMP
	`, hash, language, output)
	return err
}

// GetResult returns the cached result for a hash, or nil on a miss.
func (d *Database) GetResult(hash string) (*CachedResult, error) {
	row := d.db.QueryRow(`
		SELECT hash, language, output, hits, created_at, last_used_at
		FROM compile_results WHERE hash = ?
	`, hash)

	var r CachedResult
	err := row.Scan(&r.Hash, &r.Language, &r.Output, &r.Hits, &r.CreatedAt, &r.LastUsedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// MarkHit records a cache hit for a submission hash.
func (d *Database) MarkHit(hash string) error {
	_, err := d.db.Exec(`
		UPDATE compile_results
		SET hits = hits + 1, last_used_at = CURRENT_TIMESTAMP
		WHERE hash = ?
	`, hash)
	return err
}

// DeleteResultsOlderThan prunes entries not used within maxAge and
// returns how many were removed.
func (d *Database) DeleteResultsOlderThan(maxAge time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	result, err := d.db.Exec(
		"DELETE FROM compile_results WHERE last_used_at < ?",
		cutoff.Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Stats

func (d *Database) GetStats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var resultCount int
	if err := d.db.QueryRow("SELECT COUNT(*) FROM compile_results").Scan(&resultCount); err != nil {
		return nil, err
	}
	stats["cached_results"] = resultCount

	var totalHits int
	if err := d.db.QueryRow("SELECT COALESCE(SUM(hits), 0) FROM compile_results").Scan(&totalHits); err != nil {
		return nil, err
	}
	stats["cache_hits"] = totalHits

	return stats, nil
}
