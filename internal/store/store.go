// Package store provides SQLite persistence for the trendlens run archive:
// weekly records and the insights generated for them.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/abelbrown/trendlens/internal/model"
)

// Store handles SQLite persistence. NOT an interface - concrete type.
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Store struct {
	db *sql.DB
	mu sync.RWMutex // Protects all database operations
}

// Open creates a new Store with the given database path.
// Creates tables if they don't exist.
// Uses WAL mode for better concurrent read performance (file-based DBs only).
func Open(dbPath string) (*Store, error) {
	// Build connection string based on database type
	connStr := dbPath
	if dbPath == ":memory:" {
		// For in-memory databases, use shared cache mode so all connections
		// in the pool see the same database
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// For in-memory databases, limit to 1 connection to avoid issues
	// with multiple connections getting different databases
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Enable WAL mode for file-based databases (not :memory:)
	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}

	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return s, nil
}

// createTables creates the required tables and indexes if they don't exist.
func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);

	CREATE TABLE IF NOT EXISTS theme_scores (
		run_id TEXT NOT NULL,
		theme TEXT NOT NULL,
		score REAL NOT NULL,
		item_count INTEGER NOT NULL,
		PRIMARY KEY (run_id, theme),
		FOREIGN KEY (run_id) REFERENCES runs(run_id)
	);

	CREATE TABLE IF NOT EXISTS insights (
		run_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		type TEXT NOT NULL,
		theme TEXT,
		narrative TEXT,
		evidence TEXT NOT NULL,
		confidence REAL NOT NULL,
		PRIMARY KEY (run_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_insights_type ON insights(type);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
// Thread-safe: acquires write lock to prevent closing during in-flight operations.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// SaveRecord archives a weekly record. A duplicate run identifier is
// silently ignored; the return value reports whether the record was new.
// Records are immutable once archived, so there is nothing to update.
// Thread-safe: acquires write lock.
func (s *Store) SaveRecord(rec model.WeeklyRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		"INSERT OR IGNORE INTO runs (run_id, created_at) VALUES (?, ?)",
		rec.RunID(), rec.Timestamp().UTC(),
	)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil // already archived
	}

	stmt, err := tx.Prepare(
		"INSERT INTO theme_scores (run_id, theme, score, item_count) VALUES (?, ?, ?, ?)",
	)
	if err != nil {
		return false, err
	}
	defer stmt.Close()

	for _, theme := range rec.Themes() {
		if _, err := stmt.Exec(rec.RunID(), theme, rec.Score(theme), rec.Count(theme)); err != nil {
			return false, err
		}
	}

	return true, tx.Commit()
}

// GetRecord loads one archived record by run identifier.
// Returns ok=false when the run is not archived.
// Thread-safe: acquires read lock.
func (s *Store) GetRecord(runID string) (model.WeeklyRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var created time.Time
	err := s.db.QueryRow("SELECT created_at FROM runs WHERE run_id = ?", runID).Scan(&created)
	if err == sql.ErrNoRows {
		return model.WeeklyRecord{}, false, nil
	}
	if err != nil {
		return model.WeeklyRecord{}, false, err
	}

	rec, err := s.loadRecord(runID, created)
	if err != nil {
		return model.WeeklyRecord{}, false, err
	}
	return rec, true, nil
}

// LatestRecord loads the most recently dated record, if any.
// Thread-safe: acquires read lock.
func (s *Store) LatestRecord() (model.WeeklyRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var runID string
	var created time.Time
	err := s.db.QueryRow("SELECT run_id, created_at FROM runs ORDER BY created_at DESC LIMIT 1").Scan(&runID, &created)
	if err == sql.ErrNoRows {
		return model.WeeklyRecord{}, false, nil
	}
	if err != nil {
		return model.WeeklyRecord{}, false, err
	}

	rec, err := s.loadRecord(runID, created)
	if err != nil {
		return model.WeeklyRecord{}, false, err
	}
	return rec, true, nil
}

// History returns all records dated strictly before the given time, oldest
// first. This is the series the engine consumes: pass the current record's
// timestamp to get everything that preceded it.
// Thread-safe: acquires read lock.
func (s *Store) History(before time.Time) (model.HistorySeries, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryRuns("SELECT run_id, created_at FROM runs WHERE created_at < ? ORDER BY created_at ASC", before.UTC())
}

// AllRecords returns every archived record, oldest first.
// Thread-safe: acquires read lock.
func (s *Store) AllRecords() (model.HistorySeries, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryRuns("SELECT run_id, created_at FROM runs ORDER BY created_at ASC")
}

// RunIDs returns all archived run identifiers, oldest first.
// Thread-safe: acquires read lock.
func (s *Store) RunIDs() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT run_id FROM runs ORDER BY created_at ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ReplaceInsights swaps the stored insights for a run. Insert order is
// preserved so reports and the UI replay the engine's emission order.
// Thread-safe: acquires write lock.
func (s *Store) ReplaceInsights(runID string, insights []model.Insight) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM insights WHERE run_id = ?", runID); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO insights (run_id, position, type, theme, narrative, evidence, confidence)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, in := range insights {
		evidence, err := json.Marshal(in.Evidence)
		if err != nil {
			return fmt.Errorf("marshal evidence for %s[%d]: %w", runID, i, err)
		}
		if _, err := stmt.Exec(runID, i, string(in.Type), in.Theme(), in.Narrative, string(evidence), in.Confidence); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetInsights loads a run's insights in their stored (emission) order.
// Evidence numbers come back as float64; that is the engine's native width.
// Thread-safe: acquires read lock.
func (s *Store) GetInsights(runID string) ([]model.Insight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT type, narrative, evidence, confidence
		FROM insights
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var insights []model.Insight
	for rows.Next() {
		var typ, narrative, evidenceJSON string
		var confidence float64
		if err := rows.Scan(&typ, &narrative, &evidenceJSON, &confidence); err != nil {
			return nil, err
		}

		evidence := make(map[string]any)
		if err := json.Unmarshal([]byte(evidenceJSON), &evidence); err != nil {
			return nil, fmt.Errorf("unmarshal evidence for %s: %w", runID, err)
		}

		insights = append(insights, model.Insight{
			Type:       model.InsightType(typ),
			Narrative:  narrative,
			Evidence:   evidence,
			Confidence: confidence,
		})
	}
	return insights, rows.Err()
}

// Stats summarizes the archive.
type Stats struct {
	Runs           int
	Themes         int // distinct theme names across all runs
	Insights       int
	InsightsByType map[model.InsightType]int
}

// ArchiveStats returns counts across the whole archive.
// Thread-safe: acquires read lock.
func (s *Store) ArchiveStats() (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{InsightsByType: make(map[model.InsightType]int)}

	if err := s.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&stats.Runs); err != nil {
		return stats, err
	}
	if err := s.db.QueryRow("SELECT COUNT(DISTINCT theme) FROM theme_scores").Scan(&stats.Themes); err != nil {
		return stats, err
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM insights").Scan(&stats.Insights); err != nil {
		return stats, err
	}

	rows, err := s.db.Query("SELECT type, COUNT(*) FROM insights GROUP BY type")
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	for rows.Next() {
		var typ string
		var count int
		if err := rows.Scan(&typ, &count); err != nil {
			return stats, err
		}
		stats.InsightsByType[model.InsightType(typ)] = count
	}
	return stats, rows.Err()
}

// queryRuns loads full records for a run query.
// Caller must hold s.mu (read lock is sufficient).
func (s *Store) queryRuns(query string, args ...any) (model.HistorySeries, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type runRow struct {
		id      string
		created time.Time
	}
	var runs []runRow
	for rows.Next() {
		var r runRow
		if err := rows.Scan(&r.id, &r.created); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	series := make(model.HistorySeries, 0, len(runs))
	for _, r := range runs {
		rec, err := s.loadRecord(r.id, r.created)
		if err != nil {
			return nil, err
		}
		series = append(series, rec)
	}
	return series, nil
}

// loadRecord rebuilds one WeeklyRecord from its theme score rows.
// Caller must hold s.mu (read lock is sufficient).
func (s *Store) loadRecord(runID string, created time.Time) (model.WeeklyRecord, error) {
	rows, err := s.db.Query(
		"SELECT theme, score, item_count FROM theme_scores WHERE run_id = ? ORDER BY theme ASC",
		runID,
	)
	if err != nil {
		return model.WeeklyRecord{}, err
	}
	defer rows.Close()

	var themeRows []model.ThemeRow
	for rows.Next() {
		var tr model.ThemeRow
		if err := rows.Scan(&tr.Theme, &tr.Score, &tr.Count); err != nil {
			return model.WeeklyRecord{}, err
		}
		themeRows = append(themeRows, tr)
	}
	if err := rows.Err(); err != nil {
		return model.WeeklyRecord{}, err
	}

	rec, err := model.NewWeeklyRecord(runID, created, themeRows)
	if err != nil {
		return model.WeeklyRecord{}, fmt.Errorf("archived record %s: %w", runID, err)
	}
	return rec, nil
}
