package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *zap.Logger
	now func() time.Time
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log *zap.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log, now: time.Now}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

// OpenSQLiteHistory opens an existing history database read-only for
// reporting. It never creates, migrates or journals the file; a missing file
// is returned as an os not-exist error.
func OpenSQLiteHistory(dbPath string, log *zap.Logger) (*SQLiteRecorder, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(dbPath)+"?mode=ro&immutable=1")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	return &SQLiteRecorder{db: db, log: log, now: time.Now}, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS auth_events (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			success    INTEGER NOT NULL,
			user_name  TEXT,
			error_code TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_auth_ts ON auth_events(timestamp)`,

		`CREATE TABLE IF NOT EXISTS fetch_events (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			run_id     TEXT NOT NULL,
			symbol     TEXT NOT NULL,
			ticker     TEXT,
			candles    INTEGER,
			saved      INTEGER NOT NULL,
			error_code TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fetch_run ON fetch_events(run_id)`,

		`CREATE TABLE IF NOT EXISTS runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			run_id      TEXT NOT NULL UNIQUE,
			days        INTEGER,
			succeeded   INTEGER,
			total       INTEGER,
			duration_ms INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordAuth(evt *AuthEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO auth_events
		(timestamp, success, user_name, error_code)
		VALUES (?,?,?,?)`,
		r.now().Unix(), evt.Success, evt.UserName, evt.Code,
	)
	return err
}

func (r *SQLiteRecorder) RecordFetch(evt *FetchEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO fetch_events
		(timestamp, run_id, symbol, ticker, candles, saved, error_code)
		VALUES (?,?,?,?,?,?,?)`,
		r.now().Unix(), evt.RunID, evt.Symbol, evt.Ticker,
		evt.Candles, evt.Saved, evt.Code,
	)
	return err
}

func (r *SQLiteRecorder) RecordRun(evt *RunEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO runs
		(timestamp, run_id, days, succeeded, total, duration_ms)
		VALUES (?,?,?,?,?,?)`,
		r.now().Unix(), evt.RunID, evt.Days, evt.Succeeded, evt.Total,
		evt.Duration.Milliseconds(),
	)
	return err
}

// LastRun returns the most recent run, or nil when none has been recorded.
func (r *SQLiteRecorder) LastRun() (*RunEvent, time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		evt       RunEvent
		ts, durMS int64
	)
	err := r.db.QueryRow(`SELECT run_id, days, succeeded, total, duration_ms, timestamp
		FROM runs ORDER BY timestamp DESC, id DESC LIMIT 1`).
		Scan(&evt.RunID, &evt.Days, &evt.Succeeded, &evt.Total, &durMS, &ts)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	evt.Duration = time.Duration(durMS) * time.Millisecond
	return &evt, time.Unix(ts, 0), nil
}

// FailedSymbols lists the symbols that were not saved in the given run.
func (r *SQLiteRecorder) FailedSymbols(runID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT symbol FROM fetch_events
		WHERE run_id = ? AND saved = 0 ORDER BY symbol`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
