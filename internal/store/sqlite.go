package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	apperrors "justtrades-bot/internal/errors"
	"justtrades-bot/internal/models"
)

// SQLiteJournal implements Journal using SQLite.
type SQLiteJournal struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteJournal opens (or creates) the journal database at dbPath.
func NewSQLiteJournal(dbPath string) (*SQLiteJournal, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseError, fmt.Sprintf("failed to open database: %v", err))
	}

	// A single writer keeps SQLite from returning SQLITE_BUSY under load.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	j := &SQLiteJournal{db: db, now: time.Now}
	if err := j.initSchema(); err != nil {
		db.Close()
		return nil, apperrors.Wrap(apperrors.ErrDatabaseError, fmt.Sprintf("failed to initialize schema: %v", err))
	}
	return j, nil
}

// initSchema creates all required tables and indexes.
func (j *SQLiteJournal) initSchema() error {
	schema := `
	-- Trade alerts relayed to the alerts channel
	CREATE TABLE IF NOT EXISTS trade_alerts (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		symbol TEXT NOT NULL,
		side TEXT NOT NULL,
		entry TEXT NOT NULL,
		stop TEXT NOT NULL,
		target TEXT NOT NULL,
		notes TEXT,
		author TEXT
	);

	-- Trade results
	CREATE TABLE IF NOT EXISTS trade_closes (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		symbol TEXT NOT NULL,
		result TEXT NOT NULL,
		pnl TEXT NOT NULL,
		notes TEXT,
		author TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_trade_alerts_created ON trade_alerts(created_at);
	CREATE INDEX IF NOT EXISTS idx_trade_closes_created ON trade_closes(created_at);
	`
	_, err := j.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

// Ping checks the database connection.
func (j *SQLiteJournal) Ping(ctx context.Context) error {
	return j.db.PingContext(ctx)
}

// LogAlert stores a trade alert and returns its ID.
func (j *SQLiteJournal) LogAlert(ctx context.Context, a models.TradeAlert) (string, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = j.now()
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO trade_alerts (id, created_at, symbol, side, entry, stop, target, notes, author)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.CreatedAt.UTC(), a.Symbol, string(a.Side), a.Entry.String(), a.Stop.String(), a.Target.String(), a.Notes, a.Author)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrDatabaseError, fmt.Sprintf("failed to log alert: %v", err))
	}
	return a.ID, nil
}

// LogClose stores a trade result and returns its ID.
func (j *SQLiteJournal) LogClose(ctx context.Context, c models.TradeClose) (string, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = j.now()
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO trade_closes (id, created_at, symbol, result, pnl, notes, author)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.CreatedAt.UTC(), c.Symbol, string(c.Result), c.PnL.String(), c.Notes, c.Author)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrDatabaseError, fmt.Sprintf("failed to log close: %v", err))
	}
	return c.ID, nil
}

// Stats summarizes alerts and closes created at or after since.
func (j *SQLiteJournal) Stats(ctx context.Context, since time.Time) (JournalStats, error) {
	var alerts int
	err := j.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM trade_alerts WHERE created_at >= ?", since.UTC(),
	).Scan(&alerts)
	if err != nil {
		return JournalStats{}, apperrors.Wrap(apperrors.ErrDatabaseError, fmt.Sprintf("failed to count alerts: %v", err))
	}

	closes, err := j.queryCloses(ctx, "WHERE created_at >= ? ORDER BY created_at ASC", since.UTC())
	if err != nil {
		return JournalStats{}, err
	}
	return summarize(since, alerts, closes), nil
}

// RecentCloses returns the latest closes, newest first.
func (j *SQLiteJournal) RecentCloses(ctx context.Context, limit int) ([]models.TradeClose, error) {
	if limit <= 0 {
		limit = 10
	}
	return j.queryCloses(ctx, "ORDER BY created_at DESC LIMIT ?", limit)
}

func (j *SQLiteJournal) queryCloses(ctx context.Context, clause string, args ...interface{}) ([]models.TradeClose, error) {
	rows, err := j.db.QueryContext(ctx,
		"SELECT id, created_at, symbol, result, pnl, notes, author FROM trade_closes "+clause, args...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseError, fmt.Sprintf("failed to query closes: %v", err))
	}
	defer rows.Close()

	var closes []models.TradeClose
	for rows.Next() {
		var (
			c             models.TradeClose
			result, pnl   string
			notes, author sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.CreatedAt, &c.Symbol, &result, &pnl, &notes, &author); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrDatabaseError, fmt.Sprintf("failed to scan close: %v", err))
		}
		c.Result = models.TradeResult(result)
		c.PnL, err = decimal.NewFromString(pnl)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrDatabaseError, fmt.Sprintf("bad pnl %q: %v", pnl, err))
		}
		c.Notes = notes.String
		c.Author = author.String
		closes = append(closes, c)
	}
	return closes, rows.Err()
}
