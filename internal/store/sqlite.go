package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/tyler180/fantasy-market-share/internal/marketshare"
)

var marketShareSchema = []string{`
CREATE TABLE IF NOT EXISTS market_share (
	season             INTEGER NOT NULL,
	week               INTEGER NOT NULL,
	game_id            TEXT    NOT NULL,
	player_id          TEXT    NOT NULL,
	player_name        TEXT    NOT NULL,
	team               TEXT    NOT NULL,
	position           TEXT    NOT NULL,
	carries            INTEGER NOT NULL,
	targets            INTEGER NOT NULL,
	catches            INTEGER NOT NULL,
	touches            INTEGER NOT NULL,
	total_plays        INTEGER NOT NULL,
	team_pass_attempts INTEGER NOT NULL,
	rb_market_share    REAL,
	rec_market_share   REAL
)`,
	`CREATE INDEX IF NOT EXISTS market_share_season_week ON market_share (season, week)`,
}

// SQLite is a local warehouse copy of the enriched relation.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and ensures the schema.
func OpenSQLite(path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	for _, stmt := range marketShareSchema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func nullShare(f float64) sql.NullFloat64 {
	if math.IsNaN(f) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

// ReplaceRows swaps in rows for every season they cover, in one transaction.
// Re-running with the same rows leaves the table unchanged.
func (s *SQLite) ReplaceRows(ctx context.Context, rows []marketshare.EnrichedStat) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	seasons := map[int]struct{}{}
	for _, r := range rows {
		seasons[r.Season] = struct{}{}
	}
	for season := range seasons {
		if _, err := tx.ExecContext(ctx, `DELETE FROM market_share WHERE season = ?`, season); err != nil {
			return fmt.Errorf("clear season %d: %w", season, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO market_share (
	season, week, game_id, player_id, player_name, team, position,
	carries, targets, catches, touches, total_plays, team_pass_attempts,
	rb_market_share, rec_market_share
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx,
			r.Season, r.Week, r.GameID, r.PlayerID, r.PlayerName, r.Team, r.Position,
			r.Carries, r.Targets, r.Catches, r.Touches, r.TotalPlays, r.TeamPassAttempts,
			nullShare(r.RBMarketShare), nullShare(r.RecMarketShare),
		); err != nil {
			return fmt.Errorf("insert %s/%s: %w", r.GameID, r.PlayerID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// CountSeason returns the number of stored rows for season.
func (s *SQLite) CountSeason(ctx context.Context, season int) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM market_share WHERE season = ?`, season).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count season %d: %w", season, err)
	}
	return n, nil
}
