// Package archive stores concluded battle summaries in SQLite.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Garsondee/Battle-Sense/internal/game"
)

// Archive is a battle results store.
type Archive struct {
	db *sql.DB
}

// Open opens (or creates) the archive at path. ":memory:" works for tests.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	// One connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %s: %w", pragma, err)
		}
	}

	for _, ddl := range []string{
		`CREATE TABLE IF NOT EXISTS battles (
			id TEXT PRIMARY KEY,
			winner TEXT NOT NULL,
			ticks INTEGER NOT NULL,
			retreat INTEGER NOT NULL DEFAULT 0,
			destroyed TEXT,
			demolished TEXT,
			recorded_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS losses (
			battle_id TEXT NOT NULL REFERENCES battles(id) ON DELETE CASCADE,
			side TEXT NOT NULL,
			kind TEXT NOT NULL,
			outcome TEXT NOT NULL,
			count INTEGER NOT NULL,
			PRIMARY KEY (battle_id, side, kind, outcome)
		)`,
	} {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return nil, fmt.Errorf("create table: %w", err)
		}
	}
	return &Archive{db: db}, nil
}

// Close releases the database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Record stores one summary. Recording the same battle twice is an error.
func (a *Archive) Record(ctx context.Context, s game.Summary) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record %s: %w", s.BattleID, err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO battles (id, winner, ticks, retreat, destroyed, demolished, recorded_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.BattleID, s.Winner.String(), s.Ticks, s.Retreat,
		strings.Join(s.Destroyed, ","), strings.Join(s.Demolished, ","), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("record %s: %w", s.BattleID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO losses (battle_id, side, kind, outcome, count) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("record %s: %w", s.BattleID, err)
	}
	defer stmt.Close()
	for outcome, m := range map[string]map[game.Side]map[string]int{"casualty": s.Casualties, "withdrawn": s.Withdrawn} {
		for side, kinds := range m {
			for kind, n := range kinds {
				if _, err := stmt.ExecContext(ctx, s.BattleID, side.String(), kind, outcome, n); err != nil {
					return fmt.Errorf("record %s losses: %w", s.BattleID, err)
				}
			}
		}
	}
	return tx.Commit()
}

// Stats aggregates every recorded battle.
type Stats struct {
	Battles    int
	Wins       map[string]int // by side name
	Retreats   int
	MeanTicks  float64
	Casualties map[string]int // by unit kind, both sides
}

// Stats summarises the archive.
func (a *Archive) Stats(ctx context.Context) (Stats, error) {
	st := Stats{Wins: map[string]int{}, Casualties: map[string]int{}}

	var mean sql.NullFloat64
	err := a.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(retreat), 0), AVG(ticks) FROM battles`).Scan(&st.Battles, &st.Retreats, &mean)
	if err != nil {
		return st, fmt.Errorf("stats: %w", err)
	}
	st.MeanTicks = mean.Float64

	rows, err := a.db.QueryContext(ctx, `SELECT winner, COUNT(*) FROM battles GROUP BY winner`)
	if err != nil {
		return st, fmt.Errorf("stats wins: %w", err)
	}
	for rows.Next() {
		var side string
		var n int
		if err := rows.Scan(&side, &n); err != nil {
			rows.Close()
			return st, fmt.Errorf("stats wins: %w", err)
		}
		st.Wins[side] = n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return st, fmt.Errorf("stats wins: %w", err)
	}

	rows, err = a.db.QueryContext(ctx, `SELECT kind, SUM(count) FROM losses WHERE outcome = 'casualty' GROUP BY kind`)
	if err != nil {
		return st, fmt.Errorf("stats losses: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return st, fmt.Errorf("stats losses: %w", err)
		}
		st.Casualties[kind] = n
	}
	return st, rows.Err()
}

// Recent lists the ids and winners of the last n battles, newest first.
func (a *Archive) Recent(ctx context.Context, n int) ([]Entry, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, winner, ticks, retreat, recorded_at FROM battles ORDER BY recorded_at DESC, rowid DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("recent: %w", err)
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		var at int64
		if err := rows.Scan(&e.ID, &e.Winner, &e.Ticks, &e.Retreat, &at); err != nil {
			return nil, fmt.Errorf("recent: %w", err)
		}
		e.RecordedAt = time.Unix(at, 0)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Entry is one row of Recent.
type Entry struct {
	ID         string
	Winner     string
	Ticks      int
	Retreat    bool
	RecordedAt time.Time
}
