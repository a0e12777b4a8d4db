// Package database persists generated signals and the zone registry state so a
// restart resumes with the same fill, sweep and touch history.
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/IndexSignal/internal/zones"
	"github.com/Alias1177/IndexSignal/models"
)

// DB wraps the postgres connection.
type DB struct {
	conn   *sql.DB
	logger zerolog.Logger
}

// New connects to postgres and ensures the schema exists.
func New(connStr string) (*DB, error) {
	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	db := &DB{
		conn:   conn,
		logger: log.With().Str("component", "database").Logger(),
	}
	if err := db.createTables(); err != nil {
		return nil, err
	}
	return db, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) createTables() error {
	signals := `
	CREATE TABLE IF NOT EXISTS signals (
		id SERIAL PRIMARY KEY,
		symbol TEXT NOT NULL,
		action TEXT NOT NULL,
		direction TEXT NOT NULL,
		confidence DOUBLE PRECISION NOT NULL,
		confidence_level TEXT NOT NULL,
		price DOUBLE PRECISION NOT NULL,
		reasons JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`
	if _, err := db.conn.Exec(signals); err != nil {
		return fmt.Errorf("creating signals table: %w", err)
	}

	zoneState := `
	CREATE TABLE IF NOT EXISTS zone_state (
		zone_key TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		kind TEXT NOT NULL,
		timeframe TEXT NOT NULL,
		direction TEXT NOT NULL,
		zone_high DOUBLE PRECISION NOT NULL,
		zone_low DOUBLE PRECISION NOT NULL,
		strength DOUBLE PRECISION NOT NULL,
		first_seen TIMESTAMPTZ NOT NULL,
		filled BOOLEAN NOT NULL,
		stale BOOLEAN NOT NULL,
		touches INT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`
	if _, err := db.conn.Exec(zoneState); err != nil {
		return fmt.Errorf("creating zone_state table: %w", err)
	}
	return nil
}

// SaveSignal stores one generated signal.
func (db *DB) SaveSignal(ctx context.Context, symbol string, result *models.SignalResult) error {
	reasons, err := json.Marshal(result.Reasons)
	if err != nil {
		return fmt.Errorf("marshaling reasons: %w", err)
	}

	query := `
	INSERT INTO signals (symbol, action, direction, confidence, confidence_level, price, reasons, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = db.conn.ExecContext(ctx, query,
		symbol,
		result.Action,
		string(result.Direction),
		result.Confidence.Total,
		result.Confidence.Level,
		result.Price,
		reasons,
		result.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting signal: %w", err)
	}

	db.logger.Debug().Str("symbol", symbol).Str("action", result.Action).Msg("signal saved")
	return nil
}

// SignalRecord is one stored signal row, used for calibration queries.
type SignalRecord struct {
	Symbol     string
	Action     string
	Direction  models.Direction
	Confidence float64
	Level      string
	Price      float64
	Reasons    []string
	CreatedAt  time.Time
}

// RecentSignals returns the latest stored signals for a symbol, newest first.
func (db *DB) RecentSignals(ctx context.Context, symbol string, limit int) ([]SignalRecord, error) {
	query := `
	SELECT symbol, action, direction, confidence, confidence_level, price, reasons, created_at
	FROM signals WHERE symbol = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := db.conn.QueryContext(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("querying signals: %w", err)
	}
	defer rows.Close()

	var out []SignalRecord
	for rows.Next() {
		var rec SignalRecord
		var dir string
		var reasons []byte
		if err := rows.Scan(&rec.Symbol, &rec.Action, &dir, &rec.Confidence, &rec.Level, &rec.Price, &reasons, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning signal row: %w", err)
		}
		rec.Direction = models.Direction(dir)
		if len(reasons) > 0 {
			if err := json.Unmarshal(reasons, &rec.Reasons); err != nil {
				return nil, fmt.Errorf("unmarshaling reasons: %w", err)
			}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating signal rows: %w", err)
	}
	return out, nil
}

// SaveZoneState upserts the full zone registry dump for a symbol.
func (db *DB) SaveZoneState(ctx context.Context, symbol string, state []zones.TrackedZone) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
	INSERT INTO zone_state (zone_key, symbol, kind, timeframe, direction, zone_high, zone_low, strength, first_seen, filled, stale, touches, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (zone_key) DO UPDATE SET
		filled = EXCLUDED.filled,
		stale = EXCLUDED.stale,
		touches = EXCLUDED.touches,
		updated_at = EXCLUDED.updated_at`

	now := time.Now().UTC()
	for _, z := range state {
		_, err := tx.ExecContext(ctx, query,
			z.Key, symbol, z.Kind, string(z.Timeframe), string(z.Direction),
			z.High, z.Low, z.Strength, z.FirstSeen, z.Filled, z.Stale, z.Touches, now,
		)
		if err != nil {
			return fmt.Errorf("upserting zone %s: %w", z.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing zone state: %w", err)
	}
	db.logger.Debug().Str("symbol", symbol).Int("zones", len(state)).Msg("zone state saved")
	return nil
}

// LoadZoneState reads back the persisted zones for a symbol.
func (db *DB) LoadZoneState(ctx context.Context, symbol string) ([]zones.TrackedZone, error) {
	query := `
	SELECT zone_key, kind, timeframe, direction, zone_high, zone_low, strength, first_seen, filled, stale, touches
	FROM zone_state WHERE symbol = $1`

	rows, err := db.conn.QueryContext(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("querying zone state: %w", err)
	}
	defer rows.Close()

	var out []zones.TrackedZone
	for rows.Next() {
		var z zones.TrackedZone
		var tf, dir string
		if err := rows.Scan(&z.Key, &z.Kind, &tf, &dir, &z.High, &z.Low, &z.Strength, &z.FirstSeen, &z.Filled, &z.Stale, &z.Touches); err != nil {
			return nil, fmt.Errorf("scanning zone row: %w", err)
		}
		z.Timeframe = models.Timeframe(tf)
		z.Direction = models.Direction(dir)
		out = append(out, z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating zone rows: %w", err)
	}
	return out, nil
}
