package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const schema = `
CREATE TABLE IF NOT EXISTS daily_prices (
	ticker TEXT NOT NULL,
	date   TEXT NOT NULL,
	close  REAL NOT NULL,
	PRIMARY KEY (ticker, date)
);
`

// Store reads and writes daily prices in the history database.
// It is the concrete SeriesProvider used by the engines.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewStore creates a new history store.
func NewStore(db *sql.DB, log zerolog.Logger) *Store {
	return &Store{
		db:  db,
		log: log.With().Str("component", "history").Logger(),
	}
}

// InitSchema creates the daily_prices table if it does not exist.
func (s *Store) InitSchema() error {
	_, err := s.db.Exec(schema)
	return err
}

// FetchSeries returns the ordered daily series for a ticker over the lookback
// period. Non-positive closes are excluded at the source - a bad observation
// means "date unavailable for that ticker", never a fatal error.
// Returns ErrDataUnavailable when no usable rows exist.
func (s *Store) FetchSeries(ctx context.Context, ticker string, period Period) (Series, error) {
	if ticker == "" {
		return nil, fmt.Errorf("%w: empty ticker", ErrDataUnavailable)
	}

	startDate := time.Now().AddDate(0, 0, -period.Days()).Format("2006-01-02")

	rows, err := s.db.QueryContext(ctx, `
		SELECT date, close FROM daily_prices
		WHERE ticker = ? AND date >= ? AND close > 0
		ORDER BY date ASC
	`, ticker, startDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query prices for %s: %w", ticker, err)
	}
	defer rows.Close()

	var series Series
	for rows.Next() {
		var p PricePoint
		if err := rows.Scan(&p.Date, &p.Close); err != nil {
			return nil, fmt.Errorf("failed to scan price row for %s: %w", ticker, err)
		}
		series = append(series, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prices for %s: %w", ticker, err)
	}

	if len(series) == 0 {
		return nil, fmt.Errorf("%w: no prices for %s", ErrDataUnavailable, ticker)
	}

	return series, nil
}

// SaveSeries upserts a batch of daily prices for a ticker. Used by the
// ingestion path and test fixtures.
func (s *Store) SaveSeries(ctx context.Context, ticker string, series Series) error {
	if ticker == "" {
		return fmt.Errorf("ticker cannot be empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO daily_prices (ticker, date, close)
		VALUES (?, ?, ?)
		ON CONFLICT(ticker, date) DO UPDATE SET close = excluded.close
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range series {
		if _, err := stmt.ExecContext(ctx, ticker, p.Date, p.Close); err != nil {
			return fmt.Errorf("failed to upsert %s %s: %w", ticker, p.Date, err)
		}
	}

	return tx.Commit()
}
