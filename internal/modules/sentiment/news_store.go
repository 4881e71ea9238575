package sentiment

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

const newsSchema = `
CREATE TABLE IF NOT EXISTS news_articles (
	ticker       TEXT NOT NULL,
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	published_at TEXT NOT NULL,
	PRIMARY KEY (ticker, title, published_at)
);
CREATE INDEX IF NOT EXISTS idx_news_ticker_published
	ON news_articles(ticker, published_at DESC);
`

// Maximum articles scored per ticker; older articles dilute the signal.
const maxArticlesPerTicker = 50

// NewsStore reads and writes news articles in the history database.
// It is the concrete ArticleProvider used by the sentiment service.
type NewsStore struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewNewsStore creates a new news store.
func NewNewsStore(db *sql.DB, log zerolog.Logger) *NewsStore {
	return &NewsStore{
		db:  db,
		log: log.With().Str("component", "news").Logger(),
	}
}

// InitSchema creates the news_articles table if it does not exist.
func (s *NewsStore) InitSchema() error {
	_, err := s.db.Exec(newsSchema)
	return err
}

// FetchArticles returns the most recent articles for a ticker, newest first.
// An empty result is not an error; a ticker with no news aggregates to a
// neutral summary.
func (s *NewsStore) FetchArticles(ctx context.Context, ticker string) ([]Article, error) {
	if ticker == "" {
		return nil, fmt.Errorf("ticker cannot be empty")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT title, description FROM news_articles
		WHERE ticker = ?
		ORDER BY published_at DESC
		LIMIT ?
	`, ticker, maxArticlesPerTicker)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles for %s: %w", ticker, err)
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		var a Article
		if err := rows.Scan(&a.Title, &a.Description); err != nil {
			return nil, fmt.Errorf("failed to scan article row for %s: %w", ticker, err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating articles for %s: %w", ticker, err)
	}

	return articles, nil
}

// SaveArticles upserts a batch of articles for a ticker. publishedAt is
// YYYY-MM-DD. Used by the ingestion path and test fixtures.
func (s *NewsStore) SaveArticles(ctx context.Context, ticker, publishedAt string, articles []Article) error {
	if ticker == "" {
		return fmt.Errorf("ticker cannot be empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO news_articles (ticker, title, description, published_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(ticker, title, published_at) DO UPDATE SET description = excluded.description
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, a := range articles {
		if _, err := stmt.ExecContext(ctx, ticker, a.Title, a.Description, publishedAt); err != nil {
			return fmt.Errorf("failed to upsert article for %s: %w", ticker, err)
		}
	}

	return tx.Commit()
}
