package sentiment

import "context"

// ArticleProvider supplies the news articles to score for a ticker. The
// concrete implementation in this service reads from the news table; a
// remote news API client satisfies the same interface.
type ArticleProvider interface {
	FetchArticles(ctx context.Context, ticker string) ([]Article, error)
}
