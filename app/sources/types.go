package sources

import (
	"context"
)

// Adapter identifiers, stored in the api_source column.
const (
	SourceNewsData  = "newsdata"
	SourceWorldNews = "worldnews"
	SourceGNews     = "gnews"
	SourceRSS       = "rss"
)

// RawArticle is one source-shaped record. Data keeps the payload in the
// source's own vocabulary; APISource and QueryCategory are stamped by
// the orchestrator before the record leaves the fetch sweep.
type RawArticle struct {
	APISource     string
	QueryCategory string
	Data          map[string]any
}

// Source is one upstream news API. Fetch issues a single bounded
// request for the given canonical category and reports failures as
// errors; it never partially succeeds.
type Source interface {
	Name() string
	Fetch(ctx context.Context, category string) ([]RawArticle, error)
}
