package database

import (
	"time"
)

// Article is the canonical stored form of a news article. URL is the
// global deduplication key; PublishedAt and FetchedAt are always set.
type Article struct {
	ID          int64
	Title       string
	Description string
	Content     string
	URL         string
	ImageURL    string
	PublishedAt time.Time
	SourceName  string
	SourceURL   string
	Category    string // canonical category, never a source-specific name
	APISource   string // adapter that produced the record
	FetchedAt   time.Time

	ContentExtractedAt      *time.Time
	ContentExtractionStatus string // pending, success, failed, skipped
	ContentExtractionError  string
}

// ArticleForExtraction carries the minimum needed to fetch and extract
// full article content in a follow-up task.
type ArticleForExtraction struct {
	ID  int64
	URL string
}
