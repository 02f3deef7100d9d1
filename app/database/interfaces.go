package database

import (
	"context"
	"database/sql"
	"time"
)

type ArticleRepository interface {
	GetArticleURLs() (map[string]struct{}, error)
	GetArticle(id int64) (*Article, error)
	GetRecentArticles(since time.Time) ([]Article, error)
	GetArticleCount() (int, error)
	GetCategoryCounts() (map[string]int, error)
	GetSourceCounts() (map[string]int, error)

	BeginTx(ctx context.Context) (*sql.Tx, error)
	InsertArticleTx(tx *sql.Tx, article Article) error

	GetArticlesForExtraction(limit int) ([]ArticleForExtraction, error)
	UpdateExtractedContent(id int64, content string, status string, extractedAt *time.Time, errorMsg string) error
}
