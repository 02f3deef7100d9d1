package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

var _ ArticleRepository = (*SQLArticleRepository)(nil)

// SQLArticleRepository handles database operations for articles
type SQLArticleRepository struct {
	db *DB
}

func NewArticleRepository(db *DB) *SQLArticleRepository {
	return &SQLArticleRepository{db: db}
}

// GetArticleURLs loads every persisted article URL in one pass. The
// dedup engine uses the result as its membership barrier for a run.
func (r *SQLArticleRepository) GetArticleURLs() (map[string]struct{}, error) {
	rows, err := r.db.Query(`SELECT url FROM articles`)
	if err != nil {
		return nil, fmt.Errorf("failed to load article URLs: %w", err)
	}
	defer rows.Close()

	urls := make(map[string]struct{})
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan URL row: %w", err)
		}
		urls[url] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating URL rows: %w", err)
	}

	return urls, nil
}

func (r *SQLArticleRepository) GetArticle(id int64) (*Article, error) {
	row := r.db.QueryRow(`
		SELECT id, title, COALESCE(description, ''), COALESCE(content, ''),
		       url, COALESCE(image_url, ''), published_at,
		       COALESCE(source_name, ''), COALESCE(source_url, ''),
		       category, api_source, fetched_at,
		       content_extracted_at, content_extraction_status,
		       COALESCE(content_extraction_error, '')
		FROM articles
		WHERE id = ?
	`, id)

	var a Article
	err := row.Scan(
		&a.ID, &a.Title, &a.Description, &a.Content,
		&a.URL, &a.ImageURL, &a.PublishedAt,
		&a.SourceName, &a.SourceURL,
		&a.Category, &a.APISource, &a.FetchedAt,
		&a.ContentExtractedAt, &a.ContentExtractionStatus,
		&a.ContentExtractionError,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	return &a, nil
}

// GetRecentArticles returns articles fetched at or after the given
// instant, ordered by published_at descending.
func (r *SQLArticleRepository) GetRecentArticles(since time.Time) ([]Article, error) {
	rows, err := r.db.Query(`
		SELECT id, title, COALESCE(description, ''), COALESCE(content, ''),
		       url, COALESCE(image_url, ''), published_at,
		       COALESCE(source_name, ''), COALESCE(source_url, ''),
		       category, api_source, fetched_at,
		       content_extracted_at, content_extraction_status,
		       COALESCE(content_extraction_error, '')
		FROM articles
		WHERE fetched_at >= ?
		ORDER BY published_at DESC
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent articles: %w", err)
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		var a Article
		err := rows.Scan(
			&a.ID, &a.Title, &a.Description, &a.Content,
			&a.URL, &a.ImageURL, &a.PublishedAt,
			&a.SourceName, &a.SourceURL,
			&a.Category, &a.APISource, &a.FetchedAt,
			&a.ContentExtractedAt, &a.ContentExtractionStatus,
			&a.ContentExtractionError,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		articles = append(articles, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}

	return articles, nil
}

func (r *SQLArticleRepository) GetArticleCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM articles`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get article count: %w", err)
	}
	return count, nil
}

func (r *SQLArticleRepository) GetCategoryCounts() (map[string]int, error) {
	return r.countsBy("category")
}

func (r *SQLArticleRepository) GetSourceCounts() (map[string]int, error) {
	return r.countsBy("api_source")
}

func (r *SQLArticleRepository) countsBy(column string) (map[string]int, error) {
	rows, err := r.db.Query(fmt.Sprintf(`SELECT %s, COUNT(*) FROM articles GROUP BY %s`, column, column))
	if err != nil {
		return nil, fmt.Errorf("failed to get %s counts: %w", column, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count row: %w", err)
		}
		counts[key] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating count rows: %w", err)
	}

	return counts, nil
}

// BeginTx starts the transaction that scopes one full batch commit.
func (r *SQLArticleRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// InsertArticleTx stages one article inside the batch transaction.
// Empty optional fields are stored as NULL.
func (r *SQLArticleRepository) InsertArticleTx(tx *sql.Tx, a Article) error {
	status := a.ContentExtractionStatus
	if status == "" {
		status = "skipped"
	}

	_, err := tx.Exec(`
		INSERT INTO articles (
			title, description, content, url, image_url,
			published_at, source_name, source_url,
			category, api_source, fetched_at, content_extraction_status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.Title, nullable(a.Description), nullable(a.Content), a.URL, nullable(a.ImageURL),
		a.PublishedAt, nullable(a.SourceName), nullable(a.SourceURL),
		a.Category, a.APISource, a.FetchedAt, status)

	if err != nil {
		return fmt.Errorf("failed to insert article: %w", err)
	}

	return nil
}

// GetArticlesForExtraction returns articles still awaiting full-text
// content extraction, oldest first.
func (r *SQLArticleRepository) GetArticlesForExtraction(limit int) ([]ArticleForExtraction, error) {
	rows, err := r.db.Query(`
		SELECT id, url
		FROM articles
		WHERE content_extraction_status = 'pending'
		ORDER BY fetched_at ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get articles for extraction: %w", err)
	}
	defer rows.Close()

	var articles []ArticleForExtraction
	for rows.Next() {
		var a ArticleForExtraction
		if err := rows.Scan(&a.ID, &a.URL); err != nil {
			return nil, fmt.Errorf("failed to scan extraction row: %w", err)
		}
		articles = append(articles, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating extraction rows: %w", err)
	}

	return articles, nil
}

func (r *SQLArticleRepository) UpdateExtractedContent(id int64, content string, status string, extractedAt *time.Time, errorMsg string) error {
	_, err := r.db.Exec(`
		UPDATE articles
		SET content = COALESCE(NULLIF(?, ''), content),
		    content_extraction_status = ?,
		    content_extracted_at = ?,
		    content_extraction_error = NULLIF(?, '')
		WHERE id = ?
	`, content, status, extractedAt, errorMsg, id)

	if err != nil {
		return fmt.Errorf("failed to update extracted content: %w", err)
	}

	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
