package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mgrigorov/newsgrid/app/cfg"
	"github.com/mgrigorov/newsgrid/app/normalizer"
	"github.com/mgrigorov/newsgrid/app/sources"
)

// ProcessAndStore normalizes, deduplicates and persists one batch of
// raw records. Record-level failures (unknown adapter, missing fields,
// duplicate URL) are skipped and counted; a staging or commit failure
// rolls back the entire batch and leaves storage untouched.
func (p *Pipeline) ProcessAndStore(ctx context.Context, raw []sources.RawArticle) (Result, error) {
	var result Result

	if len(raw) == 0 {
		slog.Info("No articles fetched to process")
		return result, nil
	}

	// One bulk read of every persisted URL. The same set also covers
	// in-batch duplicates: each accepted record is added before the
	// next one is checked, so the first occurrence wins.
	seen, err := p.repo.GetArticleURLs()
	if err != nil {
		return result, fmt.Errorf("failed to load persisted URLs: %w", err)
	}

	tx, err := p.repo.BeginTx(ctx)
	if err != nil {
		return result, err
	}
	// No-op after a successful commit; on any error path it reverts
	// the stored baseline to exactly what existed before this run.
	defer tx.Rollback()

	extractContent := cfg.Get().ExtractContent

	for _, record := range raw {
		article, err := normalizer.Standardize(record)
		if err != nil {
			slog.Warn("Skipping record", "source", record.APISource, "category", record.QueryCategory, "reason", err)
			result.Skipped++
			continue
		}

		if _, duplicate := seen[article.URL]; duplicate {
			result.Skipped++
			continue
		}

		now := time.Now().UTC()
		article.FetchedAt = now
		if article.PublishedAt.IsZero() {
			article.PublishedAt = now
		}

		if extractContent && article.Content == "" {
			article.ContentExtractionStatus = "pending"
		}

		if err := p.repo.InsertArticleTx(tx, article); err != nil {
			return Result{}, fmt.Errorf("failed to stage article %s: %w", article.URL, err)
		}

		seen[article.URL] = struct{}{}
		result.Added++
	}

	if err := tx.Commit(); err != nil {
		return Result{}, fmt.Errorf("failed to commit batch: %w", err)
	}

	slog.Info("Processing complete", "added", result.Added, "skipped", result.Skipped)

	return result, nil
}
