package tasks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mgrigorov/newsgrid/app/database"
	"github.com/mgrigorov/newsgrid/app/extractor"
)

const (
	extractionBatchSize = 10
	extractionTimeout   = 20 * time.Second
)

// ExtractContentTask backfills full article text for stored articles
// whose sources returned no inline content.
type ExtractContentTask struct {
	Task
	httpClient  *http.Client
	extractor   *extractor.Extractor
	articleRepo database.ArticleRepository
	userAgent   string
}

func NewExtractContentTask(httpClient *http.Client, ex *extractor.Extractor, articleRepo database.ArticleRepository, userAgent string) *ExtractContentTask {
	return &ExtractContentTask{
		Task:        NewTask(TaskTypeExtractContent),
		httpClient:  httpClient,
		extractor:   ex,
		articleRepo: articleRepo,
		userAgent:   userAgent,
	}
}

func (t *ExtractContentTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	articles, err := t.articleRepo.GetArticlesForExtraction(extractionBatchSize)
	if err != nil {
		return fmt.Errorf("failed to get articles for content extraction: %w", err)
	}

	if len(articles) == 0 {
		slog.Debug("No articles need content extraction")
		return nil
	}

	successCount := 0
	errorCount := 0

	for _, article := range articles {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		extractCtx, cancel := context.WithTimeout(ctx, extractionTimeout)

		err := t.extractContentForArticle(extractCtx, article)
		cancel()

		if err != nil {
			slog.Error("Failed to extract content for article", "article_id", article.ID, "url", article.URL, "error", err)
			errorCount++

			now := time.Now().UTC()
			err = t.articleRepo.UpdateExtractedContent(article.ID, "", "failed", &now, err.Error())
			if err != nil {
				slog.Error("Failed to update content extraction status", "article_id", article.ID, "error", err)
			}
		} else {
			successCount++
		}
	}

	slog.Info("Task completed",
		"type", "ExtractContent",
		"duration", t.GetDuration(),
		"success", successCount,
		"errors", errorCount)

	return nil
}

func (t *ExtractContentTask) extractContentForArticle(ctx context.Context, article database.ArticleForExtraction) error {
	if article.URL == "" {
		return fmt.Errorf("article has no URL")
	}

	data, err := t.fetchArticlePage(ctx, article.URL)
	if err != nil {
		return fmt.Errorf("failed to fetch article page: %w", err)
	}

	content, err := t.extractor.Run(data)
	if err != nil {
		return fmt.Errorf("failed to extract content: %w", err)
	}

	now := time.Now().UTC()
	err = t.articleRepo.UpdateExtractedContent(article.ID, content, "success", &now, "")
	if err != nil {
		return fmt.Errorf("failed to update extracted content: %w", err)
	}

	slog.Debug("Content extracted successfully", "article_id", article.ID, "url", article.URL, "content_length", len(content))
	return nil
}

func (t *ExtractContentTask) fetchArticlePage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return nil, fmt.Errorf("content type is not HTML: %s", contentType)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
