package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func setupTestDB(t *testing.T) *SQLArticleRepository {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatal(err)
	}

	return NewArticleRepository(db)
}

func insertArticle(t *testing.T, repo *SQLArticleRepository, a Article) {
	t.Helper()

	tx, err := repo.BeginTx(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.InsertArticleTx(tx, a); err != nil {
		tx.Rollback()
		t.Fatal(err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}
}

func testArticle(url string) Article {
	now := time.Now().UTC()
	return Article{
		Title:       "Test Article",
		Description: "A description",
		URL:         url,
		PublishedAt: now,
		Category:    "technology",
		APISource:   "gnews",
		FetchedAt:   now,
	}
}

func TestInsertAndGetArticle(t *testing.T) {
	repo := setupTestDB(t)

	insertArticle(t, repo, testArticle("https://example.com/one"))

	urls, err := repo.GetArticleURLs()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := urls["https://example.com/one"]; !ok {
		t.Error("Expected inserted URL in the URL set")
	}

	articles, err := repo.GetRecentArticles(time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(articles) != 1 {
		t.Fatalf("Expected 1 article, got %d", len(articles))
	}

	got, err := repo.GetArticle(articles[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("Expected article, got nil")
	}
	if got.Title != "Test Article" {
		t.Errorf("Expected title 'Test Article', got '%s'", got.Title)
	}
	if got.ContentExtractionStatus != "skipped" {
		t.Errorf("Expected default extraction status 'skipped', got '%s'", got.ContentExtractionStatus)
	}
}

func TestGetArticleNotFound(t *testing.T) {
	repo := setupTestDB(t)

	got, err := repo.GetArticle(12345)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("Expected nil for missing article, got %+v", got)
	}
}

func TestUniqueURLConstraint(t *testing.T) {
	repo := setupTestDB(t)

	insertArticle(t, repo, testArticle("https://example.com/dup"))

	tx, err := repo.BeginTx(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer tx.Rollback()

	if err := repo.InsertArticleTx(tx, testArticle("https://example.com/dup")); err == nil {
		t.Error("Expected unique constraint violation for duplicate URL")
	}
}

func TestGetRecentArticlesWindowAndOrder(t *testing.T) {
	repo := setupTestDB(t)

	now := time.Now().UTC()

	old := testArticle("https://example.com/old")
	old.FetchedAt = now.Add(-48 * time.Hour)
	old.PublishedAt = now.Add(-48 * time.Hour)
	insertArticle(t, repo, old)

	earlier := testArticle("https://example.com/earlier")
	earlier.Title = "Earlier"
	earlier.PublishedAt = now.Add(-2 * time.Hour)
	insertArticle(t, repo, earlier)

	latest := testArticle("https://example.com/latest")
	latest.Title = "Latest"
	latest.PublishedAt = now.Add(-1 * time.Hour)
	insertArticle(t, repo, latest)

	articles, err := repo.GetRecentArticles(now.Add(-24 * time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(articles) != 2 {
		t.Fatalf("Expected 2 articles inside the window, got %d", len(articles))
	}
	if articles[0].Title != "Latest" || articles[1].Title != "Earlier" {
		t.Errorf("Expected published_at descending order, got '%s' then '%s'", articles[0].Title, articles[1].Title)
	}
}

func TestCounts(t *testing.T) {
	repo := setupTestDB(t)

	a := testArticle("https://example.com/a")
	a.Category = "business"
	a.APISource = "newsdata"
	insertArticle(t, repo, a)

	b := testArticle("https://example.com/b")
	b.Category = "business"
	b.APISource = "gnews"
	insertArticle(t, repo, b)

	c := testArticle("https://example.com/c")
	c.Category = "sports"
	c.APISource = "gnews"
	insertArticle(t, repo, c)

	count, err := repo.GetArticleCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("Expected count 3, got %d", count)
	}

	byCategory, err := repo.GetCategoryCounts()
	if err != nil {
		t.Fatal(err)
	}
	if byCategory["business"] != 2 || byCategory["sports"] != 1 {
		t.Errorf("Unexpected category counts: %v", byCategory)
	}

	bySource, err := repo.GetSourceCounts()
	if err != nil {
		t.Fatal(err)
	}
	if bySource["gnews"] != 2 || bySource["newsdata"] != 1 {
		t.Errorf("Unexpected source counts: %v", bySource)
	}
}

func TestContentExtractionFlow(t *testing.T) {
	repo := setupTestDB(t)

	pending := testArticle("https://example.com/pending")
	pending.ContentExtractionStatus = "pending"
	insertArticle(t, repo, pending)

	done := testArticle("https://example.com/done")
	insertArticle(t, repo, done)

	candidates, err := repo.GetArticlesForExtraction(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(candidates) != 1 {
		t.Fatalf("Expected 1 pending article, got %d", len(candidates))
	}
	if candidates[0].URL != "https://example.com/pending" {
		t.Errorf("Expected pending article, got '%s'", candidates[0].URL)
	}

	extractedAt := time.Now().UTC()
	if err := repo.UpdateExtractedContent(candidates[0].ID, "Extracted body", "success", &extractedAt, ""); err != nil {
		t.Fatal(err)
	}

	got, err := repo.GetArticle(candidates[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Content != "Extracted body" {
		t.Errorf("Expected extracted content, got '%s'", got.Content)
	}
	if got.ContentExtractionStatus != "success" {
		t.Errorf("Expected status 'success', got '%s'", got.ContentExtractionStatus)
	}
	if got.ContentExtractedAt == nil {
		t.Error("Expected extraction timestamp set")
	}

	candidates, err = repo.GetArticlesForExtraction(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(candidates) != 0 {
		t.Errorf("Expected no pending articles left, got %d", len(candidates))
	}
}

func TestUpdateExtractedContentFailureKeepsContent(t *testing.T) {
	repo := setupTestDB(t)

	a := testArticle("https://example.com/fail")
	a.Content = "Original snippet"
	a.ContentExtractionStatus = "pending"
	insertArticle(t, repo, a)

	candidates, err := repo.GetArticlesForExtraction(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(candidates) != 1 {
		t.Fatalf("Expected 1 pending article, got %d", len(candidates))
	}

	if err := repo.UpdateExtractedContent(candidates[0].ID, "", "failed", nil, "HTTP error: 404"); err != nil {
		t.Fatal(err)
	}

	got, err := repo.GetArticle(candidates[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Content != "Original snippet" {
		t.Errorf("Expected original content kept on failure, got '%s'", got.Content)
	}
	if got.ContentExtractionStatus != "failed" {
		t.Errorf("Expected status 'failed', got '%s'", got.ContentExtractionStatus)
	}
	if got.ContentExtractionError != "HTTP error: 404" {
		t.Errorf("Expected extraction error recorded, got '%s'", got.ContentExtractionError)
	}
}
