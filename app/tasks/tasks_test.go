package tasks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/mgrigorov/newsgrid/app/cfg"
	"github.com/mgrigorov/newsgrid/app/database"
	"github.com/mgrigorov/newsgrid/app/extractor"
	"github.com/mgrigorov/newsgrid/app/pipeline"
	"github.com/mgrigorov/newsgrid/app/sources"
)

func setupTestRepo(t *testing.T) *database.SQLArticleRepository {
	t.Helper()

	db, err := database.NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := database.RunMigrations(db); err != nil {
		t.Fatal(err)
	}

	return database.NewArticleRepository(db)
}

func insertPendingArticle(t *testing.T, repo *database.SQLArticleRepository, url string) int64 {
	t.Helper()

	now := time.Now().UTC()
	tx, err := repo.BeginTx(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	err = repo.InsertArticleTx(tx, database.Article{
		Title:                   "Pending Article",
		URL:                     url,
		PublishedAt:             now,
		Category:                "technology",
		APISource:               "gnews",
		FetchedAt:               now,
		ContentExtractionStatus: "pending",
	})
	if err != nil {
		tx.Rollback()
		t.Fatal(err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	candidates, err := repo.GetArticlesForExtraction(10)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range candidates {
		if c.URL == url {
			return c.ID
		}
	}
	t.Fatalf("Pending article %s not found", url)
	return 0
}

func TestNewTask(t *testing.T) {
	task := NewTask(TaskTypeRefresh)

	if task.GetID() == "" {
		t.Error("Expected non-empty task ID")
	}
	if task.GetType() != TaskTypeRefresh {
		t.Errorf("Expected type '%s', got '%s'", TaskTypeRefresh, task.GetType())
	}
	if task.GetDuration() != 0 {
		t.Errorf("Expected zero duration before start, got %v", task.GetDuration())
	}

	task.Start()
	if task.StartedAt == nil {
		t.Fatal("Expected start timestamp set")
	}
	if task.GetDuration() < 0 {
		t.Errorf("Expected non-negative duration, got %v", task.GetDuration())
	}
}

type stubSource struct {
	records []sources.RawArticle
}

func (s *stubSource) Name() string { return sources.SourceGNews }

func (s *stubSource) Fetch(ctx context.Context, category string) ([]sources.RawArticle, error) {
	return s.records, nil
}

func TestRefreshTaskExecute(t *testing.T) {
	cfg.SetForTesting(&cfg.Cfg{MaxArticlesPerFetch: 20})

	repo := setupTestRepo(t)
	catalog := &sources.Catalog{Categories: []string{"technology"}}
	source := &stubSource{records: []sources.RawArticle{
		{Data: map[string]any{"title": "Fresh", "url": "https://example.com/fresh", "publishedAt": "2025-06-02T10:00:00Z"}},
	}}
	p := pipeline.New(catalog, []sources.Source{source}, repo)

	task := NewRefreshTask(p)
	task.Start()

	if err := task.Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	count, err := repo.GetArticleCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected 1 stored article, got %d", count)
	}
}

func TestRefreshTaskCancelledContext(t *testing.T) {
	cfg.SetForTesting(&cfg.Cfg{MaxArticlesPerFetch: 20})

	repo := setupTestRepo(t)
	p := pipeline.New(&sources.Catalog{Categories: []string{"technology"}}, nil, repo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	task := NewRefreshTask(p)
	if err := task.Execute(ctx); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestExtractContentTaskExecute(t *testing.T) {
	cfg.SetForTesting(&cfg.Cfg{MaxArticlesPerFetch: 20, ExtractContent: true})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<!DOCTYPE html>
<html><head><title>Page</title></head><body>
<article>
<h1>Extracted Title</h1>
<p>This is the readable article body that the extraction pass should pick up. It carries enough meaningful text for the readability algorithm to treat it as the main content of the page.</p>
<p>A second paragraph keeps the content above the minimum threshold and gives the extractor a clear content block to return for storage.</p>
</article>
</body></html>`))
	}))
	defer server.Close()

	repo := setupTestRepo(t)
	id := insertPendingArticle(t, repo, server.URL)

	task := NewExtractContentTask(server.Client(), extractor.NewExtractor(), repo, "newsgrid-test")
	task.Start()

	if err := task.Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	article, err := repo.GetArticle(id)
	if err != nil {
		t.Fatal(err)
	}
	if article.ContentExtractionStatus != "success" {
		t.Fatalf("Expected status 'success', got '%s' (error: %s)", article.ContentExtractionStatus, article.ContentExtractionError)
	}
	if article.Content == "" {
		t.Error("Expected extracted content stored")
	}
	if article.ContentExtractedAt == nil {
		t.Error("Expected extraction timestamp set")
	}
}

func TestExtractContentTaskNonHTMLPage(t *testing.T) {
	cfg.SetForTesting(&cfg.Cfg{MaxArticlesPerFetch: 20, ExtractContent: true})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4"))
	}))
	defer server.Close()

	repo := setupTestRepo(t)
	id := insertPendingArticle(t, repo, server.URL)

	task := NewExtractContentTask(server.Client(), extractor.NewExtractor(), repo, "newsgrid-test")
	task.Start()

	// Per-article failures are recorded, not returned
	if err := task.Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	article, err := repo.GetArticle(id)
	if err != nil {
		t.Fatal(err)
	}
	if article.ContentExtractionStatus != "failed" {
		t.Errorf("Expected status 'failed', got '%s'", article.ContentExtractionStatus)
	}
	if article.ContentExtractionError == "" {
		t.Error("Expected extraction error recorded")
	}
}

type signalTask struct {
	Task
	done chan struct{}
}

func (t *signalTask) Execute(ctx context.Context) error {
	close(t.done)
	return nil
}

func TestSchedulerExecutesEnqueuedTask(t *testing.T) {
	cfg.SetForTesting(&cfg.Cfg{MaxArticlesPerFetch: 20, FetchInterval: 0})

	repo := setupTestRepo(t)
	p := pipeline.New(&sources.Catalog{Categories: []string{"technology"}}, nil, repo)

	scheduler := NewScheduler(p, repo, &http.Client{})
	scheduler.Start()
	defer scheduler.Stop()

	task := &signalTask{Task: NewTask(TaskTypeRefresh), done: make(chan struct{})}
	if err := scheduler.EnqueueTask(task); err != nil {
		t.Fatal(err)
	}

	select {
	case <-task.done:
	case <-time.After(5 * time.Second):
		t.Fatal("Task was not executed")
	}
}
