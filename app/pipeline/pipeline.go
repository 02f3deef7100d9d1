package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/mgrigorov/newsgrid/app/database"
	"github.com/mgrigorov/newsgrid/app/sources"
)

// ErrRefreshInProgress is returned when a run is requested while
// another one holds the pipeline.
var ErrRefreshInProgress = errors.New("refresh already in progress")

// Result reports the outcome of one pipeline run.
type Result struct {
	Fetched int
	Added   int
	Skipped int
}

// Pipeline drives one fetch-normalize-dedup-store run. Runs are
// serialized: the dedup engine reads the persisted URL set once per
// run and does not re-validate it against concurrent writers.
type Pipeline struct {
	sources []sources.Source
	catalog *sources.Catalog
	repo    database.ArticleRepository
	mu      sync.Mutex
}

func New(catalog *sources.Catalog, srcs []sources.Source, repo database.ArticleRepository) *Pipeline {
	return &Pipeline{
		sources: srcs,
		catalog: catalog,
		repo:    repo,
	}
}

// Run executes one full pipeline pass. A second caller while a run is
// in flight gets ErrRefreshInProgress instead of queueing.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	if !p.mu.TryLock() {
		return Result{}, ErrRefreshInProgress
	}
	defer p.mu.Unlock()

	raw := p.FetchAll(ctx)

	result, err := p.ProcessAndStore(ctx, raw)
	result.Fetched = len(raw)
	return result, err
}

// FetchAll sweeps the cross-product of canonical categories and
// registered sources, tagging every record with its originating
// adapter and queried category. A failing source contributes nothing
// and never aborts the sweep.
func (p *Pipeline) FetchAll(ctx context.Context) []sources.RawArticle {
	var all []sources.RawArticle

	for _, category := range p.catalog.Categories {
		for _, source := range p.sources {
			records := p.fetchSource(ctx, source, category)
			for i := range records {
				records[i].APISource = source.Name()
				records[i].QueryCategory = category
			}
			all = append(all, records...)
		}
	}

	slog.Info("Fetch sweep complete", "categories", len(p.catalog.Categories), "sources", len(p.sources), "records", len(all))

	return all
}

// fetchSource isolates one adapter call. Errors and panics both
// degrade to an empty result for that (source, category) pair.
func (p *Pipeline) fetchSource(ctx context.Context, source sources.Source, category string) (records []sources.RawArticle) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Source panicked", "source", source.Name(), "category", category, "panic", r)
			records = nil
		}
	}()

	records, err := source.Fetch(ctx, category)
	if err != nil {
		slog.Error("Source fetch failed", "source", source.Name(), "category", category, "error", err)
		return nil
	}

	if len(records) > 0 {
		slog.Debug("Source fetch succeeded", "source", source.Name(), "category", category, "records", len(records))
	}

	return records
}
