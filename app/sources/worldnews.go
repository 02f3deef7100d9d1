package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mgrigorov/newsgrid/app/cfg"
)

var _ Source = (*WorldNewsSource)(nil)

// WorldNewsSource fetches from the World News API search endpoint. The
// response is a bare array under the "news" key; success is implied by
// the HTTP status.
type WorldNewsSource struct {
	client  *http.Client
	catalog *Catalog
	baseURL string
}

func NewWorldNewsSource(client *http.Client, catalog *Catalog) *WorldNewsSource {
	return &WorldNewsSource{
		client:  client,
		catalog: catalog,
		baseURL: "https://api.worldnewsapi.com/search-news",
	}
}

func (s *WorldNewsSource) Name() string {
	return SourceWorldNews
}

func (s *WorldNewsSource) Fetch(ctx context.Context, category string) ([]RawArticle, error) {
	c := cfg.Get()

	params := url.Values{}
	params.Set("api-key", c.WorldNewsAPIKey)
	params.Set("language", "en")
	params.Set("number", strconv.Itoa(c.MaxArticlesPerFetch))
	params.Set("sort", "publish-time")
	params.Set("sort-direction", "DESC")

	if s.catalog.NeedsKeywordSearch(s.Name(), category) {
		params.Set("text", category)
		slog.Debug("Using keyword search", "source", s.Name(), "category", category)
	} else {
		params.Set("category-filter", s.catalog.Resolve(s.Name(), category))
	}

	data, err := doGet(ctx, s.client, s.baseURL, params)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		News []map[string]any `json:"news"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	articles := make([]RawArticle, 0, len(envelope.News))
	for _, result := range envelope.News {
		articles = append(articles, RawArticle{Data: result})
	}

	return articles, nil
}
