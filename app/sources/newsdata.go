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

var _ Source = (*NewsDataSource)(nil)

// NewsDataSource fetches from the NewsData.io "latest news" endpoint.
// The response wraps articles in a status/results envelope; a 2xx
// response can still carry an API-level error status.
type NewsDataSource struct {
	client  *http.Client
	catalog *Catalog
	baseURL string
}

func NewNewsDataSource(client *http.Client, catalog *Catalog) *NewsDataSource {
	return &NewsDataSource{
		client:  client,
		catalog: catalog,
		baseURL: "https://newsdata.io/api/1/news",
	}
}

func (s *NewsDataSource) Name() string {
	return SourceNewsData
}

func (s *NewsDataSource) Fetch(ctx context.Context, category string) ([]RawArticle, error) {
	c := cfg.Get()

	params := url.Values{}
	params.Set("apikey", c.NewsDataAPIKey)
	params.Set("language", "en")
	params.Set("size", strconv.Itoa(c.MaxArticlesPerFetch))

	if s.catalog.NeedsKeywordSearch(s.Name(), category) {
		params.Set("q", category)
		slog.Debug("Using keyword search", "source", s.Name(), "category", category)
	} else {
		params.Set("category", s.catalog.Resolve(s.Name(), category))
	}

	data, err := doGet(ctx, s.client, s.baseURL, params)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Status  string           `json:"status"`
		Results []map[string]any `json:"results"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if envelope.Status != "success" {
		return nil, fmt.Errorf("API returned status %q", envelope.Status)
	}

	articles := make([]RawArticle, 0, len(envelope.Results))
	for _, result := range envelope.Results {
		articles = append(articles, RawArticle{Data: result})
	}

	return articles, nil
}
