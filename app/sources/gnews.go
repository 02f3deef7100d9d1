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

var _ Source = (*GNewsSource)(nil)

// GNewsSource fetches from GNews. Unlike the other APIs it splits
// keyword and category queries across two endpoints; both return a
// bare array under the "articles" key.
type GNewsSource struct {
	client  *http.Client
	catalog *Catalog
	baseURL string
}

func NewGNewsSource(client *http.Client, catalog *Catalog) *GNewsSource {
	return &GNewsSource{
		client:  client,
		catalog: catalog,
		baseURL: "https://gnews.io/api/v4",
	}
}

func (s *GNewsSource) Name() string {
	return SourceGNews
}

func (s *GNewsSource) Fetch(ctx context.Context, category string) ([]RawArticle, error) {
	c := cfg.Get()

	params := url.Values{}
	params.Set("apikey", c.GNewsAPIKey)
	params.Set("lang", "en")
	params.Set("max", strconv.Itoa(c.MaxArticlesPerFetch))
	params.Set("sortby", "publishedAt")

	var endpoint string
	if s.catalog.NeedsKeywordSearch(s.Name(), category) {
		endpoint = s.baseURL + "/search"
		params.Set("q", category)
		slog.Debug("Using keyword search", "source", s.Name(), "category", category)
	} else {
		endpoint = s.baseURL + "/top-headlines"
		params.Set("category", s.catalog.Resolve(s.Name(), category))
	}

	data, err := doGet(ctx, s.client, endpoint, params)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Articles []map[string]any `json:"articles"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	articles := make([]RawArticle, 0, len(envelope.Articles))
	for _, result := range envelope.Articles {
		articles = append(articles, RawArticle{Data: result})
	}

	return articles, nil
}
