package sources

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mmcdole/gofeed"
)

var _ Source = (*RSSSource)(nil)

// RSSSource serves one operator-configured RSS/Atom feed, pinned to a
// single canonical category. A feed cannot be queried by category, so
// Fetch yields records only when the sweep asks for its own category.
type RSSSource struct {
	feed   RSSFeed
	parser *gofeed.Parser
}

func NewRSSSource(client *http.Client, feed RSSFeed) *RSSSource {
	parser := gofeed.NewParser()
	parser.Client = client

	return &RSSSource{
		feed:   feed,
		parser: parser,
	}
}

func (s *RSSSource) Name() string {
	return SourceRSS
}

func (s *RSSSource) Fetch(ctx context.Context, category string) ([]RawArticle, error) {
	if category != s.feed.Category {
		return nil, nil
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	feed, err := s.parser.ParseURLWithContext(s.feed.URL, timeoutCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", s.feed.URL, err)
	}

	articles := make([]RawArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		data := map[string]any{
			"title":       item.Title,
			"link":        item.Link,
			"description": item.Description,
			"content":     item.Content,
			"published":   item.Published,
			"feed_title":  s.feed.Name,
			"feed_link":   feed.Link,
		}

		if item.Image != nil {
			data["image"] = item.Image.URL
		}
		if len(item.Categories) > 0 {
			data["categories"] = item.Categories
		}
		// gofeed already parses common date layouts; keep the parsed
		// value so the normalizer can skip re-parsing when present.
		if item.PublishedParsed != nil {
			data["published_parsed"] = *item.PublishedParsed
		}

		articles = append(articles, RawArticle{Data: data})
	}

	return articles, nil
}
