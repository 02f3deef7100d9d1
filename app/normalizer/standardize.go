package normalizer

import (
	"errors"
	"fmt"
	"time"

	"github.com/mgrigorov/newsgrid/app/database"
	"github.com/mgrigorov/newsgrid/app/sources"
)

// Validation errors. A record failing one of these is skipped by the
// store engine; it never aborts a batch.
var (
	ErrUnknownSource = errors.New("unknown or unsupported API source")
	ErrMissingURL    = errors.New("record has no URL")
	ErrMissingTitle  = errors.New("record has no title")
)

// StandardizeFunc turns one source-shaped record into the canonical
// article form. PublishedAt is left zero when the source timestamp is
// missing or unparseable; the store engine substitutes ingestion time.
type StandardizeFunc func(raw sources.RawArticle) (database.Article, error)

var registry = map[string]StandardizeFunc{
	sources.SourceNewsData:  standardizeNewsData,
	sources.SourceWorldNews: standardizeWorldNews,
	sources.SourceGNews:     standardizeGNews,
	sources.SourceRSS:       standardizeRSS,
}

// Standardize dispatches on the record's adapter identifier.
func Standardize(raw sources.RawArticle) (database.Article, error) {
	fn, ok := registry[raw.APISource]
	if !ok {
		return database.Article{}, fmt.Errorf("%w: %q", ErrUnknownSource, raw.APISource)
	}
	return fn(raw)
}

// NewsData.io: URL under "link", timestamp under "pubDate", source
// attribution under "source_id". The response may carry its own
// category list; its first entry wins over the queried category.
func standardizeNewsData(raw sources.RawArticle) (database.Article, error) {
	article := database.Article{
		Title:       str(raw.Data, "title"),
		Description: str(raw.Data, "description"),
		Content:     str(raw.Data, "content"),
		URL:         str(raw.Data, "link"),
		ImageURL:    str(raw.Data, "image_url"),
		PublishedAt: ParseTimestamp(str(raw.Data, "pubDate")),
		SourceName:  str(raw.Data, "source_id"),
		Category:    firstNonEmpty(strList(raw.Data, "category"), raw.QueryCategory),
		APISource:   raw.APISource,
	}

	return article, validate(article)
}

// World News API: "text" doubles as description and content; no
// category in search responses, so the queried one is kept. The source
// country is the closest thing to an attribution name.
func standardizeWorldNews(raw sources.RawArticle) (database.Article, error) {
	article := database.Article{
		Title:       str(raw.Data, "title"),
		Description: str(raw.Data, "text"),
		Content:     str(raw.Data, "text"),
		URL:         str(raw.Data, "url"),
		ImageURL:    str(raw.Data, "image"),
		PublishedAt: ParseTimestamp(str(raw.Data, "publish_date")),
		SourceName:  str(raw.Data, "source_country"),
		Category:    raw.QueryCategory,
		APISource:   raw.APISource,
	}

	return article, validate(article)
}

// GNews: attribution nested under a "source" object; no category in
// responses, so the queried one is kept.
func standardizeGNews(raw sources.RawArticle) (database.Article, error) {
	article := database.Article{
		Title:       str(raw.Data, "title"),
		Description: str(raw.Data, "description"),
		Content:     str(raw.Data, "content"),
		URL:         str(raw.Data, "url"),
		ImageURL:    str(raw.Data, "image"),
		PublishedAt: ParseTimestamp(str(raw.Data, "publishedAt")),
		APISource:   raw.APISource,
		Category:    raw.QueryCategory,
	}

	if source, ok := raw.Data["source"].(map[string]any); ok {
		article.SourceName = str(source, "name")
		article.SourceURL = str(source, "url")
	}

	return article, validate(article)
}

// RSS feeds are pinned to one canonical category at configuration
// time, so the queried category is authoritative regardless of the
// feed's own tags.
func standardizeRSS(raw sources.RawArticle) (database.Article, error) {
	article := database.Article{
		Title:       str(raw.Data, "title"),
		Description: str(raw.Data, "description"),
		Content:     str(raw.Data, "content"),
		URL:         str(raw.Data, "link"),
		ImageURL:    str(raw.Data, "image"),
		SourceName:  str(raw.Data, "feed_title"),
		SourceURL:   str(raw.Data, "feed_link"),
		Category:    raw.QueryCategory,
		APISource:   raw.APISource,
	}

	if parsed, ok := raw.Data["published_parsed"].(time.Time); ok {
		article.PublishedAt = parsed.UTC()
	} else {
		article.PublishedAt = ParseTimestamp(str(raw.Data, "published"))
	}

	if article.Content == "" {
		article.Content = article.Description
	}

	return article, validate(article)
}

func validate(article database.Article) error {
	if article.URL == "" {
		return ErrMissingURL
	}
	if article.Title == "" {
		return ErrMissingTitle
	}
	return nil
}

func str(data map[string]any, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

// strList reads a value that may arrive as []any (decoded JSON) or
// []string (native records).
func strList(data map[string]any, key string) []string {
	switch v := data[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func firstNonEmpty(list []string, fallback string) string {
	for _, s := range list {
		if s != "" {
			return s
		}
	}
	return fallback
}
