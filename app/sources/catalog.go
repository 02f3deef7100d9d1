package sources

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RSSFeed is an operator-configured extra feed, pinned to one
// canonical category.
type RSSFeed struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Category string `yaml:"category"`
}

// Catalog holds the canonical category taxonomy and the per-source
// translation tables. Adding a source means adding one mapping entry
// here plus one adapter; shared pipeline logic stays untouched.
type Catalog struct {
	Categories    []string
	mappings      map[string]map[string]string
	keywordSearch map[string]map[string]bool
	RSSFeeds      []RSSFeed
}

type catalogFile struct {
	Categories    []string                     `yaml:"categories"`
	Mappings      map[string]map[string]string `yaml:"mappings"`
	KeywordSearch map[string][]string          `yaml:"keyword_search"`
	RSSFeeds      []RSSFeed                    `yaml:"rss_feeds"`
}

// NewCatalog returns the built-in taxonomy, optionally overridden from
// a YAML file. An empty path keeps the defaults.
func NewCatalog(path string) (*Catalog, error) {
	c := defaultCatalog()

	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse sources file: %w", err)
	}

	if len(file.Categories) > 0 {
		c.Categories = file.Categories
	}
	for source, table := range file.Mappings {
		if c.mappings[source] == nil {
			c.mappings[source] = make(map[string]string)
		}
		for canonical, native := range table {
			c.mappings[source][canonical] = native
		}
	}
	for source, categories := range file.KeywordSearch {
		set := make(map[string]bool, len(categories))
		for _, category := range categories {
			set[category] = true
		}
		c.keywordSearch[source] = set
	}
	c.RSSFeeds = append(c.RSSFeeds, file.RSSFeeds...)

	return c, nil
}

// Resolve translates a canonical category into the source's native
// vocabulary. Unknown pairs pass through unchanged; it never fails.
func (c *Catalog) Resolve(source, category string) string {
	if table, ok := c.mappings[source]; ok {
		if native, ok := table[category]; ok {
			return native
		}
	}
	return category
}

// NeedsKeywordSearch reports whether the source cannot express the
// canonical category as a filter and must query it as free text.
func (c *Catalog) NeedsKeywordSearch(source, category string) bool {
	return c.keywordSearch[source][category]
}

func defaultCatalog() *Catalog {
	return &Catalog{
		Categories: []string{
			"business",
			"politics",
			"science",
			"technology",
			"sports",
			"education",
			"trends",
			"entertainment",
		},
		mappings: map[string]map[string]string{
			SourceNewsData: {
				"trends": "top",
			},
			SourceWorldNews: {
				"trends": "lifestyle",
			},
			SourceGNews: {
				"politics":  "nation",
				"education": "general",
				"trends":    "general",
			},
		},
		keywordSearch: map[string]map[string]bool{
			SourceNewsData: {
				"education": true,
				"trends":    true,
			},
			SourceWorldNews: {
				"trends": true,
			},
			SourceGNews: {
				"politics":  true,
				"education": true,
				"trends":    true,
			},
		},
	}
}
