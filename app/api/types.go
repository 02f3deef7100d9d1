package api

import (
	"github.com/mgrigorov/newsgrid/app/database"
	"github.com/mgrigorov/newsgrid/app/pipeline"
	"github.com/mgrigorov/newsgrid/app/sources"
)

type Handler struct {
	articleRepo database.ArticleRepository
	catalog     *sources.Catalog
	pipeline    *pipeline.Pipeline
}

// CategorySection is one category block on the index page, in catalog
// order.
type CategorySection struct {
	Name     string
	Title    string
	Articles []database.Article
}
