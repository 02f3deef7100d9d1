package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mgrigorov/newsgrid/app/database"
	"github.com/mgrigorov/newsgrid/app/pipeline"
	"github.com/mgrigorov/newsgrid/app/sources"
)

// Index shows articles fetched within this window.
const recentWindow = 24 * time.Hour

var titleCaser = cases.Title(language.English)

func NewHandler(articleRepo database.ArticleRepository, catalog *sources.Catalog, p *pipeline.Pipeline) *Handler {
	return &Handler{
		articleRepo: articleRepo,
		catalog:     catalog,
		pipeline:    p,
	}
}

// GetIndex renders recent articles grouped by canonical category.
func (h *Handler) GetIndex(c *gin.Context) {
	since := time.Now().UTC().Add(-recentWindow)

	articles, err := h.articleRepo.GetRecentArticles(since)
	if err != nil {
		slog.Error("Database error", "operation", "get_recent_articles", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	byCategory := make(map[string][]database.Article)
	for _, article := range articles {
		byCategory[article.Category] = append(byCategory[article.Category], article)
	}

	// Catalog order, empty categories dropped. Articles under a
	// category the catalog no longer lists are grouped at the end.
	var sections []CategorySection
	listed := make(map[string]bool)
	for _, category := range h.catalog.Categories {
		listed[category] = true
		if group := byCategory[category]; len(group) > 0 {
			sections = append(sections, CategorySection{
				Name:     category,
				Title:    titleCaser.String(category),
				Articles: group,
			})
		}
	}
	for category, group := range byCategory {
		if !listed[category] {
			sections = append(sections, CategorySection{
				Name:     category,
				Title:    titleCaser.String(category),
				Articles: group,
			})
		}
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Sections": sections,
		"Window":   recentWindow.String(),
	})
}

// GetArticle renders the detail view for one stored article.
func (h *Handler) GetArticle(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	article, err := h.articleRepo.GetArticle(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_article", "id", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	if article == nil {
		c.Status(http.StatusNotFound)
		return
	}

	c.HTML(http.StatusOK, "article.html", gin.H{
		"Article":       article,
		"CategoryTitle": titleCaser.String(article.Category),
	})
}

// PostUpdate triggers one pipeline run and reports its counts. POST
// only, so a crawler following links cannot trigger a fetch.
func (h *Handler) PostUpdate(c *gin.Context) {
	result, err := h.pipeline.Run(c.Request.Context())
	if err != nil {
		if errors.Is(err, pipeline.ErrRefreshInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": "refresh already in progress"})
			return
		}
		slog.Error("Pipeline run failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"fetched": result.Fetched,
		"added":   result.Added,
		"skipped": result.Skipped,
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if count, err := h.articleRepo.GetArticleCount(); err == nil {
		health["articles"] = count
	}

	health["categories"] = len(h.catalog.Categories)

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{}

	if count, err := h.articleRepo.GetArticleCount(); err == nil {
		stats["total"] = count
	}
	if counts, err := h.articleRepo.GetCategoryCounts(); err == nil {
		stats["by_category"] = counts
	}
	if counts, err := h.articleRepo.GetSourceCounts(); err == nil {
		stats["by_source"] = counts
	}

	c.JSON(http.StatusOK, stats)
}
