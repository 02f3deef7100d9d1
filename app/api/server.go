package api

import (
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mgrigorov/newsgrid/app/cfg"
)

//go:embed templates/*.html
var templateFS embed.FS

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	templates := template.Must(template.New("").Funcs(template.FuncMap{
		"datetime": func(t time.Time) string {
			return t.In(time.Local).Format("Jan 2, 2006 15:04 MST")
		},
	}).ParseFS(templateFS, "templates/*.html"))
	r.SetHTMLTemplate(templates)

	setupRoutes(r, handler)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler) {
	r.GET("/", handler.GetIndex)
	r.GET("/articles/:id", handler.GetArticle)
	r.POST("/update", handler.PostUpdate)

	r.GET("/health", handler.GetHealth)
	r.GET("/stats", handler.GetStats)

	r.GET("/about", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service":     "newsgrid",
			"version":     cfg.Get().Version,
			"description": "News aggregator combining multiple news APIs into one categorized view",
			"endpoints": map[string]string{
				"index":   "/",
				"article": "/articles/<id>",
				"update":  "/update (POST)",
				"health":  "/health",
				"stats":   "/stats",
			},
		})
	})
}
