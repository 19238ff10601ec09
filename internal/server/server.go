// Package server exposes the screening warehouse over HTTP: a JSON REST API
// under /api/v1 and server-rendered HTML pages for browsing.
package server

import (
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"screendb/internal/query"
	"screendb/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server wires the store to the HTTP routes.
type Server struct {
	store  *store.Store
	logger *zap.Logger
	engine *gin.Engine
}

// New builds a Server with all routes registered.
func New(st *store.Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{store: st, logger: logger, engine: engine}
	engine.Use(s.requestLogger())

	funcs := template.FuncMap{
		"fmtFloat": fmtFloat,
		"fmtInt":   fmtInt,
	}
	engine.SetHTMLTemplate(template.Must(
		template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")))

	engine.GET("/healthz", s.handleHealth)

	api := engine.Group("/api/v1")
	{
		api.GET("/search", s.handleSearch)
		api.GET("/genes", s.handleGenes)
		api.GET("/genes/:symbol", s.handleGene)
		api.GET("/records/:id", s.handleRecord)
		api.GET("/stats", s.handleStats)
		api.GET("/suggest", s.handleSuggest)
		api.GET("/export", s.handleExport)
	}

	engine.GET("/", s.pageSearch)
	engine.GET("/genes/:symbol", s.pageGene)
	engine.GET("/stats", s.pageStats)

	return s
}

// Handler returns the http.Handler for the server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run starts the server on addr and blocks.
func (s *Server) Run(addr string) error {
	s.logger.Info("listening", zap.String("addr", addr))
	return s.engine.Run(addr)
}

// requestLogger logs one line per request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		begin := time.Now()
		c.Next()
		s.logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(begin)))
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	if err := s.store.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseFilter snapshots the recognized filter parameters from the request.
// Unknown parameters are dropped.
func parseFilter(c *gin.Context) query.Filter {
	return query.Filter{
		Query:      c.Query("q"),
		Chr:        c.Query("chr"),
		Strand:     c.Query("strand"),
		Effect:     c.Query("effect"),
		StartMin:   c.Query("start_min"),
		StartMax:   c.Query("start_max"),
		Log2FCMin:  c.Query("log2fc_min"),
		Log2FCMax:  c.Query("log2fc_max"),
		CellLine:   c.Query("cellline"),
		Condition:  c.Query("condition"),
		ScreenType: c.Query("screentype"),
	}
}

// parsePage clamps pagination input. Non-numeric page/page_size fall back to
// defaults rather than erroring.
func parsePage(c *gin.Context, maxSize int) query.Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))
	return query.NormalizePage(page, size, c.Query("sort"), c.Query("dir"), maxSize)
}

func fmtFloat(f *float64) string {
	if f == nil {
		return "-"
	}
	return strconv.FormatFloat(*f, 'f', 3, 64)
}

func fmtInt(n *int64) string {
	if n == nil {
		return "-"
	}
	return strconv.FormatInt(*n, 10)
}
