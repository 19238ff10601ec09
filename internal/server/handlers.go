package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"screendb/internal/export"
	"screendb/internal/query"
	"screendb/internal/screen"
)

// searchResponse is the flat search payload. Filters and sort directives are
// echoed back unmodified for caller-side display.
type searchResponse struct {
	Results    []screen.Measurement `json:"results"`
	TotalRows  int                  `json:"totalRows"`
	TotalPages int                  `json:"totalPages"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"pageSize"`
	Sort       string               `json:"sort"`
	Dir        string               `json:"dir"`
	Filters    query.Filter         `json:"filters"`
}

// groupedResponse is the grouped (per-gene) payload; totalRows counts
// distinct genes, not measurement rows.
type groupedResponse struct {
	Results    []screen.GeneView `json:"results"`
	TotalRows  int               `json:"totalRows"`
	TotalPages int               `json:"totalPages"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	Filters    query.Filter      `json:"filters"`
}

func (s *Server) handleSearch(c *gin.Context) {
	f := parseFilter(c)
	p := parsePage(c, query.MaxPageSize)

	rows, total, err := s.store.Search(f, p)
	if err != nil {
		s.serverError(c, "search", err)
		return
	}

	results := make([]screen.Measurement, len(rows))
	for i, r := range rows {
		results[i] = screen.FormatRow(r)
	}

	c.JSON(http.StatusOK, searchResponse{
		Results:    results,
		TotalRows:  total,
		TotalPages: screen.TotalPages(total, p.Size),
		Page:       p.Number,
		PageSize:   p.Size,
		Sort:       p.Sort,
		Dir:        p.Dir,
		Filters:    f,
	})
}

func (s *Server) handleGenes(c *gin.Context) {
	f := parseFilter(c)
	p := parsePage(c, query.MaxPageSize)

	rows, err := s.store.SearchAll(f)
	if err != nil {
		s.serverError(c, "gene search", err)
		return
	}

	views := screen.BuildGeneViews(rows)
	page := screen.PageViews(views, p.Number, p.Size)
	if page == nil {
		page = []screen.GeneView{}
	}

	c.JSON(http.StatusOK, groupedResponse{
		Results:    page,
		TotalRows:  len(views),
		TotalPages: screen.TotalPages(len(views), p.Size),
		Page:       p.Number,
		PageSize:   p.Size,
		Filters:    f,
	})
}

func (s *Server) handleGene(c *gin.Context) {
	symbol := c.Param("symbol")

	rows, err := s.store.GeneRows(symbol)
	if err != nil {
		s.serverError(c, "gene lookup", err)
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "gene not found"})
		return
	}

	c.JSON(http.StatusOK, screen.BuildGeneView(rows))
}

func (s *Server) handleRecord(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return
	}

	row, err := s.store.GetRecord(id)
	if err != nil {
		s.serverError(c, "record lookup", err)
		return
	}
	if row == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}

	c.JSON(http.StatusOK, screen.FormatRow(*row))
}

func (s *Server) handleStats(c *gin.Context) {
	st, err := s.store.DatasetStats()
	if err != nil {
		s.serverError(c, "stats", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) handleSuggest(c *gin.Context) {
	field := c.DefaultQuery("field", "symbol")
	prefix := c.Query("prefix")

	values, err := s.store.Suggest(field, prefix, 10)
	if err != nil {
		s.serverError(c, "suggest", err)
		return
	}
	if values == nil {
		values = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": values})
}

func (s *Server) handleExport(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "json" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown format, want csv or json"})
		return
	}

	f := parseFilter(c)
	p := parsePage(c, query.MaxExportPageSize)

	rows, _, err := s.store.Search(f, p)
	if err != nil {
		s.serverError(c, "export", err)
		return
	}

	results := make([]screen.Measurement, len(rows))
	for i, r := range rows {
		results[i] = screen.FormatRow(r)
	}

	switch format {
	case "json":
		c.Header("Content-Disposition", `attachment; filename="screendb-export.json"`)
		c.Header("Content-Type", "application/json")
		if err := export.WriteJSON(c.Writer, results); err != nil {
			s.logger.Warn("export write failed", zap.Error(err))
		}
	default:
		c.Header("Content-Disposition", `attachment; filename="screendb-export.csv"`)
		c.Header("Content-Type", "text/csv")
		w := export.NewCSVWriter(c.Writer)
		if err := w.WriteHeader(); err != nil {
			s.logger.Warn("export write failed", zap.Error(err))
			return
		}
		for _, m := range results {
			if err := w.Write(m); err != nil {
				s.logger.Warn("export write failed", zap.Error(err))
				return
			}
		}
		if err := w.Flush(); err != nil {
			s.logger.Warn("export write failed", zap.Error(err))
		}
	}
}

// serverError maps a storage failure to a 500 response. The partial result,
// if any, is discarded; only complete payloads leave a handler.
func (s *Server) serverError(c *gin.Context, op string, err error) {
	s.logger.Error(op+" failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
