package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"screendb/internal/query"
	"screendb/internal/screen"
)

// pageSearch renders the search/browse page with a paginated results table.
func (s *Server) pageSearch(c *gin.Context) {
	f := parseFilter(c)
	p := parsePage(c, query.MaxPageSize)

	rows, total, err := s.store.Search(f, p)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{"Error": err.Error()})
		return
	}

	results := make([]screen.Measurement, len(rows))
	for i, r := range rows {
		results[i] = screen.FormatRow(r)
	}

	totalPages := screen.TotalPages(total, p.Size)
	c.HTML(http.StatusOK, "search.html", gin.H{
		"Results":    results,
		"TotalRows":  total,
		"TotalPages": totalPages,
		"Page":       p.Number,
		"PageSize":   p.Size,
		"Sort":       p.Sort,
		"Dir":        p.Dir,
		"Filters":    f,
		"HasPrev":    p.Number > 1,
		"HasNext":    p.Number < totalPages,
		"PrevPage":   p.Number - 1,
		"NextPage":   p.Number + 1,
	})
}

// pageGene renders one gene's hierarchical view.
func (s *Server) pageGene(c *gin.Context) {
	symbol := c.Param("symbol")

	rows, err := s.store.GeneRows(symbol)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{"Error": err.Error()})
		return
	}
	if len(rows) == 0 {
		c.HTML(http.StatusNotFound, "error.html", gin.H{"Error": "gene not found: " + symbol})
		return
	}

	c.HTML(http.StatusOK, "gene.html", gin.H{"Gene": screen.BuildGeneView(rows)})
}

// pageStats renders dataset-wide statistics.
func (s *Server) pageStats(c *gin.Context) {
	st, err := s.store.DatasetStats()
	if err != nil {
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{"Error": err.Error()})
		return
	}
	c.HTML(http.StatusOK, "stats.html", gin.H{"Stats": st})
}
