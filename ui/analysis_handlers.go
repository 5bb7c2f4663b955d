package ui

import (
	"bytes"
	"net/http"

	"csvdash/internal/charts"
	"csvdash/internal/profiling"

	"github.com/gin-gonic/gin"
)

// handleStats describes the selected column over the range-filtered view.
func (s *Server) handleStats(c *gin.Context) {
	ds, err := s.state.Filtered()
	if err != nil {
		respondError(c, err)
		return
	}
	summary, err := profiling.Summarize(ds, s.state.Column())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"summary": summary,
		"lines":   summary.Lines(),
	})
}

func (s *Server) chartSpec(c *gin.Context) (*charts.ChartSpec, error) {
	kind, err := charts.ParseKind(c.DefaultQuery("kind", string(charts.KindBar)))
	if err != nil {
		return nil, err
	}
	ds, err := s.state.Filtered()
	if err != nil {
		return nil, err
	}
	return charts.Render(ds, s.state.Column(), kind)
}

func (s *Server) handleChart(c *gin.Context) {
	spec, err := s.chartSpec(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, spec)
}

func (s *Server) handleChartPNG(c *gin.Context) {
	spec, err := s.chartSpec(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := charts.RenderPNG(&buf, spec); err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
