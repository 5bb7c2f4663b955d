package ui

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"csvdash/adapters/excel"
	"csvdash/domain/dataset"

	"github.com/gin-gonic/gin"
)

const (
	exportBaseName  = "filtered_data"
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func (s *Server) handleExportCSV(c *gin.Context) {
	s.export(c, ".csv", contentTypeCSV, excel.WriteCSV)
}

func (s *Server) handleExportXLSX(c *gin.Context) {
	s.export(c, ".xlsx", contentTypeXLSX, excel.WriteXLSX)
}

// export writes the current view, search and generated column included, as
// a download.
func (s *Server) export(c *gin.Context, ext, contentType string, write func(io.Writer, *dataset.Dataset) error) {
	view, err := s.state.View()
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := write(&buf, view); err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s%s\"", exportBaseName, ext))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
