package ui

import (
	"log"
	"net/http"
	"strconv"

	"csvdash/domain/dataset"
	filters "csvdash/internal/dataset"
	"csvdash/internal/errors"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000
)

type selectionRequest struct {
	Column string   `json:"column"`
	Min    *float64 `json:"min"`
	Max    *float64 `json:"max"`
	Search string   `json:"search"`
}

type selectionResponse struct {
	Column string         `json:"column"`
	Kind   string         `json:"kind"`
	Range  *filters.Range `json:"range,omitempty"`
	Bounds *filters.Range `json:"bounds,omitempty"`
	Search string         `json:"search"`
	Rows   int            `json:"rows"`
}

// handleUpload replaces the session dataset with the uploaded file.
func (s *Server) handleUpload(c *gin.Context) {
	if s.options.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.options.MaxUploadBytes)
	}

	header, err := c.FormFile("file")
	if err != nil {
		respondError(c, errors.InvalidInput("multipart field \"file\" is required: "+err.Error()))
		return
	}
	file, err := header.Open()
	if err != nil {
		respondError(c, errors.Wrap(err, "failed to open upload"))
		return
	}
	defer file.Close()

	ds, err := s.reader.Read(file, header.Filename)
	if err != nil {
		log.Printf("[Dashboard] Upload %s rejected: %v", header.Filename, err)
		respondError(c, err)
		return
	}
	s.state.Load(ds)
	log.Printf("[Dashboard] Loaded %s: %d rows, %d columns", ds.Name, ds.Len(), len(ds.Columns))

	c.JSON(http.StatusOK, gin.H{
		"id":      ds.ID,
		"name":    ds.Name,
		"columns": ds.Columns,
		"rows":    ds.Len(),
		"column":  s.state.Column(),
	})
}

// handleDataset returns one page of the current view.
func (s *Server) handleDataset(c *gin.Context) {
	view, err := s.state.View()
	if err != nil {
		respondError(c, err)
		return
	}

	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	if offset < 0 || offset > view.Len() {
		offset = 0
	}
	end := offset + limit
	if end > view.Len() {
		end = view.Len()
	}

	rows := make([][]interface{}, 0, end-offset)
	for _, row := range view.Rows[offset:end] {
		rows = append(rows, rowCells(row))
	}

	c.JSON(http.StatusOK, gin.H{
		"id":      view.ID,
		"name":    view.Name,
		"columns": view.Columns,
		"total":   view.Len(),
		"offset":  offset,
		"limit":   limit,
		"rows":    rows,
	})
}

// handleSelection sets column, range and search in one step. Omitting min
// and max clears the range.
func (s *Server) handleSelection(c *gin.Context) {
	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidInput("invalid selection: "+err.Error()))
		return
	}

	if req.Column != "" {
		if err := s.state.Select(req.Column); err != nil {
			respondError(c, err)
			return
		}
	}

	switch {
	case req.Min != nil && req.Max != nil:
		if err := s.state.SetRange(*req.Min, *req.Max); err != nil {
			respondError(c, err)
			return
		}
	case req.Min == nil && req.Max == nil:
		s.state.ClearRange()
	default:
		respondError(c, errors.InvalidInput("min and max must be given together"))
		return
	}
	s.state.SetSearch(req.Search)

	resp, err := s.selection()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) selection() (*selectionResponse, error) {
	src, err := s.state.Source()
	if err != nil {
		return nil, err
	}
	column := s.state.Column()
	col, err := src.Column(column)
	if err != nil {
		return nil, err
	}
	view, err := s.state.View()
	if err != nil {
		return nil, err
	}

	resp := &selectionResponse{
		Column: column,
		Kind:   string(col.Kind),
		Search: s.state.SearchTerm(),
		Rows:   view.Len(),
	}
	if r, ok := s.state.Range(); ok {
		resp.Range = &r
	}
	if b, ok, _ := filters.Bounds(src, column); ok {
		resp.Bounds = &b
	}
	return resp, nil
}

func rowCells(row dataset.Row) []interface{} {
	cells := make([]interface{}, len(row.Values))
	for i, v := range row.Values {
		cells[i] = v.Interface()
	}
	return cells
}
