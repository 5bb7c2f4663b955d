package ui

import (
	"html/template"
	"net/http"

	"csvdash/internal/errors"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

type generateRequest struct {
	Template string `json:"template"`
}

type emailPreview struct {
	Index     int           `json:"index"`
	Recipient string        `json:"recipient"`
	Body      string        `json:"body"`
	HTML      template.HTML `json:"html"`
}

// handleGenerateEmails fills the template for every row of the filtered
// view and keeps the successful bodies in the session.
func (s *Server) handleGenerateEmails(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidInput("invalid request: "+err.Error()))
		return
	}
	ds, err := s.state.Filtered()
	if err != nil {
		respondError(c, err)
		return
	}

	report, err := s.emails.Generate(c.Request.Context(), ds, req.Template)
	if err != nil {
		respondError(c, err)
		return
	}
	s.state.SetGenerated(report.Bodies())
	c.JSON(http.StatusOK, report)
}

// handleSendEmails sends the generated bodies of the filtered view.
func (s *Server) handleSendEmails(c *gin.Context) {
	ds, err := s.state.Filtered()
	if err != nil {
		respondError(c, err)
		return
	}

	report, err := s.emails.Send(c.Request.Context(), ds, s.state.Generated())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// handlePreviewEmails renders the generated bodies of the filtered view from
// Markdown to HTML.
func (s *Server) handlePreviewEmails(c *gin.Context) {
	ds, err := s.state.Filtered()
	if err != nil {
		respondError(c, err)
		return
	}
	bodies := s.state.Generated()
	recipients, _ := ds.Values(s.options.RecipientColumn)

	previews := make([]emailPreview, 0, len(bodies))
	for i, row := range ds.Rows {
		body, ok := bodies[row.Index]
		if !ok {
			continue
		}
		p := emailPreview{Index: row.Index, Body: body, HTML: renderMarkdown(body)}
		if recipients != nil {
			p.Recipient = recipients[i].String()
		}
		previews = append(previews, p)
	}

	c.JSON(http.StatusOK, gin.H{
		"emails": previews,
		"count":  len(previews),
	})
}

// renderMarkdown converts body to HTML. Raw HTML in the body is dropped.
func renderMarkdown(body string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.HardLineBreak)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML | html.HrefTargetBlank})
	return template.HTML(markdown.ToHTML([]byte(body), p, r))
}
