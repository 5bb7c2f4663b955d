package ui

import (
	"embed"
	"html/template"
	"log"
	"net/http"

	"csvdash/adapters/excel"
	"csvdash/app"
	"csvdash/internal/session"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Options configures the dashboard server
type Options struct {
	MaxUploadBytes  int64
	RecipientColumn string
}

// Server serves the dashboard page and its JSON API over one in-memory
// session.
type Server struct {
	router  *gin.Engine
	state   *session.State
	reader  *excel.DataReader
	emails  *app.EmailService
	options Options
}

// NewServer creates the dashboard server. The gin mode must be set before
// calling it.
func NewServer(emails *app.EmailService, options Options) (*Server, error) {
	tmpl, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.SetHTMLTemplate(tmpl)
	if options.MaxUploadBytes > 0 {
		router.MaxMultipartMemory = options.MaxUploadBytes
	}

	s := &Server{
		router:  router,
		state:   session.New(),
		reader:  excel.NewDataReader(excel.DefaultReaderConfig()),
		emails:  emails,
		options: options,
	}
	s.setupRoutes()
	return s, nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)

	api := s.router.Group("/api")
	{
		api.POST("/dataset", s.handleUpload)
		api.GET("/dataset", s.handleDataset)
		api.POST("/selection", s.handleSelection)

		api.GET("/stats", s.handleStats)
		api.GET("/chart", s.handleChart)
		api.GET("/chart.png", s.handleChartPNG)

		api.GET("/export.csv", s.handleExportCSV)
		api.GET("/export.xlsx", s.handleExportXLSX)

		api.POST("/emails/generate", s.handleGenerateEmails)
		api.POST("/emails/send", s.handleSendEmails)
		api.GET("/emails/preview", s.handlePreviewEmails)
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	log.Printf("[Dashboard] Listening on http://%s", addr)
	return s.router.Run(addr)
}

func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Loaded": s.state.Loaded(),
	})
}
