// Package ui exposes the REST API: notebook and note CRUD, the
// analysis pipeline endpoints and the series export. A separate chi
// router serves health and debug endpoints on the admin port.
package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"notelens/adapters/excel"
	"notelens/internal"
	"notelens/internal/errors"
	"notelens/internal/pipeline"
	"notelens/ports"
)

// Server is the public REST API server
type Server struct {
	router    *gin.Engine
	notebooks ports.NotebookRepository
	notes     ports.NoteRepository
	charts    ports.ChartRepository
	pipeline  *pipeline.Service
	exporter  *excel.Writer
	logger    *internal.Logger
}

// Deps bundles the server's dependencies
type Deps struct {
	Notebooks ports.NotebookRepository
	Notes     ports.NoteRepository
	Charts    ports.ChartRepository
	Pipeline  *pipeline.Service
	Logger    *internal.Logger
}

// NewServer creates the API server and registers all routes
func NewServer(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = internal.DefaultLogger
	}
	s := &Server{
		router:    gin.Default(),
		notebooks: deps.Notebooks,
		notes:     deps.Notes,
		charts:    deps.Charts,
		pipeline:  deps.Pipeline,
		exporter:  excel.NewWriter(),
		logger:    deps.Logger.Component("ui"),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.router.Group("/api")

	api.POST("/notebooks", s.createNotebook)
	api.GET("/notebooks", s.listNotebooks)
	api.GET("/notebooks/:id", s.getNotebook)
	api.PUT("/notebooks/:id", s.updateNotebook)
	api.DELETE("/notebooks/:id", s.deleteNotebook)

	api.POST("/notebooks/:id/notes", s.createNote)
	api.GET("/notebooks/:id/notes", s.listNotes)
	api.GET("/notes/:id", s.getNote)
	api.PUT("/notes/:id", s.updateNote)
	api.DELETE("/notes/:id", s.deleteNote)

	api.POST("/notebooks/:id/analysis/run", s.runAnalysis)
	api.GET("/notebooks/:id/analysis", s.analysisStatus)
	api.GET("/notebooks/:id/analysis/export", s.exportSeries)
	api.GET("/notebooks/:id/chart", s.getChart)
	api.PATCH("/notebooks/:id/chart", s.rebindChart)

	api.POST("/preview", s.previewMarkdown)
}

// Handler returns the http handler for the API server
func (s *Server) Handler() http.Handler {
	return s.router
}

// respondError maps AppError codes to HTTP statuses. Collaborator
// error messages pass through verbatim.
func (s *Server) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeInvalidInput, errors.CodeValidationError:
		status = http.StatusBadRequest
	case errors.CodeExternalService:
		status = http.StatusBadGateway
	case errors.CodeSuperseded:
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed: %v", err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}
