package ui

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"notelens/domain/core"
	"notelens/domain/note"
)

type noteRequest struct {
	Title  string                 `json:"title" binding:"required"`
	Body   string                 `json:"body"`
	Fields map[string]interface{} `json:"fields"`
}

func (s *Server) createNote(c *gin.Context) {
	notebookID, err := core.ParseNotebookID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	n := note.NewNote(notebookID, req.Title)
	n.Body = req.Body
	if req.Fields != nil {
		n.Fields = req.Fields
	}
	if err := s.notes.Create(c.Request.Context(), n); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

func (s *Server) listNotes(c *gin.Context) {
	notebookID, err := core.ParseNotebookID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	dateRange, err := parseDateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	notes, err := s.notes.ListByNotebook(c.Request.Context(), notebookID, dateRange, limit, offset)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

func (s *Server) getNote(c *gin.Context) {
	id, err := core.ParseNoteID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	n, err := s.notes.GetByID(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (s *Server) updateNote(c *gin.Context) {
	id, err := core.ParseNoteID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	n, err := s.notes.GetByID(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}

	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	n.Title = req.Title
	n.Body = req.Body
	if req.Fields != nil {
		n.Fields = req.Fields
	}
	if err := s.notes.Update(c.Request.Context(), n); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (s *Server) deleteNote(c *gin.Context) {
	id, err := core.ParseNoteID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.notes.Delete(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type previewRequest struct {
	Markdown string `json:"markdown" binding:"required"`
}

// previewMarkdown renders a note body to HTML for the editor preview
// pane.
func (s *Server) previewMarkdown(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})
	rendered := markdown.ToHTML([]byte(req.Markdown), p, renderer)

	c.JSON(http.StatusOK, gin.H{"html": string(rendered)})
}

func parseDateRange(from, to string) (core.DateRange, error) {
	var dr core.DateRange
	if from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return dr, err
		}
		dr.From = t
	}
	if to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return dr, err
		}
		dr.To = t
	}
	return dr, nil
}
