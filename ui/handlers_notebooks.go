package ui

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"notelens/domain/core"
	"notelens/domain/field"
	"notelens/domain/note"
)

type notebookRequest struct {
	Name             string             `json:"name" binding:"required"`
	Description      string             `json:"description"`
	Color            string             `json:"color"`
	TemplateFields   []field.Definition `json:"template_fields"`
	PromptTemplateID string             `json:"prompt_template_id"`
}

func (s *Server) createNotebook(c *gin.Context) {
	var req notebookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	nb := note.NewNotebook(req.Name)
	nb.Description = req.Description
	if req.Color != "" {
		nb.Color = req.Color
	}
	nb.TemplateFields = req.TemplateFields
	nb.PromptTemplateID = req.PromptTemplateID

	if err := s.notebooks.Create(c.Request.Context(), nb); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, nb)
}

func (s *Server) listNotebooks(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	notebooks, err := s.notebooks.List(c.Request.Context(), limit, offset)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notebooks": notebooks})
}

func (s *Server) getNotebook(c *gin.Context) {
	id, err := core.ParseNotebookID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	nb, err := s.notebooks.GetByID(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nb)
}

func (s *Server) updateNotebook(c *gin.Context) {
	id, err := core.ParseNotebookID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	nb, err := s.notebooks.GetByID(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}

	var req notebookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	nb.Name = req.Name
	nb.Description = req.Description
	if req.Color != "" {
		nb.Color = req.Color
	}
	nb.TemplateFields = req.TemplateFields
	nb.PromptTemplateID = req.PromptTemplateID

	if err := s.notebooks.Update(c.Request.Context(), nb); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nb)
}

func (s *Server) deleteNotebook(c *gin.Context) {
	id, err := core.ParseNotebookID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.notebooks.Delete(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
