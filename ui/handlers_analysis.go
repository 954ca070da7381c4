package ui

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"notelens/domain/core"
	"notelens/internal/pipeline"
)

type runAnalysisRequest struct {
	NoteIDs []string `json:"note_ids"`
	From    string   `json:"from"`
	To      string   `json:"to"`
}

// runAnalysis executes one pipeline pass for the notebook. The call is
// synchronous; an unchanged run key returns the memoized result
// without touching the collaborators.
func (s *Server) runAnalysis(c *gin.Context) {
	notebookID, err := core.ParseNotebookID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var req runAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dateRange, err := parseDateRange(req.From, req.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	noteIDs := make([]core.NoteID, 0, len(req.NoteIDs))
	for _, raw := range req.NoteIDs {
		id, err := core.ParseNoteID(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		noteIDs = append(noteIDs, id)
	}

	result, err := s.pipeline.Run(c.Request.Context(), pipeline.RunRequest{
		NotebookID: notebookID,
		NoteIDs:    noteIDs,
		DateRange:  dateRange,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// analysisStatus reports the pipeline stage and the last completed
// result so the UI can render incremental progress.
func (s *Server) analysisStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.pipeline.Status())
}

// exportSeries streams the last completed render series as xlsx
func (s *Server) exportSeries(c *gin.Context) {
	result := s.pipeline.LastResult()
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no completed analysis to export"})
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "series.xlsx"))
	if err := s.exporter.Write(c.Writer, result.Series); err != nil {
		s.logger.Error("series export failed: %v", err)
		c.Status(http.StatusInternalServerError)
	}
}

// getChart returns the persisted chart instance for a notebook
func (s *Server) getChart(c *gin.Context) {
	notebookID, err := core.ParseNotebookID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	instance, err := s.charts.GetByNotebook(c.Request.Context(), notebookID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, instance)
}

type rebindRequest struct {
	Time      string `json:"time"`
	Dimension string `json:"dimension"`
	Metric    string `json:"metric"`
	From      string `json:"from"`
	To        string `json:"to"`
}

// rebindChart switches which field an axis uses, constrained to the
// candidate pool, then re-gates and re-aggregates.
func (s *Server) rebindChart(c *gin.Context) {
	notebookID, err := core.ParseNotebookID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var req rebindRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dateRange, err := parseDateRange(req.From, req.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.pipeline.Rebind(c.Request.Context(), pipeline.RebindRequest{
		NotebookID: notebookID,
		Time:       req.Time,
		Dimension:  req.Dimension,
		Metric:     req.Metric,
		DateRange:  dateRange,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
