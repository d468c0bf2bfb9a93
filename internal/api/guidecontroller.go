package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/anatolykoptev/go_guide/internal/engine"
	"github.com/anatolykoptev/go_guide/internal/export"
	"github.com/anatolykoptev/go_guide/internal/render"
	"github.com/gin-gonic/gin"
)

// RegisterGuideRoutes registers transcript, guide, and export endpoints.
func RegisterGuideRoutes(r *gin.Engine) {
	g := r.Group("/api")
	g.POST("/transcript", handleTranscript)
	g.POST("/guide", handleGuide)
	g.POST("/guide/export", handleExport)
}

// handleTranscript resolves a video and returns its metadata plus the
// formatted transcript, without running synthesis.
// POST /api/transcript
func handleTranscript(c *gin.Context) {
	var req engine.GuideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
		return
	}
	if req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	res, err := engine.FetchTranscriptResult(c.Request.Context(), req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": engine.UserMessage(err)})
		return
	}
	c.JSON(http.StatusOK, res)
}

// handleGuide runs the full pipeline and returns the finished guide.
// POST /api/guide
func handleGuide(c *gin.Context) {
	var req engine.GuideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
		return
	}
	if req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	guide, err := engine.GenerateGuide(c.Request.Context(), req, nil)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": engine.UserMessage(err)})
		return
	}
	c.JSON(http.StatusOK, guide)
}

// handleExport converts a previously generated guide into a downloadable
// file. The guide travels in the request body so exports stay stateless.
// POST /api/guide/export?format=pdf|md
func handleExport(c *gin.Context) {
	var guide engine.GuideData
	if err := c.ShouldBindJSON(&guide); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
		return
	}

	var (
		art *export.Artifact
		err error
	)
	switch format := c.DefaultQuery("format", "pdf"); format {
	case "pdf":
		art, err = export.GuidePDF(c.Request.Context(), guide, render.Options{FetchImages: true})
	case "md", "markdown":
		art = export.GuideMarkdown(guide)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown format %q", format)})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": engine.UserMessage(err)})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.Filename))
	c.Data(http.StatusOK, art.MIME, art.Data)
}

// statusFor maps pipeline errors onto HTTP statuses: an unresolvable URL is
// the caller's problem, everything else is ours.
func statusFor(err error) int {
	var re *engine.ResolutionError
	if errors.As(err, &re) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
