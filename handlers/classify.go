package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"

	"civiclens/classifier"
	"civiclens/metrics"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

// ClassifyRequest carries the photo to analyze.
type ClassifyRequest struct {
	Image    string `json:"image" binding:"required"` // base64-encoded bytes
	MimeType string `json:"mime_type"`
}

// ClassifyImage handles POST /api/v1/classify. A 422 means the image was
// readable but does not depict a civic issue; the client must not submit a
// report for it.
func (h *Handlers) ClassifyImage(c *gin.Context) {
	var req ClassifyRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image is required"})
		return
	}

	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil || len(image) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image must be valid base64"})
		return
	}

	verdict, err := h.classifier.Analyze(c.Request.Context(), image, req.MimeType)
	if errors.Is(err, classifier.ErrNotCivicIssue) {
		metrics.ClassificationsTotal.WithLabelValues("rejected").Inc()
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "image does not depict a civic issue"})
		return
	}
	if err != nil {
		metrics.ClassificationsTotal.WithLabelValues("error").Inc()
		log.Errorf("Image classification failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to analyze image"})
		return
	}

	metrics.ClassificationsTotal.WithLabelValues("issue").Inc()
	c.JSON(http.StatusOK, verdict.Issue())
}
