package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"

	"civiclens/database"
	"civiclens/metrics"
	"civiclens/models"
	"civiclens/share"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

// CreateReportRequest is the submission payload. The client runs
// classification first and may let the user edit the description before
// submitting; all required fields arrive in this single call so a failure
// never leaves a half-written report.
type CreateReportRequest struct {
	Image       string   `json:"image"` // base64-encoded bytes
	MimeType    string   `json:"mime_type"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Category    string   `json:"category"`
	Severity    string   `json:"severity"`
	Description string   `json:"description"`
}

// CreateReportResponse returns the assigned seq.
type CreateReportResponse struct {
	Seq int `json:"seq"`
}

// CreateReport handles POST /api/v1/reports
func (h *Handlers) CreateReport(c *gin.Context) {
	var req CreateReportRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read JSON input"})
		return
	}

	if req.Latitude == nil || req.Longitude == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location unavailable: latitude and longitude are required"})
		return
	}
	if !models.ValidLatLng(*req.Latitude, *req.Longitude) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location out of range"})
		return
	}
	if req.Category == "" || req.Severity == "" || req.Description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category, severity and description are required"})
		return
	}
	severity := models.Severity(req.Severity)
	if !severity.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "severity must be High, Medium or Low"})
		return
	}

	var image []byte
	if req.Image != "" {
		var err error
		image, err = base64.StdEncoding.DecodeString(req.Image)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image must be valid base64"})
			return
		}
	}

	report := &models.Report{
		UserID:      c.GetString("user_id"),
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
		Category:    req.Category,
		Severity:    severity.Normalize(),
		Description: req.Description,
		Image:       image,
	}

	seq, err := h.db.SaveReport(c.Request.Context(), report)
	if err != nil {
		log.Errorf("Failed to save report: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save the report"})
		return
	}
	report.Seq = seq

	metrics.ReportsCreatedTotal.WithLabelValues(string(report.Severity)).Inc()
	h.publishReport(report)

	c.JSON(http.StatusOK, CreateReportResponse{Seq: seq})
}

// publishReport pushes a created report to RabbitMQ for downstream
// consumers. Best-effort: broker failures are logged, never surfaced.
func (h *Handlers) publishReport(report *models.Report) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.PublishReportCreated(report); err != nil {
		log.Errorf("Failed to publish report %d to RabbitMQ: %v", report.Seq, err)
	}
}

// ListReports handles GET /api/v1/reports
func (h *Handlers) ListReports(c *gin.Context) {
	filter := database.Filter{
		UserID: c.Query("user_id"),
		Limit:  DefaultListLimit,
	}
	if s := c.Query("status"); s != "" {
		status := models.Status(s)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status filter"})
			return
		}
		filter.Status = status
	}
	if s := c.Query("severity"); s != "" {
		severity := models.Severity(s)
		if !severity.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown severity filter"})
			return
		}
		filter.Severity = severity
	}
	if l := c.Query("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		filter.Limit = limit
	}

	reports, err := h.db.GetReports(c.Request.Context(), filter)
	if err != nil {
		log.Errorf("Failed to list reports: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list reports"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports, "count": len(reports)})
}

// SetStatusRequest carries the target triage status.
type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetStatus handles POST /api/v1/reports/:seq/status (admin only).
func (h *Handlers) SetStatus(c *gin.Context) {
	seq, err := strconv.Atoi(c.Param("seq"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report seq"})
		return
	}

	var req SetStatusRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}
	status := models.Status(req.Status)
	if !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be todo, in_progress or done"})
		return
	}

	report, err := h.db.GetReport(c.Request.Context(), seq)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	if err != nil {
		log.Errorf("Failed to load report %d: %v", seq, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load report"})
		return
	}

	if !models.CanTransition(report.Status, status) {
		c.JSON(http.StatusConflict, gin.H{
			"error": "invalid status transition from " + string(report.EffectiveStatus()) + " to " + string(status),
		})
		return
	}

	if err := h.db.UpdateStatus(c.Request.Context(), seq, status); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return
		}
		log.Errorf("Failed to update status of report %d: %v", seq, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update status"})
		return
	}

	metrics.StatusTransitionsTotal.WithLabelValues(string(status)).Inc()
	c.JSON(http.StatusOK, gin.H{"seq": seq, "status": status})
}

// ToggleUpvote handles POST /api/v1/reports/:seq/upvote
func (h *Handlers) ToggleUpvote(c *gin.Context) {
	seq, err := strconv.Atoi(c.Param("seq"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report seq"})
		return
	}

	userID := c.GetString("user_id")
	added, err := h.db.ToggleUpvote(c.Request.Context(), seq, userID)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	if err != nil {
		log.Errorf("Failed to toggle upvote on report %d: %v", seq, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to toggle upvote"})
		return
	}

	result := "removed"
	if added {
		result = "added"
	}
	metrics.UpvoteTogglesTotal.WithLabelValues(result).Inc()
	c.JSON(http.StatusOK, gin.H{"seq": seq, "upvoted": added, "result": result})
}

// ShareLinks handles GET /api/v1/reports/:seq/share
func (h *Handlers) ShareLinks(c *gin.Context) {
	seq, err := strconv.Atoi(c.Param("seq"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report seq"})
		return
	}

	report, err := h.db.GetReport(c.Request.Context(), seq)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	if err != nil {
		log.Errorf("Failed to load report %d: %v", seq, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load report"})
		return
	}

	address := h.router.ReverseGeocode(c.Request.Context(), report.Latitude, report.Longitude)

	links := share.All(share.Options{
		IssueType:   report.Category,
		Severity:    report.Severity,
		Description: report.Description,
		Address:     address,
		Lat:         report.Latitude,
		Lng:         report.Longitude,
	})

	c.JSON(http.StatusOK, gin.H{"seq": seq, "address": address, "links": links})
}
