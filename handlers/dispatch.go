package handlers

import (
	"errors"
	"net/http"
	"time"

	"civiclens/database"
	"civiclens/dispatch"
	"civiclens/metrics"
	"civiclens/models"
	"civiclens/routing"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

// DispatchCandidates handles GET /api/v1/dispatch/candidates (admin only).
// Returns the capped set of actionable high-severity reports together with
// the origin the optimizer would use.
func (h *Handlers) DispatchCandidates(c *gin.Context) {
	reports, err := h.db.GetHighSeverityReports(c.Request.Context(), HighSeverityQueryLimit)
	if err != nil {
		log.Errorf("Failed to load high severity reports: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load candidates"})
		return
	}

	candidates := dispatch.SelectCandidates(reports)
	hq := dispatch.SelectHQ(h.cfg.DefaultHQ(), nil, candidates)

	c.JSON(http.StatusOK, gin.H{
		"candidates": candidates,
		"count":      len(candidates),
		"hq":         hq,
	})
}

// OptimizeRouteRequest optionally carries the operator's live location, which
// overrides the configured HQ as the route origin.
type OptimizeRouteRequest struct {
	OperatorLat *float64 `json:"operator_lat"`
	OperatorLng *float64 `json:"operator_lng"`
}

// OptimizeRouteResponse pairs the optimized route with the candidate reports
// it visits, so the client can render stop markers without a second query.
type OptimizeRouteResponse struct {
	Route      *routing.Route  `json:"route"`
	HQ         models.LatLng   `json:"hq"`
	Candidates []models.Report `json:"candidates"`
}

// OptimizeRoute handles POST /api/v1/dispatch/route (admin only).
func (h *Handlers) OptimizeRoute(c *gin.Context) {
	var req OptimizeRouteRequest
	if c.Request.ContentLength > 0 {
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read JSON input"})
			return
		}
	}

	var operator *models.LatLng
	if req.OperatorLat != nil && req.OperatorLng != nil {
		if !models.ValidLatLng(*req.OperatorLat, *req.OperatorLng) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "operator location out of range"})
			return
		}
		operator = &models.LatLng{Lat: *req.OperatorLat, Lng: *req.OperatorLng}
	}

	reports, err := h.db.GetHighSeverityReports(c.Request.Context(), HighSeverityQueryLimit)
	if err != nil {
		log.Errorf("Failed to load high severity reports: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load candidates"})
		return
	}

	candidates := dispatch.SelectCandidates(reports)
	if len(candidates) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"route":      nil,
			"candidates": []models.Report{},
			"message":    "no actionable high severity reports",
		})
		return
	}

	hq := dispatch.SelectHQ(h.cfg.DefaultHQ(), operator, candidates)

	waypoints := make([]models.LatLng, len(candidates))
	for i, r := range candidates {
		waypoints[i] = models.LatLng{Lat: r.Latitude, Lng: r.Longitude}
	}

	start := time.Now()
	route, err := h.router.OptimizeRoute(c.Request.Context(), hq, waypoints)
	metrics.RouteDurationSeconds.Observe(time.Since(start).Seconds())
	if errors.Is(err, routing.ErrRouteUnavailable) {
		metrics.RouteRequestsTotal.WithLabelValues("no_route").Inc()
		c.JSON(http.StatusBadGateway, gin.H{"error": "no drivable route between the selected reports"})
		return
	}
	if err != nil {
		metrics.RouteRequestsTotal.WithLabelValues("error").Inc()
		log.Errorf("Route optimization failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "route optimization failed"})
		return
	}

	metrics.RouteRequestsTotal.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, OptimizeRouteResponse{
		Route:      route,
		HQ:         hq,
		Candidates: candidates,
	})
}

// TriageBoard handles GET /api/v1/reports/triage (admin only).
func (h *Handlers) TriageBoard(c *gin.Context) {
	reports, err := h.db.GetReports(c.Request.Context(), database.Filter{Limit: DefaultListLimit})
	if err != nil {
		log.Errorf("Failed to load reports for triage: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load reports"})
		return
	}

	board := dispatch.GroupByStatus(reports)
	c.JSON(http.StatusOK, board)
}
