package handlers

import (
	"net/http"

	"civiclens/database"
	"civiclens/declutter"
	"civiclens/dispatch"
	"civiclens/models"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	geojson "github.com/paulmach/go.geojson"
)

// Marker pairs a report with its decluttered display position. The stored
// coordinates stay untouched; Display is where the pin is drawn.
type Marker struct {
	Report  models.Report `json:"report"`
	Display models.LatLng `json:"display"`
}

func (h *Handlers) mapSnapshot(c *gin.Context) ([]models.Report, bool) {
	reports, err := h.db.GetReports(c.Request.Context(), database.Filter{Limit: DefaultListLimit})
	if err != nil {
		log.Errorf("Failed to load reports for map: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load reports"})
		return nil, false
	}
	return reports, true
}

// Markers handles GET /api/v1/reports/markers
func (h *Handlers) Markers(c *gin.Context) {
	reports, ok := h.mapSnapshot(c)
	if !ok {
		return
	}

	positions := declutter.DisplayPositions(reports)
	markers := make([]Marker, len(reports))
	for i := range reports {
		reports[i].Image = nil
		markers[i] = Marker{Report: reports[i], Display: positions[i]}
	}

	c.JSON(http.StatusOK, gin.H{"markers": markers, "count": len(markers)})
}

// Heatmap handles GET /api/v1/reports/heatmap
func (h *Handlers) Heatmap(c *gin.Context) {
	reports, ok := h.mapSnapshot(c)
	if !ok {
		return
	}

	points := dispatch.HeatPoints(reports)
	c.JSON(http.StatusOK, gin.H{"points": points, "count": len(points)})
}

// ReportsGeoJSON handles GET /api/v1/reports/geojson. Exports the report
// snapshot as a FeatureCollection for GIS tooling; geometry carries the
// decluttered display position so imported layers match the live map.
func (h *Handlers) ReportsGeoJSON(c *gin.Context) {
	reports, ok := h.mapSnapshot(c)
	if !ok {
		return
	}

	positions := declutter.DisplayPositions(reports)
	fc := geojson.NewFeatureCollection()
	for i := range reports {
		r := &reports[i]
		feature := geojson.NewPointFeature([]float64{positions[i].Lng, positions[i].Lat})
		feature.SetProperty("seq", r.Seq)
		feature.SetProperty("timestamp", r.Timestamp)
		feature.SetProperty("category", r.Category)
		feature.SetProperty("severity", string(r.Severity))
		feature.SetProperty("status", string(r.EffectiveStatus()))
		feature.SetProperty("description", r.Description)
		feature.SetProperty("upvotes", models.UpvoteCount(r))
		feature.SetProperty("latitude", r.Latitude)
		feature.SetProperty("longitude", r.Longitude)
		fc.AddFeature(feature)
	}

	c.JSON(http.StatusOK, fc)
}
