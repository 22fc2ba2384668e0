package handlers

import (
	"context"
	"net/http"
	"time"

	"civiclens/auth"
	"civiclens/classifier"
	"civiclens/config"
	"civiclens/database"
	"civiclens/models"
	"civiclens/rabbitmq"
	"civiclens/routing"
	"civiclens/service"

	"github.com/gin-gonic/gin"
)

const (
	// HighSeverityQueryLimit caps the store query feeding candidate selection.
	HighSeverityQueryLimit = 25

	// DefaultListLimit bounds unfiltered report listings.
	DefaultListLimit = 1000
)

// Classifier is the image classification collaborator.
type Classifier interface {
	Analyze(ctx context.Context, image []byte, mimeType string) (*classifier.Verdict, error)
}

// Router is the directions/geocoding collaborator.
type Router interface {
	OptimizeRoute(ctx context.Context, origin models.LatLng, waypoints []models.LatLng) (*routing.Route, error)
	ReverseGeocode(ctx context.Context, lat, lng float64) string
}

// Handlers contains all HTTP handlers
type Handlers struct {
	cfg        *config.Config
	db         *database.Database
	auth       *auth.Service
	classifier Classifier
	router     Router
	feed       *service.Feed
	publisher  *rabbitmq.Publisher
}

// NewHandlers creates a new handlers instance. publisher may be nil when
// RabbitMQ is disabled.
func NewHandlers(cfg *config.Config, db *database.Database, authSvc *auth.Service,
	cls Classifier, router Router, feed *service.Feed, publisher *rabbitmq.Publisher) *Handlers {
	return &Handlers{
		cfg:        cfg,
		db:         db,
		auth:       authSvc,
		classifier: cls,
		router:     router,
		feed:       feed,
		publisher:  publisher,
	}
}

// HealthCheck returns the service health status
func (h *Handlers) HealthCheck(c *gin.Context) {
	connectedClients, lastBroadcastSeq, _ := h.feed.GetStats()

	c.JSON(http.StatusOK, models.HealthResponse{
		Status:           "healthy",
		Service:          "civiclens",
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
		ConnectedClients: connectedClients,
		LastBroadcastSeq: lastBroadcastSeq,
	})
}
