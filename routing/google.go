// Package routing wraps the Google Directions and Geocoding HTTP APIs. Route
// computation (stop ordering, polyline, drive time) is delegated entirely to
// the directions service; this package only assembles the request and maps
// failures onto the local error taxonomy.
package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"civiclens/models"
)

const (
	defaultDirectionsURL = "https://maps.googleapis.com/maps/api/directions/json"
	defaultGeocodeURL    = "https://maps.googleapis.com/maps/api/geocode/json"
)

// ErrRouteUnavailable is returned when the directions service finds no
// drivable path between the requested points. Terminal for this attempt; the
// caller retries by re-invoking with refreshed candidates.
var ErrRouteUnavailable = errors.New("no drivable route between points")

// Route is the optimized multi-stop route returned by the directions service.
type Route struct {
	// StopOrder is the permutation of the input waypoints in visit order.
	StopOrder []int `json:"stop_order"`
	// Polyline is the encoded overview polyline of the whole route.
	Polyline string `json:"polyline"`
	// DistanceMeters and DurationSeconds are summed over all legs.
	DistanceMeters  int `json:"distance_meters"`
	DurationSeconds int `json:"duration_seconds"`
}

// Client calls the Google Maps web services.
type Client struct {
	apiKey        string
	client        *http.Client
	directionsURL string
	geocodeURL    string
}

// NewClient creates a new Google Maps client
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:        apiKey,
		client:        &http.Client{Timeout: 30 * time.Second},
		directionsURL: defaultDirectionsURL,
		geocodeURL:    defaultGeocodeURL,
	}
}

type directionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		WaypointOrder    []int `json:"waypoint_order"`
		OverviewPolyline struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
		Legs []struct {
			Distance struct {
				Value int `json:"value"`
			} `json:"distance"`
			Duration struct {
				Value int `json:"value"`
			} `json:"duration"`
		} `json:"legs"`
	} `json:"routes"`
	ErrorMessage string `json:"error_message"`
}

func formatLatLng(p models.LatLng) string {
	return fmt.Sprintf("%f,%f", p.Lat, p.Lng)
}

// OptimizeRoute asks the directions service for the best visit order of the
// waypoints, driving, starting and ending at origin.
func (c *Client) OptimizeRoute(ctx context.Context, origin models.LatLng, waypoints []models.LatLng) (*Route, error) {
	if len(waypoints) == 0 {
		return nil, fmt.Errorf("no waypoints to route")
	}

	points := make([]string, len(waypoints))
	for i, wp := range waypoints {
		points[i] = formatLatLng(wp)
	}

	params := url.Values{}
	params.Set("origin", formatLatLng(origin))
	params.Set("destination", formatLatLng(origin))
	params.Set("waypoints", "optimize:true|"+strings.Join(points, "|"))
	params.Set("mode", "driving")
	params.Set("key", c.apiKey)

	var dirResp directionsResponse
	if err := c.getJSON(ctx, c.directionsURL+"?"+params.Encode(), &dirResp); err != nil {
		return nil, err
	}

	switch dirResp.Status {
	case "OK":
	case "ZERO_RESULTS", "NOT_FOUND":
		return nil, ErrRouteUnavailable
	default:
		return nil, fmt.Errorf("directions request failed: %s %s", dirResp.Status, dirResp.ErrorMessage)
	}

	if len(dirResp.Routes) == 0 {
		return nil, ErrRouteUnavailable
	}

	best := dirResp.Routes[0]
	route := &Route{
		StopOrder: best.WaypointOrder,
		Polyline:  best.OverviewPolyline.Points,
	}
	for _, leg := range best.Legs {
		route.DistanceMeters += leg.Distance.Value
		route.DurationSeconds += leg.Duration.Value
	}

	return route, nil
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
}

// ReverseGeocode resolves a coordinate to an address. It never fails:
// on any error the coordinate string is returned instead.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) string {
	fallback := fmt.Sprintf("%.4f, %.4f", lat, lng)

	params := url.Values{}
	params.Set("latlng", fmt.Sprintf("%f,%f", lat, lng))
	params.Set("key", c.apiKey)

	var geoResp geocodeResponse
	if err := c.getJSON(ctx, c.geocodeURL+"?"+params.Encode(), &geoResp); err != nil {
		return fallback
	}

	if geoResp.Status != "OK" || len(geoResp.Results) == 0 {
		return fallback
	}
	return geoResp.Results[0].FormattedAddress
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("error parsing response: %w", err)
	}
	return nil
}
