package routing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"civiclens/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(directions, geocode string) *Client {
	c := NewClient("test-key")
	if directions != "" {
		c.directionsURL = directions
	}
	if geocode != "" {
		c.geocodeURL = geocode
	}
	return c
}

func TestOptimizeRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "driving", r.URL.Query().Get("mode"))
		assert.Contains(t, r.URL.Query().Get("waypoints"), "optimize:true|")
		assert.Equal(t, r.URL.Query().Get("origin"), r.URL.Query().Get("destination"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "OK",
			"routes": [{
				"waypoint_order": [2, 0, 1],
				"overview_polyline": {"points": "abc123"},
				"legs": [
					{"distance": {"value": 1200}, "duration": {"value": 300}},
					{"distance": {"value": 800}, "duration": {"value": 200}}
				]
			}]
		}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, "")
	route, err := c.OptimizeRoute(context.Background(),
		models.LatLng{Lat: 40.7128, Lng: -74.0060},
		[]models.LatLng{
			{Lat: 40.71, Lng: -74.01},
			{Lat: 40.72, Lng: -74.02},
			{Lat: 40.73, Lng: -74.03},
		})

	require.NoError(t, err)
	assert.Equal(t, []int{2, 0, 1}, route.StopOrder)
	assert.Equal(t, "abc123", route.Polyline)
	assert.Equal(t, 2000, route.DistanceMeters)
	assert.Equal(t, 500, route.DurationSeconds)
}

func TestOptimizeRouteZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ZERO_RESULTS", "routes": []}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, "")
	_, err := c.OptimizeRoute(context.Background(),
		models.LatLng{Lat: 40.0, Lng: -74.0},
		[]models.LatLng{{Lat: 19.0, Lng: 72.8}})

	assert.True(t, errors.Is(err, ErrRouteUnavailable))
}

func TestOptimizeRouteDeniedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "REQUEST_DENIED", "error_message": "bad key", "routes": []}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, "")
	_, err := c.OptimizeRoute(context.Background(),
		models.LatLng{Lat: 40.0, Lng: -74.0},
		[]models.LatLng{{Lat: 40.1, Lng: -74.1}})

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrRouteUnavailable))
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
}

func TestOptimizeRouteNoWaypoints(t *testing.T) {
	c := NewClient("test-key")
	_, err := c.OptimizeRoute(context.Background(), models.LatLng{}, nil)
	assert.Error(t, err)
}

func TestReverseGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "OK", "results": [{"formatted_address": "1 Centre St, New York, NY 10007"}]}`))
	}))
	defer srv.Close()

	c := testClient("", srv.URL)
	addr := c.ReverseGeocode(context.Background(), 40.7128, -74.0060)
	assert.Equal(t, "1 Centre St, New York, NY 10007", addr)
}

func TestReverseGeocodeFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := testClient("", srv.URL)
	addr := c.ReverseGeocode(context.Background(), 40.7128, -74.0060)
	assert.Equal(t, "40.7128, -74.0060", addr)
}

func TestReverseGeocodeNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	}))
	defer srv.Close()

	c := testClient("", srv.URL)
	addr := c.ReverseGeocode(context.Background(), 19.0760, 72.8777)
	assert.Equal(t, "19.0760, 72.8777", addr)
}
