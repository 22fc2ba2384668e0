// Package dispatch orders open reports for the triage board and selects the
// candidate set handed to the route optimizer.
package dispatch

import (
	"strings"

	"civiclens/models"

	"github.com/golang/geo/s2"
)

const (
	// EarthRadiusKm matches the haversine constant used by the client maps.
	EarthRadiusKm = 6371.0

	// MaxCandidates caps the waypoint count sent to the directions service.
	MaxCandidates = 10

	// HQRelocationKm is the distance beyond which the default HQ is assumed
	// to be configured for the wrong region and is moved to the report
	// cluster. A heuristic, not a guarantee.
	HQRelocationKm = 200.0
)

// DistanceKm returns the great-circle distance between two points.
func DistanceKm(a, b models.LatLng) float64 {
	p := s2.LatLngFromDegrees(a.Lat, a.Lng)
	q := s2.LatLngFromDegrees(b.Lat, b.Lng)
	return p.Distance(q).Radians() * EarthRadiusKm
}

// actionable reports whether a high-severity report is still waiting for a
// crew. A missing status counts as pending.
func actionable(r *models.Report) bool {
	if r.Status == "" {
		return true
	}
	switch strings.ToLower(string(r.Status)) {
	case "pending", "todo":
		return true
	}
	return false
}

// SelectCandidates filters the high-severity query result down to the reports
// the router receives: status absent or pending/todo, first MaxCandidates in
// arrival order. No re-sort happens before truncation.
func SelectCandidates(reports []models.Report) []models.Report {
	candidates := make([]models.Report, 0, MaxCandidates)
	for i := range reports {
		if !actionable(&reports[i]) {
			continue
		}
		candidates = append(candidates, reports[i])
		if len(candidates) == MaxCandidates {
			break
		}
	}
	return candidates
}

// SelectHQ picks the route origin. The operator's live location overrides the
// default office. If the first candidate is over HQRelocationKm away from the
// chosen point, HQ moves to that candidate: a default office a continent away
// from the issue cluster would otherwise produce a nonsensical route.
func SelectHQ(defaultHQ models.LatLng, operator *models.LatLng, candidates []models.Report) models.LatLng {
	hq := defaultHQ
	if operator != nil {
		hq = *operator
	}
	if len(candidates) == 0 {
		return hq
	}
	first := models.LatLng{Lat: candidates[0].Latitude, Lng: candidates[0].Longitude}
	if DistanceKm(hq, first) > HQRelocationKm {
		return first
	}
	return hq
}

// TriageBoard partitions reports into the three kanban columns. Every report
// lands in exactly one bucket matching its effective status; within a bucket
// the input order is kept.
type TriageBoard struct {
	Todo       []models.Report `json:"todo"`
	InProgress []models.Report `json:"in_progress"`
	Done       []models.Report `json:"done"`
}

// GroupByStatus builds the triage board from a report snapshot.
func GroupByStatus(reports []models.Report) TriageBoard {
	board := TriageBoard{
		Todo:       []models.Report{},
		InProgress: []models.Report{},
		Done:       []models.Report{},
	}
	for _, r := range reports {
		switch r.EffectiveStatus() {
		case models.StatusInProgress:
			board.InProgress = append(board.InProgress, r)
		case models.StatusDone:
			board.Done = append(board.Done, r)
		default:
			board.Todo = append(board.Todo, r)
		}
	}
	return board
}

// HeatPoint is one weighted location for the heat-rendering layer.
type HeatPoint struct {
	Location models.LatLng `json:"location"`
	Weight   float64       `json:"weight"`
}

// HeatWeight computes the heat contribution of a report: a severity base
// weight plus an upvote bonus capped at 1.
func HeatWeight(r *models.Report) float64 {
	weight := 1.0
	switch r.Severity.Normalize() {
	case models.SeverityHigh:
		weight = 3.0
	case models.SeverityMedium:
		weight = 2.0
	}
	bonus := float64(models.UpvoteCount(r)) / 5.0
	if bonus > 1.0 {
		bonus = 1.0
	}
	return weight + bonus
}

// HeatPoints maps a report snapshot to weighted heat locations.
func HeatPoints(reports []models.Report) []HeatPoint {
	points := make([]HeatPoint, len(reports))
	for i := range reports {
		points[i] = HeatPoint{
			Location: models.LatLng{Lat: reports[i].Latitude, Lng: reports[i].Longitude},
			Weight:   HeatWeight(&reports[i]),
		}
	}
	return points
}
