package dispatch

import (
	"fmt"
	"math"
	"testing"

	"civiclens/models"
)

func highReport(seq int, status models.Status) models.Report {
	return models.Report{
		Seq:      seq,
		Severity: models.SeverityHigh,
		Status:   status,
		Latitude: 40.7128, Longitude: -74.0060,
	}
}

func TestSelectCandidatesFiltersStatus(t *testing.T) {
	reports := []models.Report{
		highReport(1, ""),
		highReport(2, models.StatusTodo),
		highReport(3, models.StatusDone),
		highReport(4, models.StatusInProgress),
		highReport(5, "TODO"),
	}

	candidates := SelectCandidates(reports)

	want := []int{1, 2, 5}
	if len(candidates) != len(want) {
		t.Fatalf("expected %d candidates, got %d", len(want), len(candidates))
	}
	for i, seq := range want {
		if candidates[i].Seq != seq {
			t.Errorf("candidate %d: expected seq %d, got %d", i, seq, candidates[i].Seq)
		}
	}
}

func TestSelectCandidatesCap(t *testing.T) {
	var reports []models.Report
	for i := 1; i <= 25; i++ {
		reports = append(reports, highReport(i, models.StatusTodo))
	}

	candidates := SelectCandidates(reports)
	if len(candidates) != MaxCandidates {
		t.Fatalf("expected cap of %d, got %d", MaxCandidates, len(candidates))
	}
	// Arrival order preserved, no re-sort before truncation.
	for i := 0; i < MaxCandidates; i++ {
		if candidates[i].Seq != i+1 {
			t.Errorf("candidate %d: expected seq %d, got %d", i, i+1, candidates[i].Seq)
		}
	}
}

func TestDistanceKm(t *testing.T) {
	nyc := models.LatLng{Lat: 40.7128, Lng: -74.0060}
	philly := models.LatLng{Lat: 39.9526, Lng: -75.1652}

	got := DistanceKm(nyc, philly)
	if math.Abs(got-130) > 5 {
		t.Errorf("NYC-Philadelphia distance: expected ~130km, got %.1f", got)
	}

	if d := DistanceKm(nyc, nyc); d != 0 {
		t.Errorf("zero distance expected, got %v", d)
	}
}

func TestSelectHQRelocation(t *testing.T) {
	defaultHQ := models.LatLng{Lat: 40.7128, Lng: -74.0060} // New York
	mumbai := models.Report{Seq: 1, Latitude: 19.0760, Longitude: 72.8777}

	hq := SelectHQ(defaultHQ, nil, []models.Report{mumbai})
	if hq.Lat != mumbai.Latitude || hq.Lng != mumbai.Longitude {
		t.Errorf("expected HQ relocated to cluster (%v, %v), got %v",
			mumbai.Latitude, mumbai.Longitude, hq)
	}
}

func TestSelectHQNearbyClusterKeepsDefault(t *testing.T) {
	defaultHQ := models.LatLng{Lat: 40.7128, Lng: -74.0060}
	brooklyn := models.Report{Seq: 1, Latitude: 40.6782, Longitude: -73.9442}

	hq := SelectHQ(defaultHQ, nil, []models.Report{brooklyn})
	if hq != defaultHQ {
		t.Errorf("expected default HQ %v, got %v", defaultHQ, hq)
	}
}

func TestSelectHQOperatorOverride(t *testing.T) {
	defaultHQ := models.LatLng{Lat: 40.7128, Lng: -74.0060}
	operator := models.LatLng{Lat: 40.7306, Lng: -73.9352}
	brooklyn := models.Report{Seq: 1, Latitude: 40.6782, Longitude: -73.9442}

	hq := SelectHQ(defaultHQ, &operator, []models.Report{brooklyn})
	if hq != operator {
		t.Errorf("expected operator location %v, got %v", operator, hq)
	}
}

func TestSelectHQNoCandidates(t *testing.T) {
	defaultHQ := models.LatLng{Lat: 40.7128, Lng: -74.0060}
	if hq := SelectHQ(defaultHQ, nil, nil); hq != defaultHQ {
		t.Errorf("expected default HQ %v, got %v", defaultHQ, hq)
	}
}

func TestGroupByStatus(t *testing.T) {
	reports := []models.Report{
		{Seq: 1, Status: ""},
		{Seq: 2, Status: models.StatusTodo},
		{Seq: 3, Status: models.StatusInProgress},
		{Seq: 4, Status: models.StatusDone},
		{Seq: 5, Status: models.StatusTodo},
	}

	board := GroupByStatus(reports)

	if len(board.Todo) != 3 || len(board.InProgress) != 1 || len(board.Done) != 1 {
		t.Fatalf("unexpected bucket sizes: todo=%d in_progress=%d done=%d",
			len(board.Todo), len(board.InProgress), len(board.Done))
	}
	total := len(board.Todo) + len(board.InProgress) + len(board.Done)
	if total != len(reports) {
		t.Errorf("expected every report in exactly one bucket, got %d of %d", total, len(reports))
	}
	if board.Todo[0].Seq != 1 || board.Todo[1].Seq != 2 || board.Todo[2].Seq != 5 {
		t.Errorf("todo bucket order not preserved: %+v", board.Todo)
	}
}

func TestHeatWeight(t *testing.T) {
	tests := []struct {
		name     string
		severity models.Severity
		upvotes  int
		want     float64
	}{
		{"high no upvotes", models.SeverityHigh, 0, 3.0},
		{"medium no upvotes", models.SeverityMedium, 0, 2.0},
		{"low no upvotes", models.SeverityLow, 0, 1.0},
		{"unknown severity", "Weird", 0, 1.0},
		{"high with capped bonus", models.SeverityHigh, 25, 4.0},
		{"medium partial bonus", models.SeverityMedium, 2, 2.4},
		{"lowercase high", "high", 0, 3.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			upvotes := make([]string, tc.upvotes)
			for i := range upvotes {
				upvotes[i] = fmt.Sprintf("user%d", i)
			}
			r := models.Report{Severity: tc.severity, Upvotes: upvotes}
			if got := HeatWeight(&r); math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("expected weight %v, got %v", tc.want, got)
			}
		})
	}
}
