// Package declutter computes non-overlapping display positions for report
// markers that are visually co-located. Positions are display-only; stored
// report coordinates are never modified.
package declutter

import (
	"math"

	"civiclens/models"
)

const (
	// ProximityThreshold is roughly 50 meters at the equator, in degrees.
	ProximityThreshold = 0.0005
	// OffsetStep is roughly 15 meters, in degrees.
	OffsetStep = 0.00015
)

// nearby reports whether two reports fall inside the same proximity box.
// The test is axis-aligned with a strict bound, not geodesic distance. That
// is fine at city scale but breaks near the poles and across the
// antimeridian.
func nearby(a, b *models.Report) bool {
	return math.Abs(a.Latitude-b.Latitude) < ProximityThreshold &&
		math.Abs(a.Longitude-b.Longitude) < ProximityThreshold
}

// DisplayPosition returns the marker position for report among all visible
// reports. Isolated reports keep their true location. Members of a cluster
// fan out on a two-column grid centered on the true point.
//
// The result depends on the full visible set: adding or removing a nearby
// report shifts every member's offset index. Callers recompute per snapshot.
func DisplayPosition(report *models.Report, all []models.Report) models.LatLng {
	group := make([]*models.Report, 0, 4)
	for i := range all {
		if nearby(&all[i], report) {
			group = append(group, &all[i])
		}
	}

	if len(group) <= 1 {
		return models.LatLng{Lat: report.Latitude, Lng: report.Longitude}
	}

	index := 0
	for i, r := range group {
		if r.Seq == report.Seq {
			index = i
			break
		}
	}

	row := index / 2
	col := index % 2

	return models.LatLng{
		Lat: report.Latitude + (float64(row)*OffsetStep - OffsetStep/2),
		Lng: report.Longitude + (float64(col)*OffsetStep - OffsetStep/2),
	}
}

// DisplayPositions computes marker positions for a whole snapshot, keyed by
// report seq in the order of the input.
func DisplayPositions(all []models.Report) []models.LatLng {
	positions := make([]models.LatLng, len(all))
	for i := range all {
		positions[i] = DisplayPosition(&all[i], all)
	}
	return positions
}
