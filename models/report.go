package models

import (
	"time"
)

// Severity is the urgency tier assigned to a report by the classifier.
type Severity string

const (
	SeverityHigh   Severity = "High"
	SeverityMedium Severity = "Medium"
	SeverityLow    Severity = "Low"
)

// Valid reports whether s is one of the three known tiers, ignoring case.
func (s Severity) Valid() bool {
	switch s.Normalize() {
	case SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// Normalize maps case variants ("high", "HIGH") onto the canonical spelling.
// Unknown values are returned unchanged.
func (s Severity) Normalize() Severity {
	switch string(s) {
	case "High", "high", "HIGH":
		return SeverityHigh
	case "Medium", "medium", "MEDIUM":
		return SeverityMedium
	case "Low", "low", "LOW":
		return SeverityLow
	}
	return s
}

// Status is the triage state of a report. An empty status means the report
// has not been triaged yet and is treated as StatusTodo everywhere.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Valid reports whether s is a member of the status enum.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// statusTransitions is the forward-only triage table. The backward step from
// in_progress to todo is allowed so an operator can undo picking up a report.
var statusTransitions = map[Status][]Status{
	StatusTodo:       {StatusInProgress},
	StatusInProgress: {StatusDone, StatusTodo},
	StatusDone:       {},
}

// CanTransition reports whether a report currently in from may move to to.
// The empty status counts as todo.
func CanTransition(from, to Status) bool {
	if from == "" {
		from = StatusTodo
	}
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Report is one citizen-submitted civic issue as stored in the reports table.
type Report struct {
	Seq         int       `json:"seq" db:"seq"`
	Timestamp   time.Time `json:"timestamp" db:"ts"`
	UserID      string    `json:"user_id" db:"user_id"`
	Latitude    float64   `json:"latitude" db:"latitude"`
	Longitude   float64   `json:"longitude" db:"longitude"`
	Category    string    `json:"category" db:"category"`
	Severity    Severity  `json:"severity" db:"severity"`
	Description string    `json:"description" db:"description"`
	Status      Status    `json:"status" db:"status"`
	Image       []byte    `json:"image,omitempty" db:"image"`
	Upvotes     []string  `json:"upvotes"`
}

// EffectiveStatus returns the report status with the empty value folded
// into todo.
func (r *Report) EffectiveStatus() Status {
	if r.Status == "" {
		return StatusTodo
	}
	return r.Status
}

// UpvoteCount returns the size of the upvote set, zero when absent.
func UpvoteCount(r *Report) int {
	if r == nil {
		return 0
	}
	return len(r.Upvotes)
}

// HasUpvoted reports whether userID is a member of the report's upvote set.
func HasUpvoted(r *Report, userID string) bool {
	if r == nil {
		return false
	}
	for _, id := range r.Upvotes {
		if id == userID {
			return true
		}
	}
	return false
}

// CivicIssue is the classifier verdict for a submitted image.
type CivicIssue struct {
	Type        string   `json:"type"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
}

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ValidLatLng reports whether lat/lng are inside WGS84 bounds. NaN fails
// every comparison, so the range checks also reject non-finite input.
func ValidLatLng(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// ReportBatch is a group of reports pushed to websocket subscribers.
type ReportBatch struct {
	Reports []Report `json:"reports"`
	Count   int      `json:"count"`
	FromSeq int      `json:"from_seq"`
	ToSeq   int      `json:"to_seq"`
}

// BroadcastMessage is the envelope sent to websocket clients.
type BroadcastMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status           string `json:"status"`
	Service          string `json:"service"`
	Timestamp        string `json:"timestamp"`
	ConnectedClients int    `json:"connected_clients"`
	LastBroadcastSeq int    `json:"last_broadcast_seq"`
}
