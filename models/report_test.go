package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityNormalize(t *testing.T) {
	cases := map[string]Severity{
		"High":    SeverityHigh,
		"high":    SeverityHigh,
		"HIGH":    SeverityHigh,
		"Medium":  SeverityMedium,
		"low":     SeverityLow,
		"extreme": Severity("extreme"),
	}
	for in, want := range cases {
		assert.Equal(t, want, Severity(in).Normalize(), "input %q", in)
	}

	assert.True(t, Severity("HIGH").Valid())
	assert.False(t, Severity("extreme").Valid())
	assert.False(t, Severity("").Valid())
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusTodo, StatusInProgress, true},
		{StatusInProgress, StatusDone, true},
		{StatusInProgress, StatusTodo, true},
		{StatusTodo, StatusDone, false},
		{StatusDone, StatusTodo, false},
		{StatusDone, StatusInProgress, false},
		// empty folds into todo
		{"", StatusInProgress, true},
		{"", StatusDone, false},
		// self transitions are not moves
		{StatusTodo, StatusTodo, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, CanTransition(c.from, c.to), "%q -> %q", c.from, c.to)
	}
}

func TestEffectiveStatus(t *testing.T) {
	r := &Report{}
	assert.Equal(t, StatusTodo, r.EffectiveStatus())

	r.Status = StatusDone
	assert.Equal(t, StatusDone, r.EffectiveStatus())
}

func TestValidLatLng(t *testing.T) {
	assert.True(t, ValidLatLng(0, 0))
	assert.True(t, ValidLatLng(-90, 180))
	assert.False(t, ValidLatLng(90.1, 0))
	assert.False(t, ValidLatLng(0, -180.5))
}

func TestUpvoteSet(t *testing.T) {
	r := &Report{Upvotes: []string{"u1", "u2"}}
	assert.Equal(t, 2, UpvoteCount(r))
	assert.True(t, HasUpvoted(r, "u1"))
	assert.False(t, HasUpvoted(r, "u3"))

	assert.Equal(t, 0, UpvoteCount(nil))
	assert.False(t, HasUpvoted(nil, "u1"))
}
