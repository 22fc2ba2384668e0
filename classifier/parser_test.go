package classifier

import (
	"errors"
	"testing"

	"civiclens/models"
)

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantErr  bool
		rejected bool
		expected *Verdict
	}{
		{
			name:     "valid JSON response",
			response: `{"type": "Pothole", "severity": "High", "description": "Large pothole in the right lane."}`,
			expected: &Verdict{
				Type:        "Pothole",
				Severity:    models.SeverityHigh,
				Description: "Large pothole in the right lane.",
			},
		},
		{
			name: "JSON wrapped in markdown fences",
			response: "```json\n" +
				`{"type": "Garbage", "severity": "Medium", "description": "Overflowing trash bins on the sidewalk."}` +
				"\n```",
			expected: &Verdict{
				Type:        "Garbage",
				Severity:    models.SeverityMedium,
				Description: "Overflowing trash bins on the sidewalk.",
			},
		},
		{
			name:     "lowercase severity normalized",
			response: `{"type": "Streetlight", "severity": "low", "description": "One lamp is out."}`,
			expected: &Verdict{
				Type:        "Streetlight",
				Severity:    models.SeverityLow,
				Description: "One lamp is out.",
			},
		},
		{
			name:     "surrounding prose stripped",
			response: `Here is the result: {"type": "Graffiti", "severity": "Low", "description": "Tagging on a wall."} Hope that helps.`,
			expected: &Verdict{
				Type:        "Graffiti",
				Severity:    models.SeverityLow,
				Description: "Tagging on a wall.",
			},
		},
		{
			name:     "null means not a civic issue",
			response: "null",
			rejected: true,
		},
		{
			name:     "null with different case",
			response: "NULL",
			rejected: true,
		},
		{
			name:     "fenced null",
			response: "```\nnull\n```",
			rejected: true,
		},
		{
			name:     "empty response",
			response: "",
			rejected: true,
		},
		{
			name:     "malformed JSON",
			response: `{"type": "Pothole", "severity":`,
			wantErr:  true,
		},
		{
			name:     "missing description",
			response: `{"type": "Pothole", "severity": "High"}`,
			wantErr:  true,
		},
		{
			name:     "unknown severity",
			response: `{"type": "Pothole", "severity": "Catastrophic", "description": "Bad."}`,
			wantErr:  true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseVerdict(tc.response)

			if tc.rejected {
				if !errors.Is(err, ErrNotCivicIssue) {
					t.Fatalf("expected ErrNotCivicIssue, got verdict=%+v err=%v", got, err)
				}
				return
			}
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got verdict %+v", got)
				}
				if errors.Is(err, ErrNotCivicIssue) {
					t.Fatalf("malformed response must not map to ErrNotCivicIssue")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if *got != *tc.expected {
				t.Errorf("expected %+v, got %+v", tc.expected, got)
			}
		})
	}
}
