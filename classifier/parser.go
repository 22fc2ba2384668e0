package classifier

import (
	"encoding/json"
	"errors"
	"strings"

	"civiclens/models"
)

// Verdict represents the parsed classification from the model
type Verdict struct {
	Type        string          `json:"type"`
	Severity    models.Severity `json:"severity"`
	Description string          `json:"description"`
}

// extractJSONFromMarkdown extracts JSON from markdown code blocks
func extractJSONFromMarkdown(response string) string {
	startMarker := "```"
	endMarker := "```"

	startIdx := strings.Index(response, startMarker)
	if startIdx == -1 {
		// No code block found, try to find JSON object directly
		startIdx = strings.Index(response, "{")
		if startIdx == -1 {
			return response
		}
		endIdx := strings.LastIndex(response, "}")
		if endIdx == -1 {
			return response
		}
		return strings.TrimSpace(response[startIdx : endIdx+1])
	}

	// Find the end of the first code block
	endIdx := strings.Index(response[startIdx+len(startMarker):], endMarker)
	if endIdx == -1 {
		return response
	}
	endIdx += startIdx + len(startMarker)

	content := response[startIdx+len(startMarker) : endIdx]

	// Remove the language identifier if present (e.g., "json")
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) > 0 && (strings.TrimSpace(lines[0]) == "json" || strings.TrimSpace(lines[0]) == "") {
		content = strings.Join(lines[1:], "\n")
	}

	return strings.TrimSpace(content)
}

// ParseVerdict parses the model response. The literal answer "null" (or an
// empty answer) means the image is not a civic issue and maps to
// ErrNotCivicIssue. Anything else must be the JSON verdict with all three
// fields present and a known severity tier.
func ParseVerdict(response string) (*Verdict, error) {
	cleaned := strings.TrimSpace(response)

	if cleaned == "" || strings.EqualFold(cleaned, "null") {
		return nil, ErrNotCivicIssue
	}

	jsonContent := extractJSONFromMarkdown(cleaned)

	// A fenced block may also carry the bare null answer.
	if strings.EqualFold(strings.TrimSpace(jsonContent), "null") {
		return nil, ErrNotCivicIssue
	}

	var verdict Verdict
	if err := json.Unmarshal([]byte(jsonContent), &verdict); err != nil {
		return nil, errors.New("malformed classifier response: " + err.Error())
	}

	if verdict.Type == "" || verdict.Description == "" {
		return nil, errors.New("classifier response missing required fields")
	}
	if !verdict.Severity.Valid() {
		return nil, errors.New("classifier response has unknown severity: " + string(verdict.Severity))
	}
	verdict.Severity = verdict.Severity.Normalize()

	return &verdict, nil
}

// Issue converts the verdict to the wire-level CivicIssue type.
func (v *Verdict) Issue() models.CivicIssue {
	return models.CivicIssue{
		Type:        v.Type,
		Severity:    v.Severity,
		Description: v.Description,
	}
}
