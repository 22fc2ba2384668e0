// Package classifier sends report photos to the OpenAI vision endpoint and
// turns the response into a CivicIssue verdict.
package classifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const openAIEndpoint = "https://api.openai.com/v1/chat/completions"

// ErrNotCivicIssue is returned when the model decides the image does not
// depict a civic issue. The caller must not create a report in that case.
var ErrNotCivicIssue = errors.New("image does not depict a civic issue")

const analysisPrompt = `Analyze this image. If it shows a civic issue (pothole, trash, broken infrastructure, damaged roads, street lighting issues, illegal dumping, graffiti, broken sidewalks, etc), return ONLY a JSON string in this exact format: {"type": "Issue Type", "severity": "High/Medium/Low", "description": "1 sentence description"}.

Severity guidelines:
- High: Immediate safety hazard (large potholes, exposed wires, major flooding)
- Medium: Moderate inconvenience (moderate trash, minor damage)
- Low: Minor aesthetic issues (small litter, cosmetic damage)

If the image does NOT show a civic issue, return only the word: null

Return ONLY the JSON or null, no other text.`

type message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type textContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type imageURL struct {
	URL string `json:"url"`
}

type imageContent struct {
	Type     string   `json:"type"`
	ImageURL imageURL `json:"image_url"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content any `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client represents an OpenAI API client
type Client struct {
	apiKey string
	model  string
	client *http.Client
}

// NewClient creates a new OpenAI client
func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// Analyze classifies a report photo. It returns ErrNotCivicIssue when the
// model answers null; any other unparseable answer is a hard error.
func (c *Client) Analyze(ctx context.Context, image []byte, mimeType string) (*Verdict, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("empty image")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	reqBody := chatRequest{
		Model: c.model,
		Messages: []message{
			{
				Role: "user",
				Content: []any{
					textContent{Type: "text", Text: analysisPrompt},
					imageContent{Type: "image_url", ImageURL: imageURL{URL: dataURL}},
				},
			},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIEndpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("error parsing response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	content := chatResp.Choices[0].Message.Content
	contentStr, ok := content.(string)
	if !ok {
		contentJSON, err := json.Marshal(content)
		if err != nil {
			return nil, fmt.Errorf("error marshaling content: %w", err)
		}
		contentStr = string(contentJSON)
	}

	return ParseVerdict(contentStr)
}
