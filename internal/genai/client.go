package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mammoth-reserve/reserve-backend/internal/config"
	"github.com/mammoth-reserve/reserve-backend/internal/models"
)

// Client calls an OpenAI-compatible chat completions API for the two
// collaborator contracts: food image analysis and alert-text generation.
// Both are best-effort enrichments; callers fall back locally on any error
// and never fail a core mutation because of this client.
type Client struct {
	apiURL      string
	apiKey      string
	model       string
	visionModel string
	httpClient  *http.Client
}

func NewClient(cfg *config.Config) *Client {
	timeout := cfg.AITimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		apiURL:      cfg.AIAPIURL,
		apiKey:      cfg.AIAPIKey,
		model:       cfg.AIModel,
		visionModel: cfg.AIVisionModel,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

var ErrNoProvider = errors.New("no AI provider configured")

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type chatContentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content interface{} `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

const analysisSystemPrompt = `You are a food-donation intake assistant. Analyze the image of surplus food.
Follow these steps for a consistent result:
1. Identify the container (e.g. "full standard catering tray").
2. Identify the food itself.
3. Based on the container, food type, and standard portion sizes, provide a logical integer estimate of the number of servings.
4. Based on the food type, density, and volume, provide a logical float estimate of the food's total weight in pounds.
5. Provide a brief summary.
6. List 2-3 visual observations.
Return your analysis as a JSON object with these exact fields:
{"foodName":"...", "summary":"...", "observations":["..."], "estimatedServings":0, "estimatedWeightLbs":0.0}
Return ONLY the JSON object, no extra text.`

// AnalyzeFoodImage sends a base64-encoded image to the vision model and
// parses the structured analysis out of the reply.
func (c *Client) AnalyzeFoodImage(ctx context.Context, base64Image string) (*models.AIAnalysis, error) {
	if c.apiKey == "" {
		return nil, ErrNoProvider
	}

	messages := []chatMessage{
		{Role: "system", Content: analysisSystemPrompt},
		{Role: "user", Content: []chatContentPart{
			{Type: "text", Text: "Analyze this image of surplus food and return the JSON analysis."},
			{Type: "image_url", ImageURL: &chatImageURL{
				URL:    "data:image/jpeg;base64," + base64Image,
				Detail: "auto",
			}},
		}},
	}

	content, err := c.complete(ctx, chatRequest{Model: c.visionModel, Messages: messages})
	if err != nil {
		return nil, err
	}

	var parsed models.AIAnalysis
	if err := unmarshalLoose(content, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse analysis result: %w", err)
	}
	if parsed.Summary == "" {
		parsed.Summary = "Could not generate summary."
	}
	if len(parsed.Observations) == 0 {
		parsed.Observations = []string{"No specific observations available."}
	}
	return &parsed, nil
}

type alertResult struct {
	AlertMessage string `json:"alertMessage"`
}

// GenerateAlertMessage produces the pickup alert text for a new donation.
func (c *Client) GenerateAlertMessage(ctx context.Context, foodItem string, servings int) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoProvider
	}

	prompt := fmt.Sprintf(
		"A university dining hall has a surplus of %d servings of %q. "+
			"Generate a concise, urgent, and friendly alert message for local charities and students. "+
			`Return ONLY a JSON object: {"alertMessage":"..."}`,
		servings, foodItem,
	)
	messages := []chatMessage{
		{Role: "user", Content: prompt},
	}

	content, err := c.complete(ctx, chatRequest{Model: c.model, Messages: messages, Temperature: 0.7})
	if err != nil {
		return "", err
	}

	var parsed alertResult
	if err := unmarshalLoose(content, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse alert result: %w", err)
	}
	if parsed.AlertMessage == "" {
		return "", errors.New("empty alert message from AI")
	}
	return parsed.AlertMessage, nil
}

func (c *Client) complete(ctx context.Context, reqBody chatRequest) (string, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("AI API error: status %d", resp.StatusCode)
	}

	var completion chatResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("no response from AI")
	}

	var content string
	switch v := completion.Choices[0].Message.Content.(type) {
	case string:
		content = v
	default:
		contentBytes, err := json.Marshal(v)
		if err != nil {
			return "", errors.New("failed to extract content from AI response")
		}
		content = string(contentBytes)
	}

	return strings.TrimSpace(content), nil
}

// unmarshalLoose tolerates markdown fencing and surrounding prose around
// the JSON object models tend to emit.
func unmarshalLoose(content string, out interface{}) error {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}

	if err := json.Unmarshal([]byte(content), out); err != nil {
		start := strings.Index(content, "{")
		end := strings.LastIndex(content, "}")
		if start >= 0 && end > start {
			return json.Unmarshal([]byte(content[start:end+1]), out)
		}
		return err
	}
	return nil
}

// FallbackAnalysis is the local substitute when image analysis fails; the
// donor-entered values carry the listing instead.
func FallbackAnalysis() *models.AIAnalysis {
	return &models.AIAnalysis{
		Summary:      "AI analysis could not be performed on the image.",
		Observations: []string{"Please describe the food manually."},
	}
}

// FallbackAlertMessage is the deterministic alert text used when the
// collaborator is unavailable.
func FallbackAlertMessage(foodItem string, servings int) string {
	return fmt.Sprintf("Alert: %d servings of %s are available for pickup now! Please collect within the hour.", servings, foodItem)
}
