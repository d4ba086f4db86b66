// Package advisor adapts a chat-completion generative model as the opaque
// quality-scoring collaborator. The model returns a JSON verdict whose field
// types drift between runs (numeric vs. string scores, percentage vs. decimal
// confidence), so parsing here is deliberately tolerant; strict normalization
// happens in the scoring engine.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fieldscope/land-quality-service/internal/domain"
)

const systemPrompt = `You are an agronomy expert. Given soil temperature, soil moisture, and NDVI vegetation statistics for a plot of land, assess its agricultural quality. Respond with a single JSON object with keys: "Soil_Quality_score" (0-100), "Soil_Quality_Level" ("High", "Moderate" or "Low"), "confidence" (0-1), "summary" (one paragraph), "recommendations" (array of 3-4 short strings). Respond with JSON only.`

// Client implements domain.Advisor against a chat-completions HTTP API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an advisor client.
func NewClient(apiKey, baseURL, model string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Assess submits the normalized measurements and parses the model's verdict.
func (c *Client) Assess(ctx context.Context, input domain.AdvisorInput) (domain.AdvisorAssessment, error) {
	measurements, err := json.Marshal(input)
	if err != nil {
		return domain.AdvisorAssessment{}, fmt.Errorf("encode advisor input: %w", err)
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: string(measurements)},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return domain.AdvisorAssessment{}, fmt.Errorf("encode advisor request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return domain.AdvisorAssessment{}, fmt.Errorf("create advisor request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.AdvisorAssessment{}, fmt.Errorf("advisor request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return domain.AdvisorAssessment{}, fmt.Errorf("advisor API error: status %d: %s", resp.StatusCode, payload)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return domain.AdvisorAssessment{}, fmt.Errorf("decode advisor response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return domain.AdvisorAssessment{}, fmt.Errorf("advisor returned no choices")
	}

	return parseVerdict(cr.Choices[0].Message.Content)
}

// parseVerdict extracts the assessment from the model's message content,
// tolerating markdown code fences and loosely-typed fields.
func parseVerdict(content string) (domain.AdvisorAssessment, error) {
	content = stripCodeFence(content)

	var v looseVerdict
	if err := json.Unmarshal([]byte(content), &v); err != nil {
		return domain.AdvisorAssessment{}, fmt.Errorf("parse advisor verdict: %w", err)
	}

	return domain.AdvisorAssessment{
		Score:           looseFloat(v.Score),
		Level:           normalizeLevel(v.Level),
		Confidence:      looseString(v.Confidence),
		Summary:         v.Summary,
		Recommendations: v.Recommendations,
	}, nil
}

// stripCodeFence removes a surrounding markdown code fence, with or without a
// language tag.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// looseFloat coerces a JSON number or numeric string into a float pointer.
func looseFloat(v any) *float64 {
	switch t := v.(type) {
	case float64:
		return &t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(t), "%"), 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// looseString renders a JSON number or string as a string, preserving
// percentage suffixes for the scoring engine to normalize.
func looseString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

// normalizeLevel canonicalizes the categorical level's case; unrecognized
// values are dropped so scoring falls back cleanly.
func normalizeLevel(s string) domain.QualityLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return domain.LevelHigh
	case "moderate", "medium":
		return domain.LevelModerate
	case "low":
		return domain.LevelLow
	default:
		return ""
	}
}

// Chat-completions wire types.

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type looseVerdict struct {
	Score           any      `json:"Soil_Quality_score"`
	Level           string   `json:"Soil_Quality_Level"`
	Confidence      any      `json:"confidence"`
	Summary         string   `json:"summary"`
	Recommendations []string `json:"recommendations"`
}
