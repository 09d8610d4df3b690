package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/daystreak/api/internal/config"
	"github.com/daystreak/api/internal/pkg/datex"
	"go.uber.org/zap"
)

// GeminiClient is the HTTP client for the Gemini generateContent API
type GeminiClient struct {
	BaseURL    string
	APIKey     string
	Model      string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewGeminiClient creates a new GeminiClient
func NewGeminiClient(cfg *config.Config, log *zap.Logger) *GeminiClient {
	timeout := time.Duration(cfg.AI.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GeminiClient{
		BaseURL: strings.TrimRight(cfg.AI.BaseURL, "/"),
		APIKey:  cfg.AI.APIKey,
		Model:   cfg.AI.Model,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		Logger: log,
	}
}

// RoadmapPrompt carries the learner's constraints for a generated plan
type RoadmapPrompt struct {
	Skill       string
	SkillLevel  string
	Months      int
	HoursPerDay float64
	StartDate   datex.Date
}

// Text renders the prompt sent to the model.
func (p RoadmapPrompt) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "I want to learn %s in %d months. I can give %g hours per day.", p.Skill, p.Months, p.HoursPerDay)
	if p.SkillLevel != "" {
		fmt.Fprintf(&b, " My current level is %s.", p.SkillLevel)
	}
	b.WriteString(` Tell me if this is possible using the key "isFeasible" with a boolean value and give the reason under "reason".`)
	b.WriteString(" If it is not possible, say how much time is required.")
	fmt.Fprintf(&b, " If it is possible, create a plan excluding weekends starting from %s of what tasks I need to do every day.", p.StartDate)
	b.WriteString(` Return only JSON in this format: {"isFeasible": true, "reason": "...", "plan": [{"date": "YYYY-MM-DD", "topic": "...", "tasks": ["..."]}]}`)
	return b.String()
}

type generateContentRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

// ErrEmptyCompletion is returned when the model answers without any text part.
var ErrEmptyCompletion = errors.New("model returned no text")

// GenerateRoadmap asks the model for a plan and returns its raw text unparsed
func (c *GeminiClient) GenerateRoadmap(ctx context.Context, p RoadmapPrompt) (string, error) {
	if c.APIKey == "" {
		return "", errors.New("ai.apiKey is not configured")
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.BaseURL, url.PathEscape(c.Model))
	params := url.Values{}
	params.Set("key", c.APIKey)
	fullURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	body, err := sonic.Marshal(generateContentRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: p.Text()}}}},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.Logger.Error("generateContent request failed",
			zap.Int("status_code", resp.StatusCode),
			zap.String("model", c.Model),
			zap.String("body", string(respBody)))
		return "", fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var result generateContentResponse
	if err := sonic.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	var out strings.Builder
	for _, cand := range result.Candidates {
		for _, pt := range cand.Content.Parts {
			out.WriteString(pt.Text)
		}
		if out.Len() > 0 {
			break
		}
	}
	if out.Len() == 0 {
		return "", ErrEmptyCompletion
	}
	return out.String(), nil
}
