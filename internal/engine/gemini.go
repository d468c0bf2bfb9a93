package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

// GeminiModel is the production GuideModel backed by Google Gemini.
// The response schema is enforced server-side so the model cannot answer in
// anything but the steps JSON shape; Synthesize still validates locally.
type GeminiModel struct {
	client  *genai.Client
	name    string
	limiter *rate.Limiter
}

var _ GuideModel = (*GeminiModel)(nil)

// NewGeminiModel dials Gemini. rps caps the outbound request rate; rps <= 0
// disables the limiter.
func NewGeminiModel(ctx context.Context, apiKey, model string, rps float64) (*GeminiModel, error) {
	if apiKey == "" {
		return nil, errors.New("empty Gemini API key")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	m := &GeminiModel{client: client, name: model}
	if rps > 0 {
		m.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return m, nil
}

// guideSchema mirrors the steps JSON shape for server-side enforcement.
func guideSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"steps": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title":       {Type: genai.TypeString},
						"description": {Type: genai.TypeString},
						"timestamp":   {Type: genai.TypeInteger},
					},
					Required: []string{"title", "description", "timestamp"},
				},
			},
		},
		Required: []string{"steps"},
	}
}

// Generate implements GuideModel.
func (m *GeminiModel) Generate(ctx context.Context, prompt string) (string, error) {
	if m.limiter != nil {
		if err := m.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	model := m.client.GenerativeModel(m.name)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = guideSchema()

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini: empty response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("gemini: no text parts in response")
	}
	return sb.String(), nil
}

// Close releases the underlying client.
func (m *GeminiModel) Close() error {
	return m.client.Close()
}
