package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	geminiTextModel = "gemini-2.5-flash"
	// Structured output (quiz JSON) goes to the pro model.
	geminiJSONModel = "gemini-2.5-pro"
)

// GeminiService implements AIService on top of the Gemini API.
type GeminiService struct {
	client *genai.Client
}

func NewGeminiService(ctx context.Context, apiKey string) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiService{client: client}, nil
}

func (s *GeminiService) Close() error { return s.client.Close() }

func (s *GeminiService) GenerateText(ctx context.Context, prompt string) (string, error) {
	model := s.client.GenerativeModel(geminiTextModel)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	return collectParts(resp)
}

func (s *GeminiService) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	model := s.client.GenerativeModel(geminiJSONModel)
	model.ResponseMIMEType = "application/json"
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	return collectParts(resp)
}

func collectParts(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		b.WriteString(fmt.Sprintf("%v", part))
	}
	return b.String(), nil
}
