package services

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"
)

// OpenAIService implements AIService against any OpenAI-compatible endpoint,
// including self-hosted servers that speak the same protocol.
type OpenAIService struct {
	client *openai.Client
	model  string
}

func NewOpenAIService(baseURL, apiKey, model string) *OpenAIService {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIService{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func (s *OpenAIService) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response generated")
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateJSON relies on the prompt itself demanding JSON output; the
// OpenAI json_object response format cannot express top-level arrays.
func (s *OpenAIService) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	return s.GenerateText(ctx, prompt)
}
