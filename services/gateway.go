package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ChatTurn is one prior (question, answer) pair passed back as model context.
type ChatTurn struct {
	UserMessage string `json:"user_message"`
	AIResponse  string `json:"ai_response"`
}

// QuestionPayload is the provider-returned description of one quiz question
// before persistence.
type QuestionPayload struct {
	QuestionType  string   `json:"question_type"`
	QuestionText  string   `json:"question_text"`
	CorrectAnswer string   `json:"correct_answer"`
	Options       []string `json:"options,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
}

// historyWindow caps how many prior turns are included in a prompt.
const historyWindow = 5

// LLMGateway is the single boundary to the model provider. It carries no
// mutable state and is safe for concurrent use.
type LLMGateway struct {
	ai      AIService
	timeout time.Duration
}

func NewLLMGateway(ai AIService, timeout time.Duration) *LLMGateway {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &LLMGateway{ai: ai, timeout: timeout}
}

// Summarize produces a short summary of a document. Callers treat the summary
// as optional and must not fail their own operation when this errors.
func (g *LLMGateway) Summarize(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf(`Please provide a comprehensive summary of the following document.
Include the main topics, key points, and important conclusions.
Keep it informative but concise (2-3 paragraphs maximum).

Document content:
%s`, text)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	result, err := g.ai.GenerateText(ctx, prompt)
	if err != nil {
		return "", &UpstreamError{Op: "summarize", Err: err}
	}
	return result, nil
}

// Answer responds to a question grounded in the document text plus the recent
// conversation. History is capped to the last turns in chronological order.
func (g *LLMGateway) Answer(ctx context.Context, question, docContext string, history []ChatTurn) (string, error) {
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	var transcript strings.Builder
	for _, turn := range history {
		transcript.WriteString("Human: " + turn.UserMessage + "\n")
		transcript.WriteString("Assistant: " + turn.AIResponse + "\n")
	}

	prompt := fmt.Sprintf(`You are a helpful AI assistant that answers questions based on the provided document content.
Use the document content as your primary source of information.
If the question cannot be answered from the document, clearly state that.
Be accurate, helpful, and conversational.

Document content:
%s

Previous conversation:
%s

Current question: %s

Please provide a helpful and accurate answer:`, docContext, transcript.String(), question)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	result, err := g.ai.GenerateText(ctx, prompt)
	if err != nil {
		return "", &UpstreamError{Op: "answer", Err: err}
	}
	return result, nil
}

// Transform rewrites document content according to an operation. Unknown
// operations are still forwarded with a generic instruction instead of being
// rejected.
func (g *LLMGateway) Transform(ctx context.Context, text, operation, customPrompt string) (string, error) {
	var prompt string
	switch {
	case customPrompt != "":
		prompt = customPrompt + "\n\nContent:\n" + text
	case operation == "summarize":
		prompt = "Provide a detailed summary of the following content:\n\n" + text
	case operation == "explain":
		prompt = "Explain the following content in simple, easy-to-understand terms:\n\n" + text
	case operation == "restructure":
		prompt = "Restructure and reorganize the following content for better clarity and flow:\n\n" + text
	case operation == "outline":
		prompt = "Create a detailed outline of the following content:\n\n" + text
	case operation == "bullet_points":
		prompt = "Convert the following content into well-organized bullet points:\n\n" + text
	default:
		prompt = fmt.Sprintf("Process the following content according to '%s':\n\n%s", operation, text)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	result, err := g.ai.GenerateText(ctx, prompt)
	if err != nil {
		return "", &UpstreamError{Op: "transform", Err: err}
	}
	return result, nil
}

// GenerateQuizQuestions asks the model for a JSON array of question payloads.
// A reply that cannot be parsed into the expected shape yields an empty list
// and no error; the caller decides how to surface that.
func (g *LLMGateway) GenerateQuizQuestions(ctx context.Context, text string, count int, types []string, difficulty string) ([]QuestionPayload, error) {
	prompt := fmt.Sprintf(`Based on the following document content, generate %d quiz questions.

Requirements:
- Question types: %s
- Difficulty level: %s
- Questions should test understanding of key concepts
- Provide clear, unambiguous questions
- Include explanations for correct answers

For MCQ questions: Provide 4 options (A, B, C, D)
For True/False: Provide true or false questions
For Fill-in-the-blank: Provide questions with one clear blank to fill

Return the response as a JSON array with this structure:
[
  {
    "question_type": "mcq|true_false|fill_blank",
    "question_text": "The question text",
    "correct_answer": "The correct answer",
    "options": ["A", "B", "C", "D"] (only for MCQ),
    "explanation": "Explanation of why this is correct"
  }
]

Only return valid JSON, no other text.

Document content:
%s`, count, strings.Join(types, ", "), difficulty, text)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	raw, err := g.ai.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, &UpstreamError{Op: "generate quiz questions", Err: err}
	}

	var payloads []QuestionPayload
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &payloads); err != nil {
		log.Warn().Err(err).Msg("quiz response was not a parseable question list")
		return []QuestionPayload{}, nil
	}
	return payloads, nil
}

// stripCodeFence removes a ```json ... ``` wrapper some models add around
// structured replies.
func stripCodeFence(s string) string {
	clean := strings.TrimSpace(s)
	clean = strings.Trim(clean, "`")
	clean = strings.TrimPrefix(clean, "json")
	return strings.TrimSpace(clean)
}
