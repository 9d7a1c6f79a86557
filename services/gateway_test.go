package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestAnswerCapsHistoryAndKeepsOrder(t *testing.T) {
	ai := &fakeAI{textReply: "answer"}
	g := NewLLMGateway(ai, time.Second)

	var history []ChatTurn
	for i := 0; i < 7; i++ {
		history = append(history, ChatTurn{
			UserMessage: fmt.Sprintf("question-%d", i),
			AIResponse:  fmt.Sprintf("answer-%d", i),
		})
	}

	if _, err := g.Answer(context.Background(), "now?", "doc text", history); err != nil {
		t.Fatalf("Answer: %v", err)
	}

	if strings.Contains(ai.lastPrompt, "question-0") || strings.Contains(ai.lastPrompt, "question-1") {
		t.Fatal("expected the oldest turns to be dropped from the prompt")
	}
	for i := 2; i < 7; i++ {
		if !strings.Contains(ai.lastPrompt, fmt.Sprintf("question-%d", i)) {
			t.Fatalf("expected turn %d in the prompt", i)
		}
	}
	// Chronological order survives the cap.
	if strings.Index(ai.lastPrompt, "question-2") > strings.Index(ai.lastPrompt, "question-6") {
		t.Fatal("expected history in chronological order")
	}
}

func TestTransformKnownOperation(t *testing.T) {
	ai := &fakeAI{textReply: "ok"}
	g := NewLLMGateway(ai, time.Second)

	if _, err := g.Transform(context.Background(), "content", "bullet_points", ""); err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if !strings.Contains(ai.lastPrompt, "bullet points") {
		t.Fatalf("expected bullet point instruction, got %q", ai.lastPrompt)
	}
}

func TestTransformUnknownOperationIsForwarded(t *testing.T) {
	ai := &fakeAI{textReply: "ok"}
	g := NewLLMGateway(ai, time.Second)

	if _, err := g.Transform(context.Background(), "content", "haiku", ""); err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if !strings.Contains(ai.lastPrompt, "according to 'haiku'") {
		t.Fatalf("expected the generic instruction template, got %q", ai.lastPrompt)
	}
}

func TestTransformCustomPromptWins(t *testing.T) {
	ai := &fakeAI{textReply: "ok"}
	g := NewLLMGateway(ai, time.Second)

	if _, err := g.Transform(context.Background(), "content", "summarize", "Translate to French."); err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if !strings.HasPrefix(ai.lastPrompt, "Translate to French.") {
		t.Fatalf("expected the custom prompt to lead, got %q", ai.lastPrompt)
	}
}

func TestGenerateQuizQuestionsParsesFencedJSON(t *testing.T) {
	ai := &fakeAI{jsonReply: "```json\n[{\"question_type\":\"mcq\",\"question_text\":\"Q?\",\"correct_answer\":\"A\",\"options\":[\"A\",\"B\",\"C\",\"D\"]}]\n```"}
	g := NewLLMGateway(ai, time.Second)

	payloads, err := g.GenerateQuizQuestions(context.Background(), "text", 1, []string{"mcq"}, "easy")
	if err != nil {
		t.Fatalf("GenerateQuizQuestions: %v", err)
	}
	if len(payloads) != 1 || payloads[0].CorrectAnswer != "A" {
		t.Fatalf("unexpected payloads: %+v", payloads)
	}
}

func TestGenerateQuizQuestionsMalformedReplyYieldsEmptyList(t *testing.T) {
	ai := &fakeAI{jsonReply: "I could not think of any questions, sorry."}
	g := NewLLMGateway(ai, time.Second)

	payloads, err := g.GenerateQuizQuestions(context.Background(), "text", 3, []string{"mcq"}, "easy")
	if err != nil {
		t.Fatalf("expected nil error on unparseable reply, got %v", err)
	}
	if len(payloads) != 0 {
		t.Fatalf("expected empty payload list, got %+v", payloads)
	}
}

func TestGatewayWrapsProviderFailures(t *testing.T) {
	ai := &fakeAI{textErr: errors.New("boom"), jsonErr: errors.New("boom")}
	g := NewLLMGateway(ai, time.Second)

	var upstream *UpstreamError

	if _, err := g.Summarize(context.Background(), "text"); !errors.As(err, &upstream) {
		t.Fatalf("Summarize: expected UpstreamError, got %v", err)
	}
	if _, err := g.Answer(context.Background(), "q", "ctx", nil); !errors.As(err, &upstream) {
		t.Fatalf("Answer: expected UpstreamError, got %v", err)
	}
	if _, err := g.GenerateQuizQuestions(context.Background(), "t", 1, []string{"mcq"}, "easy"); !errors.As(err, &upstream) {
		t.Fatalf("GenerateQuizQuestions: expected UpstreamError, got %v", err)
	}
}
