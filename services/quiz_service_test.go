package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pdfbrain/pdfbrain-backend/models"
)

const sampleText = "The mitochondria is the powerhouse of the cell. It produces energy through respiration."

func newQuizService(db *gorm.DB, ai AIService) *QuizService {
	return NewQuizService(db, NewLLMGateway(ai, time.Second), 50000)
}

func validRequest(docID uuid.UUID) QuizGenerationRequest {
	return QuizGenerationRequest{
		DocumentID:    docID,
		NumQuestions:  5,
		QuestionTypes: []models.QuestionType{models.QuestionMCQ},
		Difficulty:    "medium",
	}
}

func payloadJSON(t *testing.T, payloads []QuestionPayload) string {
	t.Helper()
	b, err := json.Marshal(payloads)
	if err != nil {
		t.Fatalf("marshal payloads: %v", err)
	}
	return string(b)
}

func fivePayloads() []QuestionPayload {
	var payloads []QuestionPayload
	for i := 0; i < 5; i++ {
		payloads = append(payloads, QuestionPayload{
			QuestionType:  "mcq",
			QuestionText:  "What produces energy?",
			CorrectAnswer: "Mitochondria",
			Options:       []string{"Mitochondria", "Nucleus", "Ribosome", "Golgi"},
			Explanation:   "It is the powerhouse of the cell.",
		})
	}
	return payloads
}

func TestGeneratePersistsOrderedQuestions(t *testing.T) {
	db := newTestDB(t)
	doc := createTestDocument(t, db, sampleText)
	ai := &fakeAI{}
	ai.jsonReply = payloadJSON(t, fivePayloads())
	s := newQuizService(db, ai)

	quiz, err := s.Generate(context.Background(), validRequest(doc.ID))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if quiz.TotalQuestions != 5 {
		t.Fatalf("expected total_questions 5, got %d", quiz.TotalQuestions)
	}
	if len(quiz.Questions) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(quiz.Questions))
	}
	for i, q := range quiz.Questions {
		if q.OrderIndex != i+1 {
			t.Fatalf("question %d: expected order_index %d, got %d", i, i+1, q.OrderIndex)
		}
		if q.QuestionType != models.QuestionMCQ {
			t.Fatalf("question %d: unexpected type %s", i, q.QuestionType)
		}
		if len(q.Options) != 4 {
			t.Fatalf("question %d: expected 4 options, got %d", i, len(q.Options))
		}
	}
	if !strings.HasPrefix(quiz.Title, "Quiz: ") {
		t.Fatalf("unexpected title %q", quiz.Title)
	}
}

func TestGenerateValidationFailsWithoutTouchingStorage(t *testing.T) {
	db := newTestDB(t)
	doc := createTestDocument(t, db, sampleText)
	s := newQuizService(db, &fakeAI{})

	req := validRequest(doc.ID)
	req.NumQuestions = 0
	req.QuestionTypes = nil
	req.Difficulty = "impossible"

	_, err := s.Generate(context.Background(), req)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(validationErr.Messages) != 3 {
		t.Fatalf("expected 3 distinct messages, got %v", validationErr.Messages)
	}

	var count int64
	db.Model(&models.Quiz{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no quiz persisted, found %d", count)
	}
}

func TestGenerateBoundsOnNumQuestions(t *testing.T) {
	db := newTestDB(t)
	doc := createTestDocument(t, db, sampleText)
	s := newQuizService(db, &fakeAI{})

	for _, n := range []int{0, 21, -3} {
		req := validRequest(doc.ID)
		req.NumQuestions = n
		if _, err := s.Generate(context.Background(), req); err == nil {
			t.Fatalf("num_questions=%d: expected validation failure", n)
		}
	}
}

func TestGenerateUnknownDocument(t *testing.T) {
	db := newTestDB(t)
	s := newQuizService(db, &fakeAI{})

	_, err := s.Generate(context.Background(), validRequest(uuid.New()))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGenerateDocumentWithoutText(t *testing.T) {
	db := newTestDB(t)
	doc := createTestDocument(t, db, "  ")
	s := newQuizService(db, &fakeAI{})

	_, err := s.Generate(context.Background(), validRequest(doc.ID))
	if !errors.Is(err, ErrNoTextContent) {
		t.Fatalf("expected ErrNoTextContent, got %v", err)
	}
}

func TestGenerateEmptyModelReplyIsDomainError(t *testing.T) {
	db := newTestDB(t)
	doc := createTestDocument(t, db, sampleText)
	ai := &fakeAI{jsonReply: "not json at all"}
	s := newQuizService(db, ai)

	_, err := s.Generate(context.Background(), validRequest(doc.ID))
	if !errors.Is(err, ErrNoQuestionsGenerated) {
		t.Fatalf("expected ErrNoQuestionsGenerated, got %v", err)
	}

	var count int64
	db.Model(&models.Quiz{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no quiz persisted, found %d", count)
	}
}

func createScoredQuiz(t *testing.T, db *gorm.DB, docID uuid.UUID) *models.Quiz {
	t.Helper()

	quiz := models.Quiz{
		ID:             uuid.New(),
		DocumentID:     &docID,
		Title:          "Quiz: lecture-notes.pdf",
		TotalQuestions: 3,
	}
	if err := db.Create(&quiz).Error; err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	answers := []string{"Paris", "True", "Photosynthesis"}
	for i, answer := range answers {
		q := models.QuizQuestion{
			ID:            uuid.New(),
			QuizID:        quiz.ID,
			QuestionType:  models.QuestionFillBlank,
			QuestionText:  "q",
			CorrectAnswer: answer,
			OrderIndex:    i + 1,
		}
		if err := db.Create(&q).Error; err != nil {
			t.Fatalf("create question: %v", err)
		}
	}
	return &quiz
}

func TestScoreTwoOfThreeCorrect(t *testing.T) {
	db := newTestDB(t)
	doc := createTestDocument(t, db, sampleText)
	s := newQuizService(db, &fakeAI{})
	quiz := createScoredQuiz(t, db, doc.ID)

	full, err := s.Get(quiz.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	// Case-insensitive match for the first, exact for the second, and no
	// answer at all for the third.
	answers := []UserAnswer{
		{QuestionID: full.Questions[0].ID, Answer: "PARIS"},
		{QuestionID: full.Questions[1].ID, Answer: "True"},
	}

	result, err := s.Score(quiz.ID, answers)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if result.CorrectAnswers != 2 || result.TotalQuestions != 3 {
		t.Fatalf("expected 2/3, got %d/%d", result.CorrectAnswers, result.TotalQuestions)
	}
	if result.Score != 66.67 {
		t.Fatalf("expected score 66.67, got %v", result.Score)
	}
	if len(result.Results) != 3 {
		t.Fatalf("expected one result per question, got %d", len(result.Results))
	}
	for _, r := range result.Results {
		if r.QuestionID == full.Questions[2].ID {
			if r.IsCorrect || r.UserAnswer != "" {
				t.Fatalf("expected missing answer to score as empty and incorrect, got %+v", r)
			}
		}
	}
}

func TestScoreEmptyQuizGuardsDivisionByZero(t *testing.T) {
	db := newTestDB(t)
	doc := createTestDocument(t, db, sampleText)
	s := newQuizService(db, &fakeAI{})

	quiz := models.Quiz{ID: uuid.New(), DocumentID: &doc.ID, Title: "empty"}
	if err := db.Create(&quiz).Error; err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	result, err := s.Score(quiz.ID, nil)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if result.Score != 0 || result.TotalQuestions != 0 {
		t.Fatalf("expected zero score for empty quiz, got %+v", result)
	}
}

func TestScoreUnknownQuiz(t *testing.T) {
	db := newTestDB(t)
	s := newQuizService(db, &fakeAI{})

	if _, err := s.Score(uuid.New(), nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteCascadesQuestions(t *testing.T) {
	db := newTestDB(t)
	doc := createTestDocument(t, db, sampleText)
	s := newQuizService(db, &fakeAI{})
	quiz := createScoredQuiz(t, db, doc.ID)

	if err := s.Delete(quiz.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var questionCount int64
	db.Model(&models.QuizQuestion{}).Where("quiz_id = ?", quiz.ID).Count(&questionCount)
	if questionCount != 0 {
		t.Fatalf("expected questions to cascade, %d remain", questionCount)
	}

	if _, err := s.Get(quiz.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(quiz.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestListByDocumentEmptyIsNotAnError(t *testing.T) {
	db := newTestDB(t)
	doc := createTestDocument(t, db, sampleText)
	s := newQuizService(db, &fakeAI{})

	quizzes, err := s.ListByDocument(doc.ID)
	if err != nil {
		t.Fatalf("ListByDocument: %v", err)
	}
	if quizzes == nil || len(quizzes) != 0 {
		t.Fatalf("expected empty slice, got %v", quizzes)
	}
}

func TestListCountsAllQuizzes(t *testing.T) {
	db := newTestDB(t)
	doc := createTestDocument(t, db, sampleText)
	s := newQuizService(db, &fakeAI{})
	createScoredQuiz(t, db, doc.ID)
	createScoredQuiz(t, db, doc.ID)

	quizzes, total, err := s.List(0, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(quizzes) != 2 {
		t.Fatalf("expected 2 quizzes, got total=%d len=%d", total, len(quizzes))
	}
}
