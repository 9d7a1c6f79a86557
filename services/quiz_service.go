package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pdfbrain/pdfbrain-backend/models"
)

// QuizGenerationRequest describes one quiz to build from a document.
type QuizGenerationRequest struct {
	DocumentID    uuid.UUID             `json:"document_id" binding:"required"`
	NumQuestions  int                   `json:"num_questions"`
	QuestionTypes []models.QuestionType `json:"question_types"`
	Difficulty    string                `json:"difficulty"`
	FocusTopics   []string              `json:"focus_topics"`
}

// UserAnswer is one submitted answer keyed by question id.
type UserAnswer struct {
	QuestionID uuid.UUID `json:"question_id"`
	Answer     string    `json:"answer"`
}

// QuestionResult reports the outcome for a single question of a submission.
type QuestionResult struct {
	QuestionID    uuid.UUID `json:"question_id"`
	QuestionText  string    `json:"question_text"`
	UserAnswer    string    `json:"user_answer"`
	CorrectAnswer string    `json:"correct_answer"`
	IsCorrect     bool      `json:"is_correct"`
	Explanation   *string   `json:"explanation,omitempty"`
}

// QuizSubmissionResult is the scored outcome of a submission.
type QuizSubmissionResult struct {
	QuizID         uuid.UUID        `json:"quiz_id"`
	Score          float64          `json:"score"`
	CorrectAnswers int              `json:"correct_answers"`
	TotalQuestions int              `json:"total_questions"`
	Results        []QuestionResult `json:"results"`
}

// QuizService builds quizzes out of model-generated payloads and scores
// submissions against the stored correct answers.
type QuizService struct {
	db            *gorm.DB
	gateway       *LLMGateway
	maxContentLen int
}

func NewQuizService(db *gorm.DB, gateway *LLMGateway, maxContentLen int) *QuizService {
	return &QuizService{db: db, gateway: gateway, maxContentLen: maxContentLen}
}

// Validate checks a generation request and returns every distinct problem.
// Nothing is persisted when validation fails.
func (s *QuizService) Validate(req QuizGenerationRequest) []string {
	var errs []string

	if req.NumQuestions < 1 || req.NumQuestions > 20 {
		errs = append(errs, "number of questions must be between 1 and 20")
	}
	if len(req.QuestionTypes) == 0 {
		errs = append(errs, "at least one question type must be specified")
	}
	for _, qt := range req.QuestionTypes {
		if !qt.Valid() {
			errs = append(errs, fmt.Sprintf("invalid question type: %s", qt))
		}
	}
	switch req.Difficulty {
	case "easy", "medium", "hard":
	default:
		errs = append(errs, "difficulty must be 'easy', 'medium', or 'hard'")
	}
	return errs
}

// Generate runs the full pipeline: validate, load the document, ask the model
// for questions and persist the quiz with its questions in one transaction.
func (s *QuizService) Generate(ctx context.Context, req QuizGenerationRequest) (*models.Quiz, error) {
	if errs := s.Validate(req); len(errs) > 0 {
		return nil, &ValidationError{Messages: errs}
	}

	var doc models.Document
	if err := s.db.First(&doc, "id = ?", req.DocumentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if strings.TrimSpace(doc.ExtractedText) == "" {
		return nil, ErrNoTextContent
	}

	types := make([]string, 0, len(req.QuestionTypes))
	for _, qt := range req.QuestionTypes {
		types = append(types, string(qt))
	}

	text := TruncateForModel(doc.ExtractedText, s.maxContentLen)
	payloads, err := s.gateway.GenerateQuizQuestions(ctx, text, req.NumQuestions, types, req.Difficulty)
	if err != nil {
		return nil, err
	}
	if len(payloads) == 0 {
		return nil, ErrNoQuestionsGenerated
	}

	quiz := models.Quiz{
		ID:             uuid.New(),
		DocumentID:     &doc.ID,
		Title:          "Quiz: " + doc.OriginalFilename,
		Description:    fmt.Sprintf("Generated quiz from %s with %d questions", doc.OriginalFilename, len(payloads)),
		TotalQuestions: len(payloads),
	}

	// Header and questions commit together or not at all.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&quiz).Error; err != nil {
			return err
		}
		for i, payload := range payloads {
			question := questionFromPayload(quiz.ID, i+1, payload)
			if err := tx.Create(&question).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("document_id", doc.ID.String()).
		Str("quiz_id", quiz.ID.String()).
		Int("questions", len(payloads)).
		Msg("quiz generated")

	return s.Get(quiz.ID)
}

func questionFromPayload(quizID uuid.UUID, orderIndex int, payload QuestionPayload) models.QuizQuestion {
	questionType := models.QuestionType(payload.QuestionType)
	if !questionType.Valid() {
		questionType = models.QuestionMCQ
	}

	var options models.StringList
	if questionType == models.QuestionMCQ {
		options = payload.Options
	}
	var explanation *string
	if payload.Explanation != "" {
		explanation = &payload.Explanation
	}

	return models.QuizQuestion{
		ID:            uuid.New(),
		QuizID:        quizID,
		QuestionType:  questionType,
		QuestionText:  payload.QuestionText,
		CorrectAnswer: payload.CorrectAnswer,
		Options:       options,
		Explanation:   explanation,
		OrderIndex:    orderIndex,
	}
}

// Get loads a quiz with its questions in presentation order.
func (s *QuizService) Get(quizID uuid.UUID) (*models.Quiz, error) {
	var quiz models.Quiz
	err := s.db.
		Preload("Questions", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("order_index ASC")
		}).
		First(&quiz, "id = ?", quizID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &quiz, nil
}

// ListByDocument returns every quiz of a document, empty when none exist.
func (s *QuizService) ListByDocument(documentID uuid.UUID) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	err := s.db.
		Preload("Questions", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("order_index ASC")
		}).
		Where("document_id = ?", documentID).
		Order("created_at DESC").
		Find(&quizzes).Error
	if err != nil {
		return nil, err
	}
	if quizzes == nil {
		quizzes = []models.Quiz{}
	}
	return quizzes, nil
}

// List pages through all quizzes and reports the overall count.
func (s *QuizService) List(skip, limit int) ([]models.Quiz, int64, error) {
	if limit <= 0 {
		limit = 100
	}

	var total int64
	if err := s.db.Model(&models.Quiz{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var quizzes []models.Quiz
	err := s.db.
		Order("created_at DESC").
		Offset(skip).
		Limit(limit).
		Find(&quizzes).Error
	if err != nil {
		return nil, 0, err
	}
	return quizzes, total, nil
}

// Delete removes a quiz and all of its questions.
func (s *QuizService) Delete(quizID uuid.UUID) error {
	var quiz models.Quiz
	if err := s.db.First(&quiz, "id = ?", quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quiz_id = ?", quizID).Delete(&models.QuizQuestion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&quiz).Error
	})
}

// Score checks a submission against the stored answers. Questions without a
// submitted answer count as incorrect; matching is a case-insensitive exact
// comparison of the trimmed strings.
func (s *QuizService) Score(quizID uuid.UUID, answers []UserAnswer) (*QuizSubmissionResult, error) {
	quiz, err := s.Get(quizID)
	if err != nil {
		return nil, err
	}

	submitted := make(map[uuid.UUID]string, len(answers))
	for _, answer := range answers {
		submitted[answer.QuestionID] = answer.Answer
	}

	correctCount := 0
	results := make([]QuestionResult, 0, len(quiz.Questions))
	for _, question := range quiz.Questions {
		userAnswer := submitted[question.ID]
		isCorrect := strings.EqualFold(strings.TrimSpace(userAnswer), strings.TrimSpace(question.CorrectAnswer))
		if isCorrect {
			correctCount++
		}
		results = append(results, QuestionResult{
			QuestionID:    question.ID,
			QuestionText:  question.QuestionText,
			UserAnswer:    userAnswer,
			CorrectAnswer: question.CorrectAnswer,
			IsCorrect:     isCorrect,
			Explanation:   question.Explanation,
		})
	}

	total := len(quiz.Questions)
	score := 0.0
	if total > 0 {
		score = math.Round(float64(correctCount)/float64(total)*100*100) / 100
	}

	return &QuizSubmissionResult{
		QuizID:         quizID,
		Score:          score,
		CorrectAnswers: correctCount,
		TotalQuestions: total,
		Results:        results,
	}, nil
}
