package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pdfbrain/pdfbrain-backend/models"
	"github.com/pdfbrain/pdfbrain-backend/services"
)

// QuizController exposes quiz generation, retrieval and scoring.
type QuizController struct {
	Quiz *services.QuizService
}

func NewQuizController(quiz *services.QuizService) *QuizController {
	return &QuizController{Quiz: quiz}
}

// Generate builds a quiz from a document's content.
func (ctl *QuizController) Generate(c *gin.Context) {
	req := services.QuizGenerationRequest{
		NumQuestions:  5,
		QuestionTypes: []models.QuestionType{models.QuestionMCQ},
		Difficulty:    "medium",
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	quiz, err := ctl.Quiz.Generate(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Quiz generated successfully with %d questions", quiz.TotalQuestions),
		"quiz":    quiz,
	})
}

func (ctl *QuizController) Get(c *gin.Context) {
	quizID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quiz id"})
		return
	}

	quiz, err := ctl.Quiz.Get(quizID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, quiz)
}

type submissionRequest struct {
	Answers []services.UserAnswer `json:"answers"`
}

// Submit scores a set of answers against a quiz.
func (ctl *QuizController) Submit(c *gin.Context) {
	quizID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quiz id"})
		return
	}

	var req submissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := ctl.Quiz.Score(quizID, req.Answers)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListByDocument returns every quiz generated from one document.
func (ctl *QuizController) ListByDocument(c *gin.Context) {
	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return
	}

	quizzes, err := ctl.Quiz.ListByDocument(documentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, quizzes)
}

func (ctl *QuizController) Delete(c *gin.Context) {
	quizID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quiz id"})
		return
	}

	if err := ctl.Quiz.Delete(quizID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": fmt.Sprintf("Quiz %s deleted", quizID)})
}

// List pages through all quizzes.
func (ctl *QuizController) List(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	quizzes, total, err := ctl.Quiz.List(skip, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"quizzes": quizzes,
		"total":   total,
	})
}
