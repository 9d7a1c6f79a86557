package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pdfbrain/pdfbrain-backend/models"
	"github.com/pdfbrain/pdfbrain-backend/services"
)

// ChatController answers questions about documents and manages chat sessions.
type ChatController struct {
	DB            *gorm.DB
	Chat          *services.ChatSessionManager
	Gateway       *services.LLMGateway
	MaxContentLen int
}

func NewChatController(db *gorm.DB, chat *services.ChatSessionManager, gateway *services.LLMGateway, maxContentLen int) *ChatController {
	return &ChatController{
		DB:            db,
		Chat:          chat,
		Gateway:       gateway,
		MaxContentLen: maxContentLen,
	}
}

type askRequest struct {
	DocumentID uuid.UUID `json:"document_id" binding:"required"`
	Message    string    `json:"message" binding:"required"`
	SessionID  string    `json:"session_id"`
}

// Ask answers a question grounded in a document, using the recent session
// history as context, and records the turn.
func (ctl *ChatController) Ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var doc models.Document
	if err := ctl.DB.First(&doc, "id = ?", req.DocumentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}
	if strings.TrimSpace(doc.ExtractedText) == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no text content available for this document"})
		return
	}

	sessionID := ctl.Chat.StartOrReuseSession(req.SessionID)

	history, err := ctl.Chat.RecentHistory(req.DocumentID, sessionID, services.DefaultHistoryLimit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	truncated := services.TruncateForModel(doc.ExtractedText, ctl.MaxContentLen)
	answer, err := ctl.Gateway.Answer(c.Request.Context(), req.Message, truncated, history)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	turn, err := ctl.Chat.RecordTurn(req.DocumentID, sessionID, req.Message, answer)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	log.Info().
		Str("document_id", req.DocumentID.String()).
		Str("session_id", sessionID).
		Msg("question answered")

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"response":    answer,
		"session_id":  sessionID,
		"document_id": req.DocumentID,
		"timestamp":   turn.Timestamp.Format(time.RFC3339),
	})
}

// History returns the messages of one session in chronological order.
func (ctl *ChatController) History(c *gin.Context) {
	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return
	}
	sessionID := c.Param("session")

	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	messages, total, err := ctl.Chat.History(documentID, sessionID, skip, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages":    messages,
		"total_count": total,
	})
}

// Sessions lists every session of a document with message counts.
func (ctl *ChatController) Sessions(c *gin.Context) {
	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return
	}

	sessions, err := ctl.Chat.ListSessions(documentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"document_id": documentID,
		"sessions":    sessions,
	})
}

// DeleteSession removes all turns of one session.
func (ctl *ChatController) DeleteSession(c *gin.Context) {
	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return
	}
	sessionID := c.Param("session")

	deleted, err := ctl.Chat.DeleteSession(documentID, sessionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"deleted_count": deleted,
		"message":       "deleted " + strconv.FormatInt(deleted, 10) + " messages from session " + sessionID,
	})
}

type manipulateRequest struct {
	DocumentID   uuid.UUID `json:"document_id" binding:"required"`
	Operation    string    `json:"operation" binding:"required"`
	CustomPrompt string    `json:"custom_prompt"`
}

// Manipulate rewrites document content with one of the transform operations.
// Unknown operations are forwarded to the model rather than rejected.
func (ctl *ChatController) Manipulate(c *gin.Context) {
	var req manipulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var doc models.Document
	if err := ctl.DB.First(&doc, "id = ?", req.DocumentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}
	if strings.TrimSpace(doc.ExtractedText) == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no text content available for this document"})
		return
	}

	truncated := services.TruncateForModel(doc.ExtractedText, ctl.MaxContentLen)
	result, err := ctl.Gateway.Transform(c.Request.Context(), truncated, req.Operation, req.CustomPrompt)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"result":    result,
		"operation": req.Operation,
	})
}
