package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pdfbrain/pdfbrain-backend/models"
)

// DefaultHistoryLimit is how many prior turns are handed to the model.
const DefaultHistoryLimit = 5

// ChatSessionManager groups chat turns by (document, session) and supplies a
// bounded recent-history window as model context. It is the only writer of
// ChatMessage rows.
type ChatSessionManager struct {
	db *gorm.DB
}

func NewChatSessionManager(db *gorm.DB) *ChatSessionManager {
	return &ChatSessionManager{db: db}
}

// StartOrReuseSession mints a fresh session id when none is supplied. A
// client-provided id is reused as given; an empty history is a valid session.
func (m *ChatSessionManager) StartOrReuseSession(sessionID string) string {
	if sessionID == "" {
		return uuid.New().String()
	}
	return sessionID
}

// RecentHistory returns up to limit most recent turns of a session in
// chronological order.
func (m *ChatSessionManager) RecentHistory(documentID uuid.UUID, sessionID string, limit int) ([]ChatTurn, error) {
	if err := m.requireDocument(documentID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	var messages []models.ChatMessage
	err := m.db.
		Where("document_id = ? AND session_id = ?", documentID, sessionID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// Newest-first from the query; flip to oldest-first for the prompt.
	turns := make([]ChatTurn, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		turns = append(turns, ChatTurn{
			UserMessage: messages[i].UserMessage,
			AIResponse:  messages[i].AIResponse,
		})
	}
	return turns, nil
}

// RecordTurn appends one (question, answer) pair to a session.
func (m *ChatSessionManager) RecordTurn(documentID uuid.UUID, sessionID, userMessage, aiResponse string) (*models.ChatMessage, error) {
	if err := m.requireDocument(documentID); err != nil {
		return nil, err
	}

	message := models.ChatMessage{
		ID:          uuid.New(),
		DocumentID:  documentID,
		SessionID:   sessionID,
		UserMessage: userMessage,
		AIResponse:  aiResponse,
		Timestamp:   time.Now(),
	}
	if err := m.db.Create(&message).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

// History returns a session page in chronological order plus the total count.
func (m *ChatSessionManager) History(documentID uuid.UUID, sessionID string, skip, limit int) ([]models.ChatMessage, int64, error) {
	if err := m.requireDocument(documentID); err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = 50
	}

	query := m.db.Model(&models.ChatMessage{}).
		Where("document_id = ? AND session_id = ?", documentID, sessionID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var messages []models.ChatMessage
	err := query.
		Order("timestamp ASC").
		Offset(skip).
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

// ListSessions aggregates every session of a document with its message count
// and last activity time.
func (m *ChatSessionManager) ListSessions(documentID uuid.UUID) ([]models.SessionSummary, error) {
	if err := m.requireDocument(documentID); err != nil {
		return nil, err
	}

	var messages []models.ChatMessage
	err := m.db.
		Select("session_id", "timestamp").
		Where("document_id = ?", documentID).
		Order("timestamp ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// Folded in memory instead of GROUP BY so MAX(timestamp) scanning stays
	// portable across drivers.
	index := make(map[string]int)
	sessions := []models.SessionSummary{}
	for _, msg := range messages {
		i, ok := index[msg.SessionID]
		if !ok {
			index[msg.SessionID] = len(sessions)
			sessions = append(sessions, models.SessionSummary{SessionID: msg.SessionID})
			i = len(sessions) - 1
		}
		sessions[i].MessageCount++
		if msg.Timestamp.After(sessions[i].LastActivity) {
			sessions[i].LastActivity = msg.Timestamp
		}
	}
	return sessions, nil
}

// DeleteSession removes every turn of a (document, session) pair and reports
// how many rows went away. Deleting an unknown session returns 0.
func (m *ChatSessionManager) DeleteSession(documentID uuid.UUID, sessionID string) (int64, error) {
	if err := m.requireDocument(documentID); err != nil {
		return 0, err
	}

	result := m.db.
		Where("document_id = ? AND session_id = ?", documentID, sessionID).
		Delete(&models.ChatMessage{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (m *ChatSessionManager) requireDocument(documentID uuid.UUID) error {
	var doc models.Document
	if err := m.db.Select("id").First(&doc, "id = ?", documentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
