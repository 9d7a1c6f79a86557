package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one turn of a conversation: the user question together with
// the model answer. Rows are append-only and ordered by Timestamp within a
// (document_id, session_id) pair.
type ChatMessage struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentID  uuid.UUID `gorm:"type:uuid;not null;index" json:"document_id"`
	Document    Document  `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	SessionID   string    `gorm:"size:255;not null;index" json:"session_id"`
	UserMessage string    `gorm:"type:text;not null" json:"user_message"`
	AIResponse  string    `gorm:"type:text;not null" json:"ai_response"`
	Timestamp   time.Time `gorm:"autoCreateTime;index" json:"timestamp"`
}

// SessionSummary is the aggregation row returned when listing the sessions of
// a document.
type SessionSummary struct {
	SessionID    string    `json:"session_id"`
	MessageCount int64     `json:"message_count"`
	LastActivity time.Time `json:"last_activity"`
}
