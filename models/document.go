package models

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Filename         string    `gorm:"size:255;not null" json:"filename"`
	OriginalFilename string    `gorm:"size:255;not null" json:"original_filename"`
	FilePath         string    `gorm:"type:text;not null" json:"-"`
	ExtractedText    string    `gorm:"type:text" json:"-"`
	Summary          *string   `gorm:"type:text" json:"summary"`
	FileSize         int64     `json:"file_size"` // bytes
	PageCount        *int      `json:"page_count"`
	UploadTime       time.Time `gorm:"autoCreateTime" json:"upload_time"`

	ChatMessages []ChatMessage `json:"-"`
	Quizzes      []Quiz        `json:"-"`
}
