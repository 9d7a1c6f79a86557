package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

type QuestionType string

const (
	QuestionMCQ       QuestionType = "mcq"
	QuestionTrueFalse QuestionType = "true_false"
	QuestionFillBlank QuestionType = "fill_blank"
)

func (t QuestionType) Valid() bool {
	switch t {
	case QuestionMCQ, QuestionTrueFalse, QuestionFillBlank:
		return true
	}
	return false
}

// StringList stores an ordered list of strings as a JSON column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("unsupported type for StringList")
	}
}

type Quiz struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentID     *uuid.UUID `gorm:"type:uuid;index" json:"document_id"`
	Document       *Document  `gorm:"constraint:OnDelete:SET NULL;" json:"-"`
	Title          string     `gorm:"size:255" json:"title"`
	Description    string     `gorm:"type:text" json:"description"`
	TotalQuestions int        `json:"total_questions"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`

	Questions []QuizQuestion `gorm:"constraint:OnDelete:CASCADE;" json:"questions"`
}

type QuizQuestion struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID        uuid.UUID    `gorm:"type:uuid;not null;index" json:"quiz_id"`
	QuestionType  QuestionType `gorm:"size:20;not null" json:"question_type"`
	QuestionText  string       `gorm:"type:text;not null" json:"question_text"`
	CorrectAnswer string       `gorm:"type:text;not null" json:"correct_answer"`
	Options       StringList   `gorm:"type:jsonb" json:"options,omitempty"`
	Explanation   *string      `gorm:"type:text" json:"explanation,omitempty"`
	OrderIndex    int          `gorm:"not null" json:"order_index"`
	CreatedAt     time.Time    `gorm:"autoCreateTime" json:"created_at"`
}
