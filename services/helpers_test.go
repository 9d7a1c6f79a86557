package services

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pdfbrain/pdfbrain-backend/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Document{},
		&models.ChatMessage{},
		&models.Quiz{},
		&models.QuizQuestion{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createTestDocument(t *testing.T, db *gorm.DB, text string) models.Document {
	t.Helper()

	doc := models.Document{
		ID:               uuid.New(),
		Filename:         uuid.New().String() + ".pdf",
		OriginalFilename: "lecture-notes.pdf",
		FilePath:         "uploads/test.pdf",
		ExtractedText:    text,
		FileSize:         2048,
	}
	if err := db.Create(&doc).Error; err != nil {
		t.Fatalf("create document: %v", err)
	}
	return doc
}

func seedTurn(t *testing.T, db *gorm.DB, docID uuid.UUID, sessionID, user, ai string, at time.Time) {
	t.Helper()

	msg := models.ChatMessage{
		ID:          uuid.New(),
		DocumentID:  docID,
		SessionID:   sessionID,
		UserMessage: user,
		AIResponse:  ai,
		Timestamp:   at,
	}
	if err := db.Create(&msg).Error; err != nil {
		t.Fatalf("seed chat message: %v", err)
	}
}

// fakeAI scripts AIService replies for gateway and quiz tests.
type fakeAI struct {
	textReply string
	textErr   error
	jsonReply string
	jsonErr   error

	lastPrompt string
}

func (f *fakeAI) GenerateText(_ context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	return f.textReply, f.textErr
}

func (f *fakeAI) GenerateJSON(_ context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	return f.jsonReply, f.jsonErr
}
