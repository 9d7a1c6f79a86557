package controllers

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pdfbrain/pdfbrain-backend/models"
	"github.com/pdfbrain/pdfbrain-backend/services"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

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

// fakeAI scripts model replies for controller tests.
type fakeAI struct {
	textReply string
	textErr   error
	jsonReply string
	jsonErr   error
}

func (f *fakeAI) GenerateText(_ context.Context, _ string) (string, error) {
	return f.textReply, f.textErr
}

func (f *fakeAI) GenerateJSON(_ context.Context, _ string) (string, error) {
	return f.jsonReply, f.jsonErr
}

func newGateway(ai services.AIService) *services.LLMGateway {
	return services.NewLLMGateway(ai, time.Second)
}
