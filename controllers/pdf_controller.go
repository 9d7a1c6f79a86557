package controllers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pdfbrain/pdfbrain-backend/models"
	"github.com/pdfbrain/pdfbrain-backend/services"
	"github.com/pdfbrain/pdfbrain-backend/utils"
	"github.com/pdfbrain/pdfbrain-backend/ws"
)

// PDFController handles upload, listing and deletion of documents.
type PDFController struct {
	DB            *gorm.DB
	Gateway       *services.LLMGateway
	Store         *utils.FileStore
	Hub           *ws.Hub
	MaxFileSize   int64
	MaxContentLen int
}

func NewPDFController(db *gorm.DB, gateway *services.LLMGateway, store *utils.FileStore, hub *ws.Hub, maxFileSize int64, maxContentLen int) *PDFController {
	return &PDFController{
		DB:            db,
		Gateway:       gateway,
		Store:         store,
		Hub:           hub,
		MaxFileSize:   maxFileSize,
		MaxContentLen: maxContentLen,
	}
}

// Upload stores a PDF, extracts its text and generates a best-effort summary.
func (ctl *PDFController) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file attached"})
		return
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".pdf") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file type not allowed, supported formats: .pdf"})
		return
	}
	if fileHeader.Size > ctl.MaxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("file size exceeds maximum allowed size of %.1fMB", float64(ctl.MaxFileSize)/1024/1024),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read uploaded file"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read uploaded file"})
		return
	}

	docID := uuid.New()
	storedName := docID.String() + ".pdf"

	path, err := ctl.Store.Save(content, storedName, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save uploaded file", "details": err.Error()})
		return
	}

	ctl.Hub.SendStatusUpdate(docID.String(), "extracting", "")

	text, pageCount, err := services.ExtractTextFromPDF(content)
	if err != nil {
		ctl.Store.Remove(path)
		ctl.Hub.SendStatusUpdate(docID.String(), "failed", err.Error())
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "could not extract text from PDF, the file may be corrupted, password-protected, or contain only images",
		})
		return
	}
	if !services.ValidateExtractedText(text) {
		ctl.Store.Remove(path)
		ctl.Hub.SendStatusUpdate(docID.String(), "failed", "unreadable text")
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "extracted text appears to be invalid or insufficient for processing",
		})
		return
	}

	// Summary is best effort; the upload succeeds without one.
	var summary *string
	truncated := services.TruncateForModel(text, ctl.MaxContentLen)
	if result, err := ctl.Gateway.Summarize(c.Request.Context(), truncated); err != nil {
		log.Warn().Err(err).Str("document_id", docID.String()).Msg("summary generation failed")
	} else {
		summary = &result
	}

	doc := models.Document{
		ID:               docID,
		Filename:         storedName,
		OriginalFilename: fileHeader.Filename,
		FilePath:         path,
		ExtractedText:    text,
		Summary:          summary,
		FileSize:         fileHeader.Size,
		PageCount:        &pageCount,
	}
	if err := ctl.DB.Create(&doc).Error; err != nil {
		ctl.Store.Remove(path)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save document", "details": err.Error()})
		return
	}

	ctl.Hub.SendStatusUpdate(docID.String(), "completed", "")
	ctl.Hub.BroadcastDocumentListChanged()

	log.Info().Str("document_id", docID.String()).Str("filename", fileHeader.Filename).Msg("pdf processed")

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "PDF uploaded and processed successfully",
		"document": doc,
	})
}

func (ctl *PDFController) List(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if limit <= 0 {
		limit = 100
	}

	var documents []models.Document
	if err := ctl.DB.Order("upload_time DESC").Offset(skip).Limit(limit).Find(&documents).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list documents"})
		return
	}
	c.JSON(http.StatusOK, documents)
}

func (ctl *PDFController) Get(c *gin.Context) {
	doc, ok := ctl.loadDocument(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Content returns the extracted text and summary of a document.
func (ctl *PDFController) Content(c *gin.Context) {
	doc, ok := ctl.loadDocument(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"document_id": doc.ID,
		"filename":    doc.OriginalFilename,
		"content":     doc.ExtractedText,
		"summary":     doc.Summary,
	})
}

// Delete removes the document, its backing file and all chat/quiz children.
func (ctl *PDFController) Delete(c *gin.Context) {
	doc, ok := ctl.loadDocument(c)
	if !ok {
		return
	}

	if err := ctl.Store.Remove(doc.FilePath); err != nil {
		log.Warn().Err(err).Str("document_id", doc.ID.String()).Msg("failed to remove stored file")
	}

	err := ctl.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", doc.ID).Delete(&models.ChatMessage{}).Error; err != nil {
			return err
		}
		var quizIDs []uuid.UUID
		if err := tx.Model(&models.Quiz{}).Where("document_id = ?", doc.ID).Pluck("id", &quizIDs).Error; err != nil {
			return err
		}
		if len(quizIDs) > 0 {
			if err := tx.Where("quiz_id IN ?", quizIDs).Delete(&models.QuizQuestion{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", quizIDs).Delete(&models.Quiz{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Document{}, "id = ?", doc.ID).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete document"})
		return
	}

	ctl.Hub.BroadcastDocumentListChanged()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Document '%s' deleted successfully", doc.OriginalFilename),
	})
}

func (ctl *PDFController) loadDocument(c *gin.Context) (*models.Document, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return nil, false
	}

	var doc models.Document
	if err := ctl.DB.First(&doc, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return nil, false
	}
	return &doc, true
}
