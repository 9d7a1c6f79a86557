package services

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// ExtractTextFromPDF pulls plain text out of a PDF and reports its page count.
// Pages that fail individually are skipped; an empty result means the file is
// corrupted, encrypted or image-only.
func ExtractTextFromPDF(data []byte) (string, int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("open pdf: %w", err)
	}

	var textBuilder bytes.Buffer
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		textBuilder.WriteString(content)
		textBuilder.WriteString("\n")
	}

	text := strings.TrimSpace(textBuilder.String())
	if text == "" {
		return "", pages, fmt.Errorf("no extractable text in pdf")
	}
	return text, pages, nil
}

// ValidateExtractedText rejects extractions too short or too noisy to be
// useful: at least 50 characters, at least 70% of them readable.
func ValidateExtractedText(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 50 {
		return false
	}

	readable := 0
	total := 0
	for _, r := range text {
		total++
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || strings.ContainsRune(".,!?;:", r) {
			readable++
		}
	}
	if total == 0 {
		return false
	}
	return float64(readable)/float64(total) > 0.7
}

// TruncateForModel bounds text to maxLen characters, preferring a sentence
// boundary, then a word boundary, before hard-cutting.
func TruncateForModel(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}

	head := text[:maxLen]
	if idx := strings.LastIndex(head, "."); idx > 0 {
		return head[:idx+1]
	}
	if idx := strings.LastIndex(head, " "); idx > 0 {
		return head[:idx]
	}
	return head
}
