package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound marks a referenced document, quiz or session that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoTextContent marks a document without usable extracted text.
	ErrNoTextContent = errors.New("no text content available for this document")

	// ErrNoQuestionsGenerated is returned when the model produced nothing parseable.
	ErrNoQuestionsGenerated = errors.New("failed to generate quiz questions")
)

// ValidationError carries one message per distinct problem in a request.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, ", ")
}

// UpstreamError wraps a failure of the LLM provider or another external call.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
