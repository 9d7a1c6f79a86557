package services

import (
	"strings"
	"testing"
)

func TestValidateExtractedText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{
			name: "plain prose passes",
			text: "Photosynthesis converts light energy into chemical energy stored in glucose molecules.",
			want: true,
		},
		{
			name: "too short is rejected",
			text: "Short note.",
			want: false,
		},
		{
			name: "whitespace padding does not rescue a short text",
			text: "Short note." + strings.Repeat(" ", 100),
			want: false,
		},
		{
			name: "mostly binary garbage is rejected",
			text: strings.Repeat("\x01\x02#$%^&*", 20) + "some words",
			want: false,
		},
		{
			name: "punctuation-heavy prose still passes",
			text: "Wait, what? Yes! The answer, as always: energy. It flows; it transforms; it never disappears.",
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateExtractedText(tt.text); got != tt.want {
				t.Fatalf("ValidateExtractedText(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestTruncateForModelPrefersSentenceBoundary(t *testing.T) {
	text := "First sentence. Second sentence. Third sentence that runs long."
	got := TruncateForModel(text, 40)
	if got != "First sentence. Second sentence." {
		t.Fatalf("expected cut at sentence boundary, got %q", got)
	}
}

func TestTruncateForModelFallsBackToWordBoundary(t *testing.T) {
	text := "alpha beta gamma delta epsilon zeta eta theta"
	got := TruncateForModel(text, 20)
	if got != "alpha beta gamma" {
		t.Fatalf("expected cut at word boundary, got %q", got)
	}
	if len(got) > 20 {
		t.Fatalf("result longer than limit: %d", len(got))
	}
}

func TestTruncateForModelHardCutWithoutBoundaries(t *testing.T) {
	text := strings.Repeat("a", 100)
	got := TruncateForModel(text, 30)
	if len(got) != 30 {
		t.Fatalf("expected hard cut to 30 characters, got %d", len(got))
	}
}

func TestTruncateForModelLeavesShortTextAlone(t *testing.T) {
	text := "fits entirely"
	if got := TruncateForModel(text, 1000); got != text {
		t.Fatalf("expected text unchanged, got %q", got)
	}
}

func TestExtractTextFromPDFRejectsGarbage(t *testing.T) {
	if _, _, err := ExtractTextFromPDF([]byte("this is not a pdf")); err == nil {
		t.Fatal("expected error for non-PDF bytes")
	}
}
