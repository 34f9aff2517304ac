// Package brief turns uploaded design-brief PDFs into generation prompts.
// It extracts the plain text of a brief and condenses it into a prompt
// fragment the variant planner can work from.
package brief

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Sentinel errors.
var (
	ErrEmptyPath = errors.New("brief: empty PDF path provided")
	ErrNoContent = errors.New("brief: no text content found in PDF")
)

// DefaultMaxPromptLength bounds the prompt fragment built from a brief.
// Provider prompts degrade beyond roughly this length.
const DefaultMaxPromptLength = 2000

// Extract reads the PDF at path and returns its plain text, pages joined by
// blank lines. Pages that fail to parse are skipped; only a fully empty
// document is an error.
func Extract(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("brief: opening PDF: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(text)
	}

	if sb.Len() == 0 {
		return "", ErrNoContent
	}
	return sb.String(), nil
}

// BuildPrompt condenses brief text into a single-line prompt fragment of at
// most maxLen bytes (0 uses DefaultMaxPromptLength). Whitespace runs
// collapse to single spaces; truncation lands on a word boundary when one
// exists.
func BuildPrompt(briefText string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxPromptLength
	}
	condensed := strings.Join(strings.Fields(briefText), " ")
	if len(condensed) <= maxLen {
		return condensed
	}
	cut := condensed[:maxLen]
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut
}

// PromptFromPDF is the composed operation: extract a brief and build the
// prompt fragment in one call.
func PromptFromPDF(path string, maxLen int) (string, error) {
	text, err := Extract(path)
	if err != nil {
		return "", err
	}
	return BuildPrompt(text, maxLen), nil
}
