// Package ingest extracts plain text from uploaded profile documents so it
// can be stored alongside the business profile and fed into prompts.
package ingest

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// maxExtractedBytes caps stored document text. Prompts only ever embed a
// fraction of this, so anything beyond it is wasted storage.
const maxExtractedBytes = 256 * 1024

// UnsupportedTypeError is returned for file types the extractor cannot
// handle.
type UnsupportedTypeError struct {
	Filename string
	Ext      string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported document type %q for %q (supported: .txt, .md, .pdf)", e.Ext, e.Filename)
}

// ExtractText pulls the readable text out of an uploaded document. The
// format is chosen by file extension: .txt and .md are used as-is, .pdf is
// parsed page by page. Output is whitespace-normalized and capped.
func ExtractText(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt", ".md", ".markdown":
		return normalizeText(data)
	case ".pdf":
		text, err := extractPDF(data)
		if err != nil {
			return "", fmt.Errorf("extracting %q: %w", filename, err)
		}
		return normalizeText([]byte(text))
	default:
		return "", &UnsupportedTypeError{Filename: filename, Ext: ext}
	}
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}

	var out strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the document.
			continue
		}
		out.WriteString(text)
		out.WriteString("\n")
		if out.Len() > maxExtractedBytes {
			break
		}
	}

	if strings.TrimSpace(out.String()) == "" {
		return "", fmt.Errorf("pdf contains no extractable text")
	}
	return out.String(), nil
}

// normalizeText trims each line, collapses runs of blank lines, and caps the
// result. Invalid UTF-8 is rejected rather than stored.
func normalizeText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("document is not valid UTF-8 text")
	}

	lines := strings.Split(string(data), "\n")
	var out []string
	blank := true
	for _, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}

	text := strings.TrimSpace(strings.Join(out, "\n"))
	if text == "" {
		return "", fmt.Errorf("document contains no text")
	}
	if len(text) > maxExtractedBytes {
		cut := text[:maxExtractedBytes]
		// Do not cut a rune in half.
		for len(cut) > 0 && !utf8.ValidString(cut) {
			cut = cut[:len(cut)-1]
		}
		text = cut
	}
	return text, nil
}
