package api

import (
	"path/filepath"
	"strings"

	"github.com/brightpost/draftforge/internal/ingest"
)

func ingestDocument(filename string, data []byte) (string, error) {
	return ingest.ExtractText(filename, data)
}

// fileType is the stored document type, derived from the extension.
func fileType(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch ext {
	case "md", "markdown":
		return "markdown"
	case "pdf":
		return "pdf"
	default:
		return "text"
	}
}
