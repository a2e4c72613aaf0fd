package audit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ExportDocument is the self-describing handoff document written by
// WriteExport: the story identity, where it came from, when it was exported,
// and the full ordered audit trail.
type ExportDocument struct {
	StoryID    string    `json:"story_id"`
	SourcePath string    `json:"source_path"`
	ExportedAt time.Time `json:"exported_at"`
	Entries    []Entry   `json:"entries"`
}

// WriteExport serializes the document to path, creating parent directories
// as needed. The write happens outside any store lock - callers copy state
// first and hand the finished document here.
func WriteExport(path string, doc ExportDocument) error {
	if doc.Entries == nil {
		doc.Entries = []Entry{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode export document: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write export document: %w", err)
	}
	return nil
}

// ReadExport parses an export document back from disk. Used by the CLI and
// tests; the live store never reads exports.
func ReadExport(path string) (ExportDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ExportDocument{}, fmt.Errorf("read export document: %w", err)
	}

	var doc ExportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return ExportDocument{}, fmt.Errorf("parse export document: %w", err)
	}
	return doc, nil
}
