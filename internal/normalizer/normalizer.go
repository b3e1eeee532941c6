// Package normalizer turns a raw corpus directory into uniform records.
package normalizer

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/skedroski/glen-ellyn-chatbot/internal/domain"
)

var textExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// typeKeywords is checked in order; the first path match wins.
var typeKeywords = []struct {
	keyword string
	docType string
}{
	{"bio", "biography"},
	{"story", "story"},
}

// Scanner enumerates text files under a corpus root and emits one
// record per readable file.
type Scanner struct {
	root string
}

func NewScanner(root string) *Scanner {
	return &Scanner{root: root}
}

// Scan walks the corpus root in directory traversal order. Unreadable
// files and directories and empty files are logged and skipped; only a
// failure on the root itself aborts the scan.
func (s *Scanner) Scan() ([]domain.Record, error) {
	var records []domain.Record
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == s.root {
				return err
			}
			log.Printf("skipped %s: %v", path, err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !textExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			rel = path
		}
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("skipped %s: %v", path, err)
			return nil
		}
		content := strings.TrimSpace(string(data))
		if content == "" {
			log.Printf("skipped %s: empty content", path)
			return nil
		}
		records = append(records, domain.Record{
			Title:   CleanTitle(d.Name()),
			Date:    domain.UnknownDate,
			Type:    InferType(rel),
			Source:  filepath.ToSlash(rel),
			Content: content,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan corpus %s: %w", s.root, err)
	}
	return records, nil
}

// CleanTitle derives a display title from a filename: extension dropped,
// word separators replaced with spaces, words title-cased.
func CleanTitle(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	words := strings.Fields(base)
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		for j := 1; j < len(runes); j++ {
			runes[j] = unicode.ToLower(runes[j])
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// InferType classifies a document by case-insensitive substring match on
// its relative path. Paths matching several keywords resolve by the fixed
// check order; no match yields the generic narrative type.
func InferType(path string) string {
	lower := strings.ToLower(path)
	for _, tk := range typeKeywords {
		if strings.Contains(lower, tk.keyword) {
			return tk.docType
		}
	}
	return "narrative"
}

// SaveRecords persists a record collection as a JSON array. This is the
// contract between the scan and ingest stages.
func SaveRecords(path string, records []domain.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadRecords reads a record collection written by SaveRecords.
func LoadRecords(path string) ([]domain.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []domain.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse records %s: %w", path, err)
	}
	return records, nil
}
