// Package chunker splits record content into bounded, overlapping chunks.
package chunker

import (
	"strings"
	"unicode"

	"github.com/skedroski/glen-ellyn-chatbot/internal/domain"
)

// Default splitting parameters, in characters.
const (
	DefaultMaxChars = 500
	DefaultOverlap  = 50
)

// RecursiveChunker splits text greedily at the largest natural boundary
// that keeps each chunk within the size limit: paragraph first, then
// line, sentence, word, and finally a hard character cut. Consecutive
// chunks share a fixed overlap drawn from the tail of the predecessor.
type RecursiveChunker struct {
	maxChars int
	overlap  int
}

func NewRecursiveChunker(maxChars, overlap int) *RecursiveChunker {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChars {
		overlap = maxChars / 10
	}
	return &RecursiveChunker{maxChars: maxChars, overlap: overlap}
}

// Chunk returns the ordered chunks covering the record's content. Every
// chunk carries an identical copy of the record's metadata; IDs are left
// empty for the indexer to assign. Chunking is deterministic.
func (c *RecursiveChunker) Chunk(record domain.Record) ([]domain.Chunk, error) {
	if strings.TrimSpace(record.Content) == "" {
		return nil, nil
	}
	meta := domain.ChunkMetadata{
		Source: record.Source,
		Type:   record.Type,
		Date:   record.Date,
		Title:  record.Title,
	}
	runes := []rune(record.Content)
	var chunks []domain.Chunk
	start := 0
	for start < len(runes) {
		end := c.cut(runes, start)
		chunks = append(chunks, domain.Chunk{
			Text:     string(runes[start:end]),
			Index:    len(chunks),
			Metadata: meta,
		})
		if end == len(runes) {
			break
		}
		next := end - c.overlap
		if next <= start {
			// Chunk shorter than the overlap; advance without one.
			next = end
		}
		start = next
	}
	return chunks, nil
}

// cut picks the end of the chunk starting at start: the whole remainder
// if it fits, otherwise the latest natural boundary within the limit,
// falling back to a hard cut at the limit.
func (c *RecursiveChunker) cut(runes []rune, start int) int {
	limit := start + c.maxChars
	if limit >= len(runes) {
		return len(runes)
	}
	for _, boundary := range boundaries {
		for i := limit; i > start; i-- {
			if boundary(runes, i) {
				return i
			}
		}
	}
	return limit
}

// A boundary reports whether a chunk may end just before index i.
type boundary func(runes []rune, i int) bool

var boundaries = []boundary{
	afterParagraph,
	afterLine,
	afterSentence,
	afterWord,
}

func afterParagraph(runes []rune, i int) bool {
	return i >= 2 && runes[i-1] == '\n' && runes[i-2] == '\n'
}

func afterLine(runes []rune, i int) bool {
	return runes[i-1] == '\n'
}

func afterSentence(runes []rune, i int) bool {
	if i < 2 || !unicode.IsSpace(runes[i-1]) {
		return false
	}
	switch runes[i-2] {
	case '.', '!', '?':
		return true
	}
	return false
}

func afterWord(runes []rune, i int) bool {
	return unicode.IsSpace(runes[i-1])
}
