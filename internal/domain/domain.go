package domain

import (
	"context"
	"errors"
)

// ErrDimensionMismatch is returned when a vector's dimensionality does
// not match the embedding space already stored in the index. Similarity
// scores are meaningless across spaces, so the operation is rejected.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// UnknownDate is the sentinel used when a source document carries no
// reliable date. It is a display value, never an orderable timestamp.
const UnknownDate = "unknown"

// Record is one normalized source document.
type Record struct {
	Title   string `json:"title"`
	Date    string `json:"date"`
	Type    string `json:"type"`
	Source  string `json:"source"`
	Content string `json:"content"`
}

// ChunkMetadata is the per-chunk copy of the parent record's metadata.
// The address/year/map-sheet fields are only set for building entries.
type ChunkMetadata struct {
	Source   string `json:"source"`
	Type     string `json:"type"`
	Date     string `json:"date"`
	Title    string `json:"title"`
	Address  string `json:"address,omitempty"`
	Year     int    `json:"year,omitempty"`
	MapSheet string `json:"map_sheet,omitempty"`
}

// Chunk is a bounded slice of a record's content, the unit stored and
// retrieved. ID is globally unique for the lifetime of the index.
type Chunk struct {
	ID       string
	Text     string
	Index    int
	Metadata ChunkMetadata
}

// BuildingRecord is one structured Sanborn-map building entry.
type BuildingRecord struct {
	Address              string `json:"address"`
	Year                 int    `json:"year"`
	BuildingDescription  string `json:"building_description"`
	BuildingUse          string `json:"building_use"`
	Stories              int    `json:"stories"`
	ConstructionMaterial string `json:"construction_material"`
	Notes                string `json:"notes"`
	MapSheet             string `json:"map_sheet"`
}

// SearchResult is a matching chunk with its similarity score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// Embedder converts free text into a fixed-length numeric vector.
type Embedder interface {
	Name() string
	// Dimension returns the vector size, or 0 if no text has been
	// embedded yet (remote models report it on first use).
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Chunker splits a record's content into ordered chunks.
type Chunker interface {
	Chunk(record Record) ([]Chunk, error)
}

// VectorStore persists chunk vectors and supports similarity search.
// Upsert replaces any previously stored chunk with the same ID.
type VectorStore interface {
	Upsert(ctx context.Context, chunks []Chunk, vectors [][]float64) error
	Search(ctx context.Context, vector []float64, topK int) ([]SearchResult, error)
	Clear(ctx context.Context) error
}

// Generator produces an answer from a fully assembled prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
