// Package indexer drives chunking, embedding, and vector storage.
package indexer

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/skedroski/glen-ellyn-chatbot/internal/domain"
)

// Indexer populates a vector store from normalized records and building
// entries.
type Indexer struct {
	chunker  domain.Chunker
	embedder domain.Embedder
	store    domain.VectorStore
}

func New(chunker domain.Chunker, embedder domain.Embedder, store domain.VectorStore) *Indexer {
	return &Indexer{chunker: chunker, embedder: embedder, store: store}
}

// IndexRecords chunks, embeds, and stores each record. Every record gets
// a fresh base identifier for this ingestion run, and chunk IDs append
// the chunk index to it, so all IDs emitted in one run are distinct.
// Re-running over the same corpus without clearing the index stores the
// chunks again under new IDs. Returns the number of chunks stored.
func (ix *Indexer) IndexRecords(ctx context.Context, records []domain.Record) (int, error) {
	total := 0
	for _, rec := range records {
		chunks, err := ix.chunker.Chunk(rec)
		if err != nil {
			return total, fmt.Errorf("chunk %s: %w", rec.Source, err)
		}
		if len(chunks) == 0 {
			continue
		}
		base := uuid.New().String()
		vectors := make([][]float64, len(chunks))
		for i := range chunks {
			chunks[i].ID = fmt.Sprintf("%s_%d", base, chunks[i].Index)
			vec, err := ix.embedder.Embed(ctx, chunks[i].Text)
			if err != nil {
				return total, fmt.Errorf("embed chunk %s (source %s): %w", chunks[i].ID, rec.Source, err)
			}
			vectors[i] = vec
		}
		if err := ix.store.Upsert(ctx, chunks, vectors); err != nil {
			return total, fmt.Errorf("store chunks for %s: %w", rec.Source, err)
		}
		total += len(chunks)
	}
	return total, nil
}

// IndexBuildings embeds and stores one chunk per building entry. The ID
// is the address and year joined with an underscore, so re-ingesting an
// entry for the same address and year overwrites the stored item.
func (ix *Indexer) IndexBuildings(ctx context.Context, entries []domain.BuildingRecord) (int, error) {
	for _, entry := range entries {
		chunk := BuildingChunk(entry)
		vec, err := ix.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			return 0, fmt.Errorf("embed building %s: %w", chunk.ID, err)
		}
		if err := ix.store.Upsert(ctx, []domain.Chunk{chunk}, [][]float64{vec}); err != nil {
			return 0, fmt.Errorf("store building %s: %w", chunk.ID, err)
		}
	}
	return len(entries), nil
}

// BuildingChunk renders a building entry into its indexed form: a
// synthetic descriptive text block plus the identity and map metadata.
func BuildingChunk(entry domain.BuildingRecord) domain.Chunk {
	text := fmt.Sprintf(
		"Address: %s\nYear: %d\nBuilding: %s\nUse: %s\nStories: %d\nMaterial: %s\nNotes: %s",
		entry.Address,
		entry.Year,
		entry.BuildingDescription,
		entry.BuildingUse,
		entry.Stories,
		entry.ConstructionMaterial,
		entry.Notes,
	)
	return domain.Chunk{
		ID:   fmt.Sprintf("%s_%d", entry.Address, entry.Year),
		Text: text,
		Metadata: domain.ChunkMetadata{
			Source:   "sanborn",
			Type:     "building",
			Date:     fmt.Sprintf("%d", entry.Year),
			Title:    entry.Address,
			Address:  entry.Address,
			Year:     entry.Year,
			MapSheet: entry.MapSheet,
		},
	}
}
