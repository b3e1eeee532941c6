// Package retriever fetches the stored chunks most similar to a question.
package retriever

import (
	"context"
	"fmt"

	"github.com/skedroski/glen-ellyn-chatbot/internal/domain"
)

// DefaultTopK matches the ingestion-side retrieval depth.
const DefaultTopK = 3

// Retriever embeds a question with the same embedder used at ingestion
// time and queries the vector store.
type Retriever struct {
	embedder domain.Embedder
	store    domain.VectorStore
}

func New(embedder domain.Embedder, store domain.VectorStore) *Retriever {
	return &Retriever{embedder: embedder, store: store}
}

// Retrieve returns up to topK context chunks, best match first. An empty
// index yields an empty result, not an error.
func (r *Retriever) Retrieve(ctx context.Context, question string, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	vec, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	results, err := r.store.Search(ctx, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	return results, nil
}
