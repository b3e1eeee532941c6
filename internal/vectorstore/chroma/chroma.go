// Package chroma provides a minimal REST client to a Chroma server.
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/skedroski/glen-ellyn-chatbot/internal/domain"
)

// DefaultCollection unifies narrative chunks and building entries in a
// single context space, mirroring the ingestion side.
const DefaultCollection = "glen_ellyn_history"

// Store talks to Chroma's v1 HTTP API. The collection is created on
// first use if missing; adds go through /upsert so re-ingesting an ID
// overwrites instead of duplicating.
type Store struct {
	url        string
	collection string
	client     *http.Client

	mu           sync.Mutex
	collectionID string
}

type Config struct {
	URL        string
	Collection string
	Timeout    time.Duration
}

func NewStore(cfg Config) *Store {
	if cfg.URL == "" {
		cfg.URL = "http://localhost:8000"
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		url:        cfg.URL,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// ensureCollection resolves (or creates) the collection and caches its ID.
func (s *Store) ensureCollection(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collectionID != "" {
		return s.collectionID, nil
	}
	body := map[string]any{
		"name":          s.collection,
		"get_or_create": true,
		"metadata":      map[string]any{"hnsw:space": "cosine"},
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := s.postJSON(ctx, s.url+"/api/v1/collections", body, &resp); err != nil {
		return "", fmt.Errorf("get or create collection %s: %w", s.collection, err)
	}
	if resp.ID == "" {
		return "", errors.New("chroma returned no collection id")
	}
	s.collectionID = resp.ID
	return s.collectionID, nil
}

func (s *Store) Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	if len(chunks) == 0 {
		return nil
	}
	id, err := s.ensureCollection(ctx)
	if err != nil {
		return err
	}
	ids := make([]string, len(chunks))
	documents := make([]string, len(chunks))
	metadatas := make([]domain.ChunkMetadata, len(chunks))
	for i, ch := range chunks {
		ids[i] = ch.ID
		documents[i] = ch.Text
		metadatas[i] = ch.Metadata
	}
	body := map[string]any{
		"ids":        ids,
		"embeddings": vectors,
		"metadatas":  metadatas,
		"documents":  documents,
	}
	return s.postJSON(ctx, fmt.Sprintf("%s/api/v1/collections/%s/upsert", s.url, id), body, nil)
}

func (s *Store) Search(ctx context.Context, vector []float64, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}
	id, err := s.ensureCollection(ctx)
	if err != nil {
		return nil, err
	}
	req := map[string]any{
		"query_embeddings": [][]float64{vector},
		"n_results":        topK,
		"include":          []string{"documents", "metadatas", "distances"},
	}
	var resp struct {
		IDs       [][]string               `json:"ids"`
		Documents [][]string               `json:"documents"`
		Metadatas [][]domain.ChunkMetadata `json:"metadatas"`
		Distances [][]float64              `json:"distances"`
	}
	if err := s.postJSON(ctx, fmt.Sprintf("%s/api/v1/collections/%s/query", s.url, id), req, &resp); err != nil {
		return nil, err
	}
	if len(resp.IDs) == 0 {
		return nil, nil
	}
	results := make([]domain.SearchResult, 0, len(resp.IDs[0]))
	for i, chunkID := range resp.IDs[0] {
		chunk := domain.Chunk{ID: chunkID}
		if len(resp.Documents) > 0 && i < len(resp.Documents[0]) {
			chunk.Text = resp.Documents[0][i]
		}
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) {
			chunk.Metadata = resp.Metadatas[0][i]
		}
		score := 0.0
		if len(resp.Distances) > 0 && i < len(resp.Distances[0]) {
			// Chroma reports cosine distance; flip it into a similarity.
			score = 1 - resp.Distances[0][i]
		}
		results = append(results, domain.SearchResult{Chunk: chunk, Score: score})
	}
	return results, nil
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.collectionID = ""
	s.mu.Unlock()
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, fmt.Sprintf("%s/api/v1/collections/%s", s.url, s.collection), nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("chroma delete collection %s failed: %s", s.collection, resp.Status)
	}
	return nil
}

func (s *Store) postJSON(ctx context.Context, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("chroma POST %s failed: %s", url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
