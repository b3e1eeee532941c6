package chroma

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skedroski/glen-ellyn-chatbot/internal/domain"
)

// fakeChroma records requests against the slice of the v1 API the store
// uses.
type fakeChroma struct {
	mux          *http.ServeMux
	collections  int
	upsertBodies []map[string]any
	queryBodies  []map[string]any
	deleted      []string
	queryResp    map[string]any
}

func newFakeChroma() *fakeChroma {
	f := &fakeChroma{mux: http.NewServeMux()}
	f.mux.HandleFunc("POST /api/v1/collections", func(w http.ResponseWriter, r *http.Request) {
		f.collections++
		json.NewEncoder(w).Encode(map[string]any{"id": "col-123"})
	})
	f.mux.HandleFunc("POST /api/v1/collections/col-123/upsert", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		f.upsertBodies = append(f.upsertBodies, body)
		w.WriteHeader(http.StatusCreated)
	})
	f.mux.HandleFunc("POST /api/v1/collections/col-123/query", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		f.queryBodies = append(f.queryBodies, body)
		json.NewEncoder(w).Encode(f.queryResp)
	})
	f.mux.HandleFunc("DELETE /api/v1/collections/{name}", func(w http.ResponseWriter, r *http.Request) {
		f.deleted = append(f.deleted, r.PathValue("name"))
		w.WriteHeader(http.StatusOK)
	})
	return f
}

func TestUpsertSendsParallelArrays(t *testing.T) {
	fake := newFakeChroma()
	srv := httptest.NewServer(fake.mux)
	defer srv.Close()

	s := NewStore(Config{URL: srv.URL, Collection: "test_history"})
	chunks := []domain.Chunk{
		{ID: "a_0", Text: "Jane Doe taught school.", Metadata: domain.ChunkMetadata{Source: "bios/jane.txt", Type: "biography"}},
		{ID: "a_1", Text: "She retired in 1950.", Metadata: domain.ChunkMetadata{Source: "bios/jane.txt", Type: "biography"}},
	}
	err := s.Upsert(context.Background(), chunks, [][]float64{{1, 0}, {0, 1}})
	require.NoError(t, err)

	require.Len(t, fake.upsertBodies, 1)
	body := fake.upsertBodies[0]
	assert.Equal(t, []any{"a_0", "a_1"}, body["ids"])
	assert.Equal(t, []any{"Jane Doe taught school.", "She retired in 1950."}, body["documents"])
	assert.Len(t, body["embeddings"], 2)
	assert.Len(t, body["metadatas"], 2)
}

func TestUpsertEmptyIsNoop(t *testing.T) {
	fake := newFakeChroma()
	srv := httptest.NewServer(fake.mux)
	defer srv.Close()

	s := NewStore(Config{URL: srv.URL})
	require.NoError(t, s.Upsert(context.Background(), nil, nil))
	assert.Zero(t, fake.collections)
	assert.Empty(t, fake.upsertBodies)
}

func TestSearchFlattensNestedResponse(t *testing.T) {
	fake := newFakeChroma()
	fake.queryResp = map[string]any{
		"ids":       [][]string{{"a_0", "b_0"}},
		"documents": [][]string{{"Jane Doe taught school.", "The lake was dredged."}},
		"metadatas": [][]map[string]any{{
			{"source": "bios/jane.txt", "type": "biography"},
			{"source": "stories/lake.txt", "type": "story"},
		}},
		"distances": [][]float64{{0.1, 0.4}},
	}
	srv := httptest.NewServer(fake.mux)
	defer srv.Close()

	s := NewStore(Config{URL: srv.URL})
	results, err := s.Search(context.Background(), []float64{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "a_0", results[0].Chunk.ID)
	assert.Equal(t, "Jane Doe taught school.", results[0].Chunk.Text)
	assert.Equal(t, "biography", results[0].Chunk.Metadata.Type)
	assert.InDelta(t, 0.9, results[0].Score, 1e-9)
	assert.InDelta(t, 0.6, results[1].Score, 1e-9)

	require.Len(t, fake.queryBodies, 1)
	assert.EqualValues(t, 2, fake.queryBodies[0]["n_results"])
}

func TestCollectionCreatedOnce(t *testing.T) {
	fake := newFakeChroma()
	fake.queryResp = map[string]any{"ids": [][]string{{}}}
	srv := httptest.NewServer(fake.mux)
	defer srv.Close()

	s := NewStore(Config{URL: srv.URL})
	ctx := context.Background()
	require.NoError(t, s.Upsert(ctx, []domain.Chunk{{ID: "a", Text: "x"}}, [][]float64{{1}}))
	_, err := s.Search(ctx, []float64{1}, 3)
	require.NoError(t, err)

	assert.Equal(t, 1, fake.collections)
}

func TestClearDeletesCollectionByName(t *testing.T) {
	fake := newFakeChroma()
	srv := httptest.NewServer(fake.mux)
	defer srv.Close()

	s := NewStore(Config{URL: srv.URL, Collection: "test_history"})
	require.NoError(t, s.Clear(context.Background()))
	assert.Equal(t, []string{"test_history"}, fake.deleted)
}

func TestClearToleratesMissingCollection(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/v1/collections/{name}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := NewStore(Config{URL: srv.URL})
	assert.NoError(t, s.Clear(context.Background()))
}

func TestServerErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewStore(Config{URL: srv.URL})
	err := s.Upsert(context.Background(), []domain.Chunk{{ID: "a"}}, [][]float64{{1}})
	assert.Error(t, err)
}
