package indexer

import (
	"context"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skedroski/glen-ellyn-chatbot/internal/chunker"
	"github.com/skedroski/glen-ellyn-chatbot/internal/domain"
	"github.com/skedroski/glen-ellyn-chatbot/internal/vectorstore/memory"
)

// hashEmbedder maps token counts into a fixed-width vector. It is
// deterministic, so similar texts get similar vectors.
type hashEmbedder struct{ dim int }

func (e hashEmbedder) Name() string   { return "hash" }
func (e hashEmbedder) Dimension() int { return e.dim }
func (e hashEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	vec := make([]float64, e.dim)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[int(h.Sum32())%e.dim]++
	}
	return vec, nil
}

func sampleBuilding() domain.BuildingRecord {
	return domain.BuildingRecord{
		Address:              "4 S Glenwood Ave",
		Year:                 1929,
		BuildingDescription:  "Two-story brick commercial block",
		BuildingUse:          "Grocery",
		Stories:              2,
		ConstructionMaterial: "brick",
		Notes:                "Corner entrance",
		MapSheet:             "Sheet 3",
	}
}

func TestIndexRecordsStoresAllChunks(t *testing.T) {
	store := memory.NewStore()
	ix := New(chunker.NewRecursiveChunker(100, 10), hashEmbedder{dim: 32}, store)

	records := []domain.Record{
		{Title: "Jane Bio", Date: domain.UnknownDate, Type: "biography", Source: "bios/jane_bio.txt",
			Content: strings.TrimSpace(strings.Repeat("Jane Doe taught school in Glen Ellyn. ", 10))},
		{Title: "Lake Ellyn", Date: domain.UnknownDate, Type: "story", Source: "stories/lake.txt",
			Content: "The lake was dredged in 1890."},
	}

	n, err := ix.IndexRecords(context.Background(), records)
	require.NoError(t, err)
	assert.Greater(t, n, 2)
	assert.Equal(t, n, store.Len())
}

func TestIndexRecordsIDFormat(t *testing.T) {
	store := memory.NewStore()
	emb := hashEmbedder{dim: 32}
	ix := New(chunker.NewRecursiveChunker(100, 10), emb, store)

	content := strings.TrimSpace(strings.Repeat("the village hall stood on main street ", 10))
	_, err := ix.IndexRecords(context.Background(), []domain.Record{
		{Title: "Hall", Source: "hall.txt", Content: content},
	})
	require.NoError(t, err)

	vec, err := emb.Embed(context.Background(), content)
	require.NoError(t, err)
	results, err := store.Search(context.Background(), vec, 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	seen := map[string]bool{}
	for _, res := range results {
		id := res.Chunk.ID
		assert.False(t, seen[id], "duplicate chunk ID %s", id)
		seen[id] = true
		i := strings.LastIndex(id, "_")
		require.Greater(t, i, 0, "chunk ID %s should carry an index suffix", id)
		assert.Equal(t, "hall.txt", res.Chunk.Metadata.Source)
	}
}

func TestIndexRecordsSkipsEmptyRecord(t *testing.T) {
	store := memory.NewStore()
	ix := New(chunker.NewRecursiveChunker(100, 10), hashEmbedder{dim: 32}, store)

	n, err := ix.IndexRecords(context.Background(), []domain.Record{
		{Title: "Blank", Source: "blank.txt", Content: "   "},
	})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, store.Len())
}

func TestBuildingChunk(t *testing.T) {
	chunk := BuildingChunk(sampleBuilding())

	assert.Equal(t, "4 S Glenwood Ave_1929", chunk.ID)
	assert.Contains(t, chunk.Text, "Address: 4 S Glenwood Ave")
	assert.Contains(t, chunk.Text, "Year: 1929")
	assert.Contains(t, chunk.Text, "Use: Grocery")
	assert.Contains(t, chunk.Text, "Stories: 2")
	assert.Equal(t, "sanborn", chunk.Metadata.Source)
	assert.Equal(t, "building", chunk.Metadata.Type)
	assert.Equal(t, "1929", chunk.Metadata.Date)
	assert.Equal(t, "4 S Glenwood Ave", chunk.Metadata.Address)
	assert.Equal(t, 1929, chunk.Metadata.Year)
	assert.Equal(t, "Sheet 3", chunk.Metadata.MapSheet)
}

func TestIndexBuildingsIdempotent(t *testing.T) {
	store := memory.NewStore()
	ix := New(chunker.NewRecursiveChunker(500, 50), hashEmbedder{dim: 32}, store)
	entries := []domain.BuildingRecord{sampleBuilding()}

	ctx := context.Background()
	_, err := ix.IndexBuildings(ctx, entries)
	require.NoError(t, err)
	_, err = ix.IndexBuildings(ctx, entries)
	require.NoError(t, err)

	assert.Equal(t, 1, store.Len(), "re-ingesting the same address and year should overwrite")
}

func TestParseBuildings(t *testing.T) {
	data := []byte(`[{
		"address": "4 S Glenwood Ave",
		"year": 1929,
		"building_description": "Two-story brick commercial block",
		"building_use": "Grocery",
		"stories": 2,
		"construction_material": "brick",
		"notes": "Corner entrance",
		"map_sheet": "Sheet 3"
	}]`)

	entries, err := ParseBuildings(data)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, sampleBuilding(), entries[0])
}

func TestParseBuildingsMissingFieldFailsLoad(t *testing.T) {
	data := []byte(`[
		{
			"address": "4 S Glenwood Ave",
			"year": 1929,
			"building_description": "block",
			"building_use": "Grocery",
			"stories": 2,
			"construction_material": "brick",
			"notes": "",
			"map_sheet": "Sheet 3"
		},
		{
			"address": "477 Main St",
			"year": 1929,
			"building_description": "frame dwelling",
			"building_use": "Residence",
			"stories": 1,
			"construction_material": "wood",
			"map_sheet": "Sheet 4"
		}
	]`)

	entries, err := ParseBuildings(data)
	require.Error(t, err)
	assert.Nil(t, entries)
	assert.Contains(t, err.Error(), "building entry 1")
	assert.Contains(t, err.Error(), `"notes"`)
}

func TestLoadBuildings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{
		"address": "4 S Glenwood Ave",
		"year": 1929,
		"building_description": "block",
		"building_use": "Grocery",
		"stories": 2,
		"construction_material": "brick",
		"notes": "",
		"map_sheet": "Sheet 3"
	}]`), 0o644))

	entries, err := LoadBuildings(path)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = LoadBuildings(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
