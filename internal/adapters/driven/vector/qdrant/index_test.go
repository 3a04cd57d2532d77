package qdrant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragline/internal/core/domain"
	"github.com/custodia-labs/ragline/internal/core/ports/driven"
)

// fakeQdrant is a minimal stand-in for the collection endpoints the
// index touches.
type fakeQdrant struct {
	collections map[string]fakeCollection
}

type fakeCollection struct {
	size     int
	distance string
	points   int
}

func (f *fakeQdrant) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /collections/{name}", func(w http.ResponseWriter, r *http.Request) {
		col, ok := f.collections[r.PathValue("name")]
		if !ok {
			http.Error(w, `{"status":{"error":"not found"}}`, http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, `{"result":{"points_count":%d,"config":{"params":{"vectors":{"size":%d,"distance":%q}}}}}`,
			col.points, col.size, col.distance)
	})

	mux.HandleFunc("PUT /collections/{name}", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Vectors struct {
				Size     int    `json:"size"`
				Distance string `json:"distance"`
			} `json:"vectors"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.collections[r.PathValue("name")] = fakeCollection{
			size:     body.Vectors.Size,
			distance: body.Vectors.Distance,
		}
		w.Write([]byte(`{"result":true}`))
	})

	mux.HandleFunc("DELETE /collections/{name}", func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		if _, ok := f.collections[name]; !ok {
			http.Error(w, `{}`, http.StatusNotFound)
			return
		}
		delete(f.collections, name)
		w.Write([]byte(`{"result":true}`))
	})

	mux.HandleFunc("PUT /collections/{name}/points", func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		col, ok := f.collections[name]
		if !ok {
			http.Error(w, `{}`, http.StatusNotFound)
			return
		}
		var body struct {
			Points []upsertPoint `json:"points"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		col.points += len(body.Points)
		f.collections[name] = col
		w.Write([]byte(`{"result":{"status":"completed"}}`))
	})

	mux.HandleFunc("POST /collections/{name}/points/search", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := f.collections[r.PathValue("name")]; !ok {
			http.Error(w, `{}`, http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"result":[
			{"id":"chunk-1","score":0.92,"payload":{"text":"Paris is the capital of France.","document_id":"doc-1","ordinal":0}},
			{"id":"chunk-2","score":0.31,"payload":{"text":"Berlin is the capital of Germany.","document_id":"doc-1","ordinal":1}}
		]}`))
	})

	return mux
}

func newTestIndex(t *testing.T) (*Index, *fakeQdrant) {
	fake := &fakeQdrant{collections: make(map[string]fakeCollection)}
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)
	return NewIndex(Config{URL: server.URL}), fake
}

func TestEnsureCollection_CreatesAndIsIdempotent(t *testing.T) {
	idx, fake := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.EnsureCollection(ctx, "ragline_abc", 3, domain.MetricCosine))
	assert.Equal(t, fakeCollection{size: 3, distance: "Cosine"}, fake.collections["ragline_abc"])

	// Same schema again is a no-op.
	require.NoError(t, idx.EnsureCollection(ctx, "ragline_abc", 3, domain.MetricCosine))
}

func TestEnsureCollection_SchemaConflict(t *testing.T) {
	idx, _ := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.EnsureCollection(ctx, "ragline_abc", 3, domain.MetricCosine))

	err := idx.EnsureCollection(ctx, "ragline_abc", 4, domain.MetricCosine)
	assert.ErrorIs(t, err, domain.ErrSchemaConflict)

	err = idx.EnsureCollection(ctx, "ragline_abc", 3, domain.MetricDot)
	assert.ErrorIs(t, err, domain.ErrSchemaConflict)
}

func TestUpsertAndSearch(t *testing.T) {
	idx, _ := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.EnsureCollection(ctx, "ragline_abc", 2, domain.MetricCosine))
	require.NoError(t, idx.Upsert(ctx, "ragline_abc", []driven.VectorPoint{
		{ID: "chunk-1", Vector: []float32{1, 0}, Payload: driven.VectorPayload{Text: "Paris is the capital of France.", DocumentID: "doc-1"}},
	}))

	chunks, err := idx.Search(ctx, "ragline_abc", []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "chunk-1", chunks[0].ChunkID)
	assert.Equal(t, "Paris is the capital of France.", chunks[0].Text)
	assert.InDelta(t, 0.92, chunks[0].Score, 1e-9)
}

func TestSearch_MissingCollection(t *testing.T) {
	idx, _ := newTestIndex(t)

	_, err := idx.Search(context.Background(), "ragline_missing", []float32{1}, 5)
	assert.ErrorIs(t, err, domain.ErrCollectionNotFound)
}

func TestCollectionInfo(t *testing.T) {
	idx, _ := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.EnsureCollection(ctx, "ragline_abc", 2, domain.MetricEuclid))
	require.NoError(t, idx.Upsert(ctx, "ragline_abc", []driven.VectorPoint{
		{ID: "chunk-1", Vector: []float32{1, 0}},
		{ID: "chunk-2", Vector: []float32{0, 1}},
	}))

	info, err := idx.CollectionInfo(ctx, "ragline_abc")
	require.NoError(t, err)
	assert.Equal(t, "ragline_abc", info.Name)
	assert.Equal(t, 2, info.Dimension)
	assert.Equal(t, domain.MetricEuclid, info.Metric)
	assert.Equal(t, 2, info.VectorCount)

	_, err = idx.CollectionInfo(ctx, "ragline_other")
	assert.ErrorIs(t, err, domain.ErrCollectionNotFound)
}

func TestDeleteCollection_MissingIsNoOp(t *testing.T) {
	idx, _ := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.EnsureCollection(ctx, "ragline_abc", 2, domain.MetricCosine))
	require.NoError(t, idx.DeleteCollection(ctx, "ragline_abc"))
	require.NoError(t, idx.DeleteCollection(ctx, "ragline_abc"))
}

func TestUnreachableServer(t *testing.T) {
	idx := NewIndex(Config{URL: "http://127.0.0.1:1"})

	err := idx.EnsureCollection(context.Background(), "ragline_abc", 2, domain.MetricCosine)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProvider)
}
