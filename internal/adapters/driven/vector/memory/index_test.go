package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragline/internal/core/domain"
	"github.com/custodia-labs/ragline/internal/core/ports/driven"
)

func mkPoint(id string, vector []float32, text string) driven.VectorPoint {
	return driven.VectorPoint{
		ID:     id,
		Vector: vector,
		Payload: driven.VectorPayload{
			Text:       text,
			DocumentID: "doc-1",
		},
	}
}

func TestEnsureCollectionIdempotent(t *testing.T) {
	x := NewIndex()
	ctx := context.Background()

	require.NoError(t, x.EnsureCollection(ctx, "c", 3, domain.MetricCosine))
	require.NoError(t, x.EnsureCollection(ctx, "c", 3, domain.MetricCosine))

	info, err := x.CollectionInfo(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, 3, info.Dimension)
	assert.Equal(t, domain.MetricCosine, info.Metric)
	assert.Equal(t, 0, info.VectorCount)
}

func TestEnsureCollectionSchemaConflict(t *testing.T) {
	x := NewIndex()
	ctx := context.Background()

	require.NoError(t, x.EnsureCollection(ctx, "c", 3, domain.MetricCosine))

	err := x.EnsureCollection(ctx, "c", 4, domain.MetricCosine)
	assert.ErrorIs(t, err, domain.ErrSchemaConflict)

	err = x.EnsureCollection(ctx, "c", 3, domain.MetricDot)
	assert.ErrorIs(t, err, domain.ErrSchemaConflict)
}

func TestUpsertOverwritesById(t *testing.T) {
	x := NewIndex()
	ctx := context.Background()
	require.NoError(t, x.EnsureCollection(ctx, "c", 2, domain.MetricCosine))

	require.NoError(t, x.Upsert(ctx, "c", []driven.VectorPoint{
		mkPoint("a", []float32{1, 0}, "first write"),
	}))
	require.NoError(t, x.Upsert(ctx, "c", []driven.VectorPoint{
		mkPoint("a", []float32{0, 1}, "second write"),
	}))

	info, err := x.CollectionInfo(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, 1, info.VectorCount)

	hits, err := x.Search(ctx, "c", []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "second write", hits[0].Text)
}

func TestUpsertDimensionMismatch(t *testing.T) {
	x := NewIndex()
	ctx := context.Background()
	require.NoError(t, x.EnsureCollection(ctx, "c", 2, domain.MetricCosine))

	err := x.Upsert(ctx, "c", []driven.VectorPoint{mkPoint("a", []float32{1, 0, 0}, "bad")})
	assert.ErrorIs(t, err, domain.ErrSchemaConflict)
}

func TestSearchOrdersByDescendingSimilarity(t *testing.T) {
	x := NewIndex()
	ctx := context.Background()
	require.NoError(t, x.EnsureCollection(ctx, "c", 2, domain.MetricCosine))

	require.NoError(t, x.Upsert(ctx, "c", []driven.VectorPoint{
		mkPoint("far", []float32{0, 1}, "far"),
		mkPoint("near", []float32{1, 0.1}, "near"),
		mkPoint("exact", []float32{1, 0}, "exact"),
	}))

	hits, err := x.Search(ctx, "c", []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "exact", hits[0].ChunkID)
	assert.Equal(t, "near", hits[1].ChunkID)
	assert.Equal(t, "far", hits[2].ChunkID)
	assert.GreaterOrEqual(t, hits[0].Score, hits[1].Score)
	assert.GreaterOrEqual(t, hits[1].Score, hits[2].Score)
}

func TestSearchSelfIsTopRanked(t *testing.T) {
	x := NewIndex()
	ctx := context.Background()
	require.NoError(t, x.EnsureCollection(ctx, "c", 3, domain.MetricCosine))

	vectors := [][]float32{
		{0.9, 0.1, 0},
		{0.1, 0.9, 0},
		{0, 0.1, 0.9},
	}
	points := make([]driven.VectorPoint, len(vectors))
	for i, v := range vectors {
		points[i] = mkPoint(string(rune('a'+i)), v, "chunk")
	}
	require.NoError(t, x.Upsert(ctx, "c", points))

	for i, v := range vectors {
		hits, err := x.Search(ctx, "c", v, 1)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, string(rune('a'+i)), hits[0].ChunkID)
	}
}

func TestSearchTiesBreakByInsertionOrder(t *testing.T) {
	x := NewIndex()
	ctx := context.Background()
	require.NoError(t, x.EnsureCollection(ctx, "c", 2, domain.MetricCosine))

	// Two identical vectors: identical scores, insertion order decides.
	require.NoError(t, x.Upsert(ctx, "c", []driven.VectorPoint{
		mkPoint("first", []float32{1, 0}, "first"),
		mkPoint("second", []float32{1, 0}, "second"),
	}))

	hits, err := x.Search(ctx, "c", []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "first", hits[0].ChunkID)
	assert.Equal(t, "second", hits[1].ChunkID)
}

func TestSearchClampsTopK(t *testing.T) {
	x := NewIndex()
	ctx := context.Background()
	require.NoError(t, x.EnsureCollection(ctx, "c", 2, domain.MetricCosine))
	require.NoError(t, x.Upsert(ctx, "c", []driven.VectorPoint{
		mkPoint("a", []float32{1, 0}, "a"),
	}))

	hits, err := x.Search(ctx, "c", []float32{1, 0}, 50)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestSearchMissingCollection(t *testing.T) {
	x := NewIndex()

	_, err := x.Search(context.Background(), "nope", []float32{1, 0}, 5)
	assert.ErrorIs(t, err, domain.ErrCollectionNotFound)
}

func TestDeleteCollection(t *testing.T) {
	x := NewIndex()
	ctx := context.Background()
	require.NoError(t, x.EnsureCollection(ctx, "c", 2, domain.MetricCosine))

	require.NoError(t, x.DeleteCollection(ctx, "c"))
	_, err := x.CollectionInfo(ctx, "c")
	assert.ErrorIs(t, err, domain.ErrCollectionNotFound)

	// Deleting again is a no-op.
	require.NoError(t, x.DeleteCollection(ctx, "c"))

	// Recreating with a new dimension succeeds after deletion.
	require.NoError(t, x.EnsureCollection(ctx, "c", 8, domain.MetricDot))
}

func TestEuclidMetricRanksCloserHigher(t *testing.T) {
	x := NewIndex()
	ctx := context.Background()
	require.NoError(t, x.EnsureCollection(ctx, "c", 2, domain.MetricEuclid))

	require.NoError(t, x.Upsert(ctx, "c", []driven.VectorPoint{
		mkPoint("close", []float32{1, 1}, "close"),
		mkPoint("distant", []float32{10, 10}, "distant"),
	}))

	hits, err := x.Search(ctx, "c", []float32{0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "close", hits[0].ChunkID)
}
