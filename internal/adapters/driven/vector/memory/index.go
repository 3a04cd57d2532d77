// Package memory provides an in-process VectorIndex for tests and local
// development. Search is exact (brute force), which keeps ranking behaviour
// deterministic.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/ragline/internal/core/domain"
	"github.com/custodia-labs/ragline/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

type point struct {
	id      string
	vector  []float32
	payload driven.VectorPayload
	seq     int // insertion order, the tie-break for equal scores
}

type collection struct {
	dimension int
	metric    domain.DistanceMetric
	points    map[string]*point
	nextSeq   int
}

// Index is a thread-safe in-memory vector index.
type Index struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// NewIndex creates an empty in-memory vector index.
func NewIndex() *Index {
	return &Index{collections: make(map[string]*collection)}
}

// EnsureCollection creates the collection if missing. A collection that
// already exists with the same dimension and metric is a no-op; a differing
// schema is domain.ErrSchemaConflict.
func (x *Index) EnsureCollection(_ context.Context, name string, dimension int, metric domain.DistanceMetric) error {
	if dimension <= 0 {
		return fmt.Errorf("%w: dimension must be positive", domain.ErrInvalidConfiguration)
	}
	if !metric.IsValid() {
		return fmt.Errorf("%w: distance metric %q", domain.ErrUnsupportedType, metric)
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if existing, ok := x.collections[name]; ok {
		if existing.dimension != dimension || existing.metric != metric {
			return fmt.Errorf("%w: collection %q has dimension %d metric %s, requested dimension %d metric %s",
				domain.ErrSchemaConflict, name, existing.dimension, existing.metric, dimension, metric)
		}
		return nil
	}

	x.collections[name] = &collection{
		dimension: dimension,
		metric:    metric,
		points:    make(map[string]*point),
	}
	return nil
}

// Upsert writes points. Re-upserting an id overwrites vector and payload but
// keeps its original insertion sequence, so tie-breaking stays stable.
func (x *Index) Upsert(_ context.Context, name string, points []driven.VectorPoint) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	col, ok := x.collections[name]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrCollectionNotFound, name)
	}

	for _, p := range points {
		if len(p.Vector) != col.dimension {
			return fmt.Errorf("%w: point %q has dimension %d, collection %q has %d",
				domain.ErrSchemaConflict, p.ID, len(p.Vector), name, col.dimension)
		}
		vec := make([]float32, len(p.Vector))
		copy(vec, p.Vector)

		if existing, ok := col.points[p.ID]; ok {
			existing.vector = vec
			existing.payload = p.Payload
			continue
		}
		col.points[p.ID] = &point{
			id:      p.ID,
			vector:  vec,
			payload: p.Payload,
			seq:     col.nextSeq,
		}
		col.nextSeq++
	}
	return nil
}

// Search returns up to topK hits by descending similarity; ties break by
// insertion order. topK beyond the vector count is clamped.
func (x *Index) Search(_ context.Context, name string, vector []float32, topK int) ([]domain.RetrievedChunk, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	col, ok := x.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrCollectionNotFound, name)
	}
	if len(vector) != col.dimension {
		return nil, fmt.Errorf("%w: query has dimension %d, collection %q has %d",
			domain.ErrSchemaConflict, len(vector), name, col.dimension)
	}
	if topK <= 0 {
		return []domain.RetrievedChunk{}, nil
	}

	type scored struct {
		p     *point
		score float64
	}
	candidates := make([]scored, 0, len(col.points))
	for _, p := range col.points {
		candidates = append(candidates, scored{p: p, score: similarity(col.metric, vector, p.vector)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].p.seq < candidates[j].p.seq
	})

	if topK > len(candidates) {
		topK = len(candidates)
	}

	results := make([]domain.RetrievedChunk, topK)
	for i := 0; i < topK; i++ {
		c := candidates[i]
		results[i] = domain.RetrievedChunk{
			ChunkID:    c.p.id,
			DocumentID: c.p.payload.DocumentID,
			Ordinal:    c.p.payload.Ordinal,
			Text:       c.p.payload.Text,
			Score:      c.score,
		}
	}
	return results, nil
}

// CollectionInfo reports the collection's schema and vector count.
func (x *Index) CollectionInfo(_ context.Context, name string) (*domain.CollectionInfo, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	col, ok := x.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrCollectionNotFound, name)
	}
	return &domain.CollectionInfo{
		Name:        name,
		Dimension:   col.dimension,
		Metric:      col.metric,
		VectorCount: len(col.points),
	}, nil
}

// DeleteCollection removes the collection. Deleting a missing collection is
// a no-op.
func (x *Index) DeleteCollection(_ context.Context, name string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.collections, name)
	return nil
}

// Close releases resources.
func (x *Index) Close() error {
	return nil
}

// similarity scores a candidate under the collection's metric. Higher is
// always better; euclidean distance is inverted to keep that property.
func similarity(metric domain.DistanceMetric, a, b []float32) float64 {
	switch metric {
	case domain.MetricDot:
		return dot(a, b)
	case domain.MetricEuclid:
		var sum float64
		for i := range a {
			d := float64(a[i]) - float64(b[i])
			sum += d * d
		}
		return 1 / (1 + math.Sqrt(sum))
	default: // cosine
		na := norm(a)
		nb := norm(b)
		if na == 0 || nb == 0 {
			return 0
		}
		return dot(a, b) / (na * nb)
	}
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func norm(v []float32) float64 {
	return math.Sqrt(dot(v, v))
}
