package domain

// DistanceMetric identifies how similarity is computed inside a collection.
// The metric is fixed for the lifetime of a collection.
type DistanceMetric string

// Supported distance metrics.
const (
	// MetricCosine is cosine similarity, the default.
	MetricCosine DistanceMetric = "cosine"

	// MetricDot is dot-product similarity.
	MetricDot DistanceMetric = "dot"

	// MetricEuclid is inverted euclidean distance.
	MetricEuclid DistanceMetric = "euclid"
)

// IsValid returns true if the metric is recognised.
func (m DistanceMetric) IsValid() bool {
	switch m {
	case MetricCosine, MetricDot, MetricEuclid:
		return true
	default:
		return false
	}
}

// RetrievedChunk is one search hit: chunk text plus its similarity score.
type RetrievedChunk struct {
	// ChunkID is the matched chunk.
	ChunkID string `json:"chunk_id"`

	// DocumentID is the document the chunk came from.
	DocumentID string `json:"document_id"`

	// Ordinal is the chunk position within its document.
	Ordinal int `json:"ordinal"`

	// Text is the chunk content carried in the vector payload.
	Text string `json:"text"`

	// Score is the similarity under the collection's metric.
	Score float64 `json:"score"`
}

// CollectionInfo describes a vector collection.
type CollectionInfo struct {
	// Name is the collection name.
	Name string

	// Dimension is the vector size all points must have.
	Dimension int

	// Metric is the collection's distance metric.
	Metric DistanceMetric

	// VectorCount is the number of stored points.
	VectorCount int
}
