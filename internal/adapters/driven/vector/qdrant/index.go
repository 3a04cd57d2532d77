// Package qdrant provides a vector index adapter backed by a Qdrant
// server reached over its REST API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/custodia-labs/ragline/internal/core/domain"
	"github.com/custodia-labs/ragline/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Default configuration values.
const (
	DefaultURL     = "http://localhost:6333"
	DefaultTimeout = 15 * time.Second
)

// metricNames maps domain metrics to Qdrant distance names.
var metricNames = map[domain.DistanceMetric]string{
	domain.MetricCosine: "Cosine",
	domain.MetricDot:    "Dot",
	domain.MetricEuclid: "Euclid",
}

// metricFromName is the reverse mapping, for reading collection schemas back.
var metricFromName = map[string]domain.DistanceMetric{
	"Cosine": domain.MetricCosine,
	"Dot":    domain.MetricDot,
	"Euclid": domain.MetricEuclid,
}

// Config holds configuration for the Qdrant index.
type Config struct {
	// URL is the Qdrant base URL (default: http://localhost:6333).
	URL string

	// APIKey authenticates requests, if the server requires it.
	APIKey string

	// Timeout is the per-request timeout (default: 15s).
	Timeout time.Duration
}

// Index is a REST client for Qdrant collections. Point ids must be
// UUIDs, which chunk ids are.
type Index struct {
	client *http.Client
	url    string
	apiKey string
}

// NewIndex creates a new Qdrant-backed vector index.
func NewIndex(cfg Config) *Index {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Index{
		client: &http.Client{Timeout: cfg.Timeout},
		url:    cfg.URL,
		apiKey: cfg.APIKey,
	}
}

// collectionSchema is the subset of the Qdrant collection info response
// the index cares about.
type collectionSchema struct {
	Result struct {
		PointsCount int `json:"points_count"`
		Config      struct {
			Params struct {
				Vectors struct {
					Size     int    `json:"size"`
					Distance string `json:"distance"`
				} `json:"vectors"`
			} `json:"params"`
		} `json:"config"`
	} `json:"result"`
}

// EnsureCollection creates the collection if missing. An existing
// collection with a different dimension or metric is a schema conflict.
func (x *Index) EnsureCollection(ctx context.Context, name string, dimension int, metric domain.DistanceMetric) error {
	if dimension <= 0 {
		return fmt.Errorf("%w: collection dimension must be positive", domain.ErrInvalidConfiguration)
	}
	distance, ok := metricNames[metric]
	if !ok {
		return fmt.Errorf("%w: distance metric %q", domain.ErrUnsupportedType, metric)
	}

	var schema collectionSchema
	status, err := x.doJSON(ctx, http.MethodGet, "/collections/"+name, nil, &schema)
	if err != nil {
		return err
	}

	switch status {
	case http.StatusOK:
		got := schema.Result.Config.Params.Vectors
		if got.Size != dimension || got.Distance != distance {
			return fmt.Errorf("%w: collection %q has dimension %d metric %s, want dimension %d metric %s",
				domain.ErrSchemaConflict, name, got.Size, got.Distance, dimension, distance)
		}
		return nil

	case http.StatusNotFound:
		body := map[string]any{
			"vectors": map[string]any{
				"size":     dimension,
				"distance": distance,
			},
		}
		status, err := x.doJSON(ctx, http.MethodPut, "/collections/"+name, body, nil)
		if err != nil {
			return err
		}
		if status != http.StatusOK {
			return x.statusError("create collection", status)
		}
		return nil

	default:
		return x.statusError("get collection", status)
	}
}

// upsertPoint is the Qdrant point write format.
type upsertPoint struct {
	ID      string               `json:"id"`
	Vector  []float32            `json:"vector"`
	Payload driven.VectorPayload `json:"payload"`
}

// Upsert writes points into the collection, waiting for the write to be
// applied so a following search sees them.
func (x *Index) Upsert(ctx context.Context, collection string, points []driven.VectorPoint) error {
	if len(points) == 0 {
		return nil
	}

	qdrantPoints := make([]upsertPoint, len(points))
	for i, p := range points {
		qdrantPoints[i] = upsertPoint{
			ID:      p.ID,
			Vector:  p.Vector,
			Payload: p.Payload,
		}
	}

	body := map[string]any{"points": qdrantPoints}
	status, err := x.doJSON(ctx, http.MethodPut, "/collections/"+collection+"/points?wait=true", body, nil)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, collection)
	}
	if status != http.StatusOK {
		return x.statusError("upsert points", status)
	}
	return nil
}

// searchResponse is the Qdrant search response format.
type searchResponse struct {
	Result []struct {
		ID      string               `json:"id"`
		Score   float64              `json:"score"`
		Payload driven.VectorPayload `json:"payload"`
	} `json:"result"`
}

// Search returns up to topK hits ordered by the server's similarity
// ranking for the collection's metric.
func (x *Index) Search(ctx context.Context, collection string, vector []float32, topK int) ([]domain.RetrievedChunk, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: topK must be positive", domain.ErrInvalidConfiguration)
	}

	body := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}

	var resp searchResponse
	status, err := x.doJSON(ctx, http.MethodPost, "/collections/"+collection+"/points/search", body, &resp)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, collection)
	}
	if status != http.StatusOK {
		return nil, x.statusError("search points", status)
	}

	chunks := make([]domain.RetrievedChunk, len(resp.Result))
	for i, r := range resp.Result {
		chunks[i] = domain.RetrievedChunk{
			ChunkID:    r.ID,
			DocumentID: r.Payload.DocumentID,
			Ordinal:    r.Payload.Ordinal,
			Text:       r.Payload.Text,
			Score:      r.Score,
		}
	}
	return chunks, nil
}

// CollectionInfo reports the collection's dimension, metric and vector count.
func (x *Index) CollectionInfo(ctx context.Context, name string) (*domain.CollectionInfo, error) {
	var schema collectionSchema
	status, err := x.doJSON(ctx, http.MethodGet, "/collections/"+name, nil, &schema)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	if status != http.StatusOK {
		return nil, x.statusError("get collection", status)
	}

	vectors := schema.Result.Config.Params.Vectors
	metric, ok := metricFromName[vectors.Distance]
	if !ok {
		return nil, fmt.Errorf("%w: distance metric %q", domain.ErrUnsupportedType, vectors.Distance)
	}

	return &domain.CollectionInfo{
		Name:        name,
		Dimension:   vectors.Size,
		Metric:      metric,
		VectorCount: schema.Result.PointsCount,
	}, nil
}

// DeleteCollection removes the collection. Deleting a missing collection
// is a no-op.
func (x *Index) DeleteCollection(ctx context.Context, name string) error {
	status, err := x.doJSON(ctx, http.MethodDelete, "/collections/"+name, nil, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusNotFound {
		return x.statusError("delete collection", status)
	}
	return nil
}

// Close releases resources.
func (x *Index) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

// doJSON performs one request against the Qdrant API and decodes the
// response into out when provided. The HTTP status is returned for the
// caller to interpret; transport failures become provider errors.
func (x *Index) doJSON(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, x.url+path, reader)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if x.apiKey != "" {
		req.Header.Set("api-key", x.apiKey)
	}

	resp, err := x.client.Do(req)
	if err != nil {
		timeout := errors.Is(err, context.DeadlineExceeded)
		var nerr net.Error
		if !timeout && errors.As(err, &nerr) {
			timeout = nerr.Timeout()
		}
		return 0, &domain.ProviderError{
			Provider:    "qdrant",
			Op:          method + " " + path,
			FailedIndex: -1,
			Message:     err.Error(),
			Timeout:     timeout,
		}
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, domain.NewProviderError("qdrant", method+" "+path, "decode response: "+err.Error())
		}
	} else {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, resp.Body)
	}
	return resp.StatusCode, nil
}

func (x *Index) statusError(op string, status int) error {
	return &domain.ProviderError{
		Provider:    "qdrant",
		Op:          op,
		StatusCode:  status,
		FailedIndex: -1,
		Message:     http.StatusText(status),
	}
}
