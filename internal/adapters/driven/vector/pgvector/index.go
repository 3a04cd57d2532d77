// Package pgvector provides a vector index adapter backed by Postgres
// with the pgvector extension.
package pgvector

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvec "github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/ragline/internal/core/domain"
	"github.com/custodia-labs/ragline/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// registryTable records every collection's schema so a later
// EnsureCollection with a different dimension or metric can be rejected.
const registryTable = "ragline_collections"

// identPattern restricts collection names to safe SQL identifiers, since
// each collection maps to its own table.
var identPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// distanceOps maps metrics to pgvector distance operators.
var distanceOps = map[domain.DistanceMetric]string{
	domain.MetricCosine: "<=>",
	domain.MetricDot:    "<#>",
	domain.MetricEuclid: "<->",
}

// Config holds configuration for the Postgres vector index.
type Config struct {
	// DSN is the Postgres connection string (required).
	DSN string
}

// Index stores each collection in its own table with a pgvector column,
// plus a registry row holding the collection's dimension and metric.
type Index struct {
	pool *pgxpool.Pool
}

// NewIndex connects to Postgres, enables the vector extension and
// creates the collection registry.
func NewIndex(ctx context.Context, cfg Config) (*Index, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("%w: postgres DSN is required", domain.ErrInvalidConfiguration)
	}

	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	idx := &Index{pool: pool}
	if err := idx.initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return idx, nil
}

func (x *Index) initialize(ctx context.Context) error {
	if _, err := x.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}

	createRegistry := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			name      TEXT PRIMARY KEY,
			dimension INTEGER NOT NULL,
			metric    TEXT NOT NULL
		)`, registryTable)
	if _, err := x.pool.Exec(ctx, createRegistry); err != nil {
		return fmt.Errorf("create collection registry: %w", err)
	}
	return nil
}

// EnsureCollection creates the collection table if missing. An existing
// collection with a different dimension or metric is a schema conflict.
func (x *Index) EnsureCollection(ctx context.Context, name string, dimension int, metric domain.DistanceMetric) error {
	if err := validateName(name); err != nil {
		return err
	}
	if dimension <= 0 {
		return fmt.Errorf("%w: collection dimension must be positive", domain.ErrInvalidConfiguration)
	}
	if _, ok := distanceOps[metric]; !ok {
		return fmt.Errorf("%w: distance metric %q", domain.ErrUnsupportedType, metric)
	}

	var gotDim int
	var gotMetric string
	err := x.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT dimension, metric FROM %s WHERE name = $1", registryTable),
		name,
	).Scan(&gotDim, &gotMetric)
	switch {
	case err == nil:
		if gotDim != dimension || gotMetric != string(metric) {
			return fmt.Errorf("%w: collection %q has dimension %d metric %s, want dimension %d metric %s",
				domain.ErrSchemaConflict, name, gotDim, gotMetric, dimension, metric)
		}
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		// Fall through to creation.
	default:
		return fmt.Errorf("query collection registry: %w", err)
	}

	tx, err := x.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id        TEXT PRIMARY KEY,
			embedding vector(%d) NOT NULL,
			payload   JSONB NOT NULL,
			seq       BIGSERIAL
		)`, name, dimension)
	if _, err := tx.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("create collection table: %w", err)
	}

	register := fmt.Sprintf(`
		INSERT INTO %s (name, dimension, metric)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO NOTHING`, registryTable)
	if _, err := tx.Exec(ctx, register, name, dimension, string(metric)); err != nil {
		return fmt.Errorf("register collection: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Upsert writes points into the collection inside one transaction.
// Re-upserting an id overwrites its vector and payload and keeps the
// original seq, so insertion-order tie-breaking is stable across
// re-indexing.
func (x *Index) Upsert(ctx context.Context, collection string, points []driven.VectorPoint) error {
	if err := validateName(collection); err != nil {
		return err
	}
	if len(points) == 0 {
		return nil
	}
	if _, err := x.lookupCollection(ctx, collection); err != nil {
		return err
	}

	tx, err := x.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, embedding, payload)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			payload   = EXCLUDED.payload`, collection)

	for _, p := range points {
		if _, err := tx.Exec(ctx, stmt, p.ID, pgvec.NewVector(p.Vector), p.Payload); err != nil {
			return fmt.Errorf("upsert point %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Search returns up to topK hits ordered by descending similarity under
// the collection's metric, ties broken by insertion order.
func (x *Index) Search(ctx context.Context, collection string, vector []float32, topK int) ([]domain.RetrievedChunk, error) {
	if err := validateName(collection); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: topK must be positive", domain.ErrInvalidConfiguration)
	}

	info, err := x.lookupCollection(ctx, collection)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, embedding %s $1 AS distance, payload
		FROM %s
		ORDER BY distance ASC, seq ASC
		LIMIT $2`, distanceOps[info.Metric], collection)

	rows, err := x.pool.Query(ctx, query, pgvec.NewVector(vector), topK)
	if err != nil {
		return nil, fmt.Errorf("search collection: %w", err)
	}
	defer rows.Close()

	var chunks []domain.RetrievedChunk
	for rows.Next() {
		var id string
		var distance float64
		var payload driven.VectorPayload
		if err := rows.Scan(&id, &distance, &payload); err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}
		chunks = append(chunks, domain.RetrievedChunk{
			ChunkID:    id,
			DocumentID: payload.DocumentID,
			Ordinal:    payload.Ordinal,
			Text:       payload.Text,
			Score:      scoreFromDistance(info.Metric, distance),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search rows: %w", err)
	}
	return chunks, nil
}

// CollectionInfo reports the collection's dimension, metric and vector count.
func (x *Index) CollectionInfo(ctx context.Context, name string) (*domain.CollectionInfo, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	info, err := x.lookupCollection(ctx, name)
	if err != nil {
		return nil, err
	}

	var count int
	if err := x.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", name)).Scan(&count); err != nil {
		return nil, fmt.Errorf("count vectors: %w", err)
	}
	info.VectorCount = count
	return info, nil
}

// DeleteCollection removes the collection table and its registry row.
// Deleting a missing collection is a no-op.
func (x *Index) DeleteCollection(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}

	tx, err := x.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", name)); err != nil {
		return fmt.Errorf("drop collection table: %w", err)
	}
	if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE name = $1", registryTable), name); err != nil {
		return fmt.Errorf("deregister collection: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (x *Index) Close() error {
	x.pool.Close()
	return nil
}

// lookupCollection reads the collection's registry row.
func (x *Index) lookupCollection(ctx context.Context, name string) (*domain.CollectionInfo, error) {
	var dimension int
	var metric string
	err := x.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT dimension, metric FROM %s WHERE name = $1", registryTable),
		name,
	).Scan(&dimension, &metric)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("query collection registry: %w", err)
	}
	return &domain.CollectionInfo{
		Name:      name,
		Dimension: dimension,
		Metric:    domain.DistanceMetric(metric),
	}, nil
}

// scoreFromDistance converts a pgvector distance to the similarity score
// convention used throughout retrieval: higher means closer.
func scoreFromDistance(metric domain.DistanceMetric, distance float64) float64 {
	switch metric {
	case domain.MetricCosine:
		// Cosine distance is 1 - similarity.
		return 1 - distance
	case domain.MetricDot:
		// The <#> operator returns the negative inner product.
		return -distance
	case domain.MetricEuclid:
		return 1 / (1 + distance)
	default:
		return -distance
	}
}

func validateName(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("%w: collection name %q is not a valid identifier", domain.ErrInvalidConfiguration, name)
	}
	return nil
}
