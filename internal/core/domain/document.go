package domain

import "time"

// Document represents one ingested text asset within a project.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// ProjectID links to the owning Project.
	ProjectID string

	// Name is the original asset name (file name, URI, ...).
	Name string

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time
}

// Chunk represents a retrievable unit of text within a document.
// Chunks are immutable once created and are destroyed only when the owning
// document or project is deleted.
type Chunk struct {
	// ID is the unique identifier for the chunk. It doubles as the vector
	// point id in the collection, which is what makes re-indexing idempotent.
	ID string

	// ProjectID links to the owning Project.
	ProjectID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Ordinal is the position within the document. Unique per document; it
	// defines retrieval-display order.
	Ordinal int

	// Text is the chunk content. Length is bounded by the chunker
	// configuration.
	Text string
}
