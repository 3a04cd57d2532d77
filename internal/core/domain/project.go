package domain

import (
	"strings"
	"time"
)

// Project is an isolated namespace for documents, chunks and one vector
// collection. Projects are never merged.
type Project struct {
	// ID is the unique identifier for the project.
	ID string

	// Name is the human-readable project name.
	Name string

	// CreatedAt is when the project was created.
	CreatedAt time.Time
}

// collectionPrefix namespaces ragline collections inside a shared vector
// database deployment.
const collectionPrefix = "ragline_"

// CollectionName derives the vector collection name for a project.
// The mapping is deterministic so index-push and search can always locate
// the collection without a lookup table.
func CollectionName(projectID string) string {
	return collectionPrefix + strings.ReplaceAll(projectID, "-", "")
}
