// Package memory provides in-memory implementations of the metadata stores,
// used in tests and as a lightweight dev backend.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/ragline/internal/core/domain"
	"github.com/custodia-labs/ragline/internal/core/ports/driven"
)

// Ensure Store implements the interfaces.
var (
	_ driven.ProjectStore  = (*Store)(nil)
	_ driven.DocumentStore = (*Store)(nil)
)

// Store is an in-memory implementation of driven.ProjectStore and
// driven.DocumentStore.
type Store struct {
	mu        sync.RWMutex
	projects  map[string]domain.Project
	documents map[string]domain.Document
	chunks    map[string][]domain.Chunk // keyed by document id
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		projects:  make(map[string]domain.Project),
		documents: make(map[string]domain.Document),
		chunks:    make(map[string][]domain.Chunk),
	}
}

// SaveProject stores or updates a project.
func (s *Store) SaveProject(_ context.Context, project *domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[project.ID] = *project
	return nil
}

// GetProject retrieves a project by id.
func (s *Store) GetProject(_ context.Context, id string) (*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	project, ok := s.projects[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &project, nil
}

// ListProjects returns all projects sorted by creation time.
func (s *Store) ListProjects(_ context.Context) ([]domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Project, 0, len(s.projects))
	for id := range s.projects {
		result = append(result, s.projects[id])
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// DeleteProject removes a project and cascades to documents and chunks.
func (s *Store) DeleteProject(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.projects, id)
	for docID, doc := range s.documents {
		if doc.ProjectID == id {
			delete(s.documents, docID)
			delete(s.chunks, docID)
		}
	}
	return nil
}

// SaveDocument stores or updates a document record.
func (s *Store) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// ListDocuments returns a project's documents.
func (s *Store) ListDocuments(_ context.Context, projectID string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Document
	for id := range s.documents {
		if s.documents[id].ProjectID == projectID {
			result = append(result, s.documents[id])
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// GetChunks returns all chunks for a project ordered by document id then
// ordinal.
func (s *Store) GetChunks(_ context.Context, projectID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Chunk
	for _, chunks := range s.chunks {
		for _, c := range chunks {
			if c.ProjectID == projectID {
				result = append(result, c)
			}
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].DocumentID != result[j].DocumentID {
			return result[i].DocumentID < result[j].DocumentID
		}
		return result[i].Ordinal < result[j].Ordinal
	})
	return result, nil
}

// ReplaceChunks atomically replaces one document's chunks.
func (s *Store) ReplaceChunks(_ context.Context, _, documentID string, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	replacement := make([]domain.Chunk, len(chunks))
	copy(replacement, chunks)
	s.chunks[documentID] = replacement
	return nil
}

// DeleteDocument removes a document and its chunks.
func (s *Store) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
	delete(s.chunks, id)
	return nil
}
