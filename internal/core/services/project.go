package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/ragline/internal/chunker"
	"github.com/custodia-labs/ragline/internal/core/domain"
	"github.com/custodia-labs/ragline/internal/core/ports/driven"
	"github.com/custodia-labs/ragline/internal/core/ports/driving"
	"github.com/custodia-labs/ragline/internal/logger"
)

// Ensure ProjectService implements the interface.
var _ driving.ProjectService = (*ProjectService)(nil)

// ProjectService manages project lifecycle and document ingestion.
type ProjectService struct {
	projects driven.ProjectStore
	docs     driven.DocumentStore
	vectors  driven.VectorIndex
	splitter *chunker.Splitter
}

// NewProjectService creates a project service.
func NewProjectService(
	projects driven.ProjectStore,
	docs driven.DocumentStore,
	vectors driven.VectorIndex,
	splitter *chunker.Splitter,
) *ProjectService {
	return &ProjectService{
		projects: projects,
		docs:     docs,
		vectors:  vectors,
		splitter: splitter,
	}
}

// CreateProject creates a project with the given name.
func (s *ProjectService) CreateProject(ctx context.Context, name string) (*domain.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: project name is empty", domain.ErrInvalidConfiguration)
	}

	project := &domain.Project{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.projects.SaveProject(ctx, project); err != nil {
		return nil, fmt.Errorf("save project: %w", err)
	}
	logger.Info("Created project %s (%s)", project.Name, project.ID)
	return project, nil
}

// GetProject retrieves a project by id.
func (s *ProjectService) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	return s.projects.GetProject(ctx, id)
}

// ListProjects returns all projects.
func (s *ProjectService) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return s.projects.ListProjects(ctx)
}

// DeleteProject removes the project, its documents and chunks, and drops
// the vector collection. Chunk deletion cascades in the store.
func (s *ProjectService) DeleteProject(ctx context.Context, id string) error {
	if _, err := s.projects.GetProject(ctx, id); err != nil {
		return err
	}
	if err := s.projects.DeleteProject(ctx, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if err := s.vectors.DeleteCollection(ctx, domain.CollectionName(id)); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	logger.Info("Deleted project %s", id)
	return nil
}

// IngestDocument splits text into chunks and idempotently replaces the
// document's chunks in the store. Re-ingesting the same document name
// replaces its previous chunks; the vector index is untouched until the
// next index-push.
func (s *ProjectService) IngestDocument(ctx context.Context, projectID, name, text string) (*domain.Document, int, error) {
	if _, err := s.projects.GetProject(ctx, projectID); err != nil {
		return nil, 0, err
	}

	doc, err := s.findOrCreateDocument(ctx, projectID, name)
	if err != nil {
		return nil, 0, err
	}

	chunks := s.splitter.ChunkDocument(projectID, doc.ID, text)
	if err := s.docs.ReplaceChunks(ctx, projectID, doc.ID, chunks); err != nil {
		return nil, 0, fmt.Errorf("replace chunks: %w", err)
	}

	logger.Info("Ingested %q into project %s: %d chunks", name, projectID, len(chunks))
	return doc, len(chunks), nil
}

func (s *ProjectService) findOrCreateDocument(ctx context.Context, projectID, name string) (*domain.Document, error) {
	existing, err := s.docs.ListDocuments(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	for i := range existing {
		if existing[i].Name == name {
			return &existing[i], nil
		}
	}

	doc := &domain.Document{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.docs.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	return doc, nil
}
