package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storemem "github.com/custodia-labs/ragline/internal/adapters/driven/storage/memory"
	vectormem "github.com/custodia-labs/ragline/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/ragline/internal/chunker"
	"github.com/custodia-labs/ragline/internal/core/domain"
	"github.com/custodia-labs/ragline/internal/core/ports/driven"
)

func newProjectService(t *testing.T) (*ProjectService, *storemem.Store, *vectormem.Index) {
	splitter, err := chunker.New(100, 20)
	require.NoError(t, err)

	store := storemem.NewStore()
	index := vectormem.NewIndex()
	return NewProjectService(store, store, index, splitter), store, index
}

func TestCreateProject(t *testing.T) {
	svc, _, _ := newProjectService(t)
	ctx := context.Background()

	project, err := svc.CreateProject(ctx, "  knowledge base  ")
	require.NoError(t, err)
	assert.NotEmpty(t, project.ID)
	assert.Equal(t, "knowledge base", project.Name)
	assert.False(t, project.CreatedAt.IsZero())

	got, err := svc.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, project.ID, got.ID)
}

func TestCreateProject_EmptyName(t *testing.T) {
	svc, _, _ := newProjectService(t)

	_, err := svc.CreateProject(context.Background(), "   ")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestIngestDocument(t *testing.T) {
	svc, store, _ := newProjectService(t)
	ctx := context.Background()

	project, err := svc.CreateProject(ctx, "docs")
	require.NoError(t, err)

	doc, count, err := svc.IngestDocument(ctx, project.ID, "guide.md", "A short document that fits one chunk.")
	require.NoError(t, err)
	assert.Equal(t, "guide.md", doc.Name)
	assert.Equal(t, 1, count)

	chunks, err := store.GetChunks(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "A short document that fits one chunk.", chunks[0].Text)
}

func TestIngestDocument_UnknownProject(t *testing.T) {
	svc, _, _ := newProjectService(t)

	_, _, err := svc.IngestDocument(context.Background(), "missing", "a.txt", "text")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIngestDocument_ReingestReplacesChunks(t *testing.T) {
	svc, store, _ := newProjectService(t)
	ctx := context.Background()

	project, err := svc.CreateProject(ctx, "docs")
	require.NoError(t, err)

	long := ""
	for i := 0; i < 10; i++ {
		long += "This sentence pads the document to span several chunks. "
	}
	doc1, count1, err := svc.IngestDocument(ctx, project.ID, "guide.md", long)
	require.NoError(t, err)
	assert.Greater(t, count1, 1)

	doc2, count2, err := svc.IngestDocument(ctx, project.ID, "guide.md", "Now it is short.")
	require.NoError(t, err)
	assert.Equal(t, doc1.ID, doc2.ID)
	assert.Equal(t, 1, count2)

	chunks, err := store.GetChunks(ctx, project.ID)
	require.NoError(t, err)
	assert.Len(t, chunks, 1)
}

func TestIngestDocument_SeparateDocuments(t *testing.T) {
	svc, store, _ := newProjectService(t)
	ctx := context.Background()

	project, err := svc.CreateProject(ctx, "docs")
	require.NoError(t, err)

	_, _, err = svc.IngestDocument(ctx, project.ID, "a.txt", "First document.")
	require.NoError(t, err)
	_, _, err = svc.IngestDocument(ctx, project.ID, "b.txt", "Second document.")
	require.NoError(t, err)

	docs, err := svc.ListProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	stored, err := store.ListDocuments(ctx, project.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestDeleteProject(t *testing.T) {
	svc, store, index := newProjectService(t)
	ctx := context.Background()

	project, err := svc.CreateProject(ctx, "docs")
	require.NoError(t, err)
	_, _, err = svc.IngestDocument(ctx, project.ID, "a.txt", "Some text.")
	require.NoError(t, err)

	// Simulate an indexed project so the collection drop is observable.
	collection := domain.CollectionName(project.ID)
	require.NoError(t, index.EnsureCollection(ctx, collection, 3, domain.MetricCosine))
	require.NoError(t, index.Upsert(ctx, collection, []driven.VectorPoint{
		{ID: "c1", Vector: []float32{1, 0, 0}},
	}))

	require.NoError(t, svc.DeleteProject(ctx, project.ID))

	_, err = svc.GetProject(ctx, project.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	chunks, err := store.GetChunks(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	_, err = index.CollectionInfo(ctx, collection)
	assert.ErrorIs(t, err, domain.ErrCollectionNotFound)
}

func TestDeleteProject_Unknown(t *testing.T) {
	svc, _, _ := newProjectService(t)

	err := svc.DeleteProject(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
