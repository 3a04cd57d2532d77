package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragline/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestProject(t *testing.T, store *Store) *domain.Project {
	project := &domain.Project{
		ID:        uuid.NewString(),
		Name:      "docs",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.SaveProject(context.Background(), project))
	return project
}

func TestProjectLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	project := newTestProject(t, store)

	got, err := store.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, project.ID, got.ID)
	assert.Equal(t, "docs", got.Name)

	projects, err := store.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)

	require.NoError(t, store.DeleteProject(ctx, project.ID))

	_, err = store.GetProject(ctx, project.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetProject_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetProject(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSaveProject_UpdatesName(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	project := newTestProject(t, store)
	project.Name = "renamed"
	require.NoError(t, store.SaveProject(ctx, project))

	got, err := store.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)

	projects, err := store.ListProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, 1)
}

func TestDocumentAndChunks(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	project := newTestProject(t, store)

	doc := &domain.Document{
		ID:        uuid.NewString(),
		ProjectID: project.ID,
		Name:      "guide.md",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.SaveDocument(ctx, doc))

	docs, err := store.ListDocuments(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "guide.md", docs[0].Name)

	chunks := []domain.Chunk{
		{ID: uuid.NewString(), ProjectID: project.ID, DocumentID: doc.ID, Ordinal: 0, Text: "first"},
		{ID: uuid.NewString(), ProjectID: project.ID, DocumentID: doc.ID, Ordinal: 1, Text: "second"},
	}
	require.NoError(t, store.ReplaceChunks(ctx, project.ID, doc.ID, chunks))

	got, err := store.GetChunks(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Text)
	assert.Equal(t, "second", got[1].Text)
}

func TestReplaceChunks_Idempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	project := newTestProject(t, store)
	doc := &domain.Document{ID: uuid.NewString(), ProjectID: project.ID, Name: "a.txt", CreatedAt: time.Now().UTC()}
	require.NoError(t, store.SaveDocument(ctx, doc))

	old := []domain.Chunk{
		{ID: uuid.NewString(), ProjectID: project.ID, DocumentID: doc.ID, Ordinal: 0, Text: "old 0"},
		{ID: uuid.NewString(), ProjectID: project.ID, DocumentID: doc.ID, Ordinal: 1, Text: "old 1"},
		{ID: uuid.NewString(), ProjectID: project.ID, DocumentID: doc.ID, Ordinal: 2, Text: "old 2"},
	}
	require.NoError(t, store.ReplaceChunks(ctx, project.ID, doc.ID, old))

	// Re-chunking with fewer chunks leaves no strays behind.
	replacement := []domain.Chunk{
		{ID: uuid.NewString(), ProjectID: project.ID, DocumentID: doc.ID, Ordinal: 0, Text: "new 0"},
	}
	require.NoError(t, store.ReplaceChunks(ctx, project.ID, doc.ID, replacement))

	got, err := store.GetChunks(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new 0", got[0].Text)
}

func TestGetChunks_OrderedByDocumentThenOrdinal(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	project := newTestProject(t, store)

	docA := &domain.Document{ID: "doc-a", ProjectID: project.ID, Name: "a.txt", CreatedAt: time.Now().UTC()}
	docB := &domain.Document{ID: "doc-b", ProjectID: project.ID, Name: "b.txt", CreatedAt: time.Now().UTC()}
	require.NoError(t, store.SaveDocument(ctx, docA))
	require.NoError(t, store.SaveDocument(ctx, docB))

	// Insert B first to prove ordering comes from the query, not insertion.
	require.NoError(t, store.ReplaceChunks(ctx, project.ID, docB.ID, []domain.Chunk{
		{ID: uuid.NewString(), ProjectID: project.ID, DocumentID: docB.ID, Ordinal: 0, Text: "b0"},
	}))
	require.NoError(t, store.ReplaceChunks(ctx, project.ID, docA.ID, []domain.Chunk{
		{ID: uuid.NewString(), ProjectID: project.ID, DocumentID: docA.ID, Ordinal: 1, Text: "a1"},
		{ID: uuid.NewString(), ProjectID: project.ID, DocumentID: docA.ID, Ordinal: 0, Text: "a0"},
	}))

	got, err := store.GetChunks(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "a0", got[0].Text)
	assert.Equal(t, "a1", got[1].Text)
	assert.Equal(t, "b0", got[2].Text)
}

func TestDeleteProject_Cascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	project := newTestProject(t, store)
	doc := &domain.Document{ID: uuid.NewString(), ProjectID: project.ID, Name: "a.txt", CreatedAt: time.Now().UTC()}
	require.NoError(t, store.SaveDocument(ctx, doc))
	require.NoError(t, store.ReplaceChunks(ctx, project.ID, doc.ID, []domain.Chunk{
		{ID: uuid.NewString(), ProjectID: project.ID, DocumentID: doc.ID, Ordinal: 0, Text: "text"},
	}))

	require.NoError(t, store.DeleteProject(ctx, project.ID))

	docs, err := store.ListDocuments(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, docs)

	chunks, err := store.GetChunks(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestDeleteDocument_RemovesChunks(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	project := newTestProject(t, store)
	doc := &domain.Document{ID: uuid.NewString(), ProjectID: project.ID, Name: "a.txt", CreatedAt: time.Now().UTC()}
	require.NoError(t, store.SaveDocument(ctx, doc))
	require.NoError(t, store.ReplaceChunks(ctx, project.ID, doc.ID, []domain.Chunk{
		{ID: uuid.NewString(), ProjectID: project.ID, DocumentID: doc.ID, Ordinal: 0, Text: "text"},
	}))

	require.NoError(t, store.DeleteDocument(ctx, doc.ID))

	chunks, err := store.GetChunks(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}
