package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragline/internal/core/domain"
)

func TestProjectLifecycle(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	project := &domain.Project{ID: "p1", Name: "demo", CreatedAt: time.Now().UTC()}
	require.NoError(t, s.SaveProject(ctx, project))

	got, err := s.GetProject(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "demo", got.Name)

	projects, err := s.ListProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, 1)

	require.NoError(t, s.DeleteProject(ctx, "p1"))
	_, err = s.GetProject(ctx, "p1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteProjectCascades(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.SaveProject(ctx, &domain.Project{ID: "p1", Name: "demo"}))
	require.NoError(t, s.SaveDocument(ctx, &domain.Document{ID: "d1", ProjectID: "p1", Name: "a.txt"}))
	require.NoError(t, s.ReplaceChunks(ctx, "p1", "d1", []domain.Chunk{
		{ID: "c1", ProjectID: "p1", DocumentID: "d1", Ordinal: 0, Text: "hello"},
	}))

	require.NoError(t, s.DeleteProject(ctx, "p1"))

	docs, err := s.ListDocuments(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, docs)

	chunks, err := s.GetChunks(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestGetChunksOrderedByDocumentThenOrdinal(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.ReplaceChunks(ctx, "p1", "doc-b", []domain.Chunk{
		{ID: "b1", ProjectID: "p1", DocumentID: "doc-b", Ordinal: 1, Text: "b1"},
		{ID: "b0", ProjectID: "p1", DocumentID: "doc-b", Ordinal: 0, Text: "b0"},
	}))
	require.NoError(t, s.ReplaceChunks(ctx, "p1", "doc-a", []domain.Chunk{
		{ID: "a0", ProjectID: "p1", DocumentID: "doc-a", Ordinal: 0, Text: "a0"},
	}))

	chunks, err := s.GetChunks(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, []string{"a0", "b0", "b1"}, []string{chunks[0].ID, chunks[1].ID, chunks[2].ID})
}

func TestReplaceChunksIsIdempotent(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	first := []domain.Chunk{
		{ID: "c1", ProjectID: "p1", DocumentID: "d1", Ordinal: 0, Text: "old"},
		{ID: "c2", ProjectID: "p1", DocumentID: "d1", Ordinal: 1, Text: "old2"},
	}
	require.NoError(t, s.ReplaceChunks(ctx, "p1", "d1", first))

	second := []domain.Chunk{
		{ID: "c3", ProjectID: "p1", DocumentID: "d1", Ordinal: 0, Text: "new"},
	}
	require.NoError(t, s.ReplaceChunks(ctx, "p1", "d1", second))
	require.NoError(t, s.ReplaceChunks(ctx, "p1", "d1", second))

	chunks, err := s.GetChunks(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "new", chunks[0].Text)
}
