package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octavebahoun/docscrap/internal/apperrors"
	"github.com/octavebahoun/docscrap/internal/logger"
	"github.com/octavebahoun/docscrap/internal/models"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	return New(dir, logger.NewNop()), dir
}

func TestSaveGetRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	course := &models.Course{
		Title:   "React Hooks!!",
		Summary: "All about hooks",
		Toc: []models.TOCEntry{
			{Level: 1, Title: "React Hooks", Anchor: "#react-hooks"},
			{Level: 2, Title: "useState", Anchor: "#usestate"},
		},
		Content:   "# React Hooks\n\n## useState\n\ntext",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.Save(ctx, course))
	assert.Equal(t, "react-hooks.json", course.ID)

	stored, err := s.Get(ctx, course.ID)
	require.NoError(t, err)
	require.Equal(t, models.TypeJSON, stored.Type)

	got := stored.Course
	assert.Equal(t, course.Title, got.Title)
	assert.Equal(t, course.Summary, got.Summary)
	assert.Equal(t, course.Toc, got.Toc)
	assert.Equal(t, course.Content, got.Content)
}

func TestSaveEmptyTitleFallsBackToTimestampID(t *testing.T) {
	s, _ := newTestStore(t)

	course := &models.Course{Title: "!!!", Content: "body"}
	require.NoError(t, s.Save(context.Background(), course))

	assert.True(t, strings.HasPrefix(course.ID, "course-"), "id %q", course.ID)
	assert.True(t, strings.HasSuffix(course.ID, ".json"))
}

func TestSaveCollisionGetsSuffix(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	first := &models.Course{Title: "Intro", Content: "one"}
	require.NoError(t, s.Save(ctx, first))

	second := &models.Course{Title: "Intro", Content: "two"}
	require.NoError(t, s.Save(ctx, second))

	assert.Equal(t, "intro.json", first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.True(t, strings.HasPrefix(second.ID, "intro-"), "id %q", second.ID)

	// Both records survive.
	storedFirst, err := s.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "one", storedFirst.Course.Content)

	storedSecond, err := s.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "two", storedSecond.Course.Content)
}

func TestSaveExplicitIDOverwrites(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	course := &models.Course{Title: "Intro", Content: "v1"}
	require.NoError(t, s.Save(ctx, course))

	course.Content = "v2"
	require.NoError(t, s.Save(ctx, course))

	stored, err := s.Get(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", stored.Course.Content)

	infos, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, infos, 1)
}

func TestListMixedTypes(t *testing.T) {
	s, dir := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &models.Course{Title: "Intro", Summary: "S", Content: "# Intro"}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "my-notes.md"), []byte("# Notes"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignore.txt"), []byte("nope"), 0o600))

	infos, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)

	byID := map[string]models.CourseInfo{}
	for _, info := range infos {
		byID[info.ID] = info
	}

	structured := byID["intro.json"]
	assert.Equal(t, "Intro", structured.Title)
	assert.Equal(t, "S", structured.Summary)
	assert.Equal(t, models.TypeJSON, structured.Type)
	assert.False(t, structured.UpdatedAt.IsZero())

	plain := byID["my-notes.md"]
	assert.Equal(t, "my notes", plain.Title)
	assert.Equal(t, noSummaryPlaceholder, plain.Summary)
	assert.Equal(t, models.TypeMarkdown, plain.Type)
}

func TestListCorruptJSONDegradesToFilenameMetadata(t *testing.T) {
	s, dir := newTestStore(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken-course.json"), []byte("{not json"), 0o600))

	infos, err := s.List(context.Background())
	require.NoError(t, err, "a corrupt file must not abort the listing")
	require.Len(t, infos, 1)
	assert.Equal(t, "broken course", infos[0].Title)
	assert.Equal(t, noSummaryPlaceholder, infos[0].Summary)
}

func TestListMissingDirectory(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "does-not-exist"), logger.NewNop())

	infos, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestGetMarkdownFileReturnsRaw(t *testing.T) {
	s, dir := newTestStore(t)

	content := "# Raw notes\n\ntext"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte(content), 0o600))

	stored, err := s.Get(context.Background(), "notes.md")
	require.NoError(t, err)
	assert.Equal(t, models.TypeMarkdown, stored.Type)
	assert.Equal(t, content, stored.Raw)
}

func TestGetMissingIsNotFound(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Get(context.Background(), "nope.json")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestGetRejectsPathEscapes(t *testing.T) {
	s, _ := newTestStore(t)

	for _, id := range []string{"../secret.json", "a/b.json", ".hidden.json", ""} {
		_, err := s.Get(context.Background(), id)
		require.Error(t, err, "id %q", id)
		assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	}
}

func TestDeleteMissingIsNotFound(t *testing.T) {
	s, _ := newTestStore(t)

	err := s.Delete(context.Background(), "ghost.json")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestDeleteRemovesFile(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	course := &models.Course{Title: "Gone Soon", Content: "x"}
	require.NoError(t, s.Save(ctx, course))
	require.NoError(t, s.Delete(ctx, course.ID))

	_, err := s.Get(ctx, course.ID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestDeleteAll(t *testing.T) {
	s, dir := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &models.Course{Title: "One", Content: "1"}))
	require.NoError(t, s.Save(ctx, &models.Course{Title: "Two", Content: "2"}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "three.md"), []byte("3"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.txt"), []byte("untouched"), 0o600))

	deleted, err := s.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)

	// Unrecognized files are left alone.
	_, err = os.Stat(filepath.Join(dir, "keep.txt"))
	assert.NoError(t, err)
}

func TestDeleteAllEmptyAndMissingDirectory(t *testing.T) {
	s, _ := newTestStore(t)

	deleted, err := s.DeleteAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, deleted)

	missing := New(filepath.Join(t.TempDir(), "absent"), logger.NewNop())
	deleted, err = missing.DeleteAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, deleted)
}
