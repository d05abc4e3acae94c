package generator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octavebahoun/docscrap/internal/apperrors"
	"github.com/octavebahoun/docscrap/internal/config"
	"github.com/octavebahoun/docscrap/internal/logger"
	"github.com/octavebahoun/docscrap/internal/models"
	"github.com/octavebahoun/docscrap/internal/prompt"
	"github.com/octavebahoun/docscrap/internal/sanitizer"
	"github.com/octavebahoun/docscrap/internal/store"
)

type fakeFetcher struct {
	html string
	err  error
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string) (string, error) {
	return f.html, f.err
}

type fakeModel struct {
	response string
	err      error
	prompts  []string
}

func (m *fakeModel) Complete(_ context.Context, p string) (string, error) {
	m.prompts = append(m.prompts, p)
	return m.response, m.err
}

func newTestSanitizer() *sanitizer.Sanitizer {
	return sanitizer.New(config.PipelineConfig{
		MaxInputChars:    12000,
		NoiseSelectors:   config.DefaultNoiseSelectors(),
		ContentSelectors: config.DefaultContentSelectors(),
	}, logger.NewNop())
}

func newTestGenerator(t *testing.T, fetch *fakeFetcher, model *fakeModel, shape string) (*Generator, *store.Store) {
	t.Helper()
	courseStore := store.New(t.TempDir(), logger.NewNop())
	gen := New(fetch, newTestSanitizer(), prompt.New(shape), model, courseStore, logger.NewNop())
	return gen, courseStore
}

func TestGenerateEndToEnd(t *testing.T) {
	fetch := &fakeFetcher{html: `<html><nav>Menu</nav><article><h1>Intro</h1><p>Hello</p></article></html>`}
	model := &fakeModel{response: `{"title":"Intro","summary":"S","toc":[],"content":"# Intro\n\nHello"}`}
	gen, courseStore := newTestGenerator(t, fetch, model, config.ShapeJSONEnvelope)

	course, err := gen.Generate(context.Background(), "https://example.com/intro", models.DefaultGenerateOptions())
	require.NoError(t, err)

	assert.Equal(t, "intro.json", course.ID)
	assert.Equal(t, "Intro", course.Title)
	assert.Equal(t, "# Intro\n\nHello", course.Content)
	assert.False(t, course.CreatedAt.IsZero())

	// The prompt must embed the sanitized content, not the page chrome.
	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "<h1>Intro</h1>")
	assert.NotContains(t, model.prompts[0], "<nav>")

	// The persisted record matches what was returned.
	infos, err := courseStore.List(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "intro.json", infos[0].ID)
	assert.Equal(t, "Intro", infos[0].Title)
	assert.Equal(t, models.TypeJSON, infos[0].Type)
}

func TestGenerateFetchFailureSavesNothing(t *testing.T) {
	fetch := &fakeFetcher{err: apperrors.New(apperrors.KindFetch, "connection refused")}
	model := &fakeModel{}
	gen, courseStore := newTestGenerator(t, fetch, model, config.ShapeJSONEnvelope)

	_, err := gen.Generate(context.Background(), "https://example.com", models.DefaultGenerateOptions())
	require.Error(t, err)
	assert.Equal(t, apperrors.KindFetch, apperrors.KindOf(err))
	assert.Empty(t, model.prompts, "model must not be called when fetch fails")

	infos, listErr := courseStore.List(context.Background())
	require.NoError(t, listErr)
	assert.Empty(t, infos)
}

func TestGenerateModelFailureSavesNothing(t *testing.T) {
	fetch := &fakeFetcher{html: "<article><p>content</p></article>"}
	model := &fakeModel{err: errors.New("rate limited")}
	gen, courseStore := newTestGenerator(t, fetch, model, config.ShapeJSONEnvelope)

	_, err := gen.Generate(context.Background(), "https://example.com", models.DefaultGenerateOptions())
	require.Error(t, err)

	infos, listErr := courseStore.List(context.Background())
	require.NoError(t, listErr)
	assert.Empty(t, infos)
}

func TestGenerateParseFailureStillSaves(t *testing.T) {
	fetch := &fakeFetcher{html: "<article><p>content</p></article>"}
	model := &fakeModel{response: "not json at all"}
	gen, courseStore := newTestGenerator(t, fetch, model, config.ShapeJSONEnvelope)

	course, err := gen.Generate(context.Background(), "https://example.com", models.DefaultGenerateOptions())
	require.NoError(t, err, "parse failures must be recovered, not surfaced")

	assert.Equal(t, "not json at all", course.Content)

	stored, err := courseStore.Get(context.Background(), course.ID)
	require.NoError(t, err)
	assert.Equal(t, "not json at all", stored.Course.Content)
}

func TestGenerateIncludeTocFalseDropsToc(t *testing.T) {
	fetch := &fakeFetcher{html: "<article><p>content</p></article>"}
	model := &fakeModel{response: `{"title":"T","summary":"S","toc":[{"level":1,"title":"T","anchor":"#t"}],"content":"# T"}`}
	gen, _ := newTestGenerator(t, fetch, model, config.ShapeJSONEnvelope)

	opts := models.DefaultGenerateOptions()
	opts.IncludeToc = false

	course, err := gen.Generate(context.Background(), "https://example.com", opts)
	require.NoError(t, err)
	assert.Empty(t, course.Toc)
}

func TestGenerateMarkdownShape(t *testing.T) {
	fetch := &fakeFetcher{html: "<article><p>content</p></article>"}
	model := &fakeModel{response: "# Channels\n\nPipes between goroutines.\n\n## Recap\n\ndone"}
	gen, _ := newTestGenerator(t, fetch, model, config.ShapeMarkdown)

	course, err := gen.Generate(context.Background(), "https://example.com", models.DefaultGenerateOptions())
	require.NoError(t, err)

	assert.Equal(t, "Channels", course.Title)
	assert.Equal(t, "channels.json", course.ID)
	assert.Equal(t, model.response, course.Content)
	require.Len(t, course.Toc, 2)
}
