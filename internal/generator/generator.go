// Package generator orchestrates the course generation pipeline: fetch,
// clean, prompt, model completion, response parsing, persistence. Its
// collaborators are injected at construction so every stage can be
// exercised in isolation.
package generator

import (
	"context"
	"time"

	"github.com/octavebahoun/docscrap/internal/apperrors"
	"github.com/octavebahoun/docscrap/internal/config"
	"github.com/octavebahoun/docscrap/internal/logger"
	"github.com/octavebahoun/docscrap/internal/models"
)

// PageFetcher retrieves rendered HTML for a URL.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Sanitizer narrows a full page to its cleaned main content. The bool
// reports whether the result was truncated to the input budget.
type Sanitizer interface {
	Clean(html, sourceURL string) (string, bool)
}

// PromptBuilder renders the instruction block for one response shape.
type PromptBuilder interface {
	Build(cleanedHTML string, opts models.GenerateOptions) string
	Shape() string
}

// CompletionClient invokes the hosted model.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CourseSaver persists a generated course and assigns its id.
type CourseSaver interface {
	Save(ctx context.Context, course *models.Course) error
}

// Generator runs the full pipeline for one URL at a time.
type Generator struct {
	fetcher   PageFetcher
	sanitizer Sanitizer
	prompts   PromptBuilder
	model     CompletionClient
	store     CourseSaver
	log       logger.Logger
}

// New wires the pipeline stages together.
func New(
	fetcher PageFetcher,
	sanitizer Sanitizer,
	prompts PromptBuilder,
	model CompletionClient,
	store CourseSaver,
	log logger.Logger,
) *Generator {
	return &Generator{
		fetcher:   fetcher,
		sanitizer: sanitizer,
		prompts:   prompts,
		model:     model,
		store:     store,
		log:       log,
	}
}

// Generate runs fetch → clean → prompt → completion → parse and persists
// the resulting course. Fetch and model failures propagate and nothing is
// saved; parse failures are recovered into a degraded course so the
// model's output is never discarded.
func (g *Generator) Generate(ctx context.Context, url string, opts models.GenerateOptions) (*models.Course, error) {
	g.log.Info("generating course", logger.String("url", url))

	html, err := g.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	cleaned, truncated := g.sanitizer.Clean(html, url)
	if truncated {
		g.log.Info("page content truncated before generation", logger.String("url", url))
	}

	response, err := g.model.Complete(ctx, g.prompts.Build(cleaned, opts))
	if err != nil {
		return nil, err
	}

	var course *models.Course
	if g.prompts.Shape() == config.ShapeMarkdown {
		course = parseMarkdownResponse(response)
	} else {
		course = parseEnvelopeResponse(response, g.log)
	}

	course.SourceURL = url
	course.CreatedAt = time.Now().UTC()
	if !opts.IncludeToc {
		course.Toc = nil
	}

	if err := g.store.Save(ctx, course); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "save generated course")
	}

	g.log.Info("course generated",
		logger.String("url", url),
		logger.String("course_id", course.ID),
		logger.String("title", course.Title),
	)

	return course, nil
}
