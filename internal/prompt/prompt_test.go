package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/octavebahoun/docscrap/internal/config"
	"github.com/octavebahoun/docscrap/internal/models"
)

func TestBuildIsDeterministic(t *testing.T) {
	b := New(config.ShapeJSONEnvelope)
	opts := models.DefaultGenerateOptions()

	first := b.Build("<h1>Intro</h1>", opts)
	second := b.Build("<h1>Intro</h1>", opts)

	assert.Equal(t, first, second)
}

func TestBuildEmbedsHTMLVerbatim(t *testing.T) {
	b := New(config.ShapeJSONEnvelope)

	html := `<h1>Intro</h1><pre><code>if (x) { y() }</code></pre>`
	prompt := b.Build(html, models.DefaultGenerateOptions())

	assert.Contains(t, prompt, html)
}

func TestBuildJSONShapeStatesContract(t *testing.T) {
	b := New(config.ShapeJSONEnvelope)
	prompt := b.Build("<p>x</p>", models.DefaultGenerateOptions())

	for _, fragment := range []string{
		"JSON ONLY",
		`"title"`,
		`"summary"`,
		`"toc"`,
		`"content"`,
		"FORMATTING RULES",
		"Introduction",
		"Core Concepts",
		"Practice",
		"Exercises",
		"Recap",
	} {
		assert.Contains(t, prompt, fragment)
	}
}

func TestBuildMarkdownShapeStatesContract(t *testing.T) {
	b := New(config.ShapeMarkdown)
	prompt := b.Build("<p>x</p>", models.DefaultGenerateOptions())

	assert.Contains(t, prompt, "MARKDOWN ONLY")
	assert.NotContains(t, prompt, "JSON ONLY")
	assert.Contains(t, prompt, "level-1 heading")
}

func TestBuildOptionsAdjustEmphasis(t *testing.T) {
	b := New(config.ShapeJSONEnvelope)

	withExamples := b.Build("<p>x</p>", models.GenerateOptions{IncludeExamples: true})
	withoutExamples := b.Build("<p>x</p>", models.GenerateOptions{IncludeExamples: false})

	assert.NotEqual(t, withExamples, withoutExamples)
	assert.Contains(t, withExamples, "worked examples")
	assert.Contains(t, withoutExamples, "examples minimal")
}

func TestBuildHTMLComesBeforeFinalInstructions(t *testing.T) {
	b := New(config.ShapeJSONEnvelope)
	prompt := b.Build("UNIQUE-MARKER", models.DefaultGenerateOptions())

	htmlPos := strings.Index(prompt, "UNIQUE-MARKER")
	finalPos := strings.Index(prompt, "FINAL INSTRUCTIONS")
	assert.Greater(t, finalPos, htmlPos)
}

func TestShape(t *testing.T) {
	assert.Equal(t, config.ShapeMarkdown, New(config.ShapeMarkdown).Shape())
	assert.Equal(t, config.ShapeJSONEnvelope, New(config.ShapeJSONEnvelope).Shape())
}
