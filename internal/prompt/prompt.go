// Package prompt renders the fixed instruction template sent to the model.
// Build is pure: the same template version, shape, options, and input
// always produce the same prompt.
package prompt

import (
	"strings"

	"github.com/octavebahoun/docscrap/internal/config"
	"github.com/octavebahoun/docscrap/internal/models"
)

// Builder renders generation prompts for one configured response shape.
type Builder struct {
	shape string
}

// New creates a Builder for the given response shape
// (config.ShapeJSONEnvelope or config.ShapeMarkdown).
func New(shape string) *Builder {
	return &Builder{shape: shape}
}

// Shape returns the response shape this builder targets, so the parsing
// stage can branch deterministically instead of guessing.
func (b *Builder) Shape() string {
	return b.shape
}

const roleSection = `# ROLE
You are an expert in instructional design and technical writing.

`

const jsonFormatSection = `# MISSION
Transform the technical documentation below, provided as HTML, into a
structured JSON object containing a course, a summary, and a table of
contents.

# REQUIRED OUTPUT FORMAT (JSON ONLY)
Respond ONLY with a valid JSON object following this exact structure, with
no text before or after it:
{
  "title": "Course title (short and precise)",
  "summary": "An engaging meta-description of at most 150-160 characters that makes the reader want to open the course.",
  "toc": [
    { "level": 1, "title": "Section 1 title", "anchor": "#section-1-title" },
    { "level": 2, "title": "Subsection 1.1", "anchor": "#subsection-1-1" }
  ],
  "content": "The course body as a Markdown string..."
}

`

const markdownFormatSection = `# MISSION
Transform the technical documentation below, provided as HTML, into a
pedagogical Markdown course.

# REQUIRED OUTPUT FORMAT (MARKDOWN ONLY)
Respond ONLY with the raw Markdown course. Do not wrap it in a code fence
and do not add commentary before or after it. Start with a single
level-1 heading carrying the course title.

`

const structureSection = `# COURSE STRUCTURE (the "content" Markdown)
The course must follow this section skeleton, in order:

## 1. Introduction (required)
- Explain the "why": what problem does this concept solve?
- State what the reader will be able to do afterwards.

## 2. Core Concepts (required)
- Break the material into short, progressive sections.
- Define every term the first time it is used.

## 3. Practice (required)
- Walk through concrete, runnable examples drawn from the source.

## 4. Exercises
- Propose small exercises that reuse the concepts just covered.

## 5. Recap (required)
- Summarize the key points in a short bullet list.

# FORMATTING RULES (constraints, not suggestions)
- Headings: "#" for the course title only, "##" for sections, "###" for subsections.
- Every code block carries a language tag (for example ` + "```js" + `).
- Callouts use blockquote markers: "> **Note:**", "> **Warning:**".
- No HTML tags in the output.

`

const htmlHeader = `# HTML CONTENT TO PROCESS
`

const jsonFinalSection = `

# FINAL INSTRUCTIONS
1. Ignore any leftover HTML noise.
2. Generate a "toc" consistent with the Markdown headings, with anchors matching the heading slugs.
3. Write a compelling "summary".
4. Produce valid JSON.
`

const markdownFinalSection = `

# FINAL INSTRUCTIONS
1. Ignore any leftover HTML noise.
2. Keep the section skeleton intact.
3. Output Markdown only.
`

// Build renders the full instruction block embedding the cleaned HTML.
func (b *Builder) Build(cleanedHTML string, opts models.GenerateOptions) string {
	var sb strings.Builder

	sb.WriteString(roleSection)
	if b.shape == config.ShapeMarkdown {
		sb.WriteString(markdownFormatSection)
	} else {
		sb.WriteString(jsonFormatSection)
	}
	sb.WriteString(structureSection)
	writeOptionLines(&sb, opts)
	sb.WriteString(htmlHeader)
	sb.WriteString(cleanedHTML)
	if b.shape == config.ShapeMarkdown {
		sb.WriteString(markdownFinalSection)
	} else {
		sb.WriteString(jsonFinalSection)
	}

	return sb.String()
}

// writeOptionLines appends advisory instructions derived from the request
// options. They adjust emphasis only; the output contract is unchanged.
func writeOptionLines(sb *strings.Builder, opts models.GenerateOptions) {
	sb.WriteString("# EMPHASIS\n")
	if opts.IncludeExamples {
		sb.WriteString("- Favor worked examples over prose wherever the source allows it.\n")
	} else {
		sb.WriteString("- Keep examples minimal; focus on concepts.\n")
	}
	if opts.AutoSummary {
		sb.WriteString("- The summary must stand alone as a teaser for a course catalog.\n")
	}
	sb.WriteString("\n")
}
