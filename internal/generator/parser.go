package generator

import (
	"encoding/json"
	"strings"

	"github.com/octavebahoun/docscrap/internal/logger"
	"github.com/octavebahoun/docscrap/internal/models"
)

// Placeholder metadata for responses whose JSON envelope could not be
// parsed. The raw text is preserved as the course content for manual
// inspection.
const (
	degradedTitle   = "Generated course (parse error)"
	degradedSummary = "Course metadata could not be parsed from the model response."
)

const maxDerivedSummaryLen = 160

// envelope is the JSON shape the model is instructed to produce.
type envelope struct {
	Title   string            `json:"title"`
	Summary string            `json:"summary"`
	Toc     []models.TOCEntry `json:"toc"`
	Content string            `json:"content"`
}

// parseEnvelopeResponse interprets a json-envelope mode response. Models
// routinely wrap the payload in prose or a code fence, so the first
// balanced {...} span is extracted before strict parsing. Any failure
// degrades to a course that carries the raw response verbatim.
func parseEnvelopeResponse(response string, log logger.Logger) *models.Course {
	span, ok := extractBalancedJSON(response)
	if !ok {
		log.Warn("no json object found in model response, keeping raw text")
		return degradedCourse(response)
	}

	var env envelope
	if err := json.Unmarshal([]byte(span), &env); err != nil {
		log.Warn("model response json failed strict parse, keeping raw text",
			logger.Error(err))
		return degradedCourse(response)
	}

	if strings.TrimSpace(env.Content) == "" {
		// The envelope parsed but has no body. Only the content degrades
		// to the raw response; metadata that did parse is kept.
		log.Warn("model response json has no content field, keeping raw text")
		course := degradedCourse(response)
		if env.Title != "" {
			course.Title = env.Title
		}
		if env.Summary != "" {
			course.Summary = env.Summary
		}
		course.Toc = env.Toc
		return course
	}

	return &models.Course{
		Title:   env.Title,
		Summary: env.Summary,
		Toc:     env.Toc,
		Content: env.Content,
	}
}

func degradedCourse(raw string) *models.Course {
	return &models.Course{
		Title:   degradedTitle,
		Summary: degradedSummary,
		Content: raw,
	}
}

// parseMarkdownResponse interprets a markdown mode response: the raw text
// is the content, the title comes from the first level-1 heading, and the
// toc is derived from the level-1/2 headings.
func parseMarkdownResponse(response string) *models.Course {
	return &models.Course{
		Title:   extractMarkdownTitle(response),
		Summary: deriveSummary(response),
		Toc:     deriveTOC(response),
		Content: response,
	}
}

// extractBalancedJSON returns the first complete top-level {...} span in
// s. This is a deliberate heuristic, not a bug: it is the load-bearing
// resilience mechanism against models that surround their payload with
// prose. A real scanner is used rather than a greedy regex because the
// content field regularly contains nested braces that break naive
// matching. String literals and escapes are honored; all structural
// characters are ASCII, so byte-wise scanning is safe on UTF-8 input.
func extractBalancedJSON(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}

// extractMarkdownTitle returns the text of the first level-1 heading, or
// "" when the document has none.
func extractMarkdownTitle(md string) string {
	for _, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
		}
	}
	return ""
}

// deriveTOC builds a table of contents from the level-1 and level-2
// headings of a Markdown document. Anchors are the heading slugs, so they
// match what the content itself would render.
func deriveTOC(md string) []models.TOCEntry {
	var toc []models.TOCEntry
	inFence := false

	for _, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "## "):
			title := strings.TrimSpace(strings.TrimPrefix(trimmed, "## "))
			toc = append(toc, models.TOCEntry{Level: 2, Title: title, Anchor: models.HeadingAnchor(title)})
		case strings.HasPrefix(trimmed, "# "):
			title := strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
			toc = append(toc, models.TOCEntry{Level: 1, Title: title, Anchor: models.HeadingAnchor(title)})
		}
	}

	return toc
}

// deriveSummary takes the first paragraph of body text, capped to the
// teaser length used in list views.
func deriveSummary(md string) string {
	for _, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "```") {
			continue
		}
		if runes := []rune(trimmed); len(runes) > maxDerivedSummaryLen {
			return string(runes[:maxDerivedSummaryLen-3]) + "..."
		}
		return trimmed
	}
	return ""
}
