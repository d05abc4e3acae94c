// Package sanitizer strips boilerplate from fetched HTML and isolates the
// main content region before it is handed to the model. Cleaning never
// fails: when nothing matches, the post-removal document is returned, and
// a readability pass covers pages whose structure defeats the selector
// probe entirely.
package sanitizer

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/octavebahoun/docscrap/internal/config"
	"github.com/octavebahoun/docscrap/internal/logger"
)

// Sanitizer holds the selector configuration for HTML cleaning.
type Sanitizer struct {
	noiseSelectors   []string
	contentSelectors []string
	maxInputChars    int
	log              logger.Logger
}

// New builds a Sanitizer from the pipeline configuration.
func New(cfg config.PipelineConfig, log logger.Logger) *Sanitizer {
	return &Sanitizer{
		noiseSelectors:   cfg.NoiseSelectors,
		contentSelectors: cfg.ContentSelectors,
		maxInputChars:    cfg.MaxInputChars,
		log:              log,
	}
}

// Clean removes noise elements, narrows the document to its main content
// region, and truncates the result to the configured input budget. The
// returned bool reports whether truncation occurred. sourceURL is only
// used by the readability fallback and may be empty.
//
// Non-empty input always yields non-empty output.
func (s *Sanitizer) Clean(html, sourceURL string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		// Unparseable input is passed through rather than dropped.
		s.log.Warn("parse html for cleaning", logger.Error(err))
		return s.truncate(html)
	}

	for _, sel := range s.noiseSelectors {
		doc.Find(sel).Remove()
	}

	content := s.probeContent(doc)

	if strings.TrimSpace(content) == "" {
		content = readabilityContent(html, sourceURL)
		if content != "" {
			s.log.Debug("selector probe empty, used readability fallback",
				logger.String("url", sourceURL))
		}
	}

	if strings.TrimSpace(content) == "" {
		content = html
	}

	return s.truncate(content)
}

// probeContent returns the inner markup of the first content selector that
// matches something non-empty, falling back to the whole post-removal
// document.
func (s *Sanitizer) probeContent(doc *goquery.Document) string {
	for _, sel := range s.contentSelectors {
		inner, err := doc.Find(sel).First().Html()
		if err == nil && strings.TrimSpace(inner) != "" {
			return inner
		}
	}

	full, err := doc.Find("html").Html()
	if err != nil {
		return ""
	}
	return full
}

// readabilityContent runs a readability-style extraction over the original
// document. Used only when selector-based extraction yielded nothing.
func readabilityContent(html, sourceURL string) string {
	parsedURL, err := url.Parse(sourceURL)
	if err != nil {
		return ""
	}

	article, err := readability.FromReader(strings.NewReader(html), parsedURL)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(article.Content)
}

// truncate caps content to the input budget. The budget counts characters,
// not bytes, so the cut always lands on a rune boundary and never feeds
// broken UTF-8 into the prompt.
func (s *Sanitizer) truncate(content string) (string, bool) {
	// Byte length bounds rune count, so most inputs skip the conversion.
	if len(content) <= s.maxInputChars {
		return content, false
	}

	runes := []rune(content)
	if len(runes) <= s.maxInputChars {
		return content, false
	}

	// The generation step has an input-size ceiling; flag the cut since it
	// can drop course material.
	s.log.Warn("cleaned html truncated to input budget",
		logger.Int("original_chars", len(runes)),
		logger.Int("max_chars", s.maxInputChars),
	)
	return string(runes[:s.maxInputChars]), true
}
