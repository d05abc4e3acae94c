// Package models defines the course records persisted and served by the
// docscrap API.
package models

import (
	"regexp"
	"strings"
	"time"
)

// Course types as reported by the store listing.
const (
	TypeJSON     = "json"
	TypeMarkdown = "markdown"
)

// TOCEntry is one heading reference in a course table of contents.
// Anchor is expected to match a heading slug present in the course
// content; this is advisory and not strictly enforced.
type TOCEntry struct {
	Level  int    `json:"level"`
	Title  string `json:"title"`
	Anchor string `json:"anchor"`
}

// Course is the persisted unit produced by the generation pipeline.
// Content is the authoritative Markdown body; Toc is derived and may be
// empty.
type Course struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"createdAt"`
	Title     string     `json:"title"`
	Summary   string     `json:"summary"`
	Toc       []TOCEntry `json:"toc"`
	Content   string     `json:"content"`
	SourceURL string     `json:"sourceUrl,omitempty"`
}

// CourseInfo is the lightweight listing row returned by GET /api/courses.
type CourseInfo struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Type      string    `json:"type"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StoredCourse is what the store returns for a single id: either a parsed
// structured course or the raw Markdown text of a plain file.
type StoredCourse struct {
	Type   string
	Course *Course
	Raw    string
}

// GenerateOptions toggles optional generation behaviors. They are part of
// the request contract but only advisory on the model call.
type GenerateOptions struct {
	IncludeExamples bool `json:"includeExamples"`
	AutoSummary     bool `json:"autoSummary"`
	IncludeToc      bool `json:"includeToc"`
}

// DefaultGenerateOptions returns the options applied when a request omits
// them.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		IncludeExamples: true,
		AutoSummary:     true,
		IncludeToc:      true,
	}
}

// GenerateOptionsPatch is the wire form of GenerateOptions. Fields are
// pointers so an omitted flag is distinguishable from an explicit false:
// a partial options object only overrides the flags it names.
type GenerateOptionsPatch struct {
	IncludeExamples *bool `json:"includeExamples"`
	AutoSummary     *bool `json:"autoSummary"`
	IncludeToc      *bool `json:"includeToc"`
}

// Resolve overlays the patch on the default options. A nil patch yields
// the defaults unchanged.
func (p *GenerateOptionsPatch) Resolve() GenerateOptions {
	opts := DefaultGenerateOptions()
	if p == nil {
		return opts
	}
	if p.IncludeExamples != nil {
		opts.IncludeExamples = *p.IncludeExamples
	}
	if p.AutoSummary != nil {
		opts.AutoSummary = *p.AutoSummary
	}
	if p.IncludeToc != nil {
		opts.IncludeToc = *p.IncludeToc
	}
	return opts
}

// GenerateRequest is the body of POST /api/courses/url.
type GenerateRequest struct {
	URL     string                `json:"url"`
	Options *GenerateOptionsPatch `json:"options"`
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a filesystem-safe identifier base from a title:
// lowercase, runs of non-alphanumeric characters collapsed to a single
// hyphen, leading and trailing hyphens stripped. Returns "" for titles
// with no usable characters; callers substitute a timestamp-based
// placeholder in that case.
func Slugify(title string) string {
	slug := nonAlphanumeric.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}

// HeadingAnchor returns the "#slug" anchor for a Markdown heading title.
func HeadingAnchor(title string) string {
	return "#" + Slugify(title)
}
