// Package store persists courses as one file per course inside a single
// directory. Structured courses are stored as JSON documents; plain
// Markdown files dropped into the directory are served transparently with
// filename-derived metadata.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/octavebahoun/docscrap/internal/apperrors"
	"github.com/octavebahoun/docscrap/internal/logger"
	"github.com/octavebahoun/docscrap/internal/models"
)

const noSummaryPlaceholder = "No summary available"

// Store is a file-backed course store scoped to one directory.
type Store struct {
	dir string
	log logger.Logger
}

// New creates a Store over dir. The directory is created lazily on the
// first save, so a missing directory is valid empty state.
func New(dir string, log logger.Logger) *Store {
	return &Store{dir: dir, log: log}
}

// List enumerates recognized files with lightweight metadata. Structured
// files are parsed for title and summary; a corrupt file degrades to
// filename-derived metadata instead of failing the listing. Ordering
// follows the directory listing; callers needing recency must sort by
// UpdatedAt.
func (s *Store) List(_ context.Context) ([]models.CourseInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return []models.CourseInfo{}, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "list course directory")
	}

	infos := make([]models.CourseInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		courseType, ok := typeForFile(entry.Name())
		if !ok {
			continue
		}

		info := models.CourseInfo{
			ID:      entry.Name(),
			Title:   filenameTitle(entry.Name()),
			Summary: noSummaryPlaceholder,
			Type:    courseType,
		}

		if fi, statErr := entry.Info(); statErr == nil {
			info.UpdatedAt = fi.ModTime().UTC()
		}

		if courseType == models.TypeJSON {
			s.fillStructuredMetadata(&info)
		}

		infos = append(infos, info)
	}

	return infos, nil
}

// fillStructuredMetadata reads title and summary from a structured file,
// leaving the filename-derived fallbacks in place on any error.
func (s *Store) fillStructuredMetadata(info *models.CourseInfo) {
	data, err := os.ReadFile(filepath.Join(s.dir, info.ID))
	if err != nil {
		s.log.Warn("read course file for listing",
			logger.String("course_id", info.ID), logger.Error(err))
		return
	}

	var meta struct {
		Title   string `json:"title"`
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		s.log.Warn("parse course file for listing, treating as opaque",
			logger.String("course_id", info.ID), logger.Error(err))
		return
	}

	if meta.Title != "" {
		info.Title = meta.Title
	}
	if meta.Summary != "" {
		info.Summary = meta.Summary
	}
}

// Get returns the stored course for id: the parsed record for structured
// files, the raw text for Markdown files.
func (s *Store) Get(_ context.Context, id string) (*models.StoredCourse, error) {
	path, courseType, err := s.resolve(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, apperrors.New(apperrors.KindNotFound, fmt.Sprintf("course %q not found", id))
	}
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.KindInternal, err, "read course %q", id)
	}

	if courseType == models.TypeMarkdown {
		return &models.StoredCourse{Type: models.TypeMarkdown, Raw: string(data)}, nil
	}

	var course models.Course
	if err := json.Unmarshal(data, &course); err != nil {
		return nil, apperrors.Wrapf(apperrors.KindInternal, err, "parse course %q", id)
	}
	return &models.StoredCourse{Type: models.TypeJSON, Course: &course}, nil
}

// Save writes course as a single structured file named after its id,
// creating the storage directory if absent. A course without an id gets
// one derived from its title; when the derived name is already taken a
// short unique suffix is appended so same-titled courses never overwrite
// each other. An explicit id is honored as-is (true overwrite intent).
func (s *Store) Save(_ context.Context, course *models.Course) error {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return apperrors.Wrap(apperrors.KindInternal, err, "create course directory")
	}

	if course.ID == "" {
		course.ID = s.assignID(course.Title)
	} else if _, _, err := s.resolve(course.ID); err != nil {
		return apperrors.New(apperrors.KindValidation, fmt.Sprintf("invalid course id %q", course.ID))
	}

	if course.CreatedAt.IsZero() {
		course.CreatedAt = time.Now().UTC()
	}

	data, err := json.MarshalIndent(course, "", "  ")
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, err, "encode course")
	}

	path := filepath.Join(s.dir, course.ID)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return apperrors.Wrapf(apperrors.KindInternal, err, "write course %q", course.ID)
	}

	s.log.Info("course saved",
		logger.String("course_id", course.ID),
		logger.String("path", path),
	)
	return nil
}

// assignID derives a unique filename from the course title.
func (s *Store) assignID(title string) string {
	slug := models.Slugify(title)
	if slug == "" {
		slug = fmt.Sprintf("course-%d", time.Now().UnixMilli())
	}

	id := slug + ".json"
	if _, err := os.Stat(filepath.Join(s.dir, id)); err == nil {
		// Same-titled course already stored; disambiguate instead of
		// silently overwriting it.
		id = fmt.Sprintf("%s-%s.json", slug, uuid.NewString()[:8])
	}
	return id
}

// Delete removes the course file for id.
func (s *Store) Delete(_ context.Context, id string) error {
	path, _, err := s.resolve(id)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return apperrors.New(apperrors.KindNotFound, fmt.Sprintf("course %q not found", id))
		}
		return apperrors.Wrapf(apperrors.KindInternal, err, "delete course %q", id)
	}

	s.log.Info("course deleted", logger.String("course_id", id))
	return nil
}

// DeleteAll removes every recognized course file and returns the count.
// An empty or missing directory yields 0 without error.
func (s *Store) DeleteAll(ctx context.Context) (int, error) {
	infos, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, info := range infos {
		if err := os.Remove(filepath.Join(s.dir, info.ID)); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return deleted, apperrors.Wrapf(apperrors.KindInternal, err, "delete course %q", info.ID)
		}
		deleted++
	}

	s.log.Info("course store cleared", logger.Int("deleted", deleted))
	return deleted, nil
}

// resolve validates an id and maps it to its path and type. Ids are bare
// filenames; anything resembling a path escape is rejected as not found
// rather than resolved outside the store directory.
func (s *Store) resolve(id string) (path, courseType string, err error) {
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return "", "", apperrors.New(apperrors.KindNotFound, fmt.Sprintf("course %q not found", id))
	}

	courseType, ok := typeForFile(id)
	if !ok {
		return "", "", apperrors.New(apperrors.KindNotFound, fmt.Sprintf("course %q not found", id))
	}

	return filepath.Join(s.dir, id), courseType, nil
}

// typeForFile maps a filename to its course type by extension.
func typeForFile(name string) (string, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return models.TypeJSON, true
	case ".md", ".markdown":
		return models.TypeMarkdown, true
	default:
		return "", false
	}
}

// filenameTitle derives a human-readable title from a filename.
func filenameTitle(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return strings.ReplaceAll(base, "-", " ")
}
