// Package handlers implements the HTTP handlers for the course API. The
// handlers are a thin shim: validation and status mapping live here,
// everything else is delegated to the store and the generation pipeline.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/octavebahoun/docscrap/internal/apperrors"
	"github.com/octavebahoun/docscrap/internal/logger"
	"github.com/octavebahoun/docscrap/internal/models"
)

// welcomeMarkdown backs the legacy single-file endpoint before any
// conversion has run.
const welcomeMarkdown = `# Welcome to DocScrap

No course has been generated yet. POST a URL to /api/courses/url to turn a
documentation page into a course.
`

// CourseStore is the store surface the handlers consume.
type CourseStore interface {
	List(ctx context.Context) ([]models.CourseInfo, error)
	Get(ctx context.Context, id string) (*models.StoredCourse, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int, error)
}

// CourseGenerator runs the generation pipeline for one URL.
type CourseGenerator interface {
	Generate(ctx context.Context, url string, opts models.GenerateOptions) (*models.Course, error)
}

// CourseHandler serves the /api/courses routes.
type CourseHandler struct {
	store      CourseStore
	generator  CourseGenerator
	legacyPath string
	debug      bool
	log        logger.Logger
}

// NewCourseHandler wires a handler over the store and generator.
func NewCourseHandler(store CourseStore, gen CourseGenerator, legacyPath string, debug bool, log logger.Logger) *CourseHandler {
	return &CourseHandler{
		store:      store,
		generator:  gen,
		legacyPath: legacyPath,
		debug:      debug,
		log:        log,
	}
}

// List handles GET /api/courses.
func (h *CourseHandler) List(c *gin.Context) {
	infos, err := h.store.List(c.Request.Context())
	if err != nil {
		h.log.Error("list courses", logger.Error(err))
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, infos)
}

// Get handles GET /api/courses/:id. Structured courses are returned as
// JSON, plain files as Markdown.
func (h *CourseHandler) Get(c *gin.Context) {
	id := c.Param("id")

	stored, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if stored.Type == models.TypeMarkdown {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(stored.Raw))
		return
	}

	c.JSON(http.StatusOK, stored.Course)
}

// GenerateFromURL handles POST /api/courses/url. The pipeline runs
// synchronously; the connection stays open for the fetch and model round
// trip.
func (h *CourseHandler) GenerateFromURL(c *gin.Context) {
	var req models.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   string(apperrors.KindValidation),
			"message": "invalid request body",
		})
		return
	}

	if req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   string(apperrors.KindValidation),
			"message": "url is required",
		})
		return
	}

	course, err := h.generator.Generate(c.Request.Context(), req.URL, req.Options.Resolve())
	if err != nil {
		h.log.Error("generate course",
			logger.String("url", req.URL),
			logger.Error(err),
		)
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "course generated",
		"url":     req.URL,
		"id":      course.ID,
	})
}

// Delete handles DELETE /api/courses/:id.
func (h *CourseHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "course deleted", "id": id})
}

// DeleteAll handles DELETE /api/courses.
func (h *CourseHandler) DeleteAll(c *gin.Context) {
	deleted, err := h.store.DeleteAll(c.Request.Context())
	if err != nil {
		h.log.Error("delete all courses", logger.Error(err))
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// LegacyMarkdown handles GET /api/courses/markdown, the single-file mode
// kept for the original viewer: the fixed output file's content, or a
// canned welcome message when nothing has been generated yet.
func (h *CourseHandler) LegacyMarkdown(c *gin.Context) {
	data, err := os.ReadFile(h.legacyPath)
	if err != nil {
		if !os.IsNotExist(err) {
			h.log.Error("read legacy markdown file",
				logger.String("path", h.legacyPath), logger.Error(err))
		}
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(welcomeMarkdown))
		return
	}

	c.Data(http.StatusOK, "text/markdown; charset=utf-8", data)
}

// respondError maps a pipeline or store error onto the API error body.
// Stack-level detail is only exposed in debug mode.
func (h *CourseHandler) respondError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)

	message := "internal server error"
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	body := gin.H{
		"error":   string(kind),
		"message": message,
	}
	if h.debug {
		body["details"] = err.Error()
	}

	c.JSON(apperrors.HTTPStatus(kind), body)
}
