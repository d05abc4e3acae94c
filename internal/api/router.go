// Package api builds the Gin router for the docscrap service.
package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/octavebahoun/docscrap/internal/config"
	"github.com/octavebahoun/docscrap/internal/handlers"
	"github.com/octavebahoun/docscrap/internal/logger"
)

const corsMaxAge = 12 * time.Hour

// NewRouter assembles middleware and the route table.
func NewRouter(courseHandler *handlers.CourseHandler, cfg *config.Config, log logger.Logger) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// CORS middleware - must be first
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           corsMaxAge,
	}))

	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	// Root health payload for the UI.
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "DocScrap API",
			"version": "1.0.0",
			"status":  "running",
			"endpoints": gin.H{
				"courses":  "/api/courses",
				"generate": "/api/courses/url (POST)",
				"markdown": "/api/courses/markdown",
			},
		})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	courses := router.Group("/api/courses")
	courses.GET("", courseHandler.List)
	courses.GET("/markdown", courseHandler.LegacyMarkdown)
	courses.GET("/:id", courseHandler.Get)
	courses.POST("/url", courseHandler.GenerateFromURL)
	courses.DELETE("", courseHandler.DeleteAll)
	courses.DELETE("/:id", courseHandler.Delete)

	return router
}

func ginLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		log.Info("HTTP request",
			logger.String("method", method),
			logger.String("path", path),
			logger.Int("status_code", c.Writer.Status()),
			logger.String("client_ip", c.ClientIP()),
			logger.Duration("duration", time.Since(start)),
		)
	}
}
