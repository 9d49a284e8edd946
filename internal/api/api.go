// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/stylefeed/inventory-importer/internal/acquire"
	"github.com/stylefeed/inventory-importer/internal/api/handlers"
	"github.com/stylefeed/inventory-importer/internal/api/middleware"
	"github.com/stylefeed/inventory-importer/internal/importer"
	"github.com/stylefeed/inventory-importer/internal/repository"
)

type Services struct {
	Acquire *acquire.Service
	Sources repository.SourceRepository
	Runs    repository.RunRepository
	Stats   repository.StatsRepository
	Staged  repository.StagedRepository
	State   *importer.Coordinator
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.Sources != nil {
			sourceHandler := handlers.NewSourceHandler(services.Sources)
			sourceGroup := apiGroup.Group("/sources")
			{
				sourceGroup.GET("", sourceHandler.List)
				sourceGroup.POST("", sourceHandler.Create)
				sourceGroup.GET("/:id", sourceHandler.Get)
				sourceGroup.PUT("/:id", sourceHandler.Update)
			}
		}

		if services.Acquire != nil {
			importHandler := handlers.NewImportHandler(services.Acquire, services.Runs, services.Stats, services.Staged, services.State)
			importGroup := apiGroup.Group("/sources/:id")
			{
				importGroup.POST("/upload", importHandler.Upload)
				importGroup.POST("/import", importHandler.Trigger)
				importGroup.POST("/combine", importHandler.Combine)
				importGroup.GET("/runs", importHandler.GetRuns)
				importGroup.GET("/stats", importHandler.GetStats)
				importGroup.GET("/status", importHandler.GetStatus)
				importGroup.GET("/staged", importHandler.GetStaged)
				importGroup.DELETE("/staged/:fileId", importHandler.DeleteStaged)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
