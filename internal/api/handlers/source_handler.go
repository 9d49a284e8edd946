// internal/api/handlers/source_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/stylefeed/inventory-importer/internal/domain"
	"github.com/stylefeed/inventory-importer/internal/importer"
	"github.com/stylefeed/inventory-importer/internal/repository"
)

type SourceHandler struct {
	sources repository.SourceRepository
}

func NewSourceHandler(sources repository.SourceRepository) *SourceHandler {
	return &SourceHandler{sources: sources}
}

// List returns every configured source.
func (h *SourceHandler) List(c *gin.Context) {
	sources, err := h.sources.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch sources"})
		return
	}
	c.JSON(http.StatusOK, sources)
}

// Get returns one source by id.
func (h *SourceHandler) Get(c *gin.Context) {
	source, err := h.sources.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrSourceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch source"})
		return
	}
	c.JSON(http.StatusOK, source)
}

// Create registers a new source. Missing ids are generated and the drop
// guard gets its default threshold unless the caller set one.
func (h *SourceHandler) Create(c *gin.Context) {
	var source domain.Source
	if err := c.ShouldBindJSON(&source); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid source payload"})
		return
	}
	if source.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source name is required"})
		return
	}
	if source.ID == "" {
		source.ID = uuid.NewString()
	}
	if source.Kind == "" {
		source.Kind = domain.SourceKindManual
	}
	if source.Role == "" {
		source.Role = domain.SourceRoleRegular
	}
	if source.UpdateStrategy == "" {
		source.UpdateStrategy = domain.UpdateFullSync
	}
	if source.SafetyThreshold == 0 {
		source.SafetyThreshold = importer.DefaultSafetyThreshold
	}

	if err := h.sources.Save(c.Request.Context(), &source); err != nil {
		log.Error().Err(err).Str("source_id", source.ID).Msg("failed to save source")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save source"})
		return
	}
	c.JSON(http.StatusCreated, &source)
}

// Update replaces a source's configuration.
func (h *SourceHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.sources.GetByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrSourceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch source"})
		return
	}

	var source domain.Source
	if err := c.ShouldBindJSON(&source); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid source payload"})
		return
	}
	source.ID = id

	if err := h.sources.Save(c.Request.Context(), &source); err != nil {
		log.Error().Err(err).Str("source_id", id).Msg("failed to save source")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save source"})
		return
	}
	c.JSON(http.StatusOK, &source)
}
