// internal/api/handlers/import_handler.go
package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/stylefeed/inventory-importer/internal/acquire"
	"github.com/stylefeed/inventory-importer/internal/domain"
	"github.com/stylefeed/inventory-importer/internal/importer"
	"github.com/stylefeed/inventory-importer/internal/repository"
)

type ImportHandler struct {
	service *acquire.Service
	runs    repository.RunRepository
	stats   repository.StatsRepository
	staged  repository.StagedRepository
	state   *importer.Coordinator
}

func NewImportHandler(service *acquire.Service, runs repository.RunRepository, stats repository.StatsRepository, staged repository.StagedRepository, state *importer.Coordinator) *ImportHandler {
	return &ImportHandler{service: service, runs: runs, stats: stats, staged: staged, state: state}
}

// Upload imports multipart feed files for a manual source.
func (h *ImportHandler) Upload(c *gin.Context) {
	sourceID := c.Param("id")

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})
		return
	}
	uploads := form.File["files"]
	if len(uploads) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files provided"})
		return
	}

	files := make([]domain.FeedFile, 0, len(uploads))
	for _, upload := range uploads {
		f, err := upload.Open()
		if err != nil {
			log.Error().Err(err).Str("filename", upload.Filename).Msg("failed to open uploaded file")
			continue
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			log.Error().Err(err).Str("filename", upload.Filename).Msg("failed to read uploaded file")
			continue
		}
		files = append(files, domain.FeedFile{Name: upload.Filename, Data: data})
	}
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no valid files to process"})
		return
	}

	result, err := h.service.ImportManual(c.Request.Context(), sourceID, files)
	if err != nil {
		importError(c, sourceID, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Trigger runs the source's configured acquisition channel now.
func (h *ImportHandler) Trigger(c *gin.Context) {
	sourceID := c.Param("id")

	source, err := h.service.Pipeline.Sources.GetByID(c.Request.Context(), sourceID)
	if err != nil {
		importError(c, sourceID, err)
		return
	}

	var result *domain.ImportResult
	switch source.Kind {
	case domain.SourceKindURL:
		result, err = h.service.ImportURL(c.Request.Context(), sourceID)
	case domain.SourceKindEmail:
		result, err = h.service.ImportEmail(c.Request.Context(), sourceID)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "manual sources are imported via upload"})
		return
	}
	if err != nil {
		importError(c, sourceID, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Combine imports everything currently staged for a multi-file source.
func (h *ImportHandler) Combine(c *gin.Context) {
	result, err := h.service.Combine(c.Request.Context(), c.Param("id"))
	if err != nil {
		importError(c, c.Param("id"), err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetRuns returns the recent run history for a source.
func (h *ImportHandler) GetRuns(c *gin.Context) {
	limit := 20
	if v, err := strconv.Atoi(strings.TrimSpace(c.Query("limit"))); err == nil && v > 0 {
		limit = v
	}
	runs, err := h.runs.ListBySource(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch runs"})
		return
	}
	c.JSON(http.StatusOK, runs)
}

// GetStats returns the latest import stats for a source.
func (h *ImportHandler) GetStats(c *gin.Context) {
	stats, err := h.stats.Latest(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch stats"})
		return
	}
	if stats == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no imports recorded for this source"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetStaged lists the files waiting for a combine.
func (h *ImportHandler) GetStaged(c *gin.Context) {
	staged, err := h.staged.ListBySource(c.Request.Context(), c.Param("id"), domain.StagedStatusStaged)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch staged files"})
		return
	}
	c.JSON(http.StatusOK, staged)
}

// DeleteStaged removes one staged file before it is combined.
func (h *ImportHandler) DeleteStaged(c *gin.Context) {
	if err := h.staged.Delete(c.Request.Context(), c.Param("fileId")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete staged file"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// GetStatus reports whether an import is currently running for the source.
func (h *ImportHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"running": h.state.Running(c.Param("id"))})
}

// importError maps pipeline errors to status codes. Safety blocks never
// reach here: they return a non-error result with safetyBlock populated.
func importError(c *gin.Context, sourceID string, err error) {
	log.Error().Err(err).Str("source_id", sourceID).Msg("import request failed")

	var preImport *domain.PreImportError
	switch {
	case errors.Is(err, domain.ErrSourceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrImportBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNoMatchingMail):
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
	case errors.As(err, &preImport):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "failures": preImport.Failures})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
