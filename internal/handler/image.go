// Package handler implements the HTTP surface around the processing
// pipeline. Handlers orchestrate the record lifecycle; they never mutate
// record fields themselves.
package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/coolprogrammerarpit007/bg-remover/internal/config"
	"github.com/coolprogrammerarpit007/bg-remover/pkg/cache"
	"github.com/coolprogrammerarpit007/bg-remover/pkg/db"
	"github.com/coolprogrammerarpit007/bg-remover/pkg/pipeline"
	"github.com/coolprogrammerarpit007/bg-remover/pkg/record"
	"github.com/coolprogrammerarpit007/bg-remover/pkg/storage"
)

var allowedContentTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
	"image/webp": true,
}

// ImageHandler serves upload, info, and download endpoints.
type ImageHandler struct {
	cfg       *config.Config
	processor *pipeline.Processor
	records   *record.Manager
	repo      *db.Repository
	blobs     storage.Store
	cache     *cache.ResultCache // nil when disabled
}

func NewImageHandler(
	cfg *config.Config,
	processor *pipeline.Processor,
	records *record.Manager,
	repo *db.Repository,
	blobs storage.Store,
	resultCache *cache.ResultCache,
) *ImageHandler {
	return &ImageHandler{
		cfg:       cfg,
		processor: processor,
		records:   records,
		repo:      repo,
		blobs:     blobs,
		cache:     resultCache,
	}
}

// optionsFingerprint distinguishes cache entries produced under different
// engine settings.
func (h *ImageHandler) optionsFingerprint() string {
	return fmt.Sprintf("%s:%t:%d:%d",
		h.cfg.EngineModel, h.cfg.AlphaMatting,
		h.cfg.ForegroundThreshold, h.cfg.BackgroundThreshold)
}

// Upload accepts a multipart image, drives it through the pipeline, and
// advances the record lifecycle to done or failed.
func (h *ImageHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}

	if fileHeader.Size > h.cfg.MaxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("File exceeds maximum size of %d MB", h.cfg.MaxUploadSize/(1024*1024)),
		})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !allowedContentTypes[contentType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported file type"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open upload"})
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}

	ctx := c.Request.Context()

	ext := filepath.Ext(fileHeader.Filename)
	originalKey := "originals/" + uuidHex() + ext
	if err := h.blobs.Write(ctx, originalKey, raw); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store original"})
		return
	}

	rec, err := h.records.Create(fileHeader.Filename, originalKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create record"})
		return
	}
	if err := h.records.MarkProcessing(rec); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start processing"})
		return
	}

	// Identical bytes under identical engine options replay the cached blob.
	cacheKey := ""
	if h.cache != nil {
		cacheKey = cache.Key(raw, h.optionsFingerprint())
		entry, cacheErr := h.cache.Get(ctx, cacheKey)
		if cacheErr != nil {
			slog.Warn("cache_get_failed", "error", cacheErr)
		} else if entry != nil {
			if err := h.records.MarkDone(rec, entry.ProcessedFilename, entry.ProcessedPath); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to finish record"})
				return
			}
			slog.Info("cache_hit", "record_id", rec.ID, "source_record_id", entry.RecordID)
			c.JSON(http.StatusCreated, gin.H{
				"id":            rec.ID,
				"original_url":  "/download/original/" + rec.ID,
				"processed_url": "/download/processed/" + rec.ID,
				"status":        rec.Status,
				"diagnostics":   gin.H{"cache": "hit"},
			})
			return
		}
	}

	result := h.processor.Process(ctx, raw)

	if !result.Succeeded {
		if err := h.records.MarkFailed(rec, result.Message); err != nil {
			slog.Error("mark_failed_error", "record_id", rec.ID, "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"succeeded":   false,
			"id":          rec.ID,
			"status":      rec.Status,
			"message":     result.Message,
			"diagnostics": result.Diagnostics,
		})
		return
	}

	processedFilename := uuidHex() + ".png"
	processedKey := "processed/" + processedFilename
	if err := h.blobs.Write(ctx, processedKey, result.Payload); err != nil {
		if ferr := h.records.MarkFailed(rec, "failed to store processed image"); ferr != nil {
			slog.Error("mark_failed_error", "record_id", rec.ID, "error", ferr)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store processed image"})
		return
	}

	if err := h.records.MarkDone(rec, processedFilename, processedKey); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to finish record"})
		return
	}

	if h.cache != nil {
		entry := &cache.Entry{
			RecordID:          rec.ID,
			ProcessedFilename: processedFilename,
			ProcessedPath:     processedKey,
		}
		if err := h.cache.Set(ctx, cacheKey, entry); err != nil {
			slog.Warn("cache_set_failed", "error", err)
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":            rec.ID,
		"original_url":  "/download/original/" + rec.ID,
		"processed_url": "/download/processed/" + rec.ID,
		"status":        rec.Status,
		"diagnostics":   result.Diagnostics,
	})
}

// Info returns the persisted record for an image.
func (h *ImageHandler) Info(c *gin.Context) {
	rec, err := h.repo.GetByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lookup failed"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// List returns all records, newest first.
func (h *ImageHandler) List(c *gin.Context) {
	records, err := h.repo.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lookup failed"})
		return
	}
	if records == nil {
		records = []*db.ImageRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"images": records})
}

// DownloadOriginal streams the stored original image.
func (h *ImageHandler) DownloadOriginal(c *gin.Context) {
	rec, err := h.repo.GetByID(c.Param("id"))
	if err != nil || rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	data, err := h.blobs.Read(c.Request.Context(), rec.OriginalPath)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File missing"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rec.OriginalFilename))
	c.Data(http.StatusOK, contentTypeForExt(filepath.Ext(rec.OriginalFilename)), data)
}

// DownloadProcessed streams the processed image, available only once the
// record is done.
func (h *ImageHandler) DownloadProcessed(c *gin.Context) {
	rec, err := h.repo.GetByID(c.Param("id"))
	if err != nil || rec == nil || rec.Status != db.StatusDone {
		c.JSON(http.StatusNotFound, gin.H{"error": "Processed image not available"})
		return
	}

	data, err := h.blobs.Read(c.Request.Context(), rec.ProcessedPath)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File missing"})
		return
	}

	stem := strings.TrimSuffix(rec.OriginalFilename, filepath.Ext(rec.OriginalFilename))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "processed_"+stem+".png"))
	c.Data(http.StatusOK, "image/png", data)
}

func uuidHex() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func contentTypeForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
