package handler

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"docextract/internal/domain"
	"docextract/internal/export"
	"docextract/internal/service"
)

// ExtractionHandler handles document extraction endpoints.
type ExtractionHandler struct {
	extractionService service.ExtractionService
}

// NewExtractionHandler creates a new ExtractionHandler.
func NewExtractionHandler(extractionService service.ExtractionService) *ExtractionHandler {
	return &ExtractionHandler{extractionService: extractionService}
}

type outputOptions struct {
	format        export.Format
	includeBlocks bool
}

// Sync handles POST /api/v1/extractions/sync
func (h *ExtractionHandler) Sync(c *gin.Context) {
	opts, ok := parseOutputOptions(c)
	if !ok {
		return
	}

	var req struct {
		Document string `json:"document" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "document is required")
		return
	}

	result, err := h.extractionService.ExtractSync(c.Request.Context(), req.Document)
	if err != nil {
		HandleError(c, err)
		return
	}

	if opts.format != export.FormatJSON {
		respondExport(c, opts.format, "extraction", result)
		return
	}
	RespondOK(c, result)
}

// Async handles POST /api/v1/extractions/async
func (h *ExtractionHandler) Async(c *gin.Context) {
	opts, ok := parseOutputOptions(c)
	if !ok {
		return
	}

	var req struct {
		Document string `json:"document" binding:"required"`
		Bucket   string `json:"bucket"`
		Key      string `json:"key"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "document is required")
		return
	}

	out, err := h.extractionService.ExtractAsync(c.Request.Context(), service.IngestInput{
		Payload: req.Document,
		Bucket:  req.Bucket,
		Key:     req.Key,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	h.respondAsync(c, opts, out)
}

// Stored handles POST /api/v1/extractions/stored
func (h *ExtractionHandler) Stored(c *gin.Context) {
	opts, ok := parseOutputOptions(c)
	if !ok {
		return
	}

	var req struct {
		Bucket string `json:"bucket"`
		Key    string `json:"key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "key is required")
		return
	}

	out, err := h.extractionService.ExtractStored(c.Request.Context(), domain.DocumentLocation{
		Bucket: req.Bucket,
		Key:    req.Key,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	h.respondAsync(c, opts, out)
}

func (h *ExtractionHandler) respondAsync(c *gin.Context, opts outputOptions, out *domain.AsyncExtraction) {
	if opts.format != export.FormatJSON {
		respondExport(c, opts.format, out.JobID, out.Result)
		return
	}
	if !opts.includeBlocks {
		out.Blocks = nil
	}
	RespondOK(c, out)
}

// parseOutputOptions reads ?format= and ?include_blocks=. Returns false if the
// query is invalid (error response already written).
func parseOutputOptions(c *gin.Context) (outputOptions, bool) {
	opts := outputOptions{includeBlocks: true}

	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be one of: json, csv, xlsx")
		return opts, false
	}
	opts.format = format

	if raw := c.Query("include_blocks"); raw != "" {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "include_blocks must be a boolean")
			return opts, false
		}
		opts.includeBlocks = include
	}
	return opts, true
}

// respondExport renders result fully before writing so a rendering failure can
// still produce a JSON error.
func respondExport(c *gin.Context, format export.Format, name string, result *domain.ExtractedResult) {
	var buf bytes.Buffer
	if err := export.Write(&buf, format, result); err != nil {
		log.Printf("ExtractionHandler.respondExport: rendering %s: %v", format, err)
		RespondError(c, http.StatusInternalServerError, "EXPORT_FAILED", "failed to render export")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, format.Filename(name)))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
