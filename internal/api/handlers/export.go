package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/labelprint/orderexport/internal/domain"
	"github.com/labelprint/orderexport/internal/service"
	"github.com/labelprint/orderexport/internal/storage"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 250
)

// HandleExport handles POST /app/api/export
func HandleExport(svc *service.ExportService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.ExportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}

		result, err := svc.Export(c.Request.Context(), req)
		if err != nil {
			respondError(c, err, logger)
			return
		}

		c.JSON(http.StatusOK, service.NewExportResponse(result))
	}
}

// HandleExportStored handles POST /app/api/export/stored: exports every mirrored order in the
// filter window.
func HandleExportStored(svc *service.ExportService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var filters domain.ExportFilters
		if err := c.ShouldBindJSON(&filters); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}

		result, err := svc.ExportStored(c.Request.Context(), filters)
		if err != nil {
			respondError(c, err, logger)
			return
		}

		c.JSON(http.StatusOK, service.NewExportResponse(result))
	}
}

// HandleListExports handles GET /app/api/exports
func HandleListExports(svc *service.ExportService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := pagination(c)

		records, err := svc.History(c.Request.Context(), limit, offset)
		if err != nil {
			respondError(c, err, logger)
			return
		}

		out := make([]service.ExportRecordResponse, 0, len(records))
		for _, r := range records {
			out = append(out, service.NewExportRecordResponse(r))
		}

		c.JSON(http.StatusOK, gin.H{
			"exports": out,
			"limit":   limit,
			"offset":  offset,
		})
	}
}

// HandleExportFile handles GET /exports/:file for exports kept on local disk
func HandleExportFile(store *storage.LocalStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("file")
		path, err := store.Path(name)
		if err != nil {
			respondError(c, err, logger)
			return
		}
		c.FileAttachment(path, name)
	}
}

func pagination(c *gin.Context) (limit, offset int) {
	limit = defaultPageLimit
	if l := c.Query("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= maxPageLimit {
			limit = n
		}
	}
	if o := c.Query("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
