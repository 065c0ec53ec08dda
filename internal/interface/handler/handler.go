package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"kayako-stat-service/internal/domain/entity"
	"kayako-stat-service/pkg/logger"
	"kayako-stat-service/pkg/metrics"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// Importer is the import pipeline as seen by the API
type Importer interface {
	ImportFile(ctx context.Context, name string, r io.Reader) (*entity.ImportRun, error)
	RecentRuns(ctx context.Context, limit int) ([]*entity.ImportRun, error)
}

// Reporter answers dashboard queries
type Reporter interface {
	Report(ctx context.Context, q entity.ReportQuery) (*entity.Report, error)
	Filters(ctx context.Context) (*entity.FilterOptions, error)
}

// StatHandler serves uploads and reports
type StatHandler struct {
	importer       Importer
	reporter       Reporter
	metrics        *metrics.Metrics
	logger         logger.Logger
	maxUploadBytes int64
	now            func() time.Time
}

// NewStatHandler creates a new handler
func NewStatHandler(importer Importer, reporter Reporter, metrics *metrics.Metrics, logger logger.Logger, maxUploadBytes int64) *StatHandler {
	return &StatHandler{
		importer:       importer,
		reporter:       reporter,
		metrics:        metrics,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
		now:            time.Now,
	}
}

// Upload imports the multipart "file" field
func (h *StatHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fh.Size > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file is too large"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open uploaded file"})
		return
	}
	defer f.Close()

	run, err := h.importer.ImportFile(c.Request.Context(), fh.Filename, f)
	if err != nil {
		c.JSON(importStatus(err), gin.H{"error": err.Error(), "run": run})
		return
	}
	c.JSON(http.StatusCreated, run)
}

func importStatus(err error) int {
	var parseErr *entity.ParseError
	var storageErr *entity.StorageError
	switch {
	case errors.As(err, &parseErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &storageErr):
		return http.StatusBadGateway
	case errors.Is(err, entity.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusBadRequest
	}
}

// ListImports returns recent import runs
func (h *StatHandler) ListImports(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = min(n, 100)
	}

	runs, err := h.importer.RecentRuns(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list import runs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list imports"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"imports": runs})
}

// Filters returns the sidebar options
func (h *StatHandler) Filters(c *gin.Context) {
	opts, err := h.reporter.Filters(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to load filter options", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load filters"})
		return
	}
	c.JSON(http.StatusOK, opts)
}

// Report returns aggregates for the selected period and filters
func (h *StatHandler) Report(c *gin.Context) {
	today := h.now().UTC()
	start, err := parseDate(c.Query("start"), today)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start date"})
		return
	}
	end, err := parseDate(c.Query("end"), today)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end date"})
		return
	}

	q := entity.ReportQuery{
		Start:    start,
		End:      end,
		Region:   c.DefaultQuery("region", entity.AllRegions),
		SystemID: c.DefaultQuery("system_id", entity.AllSystems),
		Type:     c.DefaultQuery("type", entity.AllTypes),
		Status:   c.DefaultQuery("status", entity.AllStatuses),
	}

	report, err := h.reporter.Report(c.Request.Context(), q)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidRange) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Report query failed", "error", err)
		h.metrics.ErrorsCount.WithLabelValues("report").Inc()
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to query records"})
		return
	}
	h.metrics.ReportsServed.Inc()
	c.JSON(http.StatusOK, report)
}

func parseDate(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		y, m, d := fallback.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse(dateLayout, value)
}
