package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jengzang/epidash-backend-go/internal/dataset"
	"github.com/jengzang/epidash-backend-go/internal/models"
	"github.com/jengzang/epidash-backend-go/internal/pipeline"
	"github.com/jengzang/epidash-backend-go/internal/render"
	"github.com/jengzang/epidash-backend-go/internal/service"
	"github.com/jengzang/epidash-backend-go/pkg/response"
)

// Multipart field names of the upload form
const (
	FieldTimeseries = "covid"
	FieldOutbreak   = "nipah"
)

const msgBothFiles = "Please upload BOTH COVID and Nipah CSV files to continue."

// DashboardHandler handles HTTP requests for datasets and dashboard views
type DashboardHandler struct {
	service        *service.DashboardService
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service *service.DashboardService, maxUploadBytes int64, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Upload handles POST /api/v1/datasets
func (h *DashboardHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Upload exceeds %d bytes", h.maxUploadBytes))
			return
		}
		response.BadRequest(c, msgBothFiles)
		return
	}

	ts, tsOK := firstFile(form, FieldTimeseries)
	ob, obOK := firstFile(form, FieldOutbreak)
	if !tsOK || !obOK {
		response.BadRequest(c, msgBothFiles)
		return
	}

	tsBytes, err := readFile(ts)
	if err != nil {
		response.ErrorWithDetail(c, http.StatusBadRequest, "Failed to read COVID upload", err, nil)
		return
	}
	obBytes, err := readFile(ob)
	if err != nil {
		response.ErrorWithDetail(c, http.StatusBadRequest, "Failed to read Nipah upload", err, nil)
		return
	}

	res, err := h.service.Upload(c.Request.Context(), tsBytes, obBytes)
	if err != nil {
		h.fail(c, "Failed to process uploads", err)
		return
	}

	if res.Cached {
		response.Success(c, res)
		return
	}
	response.Created(c, res)
}

func firstFile(form *multipart.Form, field string) (*multipart.FileHeader, bool) {
	files := form.File[field]
	if len(files) == 0 {
		return nil, false
	}
	return files[0], true
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// GetDashboard handles GET /api/v1/datasets/:id/dashboard
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	filter, ok := bindFilter(c)
	if !ok {
		return
	}

	d, err := h.service.Dashboard(c.Request.Context(), c.Param("id"), filter)
	if err != nil {
		h.fail(c, "Failed to build dashboard", err)
		return
	}
	response.Success(c, d)
}

// GetYearly handles GET /api/v1/datasets/:id/yearly
func (h *DashboardHandler) GetYearly(c *gin.Context) {
	yearly, err := h.service.Yearly(c.Param("id"))
	if err != nil {
		h.fail(c, "Failed to get yearly rollup", err)
		return
	}
	response.Success(c, gin.H{
		"data":  yearly,
		"count": len(yearly),
	})
}

// GetLatest handles GET /api/v1/datasets/:id/latest
func (h *DashboardHandler) GetLatest(c *gin.Context) {
	latest, err := h.service.Latest(c.Param("id"))
	if err != nil {
		h.fail(c, "Failed to get latest snapshot", err)
		return
	}
	response.Success(c, gin.H{
		"data":  latest,
		"count": len(latest),
	})
}

// GetHeatmap handles GET /api/v1/datasets/:id/heatmap
func (h *DashboardHandler) GetHeatmap(c *gin.Context) {
	m, err := h.service.Heatmap(c.Param("id"))
	if err != nil {
		h.fail(c, "Failed to get heatmap", err)
		return
	}
	response.Success(c, m)
}

// GetPointMap handles GET /api/v1/datasets/:id/map/points
func (h *DashboardHandler) GetPointMap(c *gin.Context) {
	m, err := h.service.PointMap(c.Param("id"))
	if err != nil {
		h.fail(c, "Failed to get point map", err)
		return
	}
	response.Success(c, m)
}

// GetChoropleth handles GET /api/v1/datasets/:id/map/choropleth
func (h *DashboardHandler) GetChoropleth(c *gin.Context) {
	m, err := h.service.Choropleth(c.Param("id"))
	if err != nil {
		h.fail(c, "Failed to get choropleth", err)
		return
	}
	response.Success(c, m)
}

// GetKPIs handles GET /api/v1/datasets/:id/kpis
func (h *DashboardHandler) GetKPIs(c *gin.Context) {
	filter, ok := bindFilter(c)
	if !ok {
		return
	}

	kpis, err := h.service.KPIs(c.Request.Context(), c.Param("id"), filter)
	if err != nil {
		h.fail(c, "Failed to get KPIs", err)
		return
	}
	response.Success(c, kpis)
}

// GetChart handles GET /api/v1/datasets/:id/charts/:chart
func (h *DashboardHandler) GetChart(c *gin.Context) {
	filter, ok := bindFilter(c)
	if !ok {
		return
	}

	png, err := h.service.Chart(c.Request.Context(), c.Param("id"), c.Param("chart"), filter)
	if err != nil {
		h.fail(c, "Failed to render chart", err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// ListOutbreakRows handles GET /api/v1/datasets/:id/rows/outbreak
func (h *DashboardHandler) ListOutbreakRows(c *gin.Context) {
	var filter models.RowFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ErrorWithDetail(c, http.StatusBadRequest, "Invalid query parameters", err, nil)
		return
	}
	filter.Normalize()

	rows, total, err := h.service.OutbreakRows(c.Request.Context(), c.Param("id"), filter)
	if err != nil {
		h.fail(c, "Failed to list outbreak rows", err)
		return
	}
	response.Success(c, response.Page{Items: rows, Total: total, Page: filter.Page, PageSize: filter.PageSize})
}

// ListTimeseriesRows handles GET /api/v1/datasets/:id/rows/timeseries
func (h *DashboardHandler) ListTimeseriesRows(c *gin.Context) {
	var filter models.RowFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ErrorWithDetail(c, http.StatusBadRequest, "Invalid query parameters", err, nil)
		return
	}
	filter.Normalize()

	rows, total, err := h.service.TimeseriesRows(c.Request.Context(), c.Param("id"), filter)
	if err != nil {
		h.fail(c, "Failed to list timeseries rows", err)
		return
	}
	response.Success(c, response.Page{Items: rows, Total: total, Page: filter.Page, PageSize: filter.PageSize})
}

// DeleteDataset handles DELETE /api/v1/datasets/:id
func (h *DashboardHandler) DeleteDataset(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, "Failed to delete dataset", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetCoordinates handles GET /api/v1/coordinates
func (h *DashboardHandler) GetCoordinates(c *gin.Context) {
	entries := h.service.Coordinates()
	response.Success(c, gin.H{
		"data":  entries,
		"count": len(entries),
	})
}

func bindFilter(c *gin.Context) (models.DashboardFilter, bool) {
	var filter models.DashboardFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ErrorWithDetail(c, http.StatusBadRequest, "Invalid query parameters", err, nil)
		return filter, false
	}
	return filter, true
}

// fail maps service errors to HTTP status codes
func (h *DashboardHandler) fail(c *gin.Context, message string, err error) {
	var malformed *dataset.MalformedDatasetError
	var cellErr *dataset.CellError

	switch {
	case errors.Is(err, service.ErrDatasetNotFound):
		response.NotFound(c, "Dataset not found")
	case errors.As(err, &malformed):
		response.ErrorWithDetail(c, http.StatusUnprocessableEntity, "Malformed dataset", err, gin.H{
			"dataset": malformed.Dataset,
			"missing": malformed.Missing,
		})
	case errors.As(err, &cellErr):
		response.ErrorWithDetail(c, http.StatusUnprocessableEntity, "Malformed dataset", err, gin.H{
			"dataset": cellErr.Dataset,
			"row":     cellErr.Row,
			"column":  cellErr.Column,
		})
	case errors.Is(err, dataset.ErrEmptyDataset), errors.Is(err, pipeline.ErrNoTimeseriesData):
		response.ErrorWithDetail(c, http.StatusUnprocessableEntity, "Malformed dataset", err, nil)
	case errors.Is(err, pipeline.ErrYearNotFound):
		response.ErrorWithDetail(c, http.StatusBadRequest, "Year not available", err, nil)
	case errors.Is(err, service.ErrUnknownChart):
		response.ErrorWithDetail(c, http.StatusNotFound, "Unknown chart", err, gin.H{
			"charts": []string{service.ChartFatalityTrend, service.ChartCovidCases, service.ChartNipahCases, service.ChartDistribution},
		})
	case errors.Is(err, render.ErrNothingToPlot):
		response.ErrorWithDetail(c, http.StatusUnprocessableEntity, "Nothing to plot", err, nil)
	default:
		h.logger.Error(message, zap.Error(err), zap.String("path", c.FullPath()))
		response.InternalError(c, message)
	}
}
