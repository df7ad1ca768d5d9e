package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	reportapp "github.com/erp/marketsync/internal/application/report"
	"github.com/erp/marketsync/internal/domain/report"
	"github.com/erp/marketsync/internal/infrastructure/export"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReportService is the interactive surface of the report lifecycle
type ReportService interface {
	Create(ctx context.Context, t report.Type, req reportapp.CreateReportRequest) (*report.Report, error)
	Get(ctx context.Context, t report.Type, id uuid.UUID) (*report.Report, error)
	Request(ctx context.Context, t report.Type, id uuid.UUID) (*report.Report, error)
	Refresh(ctx context.Context, t report.Type, id uuid.UUID) (*report.Report, error)
	Fetch(ctx context.Context, t report.Type, id uuid.UUID) (*report.Report, error)
	Process(ctx context.Context, t report.Type, id uuid.UUID) (*report.Report, error)
	Delete(ctx context.Context, t report.Type, id uuid.UUID) error
	Logs(ctx context.Context, t report.Type, id uuid.UUID) ([]report.LogEntry, error)
	ImportLogs(ctx context.Context, t report.Type, sellerID uuid.UUID) ([]report.LogEntry, error)
	AutoImport(ctx context.Context, t report.Type, req reportapp.AutoImportRequest) (*reportapp.ImportResult, error)
	AutoProcess(ctx context.Context, t report.Type, sellerID uuid.UUID) (*reportapp.ProcessResult, error)
}

// ReportHandler handles the report lifecycle endpoints
type ReportHandler struct {
	BaseHandler
	service ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// RegisterRoutes mounts the report routes under /reports
func (h *ReportHandler) RegisterRoutes(api *gin.RouterGroup) {
	rg := api.Group("/reports")
	rg.POST("/:type", h.Create)
	rg.POST("/:type/auto-import", h.AutoImport)
	rg.POST("/:type/auto-process", h.AutoProcess)
	rg.GET("/:type/import-logs/:seller_id", h.ImportLogs)
	rg.GET("/:type/:id", h.Get)
	rg.DELETE("/:type/:id", h.Delete)
	rg.POST("/:type/:id/request", h.transition((ReportService).Request))
	rg.POST("/:type/:id/refresh", h.transition((ReportService).Refresh))
	rg.POST("/:type/:id/fetch", h.transition((ReportService).Fetch))
	rg.POST("/:type/:id/process", h.transition((ReportService).Process))
	rg.GET("/:type/:id/logs", h.Logs)
	rg.GET("/:type/:id/logs.xlsx", h.ExportLogs)
}

// reportType reads the :type path parameter; it answers 404 for unknown types
func (h *ReportHandler) reportType(c *gin.Context) (report.Type, bool) {
	t := report.Type(c.Param("type"))
	if !t.IsValid() {
		h.NotFound(c, fmt.Sprintf("unknown report type %q", c.Param("type")))
		return "", false
	}
	return t, true
}

func (h *ReportHandler) target(c *gin.Context) (report.Type, uuid.UUID, bool) {
	t, ok := h.reportType(c)
	if !ok {
		return "", uuid.Nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid report ID format")
		return "", uuid.Nil, false
	}
	return t, id, true
}

// Create godoc
// @Summary      Create a draft report
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        type path string true "Report type"
// @Param        request body reportapp.CreateReportRequest true "Report request"
// @Router       /reports/{type} [post]
func (h *ReportHandler) Create(c *gin.Context) {
	t, ok := h.reportType(c)
	if !ok {
		return
	}
	var req reportapp.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	rep, err := h.service.Create(c.Request.Context(), t, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, reportapp.ToReportResponse(rep))
}

// Get godoc
// @Summary      Get a report
// @Tags         reports
// @Produce      json
// @Router       /reports/{type}/{id} [get]
func (h *ReportHandler) Get(c *gin.Context) {
	t, id, ok := h.target(c)
	if !ok {
		return
	}
	rep, err := h.service.Get(c.Request.Context(), t, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reportapp.ToReportResponse(rep))
}

// transition adapts one of the lifecycle steps (request, refresh, fetch,
// process) to a handler answering the updated report
func (h *ReportHandler) transition(step func(ReportService, context.Context, report.Type, uuid.UUID) (*report.Report, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, id, ok := h.target(c)
		if !ok {
			return
		}
		rep, err := step(h.service, c.Request.Context(), t, id)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, reportapp.ToReportResponse(rep))
	}
}

// Delete godoc
// @Summary      Delete a report that was not processed
// @Tags         reports
// @Router       /reports/{type}/{id} [delete]
func (h *ReportHandler) Delete(c *gin.Context) {
	t, id, ok := h.target(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), t, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Logs godoc
// @Summary      List the audit lines of a report
// @Tags         reports
// @Produce      json
// @Router       /reports/{type}/{id}/logs [get]
func (h *ReportHandler) Logs(c *gin.Context) {
	t, id, ok := h.target(c)
	if !ok {
		return
	}
	entries, err := h.service.Logs(c.Request.Context(), t, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reportapp.ToLogEntryResponses(entries))
}

// ImportLogs godoc
// @Summary      List the import failures of a seller
// @Tags         reports
// @Produce      json
// @Router       /reports/{type}/import-logs/{seller_id} [get]
func (h *ReportHandler) ImportLogs(c *gin.Context) {
	t, ok := h.reportType(c)
	if !ok {
		return
	}
	sellerID, err := uuid.Parse(c.Param("seller_id"))
	if err != nil {
		h.BadRequest(c, "Invalid seller ID format")
		return
	}
	entries, err := h.service.ImportLogs(c.Request.Context(), t, sellerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reportapp.ToLogEntryResponses(entries))
}

// ExportLogs godoc
// @Summary      Download the audit lines of a report as a spreadsheet
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Router       /reports/{type}/{id}/logs.xlsx [get]
func (h *ReportHandler) ExportLogs(c *gin.Context) {
	t, id, ok := h.target(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	rep, err := h.service.Get(ctx, t, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	entries, err := h.service.Logs(ctx, t, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteAuditLog(&buf, rep, entries); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.AuditFileName(rep)))
	c.Data(http.StatusOK, export.ContentTypeXLSX, buf.Bytes())
}

// AutoImport godoc
// @Summary      Create and request the reports due for a seller
// @Tags         reports
// @Accept       json
// @Produce      json
// @Router       /reports/{type}/auto-import [post]
func (h *ReportHandler) AutoImport(c *gin.Context) {
	t, ok := h.reportType(c)
	if !ok {
		return
	}
	var req reportapp.AutoImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	result, err := h.service.AutoImport(c.Request.Context(), t, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// AutoProcess godoc
// @Summary      Poll, fetch and process the open reports of a seller
// @Tags         reports
// @Accept       json
// @Produce      json
// @Router       /reports/{type}/auto-process [post]
func (h *ReportHandler) AutoProcess(c *gin.Context) {
	t, ok := h.reportType(c)
	if !ok {
		return
	}
	var req reportapp.AutoProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	result, err := h.service.AutoProcess(c.Request.Context(), t, req.SellerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
