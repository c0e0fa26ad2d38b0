package handlers

import (
	"fmt"
	"net/http"

	"github.com/SAP-F-2025/form-service/internal/services"
	"github.com/SAP-F-2025/form-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	BaseHandler
	analyticsService services.AnalyticsService
	exportService    services.ExportService
}

func NewAnalyticsHandler(analyticsService services.AnalyticsService, exportService services.ExportService, logger utils.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		BaseHandler:      NewBaseHandler(logger),
		analyticsService: analyticsService,
		exportService:    exportService,
	}
}

// GetFormAnalytics returns the per-question summaries of a form
// @Summary Get form analytics
// @Tags analytics
// @Produce json
// @Param id path uint true "Form ID"
// @Success 200 {object} services.FormAnalytics
// @Failure 404 {object} ErrorResponse
// @Router /forms/{id}/analytics [get]
func (h *AnalyticsHandler) GetFormAnalytics(c *gin.Context) {
	formID := h.parseIDParam(c, "id")
	if formID == 0 {
		return
	}

	analytics, err := h.analyticsService.GetFormAnalytics(c.Request.Context(), formID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}

// GetQuestionAnalytics returns the summary of a single question
// @Summary Get question analytics
// @Tags analytics
// @Produce json
// @Param id path uint true "Form ID"
// @Param question_id path uint true "Question ID"
// @Success 200 {object} services.QuestionSummary
// @Failure 404 {object} ErrorResponse
// @Router /forms/{id}/analytics/questions/{question_id} [get]
func (h *AnalyticsHandler) GetQuestionAnalytics(c *gin.Context) {
	formID := h.parseIDParam(c, "id")
	if formID == 0 {
		return
	}
	questionID := h.parseIDParam(c, "question_id")
	if questionID == 0 {
		return
	}

	summary, err := h.analyticsService.GetQuestionAnalytics(c.Request.Context(), formID, questionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ExportResponses downloads every response as a CSV or XLSX file
// @Summary Export responses
// @Tags analytics
// @Produce text/csv
// @Param id path uint true "Form ID"
// @Param format query string false "csv or xlsx" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Router /forms/{id}/export [get]
func (h *AnalyticsHandler) ExportResponses(c *gin.Context) {
	formID := h.parseIDParam(c, "id")
	if formID == 0 {
		return
	}

	format, err := services.ParseExportFormat(c.Query("format"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Exporting responses", "form_id", formID, "format", format)

	file, err := h.exportService.Export(c.Request.Context(), formID, format)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
