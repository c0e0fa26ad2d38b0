package handlers

import (
	"net/http"
	"time"

	"github.com/SAP-F-2025/form-service/internal/repositories"
	"github.com/SAP-F-2025/form-service/internal/services"
	"github.com/SAP-F-2025/form-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ResponseHandler struct {
	BaseHandler
	responseService services.ResponseService
}

func NewResponseHandler(responseService services.ResponseService, logger utils.Logger) *ResponseHandler {
	return &ResponseHandler{
		BaseHandler:     NewBaseHandler(logger),
		responseService: responseService,
	}
}

// SubmitResponse records a respondent's answers
// @Summary Submit response
// @Description Validates and normalizes every answer, then stores the response
// @Tags responses
// @Accept json
// @Produce json
// @Param id path uint true "Form ID"
// @Param response body services.SubmitResponseRequest true "Answers"
// @Success 201 {object} models.Response
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /forms/{id}/responses [post]
func (h *ResponseHandler) SubmitResponse(c *gin.Context) {
	formID := h.parseIDParam(c, "id")
	if formID == 0 {
		return
	}

	var req services.SubmitResponseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Submitting response", "form_id", formID, "answers", len(req.Answers), "anonymous", req.IsAnonymous)

	response, err := h.responseService.Submit(c.Request.Context(), formID, &req, h.respondent(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// ListResponses lists the responses collected by a form
// @Summary List responses
// @Tags responses
// @Produce json
// @Param id path uint true "Form ID"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Param is_anonymous query bool false "Only anonymous or only named responses"
// @Param date_from query string false "RFC3339 lower bound"
// @Param date_to query string false "RFC3339 upper bound"
// @Success 200 {object} services.ResponseListResponse
// @Router /forms/{id}/responses [get]
func (h *ResponseHandler) ListResponses(c *gin.Context) {
	formID := h.parseIDParam(c, "id")
	if formID == 0 {
		return
	}

	filters, ok := h.parseResponseFilters(c)
	if !ok {
		return
	}

	responses, err := h.responseService.ListByForm(c.Request.Context(), formID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses)
}

// GetResponse retrieves a single response with its answers
// @Summary Get response
// @Tags responses
// @Produce json
// @Param id path uint true "Response ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} ErrorResponse
// @Router /responses/{id} [get]
func (h *ResponseHandler) GetResponse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	response, err := h.responseService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *ResponseHandler) parseResponseFilters(c *gin.Context) (repositories.ResponseFilters, bool) {
	limit, offset := h.parsePage(c)
	filters := repositories.ResponseFilters{
		Limit:       limit,
		Offset:      offset,
		IsAnonymous: h.parseBoolQueryPtr(c, "is_anonymous"),
	}

	var ok bool
	if filters.DateFrom, ok = h.parseTimeQuery(c, "date_from"); !ok {
		return filters, false
	}
	if filters.DateTo, ok = h.parseTimeQuery(c, "date_to"); !ok {
		return filters, false
	}

	return filters, true
}

func (h *ResponseHandler) parseTimeQuery(c *gin.Context, param string) (*time.Time, bool) {
	raw := c.Query(param)
	if raw == "" {
		return nil, true
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: err.Error(),
		})
		return nil, false
	}
	return &parsed, true
}
