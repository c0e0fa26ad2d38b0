package handlers

import (
	"net/http"
	"strings"

	"github.com/SAP-F-2025/form-service/internal/models"
	"github.com/SAP-F-2025/form-service/internal/repositories"
	"github.com/SAP-F-2025/form-service/internal/services"
	"github.com/SAP-F-2025/form-service/internal/utils"
	"github.com/SAP-F-2025/form-service/internal/validator"
	"github.com/gin-gonic/gin"
)

type FormHandler struct {
	BaseHandler
	formService services.FormService
	validator   *validator.Validator
}

func NewFormHandler(formService services.FormService, validator *validator.Validator, logger utils.Logger) *FormHandler {
	return &FormHandler{
		BaseHandler: NewBaseHandler(logger),
		formService: formService,
		validator:   validator,
	}
}

// CreateForm creates a new form
// @Summary Create form
// @Description Creates a form together with its ordered questions
// @Tags forms
// @Accept json
// @Produce json
// @Param form body services.CreateFormRequest true "Form definition"
// @Success 201 {object} models.Form
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /forms [post]
func (h *FormHandler) CreateForm(c *gin.Context) {
	var req services.CreateFormRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating form", "title", req.Title, "questions", len(req.Questions))

	form, err := h.formService.Create(c.Request.Context(), &req, h.userID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, form)
}

// GetForm retrieves a form with its questions
// @Summary Get form
// @Tags forms
// @Produce json
// @Param id path uint true "Form ID"
// @Success 200 {object} models.Form
// @Failure 404 {object} ErrorResponse
// @Router /forms/{id} [get]
func (h *FormHandler) GetForm(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	form, err := h.formService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, form)
}

// ListForms lists forms with filtering and pagination
// @Summary List forms
// @Tags forms
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Param status query string false "Form status"
// @Param created_by query string false "Creator"
// @Param search query string false "Title search"
// @Success 200 {object} services.FormListResponse
// @Router /forms [get]
func (h *FormHandler) ListForms(c *gin.Context) {
	forms, err := h.formService.List(c.Request.Context(), h.parseFormFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, forms)
}

// UpdateForm replaces a form definition
// @Summary Update form
// @Tags forms
// @Accept json
// @Produce json
// @Param id path uint true "Form ID"
// @Param form body services.UpdateFormRequest true "Form definition"
// @Success 200 {object} models.Form
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /forms/{id} [put]
func (h *FormHandler) UpdateForm(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateFormRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating form", "form_id", id)

	form, err := h.formService.Update(c.Request.Context(), id, &req, h.userID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, form)
}

// DeleteForm deletes a form and everything under it
// @Summary Delete form
// @Tags forms
// @Param id path uint true "Form ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /forms/{id} [delete]
func (h *FormHandler) DeleteForm(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting form", "form_id", id)

	if err := h.formService.Delete(c.Request.Context(), id, h.userID(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UpdateFormStatus moves a form through its lifecycle
// @Summary Update form status
// @Tags forms
// @Accept json
// @Produce json
// @Param id path uint true "Form ID"
// @Param status body services.UpdateStatusRequest true "New status"
// @Success 200 {object} models.Form
// @Failure 422 {object} ErrorResponse
// @Router /forms/{id}/status [put]
func (h *FormHandler) UpdateFormStatus(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating form status", "form_id", id, "status", req.Status)

	form, err := h.formService.UpdateStatus(c.Request.Context(), id, req.Status, h.userID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, form)
}

// ReorderQuestions rewrites question order from a full permutation of ids
// @Summary Reorder questions
// @Tags forms
// @Accept json
// @Produce json
// @Param id path uint true "Form ID"
// @Param order body services.ReorderQuestionsRequest true "Question ids in their new order"
// @Success 200 {object} models.Form
// @Failure 400 {object} ErrorResponse
// @Router /forms/{id}/questions/reorder [put]
func (h *FormHandler) ReorderQuestions(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.ReorderQuestionsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	form, err := h.formService.ReorderQuestions(c.Request.Context(), id, req.QuestionIDs, h.userID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, form)
}

// SetCorrectOption marks or unmarks an option as correct
// @Summary Set correct option
// @Tags forms
// @Accept json
// @Produce json
// @Param id path uint true "Form ID"
// @Param question_id path uint true "Question ID"
// @Param option body services.SetCorrectOptionRequest true "Option value"
// @Success 200 {object} models.Question
// @Failure 404 {object} ErrorResponse
// @Router /forms/{id}/questions/{question_id}/options/correct [put]
func (h *FormHandler) SetCorrectOption(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	questionID := h.parseIDParam(c, "question_id")
	if questionID == 0 {
		return
	}

	var req services.SetCorrectOptionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	question, err := h.formService.SetCorrectOption(c.Request.Context(), id, questionID, req.OptionValue, req.IsCorrect, h.userID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// ValidateForm compiles a definition without saving it
// @Summary Validate form definition
// @Tags forms
// @Accept json
// @Produce json
// @Param form body services.CreateFormRequest true "Form definition"
// @Success 200 {object} services.DefinitionReport
// @Router /forms/validate [post]
func (h *FormHandler) ValidateForm(c *gin.Context) {
	var req services.CreateFormRequest
	if !h.bindJSON(c, &req) {
		return
	}

	report, err := h.formService.ValidateDefinition(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *FormHandler) parseFormFilters(c *gin.Context) repositories.FormFilters {
	limit, offset := h.parsePage(c)
	filters := repositories.FormFilters{
		Limit:     limit,
		Offset:    offset,
		Search:    strings.TrimSpace(c.Query("search")),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if status := c.Query("status"); status != "" {
		formStatus := models.FormStatus(status)
		filters.Status = &formStatus
	}
	if createdBy := c.Query("created_by"); createdBy != "" {
		filters.CreatedBy = &createdBy
	}

	return filters
}
