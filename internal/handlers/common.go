package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/SAP-F-2025/form-service/internal/auth"
	apperrors "github.com/SAP-F-2025/form-service/internal/errors"
	"github.com/SAP-F-2025/form-service/internal/services"
	"github.com/SAP-F-2025/form-service/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs incoming HTTP requests through the request-scoped logger
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := append([]interface{}{"user_id", h.userID(c)}, additionalFields...)
	utils.GetLoggerFromContext(c, h.logger).Info(message, fields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := append([]interface{}{"user_id", h.userID(c)}, additionalFields...)
	utils.GetLoggerFromContext(c, h.logger).LogError(err, message, fields...)
}

func (h *BaseHandler) userID(c *gin.Context) string {
	if identity := auth.IdentityFrom(c); identity != nil {
		return identity.ID
	}
	return ""
}

// respondent maps the token identity, if any, to the service type
func (h *BaseHandler) respondent(c *gin.Context) *services.Respondent {
	identity := auth.IdentityFrom(c)
	if identity == nil {
		return nil
	}
	return &services.Respondent{ID: identity.ID, Name: identity.Name, Email: identity.Email}
}

// ===== PARAM HELPERS =====

func (h *BaseHandler) parseIDParam(c *gin.Context, param string) uint {
	idStr := c.Param(param)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		details := "ID must be a positive integer"
		if err != nil {
			details = err.Error()
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: details,
		})
		return 0
	}
	return uint(id)
}

func (h *BaseHandler) parseIntQuery(c *gin.Context, param string, defaultValue int) int {
	valueStr := c.Query(param)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func (h *BaseHandler) parseBoolQueryPtr(c *gin.Context, param string) *bool {
	valueStr := c.Query(param)
	if valueStr == "" {
		return nil
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return nil
	}
	return &value
}

// parsePage turns page/size query params into limit and offset
func (h *BaseHandler) parsePage(c *gin.Context) (limit, offset int) {
	page := h.parseIntQuery(c, "page", defaultPage)
	size := h.parseIntQuery(c, "size", defaultPageSize)
	if page < 1 {
		page = defaultPage
	}
	if size < 1 {
		size = defaultPageSize
	}
	return size, (page - 1) * size
}

func (h *BaseHandler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return false
	}
	return true
}

// ===== ERROR MAPPING =====

func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	// Handle custom error types first
	var definitionErr *apperrors.InvalidDefinitionError
	if errors.As(err, &definitionErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid form definition",
			Details: definitionErr.Issues,
			Code:    "INVALID_DEFINITION",
		})
		return
	}

	var answerErrs apperrors.AnswerValidationErrors
	if errors.As(err, &answerErrs) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Response validation failed",
			Details: answerErrs,
			Code:    "VALIDATION_FAILED",
		})
		return
	}

	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
			Code:    "VALIDATION_FAILED",
		})
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: businessRuleError.Message,
			Details: map[string]interface{}{
				"rule":    businessRuleError.Rule,
				"context": businessRuleError.Context,
			},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrFormNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Form not found"})
	case errors.Is(err, services.ErrQuestionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Question not found"})
	case errors.Is(err, services.ErrResponseNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Response not found"})
	case errors.Is(err, services.ErrFormNotEditable):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Form cannot be edited in current status"})
	case errors.Is(err, services.ErrFormHasResponses):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Form has responses - questions and options cannot be removed"})
	case errors.Is(err, services.ErrDuplicateResponse):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Respondent already submitted this form"})
	case errors.Is(err, services.ErrFormNotAcceptingResponses):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Form is not accepting responses"})
	case errors.Is(err, services.ErrInvalidStatusTransition):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Message: "Invalid form status transition", Details: err.Error()})
	case errors.Is(err, services.ErrAnonymousNotAllowed):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Form does not accept anonymous responses"})
	case errors.Is(err, services.ErrUnsupportedExportFormat):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Unsupported export format", Details: err.Error()})
	// Generic errors
	case errors.Is(err, services.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed", Details: err.Error()})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Unauthorized access"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Forbidden - insufficient permissions"})
	case errors.Is(err, services.ErrBadRequest):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Bad request"})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Resource conflict"})
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Resource not found"})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}

// ===== MIDDLEWARE =====

// RequestID reuses the caller's X-Request-ID or generates one, and exposes it to services through the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(utils.RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(utils.RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), services.RequestIDKey, requestID))
		c.Next()
	}
}

// HealthCheck reports liveness
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "form-service",
	})
}
