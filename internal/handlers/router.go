package handlers

import (
	"github.com/SAP-F-2025/form-service/internal/auth"
	"github.com/SAP-F-2025/form-service/internal/services"
	"github.com/SAP-F-2025/form-service/internal/utils"
	"github.com/SAP-F-2025/form-service/internal/validator"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	formHandler      *FormHandler
	responseHandler  *ResponseHandler
	analyticsHandler *AnalyticsHandler
	tokenParser      auth.TokenParser
	logger           utils.Logger
}

// NewHandlerManager wires handlers to services. tokenParser may be nil, in which case every caller is anonymous.
func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	tokenParser auth.TokenParser,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		formHandler:      NewFormHandler(serviceManager.Form(), validator, logger),
		responseHandler:  NewResponseHandler(serviceManager.Response(), logger),
		analyticsHandler: NewAnalyticsHandler(serviceManager.Analytics(), serviceManager.Export(), logger),
		tokenParser:      tokenParser,
		logger:           logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.Use(RequestID(), utils.LoggerMiddleware(hm.logger))

	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(auth.Middleware(hm.tokenParser, hm.logger))
	{
		// Form routes
		forms := v1.Group("/forms")
		{
			forms.POST("", hm.formHandler.CreateForm)
			forms.GET("", hm.formHandler.ListForms)
			forms.POST("/validate", hm.formHandler.ValidateForm)
			forms.GET("/:id", hm.formHandler.GetForm)
			forms.PUT("/:id", hm.formHandler.UpdateForm)
			forms.DELETE("/:id", hm.formHandler.DeleteForm)
			forms.PUT("/:id/status", hm.formHandler.UpdateFormStatus)

			// Question management
			forms.PUT("/:id/questions/reorder", hm.formHandler.ReorderQuestions)
			forms.PUT("/:id/questions/:question_id/options/correct", hm.formHandler.SetCorrectOption)

			// Responses
			forms.POST("/:id/responses", hm.responseHandler.SubmitResponse)
			forms.GET("/:id/responses", hm.responseHandler.ListResponses)

			// Analytics and export
			forms.GET("/:id/analytics", hm.analyticsHandler.GetFormAnalytics)
			forms.GET("/:id/analytics/questions/:question_id", hm.analyticsHandler.GetQuestionAnalytics)
			forms.GET("/:id/export", hm.analyticsHandler.ExportResponses)
		}

		v1.GET("/responses/:id", hm.responseHandler.GetResponse)
	}
}
