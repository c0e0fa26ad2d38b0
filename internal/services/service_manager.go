package services

import (
	"log/slog"

	"github.com/SAP-F-2025/form-service/internal/cache"
	"github.com/SAP-F-2025/form-service/internal/events"
	"github.com/SAP-F-2025/form-service/internal/repositories"
	"github.com/SAP-F-2025/form-service/internal/validator"
)

// ServiceManager exposes every service to the transport layer
type ServiceManager interface {
	Form() FormService
	Response() ResponseService
	Analytics() AnalyticsService
	Export() ExportService
}

type serviceManager struct {
	formService      FormService
	responseService  ResponseService
	analyticsService AnalyticsService
	exportService    ExportService
}

// NewServiceManager wires the services. analytics and publisher may be nil, which disables
// caching and event delivery respectively.
func NewServiceManager(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
	analytics *cache.AnalyticsCache,
	publisher events.EventPublisher,
) ServiceManager {
	return &serviceManager{
		formService:      NewFormService(repo, logger, validator, analytics, publisher),
		responseService:  NewResponseService(repo, logger, validator, analytics, publisher),
		analyticsService: NewAnalyticsService(repo, logger, analytics),
		exportService:    NewExportService(repo, logger),
	}
}

func (m *serviceManager) Form() FormService           { return m.formService }
func (m *serviceManager) Response() ResponseService   { return m.responseService }
func (m *serviceManager) Analytics() AnalyticsService { return m.analyticsService }
func (m *serviceManager) Export() ExportService       { return m.exportService }
