package services

import (
	"context"
	"log/slog"

	"github.com/SAP-F-2025/form-service/internal/cache"
	"github.com/SAP-F-2025/form-service/internal/events"
)

// publishEvent sends a domain event after the owning transaction committed. Delivery failures
// are logged and never undo the write.
func publishEvent(ctx context.Context, publisher events.EventPublisher, logger *slog.Logger, event *events.FormEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.PublishFormEvent(ctx, event); err != nil {
		logger.Warn("Failed to publish form event",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err)
	}
}

// invalidateAnalytics drops every cached summary of a form. A nil cache is a no-op.
func invalidateAnalytics(ctx context.Context, analytics *cache.AnalyticsCache, logger *slog.Logger, formID uint) {
	if analytics == nil {
		return
	}
	if err := analytics.Invalidate(ctx, formID); err != nil {
		logger.Warn("Failed to invalidate analytics cache", "form_id", formID, "error", err)
	}
}
