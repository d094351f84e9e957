package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/service"
)

// StartNotificationWorker attaches the Redis forwarder to the in-process
// dispatcher. Forwarding runs inline with Publish; there is no goroutine to
// stop on shutdown.
func StartNotificationWorker(notifications *service.NotificationService, logger *zap.Logger) int {
	if notifications == nil {
		return 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	subscribed := notifications.RegisterHandlers()
	logger.Info("notification worker started",
		zap.Int("event_types", subscribed),
		zap.String("channel", notifications.Channel()))
	return subscribed
}
