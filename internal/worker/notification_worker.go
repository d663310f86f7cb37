package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/service"
)

// StartNotificationWorker wires the notification fan-out onto the
// event dispatcher. Delivery happens on the dispatcher's goroutines;
// there is no polling loop to run here.
func StartNotificationWorker(notificationService *service.NotificationService, logger *zap.Logger) {
	if notificationService == nil {
		logger.Warn("notification service absent; outbound notifications disabled")
		return
	}
	notificationService.RegisterHandlers()
	logger.Info("notification worker subscribed",
		zap.Strings("events", []string{"grievance_created", "grievance_status_changed"}))
}
