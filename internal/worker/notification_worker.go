package worker

import (
	"go.uber.org/zap"

	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/service"
)

// StartNotificationWorker subscribes the notification handlers to the
// dispatcher. Delivery runs inline with the publishing request.
func StartNotificationWorker(notificationService *service.NotificationService, logger *zap.Logger) {
	if notificationService == nil {
		logger.Warn("notification worker disabled")
		return
	}
	notificationService.RegisterHandlers()
	logger.Info("notification worker registered")
}
