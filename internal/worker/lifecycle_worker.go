package worker

import (
	"github.com/spec-kit/helpdesk-service/internal/lifecycle"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// StartLifecycleWorker registers the lifecycle engine's event handlers.
func StartLifecycleWorker(engine *lifecycle.Engine) {
	if engine == nil {
		return
	}
	engine.RegisterHandlers()
}

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
