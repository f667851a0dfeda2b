package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/maintenance-service/internal/service"
)

// StartNotificationWorker registers event handlers and drains the outbound
// queue until the context is cancelled.
func StartNotificationWorker(ctx context.Context, notifications *service.NotificationService, logger *zap.Logger) {
	if notifications == nil {
		return
	}
	notifications.RegisterHandlers()

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Info("notification worker stopped")
				return
			case notification := <-notifications.Queue():
				notifications.Deliver(ctx, notification)
			}
		}
	}()
}
