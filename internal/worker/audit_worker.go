package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-gateway/internal/events"
)

var auditedEvents = []events.EventType{
	events.EventUserRegistered,
	events.EventUserLoggedIn,
	events.EventVendorRegistered,
	events.EventVendorLoggedIn,
	events.EventLoginFailed,
	events.EventPaymentWebhookReceived,
}

// StartAuditWorker subscribes a structured audit logger to authentication and payment events.
func StartAuditWorker(dispatcher events.Dispatcher, logger *zap.Logger) {
	if dispatcher == nil || logger == nil {
		return
	}
	audit := logger.Named("audit")
	for _, eventType := range auditedEvents {
		dispatcher.Subscribe(eventType, func(_ context.Context, e events.Event) error {
			fields := []zap.Field{
				zap.String("event_id", e.ID),
				zap.String("event", string(e.Type)),
				zap.Time("at", e.Timestamp),
			}
			if e.Actor.ID != "" {
				fields = append(fields,
					zap.String("actor_class", string(e.Actor.Class)),
					zap.String("actor_id", e.Actor.ID),
					zap.String("actor_role", e.Actor.Role),
				)
			}
			if e.Payload != nil {
				fields = append(fields, zap.Any("payload", e.Payload))
			}
			level := zap.InfoLevel
			if e.Type == events.EventLoginFailed {
				level = zap.WarnLevel
			}
			audit.Log(level, "auth event", fields...)
			return nil
		})
	}
}
