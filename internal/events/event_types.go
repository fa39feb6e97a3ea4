package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/marketplace-gateway/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered         EventType = "user.registered"
	EventUserLoggedIn           EventType = "user.logged_in"
	EventVendorRegistered       EventType = "vendor.registered"
	EventVendorLoggedIn         EventType = "vendor.logged_in"
	EventLoginFailed            EventType = "auth.login_failed"
	EventPaymentWebhookReceived EventType = "payment.webhook_received"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Class domain.ActorClass `json:"class,omitempty"`
	ID    string            `json:"id,omitempty"`
	Role  string            `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// New stamps an event with an id and the current time.
func New(eventType EventType, actor Actor, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// LoginFailedPayload payload. Email is the submitted address, which may not exist.
type LoginFailedPayload struct {
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

// PaymentWebhookPayload payload.
type PaymentWebhookPayload struct {
	Provider  string `json:"provider"`
	Event     string `json:"event"`
	Reference string `json:"reference,omitempty"`
	Bytes     int    `json:"bytes"`
}
