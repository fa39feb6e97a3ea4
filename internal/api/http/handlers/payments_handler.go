package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-gateway/internal/payments"
)

// PaymentsHandler receives payment provider callbacks.
type PaymentsHandler struct {
	webhooks *payments.WebhookService
}

// NewPaymentsHandler constructs handler.
func NewPaymentsHandler(webhooks *payments.WebhookService) *PaymentsHandler {
	return &PaymentsHandler{webhooks: webhooks}
}

// PaystackWebhook handles POST /api/payments/paystack/webhook. It must be
// mounted ahead of the body parsing stage: the signature covers the exact bytes sent.
func (h *PaymentsHandler) PaystackWebhook(c *fiber.Ctx) error {
	body := append([]byte(nil), c.Body()...)
	if _, err := h.webhooks.Handle(c.UserContext(), body, c.Get(payments.SignatureHeader)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"received": true})
}
