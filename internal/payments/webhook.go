package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-gateway/internal/domain"
	"github.com/spec-kit/marketplace-gateway/internal/events"
	apperrors "github.com/spec-kit/marketplace-gateway/pkg/util"
)

// SignatureHeader is the header Paystack signs webhook bodies into.
const SignatureHeader = "X-Paystack-Signature"

// Verifier decides whether body was signed by the payment provider. body is
// exactly the bytes received on the wire.
type Verifier interface {
	Verify(body []byte, signature string) bool
}

// HMACVerifier checks a hex encoded HMAC-SHA512 of the body.
type HMACVerifier struct {
	secret []byte
}

// NewHMACVerifier builds a verifier; an empty secret rejects every request.
func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

// Sign returns the signature the provider would send for body.
func (v *HMACVerifier) Sign(body []byte) string {
	mac := hmac.New(sha512.New, v.secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (v *HMACVerifier) Verify(body []byte, signature string) bool {
	if len(v.secret) == 0 || signature == "" {
		return false
	}
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false
	}
	mac := hmac.New(sha512.New, v.secret)
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), got)
}

// WebhookService authenticates provider callbacks and fans them out as events.
type WebhookService struct {
	verifier Verifier
	events   events.Dispatcher
	logger   *zap.Logger
}

// NewWebhookService constructs the service.
func NewWebhookService(verifier Verifier, dispatcher events.Dispatcher, logger *zap.Logger) *WebhookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookService{verifier: verifier, events: dispatcher, logger: logger}
}

// Handle verifies the raw body against signature, then decodes and publishes it.
func (s *WebhookService) Handle(ctx context.Context, body []byte, signature string) (*domain.PaymentWebhook, error) {
	if !s.verifier.Verify(body, signature) {
		return nil, apperrors.NewUnauthorized("invalid webhook signature")
	}

	var hook domain.PaymentWebhook
	if err := json.Unmarshal(body, &hook); err != nil {
		return nil, apperrors.NewValidationError("malformed webhook payload", nil)
	}

	payload := events.PaymentWebhookPayload{
		Provider:  "paystack",
		Event:     hook.Event,
		Reference: hook.Reference(),
		Bytes:     len(body),
	}
	if s.events != nil {
		if err := s.events.Publish(ctx, events.New(events.EventPaymentWebhookReceived, events.Actor{}, payload)); err != nil {
			s.logger.Warn("webhook event handler failed", zap.String("event", hook.Event), zap.Error(err))
		}
	}
	return &hook, nil
}
