package handler

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"bazario/internal/service"
	"bazario/pkg/gateway"

	"github.com/gin-gonic/gin"
)

// WebhookHandler receives gateway event deliveries. The signature is checked
// over the raw body before anything is parsed, and every event id is recorded
// so redeliveries become no-ops. The gateway retries on non-2xx, so handler
// errors other than a bad signature still answer 200 once the event has been
// safely ignored.
type WebhookHandler struct {
	ledger  *service.LedgerService
	gateway gateway.Client
}

func NewWebhookHandler(ledger *service.LedgerService, gw gateway.Client) *WebhookHandler {
	return &WebhookHandler{ledger: ledger, gateway: gw}
}

// webhookEnvelope mirrors the gateway's event payload shape. Only the fields
// the ledger acts on are decoded.
type webhookEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Amount  int64  `json:"amount"`
			} `json:"entity"`
		} `json:"payment"`
		Refund struct {
			Entity struct {
				ID        string `json:"id"`
				PaymentID string `json:"payment_id"`
			} `json:"entity"`
		} `json:"refund"`
		Payout struct {
			Entity struct {
				ID            string `json:"id"`
				ReferenceID   string `json:"reference_id"`
				Status        string `json:"status"`
				FailureReason string `json:"failure_reason"`
			} `json:"entity"`
		} `json:"payout"`
	} `json:"payload"`
}

func (h *WebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}
	signature := c.GetHeader("X-Razorpay-Signature")
	if !h.gateway.VerifyWebhookSignature(body, signature) {
		log.Printf("[Webhook] rejected delivery with bad signature")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
		return
	}

	ctx := c.Request.Context()
	eventID := c.GetHeader("X-Razorpay-Event-Id")
	done, err := h.ledger.IsEventProcessed(ctx, eventID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "event lookup failed"})
		return
	}
	if done {
		c.JSON(http.StatusOK, gin.H{"received": true, "duplicate": true})
		return
	}

	switch env.Event {
	case "payment.captured":
		p := env.Payload.Payment.Entity
		err = h.ledger.ApplyPaymentCaptured(ctx, p.OrderID, p.ID, p.Amount)
	case "payment.failed":
		err = h.ledger.ApplyPaymentFailed(ctx, env.Payload.Payment.Entity.OrderID)
	case "refund.processed":
		err = h.ledger.ApplyRefundProcessed(ctx, env.Payload.Refund.Entity.ID)
	case "payout.processed":
		p := env.Payload.Payout.Entity
		err = h.ledger.ApplyPayoutProcessed(ctx, p.ID, p.ReferenceID)
	case "payout.failed", "payout.reversed", "payout.rejected":
		p := env.Payload.Payout.Entity
		reason := p.FailureReason
		if reason == "" {
			reason = env.Event
		}
		err = h.ledger.ApplyPayoutFailed(ctx, p.ID, p.ReferenceID, reason)
	default:
		log.Printf("[Webhook] ignoring event %q", env.Event)
	}
	if err != nil {
		log.Printf("[Webhook] apply %s: %v", env.Event, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "event apply failed"})
		return
	}

	if err := h.ledger.RecordEvent(ctx, eventID, env.Event); err != nil {
		log.Printf("[Webhook] record %s: %v", eventID, err)
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
