package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"bazario/internal/domain"
	"bazario/internal/models"

	"gorm.io/gorm"
)

// Webhook reconciliation: each gateway event is matched to its ledger row via
// the stored correlation id and applied at most once. Two layers enforce
// that: the webhook_events dedup table keyed by gateway event id, and status
// guards on every transition so a replay that slips past the first layer
// still ends up a no-op.

// IsEventProcessed reports whether a gateway event id was already applied.
func (s *LedgerService) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return false, nil
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&models.WebhookEvent{}).
		Where("event_id = ?", eventID).Count(&count).Error
	return count > 0, err
}

// RecordEvent remembers a processed gateway event id.
func (s *LedgerService) RecordEvent(ctx context.Context, eventID, eventType string) error {
	if eventID == "" {
		return nil
	}
	err := s.db.WithContext(ctx).Create(&models.WebhookEvent{EventID: eventID, EventType: eventType}).Error
	if err != nil {
		// A concurrent delivery recorded it first; the effects are themselves
		// idempotent so this is harmless.
		log.Printf("[Webhook] record event %s: %v", eventID, err)
	}
	return nil
}

// ApplyPaymentCaptured credits the top-up for an asynchronously captured
// payment. Shares the paymentID-idempotent credit path with VerifyTopup.
func (s *LedgerService) ApplyPaymentCaptured(ctx context.Context, orderID, paymentID string, amountPaise int64) error {
	var order models.TopupOrder
	err := s.db.WithContext(ctx).Where("gateway_order_id = ?", orderID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Not a wallet top-up order (e.g. a direct listing payment); ignore.
		log.Printf("[Webhook] payment.captured for unknown order %s", orderID)
		return nil
	}
	if err != nil {
		return err
	}
	if amountPaise != 0 && amountPaise != order.AmountPaise {
		return fmt.Errorf("payment.captured amount %d does not match order %s amount %d", amountPaise, orderID, order.AmountPaise)
	}
	_, err = s.CreditTopup(ctx, order.UserID, orderID, paymentID, order.AmountPaise)
	return err
}

// ApplyPaymentFailed marks the top-up order failed. No balance was moved.
func (s *LedgerService) ApplyPaymentFailed(ctx context.Context, orderID string) error {
	return s.db.WithContext(ctx).Model(&models.TopupOrder{}).
		Where("gateway_order_id = ? AND status = ?", orderID, domain.TopupStatusCreated).
		Update("status", domain.TopupStatusFailed).Error
}

// ApplyRefundProcessed completes a PENDING refund row and credits the wallet.
// A refund already settled synchronously is a no-op.
func (s *LedgerService) ApplyRefundProcessed(ctx context.Context, refundID string) error {
	var userID uint
	var amount int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txn models.WalletTransaction
		err := tx.Where("gateway_refund_id = ?", refundID).First(&txn).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[Webhook] refund.processed for unknown refund %s", refundID)
			return nil
		}
		if err != nil {
			return err
		}
		if txn.Status != domain.TxStatusPending {
			return nil
		}
		if err := creditBalance(tx, txn.UserID, txn.AmountPaise); err != nil {
			return err
		}
		w, err := reloadWallet(tx, txn.UserID)
		if err != nil {
			return err
		}
		userID, amount = txn.UserID, txn.AmountPaise
		// The pending row carried the anticipated balances; settle it with
		// the balances actually observed at credit time.
		return tx.Model(&models.WalletTransaction{}).Where("id = ?", txn.ID).
			Updates(map[string]interface{}{
				"status":               domain.TxStatusCompleted,
				"balance_before_paise": w.BalancePaise - txn.AmountPaise,
				"balance_after_paise":  w.BalancePaise,
			}).Error
	})
	if err != nil {
		return err
	}
	if userID != 0 {
		if w, werr := reloadWallet(s.db, userID); werr == nil {
			s.notifier.WalletRefunded(w, amount)
		}
	}
	return nil
}

// ApplyPayoutProcessed confirms a payout the gateway settled. Normally the
// synchronous process path has already completed the request and this is a
// no-op; it also recovers a payout stuck in PROCESSING when finalization
// failed after the gateway call succeeded.
func (s *LedgerService) ApplyPayoutProcessed(ctx context.Context, gatewayPayoutID, referenceID string) error {
	p, err := s.findPayout(ctx, gatewayPayoutID, referenceID)
	if err != nil || p == nil {
		return err
	}
	if p.Status != domain.PayoutStatusProcessing {
		return nil
	}
	if err := s.finalizePayout(ctx, p, 0, p.GatewayContactID, p.GatewayFundAccountID, gatewayPayoutID); err != nil {
		return err
	}
	s.notifyWallet(p.UserID)
	return nil
}

// ApplyPayoutFailed handles payout.failed and payout.reversed. A payout still
// PROCESSING reverts to PENDING with the hold intact; a payout that had
// already completed gets the funds returned with a compensating credit.
func (s *LedgerService) ApplyPayoutFailed(ctx context.Context, gatewayPayoutID, referenceID, reason string) error {
	p, err := s.findPayout(ctx, gatewayPayoutID, referenceID)
	if err != nil || p == nil {
		return err
	}
	switch p.Status {
	case domain.PayoutStatusProcessing:
		s.revertPayoutToPending(p.ID, reason)
		return nil
	case domain.PayoutStatusCompleted:
		var w *models.Wallet
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.PayoutRequest{}).
				Where("id = ? AND status = ?", p.ID, domain.PayoutStatusCompleted).
				Updates(map[string]interface{}{
					"status":         domain.PayoutStatusFailed,
					"failure_reason": reason,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return nil
			}
			if err := creditBalance(tx, p.UserID, p.AmountPaise); err != nil {
				return err
			}
			var err error
			if w, err = reloadWallet(tx, p.UserID); err != nil {
				return err
			}
			txn := models.WalletTransaction{
				UserID:             p.UserID,
				Type:               domain.TxTypeCreditRefund,
				AmountPaise:        p.AmountPaise,
				BalanceBeforePaise: w.BalancePaise - p.AmountPaise,
				BalanceAfterPaise:  w.BalancePaise,
				Status:             domain.TxStatusCompleted,
				GatewayPayoutID:    gatewayPayoutID,
				PayoutRequestID:    &p.ID,
				Metadata:           metadataJSON(map[string]interface{}{"reason": "payout " + reason}),
			}
			return tx.Create(&txn).Error
		})
		if err != nil {
			return err
		}
		if w != nil {
			s.notifier.WalletRefunded(w, p.AmountPaise)
		}
		return nil
	default:
		// already failed/closed; replay is a no-op
		return nil
	}
}

func (s *LedgerService) findPayout(ctx context.Context, gatewayPayoutID, referenceID string) (*models.PayoutRequest, error) {
	var p models.PayoutRequest
	err := s.db.WithContext(ctx).Where("gateway_payout_id = ?", gatewayPayoutID).First(&p).Error
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	// Fall back to our reference id ("payout_<id>") for payouts whose gateway
	// id never got recorded.
	var id uint
	if _, serr := fmt.Sscanf(strings.TrimSpace(referenceID), "payout_%d", &id); serr != nil || id == 0 {
		log.Printf("[Webhook] payout event for unknown payout %s (ref %q)", gatewayPayoutID, referenceID)
		return nil, nil
	}
	err = s.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("[Webhook] payout event for unknown payout %s (ref %q)", gatewayPayoutID, referenceID)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
