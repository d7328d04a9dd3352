package service

import (
	"context"
	"fmt"
	"testing"

	"bazario/internal/domain"
	"bazario/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventDedup(t *testing.T) {
	svc, _, _ := newTestLedger(t)
	ctx := context.Background()

	done, err := svc.IsEventProcessed(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, svc.RecordEvent(ctx, "evt_1", "payment.captured"))
	done, err = svc.IsEventProcessed(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, done)

	// Recording the same id again is tolerated.
	require.NoError(t, svc.RecordEvent(ctx, "evt_1", "payment.captured"))

	// Empty ids are never treated as processed.
	done, err = svc.IsEventProcessed(ctx, "")
	require.NoError(t, err)
	assert.False(t, done)
}

func TestApplyPaymentCaptured(t *testing.T) {
	svc, db, _ := newTestLedger(t)
	u := createUser(t, db, domain.KYCPending)
	ctx := context.Background()

	order, err := svc.CreateTopupOrder(ctx, u.ID, 80000)
	require.NoError(t, err)

	require.NoError(t, svc.ApplyPaymentCaptured(ctx, order.GatewayOrderID, "pay_w1", 80000))
	assert.Equal(t, int64(80000), wallet(t, db, u.ID).BalancePaise)

	// Redelivery of the same payment credits nothing.
	require.NoError(t, svc.ApplyPaymentCaptured(ctx, order.GatewayOrderID, "pay_w1", 80000))
	assert.Equal(t, int64(80000), wallet(t, db, u.ID).BalancePaise)

	// Unknown orders are ignored, not errors.
	require.NoError(t, svc.ApplyPaymentCaptured(ctx, "order_unknown", "pay_w2", 500))

	// An amount mismatch is refused before any credit.
	order2, err := svc.CreateTopupOrder(ctx, u.ID, 80000)
	require.NoError(t, err)
	err = svc.ApplyPaymentCaptured(ctx, order2.GatewayOrderID, "pay_w3", 79999)
	assert.Error(t, err)
	assert.Equal(t, int64(80000), wallet(t, db, u.ID).BalancePaise)
	assertInvariant(t, db, u.ID)
}

func TestWebhookAndVerifySharePaymentIdempotency(t *testing.T) {
	svc, db, _ := newTestLedger(t)
	u := createUser(t, db, domain.KYCPending)
	ctx := context.Background()

	order, err := svc.CreateTopupOrder(ctx, u.ID, 60000)
	require.NoError(t, err)

	// Synchronous verify lands first, then the webhook for the same payment.
	_, err = svc.VerifyTopup(ctx, u.ID, order.GatewayOrderID, "pay_both", "ok")
	require.NoError(t, err)
	require.NoError(t, svc.ApplyPaymentCaptured(ctx, order.GatewayOrderID, "pay_both", 60000))

	assert.Equal(t, int64(60000), wallet(t, db, u.ID).BalancePaise)
	var count int64
	require.NoError(t, db.Model(&models.WalletTransaction{}).
		Where("gateway_payment_id = ?", "pay_both").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestApplyPaymentFailed(t *testing.T) {
	svc, db, _ := newTestLedger(t)
	u := createUser(t, db, domain.KYCPending)
	ctx := context.Background()

	order, err := svc.CreateTopupOrder(ctx, u.ID, 80000)
	require.NoError(t, err)
	require.NoError(t, svc.ApplyPaymentFailed(ctx, order.GatewayOrderID))

	var stored models.TopupOrder
	require.NoError(t, db.Where("gateway_order_id = ?", order.GatewayOrderID).First(&stored).Error)
	assert.Equal(t, domain.TopupStatusFailed, stored.Status)
	assert.Equal(t, int64(0), wallet(t, db, u.ID).BalancePaise)

	// A failure notice after capture does not un-pay the order.
	order2, err := svc.CreateTopupOrder(ctx, u.ID, 80000)
	require.NoError(t, err)
	_, err = svc.CreditTopup(ctx, u.ID, order2.GatewayOrderID, "pay_late", 80000)
	require.NoError(t, err)
	require.NoError(t, svc.ApplyPaymentFailed(ctx, order2.GatewayOrderID))
	require.NoError(t, db.Where("gateway_order_id = ?", order2.GatewayOrderID).First(&stored).Error)
	assert.Equal(t, domain.TopupStatusPaid, stored.Status)
}

func TestApplyRefundProcessedSettlesPendingRefund(t *testing.T) {
	svc, db, gw := newTestLedger(t)
	u := createUser(t, db, domain.KYCPending)
	ctx := context.Background()

	orig, err := svc.CreditTopup(ctx, u.ID, "order_rp", "pay_rp", 50000)
	require.NoError(t, err)

	gw.RefundStatus = "created"
	pending, err := svc.RefundTopup(ctx, orig.ID, 20000, "slow")
	require.NoError(t, err)
	require.Equal(t, domain.TxStatusPending, pending.Status)

	require.NoError(t, svc.ApplyRefundProcessed(ctx, pending.GatewayRefundID))
	assert.Equal(t, int64(70000), wallet(t, db, u.ID).BalancePaise)

	var settled models.WalletTransaction
	require.NoError(t, db.First(&settled, pending.ID).Error)
	assert.Equal(t, domain.TxStatusCompleted, settled.Status)
	assert.Equal(t, int64(50000), settled.BalanceBeforePaise)
	assert.Equal(t, int64(70000), settled.BalanceAfterPaise)

	// Replay credits nothing further.
	require.NoError(t, svc.ApplyRefundProcessed(ctx, pending.GatewayRefundID))
	assert.Equal(t, int64(70000), wallet(t, db, u.ID).BalancePaise)

	// Unknown refund ids are ignored.
	require.NoError(t, svc.ApplyRefundProcessed(ctx, "rfnd_unknown"))
	assertInvariant(t, db, u.ID)
}

func TestApplyPayoutProcessedRecoversStuckProcessing(t *testing.T) {
	svc, db, _ := newTestLedger(t)
	u := createUser(t, db, domain.KYCVerified)
	topUp(t, svc, u.ID, 500000)
	bank := BankDetails{HolderName: "A", AccountNumber: "1", IFSC: "X"}
	ctx := context.Background()

	p, err := svc.RequestPayout(ctx, u.ID, 300000, bank)
	require.NoError(t, err)

	// Simulate a crash between the gateway call and finalization: the request
	// is stuck in PROCESSING with no gateway id recorded.
	require.NoError(t, db.Model(&models.PayoutRequest{}).Where("id = ?", p.ID).
		Update("status", domain.PayoutStatusProcessing).Error)

	// The webhook only carries our reference id; lookup falls back to it.
	require.NoError(t, svc.ApplyPayoutProcessed(ctx, "pout_gw9", fmt.Sprintf("payout_%d", p.ID)))

	var stored models.PayoutRequest
	require.NoError(t, db.First(&stored, p.ID).Error)
	assert.Equal(t, domain.PayoutStatusCompleted, stored.Status)
	assert.Equal(t, "pout_gw9", stored.GatewayPayoutID)

	w := wallet(t, db, u.ID)
	assert.Equal(t, int64(0), w.HoldBalancePaise)
	assert.Equal(t, int64(300000), w.TotalDebitsPaise)

	// Redelivery is a no-op once completed.
	require.NoError(t, svc.ApplyPayoutProcessed(ctx, "pout_gw9", ""))
	assertInvariant(t, db, u.ID)
}

func TestApplyPayoutFailedWhileProcessing(t *testing.T) {
	svc, db, _ := newTestLedger(t)
	u := createUser(t, db, domain.KYCVerified)
	topUp(t, svc, u.ID, 500000)
	bank := BankDetails{HolderName: "A", AccountNumber: "1", IFSC: "X"}
	ctx := context.Background()

	p, err := svc.RequestPayout(ctx, u.ID, 300000, bank)
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.PayoutRequest{}).Where("id = ?", p.ID).
		Update("status", domain.PayoutStatusProcessing).Error)

	require.NoError(t, svc.ApplyPayoutFailed(ctx, "pout_x", fmt.Sprintf("payout_%d", p.ID), "beneficiary invalid"))

	var stored models.PayoutRequest
	require.NoError(t, db.First(&stored, p.ID).Error)
	assert.Equal(t, domain.PayoutStatusPending, stored.Status)
	assert.Equal(t, "beneficiary invalid", stored.FailureReason)
	// Hold stays reserved for the retry.
	assert.Equal(t, int64(300000), wallet(t, db, u.ID).HoldBalancePaise)
	assertInvariant(t, db, u.ID)
}

func TestApplyPayoutFailedAfterCompletionCompensates(t *testing.T) {
	svc, db, _ := newTestLedger(t)
	u := createUser(t, db, domain.KYCVerified)
	admin := createUser(t, db, domain.KYCVerified)
	topUp(t, svc, u.ID, 500000)
	bank := BankDetails{HolderName: "A", AccountNumber: "1", IFSC: "X"}
	ctx := context.Background()

	p, err := svc.RequestPayout(ctx, u.ID, 300000, bank)
	require.NoError(t, err)
	done, err := svc.ProcessPayout(ctx, p.ID, admin.ID)
	require.NoError(t, err)

	// Bank bounce after settlement: the money comes back as a refund credit.
	require.NoError(t, svc.ApplyPayoutFailed(ctx, done.GatewayPayoutID, "", "reversed"))

	var stored models.PayoutRequest
	require.NoError(t, db.First(&stored, p.ID).Error)
	assert.Equal(t, domain.PayoutStatusFailed, stored.Status)

	w := wallet(t, db, u.ID)
	assert.Equal(t, int64(500000), w.BalancePaise)
	assert.Equal(t, int64(0), w.HoldBalancePaise)

	var comp models.WalletTransaction
	require.NoError(t, db.Where("payout_request_id = ? AND type = ?", p.ID, domain.TxTypeCreditRefund).
		First(&comp).Error)
	assert.Equal(t, int64(300000), comp.AmountPaise)
	assert.Equal(t, domain.TxStatusCompleted, comp.Status)

	// Replay of the reversal does not credit twice.
	require.NoError(t, svc.ApplyPayoutFailed(ctx, done.GatewayPayoutID, "", "reversed"))
	assert.Equal(t, int64(500000), wallet(t, db, u.ID).BalancePaise)
	assertInvariant(t, db, u.ID)
}

func TestApplyPayoutEventsForUnknownPayoutAreIgnored(t *testing.T) {
	svc, _, _ := newTestLedger(t)
	ctx := context.Background()
	require.NoError(t, svc.ApplyPayoutProcessed(ctx, "pout_none", "not_a_reference"))
	require.NoError(t, svc.ApplyPayoutFailed(ctx, "pout_none", "", "whatever"))
}
