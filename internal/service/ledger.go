package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"bazario/config"
	"bazario/internal/domain"
	"bazario/internal/models"
	"bazario/pkg/gateway"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BankDetails is the beneficiary account a payout is sent to.
type BankDetails struct {
	HolderName    string `json:"holder_name" binding:"required"`
	AccountNumber string `json:"account_number" binding:"required"`
	IFSC          string `json:"ifsc" binding:"required"`
}

// LedgerService owns every wallet balance mutation. Each operation runs as a
// single database transaction pairing the wallet update with its ledger row,
// and debits use guarded conditional updates so two concurrent requests can
// never both pass a stale sufficiency check. Gateway calls happen outside the
// database transaction; their outcome decides which transition is committed.
type LedgerService struct {
	db       *gorm.DB
	gateway  gateway.Client
	notifier *WalletNotifier
	payout   config.PayoutConfig
}

func NewLedgerService(db *gorm.DB, gw gateway.Client, notifier *WalletNotifier, payout config.PayoutConfig) *LedgerService {
	return &LedgerService{db: db, gateway: gw, notifier: notifier, payout: payout}
}

// --- wallet row helpers (all run inside the caller's transaction) ---

func ensureWallet(tx *gorm.DB, userID uint) error {
	return tx.Where(models.Wallet{UserID: userID}).
		Attrs(models.Wallet{Currency: "INR"}).
		FirstOrCreate(&models.Wallet{}).Error
}

func reloadWallet(tx *gorm.DB, userID uint) (*models.Wallet, error) {
	var w models.Wallet
	if err := tx.Where("user_id = ?", userID).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// creditBalance adds to balance and lifetime credits.
func creditBalance(tx *gorm.DB, userID uint, amount int64) error {
	res := tx.Model(&models.Wallet{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"balance_paise":       gorm.Expr("balance_paise + ?", amount),
			"total_credits_paise": gorm.Expr("total_credits_paise + ?", amount),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// debitBalance deducts from balance and bumps lifetime debits, guarded so the
// balance can never go negative even under concurrent debits.
func debitBalance(tx *gorm.DB, userID uint, amount int64) error {
	res := tx.Model(&models.Wallet{}).
		Where("user_id = ? AND balance_paise >= ?", userID, amount).
		Updates(map[string]interface{}{
			"balance_paise":      gorm.Expr("balance_paise - ?", amount),
			"total_debits_paise": gorm.Expr("total_debits_paise + ?", amount),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientBalance
	}
	return nil
}

// moveToHold reserves funds for an in-flight payout. Lifetime counters are
// untouched: the debit is only counted when the payout actually completes.
func moveToHold(tx *gorm.DB, userID uint, amount int64) error {
	res := tx.Model(&models.Wallet{}).
		Where("user_id = ? AND balance_paise >= ?", userID, amount).
		Updates(map[string]interface{}{
			"balance_paise":      gorm.Expr("balance_paise - ?", amount),
			"hold_balance_paise": gorm.Expr("hold_balance_paise + ?", amount),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientBalance
	}
	return nil
}

// releaseHold removes a hold. toBalance returns the funds to the spendable
// balance (reject/cancel); otherwise the hold is released permanently and
// counted as a debit (payout completed).
func releaseHold(tx *gorm.DB, userID uint, amount int64, toBalance bool) error {
	updates := map[string]interface{}{
		"hold_balance_paise": gorm.Expr("hold_balance_paise - ?", amount),
	}
	if toBalance {
		updates["balance_paise"] = gorm.Expr("balance_paise + ?", amount)
	} else {
		updates["total_debits_paise"] = gorm.Expr("total_debits_paise + ?", amount)
	}
	res := tx.Model(&models.Wallet{}).
		Where("user_id = ? AND hold_balance_paise >= ?", userID, amount).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("hold release: no row with sufficient hold for user %d", userID)
	}
	return nil
}

func metadataJSON(m map[string]interface{}) datatypes.JSON {
	if m == nil {
		return nil
	}
	b, _ := json.Marshal(m)
	return datatypes.JSON(b)
}

// --- wallet reads ---

func (s *LedgerService) Wallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	var w models.Wallet
	err := s.db.WithContext(ctx).
		Where(models.Wallet{UserID: userID}).
		Attrs(models.Wallet{Currency: "INR"}).
		FirstOrCreate(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *LedgerService) notifyWallet(userID uint) *models.Wallet {
	w, err := reloadWallet(s.db, userID)
	if err != nil {
		return nil
	}
	s.notifier.WalletUpdated(w)
	return w
}

// --- top-up ---

// CreateTopupOrder creates a gateway order the client pays against.
func (s *LedgerService) CreateTopupOrder(ctx context.Context, userID uint, amountPaise int64) (*models.TopupOrder, error) {
	if amountPaise <= 0 {
		return nil, ErrInvalidAmount
	}
	receipt := "topup-" + uuid.New().String()[:18]
	order, err := s.gateway.CreateOrder(ctx, amountPaise, "INR", receipt, map[string]string{
		"user_id": fmt.Sprintf("%d", userID),
		"purpose": "wallet_topup",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayFailed, err)
	}
	o := &models.TopupOrder{
		UserID:         userID,
		GatewayOrderID: order.ID,
		AmountPaise:    amountPaise,
		Currency:       "INR",
		Status:         domain.TopupStatusCreated,
		Receipt:        receipt,
	}
	if err := s.db.WithContext(ctx).Create(o).Error; err != nil {
		return nil, err
	}
	return o, nil
}

// VerifyTopup handles the synchronous checkout callback: the gateway signature
// over "orderId|paymentId" must check out before any balance action.
func (s *LedgerService) VerifyTopup(ctx context.Context, userID uint, orderID, paymentID, signature string) (*models.WalletTransaction, error) {
	if !s.gateway.VerifyPaymentSignature(orderID, paymentID, signature) {
		return nil, ErrSignatureInvalid
	}
	var order models.TopupOrder
	if err := s.db.WithContext(ctx).Where("gateway_order_id = ?", orderID).First(&order).Error; err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrOrderMismatch
	}
	return s.CreditTopup(ctx, order.UserID, orderID, paymentID, order.AmountPaise)
}

// CreditTopup credits a captured payment. Idempotent with respect to
// paymentID: the webhook and the synchronous verify path share it, and a
// replay returns the original ledger row without touching the balance.
func (s *LedgerService) CreditTopup(ctx context.Context, userID uint, orderID, paymentID string, amountPaise int64) (*models.WalletTransaction, error) {
	if amountPaise <= 0 {
		return nil, ErrInvalidAmount
	}
	var txn models.WalletTransaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.WalletTransaction
		err := tx.Where("gateway_payment_id = ?", paymentID).First(&existing).Error
		if err == nil {
			txn = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := ensureWallet(tx, userID); err != nil {
			return err
		}
		if err := creditBalance(tx, userID, amountPaise); err != nil {
			return err
		}
		w, err := reloadWallet(tx, userID)
		if err != nil {
			return err
		}
		pid := paymentID
		txn = models.WalletTransaction{
			UserID:             userID,
			Type:               domain.TxTypeCreditTopup,
			AmountPaise:        amountPaise,
			BalanceBeforePaise: w.BalancePaise - amountPaise,
			BalanceAfterPaise:  w.BalancePaise,
			Status:             domain.TxStatusCompleted,
			GatewayOrderID:     orderID,
			GatewayPaymentID:   &pid,
		}
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}
		return tx.Model(&models.TopupOrder{}).
			Where("gateway_order_id = ? AND status = ?", orderID, domain.TopupStatusCreated).
			Update("status", domain.TopupStatusPaid).Error
	})
	if err != nil {
		// Lost a race against a concurrent credit of the same payment: the
		// unique index on gateway_payment_id aborted us, so return the winner.
		var existing models.WalletTransaction
		if ferr := s.db.Where("gateway_payment_id = ?", paymentID).First(&existing).Error; ferr == nil {
			return &existing, nil
		}
		return nil, err
	}
	s.notifyWallet(userID)
	return &txn, nil
}

// --- boost ---

// PurchaseBoost debits the plan price and marks the listing boosted in the
// same transaction: a failure anywhere rolls back all three writes.
func (s *LedgerService) PurchaseBoost(ctx context.Context, userID, listingID, planID uint) (*models.WalletTransaction, error) {
	var plan models.BoostPlan
	if err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", planID, true).First(&plan).Error; err != nil {
		return nil, err
	}
	var txn models.WalletTransaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var listing models.Listing
		if err := tx.First(&listing, listingID).Error; err != nil {
			return err
		}
		if listing.UserID != userID {
			return ErrNotListingOwner
		}
		if err := ensureWallet(tx, userID); err != nil {
			return err
		}
		if err := debitBalance(tx, userID, plan.PricePaise); err != nil {
			return err
		}
		w, err := reloadWallet(tx, userID)
		if err != nil {
			return err
		}
		txType := domain.TxTypeDebitBoost
		if plan.IsFeature {
			txType = domain.TxTypeDebitFeature
		}
		txn = models.WalletTransaction{
			UserID:             userID,
			Type:               txType,
			AmountPaise:        plan.PricePaise,
			BalanceBeforePaise: w.BalancePaise + plan.PricePaise,
			BalanceAfterPaise:  w.BalancePaise,
			Status:             domain.TxStatusCompleted,
			Metadata: metadataJSON(map[string]interface{}{
				"listing_id": listing.ID,
				"plan_id":    plan.ID,
				"plan":       plan.Name,
			}),
		}
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}
		expiry := time.Now().AddDate(0, 0, plan.DurationDays)
		return tx.Model(&models.Listing{}).Where("id = ?", listing.ID).
			Updates(map[string]interface{}{
				"is_boosted":       true,
				"is_featured":      plan.IsFeature,
				"boost_expires_at": expiry,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	s.notifyWallet(userID)
	return &txn, nil
}

// --- payouts ---

// RequestPayout moves the amount from balance to hold and opens a PENDING
// payout. The one-outstanding-request check runs inside the same transaction
// as the hold movement so concurrent requests cannot both slip through.
func (s *LedgerService) RequestPayout(ctx context.Context, userID uint, amountPaise int64, bank BankDetails) (*models.PayoutRequest, error) {
	if amountPaise <= 0 || amountPaise < s.payout.MinAmountPaise {
		return nil, ErrInvalidAmount
	}
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, err
	}
	if !user.KYCVerified() {
		return nil, ErrKYCRequired
	}
	bankJSON, err := json.Marshal(bank)
	if err != nil {
		return nil, err
	}
	var payout models.PayoutRequest
	var w *models.Wallet
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var outstanding int64
		err := tx.Model(&models.PayoutRequest{}).
			Where("user_id = ? AND status IN ?", userID,
				[]string{domain.PayoutStatusPending, domain.PayoutStatusProcessing}).
			Count(&outstanding).Error
		if err != nil {
			return err
		}
		if outstanding > 0 {
			return ErrDuplicatePayoutRequest
		}
		if err := ensureWallet(tx, userID); err != nil {
			return err
		}
		if err := moveToHold(tx, userID, amountPaise); err != nil {
			return err
		}
		if w, err = reloadWallet(tx, userID); err != nil {
			return err
		}
		payout = models.PayoutRequest{
			UserID:      userID,
			AmountPaise: amountPaise,
			BankDetails: datatypes.JSON(bankJSON),
			Status:      domain.PayoutStatusPending,
		}
		if err := tx.Create(&payout).Error; err != nil {
			return err
		}
		txn := models.WalletTransaction{
			UserID:             userID,
			Type:               domain.TxTypeDebitPayout,
			AmountPaise:        amountPaise,
			BalanceBeforePaise: w.BalancePaise + amountPaise,
			BalanceAfterPaise:  w.BalancePaise,
			Status:             domain.TxStatusPending,
			PayoutRequestID:    &payout.ID,
		}
		return tx.Create(&txn).Error
	})
	if err != nil {
		return nil, err
	}
	s.notifier.PayoutRequested(w, &payout)
	return &payout, nil
}

// ProcessPayout is admin-initiated: PENDING -> PROCESSING, then the gateway
// fund-account and payout calls. Gateway failure reverts to PENDING with the
// reason recorded; the hold is kept so the request can be retried.
func (s *LedgerService) ProcessPayout(ctx context.Context, payoutID, adminID uint) (*models.PayoutRequest, error) {
	var p models.PayoutRequest
	if err := s.db.WithContext(ctx).First(&p, payoutID).Error; err != nil {
		return nil, err
	}
	// Guarded transition so two admins cannot both dispatch the same payout.
	res := s.db.Model(&models.PayoutRequest{}).
		Where("id = ? AND status = ?", p.ID, domain.PayoutStatusPending).
		Update("status", domain.PayoutStatusProcessing)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrPayoutNotPending
	}
	p.Status = domain.PayoutStatusProcessing
	s.notifier.PayoutProcessing(p.UserID, &p)

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, p.UserID).Error; err != nil {
		return nil, err
	}
	var bank BankDetails
	if err := json.Unmarshal(p.BankDetails, &bank); err != nil {
		s.revertPayoutToPending(p.ID, "invalid bank details: "+err.Error())
		return nil, fmt.Errorf("%w: bank details: %v", ErrGatewayFailed, err)
	}
	contactID, err := s.gateway.CreateContact(ctx, user.Name, user.Email, user.Phone, fmt.Sprintf("user_%d", user.ID))
	if err != nil {
		s.revertPayoutToPending(p.ID, err.Error())
		return nil, fmt.Errorf("%w: create contact: %v", ErrGatewayFailed, err)
	}
	fundAccountID, err := s.gateway.CreateFundAccount(ctx, contactID, gateway.BankAccount{
		HolderName:    bank.HolderName,
		AccountNumber: bank.AccountNumber,
		IFSC:          bank.IFSC,
	})
	if err != nil {
		s.revertPayoutToPending(p.ID, err.Error())
		return nil, fmt.Errorf("%w: create fund account: %v", ErrGatewayFailed, err)
	}
	gwPayout, err := s.gateway.CreatePayout(ctx, gateway.PayoutInput{
		FundAccountID: fundAccountID,
		AmountPaise:   p.AmountPaise,
		Currency:      "INR",
		Mode:          s.payout.Mode,
		Purpose:       "payout",
		ReferenceID:   fmt.Sprintf("payout_%d", p.ID),
	})
	if err != nil {
		s.revertPayoutToPending(p.ID, err.Error())
		return nil, fmt.Errorf("%w: create payout: %v", ErrGatewayFailed, err)
	}
	if err := s.finalizePayout(ctx, &p, adminID, contactID, fundAccountID, gwPayout.ID); err != nil {
		// The money left the merchant account; the payout.processed webhook
		// will retry finalization via the reference id.
		log.Printf("[Ledger] payout %d finalize failed after gateway success: %v", p.ID, err)
		return nil, err
	}
	s.notifyWallet(p.UserID)
	return &p, nil
}

// finalizePayout releases the hold permanently and completes the ledger row.
func (s *LedgerService) finalizePayout(ctx context.Context, p *models.PayoutRequest, adminID uint, contactID, fundAccountID, gatewayPayoutID string) error {
	now := time.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PayoutRequest{}).
			Where("id = ? AND status = ?", p.ID, domain.PayoutStatusProcessing).
			Updates(map[string]interface{}{
				"status":                  domain.PayoutStatusCompleted,
				"gateway_contact_id":      contactID,
				"gateway_fund_account_id": fundAccountID,
				"gateway_payout_id":       gatewayPayoutID,
				"processed_by":            adminID,
				"processed_at":            now,
				"failure_reason":          "",
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPayoutNotPending
		}
		if err := releaseHold(tx, p.UserID, p.AmountPaise, false); err != nil {
			return err
		}
		return tx.Model(&models.WalletTransaction{}).
			Where("payout_request_id = ? AND type = ? AND status = ?",
				p.ID, domain.TxTypeDebitPayout, domain.TxStatusPending).
			Updates(map[string]interface{}{
				"status":            domain.TxStatusCompleted,
				"gateway_payout_id": gatewayPayoutID,
			}).Error
	})
	if err == nil {
		p.Status = domain.PayoutStatusCompleted
		p.GatewayPayoutID = gatewayPayoutID
	}
	return err
}

func (s *LedgerService) revertPayoutToPending(payoutID uint, reason string) {
	err := s.db.Model(&models.PayoutRequest{}).
		Where("id = ? AND status = ?", payoutID, domain.PayoutStatusProcessing).
		Updates(map[string]interface{}{
			"status":         domain.PayoutStatusPending,
			"failure_reason": reason,
		}).Error
	if err != nil {
		log.Printf("[Ledger] payout %d revert failed: %v", payoutID, err)
	}
}

// RejectPayout returns the held amount to the balance. Admin action, legal
// only from PENDING.
func (s *LedgerService) RejectPayout(ctx context.Context, payoutID, adminID uint, reason string) (*models.PayoutRequest, error) {
	p, w, err := s.closePendingPayout(ctx, payoutID, nil, domain.PayoutStatusRejected, domain.TxStatusFailed, reason, &adminID)
	if err != nil {
		return nil, err
	}
	s.notifier.PayoutRejected(w, p)
	return p, nil
}

// CancelPayout is the user withdrawing their own request before processing.
func (s *LedgerService) CancelPayout(ctx context.Context, payoutID, userID uint) (*models.PayoutRequest, error) {
	p, w, err := s.closePendingPayout(ctx, payoutID, &userID, domain.PayoutStatusCancelled, domain.TxStatusCancelled, "cancelled by user", nil)
	if err != nil {
		return nil, err
	}
	s.notifier.WalletUpdated(w)
	return p, nil
}

func (s *LedgerService) closePendingPayout(ctx context.Context, payoutID uint, ownerID *uint, newStatus, txStatus, reason string, adminID *uint) (*models.PayoutRequest, *models.Wallet, error) {
	var p models.PayoutRequest
	var w *models.Wallet
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&p, payoutID).Error; err != nil {
			return err
		}
		if ownerID != nil && p.UserID != *ownerID {
			return gorm.ErrRecordNotFound
		}
		updates := map[string]interface{}{
			"status":         newStatus,
			"failure_reason": reason,
		}
		if adminID != nil {
			now := time.Now()
			updates["processed_by"] = *adminID
			updates["processed_at"] = now
		}
		res := tx.Model(&models.PayoutRequest{}).
			Where("id = ? AND status = ?", p.ID, domain.PayoutStatusPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPayoutNotPending
		}
		if err := releaseHold(tx, p.UserID, p.AmountPaise, true); err != nil {
			return err
		}
		var err error
		if w, err = reloadWallet(tx, p.UserID); err != nil {
			return err
		}
		return tx.Model(&models.WalletTransaction{}).
			Where("payout_request_id = ? AND type = ? AND status = ?",
				p.ID, domain.TxTypeDebitPayout, domain.TxStatusPending).
			Update("status", txStatus).Error
	})
	if err != nil {
		return nil, nil, err
	}
	p.Status = newStatus
	p.FailureReason = reason
	return &p, w, nil
}

// --- refunds ---

// RefundTopup creates a gateway refund against the original top-up payment
// and credits the wallet. amountPaise of zero means a full refund; partial
// refunds must not exceed what is still refundable on the original row.
func (s *LedgerService) RefundTopup(ctx context.Context, originalTxID uint, amountPaise int64, reason string) (*models.WalletTransaction, error) {
	var orig models.WalletTransaction
	if err := s.db.WithContext(ctx).First(&orig, originalTxID).Error; err != nil {
		return nil, err
	}
	if orig.Type != domain.TxTypeCreditTopup || orig.Status != domain.TxStatusCompleted || orig.GatewayPaymentID == nil {
		return nil, ErrNotRefundable
	}
	if amountPaise == 0 {
		amountPaise = orig.AmountPaise
	}
	if amountPaise < 0 {
		return nil, ErrInvalidAmount
	}
	var refunded int64
	err := s.db.WithContext(ctx).Model(&models.WalletTransaction{}).
		Where("refund_of_id = ? AND status IN ?", orig.ID,
			[]string{domain.TxStatusPending, domain.TxStatusCompleted}).
		Select("COALESCE(SUM(amount_paise), 0)").Scan(&refunded).Error
	if err != nil {
		return nil, err
	}
	if amountPaise > orig.AmountPaise-refunded {
		return nil, ErrRefundExceedsOriginal
	}
	notes := map[string]string{"reason": reason}
	refund, err := s.gateway.CreateRefund(ctx, *orig.GatewayPaymentID, amountPaise, notes)
	if err != nil {
		return nil, fmt.Errorf("%w: create refund: %v", ErrGatewayFailed, err)
	}
	var txn models.WalletTransaction
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		processed := refund.Status == "processed"
		if processed {
			if err := creditBalance(tx, orig.UserID, amountPaise); err != nil {
				return err
			}
		}
		w, err := reloadWallet(tx, orig.UserID)
		if err != nil {
			return err
		}
		before, after := w.BalancePaise, w.BalancePaise+amountPaise
		status := domain.TxStatusPending
		if processed {
			before, after = w.BalancePaise-amountPaise, w.BalancePaise
			status = domain.TxStatusCompleted
		}
		txn = models.WalletTransaction{
			UserID:             orig.UserID,
			Type:               domain.TxTypeCreditRefund,
			AmountPaise:        amountPaise,
			BalanceBeforePaise: before,
			BalanceAfterPaise:  after,
			Status:             status,
			GatewayRefundID:    refund.ID,
			RefundOfID:         &orig.ID,
			Metadata:           metadataJSON(map[string]interface{}{"reason": reason}),
		}
		return tx.Create(&txn).Error
	})
	if err != nil {
		return nil, err
	}
	if w, werr := reloadWallet(s.db, orig.UserID); werr == nil {
		s.notifier.WalletRefunded(w, amountPaise)
	}
	return &txn, nil
}
