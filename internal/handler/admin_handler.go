package handler

import (
	"errors"
	"net/http"
	"strconv"

	"bazario/internal/middleware"
	"bazario/internal/presence"
	"bazario/internal/repository"
	"bazario/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AdminHandler exposes the moderation surface of the ledger: payout
// processing and rejection, refunds, and KYC decisions.
type AdminHandler struct {
	ledger     *service.LedgerService
	payoutRepo *repository.PayoutRepository
	userRepo   *repository.UserRepository
	tracker    *presence.Tracker
}

func NewAdminHandler(ledger *service.LedgerService, payoutRepo *repository.PayoutRepository, userRepo *repository.UserRepository, tracker *presence.Tracker) *AdminHandler {
	return &AdminHandler{ledger: ledger, payoutRepo: payoutRepo, userRepo: userRepo, tracker: tracker}
}

func (h *AdminHandler) ListPayouts(c *gin.Context) {
	limit, offset := pagination(c)
	payouts, err := h.payoutRepo.ListByStatus(c.Query("status"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "payouts error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payouts": payouts})
}

func (h *AdminHandler) GetPayout(c *gin.Context) {
	payoutID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payout id"})
		return
	}
	payout, err := h.payoutRepo.GetByID(uint(payoutID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "payout not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "payout error"})
		return
	}
	online := false
	if h.tracker != nil {
		online = h.tracker.IsOnline(c.Request.Context(), payout.UserID)
	}
	c.JSON(http.StatusOK, gin.H{"payout": payout, "user_online": online})
}

// ProcessPayout dispatches the gateway payout for a pending request.
func (h *AdminHandler) ProcessPayout(c *gin.Context) {
	adminID := middleware.GetUserID(c)
	payoutID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payout id"})
		return
	}
	payout, err := h.ledger.ProcessPayout(c.Request.Context(), uint(payoutID), adminID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPayoutNotPending):
			c.JSON(http.StatusConflict, gin.H{"error": "payout is not pending"})
		case errors.Is(err, service.ErrGatewayFailed):
			// reverted to PENDING with the reason recorded; retryable
			c.JSON(http.StatusBadGateway, gin.H{"error": "gateway payout failed", "retryable": true})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "payout not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "process failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":                payout.ID,
		"status":            payout.Status,
		"gateway_payout_id": payout.GatewayPayoutID,
	})
}

func (h *AdminHandler) RejectPayout(c *gin.Context) {
	adminID := middleware.GetUserID(c)
	payoutID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payout id"})
		return
	}
	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	payout, err := h.ledger.RejectPayout(c.Request.Context(), uint(payoutID), adminID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPayoutNotPending):
			c.JSON(http.StatusConflict, gin.H{"error": "payout is not pending"})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "payout not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "reject failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": payout.ID, "status": payout.Status})
}

// CreateRefund refunds (part of) an original top-up transaction.
func (h *AdminHandler) CreateRefund(c *gin.Context) {
	var req struct {
		TransactionID uint   `json:"transaction_id" binding:"required"`
		AmountPaise   int64  `json:"amount_paise"` // 0 = full refund
		Reason        string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	txn, err := h.ledger.RefundTopup(c.Request.Context(), req.TransactionID, req.AmountPaise, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotRefundable):
			c.JSON(http.StatusBadRequest, gin.H{"error": "transaction is not a refundable top-up"})
		case errors.Is(err, service.ErrRefundExceedsOriginal):
			c.JSON(http.StatusBadRequest, gin.H{"error": "refund exceeds refundable amount"})
		case errors.Is(err, service.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		case errors.Is(err, service.ErrGatewayFailed):
			c.JSON(http.StatusBadGateway, gin.H{"error": "gateway refund failed"})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "refund failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"transaction_id":    txn.ID,
		"status":            txn.Status,
		"amount_paise":      txn.AmountPaise,
		"gateway_refund_id": txn.GatewayRefundID,
	})
}

// SetKYC records the KYC decision for a user.
func (h *AdminHandler) SetKYC(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	var req struct {
		Status string `json:"status" binding:"required,oneof=PENDING VERIFIED REJECTED"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := h.userRepo.GetByID(uint(userID)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err := h.userRepo.SetKYCStatus(uint(userID), req.Status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "kyc update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "kyc_status": req.Status})
}
