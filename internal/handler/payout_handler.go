package handler

import (
	"errors"
	"net/http"
	"strconv"

	"bazario/internal/middleware"
	"bazario/internal/repository"
	"bazario/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PayoutHandler struct {
	ledger     *service.LedgerService
	payoutRepo *repository.PayoutRepository
}

func NewPayoutHandler(ledger *service.LedgerService, payoutRepo *repository.PayoutRepository) *PayoutHandler {
	return &PayoutHandler{ledger: ledger, payoutRepo: payoutRepo}
}

// Create places a payout request, moving the amount into the hold balance.
func (h *PayoutHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		AmountPaise int64               `json:"amount_paise" binding:"required,min=1"`
		BankDetails service.BankDetails `json:"bank_details" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	payout, err := h.ledger.RequestPayout(c.Request.Context(), userID, req.AmountPaise, req.BankDetails)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount below minimum payout"})
		case errors.Is(err, service.ErrInsufficientBalance):
			c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient wallet balance"})
		case errors.Is(err, service.ErrDuplicatePayoutRequest):
			c.JSON(http.StatusConflict, gin.H{"error": "a payout request is already outstanding"})
		case errors.Is(err, service.ErrKYCRequired):
			c.JSON(http.StatusForbidden, gin.H{"error": "kyc verification required"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "payout request failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":           payout.ID,
		"amount_paise": payout.AmountPaise,
		"status":       payout.Status,
	})
}

// List returns the current user's payout requests.
func (h *PayoutHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, offset := pagination(c)
	payouts, err := h.payoutRepo.ListByUser(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "payouts error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payouts": payouts})
}

// Cancel withdraws the user's own pending request, releasing the hold.
func (h *PayoutHandler) Cancel(c *gin.Context) {
	userID := middleware.GetUserID(c)
	payoutID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payout id"})
		return
	}
	payout, err := h.ledger.CancelPayout(c.Request.Context(), uint(payoutID), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPayoutNotPending):
			c.JSON(http.StatusConflict, gin.H{"error": "payout is no longer pending"})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "payout not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cancel failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": payout.ID, "status": payout.Status})
}
