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

type BoostHandler struct {
	ledger   *service.LedgerService
	planRepo *repository.BoostPlanRepository
}

func NewBoostHandler(ledger *service.LedgerService, planRepo *repository.BoostPlanRepository) *BoostHandler {
	return &BoostHandler{ledger: ledger, planRepo: planRepo}
}

func (h *BoostHandler) ListPlans(c *gin.Context) {
	plans, err := h.planRepo.ListActive()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "plans error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// Purchase debits the wallet and boosts the listing atomically.
func (h *BoostHandler) Purchase(c *gin.Context) {
	userID := middleware.GetUserID(c)
	listingID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid listing id"})
		return
	}
	var req struct {
		PlanID uint `json:"plan_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	txn, err := h.ledger.PurchaseBoost(c.Request.Context(), userID, uint(listingID), req.PlanID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInsufficientBalance):
			c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient wallet balance"})
		case errors.Is(err, service.ErrNotListingOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "listing does not belong to you"})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "listing or plan not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "boost failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"transaction_id":      txn.ID,
		"amount_paise":        txn.AmountPaise,
		"balance_after_paise": txn.BalanceAfterPaise,
	})
}
