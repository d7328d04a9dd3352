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

type WalletHandler struct {
	ledger     *service.LedgerService
	walletRepo *repository.WalletRepository
	orderRepo  *repository.TopupOrderRepository
}

func NewWalletHandler(ledger *service.LedgerService, walletRepo *repository.WalletRepository, orderRepo *repository.TopupOrderRepository) *WalletHandler {
	return &WalletHandler{ledger: ledger, walletRepo: walletRepo, orderRepo: orderRepo}
}

// GetBalance returns the current user's spendable and held balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID := middleware.GetUserID(c)
	w, err := h.ledger.Wallet(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "wallet error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"balance_paise":       w.BalancePaise,
		"hold_balance_paise":  w.HoldBalancePaise,
		"total_credits_paise": w.TotalCreditsPaise,
		"total_debits_paise":  w.TotalDebitsPaise,
		"currency":            w.Currency,
	})
}

// ListTransactions returns the user's ledger history, newest first.
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, offset := pagination(c)
	txs, err := h.walletRepo.ListTransactions(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}

// GetTransaction returns one ledger row, owner only.
func (h *WalletHandler) GetTransaction(c *gin.Context) {
	userID := middleware.GetUserID(c)
	txID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction id"})
		return
	}
	txn, err := h.walletRepo.GetTransactionByID(uint(txID))
	if err != nil || txn.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
		return
	}
	c.JSON(http.StatusOK, txn)
}

// CreateTopupOrder creates a gateway order for a wallet top-up.
func (h *WalletHandler) CreateTopupOrder(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		AmountPaise int64 `json:"amount_paise" binding:"required,min=100"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := h.ledger.CreateTopupOrder(c.Request.Context(), userID, req.AmountPaise)
	if err != nil {
		if errors.Is(err, service.ErrGatewayFailed) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "gateway order failed"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "order failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"order_id":     order.GatewayOrderID,
		"amount_paise": order.AmountPaise,
		"currency":     order.Currency,
		"receipt":      order.Receipt,
	})
}

// ListTopupOrders returns the user's top-up orders, newest first.
func (h *WalletHandler) ListTopupOrders(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, offset := pagination(c)
	orders, err := h.orderRepo.ListByUser(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "orders error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// VerifyTopup is the synchronous checkout callback: signature first, then the
// idempotent credit.
func (h *WalletHandler) VerifyTopup(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		OrderID   string `json:"order_id" binding:"required"`
		PaymentID string `json:"payment_id" binding:"required"`
		Signature string `json:"signature" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	txn, err := h.ledger.VerifyTopup(c.Request.Context(), userID, req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSignatureInvalid):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid payment signature"})
		case errors.Is(err, service.ErrOrderMismatch):
			c.JSON(http.StatusForbidden, gin.H{"error": "order does not belong to user"})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "credit failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"transaction_id":      txn.ID,
		"status":              txn.Status,
		"balance_after_paise": txn.BalanceAfterPaise,
	})
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
