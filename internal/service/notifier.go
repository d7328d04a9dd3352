package service

import (
	"bazario/internal/domain"
	"bazario/internal/models"
	"bazario/internal/ws"
)

// WalletNotifier pushes balance-changed events to the owning user's live
// session. Emission is fire-and-forget: it runs after the database commit and
// a failed delivery never affects the financial mutation.
type WalletNotifier struct {
	hub *ws.Hub
}

func NewWalletNotifier(hub *ws.Hub) *WalletNotifier {
	return &WalletNotifier{hub: hub}
}

func (n *WalletNotifier) emit(userID uint, event string, data map[string]interface{}) {
	if n == nil || n.hub == nil {
		return
	}
	n.hub.EmitToUser(userID, event, data)
}

func (n *WalletNotifier) WalletUpdated(w *models.Wallet) {
	n.emit(w.UserID, domain.EventWalletUpdated, map[string]interface{}{
		"balance_paise":      w.BalancePaise,
		"hold_balance_paise": w.HoldBalancePaise,
	})
}

func (n *WalletNotifier) WalletRefunded(w *models.Wallet, amountPaise int64) {
	n.emit(w.UserID, domain.EventWalletRefunded, map[string]interface{}{
		"balance_paise": w.BalancePaise,
		"amount_paise":  amountPaise,
	})
}

func (n *WalletNotifier) PayoutRequested(w *models.Wallet, p *models.PayoutRequest) {
	n.emit(w.UserID, domain.EventPayoutRequested, map[string]interface{}{
		"payout_id":          p.ID,
		"amount_paise":       p.AmountPaise,
		"balance_paise":      w.BalancePaise,
		"hold_balance_paise": w.HoldBalancePaise,
	})
}

func (n *WalletNotifier) PayoutProcessing(userID uint, p *models.PayoutRequest) {
	n.emit(userID, domain.EventPayoutProcessing, map[string]interface{}{
		"payout_id": p.ID,
		"status":    p.Status,
	})
}

func (n *WalletNotifier) PayoutRejected(w *models.Wallet, p *models.PayoutRequest) {
	n.emit(w.UserID, domain.EventPayoutRejected, map[string]interface{}{
		"payout_id":     p.ID,
		"status":        p.Status,
		"balance_paise": w.BalancePaise,
	})
}
