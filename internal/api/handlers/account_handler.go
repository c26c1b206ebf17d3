package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/models"
	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/services"
)

// AccountHandler handles account creation and balance lookups.
type AccountHandler struct {
	wallet services.WalletServiceProvider
	events services.EventServiceProvider
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(wallet services.WalletServiceProvider, events services.EventServiceProvider) *AccountHandler {
	return &AccountHandler{wallet: wallet, events: events}
}

// Create generates and funds a testnet account. The secret key is returned once and
// never persisted.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	acc, err := h.wallet.CreateAccount(r.Context())
	if err != nil {
		writeError(w, r, err, "Account creation failed")
		return
	}

	// The account exists on the ledger now, so the event is recorded even if the
	// client has gone away.
	if _, err := h.events.Record(context.WithoutCancel(r.Context()), models.Event{
		Type:      models.EventCreateAccount,
		PublicKey: acc.PublicKey,
	}); err != nil {
		// Hand the keys back so they are not lost.
		const msg = "Account created but activity could not be recorded"
		writeError(w, r, withDetail(err, msg, acc), msg)
		return
	}

	writeJSON(w, http.StatusOK, acc)
}

type balanceResponse struct {
	Pub      string           `json:"pub"`
	Balances []models.Balance `json:"balances"`
}

// Balance lists the balances of the account in the path.
func (h *AccountHandler) Balance(w http.ResponseWriter, r *http.Request) {
	pub := chi.URLParam(r, "pub")
	balances, err := h.wallet.GetBalances(r.Context(), pub)
	if err != nil {
		writeError(w, r, err, "Failed to fetch balance")
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Pub: pub, Balances: balances})
}
