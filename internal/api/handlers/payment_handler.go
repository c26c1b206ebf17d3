package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/apperr"
	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/models"
	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/services"
)

// PaymentHandler handles payment submission.
type PaymentHandler struct {
	wallet services.WalletServiceProvider
	events services.EventServiceProvider
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(wallet services.WalletServiceProvider, events services.EventServiceProvider) *PaymentHandler {
	return &PaymentHandler{wallet: wallet, events: events}
}

type sendResponse struct {
	OK   bool   `json:"ok"`
	Hash string `json:"hash"`
}

// Send validates the payment, submits it and records a send event.
func (h *PaymentHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req models.PaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, "Invalid request body")
		return
	}
	req.Secret = strings.TrimSpace(req.Secret)
	req.To = strings.TrimSpace(req.To)

	if req.Secret == "" || req.To == "" || req.Amount.IsZero() {
		writeError(w, r, apperr.Invalid("secret, to, amount are required"), "")
		return
	}
	if req.Amount.IsNegative() {
		writeError(w, r, apperr.Invalid("amount must be positive"), "")
		return
	}

	res, err := h.wallet.SendPayment(r.Context(), req)
	if err != nil {
		writeError(w, r, err, "Payment failed")
		return
	}

	// The payment is on the ledger; record it even if the client has gone away.
	if _, err := h.events.Record(context.WithoutCancel(r.Context()), models.Event{
		Type:   models.EventSend,
		From:   res.From,
		To:     req.To,
		Amount: req.Amount.String(),
		Asset:  req.AssetLabel(),
		Hash:   res.Hash,
	}); err != nil {
		const msg = "Payment submitted but activity could not be recorded"
		writeError(w, r, withDetail(err, msg, map[string]string{"hash": res.Hash}), msg)
		return
	}

	writeJSON(w, http.StatusOK, sendResponse{OK: true, Hash: res.Hash})
}
