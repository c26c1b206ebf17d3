package handlers

import (
	"context"
	"net/http"

	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/models"
	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/services"
)

// ConversionHandler handles simulated currency conversion.
type ConversionHandler struct {
	converter services.ConversionServiceProvider
	events    services.EventServiceProvider
}

// NewConversionHandler creates a new ConversionHandler.
func NewConversionHandler(converter services.ConversionServiceProvider, events services.EventServiceProvider) *ConversionHandler {
	return &ConversionHandler{converter: converter, events: events}
}

type convertResponse struct {
	OK        bool    `json:"ok"`
	TxType    string  `json:"txType"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	AmountIn  float64 `json:"amountIn"`
	Rate      float64 `json:"rate"`
	AmountOut float64 `json:"amountOut"`
	ID        string  `json:"id"`
}

// Convert runs the simulator and records a convert event.
func (h *ConversionHandler) Convert(w http.ResponseWriter, r *http.Request) {
	var req models.ConversionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, "Invalid request body")
		return
	}

	c, err := h.converter.Convert(req)
	if err != nil {
		writeError(w, r, err, "Conversion failed")
		return
	}

	ev, err := h.events.Record(context.WithoutCancel(r.Context()), models.Event{
		Type:      models.EventConvert,
		From:      c.From,
		To:        c.To,
		Amount:    c.AmountIn.String(),
		Rate:      c.Rate.String(),
		AmountOut: c.AmountOut.StringFixed(2),
	})
	if err != nil {
		const msg = "Conversion could not be recorded"
		writeError(w, r, withDetail(err, msg, nil), msg)
		return
	}

	writeJSON(w, http.StatusOK, convertResponse{
		OK:        true,
		TxType:    string(models.EventConvert),
		From:      c.From,
		To:        c.To,
		AmountIn:  c.AmountIn.InexactFloat64(),
		Rate:      c.Rate.InexactFloat64(),
		AmountOut: c.AmountOut.InexactFloat64(),
		ID:        ev.ID,
	})
}

// Rates lists the configured conversion table.
func (h *ConversionHandler) Rates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.converter.Rates())
}
