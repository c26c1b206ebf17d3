package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/apperr"
)

type errorBody struct {
	Error  string `json:"error"`
	Detail any    `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError shapes err into {error, detail} with the status its kind maps to.
// Server-side faults are logged; client errors are not.
func writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	body := errorBody{Error: fallback}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		if ae.Message != "" {
			body.Error = ae.Message
		}
		body.Detail = ae.Detail
	}

	status := apperr.KindOf(err).HTTPStatus()
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).
			Str("kind", string(apperr.KindOf(err))).
			Str("path", r.URL.Path).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg(fallback)
	}
	writeJSON(w, status, body)
}

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return apperr.Invalid("Invalid request body")
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Wrap(apperr.KindInvalidRequest, "Invalid request body", err)
	}
	return nil
}

// withDetail re-labels err for the client with message and detail, keeping the kind of
// the first *apperr.Error in its chain. The original error stays in the wrap chain.
func withDetail(err error, message string, detail any) error {
	return &apperr.Error{Kind: apperr.KindOf(err), Message: message, Detail: detail, Err: err}
}
