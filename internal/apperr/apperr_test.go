package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, KindInvalidRequest.HTTPStatus())
	assert.Equal(t, http.StatusTooManyRequests, KindRateLimited.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, KindFundingFailed.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, KindAccountLookupFailed.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, KindPaymentFailed.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, KindStoreUnavailable.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, KindInternal.HTTPStatus())
}

func TestKindOf_Wrapped(t *testing.T) {
	base := errors.New("disk full")
	err := fmt.Errorf("append: %w", Wrap(KindStoreUnavailable, "write events", base))

	assert.Equal(t, KindStoreUnavailable, KindOf(err))
	assert.True(t, Is(err, KindStoreUnavailable))
	assert.False(t, Is(err, KindPaymentFailed))
	assert.ErrorIs(t, err, base)
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.False(t, Is(nil, KindInternal))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "INVALID_REQUEST: amount is required", Invalid("amount is required").Error())

	err := Wrap(KindPaymentFailed, "Payment failed", errors.New("tx_failed")).WithDetail(map[string]string{"x": "y"})
	assert.Equal(t, "PAYMENT_FAILED: Payment failed: tx_failed", err.Error())
	assert.Equal(t, map[string]string{"x": "y"}, err.Detail)
}
