package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/apperr"
	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/config"
	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/models"
)

func convReq(from, to, amount string) models.ConversionRequest {
	return models.ConversionRequest{From: from, To: to, Amount: decimal.RequireFromString(amount)}
}

func TestConvert_KnownPairs(t *testing.T) {
	svc := NewConversionService(config.DefaultRates(), false)

	c, err := svc.Convert(convReq("EUR", "USDC", "100"))
	require.NoError(t, err)
	assert.Equal(t, "1.02", c.Rate.String())
	assert.Equal(t, "102", c.AmountOut.String())
	assert.Equal(t, 102.0, c.AmountOut.InexactFloat64())

	c, err = svc.Convert(convReq("USDC", "EUR", "10"))
	require.NoError(t, err)
	assert.Equal(t, "9.8", c.AmountOut.String())
}

func TestConvert_RoundsHalfAwayFromZero(t *testing.T) {
	svc := NewConversionService(map[string]float64{"EUR>USDC": 1.02}, false)

	// 0.125 * 1.02 = 0.1275 -> 0.13
	c, err := svc.Convert(convReq("EUR", "USDC", "0.125"))
	require.NoError(t, err)
	assert.Equal(t, "0.13", c.AmountOut.StringFixed(2))

	// 33.33 * 1.02 = 33.9966 -> 34.00
	c, err = svc.Convert(convReq("EUR", "USDC", "33.33"))
	require.NoError(t, err)
	assert.Equal(t, "34.00", c.AmountOut.StringFixed(2))
}

func TestConvert_UnknownPairDefaultsToParity(t *testing.T) {
	svc := NewConversionService(config.DefaultRates(), false)

	c, err := svc.Convert(convReq("USDC", "GBP", "50"))
	require.NoError(t, err)
	assert.Equal(t, "1", c.Rate.String())
	assert.Equal(t, "50.00", c.AmountOut.StringFixed(2))
}

func TestConvert_StrictRejectsUnknownPair(t *testing.T) {
	svc := NewConversionService(config.DefaultRates(), true)

	_, err := svc.Convert(convReq("USDC", "GBP", "50"))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindInvalidRequest))

	_, err = svc.Convert(convReq("EUR", "USDC", "50"))
	assert.NoError(t, err)
}

func TestConvert_CaseInsensitivePairs(t *testing.T) {
	svc := NewConversionService(config.DefaultRates(), false)

	c, err := svc.Convert(convReq("eur", " usdc ", "1"))
	require.NoError(t, err)
	assert.Equal(t, "EUR", c.From)
	assert.Equal(t, "USDC", c.To)
	assert.Equal(t, "1.02", c.AmountOut.String())
}

func TestConvert_Validation(t *testing.T) {
	svc := NewConversionService(config.DefaultRates(), false)

	cases := []models.ConversionRequest{
		{To: "USDC", Amount: decimal.NewFromInt(1)},
		{From: "EUR", Amount: decimal.NewFromInt(1)},
		{From: "EUR", To: "USDC"},
		{From: "EUR", To: "USDC", Amount: decimal.NewFromInt(-5)},
		{From: "EUR", To: "EUR", Amount: decimal.NewFromInt(5)},
		{From: "usdc", To: "USDC", Amount: decimal.NewFromInt(5)},
	}
	for _, req := range cases {
		_, err := svc.Convert(req)
		assert.True(t, apperr.Is(err, apperr.KindInvalidRequest), "%+v", req)
	}
}

func TestRates_Sorted(t *testing.T) {
	svc := NewConversionService(config.DefaultRates(), false)

	rates := svc.Rates()
	require.Len(t, rates, 4)
	assert.Equal(t, Rate{From: "EUR", To: "USDC", Rate: 1.02}, rates[0])
	assert.Equal(t, "USD", rates[1].From)
	assert.Equal(t, "USDC", rates[2].From)
	assert.Equal(t, "EUR", rates[2].To)
}
