package models

import "github.com/shopspring/decimal"

// ConversionRequest asks for a simulated exchange of Amount units of From into To.
type ConversionRequest struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// Conversion is the simulated outcome of a ConversionRequest.
type Conversion struct {
	From      string
	To        string
	AmountIn  decimal.Decimal
	Rate      decimal.Decimal
	AmountOut decimal.Decimal
}
