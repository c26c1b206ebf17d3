package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentRequest describes a single payment from the account owning Secret.
// AssetCode and AssetIssuer are both required for an issued asset; when either is
// empty the native asset is sent.
type PaymentRequest struct {
	Secret      string          `json:"secret"`
	To          string          `json:"to"`
	Amount      decimal.Decimal `json:"amount"`
	AssetCode   string          `json:"assetCode,omitempty"`
	AssetIssuer string          `json:"assetIssuer,omitempty"`
}

// IsNative reports whether the payment moves the native asset.
func (p PaymentRequest) IsNative() bool {
	return strings.TrimSpace(p.AssetCode) == "" || strings.TrimSpace(p.AssetIssuer) == ""
}

// AssetLabel returns the asset name recorded in the activity log.
func (p PaymentRequest) AssetLabel() string {
	if p.IsNative() {
		return NativeAsset
	}
	return p.AssetCode
}

// PaymentResult is the outcome of a submitted payment.
type PaymentResult struct {
	From string `json:"from"`
	Hash string `json:"hash"`
}
