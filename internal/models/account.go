package models

// Account is a freshly generated ledger keypair. The secret is handed to the caller
// once and is never stored server-side.
type Account struct {
	PublicKey string `json:"publicKey"`
	SecretKey string `json:"secretKey"`
	Funded    bool   `json:"funded"`
}

// Balance is one asset line of a ledger account.
type Balance struct {
	Asset  string `json:"asset"`
	Amount string `json:"amount"`
}

// NativeAsset is the label used for the network's native currency.
const NativeAsset = "XLM"
