package models

import "time"

// EventType names the action an event records.
type EventType string

const (
	EventCreateAccount EventType = "create_account"
	EventSend          EventType = "send"
	EventConvert       EventType = "convert"
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventCreateAccount, EventSend, EventConvert:
		return true
	}
	return false
}

// Event is an immutable record of a completed action in the activity log.
// Payload fields are populated according to Type.
type Event struct {
	ID   string    `json:"id"`
	Type EventType `json:"type"`
	At   time.Time `json:"at"`

	// create_account
	PublicKey string `json:"publicKey,omitempty"`

	// send and convert
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
	Amount string `json:"amount,omitempty"`

	// send
	Asset string `json:"asset,omitempty"`
	Hash  string `json:"hash,omitempty"`

	// convert
	Rate      string `json:"rate,omitempty"`
	AmountOut string `json:"amountOut,omitempty"`
}
