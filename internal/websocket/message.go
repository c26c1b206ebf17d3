package websocket

const (
	// ActionEvent carries a newly appended activity event.
	ActionEvent = "event"
)

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}
