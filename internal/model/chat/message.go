package chat

import "time"

// Sender values allowed on a transcript message.
const (
	SenderUser  = "user"
	SenderAgent = "agent"
)

// Message is a single transcript entry. Immutable once appended.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Visual    *Visual   `json:"visual,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Visual is an optional rendered attachment (chart, receipt) on an agent reply.
type Visual struct {
	ImageData string `json:"imageData"`
	Kind      string `json:"kind"`
}
