package matchmaking

import "time"

// Outbound event names.
const (
	EventSearchingStarted    = "searching-started"
	EventSearchingStopped    = "searching-stopped"
	EventConnected           = "connected"
	EventMessage             = "message"
	EventPartnerDisconnected = "partner-disconnected"
	EventSkipped             = "skipped"
	EventTyping              = "typing"
	EventError               = "error"
)

const (
	searchingMessage    = "Looking for someone to chat with..."
	stoppedMessage      = "Stopped searching."
	humanConnected      = "You are now chatting with a random stranger!"
	botConnected        = "Connected to AI Bot! (No users available)"
	partnerLeftMessage  = "Stranger has disconnected."
	skippedMessage      = "You skipped the stranger."
	genericErrorMessage = "Something went wrong, please try again."
)

// SearchingStarted is sent while a user waits for a partner.
type SearchingStarted struct {
	Message       string `json:"message"`
	QueuePosition int    `json:"queuePosition"`
}

// Connected announces a new session.
type Connected struct {
	SessionID string `json:"sessionId"`
	IsBot     bool   `json:"isBot"`
	Message   string `json:"message"`
}

// ChatMessage is one relayed chat line.
type ChatMessage struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	IsBot     bool      `json:"isBot"`
	IsSelf    bool      `json:"isSelf"`
	Timestamp time.Time `json:"timestamp"`
}

// Notice carries a human readable status line.
type Notice struct {
	Message string `json:"message"`
}

// TypingState mirrors the partner typing indicator.
type TypingState struct {
	IsTyping bool `json:"isTyping"`
}

// ErrorPayload reports a failed request to its sender.
type ErrorPayload struct {
	Message string `json:"message"`
}
