package chat

// Role tags a bot conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// HistoryLimit caps the turns kept per bot session.
const HistoryLimit = 10

// Turn is one entry of a bot conversation history.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
