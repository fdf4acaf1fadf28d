package chat

import "time"

// BotParticipant marks the non-human side of a bot session.
const BotParticipant = "bot"

// Session captures a live anonymous pairing, human↔human or human↔bot.
type Session struct {
	ID           string    `json:"id"`
	ParticipantA string    `json:"participantA"`
	ParticipantB string    `json:"participantB"`
	IsBot        bool      `json:"isBot"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Other returns the participant opposite to userID.
func (s Session) Other(userID string) string {
	if s.ParticipantA == userID {
		return s.ParticipantB
	}
	return s.ParticipantA
}

// EndedSession describes a session that was just torn down.
type EndedSession struct {
	SessionID        string `json:"sessionId"`
	OtherParticipant string `json:"otherParticipant"`
	IsBot            bool   `json:"isBot"`
}

// Stats is a point-in-time snapshot of the matchmaking state.
type Stats struct {
	Waiting     int `json:"waiting"`
	ActiveChats int `json:"activeChats"`
	BotChats    int `json:"botChats"`
}
