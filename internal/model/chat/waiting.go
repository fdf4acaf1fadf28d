package chat

import "time"

// WaitingEntry is a user currently queued for a match.
type WaitingEntry struct {
	UserID      string    `json:"userId"`
	ConnRef     string    `json:"-"`
	DisplayName string    `json:"displayName"`
	Interests   []string  `json:"interests"`
	EnqueuedAt  time.Time `json:"enqueuedAt"`
}

// WaitedFor reports how long the entry has been queued as of now.
func (e WaitingEntry) WaitedFor(now time.Time) time.Duration {
	return now.Sub(e.EnqueuedAt)
}
