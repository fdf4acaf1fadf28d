package chat

import (
	"time"

	"github.com/bellaleprasann20/Chat-App/internal/model/chat"
)

const (
	// SharedInterestWeight is added per interest both entries share.
	SharedInterestWeight = 0.2
	// LongAverageWaitBonus is added once both entries have waited long on average.
	LongAverageWaitBonus = 0.5
	// LongAverageWait is the average wait beyond which the bonus applies.
	LongAverageWait = 30 * time.Second
	// ForceMatchAfter is the requester wait beyond which any candidate is accepted.
	ForceMatchAfter = 10 * time.Second
	// MinMatchScore must be exceeded for a regular match.
	MinMatchScore = 0.3
)

// WaitingSource is the read side of the queue the matcher scores against.
type WaitingSource interface {
	Waiting(userID string) (chat.WaitingEntry, bool)
	ListWaiting() []chat.WaitingEntry
	Now() time.Time
}

// Matcher selects the best waiting partner for a requester.
type Matcher struct {
	source WaitingSource
}

// NewMatcher returns a Matcher over source.
func NewMatcher(source WaitingSource) *Matcher {
	return &Matcher{source: source}
}

// FindMatch returns the candidate for userID, or false when nobody qualifies.
// Ties keep the earliest queued candidate.
func (m *Matcher) FindMatch(userID string) (chat.WaitingEntry, bool) {
	requester, ok := m.source.Waiting(userID)
	if !ok {
		return chat.WaitingEntry{}, false
	}

	now := m.source.Now()
	var (
		best      chat.WaitingEntry
		bestScore = -1.0
		found     bool
	)
	for _, candidate := range m.source.ListWaiting() {
		if candidate.UserID == userID {
			continue
		}
		score := Score(requester, candidate, now)
		if score > bestScore {
			best, bestScore, found = candidate, score, true
		}
	}

	if !found {
		return chat.WaitingEntry{}, false
	}
	if requester.WaitedFor(now) > ForceMatchAfter {
		return best, true
	}
	if bestScore > MinMatchScore {
		return best, true
	}
	return chat.WaitingEntry{}, false
}

// Score rates how well a and b fit together, in [0, 1].
func Score(a, b chat.WaitingEntry, now time.Time) float64 {
	score := float64(sharedInterests(a.Interests, b.Interests)) * SharedInterestWeight

	avgWait := (a.WaitedFor(now) + b.WaitedFor(now)) / 2
	if avgWait > LongAverageWait {
		score += LongAverageWaitBonus
	}

	switch {
	case score < 0:
		return 0
	case score > 1:
		return 1
	}
	return score
}

func sharedInterests(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	other := make(map[string]struct{}, len(b))
	for _, interest := range b {
		other[interest] = struct{}{}
	}
	seen := make(map[string]struct{}, len(a))
	count := 0
	for _, interest := range a {
		if _, dup := seen[interest]; dup {
			continue
		}
		seen[interest] = struct{}{}
		if _, ok := other[interest]; ok {
			count++
		}
	}
	return count
}
