package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bellaleprasann20/Chat-App/internal/model/chat"
)

func TestScore(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	entry := func(wait time.Duration, interests ...string) chat.WaitingEntry {
		return chat.WaitingEntry{Interests: interests, EnqueuedAt: now.Add(-wait)}
	}

	tests := []struct {
		name string
		a, b chat.WaitingEntry
		want float64
	}{
		{"no interests", entry(0), entry(0), 0},
		{"one shared", entry(0, "music"), entry(0, "music", "gaming"), 0.2},
		{"two shared", entry(0, "music", "gaming"), entry(0, "gaming", "music"), 0.4},
		{"duplicates count once", entry(0, "music", "music"), entry(0, "music"), 0.2},
		{"long average wait bonus", entry(40*time.Second), entry(25*time.Second), 0.5},
		{"average at threshold gets no bonus", entry(30*time.Second), entry(30*time.Second), 0},
		{"clamped to one", entry(time.Minute, "a", "b", "c", "d"), entry(time.Minute, "a", "b", "c", "d"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(tt.a, tt.b, now), 1e-9)
		})
	}
}

func TestFindMatchRequiresEnqueuedRequester(t *testing.T) {
	store, _ := newTestStore()
	require.NoError(t, store.Enqueue("bob", "c2", "Bob", []string{"music", "gaming"}))

	_, ok := NewMatcher(store).FindMatch("alice")
	assert.False(t, ok)
}

func TestFindMatchAloneInQueue(t *testing.T) {
	store, clock := newTestStore()
	require.NoError(t, store.Enqueue("alice", "c1", "Alice", nil))
	clock.Advance(time.Minute)

	_, ok := NewMatcher(store).FindMatch("alice")
	assert.False(t, ok)
}

func TestFindMatchPrefersSharedInterests(t *testing.T) {
	store, clock := newTestStore()
	require.NoError(t, store.Enqueue("stranger", "c0", "Stranger", nil))
	require.NoError(t, store.Enqueue("bob", "c2", "Bob", []string{"music", "gaming"}))
	clock.Advance(100 * time.Millisecond)
	require.NoError(t, store.Enqueue("alice", "c1", "Alice", []string{"gaming", "music", "art"}))

	match, ok := NewMatcher(store).FindMatch("alice")
	require.True(t, ok)
	assert.Equal(t, "bob", match.UserID)
}

func TestFindMatchTiesKeepQueueOrder(t *testing.T) {
	store, _ := newTestStore()
	require.NoError(t, store.Enqueue("alice", "c1", "Alice", []string{"music", "art"}))
	require.NoError(t, store.Enqueue("bob", "c2", "Bob", []string{"music", "art"}))
	require.NoError(t, store.Enqueue("carol", "c3", "Carol", []string{"art", "music"}))

	match, ok := NewMatcher(store).FindMatch("alice")
	require.True(t, ok)
	assert.Equal(t, "bob", match.UserID)
}

func TestFindMatchLongWaitOverride(t *testing.T) {
	store, clock := newTestStore()
	matcher := NewMatcher(store)

	require.NoError(t, store.Enqueue("alice", "c1", "Alice", []string{"music"}))
	clock.Advance(100 * time.Millisecond)
	require.NoError(t, store.Enqueue("bob", "c2", "Bob", []string{"music", "gaming"}))

	_, ok := matcher.FindMatch("alice")
	assert.False(t, ok, "single shared interest stays below the threshold")

	clock.Advance(10*time.Second + time.Millisecond)

	match, ok := matcher.FindMatch("alice")
	require.True(t, ok)
	assert.Equal(t, "bob", match.UserID)
}

func TestFindMatchOverrideAcceptsZeroScore(t *testing.T) {
	store, clock := newTestStore()
	require.NoError(t, store.Enqueue("alice", "c1", "Alice", nil))
	clock.Advance(11 * time.Second)
	require.NoError(t, store.Enqueue("bob", "c2", "Bob", nil))

	match, ok := NewMatcher(store).FindMatch("alice")
	require.True(t, ok)
	assert.Equal(t, "bob", match.UserID)

	_, ok = NewMatcher(store).FindMatch("bob")
	assert.False(t, ok, "fresh requester does not get the override")
}
