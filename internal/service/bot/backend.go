package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/bellaleprasann20/Chat-App/internal/model/chat"
)

// ErrEmptyReply is returned by backends that answered without content.
var ErrEmptyReply = errors.New("backend returned an empty reply")

// Request is the input handed to an external reply backend.
type Request struct {
	System  string
	History []chat.Turn
	Message string
}

// Backend produces a conversational reply from an external model.
type Backend interface {
	Name() string
	GenerateReply(ctx context.Context, req Request) (string, error)
}

// BackendError wraps any failure of an external backend call.
type BackendError struct {
	Backend string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("bot backend %s: %v", e.Backend, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// trimHistory returns at most chat.HistoryLimit of the newest turns.
func trimHistory(history []chat.Turn) []chat.Turn {
	if len(history) <= chat.HistoryLimit {
		return history
	}
	return history[len(history)-chat.HistoryLimit:]
}
