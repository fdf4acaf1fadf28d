package matchmaking

import "time"

// Client identifies one live connection of an authenticated user.
type Client struct {
	ConnID      string
	UserID      string
	DisplayName string
}

// Transport delivers events to connections and session groups. Calls must not
// block and must not call back into the Engine.
type Transport interface {
	Emit(connID, event string, payload any)
	Join(connID, group string)
	Leave(connID, group string)
	BroadcastExcept(group, exceptConnID, event string, payload any)
	Broadcast(group, event string, payload any)
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// TimerScheduler schedules with time.AfterFunc.
type TimerScheduler struct{}

func (TimerScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}
