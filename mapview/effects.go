package mapview

import (
	"time"

	"github.com/eringen/atlas/pin"
)

// Effect is a side effect requested by a session transition. Effects are
// values; the Runner decides how to carry them out.
type Effect interface {
	isEffect()
}

// CheckAdminStatus asks the server whether the session cookie is an admin's.
type CheckAdminStatus struct {
	Seq uint64
}

// SubmitLogin sends the admin secret.
type SubmitLogin struct {
	Seq      uint64
	Password string
}

// SubmitLogout ends the admin session.
type SubmitLogout struct{}

// PersistPins replaces the stored pin collection with Pins.
type PersistPins struct {
	Seq  uint64
	Pins []pin.Pin
}

// TimerKind identifies what a timer is for.
type TimerKind int

const (
	TimerSavedReset TimerKind = iota
	TimerNavigate
)

// Timer names one scheduled timer. Token lets the session ignore timers
// that were superseded before they fired.
type Timer struct {
	Kind  TimerKind
	Token uint64
}

// StartTimer schedules Timer to fire after Delay.
type StartTimer struct {
	Timer Timer
	Delay time.Duration
}

// Navigate leaves the map for Path.
type Navigate struct {
	Path string
}

func (CheckAdminStatus) isEffect() {}
func (SubmitLogin) isEffect()      {}
func (SubmitLogout) isEffect()     {}
func (PersistPins) isEffect()      {}
func (StartTimer) isEffect()       {}
func (Navigate) isEffect()         {}
