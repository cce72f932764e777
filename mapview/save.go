package mapview

import (
	"time"

	"github.com/eringen/atlas/pin"
)

// SavedResetDelay is how long the "saved" status stays visible.
const SavedResetDelay = 1500 * time.Millisecond

// SaveStatus is the visible state of pin persistence.
type SaveStatus int

const (
	SaveIdle SaveStatus = iota
	SaveSaving
	SaveSaved
	SaveError
)

func (s SaveStatus) String() string {
	switch s {
	case SaveSaving:
		return "saving"
	case SaveSaved:
		return "saved"
	case SaveError:
		return "error"
	default:
		return "idle"
	}
}

// SaveState is the save orchestrator. Every call to Save is an independent
// request; only the outcome of the most recent one is reflected.
type SaveState struct {
	Status SaveStatus
	Seq    uint64
	Err    error
}

// Save starts persisting snapshot.
func (s SaveState) Save(snapshot []pin.Pin) (SaveState, []Effect) {
	s.Seq++
	s.Status = SaveSaving
	s.Err = nil
	return s, []Effect{PersistPins{Seq: s.Seq, Pins: pin.Clone(snapshot)}}
}

// Resolve records the result of the request numbered seq. Results of
// superseded requests are ignored.
func (s SaveState) Resolve(seq uint64, err error) (SaveState, []Effect) {
	if seq != s.Seq || s.Status != SaveSaving {
		return s, nil
	}
	if err != nil {
		s.Status = SaveError
		s.Err = err
		return s, nil
	}
	s.Status = SaveSaved
	return s, []Effect{StartTimer{
		Timer: Timer{Kind: TimerSavedReset, Token: seq},
		Delay: SavedResetDelay,
	}}
}

// Expire returns a saved state to idle when its reset timer fires.
func (s SaveState) Expire(token uint64) SaveState {
	if token == s.Seq && s.Status == SaveSaved {
		s.Status = SaveIdle
	}
	return s
}
