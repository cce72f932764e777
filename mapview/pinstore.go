package mapview

import (
	"github.com/google/uuid"

	"github.com/eringen/atlas/pin"
)

// PinStore is the in-memory, authoritative pin list of one editing session.
// It performs no permission checks; Session gates every mutation.
type PinStore struct {
	pins          []pin.Pin
	selected      string
	pendingDelete string
	newID         func() string
}

// NewPinStore returns a store seeded with initial. newID defaults to UUIDv4.
func NewPinStore(initial []pin.Pin, newID func() string) *PinStore {
	if newID == nil {
		newID = uuid.NewString
	}
	s := &PinStore{newID: newID}
	s.Replace(initial)
	return s
}

// Replace swaps in a new list, dropping selection and any pending delete.
func (s *PinStore) Replace(pins []pin.Pin) {
	s.pins = make([]pin.Pin, 0, len(pins))
	for _, p := range pins {
		s.pins = append(s.pins, p.Normalized())
	}
	s.selected = ""
	s.pendingDelete = ""
}

// Pins returns a copy of the current list.
func (s *PinStore) Pins() []pin.Pin { return pin.Clone(s.pins) }

// Len returns the number of pins.
func (s *PinStore) Len() int { return len(s.pins) }

func (s *PinStore) index(id string) int {
	for i := range s.pins {
		if s.pins[i].ID == id {
			return i
		}
	}
	return -1
}

// Get returns the pin with id.
func (s *PinStore) Get(id string) (pin.Pin, bool) {
	if i := s.index(id); i >= 0 {
		return s.pins[i], true
	}
	return pin.Pin{}, false
}

// Create appends a pin at normalized (x, y) and selects it.
func (s *PinStore) Create(x, y float64) pin.Pin {
	p := pin.Pin{ID: s.newID(), X: x, Y: y, Title: pin.NewTitle}.Normalized()
	s.pins = append(s.pins, p)
	s.selected = p.ID
	return p
}

// Update merges patch into the pin with id. Unknown ids are ignored.
func (s *PinStore) Update(id string, patch pin.Patch) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.pins[i] = s.pins[i].Apply(patch)
	return true
}

// Move sets the normalized position of the pin with id.
func (s *PinStore) Move(id string, x, y float64) bool {
	return s.Update(id, pin.Patch{X: pin.Float(x), Y: pin.Float(y)})
}

// RequestDelete marks id for deletion, pending confirmation.
func (s *PinStore) RequestDelete(id string) bool {
	if s.index(id) < 0 {
		return false
	}
	s.pendingDelete = id
	return true
}

// PendingDelete returns the id awaiting confirmation, if any.
func (s *PinStore) PendingDelete() string { return s.pendingDelete }

// CancelDelete drops a pending delete request.
func (s *PinStore) CancelDelete() { s.pendingDelete = "" }

// ConfirmDelete removes the pending pin and clears the selection.
func (s *PinStore) ConfirmDelete() (pin.Pin, bool) {
	id := s.pendingDelete
	s.pendingDelete = ""
	i := s.index(id)
	if i < 0 {
		return pin.Pin{}, false
	}
	removed := s.pins[i]
	s.pins = append(s.pins[:i], s.pins[i+1:]...)
	s.selected = ""
	return removed, true
}

// Select makes id the single selected pin; "" clears the selection.
// Selecting an unknown id is a no-op.
func (s *PinStore) Select(id string) bool {
	if id != "" && s.index(id) < 0 {
		return false
	}
	s.selected = id
	return true
}

// Selected returns the selected pin.
func (s *PinStore) Selected() (pin.Pin, bool) {
	if s.selected == "" {
		return pin.Pin{}, false
	}
	return s.Get(s.selected)
}
