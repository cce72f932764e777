package mapview

import (
	"time"

	"github.com/eringen/atlas/pin"
)

// NavigateDelay is how long a linked-page navigation waits before leaving
// the map, giving the user a chance to cancel it.
const NavigateDelay = 400 * time.Millisecond

// Layer is one selectable map image. Fallback is the size reported by the
// server; the loaded image's natural size supersedes it.
type Layer struct {
	Name     string
	Title    string
	Fallback Size
}

// EntrySummary identifies a lore entry a pin can link to.
type EntrySummary struct {
	Category string `json:"category"`
	Slug     string `json:"slug"`
	Title    string `json:"title"`
}

// MessageKind distinguishes informational banners from errors.
type MessageKind int

const (
	MessageInfo MessageKind = iota
	MessageError
)

// Message is a dismissible banner.
type Message struct {
	Kind MessageKind
	Text string
}

// Options configure a new Session.
type Options struct {
	Layers      []Layer
	Layer       string
	DefaultZoom float64
	Pins        []pin.Pin
	Entries     []EntrySummary
	NewID       func() string
}

const viewportTarget = "\x00viewport"

// Session is the state of one open map view. It is not safe for concurrent
// use; a Runner serializes access to it.
type Session struct {
	camera  *Controller
	pins    *PinStore
	save    SaveState
	gate    Gate
	layers  []Layer
	layer   string
	origin  Point
	entries []EntrySummary

	pinGesture Gesture
	pinTarget  string
	pinGrab    Point
	pinBefore  pin.Pin
	panGesture Gesture
	clicks     clickGuard

	navToken uint64
	navPath  string

	message Message
}

// NewSession builds a session from the pins loaded at session start.
func NewSession(opts Options) *Session {
	zoom := opts.DefaultZoom
	if zoom == 0 {
		zoom = DefaultZoom
	}
	s := &Session{
		camera:  NewController(zoom),
		pins:    NewPinStore(opts.Pins, opts.NewID),
		layers:  opts.Layers,
		entries: opts.Entries,
	}
	layer := opts.Layer
	if _, ok := s.findLayer(layer); !ok && len(opts.Layers) > 0 {
		layer = opts.Layers[0].Name
	}
	if l, ok := s.findLayer(layer); ok {
		s.layer = l.Name
		s.camera.LoadImage(l.Fallback)
	}
	return s
}

// --- admin gate ---

// Mount issues the one admin status check of the session.
func (s *Session) Mount() []Effect {
	g, effects := s.gate.Mount()
	s.gate = g
	return effects
}

// AdminStatusResolved applies the result of status check seq.
func (s *Session) AdminStatusResolved(seq uint64, authenticated bool, err error) []Effect {
	current := seq == s.gate.Seq
	s.gate = s.gate.StatusResolved(seq, authenticated, err)
	if !current {
		return nil
	}
	if err != nil {
		s.setMessage(MessageError, "Could not check admin status.")
	}
	if !s.gate.Admin {
		s.leaveEditMode()
	}
	return nil
}

// Login submits the admin secret.
func (s *Session) Login(secret string) []Effect {
	g, effects := s.gate.Login(secret)
	s.gate = g
	return effects
}

// LoginResolved applies the result of login seq.
func (s *Session) LoginResolved(seq uint64, err error) []Effect {
	s.gate = s.gate.LoginResolved(seq, err)
	return nil
}

// Logout drops admin capability and leaves edit mode.
func (s *Session) Logout() []Effect {
	g, effects := s.gate.Logout()
	s.gate = g
	s.leaveEditMode()
	return effects
}

// SetEditing toggles edit mode. Without admin capability it stays off.
func (s *Session) SetEditing(on bool) {
	s.gate = s.gate.SetEditing(on)
	if !s.gate.Editing {
		s.leaveEditMode()
	}
}

func (s *Session) leaveEditMode() {
	s.gate.Editing = false
	s.pins.CancelDelete()
	if s.pinGesture.State == GestureDragging {
		s.pins.Move(s.pinBefore.ID, s.pinBefore.X, s.pinBefore.Y)
	}
	s.pinGesture = Gesture{}
	s.pinTarget = ""
}

// Admin reports the admin capability.
func (s *Session) Admin() bool { return s.gate.Admin }

// AdminResolved reports whether the status check has completed.
func (s *Session) AdminResolved() bool { return s.gate.Resolved }

// Editing reports whether edit mode is on.
func (s *Session) Editing() bool { return s.gate.Editing }

// CanEdit reports whether mutation affordances are enabled.
func (s *Session) CanEdit() bool { return s.gate.CanEdit() }

// LoginError returns the inline login error, if any.
func (s *Session) LoginError() string { return s.gate.LoginErr }

// --- camera and layers ---

func (s *Session) findLayer(name string) (Layer, bool) {
	for _, l := range s.layers {
		if l.Name == name {
			return l, true
		}
	}
	return Layer{}, false
}

// Layers returns the selectable layers.
func (s *Session) Layers() []Layer { return s.layers }

// Layer returns the name of the displayed layer.
func (s *Session) Layer() string { return s.layer }

// SelectLayer switches the displayed image. The camera re-initializes for
// the new image.
func (s *Session) SelectLayer(name string) bool {
	l, ok := s.findLayer(name)
	if !ok || l.Name == s.layer {
		return false
	}
	s.layer = l.Name
	s.panGesture = Gesture{}
	s.camera.EndPan()
	s.camera.LoadImage(l.Fallback)
	return true
}

// ImageLoaded reports the natural size of the displayed image.
func (s *Session) ImageLoaded(natural Size) {
	s.camera.ImageLoaded(natural)
}

// SetViewport records where the viewport sits in client space and its size.
func (s *Session) SetViewport(origin Point, size Size) {
	s.origin = origin
	s.camera.SetViewport(size)
}

// Wheel zooms about the client point under the cursor.
func (s *Session) Wheel(client Point, deltaY float64) {
	s.camera.Wheel(deltaY, client.Sub(s.origin))
}

// ZoomIn zooms one step about the viewport centre.
func (s *Session) ZoomIn() { s.camera.ZoomIn() }

// ZoomOut zooms one step out about the viewport centre.
func (s *Session) ZoomOut() { s.camera.ZoomOut() }

// ResetView re-centers the map at the default zoom.
func (s *Session) ResetView() { s.camera.ResetView() }

// Camera returns the current camera.
func (s *Session) Camera() Camera { return s.camera.Camera() }

// Image returns the image size in use.
func (s *Session) Image() Size { return s.camera.Image() }

// Viewport returns the viewport size.
func (s *Session) Viewport() Size { return s.camera.Viewport() }

// Origin returns the viewport origin in client space.
func (s *Session) Origin() Point { return s.origin }

// ClientToNormalized converts a client point to normalized map coordinates.
func (s *Session) ClientToNormalized(client Point) Point {
	return Normalize(s.camera.Camera(), s.camera.Image(), s.origin, client)
}

// PinScreenPosition returns where the pin with id is drawn, viewport-local.
func (s *Session) PinScreenPosition(id string) (Point, bool) {
	p, ok := s.pins.Get(id)
	if !ok {
		return Point{}, false
	}
	return Denormalize(s.camera.Camera(), s.camera.Image(), Point{p.X, p.Y}), true
}

// --- pointer input ---

// Pointer feeds one pointer event. target is the id of the pin under a
// press, or "" for the map background; it is ignored for other kinds, which
// are routed to the gesture that owns the pointer. A press on a pin never
// reaches the viewport pan.
func (s *Session) Pointer(target string, ev PointerEvent) []Effect {
	if ev.Kind == PointerDown {
		if s.pinGesture.Active() || s.panGesture.Active() {
			return nil
		}
		s.clicks.reset()
		if target != "" {
			return s.pinPress(target, ev)
		}
		s.panGesture, _ = s.panGesture.Step(ev)
		return nil
	}
	if s.pinGesture.Active() && ev.PointerID == s.pinGesture.PointerID {
		return s.pinPointer(ev)
	}
	if s.panGesture.Active() && ev.PointerID == s.panGesture.PointerID {
		s.panPointer(ev)
	}
	return nil
}

func (s *Session) pinPress(id string, ev PointerEvent) []Effect {
	p, ok := s.pins.Get(id)
	if !ok {
		return nil
	}
	s.pinGesture, _ = s.pinGesture.Step(ev)
	s.pinTarget = id
	s.pinBefore = p
	screen := Denormalize(s.camera.Camera(), s.camera.Image(), Point{p.X, p.Y})
	s.pinGrab = ev.Position.Sub(s.origin).Sub(screen)
	return nil
}

func (s *Session) pinPointer(ev PointerEvent) []Effect {
	g, out := s.pinGesture.Step(ev)
	s.pinGesture = g
	id := s.pinTarget
	switch out {
	case OutcomeDragStart, OutcomeDragMove:
		if s.gate.CanEdit() {
			s.dragPinTo(id, ev.Position)
		}
	case OutcomeDragEnd:
		s.pinTarget = ""
		s.clicks.arm(id)
		if s.gate.CanEdit() {
			s.dragPinTo(id, ev.Position)
			return s.persist()
		}
	case OutcomeCancelled:
		s.pinTarget = ""
		if g.WasDragging && s.gate.CanEdit() {
			s.pins.Move(id, s.pinBefore.X, s.pinBefore.Y)
		}
	case OutcomeClick:
		s.pinTarget = ""
	}
	return nil
}

func (s *Session) dragPinTo(id string, client Point) {
	norm := Normalize(s.camera.Camera(), s.camera.Image(), s.origin, client.Sub(s.pinGrab))
	s.pins.Move(id, norm.X, norm.Y)
}

func (s *Session) panPointer(ev PointerEvent) {
	g, out := s.panGesture.Step(ev)
	s.panGesture = g
	d := g.Delta()
	switch out {
	case OutcomeDragStart:
		s.camera.BeginPan()
		s.camera.Pan(d.X, d.Y)
	case OutcomeDragMove:
		s.camera.Pan(d.X, d.Y)
	case OutcomeDragEnd:
		s.camera.Pan(d.X, d.Y)
		s.camera.EndPan()
		s.clicks.arm(viewportTarget)
	case OutcomeCancelled:
		s.camera.EndPan()
	}
}

// Click feeds the click event the host emits after a pointer release.
// A click that follows a drag of the same target is swallowed. Clicking a
// pin selects it; clicking the background places a pin in edit mode and
// clears the selection otherwise.
func (s *Session) Click(target string, client Point) []Effect {
	key := target
	if key == "" {
		key = viewportTarget
	}
	if s.clicks.consume(key) {
		return nil
	}
	if target != "" {
		s.pins.Select(target)
		return nil
	}
	if s.gate.CanEdit() && s.camera.Ready() {
		norm := s.ClientToNormalized(client)
		s.pins.Create(norm.X, norm.Y)
		return nil
	}
	s.pins.Select("")
	return nil
}

// PinDragging reports whether a pin is being dragged.
func (s *Session) PinDragging() bool { return s.pinGesture.State == GestureDragging }

// Panning reports whether the viewport is being dragged.
func (s *Session) Panning() bool { return s.panGesture.State == GestureDragging }

// --- pins ---

// Pins returns a copy of the session's pins.
func (s *Session) Pins() []pin.Pin { return s.pins.Pins() }

// Pin returns the pin with id.
func (s *Session) Pin(id string) (pin.Pin, bool) { return s.pins.Get(id) }

// Selected returns the selected pin.
func (s *Session) Selected() (pin.Pin, bool) { return s.pins.Selected() }

// SelectPin selects id, or clears the selection for "".
func (s *Session) SelectPin(id string) bool { return s.pins.Select(id) }

// CreatePin places a new pin at normalized (x, y). Edit mode only.
func (s *Session) CreatePin(x, y float64) (pin.Pin, bool) {
	if !s.gate.CanEdit() {
		return pin.Pin{}, false
	}
	return s.pins.Create(x, y), true
}

// UpdatePin merges patch into the pin with id. Edit mode only.
func (s *Session) UpdatePin(id string, patch pin.Patch) bool {
	if !s.gate.CanEdit() {
		return false
	}
	return s.pins.Update(id, patch)
}

// RequestDelete asks for confirmation before deleting id. Edit mode only.
func (s *Session) RequestDelete(id string) bool {
	if !s.gate.CanEdit() {
		return false
	}
	return s.pins.RequestDelete(id)
}

// PendingDelete returns the id awaiting delete confirmation.
func (s *Session) PendingDelete() string { return s.pins.PendingDelete() }

// CancelDelete drops the pending delete request.
func (s *Session) CancelDelete() { s.pins.CancelDelete() }

// ConfirmDelete removes the pending pin and persists the remaining list.
// A failed save does not bring the pin back; the list can be saved again.
func (s *Session) ConfirmDelete() []Effect {
	if !s.gate.CanEdit() {
		return nil
	}
	removed, ok := s.pins.ConfirmDelete()
	if !ok {
		return nil
	}
	if s.pinTarget == removed.ID {
		s.pinGesture = Gesture{}
		s.pinTarget = ""
	}
	return s.persist()
}

// Save persists the full pin list. Edit mode only.
func (s *Session) Save() []Effect {
	if !s.gate.CanEdit() {
		return nil
	}
	return s.persist()
}

func (s *Session) persist() []Effect {
	st, effects := s.save.Save(s.pins.Pins())
	s.save = st
	return effects
}

// PersistResolved applies the result of the save numbered seq.
func (s *Session) PersistResolved(seq uint64, err error) []Effect {
	before := s.save
	st, effects := s.save.Resolve(seq, err)
	s.save = st
	if before.Status == SaveSaving && seq == before.Seq {
		if err != nil {
			s.setMessage(MessageError, "Failed to save pins: "+err.Error())
		} else if s.message.Kind == MessageError {
			s.DismissMessage()
		}
	}
	return effects
}

// SaveStatus returns the visible save state.
func (s *Session) SaveStatus() SaveStatus { return s.save.Status }

// SaveErr returns the error of the last failed save.
func (s *Session) SaveErr() error { return s.save.Err }

// --- timers and navigation ---

// TimerFired delivers a timer scheduled through StartTimer.
func (s *Session) TimerFired(t Timer) []Effect {
	switch t.Kind {
	case TimerSavedReset:
		s.save = s.save.Expire(t.Token)
	case TimerNavigate:
		if t.Token == s.navToken && s.navPath != "" {
			path := s.navPath
			s.navPath = ""
			return []Effect{Navigate{Path: path}}
		}
	}
	return nil
}

// RequestNavigate schedules leaving the map for the entry linked from the
// pin with id. Pins without a usable link show a message instead.
func (s *Session) RequestNavigate(id string) []Effect {
	p, ok := s.pins.Get(id)
	if !ok {
		return nil
	}
	if !p.HasLink() {
		s.setMessage(MessageInfo, "This pin is not linked to a lore entry.")
		return nil
	}
	if len(s.entries) > 0 && !s.entryExists(p.LinkedCategory, p.LinkedSlug) {
		s.setMessage(MessageInfo, "The linked lore entry could not be found.")
		return nil
	}
	s.navToken++
	s.navPath = p.LinkPath()
	return []Effect{StartTimer{
		Timer: Timer{Kind: TimerNavigate, Token: s.navToken},
		Delay: NavigateDelay,
	}}
}

// CancelNavigate aborts a pending navigation.
func (s *Session) CancelNavigate() {
	s.navToken++
	s.navPath = ""
}

// PendingNavigation returns the path a scheduled navigation will open.
func (s *Session) PendingNavigation() (string, bool) {
	return s.navPath, s.navPath != ""
}

// --- messages ---

func (s *Session) setMessage(kind MessageKind, text string) {
	s.message = Message{Kind: kind, Text: text}
}

// Message returns the current banner.
func (s *Session) Message() (Message, bool) {
	return s.message, s.message.Text != ""
}

// DismissMessage clears the banner.
func (s *Session) DismissMessage() { s.message = Message{} }

// --- link choices ---

func (s *Session) entryExists(category, slug string) bool {
	for _, e := range s.entries {
		if e.Category == category && e.Slug == slug {
			return true
		}
	}
	return false
}

// Categories returns the categories of linkable entries in first-seen order.
func (s *Session) Categories() []string {
	var out []string
	seen := make(map[string]bool)
	for _, e := range s.entries {
		if !seen[e.Category] {
			seen[e.Category] = true
			out = append(out, e.Category)
		}
	}
	return out
}

// EntriesIn returns the linkable entries of category.
func (s *Session) EntriesIn(category string) []EntrySummary {
	var out []EntrySummary
	for _, e := range s.entries {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}
