package mapview

// DragThreshold is the distance in pixels a pointer must travel before a
// press becomes a drag.
const DragThreshold = 4.0

// PointerKind is the type of a pointer event.
type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
	PointerCancel
)

// PointerEvent is one pointer event in client coordinates.
type PointerEvent struct {
	Kind      PointerKind
	PointerID int
	Position  Point
}

// GestureState is the classification state of a gesture.
type GestureState int

const (
	GestureIdle GestureState = iota
	GestureCandidate
	GestureDragging
)

func (s GestureState) String() string {
	switch s {
	case GestureCandidate:
		return "candidate"
	case GestureDragging:
		return "dragging"
	default:
		return "idle"
	}
}

// Outcome is what a single gesture step produced.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeDragStart
	OutcomeDragMove
	OutcomeDragEnd
	OutcomeClick
	OutcomeCancelled
)

// Gesture tracks one pointer from press to release. The zero value is idle.
type Gesture struct {
	State     GestureState
	PointerID int
	Start     Point
	Last      Point
	// WasDragging is set on the step that leaves the dragging state.
	WasDragging bool
}

// Active reports whether the gesture owns a pointer.
func (g Gesture) Active() bool { return g.State != GestureIdle }

// Delta returns the displacement from the press position.
func (g Gesture) Delta() Point { return g.Last.Sub(g.Start) }

// Step is the pure transition function of the gesture state machine.
// Once a gesture is dragging it stays dragging until the pointer is released
// or cancelled, even if it returns to where it started. Events from pointers
// other than the one that started the gesture are ignored.
func (g Gesture) Step(ev PointerEvent) (Gesture, Outcome) {
	g.WasDragging = false
	if g.State != GestureIdle && ev.PointerID != g.PointerID {
		return g, OutcomeNone
	}
	switch g.State {
	case GestureIdle:
		if ev.Kind != PointerDown {
			return g, OutcomeNone
		}
		return Gesture{
			State:     GestureCandidate,
			PointerID: ev.PointerID,
			Start:     ev.Position,
			Last:      ev.Position,
		}, OutcomeNone

	case GestureCandidate:
		switch ev.Kind {
		case PointerMove:
			g.Last = ev.Position
			if exceedsThreshold(g.Delta()) {
				g.State = GestureDragging
				return g, OutcomeDragStart
			}
			return g, OutcomeNone
		case PointerUp:
			g.Last = ev.Position
			g.State = GestureIdle
			return g, OutcomeClick
		case PointerCancel:
			g.State = GestureIdle
			return g, OutcomeCancelled
		}
		return g, OutcomeNone

	case GestureDragging:
		switch ev.Kind {
		case PointerMove:
			g.Last = ev.Position
			return g, OutcomeDragMove
		case PointerUp:
			g.Last = ev.Position
			g.State = GestureIdle
			g.WasDragging = true
			return g, OutcomeDragEnd
		case PointerCancel:
			g.State = GestureIdle
			g.WasDragging = true
			return g, OutcomeCancelled
		}
	}
	return g, OutcomeNone
}

func exceedsThreshold(d Point) bool {
	return d.X*d.X+d.Y*d.Y > DragThreshold*DragThreshold
}

// clickGuard swallows the synthetic click that follows a drag release.
// It is armed per target and cleared by the next press anywhere, so a
// stale guard can never eat the click of a later, unrelated gesture.
type clickGuard struct {
	armed  bool
	target string
}

func (g *clickGuard) arm(target string) {
	g.armed = true
	g.target = target
}

func (g *clickGuard) reset() {
	*g = clickGuard{}
}

// consume reports whether a click on target must be swallowed.
func (g *clickGuard) consume(target string) bool {
	if !g.armed || g.target != target {
		return false
	}
	g.reset()
	return true
}
