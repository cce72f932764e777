package mapview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func down(id int, x, y float64) PointerEvent {
	return PointerEvent{Kind: PointerDown, PointerID: id, Position: Point{x, y}}
}

func move(id int, x, y float64) PointerEvent {
	return PointerEvent{Kind: PointerMove, PointerID: id, Position: Point{x, y}}
}

func up(id int, x, y float64) PointerEvent {
	return PointerEvent{Kind: PointerUp, PointerID: id, Position: Point{x, y}}
}

func cancel(id int) PointerEvent {
	return PointerEvent{Kind: PointerCancel, PointerID: id}
}

func steps(g Gesture, events ...PointerEvent) (Gesture, []Outcome) {
	var out []Outcome
	for _, ev := range events {
		var o Outcome
		g, o = g.Step(ev)
		out = append(out, o)
	}
	return g, out
}

func TestGestureSmallMovementIsClick(t *testing.T) {
	g, out := steps(Gesture{}, down(1, 10, 10), move(1, 12, 12), up(1, 12, 12))
	assert.Equal(t, []Outcome{OutcomeNone, OutcomeNone, OutcomeClick}, out)
	assert.Equal(t, GestureIdle, g.State)
	assert.False(t, g.WasDragging)
}

func TestGestureThresholdIsStrict(t *testing.T) {
	g, out := steps(Gesture{}, down(1, 0, 0), move(1, 4, 0))
	assert.Equal(t, OutcomeNone, out[1])
	assert.Equal(t, GestureCandidate, g.State)

	g, o := g.Step(move(1, 4.1, 0))
	assert.Equal(t, OutcomeDragStart, o)
	assert.Equal(t, GestureDragging, g.State)
}

func TestGestureDragNeverRevertsToClick(t *testing.T) {
	g, out := steps(Gesture{},
		down(1, 0, 0),
		move(1, 10, 0),
		move(1, 0, 0),
		up(1, 0, 0),
	)
	assert.Equal(t, []Outcome{OutcomeNone, OutcomeDragStart, OutcomeDragMove, OutcomeDragEnd}, out)
	assert.True(t, g.WasDragging)
	assert.Equal(t, Point{}, g.Delta())
}

func TestGestureIgnoresOtherPointers(t *testing.T) {
	g, out := steps(Gesture{},
		down(1, 0, 0),
		down(2, 50, 50),
		move(2, 100, 100),
		up(2, 100, 100),
	)
	assert.Equal(t, []Outcome{OutcomeNone, OutcomeNone, OutcomeNone, OutcomeNone}, out)
	assert.Equal(t, GestureCandidate, g.State)
	assert.Equal(t, 1, g.PointerID)
}

func TestGestureCancel(t *testing.T) {
	g, out := steps(Gesture{}, down(1, 0, 0), cancel(1))
	assert.Equal(t, OutcomeCancelled, out[1])
	assert.False(t, g.WasDragging)

	g, out = steps(Gesture{}, down(1, 0, 0), move(1, 20, 0), cancel(1))
	assert.Equal(t, OutcomeCancelled, out[2])
	assert.True(t, g.WasDragging)
	assert.False(t, g.Active())
}

func TestGestureIdleIgnoresStrayEvents(t *testing.T) {
	_, out := steps(Gesture{}, move(1, 5, 5), up(1, 5, 5))
	assert.Equal(t, []Outcome{OutcomeNone, OutcomeNone}, out)
}

func TestClickGuardIsPerTarget(t *testing.T) {
	var g clickGuard
	g.arm("a")
	assert.False(t, g.consume("b"))
	assert.True(t, g.consume("a"))
	assert.False(t, g.consume("a"))

	g.arm("a")
	g.reset()
	assert.False(t, g.consume("a"))
}
