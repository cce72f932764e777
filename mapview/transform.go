// Package mapview is the interactive map viewport: camera, pointer gestures,
// pin editing and persistence orchestration for one open map view.
//
// All session state is owned by a single Session and changed only through
// its methods. Methods that need the outside world return Effects instead of
// performing I/O; a Runner executes them and feeds the results back in as
// events.
package mapview

import "github.com/eringen/atlas/pin"

// Point is a 2D position. Which space it lives in depends on the caller:
// client pixels, viewport-local pixels, map pixels or normalized [0,1].
type Point struct {
	X, Y float64
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Size is a width/height pair in pixels.
type Size struct {
	Width, Height float64
}

// Empty reports whether either dimension is not positive.
func (s Size) Empty() bool { return s.Width <= 0 || s.Height <= 0 }

// Camera is the pan/zoom transform applied to the map image.
type Camera struct {
	Scale float64
	TX    float64
	TY    float64
}

// ToMap converts a viewport-local point into map pixels.
func (c Camera) ToMap(local Point) Point {
	return Point{(local.X - c.TX) / c.Scale, (local.Y - c.TY) / c.Scale}
}

// ToScreen converts map pixels into a viewport-local point.
func (c Camera) ToScreen(m Point) Point {
	return Point{m.X*c.Scale + c.TX, m.Y*c.Scale + c.TY}
}

// Normalize maps a client point, given the viewport origin in client space,
// to clamped normalized map coordinates.
func Normalize(cam Camera, image Size, origin, client Point) Point {
	if image.Empty() || cam.Scale <= 0 {
		return Point{}
	}
	m := cam.ToMap(client.Sub(origin))
	return Point{pin.Clamp01(m.X / image.Width), pin.Clamp01(m.Y / image.Height)}
}

// Denormalize maps normalized coordinates to a viewport-local screen point.
func Denormalize(cam Camera, image Size, norm Point) Point {
	return cam.ToScreen(Point{norm.X * image.Width, norm.Y * image.Height})
}
