package mapview

import "math"

const (
	MinZoom     = 0.25
	MaxZoom     = 4.0
	DefaultZoom = 1.0

	// ZoomStep is the factor applied by the zoom buttons.
	ZoomStep = 1.2
	// WheelSensitivity converts wheel delta pixels into an exponential zoom factor.
	WheelSensitivity = 0.0015
)

// ClampCamera projects next into the valid range for the given viewport and
// image. Scale is hard-clamped to [MinZoom, MaxZoom]. Translation keeps the
// scaled image from leaving the viewport by more than half a viewport (or
// half the scaled image, whichever is smaller) on any side. With an empty
// viewport or image only the scale is clamped. ClampCamera is idempotent.
func ClampCamera(next Camera, viewport, image Size) Camera {
	next.Scale = clampScale(next.Scale)
	if viewport.Empty() || image.Empty() {
		return next
	}
	next.TX = clampAxis(next.TX, viewport.Width, image.Width*next.Scale)
	next.TY = clampAxis(next.TY, viewport.Height, image.Height*next.Scale)
	return next
}

func clampScale(s float64) float64 {
	if math.IsNaN(s) {
		s = DefaultZoom
	}
	return math.Max(MinZoom, math.Min(MaxZoom, s))
}

func clampAxis(t, view, scaled float64) float64 {
	if math.IsNaN(t) {
		t = (view - scaled) / 2
	}
	allow := math.Min(view/2, scaled/2)
	lo := allow - scaled
	hi := view - allow
	return math.Max(lo, math.Min(hi, t))
}

// centered returns the camera that shows image in the middle of viewport.
func centered(viewport, image Size, scale float64) Camera {
	s := clampScale(scale)
	return ClampCamera(Camera{
		Scale: s,
		TX:    (viewport.Width - image.Width*s) / 2,
		TY:    (viewport.Height - image.Height*s) / 2,
	}, viewport, image)
}

// Controller owns the camera of one map view.
type Controller struct {
	cam           Camera
	viewport      Size
	image         Size
	authoritative bool
	defaultScale  float64

	// pending is set whenever the displayed map changes and cleared once
	// the camera has been centered for it.
	pending bool

	panning  bool
	panStart Camera
}

// NewController returns a controller that centers maps at defaultScale.
func NewController(defaultScale float64) *Controller {
	return &Controller{
		cam:          Camera{Scale: clampScale(defaultScale)},
		defaultScale: defaultScale,
		pending:      true,
	}
}

// Camera returns the current camera.
func (c *Controller) Camera() Camera { return c.cam }

// Viewport returns the last reported viewport size.
func (c *Controller) Viewport() Size { return c.viewport }

// Image returns the image size the camera is working with.
func (c *Controller) Image() Size { return c.image }

// Authoritative reports whether the image size came from the loaded image.
func (c *Controller) Authoritative() bool { return c.authoritative }

// Ready reports whether the camera has been initialized for the current map.
func (c *Controller) Ready() bool { return !c.pending }

// Panning reports whether a pan is in progress.
func (c *Controller) Panning() bool { return c.panning }

// Initialize centers image in viewport at defaultScale. It runs once per map
// change: calling it again with the same image is a no-op until the map
// changes or ResetView is called. It returns whether the camera was reset.
func (c *Controller) Initialize(viewport, image Size, defaultScale float64) bool {
	c.viewport = viewport
	c.defaultScale = defaultScale
	if image != c.image {
		c.image = image
		c.pending = true
	}
	return c.tryInit()
}

// LoadImage announces a newly displayed image whose natural size is not
// known yet. fallback is used until ImageLoaded reports the real size.
func (c *Controller) LoadImage(fallback Size) bool {
	c.image = fallback
	c.authoritative = false
	c.pending = true
	return c.tryInit()
}

// SetFallbackSize supplies a provisional image size. It never overrides a
// size reported by ImageLoaded.
func (c *Controller) SetFallbackSize(size Size) bool {
	if c.authoritative || size == c.image {
		return false
	}
	c.image = size
	c.pending = true
	return c.tryInit()
}

// SetImage reports an image size, provisional or authoritative.
func (c *Controller) SetImage(size Size, authoritative bool) bool {
	if authoritative {
		return c.ImageLoaded(size)
	}
	return c.SetFallbackSize(size)
}

// ImageLoaded records the natural size of the displayed image. A size that
// differs from the provisional one re-initializes the camera.
func (c *Controller) ImageLoaded(natural Size) bool {
	c.authoritative = true
	if natural != c.image {
		c.image = natural
		c.pending = true
	}
	return c.tryInit()
}

// SetViewport records the laid-out viewport size. A deferred initialization
// completes here; otherwise the camera is re-clamped to the new bounds.
func (c *Controller) SetViewport(size Size) bool {
	c.viewport = size
	if c.pending {
		return c.tryInit()
	}
	c.cam = c.Clamp(c.cam)
	return false
}

// ResetView re-centers the current map at the default zoom.
func (c *Controller) ResetView() bool {
	c.pending = true
	return c.tryInit()
}

func (c *Controller) tryInit() bool {
	if !c.pending || c.viewport.Empty() || c.image.Empty() {
		return false
	}
	c.cam = centered(c.viewport, c.image, c.defaultScale)
	c.pending = false
	c.panning = false
	return true
}

// Clamp projects next into the valid range for the current viewport and image.
func (c *Controller) Clamp(next Camera) Camera {
	return ClampCamera(next, c.viewport, c.image)
}

// ZoomAt changes the scale while keeping the map point under pivot
// (viewport-local) stationary, then clamps.
func (c *Controller) ZoomAt(targetScale float64, pivot Point) {
	m := c.cam.ToMap(pivot)
	s := clampScale(targetScale)
	c.cam = c.Clamp(Camera{
		Scale: s,
		TX:    pivot.X - m.X*s,
		TY:    pivot.Y - m.Y*s,
	})
}

// ZoomBy multiplies the scale by factor about pivot.
func (c *Controller) ZoomBy(factor float64, pivot Point) {
	c.ZoomAt(c.cam.Scale*factor, pivot)
}

// Wheel applies a wheel delta about pivot. Negative deltas zoom in.
func (c *Controller) Wheel(deltaY float64, pivot Point) {
	c.ZoomBy(math.Exp(-deltaY*WheelSensitivity), pivot)
}

// ZoomIn zooms one step about the viewport centre.
func (c *Controller) ZoomIn() { c.ZoomBy(ZoomStep, c.center()) }

// ZoomOut zooms one step out about the viewport centre.
func (c *Controller) ZoomOut() { c.ZoomBy(1/ZoomStep, c.center()) }

func (c *Controller) center() Point {
	return Point{c.viewport.Width / 2, c.viewport.Height / 2}
}

// BeginPan records the translation a drag starts from.
func (c *Controller) BeginPan() {
	c.panning = true
	c.panStart = c.cam
}

// Pan moves the camera by (dx, dy) relative to the pan start and clamps.
func (c *Controller) Pan(dx, dy float64) {
	if !c.panning {
		c.BeginPan()
	}
	c.cam = c.Clamp(Camera{
		Scale: c.cam.Scale,
		TX:    c.panStart.TX + dx,
		TY:    c.panStart.TY + dy,
	})
}

// EndPan finishes a pan.
func (c *Controller) EndPan() {
	c.panning = false
}
