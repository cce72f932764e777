package mapview

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testViewport = Size{800, 600}
	testImage    = Size{2000, 1500}
)

func TestNormalizeRoundTrip(t *testing.T) {
	cam := Camera{Scale: 1.5, TX: -120, TY: 40}
	origin := Point{10, 20}
	for _, x := range []float64{0, 0.1, 0.25, 0.5, 0.9, 1} {
		for _, y := range []float64{0, 0.3, 0.75, 1} {
			local := Denormalize(cam, testImage, Point{x, y})
			got := Normalize(cam, testImage, origin, local.Add(origin))
			assert.InDelta(t, x, got.X, 1e-9)
			assert.InDelta(t, y, got.Y, 1e-9)
		}
	}
}

func TestNormalizeClampsOutsideImage(t *testing.T) {
	cam := Camera{Scale: 1}
	got := Normalize(cam, testImage, Point{}, Point{-50, 5000})
	assert.Equal(t, Point{0, 1}, got)
	assert.Equal(t, Point{}, Normalize(cam, Size{}, Point{}, Point{10, 10}))
}

func TestClampCameraIsIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		vp := Size{100 + rng.Float64()*1900, 100 + rng.Float64()*1400}
		img := Size{50 + rng.Float64()*5000, 50 + rng.Float64()*5000}
		cam := Camera{
			Scale: 0.01 + rng.Float64()*10,
			TX:    rng.Float64()*10000 - 5000,
			TY:    rng.Float64()*10000 - 5000,
		}
		once := ClampCamera(cam, vp, img)
		twice := ClampCamera(once, vp, img)

		require.GreaterOrEqual(t, once.Scale, MinZoom)
		require.LessOrEqual(t, once.Scale, MaxZoom)
		require.InDelta(t, once.Scale, twice.Scale, 1e-9)
		require.InDelta(t, once.TX, twice.TX, 1e-9)
		require.InDelta(t, once.TY, twice.TY, 1e-9)
	}
}

func TestClampCameraKeepsImageInView(t *testing.T) {
	got := ClampCamera(Camera{Scale: 1, TX: 5000, TY: -9000}, testViewport, testImage)
	// At most half the viewport may be left uncovered.
	assert.Equal(t, 400.0, got.TX)
	assert.Equal(t, 300.0-1500, got.TY)
}

func TestZoomAtKeepsPivotStationary(t *testing.T) {
	c := NewController(DefaultZoom)
	require.True(t, c.Initialize(testViewport, testImage, DefaultZoom))

	scales := []float64{MinZoom, 0.5, 1, 1.7, 2.5, MaxZoom}
	for _, pivot := range []Point{{400, 300}, {200, 150}} {
		for _, s := range scales {
			c.ResetView()
			before := c.Camera().ToMap(pivot)
			c.ZoomAt(s, pivot)
			after := c.Camera().ToMap(pivot)
			assert.InDelta(t, s, c.Camera().Scale, 1e-9)
			assert.InDelta(t, before.X, after.X, 1e-6, "pivot %v scale %v", pivot, s)
			assert.InDelta(t, before.Y, after.Y, 1e-6, "pivot %v scale %v", pivot, s)
		}
	}
}

func TestZoomIsClampedToRange(t *testing.T) {
	c := NewController(DefaultZoom)
	c.Initialize(testViewport, testImage, DefaultZoom)

	for i := 0; i < 50; i++ {
		c.ZoomIn()
	}
	assert.Equal(t, MaxZoom, c.Camera().Scale)
	for i := 0; i < 50; i++ {
		c.ZoomOut()
	}
	assert.Equal(t, MinZoom, c.Camera().Scale)
}

func TestWheelDirection(t *testing.T) {
	c := NewController(DefaultZoom)
	c.Initialize(testViewport, testImage, DefaultZoom)

	c.Wheel(-100, Point{400, 300})
	assert.Greater(t, c.Camera().Scale, DefaultZoom)
	c.ResetView()
	c.Wheel(100, Point{400, 300})
	assert.Less(t, c.Camera().Scale, DefaultZoom)
}

func TestInitializeRunsOncePerImage(t *testing.T) {
	c := NewController(DefaultZoom)
	require.True(t, c.Initialize(testViewport, testImage, DefaultZoom))
	c.Pan(-100, -50)
	moved := c.Camera()

	assert.False(t, c.Initialize(testViewport, testImage, DefaultZoom))
	assert.Equal(t, moved, c.Camera())
}

func TestInitializationWaitsForViewport(t *testing.T) {
	c := NewController(DefaultZoom)
	assert.False(t, c.LoadImage(testImage))
	assert.False(t, c.SetViewport(Size{}))
	assert.False(t, c.Ready())

	assert.True(t, c.SetViewport(testViewport))
	assert.True(t, c.Ready())
	assert.Equal(t, Camera{Scale: 1, TX: -600, TY: -450}, c.Camera())
}

func TestNaturalSizeSupersedesFallback(t *testing.T) {
	c := NewController(DefaultZoom)
	c.SetViewport(testViewport)
	require.True(t, c.LoadImage(Size{1000, 750}))
	assert.False(t, c.Authoritative())

	assert.True(t, c.ImageLoaded(testImage))
	assert.True(t, c.Authoritative())
	assert.Equal(t, testImage, c.Image())

	assert.False(t, c.SetFallbackSize(Size{1000, 750}))
	assert.Equal(t, testImage, c.Image())
	assert.False(t, c.ImageLoaded(testImage))
}

func TestPanIsRelativeToPanStart(t *testing.T) {
	c := NewController(DefaultZoom)
	c.Initialize(testViewport, testImage, DefaultZoom)
	start := c.Camera()

	c.BeginPan()
	c.Pan(30, 10)
	c.Pan(50, 20)
	c.EndPan()

	assert.Equal(t, start.TX+50, c.Camera().TX)
	assert.Equal(t, start.TY+20, c.Camera().TY)
	assert.False(t, c.Panning())
}

func TestViewportResizeReclamps(t *testing.T) {
	c := NewController(DefaultZoom)
	c.Initialize(testViewport, testImage, DefaultZoom)
	c.Pan(10000, 10000)
	assert.Equal(t, 400.0, c.Camera().TX)

	assert.False(t, c.SetViewport(Size{400, 300}))
	assert.Equal(t, 200.0, c.Camera().TX)
	assert.Equal(t, 150.0, c.Camera().TY)
}
