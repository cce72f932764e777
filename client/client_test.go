package client

import (
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/atlas"
	"github.com/eringen/atlas/mapview"
	"github.com/eringen/atlas/pin"
	"github.com/eringen/atlas/views"
)

func startServer(t *testing.T) (*atlas.App, string) {
	t.Helper()
	root := t.TempDir()
	contentDir := filepath.Join(root, "content")
	mapDir := filepath.Join(root, "maps")
	require.NoError(t, os.MkdirAll(filepath.Join(contentDir, "people"), 0o755))
	require.NoError(t, os.MkdirAll(mapDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(contentDir, "people", "ada.md"),
		[]byte("---\ntitle: Ada\n---\nCartographer.\n"), 0o644))

	f, err := os.Create(filepath.Join(mapDir, "political.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, 300, 200))))
	require.NoError(t, f.Close())

	store, err := atlas.NewJSONStore(filepath.Join(root, "data"))
	require.NoError(t, err)

	app := atlas.New(atlas.SiteConfig{
		ContentDir:    contentDir,
		MapDir:        mapDir,
		AdminPassword: "secret",
		SessionSecret: "client-test-secret-0123456789abcdef",
	}, views.Default(), atlas.WithStore(store))
	require.NoError(t, app.Init())

	srv := httptest.NewServer(app.Echo)
	t.Cleanup(func() {
		srv.Close()
		app.Close()
	})
	return app, srv.URL
}

func newClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := New(url)
	require.NoError(t, err)
	return c
}

func TestNewRejectsRelativeURL(t *testing.T) {
	_, err := New("/api")
	assert.Error(t, err)
}

func TestWithHTTPClientLeavesCallerClientAlone(t *testing.T) {
	_, url := startServer(t)
	hc := &http.Client{Timeout: 3 * time.Second}
	c, err := New(url, WithHTTPClient(hc))
	require.NoError(t, err)

	require.NoError(t, c.Login(context.Background(), "secret"))
	assert.Nil(t, hc.Jar)
	assert.Equal(t, 3*time.Second, hc.Timeout)
	assert.Equal(t, 3*time.Second, c.http.Timeout)

	ok, err := c.AdminStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoginLogout(t *testing.T) {
	_, url := startServer(t)
	c := newClient(t, url)
	ctx := context.Background()

	ok, err := c.AdminStatus(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, c.Login(ctx, "wrong"), mapview.ErrUnauthorized)
	require.NoError(t, c.Login(ctx, "secret"))

	ok, err = c.AdminStatus(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, c.Logout(ctx))
	ok, err = c.AdminStatus(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveAndLoadPins(t *testing.T) {
	app, url := startServer(t)
	c := newClient(t, url)
	ctx := context.Background()

	pins := []pin.Pin{
		{ID: "abc", X: 0.5, Y: 0.5, Title: "New pin"},
		{ID: "def", X: 0.1, Y: 0.9, Title: "Ada's house", LinkedCategory: "people", LinkedSlug: "ada"},
	}
	assert.ErrorIs(t, c.SavePins(ctx, pins), mapview.ErrUnauthorized)

	require.NoError(t, c.Login(ctx, "secret"))
	require.NoError(t, c.SavePins(ctx, pins))

	got, err := c.LoadPins(ctx)
	require.NoError(t, err)
	assert.Equal(t, pins, got)

	stored, err := app.Store.LoadPins()
	require.NoError(t, err)
	assert.Equal(t, pins, stored)
}

func TestSaveInvalidPinReturnsAPIError(t *testing.T) {
	_, url := startServer(t)
	c := newClient(t, url)
	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "secret"))

	err := c.SavePins(ctx, []pin.Pin{{ID: "", Title: "x"}})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Status)
	assert.Contains(t, apiErr.Message, "id")
}

func TestLoginRateLimit(t *testing.T) {
	_, url := startServer(t)
	c := newClient(t, url)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.ErrorIs(t, c.Login(ctx, "nope"), mapview.ErrUnauthorized)
	}
	assert.ErrorIs(t, c.Login(ctx, "secret"), ErrRateLimited)
}

func TestCoverPosition(t *testing.T) {
	_, url := startServer(t)
	c := newClient(t, url)
	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "secret"))

	got, err := c.SaveCoverPosition(ctx, atlas.CoverPosition{Category: "people", Slug: "ada", X: -20, Y: 40})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.X)
	assert.Equal(t, 40.0, got.Y)
}

func TestSessionOptions(t *testing.T) {
	_, url := startServer(t)
	c := newClient(t, url)

	opts, err := c.SessionOptions(context.Background())
	require.NoError(t, err)
	require.Len(t, opts.Layers, 1)
	assert.Equal(t, "political", opts.Layer)
	assert.Equal(t, mapview.Size{Width: 300, Height: 200}, opts.Layers[0].Fallback)
	assert.Empty(t, opts.Pins)
	assert.Equal(t, []mapview.EntrySummary{{Category: "people", Slug: "ada", Title: "Ada"}}, opts.Entries)
}

func TestRunnerPersistsThroughServer(t *testing.T) {
	app, url := startServer(t)
	c := newClient(t, url)

	opts, err := c.SessionOptions(context.Background())
	require.NoError(t, err)
	r := mapview.NewRunner(mapview.NewSession(opts), c, mapview.WithLogf(t.Logf))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	r.Do(func(s *mapview.Session) []mapview.Effect { return s.Login("secret") })
	require.Eventually(t, func() bool {
		var admin bool
		r.View(func(s *mapview.Session) { admin = s.Admin() })
		return admin
	}, 5*time.Second, 20*time.Millisecond)

	var created pin.Pin
	r.Do(func(s *mapview.Session) []mapview.Effect {
		s.SetEditing(true)
		created, _ = s.CreatePin(0.5, 0.5)
		return s.Save()
	})

	require.Eventually(t, func() bool {
		stored, err := app.Store.LoadPins()
		return err == nil && len(stored) == 1
	}, 5*time.Second, 20*time.Millisecond)

	stored, _ := app.Store.LoadPins()
	// Synchronize with the runner goroutine before reading created.
	r.View(func(*mapview.Session) {})
	assert.Equal(t, created.ID, stored[0].ID)
	assert.Equal(t, "New pin", stored[0].Title)
}
