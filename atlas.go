// Package atlas serves a world atlas: lore entries loaded from a markdown
// tree and an interactive map whose pins are edited by a single admin.
//
// Users provide their own templ views via the ViewFuncs struct, and atlas
// handles routing, middleware, persistence and the JSON API the map
// client talks to.
package atlas

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/eringen/atlas/content"
)

// ViewFuncs holds the templ components rendered for each page.
type ViewFuncs struct {
	Home        func(p HomePage) templ.Component
	Category    func(p CategoryPage) templ.Component
	Entry       func(p EntryPage) templ.Component
	Map         func(p MapPage) templ.Component
	NotFound    func() templ.Component
	ServerError func() templ.Component
}

// App is the central atlas application. It wires together the store,
// entry cache, layers, handlers and middleware.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  Store
	Cache  *EntryCache
	Layers *LayerSet
	Views  ViewFuncs

	loginLimiter *LoginLimiter
	watcher      *content.Watcher
	customRoutes []func(*App)
	staticDir    string
	initialized  bool
}

// New creates an App with the given configuration and views.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init validates the config, opens the store and registers middleware and
// routes. Start calls it; tests call it directly and drive a.Echo.
func (a *App) Init() error {
	if a.initialized {
		return nil
	}
	if a.Config.AdminPassword == "" {
		return errors.New("atlas: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return errors.New("atlas: SessionSecret is required")
	}

	if a.Store == nil {
		store, err := OpenStore(a.Config.StoreBackend, a.Config.StorePath)
		if err != nil {
			return fmt.Errorf("atlas: init store: %w", err)
		}
		a.Store = store
	}

	a.Cache = NewEntryCache(content.Loader{
		Dir:           a.Config.ContentDir,
		IncludeDrafts: a.Config.ShowDrafts,
	}, a.Config.ContentCacheTTL)
	a.Layers = NewLayerSet(a.Config.MapDir, a.Config.Layers)
	a.loginLimiter = NewLoginLimiter(a.Config.LoginAttempts, a.Config.LoginWindow)

	if a.Config.WatchContent {
		if err := a.watchContent(); err != nil {
			return fmt.Errorf("atlas: watch content: %w", err)
		}
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	a.initialized = true
	return nil
}

func (a *App) watchContent() error {
	if _, err := os.Stat(a.Config.ContentDir); errors.Is(err, os.ErrNotExist) {
		a.Echo.Logger.Warnf("content dir %s does not exist, not watching", a.Config.ContentDir)
		return nil
	}
	w, err := content.NewWatcher()
	if err != nil {
		return err
	}
	err = w.Watch(a.Config.ContentDir, func(path string) {
		a.Echo.Logger.Infof("content changed: %s", path)
		a.Cache.Invalidate()
	})
	if err != nil {
		w.Stop()
		return err
	}
	a.watcher = w
	return nil
}

// Start initializes the app and serves until the server is shut down.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)
	e.Static("/maps", a.Config.MapDir)
	e.GET("/previews/:file", a.handlePreview)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleHome)
	e.GET("/lore/", handleLoreRedirect)
	e.GET("/lore/:category/", a.handleCategory)
	e.GET("/lore/:category/:slug/", a.handleEntry)
	e.GET("/map/", a.handleMap)

	api := e.Group("/api", middleware.BodyLimit("2M"))
	api.GET("/admin/status", handleAdminStatus)
	api.POST("/admin/login", a.handleAdminLogin)
	api.POST("/admin/logout", handleAdminLogout)
	api.GET("/pins", a.handleGetPins)
	api.POST("/pins", a.handleSavePins, requireAdmin)
	api.POST("/cover-position", a.handleSaveCover, requireAdmin)
	api.GET("/entries", a.handleEntries)
	api.GET("/layers", a.handleLayers)
}

// Close stops the content watcher and the login limiter and closes the store.
func (a *App) Close() error {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("atlas: required environment variable %s is not set", key)
	}
	return v
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(filepath.Join(a.staticDir, "favicon.svg"))
}
