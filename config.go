package atlas

import "time"

// DefaultLayers are the map layers looked for in MapDir when none are configured.
var DefaultLayers = []string{"current", "political", "elevation", "biome"}

// SiteConfig holds all configuration for an atlas site.
type SiteConfig struct {
	Name        string // Site name (default "Atlas")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags
	Author      string // Author name for JSON-LD

	Addr       string // Listen address (default ":3000")
	ContentDir string // Lore tree (default "content")
	MapDir     string // Layer images (default "public/maps")

	StoreBackend string // "json", "sqlite" or "bolt" (default "json")
	StorePath    string // Backend location (default depends on backend)

	Layers       []string // Layer names in display order (default DefaultLayers)
	DefaultLayer string   // Layer shown first (default: first available)

	AdminPassword string // Required: admin login password
	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	ContentCacheTTL time.Duration // Entry cache TTL (default 5min)
	WatchContent    bool          // Invalidate the entry cache on file changes
	ShowDrafts      bool          // Serve entries marked draft

	LoginAttempts int           // Failed logins allowed per IP per window (default 5)
	LoginWindow   time.Duration // Login rate limit window (default 1min)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Atlas"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.MapDir == "" {
		c.MapDir = "public/maps"
	}
	if c.StoreBackend == "" {
		c.StoreBackend = BackendJSON
	}
	if c.StorePath == "" {
		c.StorePath = DefaultStorePath(c.StoreBackend)
	}
	if len(c.Layers) == 0 {
		c.Layers = DefaultLayers
	}
	if c.ContentCacheTTL == 0 {
		c.ContentCacheTTL = 5 * time.Minute
	}
	if c.LoginAttempts == 0 {
		c.LoginAttempts = 5
	}
	if c.LoginWindow == 0 {
		c.LoginWindow = time.Minute
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are set up.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithStore supplies an already opened store instead of opening the
// configured backend. The App closes it on Close.
func WithStore(s Store) Option {
	return func(a *App) {
		a.Store = s
	}
}
