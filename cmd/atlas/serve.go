package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/atlas"
	"github.com/eringen/atlas/views"
)

var serveFlags struct {
	addr    string
	content string
	maps    string
	store   string
	static  string
	watch   bool
	drafts  bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the atlas web server",
	Long: `Run the atlas web server.

ATLAS_ADMIN_PASSWORD and ATLAS_SESSION_SECRET must be set. Other settings
come from ATLAS_* environment variables and may be overridden by flags.`,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveFlags.addr, "addr", "", "listen address (env ATLAS_ADDR, default :3000)")
	f.StringVar(&serveFlags.content, "content", "", "lore content directory (env ATLAS_CONTENT_DIR)")
	f.StringVar(&serveFlags.maps, "maps", "", "map layer image directory (env ATLAS_MAP_DIR)")
	f.StringVar(&serveFlags.store, "store", "", "pin store as backend:path, e.g. sqlite:data/atlas.db (env ATLAS_STORE)")
	f.StringVar(&serveFlags.static, "static", "public", "static asset directory")
	f.BoolVar(&serveFlags.watch, "watch", true, "reload content when files change")
	f.BoolVar(&serveFlags.drafts, "drafts", false, "serve entries marked draft")
}

func configFromEnv() atlas.SiteConfig {
	cfg := atlas.SiteConfig{
		Name:         atlas.EnvOr("ATLAS_SITE_NAME", ""),
		URL:          atlas.EnvOr("ATLAS_SITE_URL", ""),
		Description:  atlas.EnvOr("ATLAS_SITE_DESCRIPTION", ""),
		Author:       atlas.EnvOr("ATLAS_SITE_AUTHOR", ""),
		Addr:         atlas.EnvOr("ATLAS_ADDR", ""),
		ContentDir:   atlas.EnvOr("ATLAS_CONTENT_DIR", ""),
		MapDir:       atlas.EnvOr("ATLAS_MAP_DIR", ""),
		StoreBackend: atlas.EnvOr("ATLAS_STORE", ""),
		StorePath:    atlas.EnvOr("ATLAS_STORE_PATH", ""),
		DefaultLayer: atlas.EnvOr("ATLAS_DEFAULT_LAYER", ""),
		CookieSecure: atlas.EnvOr("ATLAS_COOKIE_SECURE", "") == "true",
	}
	if layers := atlas.EnvOr("ATLAS_LAYERS", ""); layers != "" {
		for _, l := range strings.Split(layers, ",") {
			if l = strings.TrimSpace(l); l != "" {
				cfg.Layers = append(cfg.Layers, l)
			}
		}
	}
	return cfg
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := configFromEnv()
	cfg.AdminPassword = atlas.MustEnv("ATLAS_ADMIN_PASSWORD")
	cfg.SessionSecret = atlas.MustEnv("ATLAS_SESSION_SECRET")
	if serveFlags.addr != "" {
		cfg.Addr = serveFlags.addr
	}
	if serveFlags.content != "" {
		cfg.ContentDir = serveFlags.content
	}
	if serveFlags.maps != "" {
		cfg.MapDir = serveFlags.maps
	}
	if serveFlags.store != "" {
		cfg.StoreBackend, cfg.StorePath = atlas.ParseStoreURL(serveFlags.store)
	}
	cfg.WatchContent = serveFlags.watch
	cfg.ShowDrafts = serveFlags.drafts

	app := atlas.New(cfg, views.Default(), atlas.WithStaticDir(serveFlags.static))
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()
	log.Printf("atlas: serving %s on %s", app.Config.ContentDir, app.Config.Addr)

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("atlas: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.Echo.Shutdown(shutdownCtx)
}
