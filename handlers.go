package atlas

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/eringen/atlas/content"
	"github.com/eringen/atlas/markdown"
	"github.com/eringen/atlas/pin"
)

const recentEntries = 6

func (a *App) handleHome(c echo.Context) error {
	lib, err := a.Cache.Library()
	if err != nil {
		return err
	}
	layers, err := a.Layers.List()
	if err != nil {
		return err
	}
	return Render(c, a.Views.Home(HomePage{
		Meta: PageMeta{
			Title:       a.Config.Name,
			Description: a.Config.Description,
			URL:         BuildURL(a.Config.URL),
			OGType:      "website",
		},
		Site:       a.Config,
		Categories: lib.Categories,
		Recent:     lib.Recent(recentEntries),
		Layers:     layers,
	}))
}

func (a *App) handleCategory(c echo.Context) error {
	lib, err := a.Cache.Library()
	if err != nil {
		return err
	}
	cat, err := lib.Category(c.Param("category"))
	if err != nil {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	}
	return Render(c, a.Views.Category(CategoryPage{
		Meta: PageMeta{
			Title:       cat.Title + " | " + a.Config.Name,
			Description: a.Config.Description,
			URL:         BuildURL(a.Config.URL, "lore", cat.Name),
			OGType:      "website",
		},
		Site:       a.Config,
		Category:   cat,
		Categories: lib.Categories,
	}))
}

func (a *App) handleEntry(c echo.Context) error {
	lib, err := a.Cache.Library()
	if err != nil {
		return err
	}
	cat, err := lib.Category(c.Param("category"))
	if err != nil {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	}
	idx := -1
	for i, e := range cat.Entries {
		if e.Slug == c.Param("slug") {
			idx = i
			break
		}
	}
	if idx < 0 {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	}
	entry := cat.Entries[idx]

	cover, err := a.Store.CoverPosition(entry.Category, entry.Slug)
	if err != nil {
		return err
	}
	pins, err := a.Store.LoadPins()
	if err != nil {
		return err
	}

	page := EntryPage{
		Meta: PageMeta{
			Title:       entry.Title + " | " + a.Config.Name,
			Description: entry.Summary,
			URL:         BuildURL(a.Config.URL, "lore", entry.Category, entry.Slug),
			OGType:      "article",
			Image:       absoluteURL(a.Config.URL, entry.Cover),
		},
		Site:     a.Config,
		Entry:    entry,
		Category: cat,
		Body:     markdown.Markdown(entry.Body, markdown.Options{Resolve: lib.Resolve}),
		Headings: markdown.Headings(entry.Body),
		Cover:    cover,
		Pins:     pinsLinkedTo(pins, entry),
		Admin:    IsAdmin(c),
		CSRF:     CsrfToken(c),
	}
	if idx > 0 {
		page.Prev = &cat.Entries[idx-1]
	}
	if idx+1 < len(cat.Entries) {
		page.Next = &cat.Entries[idx+1]
	}
	return Render(c, a.Views.Entry(page))
}

func pinsLinkedTo(pins []pin.Pin, e content.Entry) []pin.Pin {
	var out []pin.Pin
	for _, p := range pins {
		if p.LinkedCategory == e.Category && p.LinkedSlug == e.Slug {
			out = append(out, p)
		}
	}
	return out
}

func (a *App) handleMap(c echo.Context) error {
	layers, err := a.Layers.List()
	if err != nil {
		return err
	}
	preferred := c.QueryParam("layer")
	if preferred == "" {
		preferred = a.Config.DefaultLayer
	}
	layer := DefaultLayer(layers, preferred)
	pins, err := a.Store.LoadPins()
	if err != nil {
		return err
	}
	entries, err := a.Cache.Summaries()
	if err != nil {
		return err
	}
	return Render(c, a.Views.Map(MapPage{
		Meta: PageMeta{
			Title:       "Map | " + a.Config.Name,
			Description: a.Config.Description,
			URL:         BuildURL(a.Config.URL, "map"),
			OGType:      "website",
		},
		Site:    a.Config,
		Layers:  layers,
		Layer:   layer,
		Pins:    pins,
		Entries: entries,
		Admin:   IsAdmin(c),
		CSRF:    CsrfToken(c),
	}))
}

func (a *App) handleSitemap(c echo.Context) error {
	lib, err := a.Cache.Library()
	if err != nil {
		return err
	}
	return a.renderSitemap(c, lib)
}

func (a *App) handleFeed(c echo.Context) error {
	lib, err := a.Cache.Library()
	if err != nil {
		return err
	}
	return a.renderRSS(c, lib.Recent(0))
}

func handleLoreRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/")
}

// handleRobots serves the user's robots.txt, or a permissive one pointing at
// the sitemap.
func (a *App) handleRobots(c echo.Context) error {
	path := filepath.Join(a.staticDir, "robots.txt")
	if _, err := os.Stat(path); err == nil {
		return c.File(path)
	}
	return c.String(http.StatusOK, "User-agent: *\nAllow: /\n\nSitemap: "+a.Config.URL+"/sitemap.xml\n")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
	}
	if isAPI(c) {
		msg := http.StatusText(code)
		if ok && code < 500 {
			if s, isStr := he.Message.(string); isStr {
				msg = s
			}
		}
		_ = jsonError(c, code, msg)
		return
	}
	switch {
	case code == http.StatusNotFound:
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	case code >= 500:
		_ = RenderStatus(c, code, a.Views.ServerError())
	default:
		a.Echo.DefaultHTTPErrorHandler(err, c)
	}
}
