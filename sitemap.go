package atlas

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/atlas/content"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func (a *App) renderSitemap(c echo.Context, lib *content.Library) error {
	base := a.Config.URL
	urls := []sitemapURL{
		{Loc: BuildURL(base)},
		{Loc: BuildURL(base, "map")},
	}
	for _, cat := range lib.Categories {
		urls = append(urls, sitemapURL{Loc: BuildURL(base, "lore", cat.Name)})
		for _, e := range cat.Entries {
			u := sitemapURL{Loc: BuildURL(base, "lore", e.Category, e.Slug)}
			if !e.ModTime.IsZero() {
				u.LastMod = e.ModTime.UTC().Format("2006-01-02")
			}
			urls = append(urls, u)
		}
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
