// Package views provides the default HTML views for an atlas site. Sites
// that want their own markup replace individual atlas.ViewFuncs fields.
package views

import (
	"context"
	"io"
	"net/url"

	"github.com/a-h/templ"

	"github.com/eringen/atlas"
	"github.com/eringen/atlas/content"
)

// Default returns the built-in views.
func Default() atlas.ViewFuncs {
	return atlas.ViewFuncs{
		Home:        Home,
		Category:    Category,
		Entry:       Entry,
		Map:         Map,
		NotFound:    NotFound,
		ServerError: ServerError,
	}
}

func layout(meta atlas.PageMeta, site atlas.SiteConfig, jsonLD string, body func(ctx context.Context, h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw("<!DOCTYPE html>\n<html lang=\"en\"><head><meta charset=\"utf-8\">")
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw("<title>")
		h.text(meta.Title)
		h.raw("</title>")
		if meta.Description != "" {
			h.raw(`<meta name="description" content="`)
			h.text(meta.Description)
			h.raw(`">`)
		}
		if meta.URL != "" {
			h.raw(`<link rel="canonical" href="`)
			h.href(meta.URL)
			h.raw(`"><meta property="og:url" content="`)
			h.href(meta.URL)
			h.raw(`">`)
		}
		h.raw(`<meta property="og:title" content="`)
		h.text(meta.Title)
		h.raw(`"><meta property="og:type" content="`)
		h.text(meta.OGType)
		h.raw(`">`)
		if meta.Image != "" {
			h.raw(`<meta property="og:image" content="`)
			h.href(meta.Image)
			h.raw(`">`)
		}
		h.raw(`<link rel="alternate" type="application/rss+xml" href="/feed.xml">`)
		h.raw(`<link rel="stylesheet" href="/public/styles.css">`)
		if jsonLD != "" {
			h.raw(`<script type="application/ld+json">`)
			h.raw(jsonLD)
			h.raw(`</script>`)
		}
		h.raw(`</head><body><header><a href="/" class="site-name">`)
		h.text(site.Name)
		h.raw(`</a> <nav><a href="/map/">Map</a></nav></header><main>`)
		body(ctx, h)
		h.raw(`</main></body></html>`)
		return h.err
	})
}

func entryList(h *htmlWriter, entries []content.Entry) {
	h.raw(`<ul class="entries">`)
	for _, e := range entries {
		h.raw(`<li><a href="`)
		h.href(e.URL())
		h.raw(`">`)
		h.text(e.Title)
		h.raw(`</a>`)
		if e.Summary != "" {
			h.raw(` <span class="summary">`)
			h.text(e.Summary)
			h.raw(`</span>`)
		}
		h.raw(`</li>`)
	}
	h.raw(`</ul>`)
}

// Home lists every category, the recently changed entries and the map layers.
func Home(p atlas.HomePage) templ.Component {
	return layout(p.Meta, p.Site, atlas.WebsiteJsonLD(p.Site), func(_ context.Context, h *htmlWriter) {
		h.raw(`<h1>`)
		h.text(p.Site.Name)
		h.raw(`</h1>`)
		if p.Site.Description != "" {
			h.raw(`<p class="lead">`)
			h.text(p.Site.Description)
			h.raw(`</p>`)
		}
		if len(p.Layers) > 0 {
			h.raw(`<section class="layers"><h2>Maps</h2><ul>`)
			for _, l := range p.Layers {
				h.raw(`<li><a href="/map/?layer=`)
				h.text(url.QueryEscape(l.Name))
				h.raw(`"><img src="`)
				h.href(l.PreviewURL)
				h.raw(`" alt="" loading="lazy"> `)
				h.text(l.Title)
				h.raw(`</a></li>`)
			}
			h.raw(`</ul></section>`)
		}
		for _, c := range p.Categories {
			h.raw(`<section class="category"><h2><a href="`)
			h.href(c.URL())
			h.raw(`">`)
			h.text(c.Title)
			h.raw(`</a></h2>`)
			entryList(h, c.Entries)
			h.raw(`</section>`)
		}
		if len(p.Recent) > 0 {
			h.raw(`<section class="recent"><h2>Recently updated</h2>`)
			entryList(h, p.Recent)
			h.raw(`</section>`)
		}
	})
}

// Category lists the entries of one category.
func Category(p atlas.CategoryPage) templ.Component {
	return layout(p.Meta, p.Site, "", func(_ context.Context, h *htmlWriter) {
		h.raw(`<h1>`)
		h.text(p.Category.Title)
		h.raw(`</h1>`)
		entryList(h, p.Category.Entries)
		h.raw(`<nav class="categories">`)
		for _, c := range p.Categories {
			h.raw(`<a href="`)
			h.href(c.URL())
			h.raw(`">`)
			h.text(c.Title)
			h.raw(`</a> `)
		}
		h.raw(`</nav>`)
	})
}

// Entry renders a lore entry with its cover, table of contents, linked pins
// and neighbours.
func Entry(p atlas.EntryPage) templ.Component {
	return layout(p.Meta, p.Site, atlas.EntryJsonLD(p.Entry, p.Site), func(ctx context.Context, h *htmlWriter) {
		h.raw(`<article><p class="breadcrumb"><a href="`)
		h.href(p.Category.URL())
		h.raw(`">`)
		h.text(p.Category.Title)
		h.raw(`</a></p>`)
		if p.Entry.Cover != "" {
			h.raw(`<img class="cover" src="`)
			h.href(p.Entry.Cover)
			h.raw(`" alt="" style="`)
			h.text(CoverStyle(p.Cover))
			h.raw(`" data-category="`)
			h.text(p.Entry.Category)
			h.raw(`" data-slug="`)
			h.text(p.Entry.Slug)
			h.raw(`">`)
		}
		h.raw(`<h1>`)
		h.text(p.Entry.Title)
		h.raw(`</h1>`)
		if len(p.Entry.Tags) > 0 {
			h.raw(`<p class="tags">`)
			h.text(atlas.JoinTags(p.Entry.Tags))
			h.raw(`</p>`)
		}
		if len(p.Headings) > 1 {
			h.raw(`<nav class="toc"><ul>`)
			for _, hd := range p.Headings {
				h.rawf(`<li class="toc-%d"><a href="#`, hd.Level)
				h.text(hd.ID)
				h.raw(`">`)
				h.text(hd.Text)
				h.raw(`</a></li>`)
			}
			h.raw(`</ul></nav>`)
		}
		h.raw(`<div class="prose">`)
		if h.err == nil && p.Body != nil {
			h.err = p.Body.Render(ctx, h.w)
		}
		h.raw(`</div>`)
		if len(p.Pins) > 0 {
			h.raw(`<aside class="on-map"><h2>On the map</h2><ul>`)
			for _, pn := range p.Pins {
				h.raw(`<li><a href="/map/#pin-`)
				h.text(pn.ID)
				h.raw(`">`)
				h.text(pn.Title)
				h.raw(`</a></li>`)
			}
			h.raw(`</ul></aside>`)
		}
		h.raw(`<nav class="pager">`)
		if p.Prev != nil {
			h.raw(`<a rel="prev" href="`)
			h.href(p.Prev.URL())
			h.raw(`">`)
			h.text(p.Prev.Title)
			h.raw(`</a> `)
		}
		if p.Next != nil {
			h.raw(`<a rel="next" href="`)
			h.href(p.Next.URL())
			h.raw(`">`)
			h.text(p.Next.Title)
			h.raw(`</a>`)
		}
		h.raw(`</nav></article>`)
		if p.Admin {
			h.raw(`<meta name="csrf-token" content="`)
			h.text(p.CSRF)
			h.raw(`">`)
		}
	})
}

// Map renders the selected layer with its pins as positioned links. The
// bootstrap data for the interactive client is embedded as JSON.
func Map(p atlas.MapPage) templ.Component {
	return layout(p.Meta, p.Site, "", func(_ context.Context, h *htmlWriter) {
		h.raw(`<nav class="layer-switcher">`)
		for _, l := range p.Layers {
			h.raw(`<a href="/map/?layer=`)
			h.text(url.QueryEscape(l.Name))
			h.raw(`"`)
			if l.Name == p.Layer {
				h.raw(` aria-current="page"`)
			}
			h.raw(`>`)
			h.text(l.Title)
			h.raw(`</a> `)
		}
		h.raw(`</nav>`)
		layer, ok := findLayer(p.Layers, p.Layer)
		if !ok {
			h.raw(`<p class="empty">No map images found.</p>`)
			return
		}
		h.raw(`<div id="map-viewport" class="map-viewport"><div class="map-image">`)
		h.rawf(`<img src="%s" width="%d" height="%d" alt="`, templ.EscapeString(string(templ.URL(layer.URL))), layer.Width, layer.Height)
		h.text(layer.Title)
		h.raw(`" draggable="false">`)
		for _, pn := range p.Pins {
			h.raw(`<a class="pin" id="pin-`)
			h.text(pn.ID)
			h.raw(`" style="`)
			h.text(PinStyle(pn))
			h.raw(`" href="`)
			if pn.HasLink() {
				h.href(pn.LinkPath())
			} else {
				h.raw(`#pin-`)
				h.text(pn.ID)
			}
			h.raw(`" title="`)
			h.text(pn.Title)
			h.raw(`"><span class="pin-title">`)
			h.text(pn.Title)
			h.raw(`</span>`)
			if pn.Subtitle != "" {
				h.raw(`<span class="pin-subtitle">`)
				h.text(pn.Subtitle)
				h.raw(`</span>`)
			}
			h.raw(`</a>`)
		}
		h.raw(`</div></div>`)
		h.raw(`<script type="application/json" id="atlas-data">`)
		h.raw(MapDataJSON(p))
		h.raw(`</script><script src="/public/map.js" defer></script>`)
	})
}

func message(title, text string) templ.Component {
	site := atlas.SiteConfig{Name: "Atlas"}
	return layout(atlas.PageMeta{Title: title, OGType: "website"}, site, "", func(_ context.Context, h *htmlWriter) {
		h.raw(`<h1>`)
		h.text(title)
		h.raw(`</h1><p>`)
		h.text(text)
		h.raw(`</p><p><a href="/">Back to the atlas</a></p>`)
	})
}

// NotFound is rendered for unknown pages.
func NotFound() templ.Component {
	return message("Not found", "The page you were looking for does not exist.")
}

// ServerError is rendered when a page fails.
func ServerError() templ.Component {
	return message("Something went wrong", "The page could not be rendered. Try again later.")
}
