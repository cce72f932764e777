package atlas

import (
	"github.com/a-h/templ"

	"github.com/eringen/atlas/content"
	"github.com/eringen/atlas/markdown"
	"github.com/eringen/atlas/pin"
)

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
}

// CoverPosition is the focal point of an entry's cover image, in percent.
type CoverPosition struct {
	Category string  `json:"category"`
	Slug     string  `json:"slug"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// LayerInfo describes one map layer image.
type LayerInfo struct {
	Name       string `json:"name"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	PreviewURL string `json:"previewUrl"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

// HomePage is the data for the landing page.
type HomePage struct {
	Meta       PageMeta
	Site       SiteConfig
	Categories []content.Category
	Recent     []content.Entry
	Layers     []LayerInfo
}

// CategoryPage lists the entries of one category.
type CategoryPage struct {
	Meta       PageMeta
	Site       SiteConfig
	Category   content.Category
	Categories []content.Category
}

// EntryPage renders a single lore entry.
type EntryPage struct {
	Meta     PageMeta
	Site     SiteConfig
	Entry    content.Entry
	Category content.Category
	Body     templ.Component
	Headings []markdown.Heading
	Cover    CoverPosition
	Prev     *content.Entry
	Next     *content.Entry
	Pins     []pin.Pin // pins linking to this entry
	Admin    bool
	CSRF     string
}

// MapPage is the interactive map. Pins and Entries seed the client session.
type MapPage struct {
	Meta    PageMeta
	Site    SiteConfig
	Layers  []LayerInfo
	Layer   string
	Pins    []pin.Pin
	Entries []content.Summary
	Admin   bool
	CSRF    string
}
