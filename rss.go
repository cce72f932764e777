package atlas

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/atlas/content"
)

const feedItems = 20

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Category    string `xml:"category,omitempty"`
	PubDate     string `xml:"pubDate,omitempty"`
	GUID        string `xml:"guid"`
}

// renderRSS writes the most recently changed entries as an RSS 2.0 feed.
func (a *App) renderRSS(c echo.Context, entries []content.Entry) error {
	base := a.Config.URL
	if len(entries) > feedItems {
		entries = entries[:feedItems]
	}
	items := make([]rssItem, 0, len(entries))
	for _, e := range entries {
		pubDate := ""
		if !e.ModTime.IsZero() {
			pubDate = e.ModTime.UTC().Format(time.RFC1123Z)
		}
		entryURL := BuildURL(base, "lore", e.Category, e.Slug)
		items = append(items, rssItem{
			Title:       e.Title,
			Link:        entryURL,
			Description: e.Summary,
			Category:    e.Category,
			PubDate:     pubDate,
			GUID:        entryURL,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        base,
			Description: a.Config.Description,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
