package views

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/eringen/atlas"
	"github.com/eringen/atlas/content"
	"github.com/eringen/atlas/pin"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func TestMapRendersPinsAndBootstrapData(t *testing.T) {
	page := atlas.MapPage{
		Meta: atlas.PageMeta{Title: "Map | Atlas"},
		Site: atlas.SiteConfig{Name: "Atlas"},
		Layers: []atlas.LayerInfo{
			{Name: "current", Title: "Current", URL: "/maps/current.webp", Width: 2000, Height: 1500},
		},
		Layer: "current",
		Pins: []pin.Pin{
			{ID: "abc", X: 0.25, Y: 0.5, Title: "<Harbor>", LinkedCategory: "places", LinkedSlug: "harbor"},
		},
		Entries: []content.Summary{{Category: "places", Slug: "harbor", Title: "Harbor"}},
	}
	out := render(t, Map(page))

	for _, want := range []string{
		`width="2000" height="1500"`,
		`style="left:25.00%;top:50.00%"`,
		`href="/lore/places/harbor/"`,
		`&lt;Harbor&gt;`,
		`<script type="application/json" id="atlas-data">`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output", want)
		}
	}
	if strings.Contains(out, "<Harbor>") {
		t.Error("pin title was not escaped")
	}
}

func TestMapWithoutLayers(t *testing.T) {
	out := render(t, Map(atlas.MapPage{Site: atlas.SiteConfig{Name: "Atlas"}}))
	if !strings.Contains(out, "No map images found.") {
		t.Errorf("expected empty state, got %s", out)
	}
}

func TestMapDataJSONEscapesScriptClose(t *testing.T) {
	got := MapDataJSON(atlas.MapPage{Pins: []pin.Pin{{ID: "x", Title: "</script>"}}})
	if strings.Contains(got, "</script>") {
		t.Fatalf("script terminator leaked into %s", got)
	}
	if !strings.Contains(got, `"pins":[`) {
		t.Fatalf("missing pins in %s", got)
	}
}

func TestEntryRendersNeighboursAndCover(t *testing.T) {
	prev := content.Entry{Category: "places", Slug: "abbey", Title: "Abbey"}
	page := atlas.EntryPage{
		Site:     atlas.SiteConfig{Name: "Atlas", URL: "https://example.com"},
		Entry:    content.Entry{Category: "places", Slug: "harbor", Title: "Harbor", Cover: "/public/harbor.jpg"},
		Category: content.Category{Name: "places", Title: "Places"},
		Body:     templ.Raw("<p>Salt and rope.</p>"),
		Cover:    atlas.CoverPosition{X: 30, Y: 70},
		Prev:     &prev,
	}
	out := render(t, Entry(page))
	for _, want := range []string{
		`<p>Salt and rope.</p>`,
		`object-position:30.00% 70.00%`,
		`rel="prev" href="/lore/places/abbey/"`,
		`"@type":"Article"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output", want)
		}
	}
}

func TestErrorPages(t *testing.T) {
	if out := render(t, NotFound()); !strings.Contains(out, "Not found") {
		t.Errorf("unexpected not found page: %s", out)
	}
	if out := render(t, ServerError()); !strings.Contains(out, "Something went wrong") {
		t.Errorf("unexpected error page: %s", out)
	}
}
