package atlas

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/eringen/atlas/content"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base string
		segs []string
		want string
	}{
		{"https://atlas.example", nil, "https://atlas.example"},
		{"https://atlas.example", []string{"lore", "places", "harbor"}, "https://atlas.example/lore/places/harbor/"},
		{"https://atlas.example/world/", []string{"map"}, "https://atlas.example/world/map/"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segs...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segs, got, tt.want)
		}
	}
}

func TestAbsoluteURL(t *testing.T) {
	tests := []struct {
		ref, want string
	}{
		{"", ""},
		{"/public/harbor.jpg", "https://atlas.example/public/harbor.jpg"},
		{"https://cdn.example/x.jpg", "https://cdn.example/x.jpg"},
	}
	for _, tt := range tests {
		if got := absoluteURL("https://atlas.example", tt.ref); got != tt.want {
			t.Errorf("absoluteURL(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}

func TestEntryJsonLD(t *testing.T) {
	e := content.Entry{
		Category: "places",
		Slug:     "harbor",
		Title:    "Harbor",
		Tags:     []string{"city", "coast"},
		ModTime:  time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC),
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(EntryJsonLD(e, SiteConfig{URL: "https://atlas.example", Name: "Atlas"})), &data); err != nil {
		t.Fatal(err)
	}
	if data["url"] != "https://atlas.example/lore/places/harbor/" {
		t.Errorf("url = %v", data["url"])
	}
	if data["keywords"] != "city, coast" || data["dateModified"] != "2026-03-04" {
		t.Errorf("unexpected data %v", data)
	}
	if _, ok := data["author"]; ok {
		t.Error("author should be omitted without SiteConfig.Author")
	}
}
