package atlas

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"

	"github.com/eringen/atlas/content"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// absoluteURL resolves a site-relative asset path such as a cover image
// against base. Absolute URLs and empty strings pass through.
func absoluteURL(base, ref string) string {
	if ref == "" {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil || r.IsAbs() {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

// JoinTags joins tags with ", ".
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema using SiteConfig.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "WebSite",
		"name":        cfg.Name,
		"url":         BuildURL(cfg.URL),
		"description": cfg.Description,
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// EntryJsonLD returns a JSON-LD string for an Article schema describing a
// lore entry.
func EntryJsonLD(e content.Entry, cfg SiteConfig) string {
	entryURL := BuildURL(cfg.URL, "lore", e.Category, e.Slug)
	data := map[string]interface{}{
		"@context":       "https://schema.org",
		"@type":          "Article",
		"headline":       e.Title,
		"description":    e.Summary,
		"url":            entryURL,
		"articleSection": e.Category,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   entryURL,
		},
	}
	if !e.ModTime.IsZero() {
		data["dateModified"] = e.ModTime.UTC().Format("2006-01-02")
	}
	if e.Cover != "" {
		data["image"] = absoluteURL(cfg.URL, e.Cover)
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	if cfg.Name != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		}
	}
	if len(e.Tags) > 0 {
		data["keywords"] = strings.Join(e.Tags, ", ")
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
