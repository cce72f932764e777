// Package pin defines map pins and the schema-checked codec used wherever a
// pin list crosses a persistence or network boundary.
package pin

import (
	"math"
	"net/url"
	"strings"
)

const (
	// DefaultTitle replaces a blank title.
	DefaultTitle = "Untitled"
	// NewTitle is the title given to a freshly placed pin.
	NewTitle = "New pin"
)

// Pin is a point of interest anchored to normalized map coordinates.
type Pin struct {
	ID             string  `json:"id"`
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	Title          string  `json:"title"`
	Subtitle       string  `json:"subtitle,omitempty"`
	Description    string  `json:"description,omitempty"`
	LinkedCategory string  `json:"linkedCategory,omitempty"`
	LinkedSlug     string  `json:"linkedSlug,omitempty"`
}

// Document is the persisted and wire shape of a pin collection.
type Document struct {
	Pins []Pin `json:"pins"`
}

// Patch carries a partial update. Nil fields are left untouched.
type Patch struct {
	X              *float64
	Y              *float64
	Title          *string
	Subtitle       *string
	Description    *string
	LinkedCategory *string
	LinkedSlug     *string
}

// String returns a pointer to s, for building patches.
func String(s string) *string { return &s }

// Float returns a pointer to f, for building patches.
func Float(f float64) *float64 { return &f }

// Clamp01 clamps v into [0,1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Normalized returns p with clamped coordinates and a non-blank title.
func (p Pin) Normalized() Pin {
	p.X = Clamp01(p.X)
	p.Y = Clamp01(p.Y)
	if strings.TrimSpace(p.Title) == "" {
		p.Title = DefaultTitle
	}
	return p
}

// Apply merges patch into p and returns the normalized result.
// A link left half-set by the patch is cleared entirely.
func (p Pin) Apply(patch Patch) Pin {
	if patch.X != nil {
		p.X = *patch.X
	}
	if patch.Y != nil {
		p.Y = *patch.Y
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Subtitle != nil {
		p.Subtitle = *patch.Subtitle
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.LinkedCategory != nil {
		p.LinkedCategory = strings.TrimSpace(*patch.LinkedCategory)
	}
	if patch.LinkedSlug != nil {
		p.LinkedSlug = strings.TrimSpace(*patch.LinkedSlug)
	}
	if (p.LinkedCategory == "") != (p.LinkedSlug == "") {
		p.LinkedCategory = ""
		p.LinkedSlug = ""
	}
	return p.Normalized()
}

// HasLink reports whether the pin points at a lore entry.
func (p Pin) HasLink() bool {
	return p.LinkedCategory != "" && p.LinkedSlug != ""
}

// LinkPath returns the site path of the linked entry, or "" without a link.
func (p Pin) LinkPath() string {
	if !p.HasLink() {
		return ""
	}
	return "/lore/" + url.PathEscape(p.LinkedCategory) + "/" + url.PathEscape(p.LinkedSlug) + "/"
}

// Clone returns a copy of pins that shares no backing array.
func Clone(pins []Pin) []Pin {
	out := make([]Pin, len(pins))
	copy(out, pins)
	return out
}
