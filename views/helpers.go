package views

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/atlas"
	"github.com/eringen/atlas/content"
	"github.com/eringen/atlas/pin"
)

// htmlWriter accumulates the first write error so page bodies can be written
// as a flat sequence of calls.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *htmlWriter) rawf(format string, args ...any) {
	if h.err == nil {
		_, h.err = fmt.Fprintf(h.w, format, args...)
	}
}

// text writes s escaped for element content and attribute values.
func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

// href writes a sanitized, escaped URL attribute value.
func (h *htmlWriter) href(u string) {
	h.text(string(templ.URL(u)))
}

// PinStyle positions a pin marker over the map image in percent.
func PinStyle(p pin.Pin) string {
	return "left:" + percent(p.X*100) + ";top:" + percent(p.Y*100)
}

// CoverStyle sets the focal point of a cover image.
func CoverStyle(c atlas.CoverPosition) string {
	return "object-position:" + percent(c.X) + " " + percent(c.Y)
}

func percent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}

// mapData is the bootstrap document the map client reads on load.
type mapData struct {
	Layers  []atlas.LayerInfo `json:"layers"`
	Layer   string            `json:"layer"`
	Pins    []pin.Pin         `json:"pins"`
	Entries []content.Summary `json:"entries"`
	Admin   bool              `json:"admin"`
	CSRF    string            `json:"csrf"`
}

// MapDataJSON renders the map bootstrap data. json.Marshal escapes '<', so
// the result is safe inside a <script> element.
func MapDataJSON(p atlas.MapPage) string {
	pins := p.Pins
	if pins == nil {
		pins = []pin.Pin{}
	}
	b, err := json.Marshal(mapData{
		Layers:  p.Layers,
		Layer:   p.Layer,
		Pins:    pins,
		Entries: p.Entries,
		Admin:   p.Admin,
		CSRF:    p.CSRF,
	})
	if err != nil {
		return "{}"
	}
	return string(b)
}

func findLayer(layers []atlas.LayerInfo, name string) (atlas.LayerInfo, bool) {
	for _, l := range layers {
		if l.Name == name {
			return l, true
		}
	}
	return atlas.LayerInfo{}, false
}
