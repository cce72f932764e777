package pin

import (
	"errors"
	"strings"
	"testing"
)

func TestDecodeValidDocument(t *testing.T) {
	input := `{"pins":[
		{"id":"a","x":0.25,"y":0.75,"title":"Harbor","subtitle":"Old port","linkedCategory":"places","linkedSlug":"harbor"},
		{"id":"b","x":1.5,"y":-2,"title":"  ","description":null}
	]}`
	pins, err := Decode([]byte(input))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(pins) != 2 {
		t.Fatalf("len(pins) = %d, want 2", len(pins))
	}
	if pins[0].Title != "Harbor" || pins[0].Subtitle != "Old port" {
		t.Errorf("pins[0] = %+v", pins[0])
	}
	if pins[0].LinkPath() != "/lore/places/harbor/" {
		t.Errorf("LinkPath = %q", pins[0].LinkPath())
	}
	if pins[1].X != 1 || pins[1].Y != 0 {
		t.Errorf("coordinates not clamped: %+v", pins[1])
	}
	if pins[1].Title != DefaultTitle {
		t.Errorf("Title = %q, want %q", pins[1].Title, DefaultTitle)
	}
}

func TestDecodeRejectsMalformedRecords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		index int
		field string
	}{
		{"missing pins", `{}`, -1, "pins"},
		{"null pins", `{"pins":null}`, -1, "pins"},
		{"pins not array", `{"pins":{"id":"a"}}`, -1, "pins"},
		{"record not object", `{"pins":[42]}`, 0, "record"},
		{"missing id", `{"pins":[{"x":0,"y":0,"title":"t"}]}`, 0, "id"},
		{"empty id", `{"pins":[{"id":" ","x":0,"y":0,"title":"t"}]}`, 0, "id"},
		{"numeric id", `{"pins":[{"id":7,"x":0,"y":0,"title":"t"}]}`, 0, "id"},
		{"string x", `{"pins":[{"id":"a","x":"0.5","y":0,"title":"t"}]}`, 0, "x"},
		{"null y", `{"pins":[{"id":"a","x":0.5,"y":null,"title":"t"}]}`, 0, "y"},
		{"missing title", `{"pins":[{"id":"a","x":0.5,"y":0.5}]}`, 0, "title"},
		{"bad optional", `{"pins":[{"id":"a","x":0.5,"y":0.5,"title":"t","subtitle":3}]}`, 0, "subtitle"},
		{"duplicate id", `{"pins":[{"id":"a","x":0,"y":0,"title":"t"},{"id":"a","x":1,"y":1,"title":"u"}]}`, 1, "id"},
	}
	for _, tt := range tests {
		_, err := Decode([]byte(tt.input))
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("%s: expected ValidationError, got %v", tt.name, err)
			continue
		}
		if verr.Index != tt.index || verr.Field != tt.field {
			t.Errorf("%s: got index=%d field=%q, want index=%d field=%q", tt.name, verr.Index, verr.Field, tt.index, tt.field)
		}
	}
}

func TestDecodeInvalidJSON(t *testing.T) {
	_, err := Decode([]byte(`{"pins":[`))
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

func TestEncodeEmptyList(t *testing.T) {
	b, err := Encode(nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.Contains(string(b), `"pins": []`) {
		t.Errorf("Encode(nil) = %s, want empty array", b)
	}
	pins, err := Decode(b)
	if err != nil || len(pins) != 0 {
		t.Errorf("Decode(Encode(nil)) = %v, %v", pins, err)
	}
}

func TestApplyPatch(t *testing.T) {
	p := Pin{ID: "a", X: 0.1, Y: 0.1, Title: "Keep", LinkedCategory: "places", LinkedSlug: "harbor"}

	got := p.Apply(Patch{Title: String(""), X: Float(2)})
	if got.Title != DefaultTitle {
		t.Errorf("Title = %q, want %q", got.Title, DefaultTitle)
	}
	if got.X != 1 {
		t.Errorf("X = %v, want 1", got.X)
	}
	if got.ID != "a" {
		t.Errorf("ID changed to %q", got.ID)
	}

	got = p.Apply(Patch{LinkedSlug: String("")})
	if got.LinkedCategory != "" || got.LinkedSlug != "" {
		t.Errorf("half-set link should be cleared, got %q/%q", got.LinkedCategory, got.LinkedSlug)
	}
	if got.LinkPath() != "" {
		t.Errorf("LinkPath = %q, want empty", got.LinkPath())
	}
}
