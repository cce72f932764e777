package atlas

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/eringen/atlas/pin"
)

func openTestStores(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()
	stores := map[string]Store{}
	for backend, path := range map[string]string{
		BackendJSON:   filepath.Join(dir, "json"),
		BackendSQLite: filepath.Join(dir, "sqlite", "atlas.db"),
		BackendBolt:   filepath.Join(dir, "bolt", "atlas.bolt"),
	} {
		s, err := OpenStore(backend, path)
		if err != nil {
			t.Fatalf("OpenStore(%s): %v", backend, err)
		}
		t.Cleanup(func() { s.Close() })
		stores[backend] = s
	}
	return stores
}

var samplePins = []pin.Pin{
	{ID: "abc", X: 0.2, Y: 0.3, Title: "Harbor", LinkedCategory: "places", LinkedSlug: "harbor"},
	{ID: "def", X: 0.9, Y: 0.1, Title: "Keep", Subtitle: "ruined", Description: "Old stones."},
}

func TestStoreEmptyOnFirstOpen(t *testing.T) {
	for name, s := range openTestStores(t) {
		pins, err := s.LoadPins()
		if err != nil {
			t.Fatalf("%s: LoadPins: %v", name, err)
		}
		if pins == nil || len(pins) != 0 {
			t.Errorf("%s: expected empty non-nil list, got %#v", name, pins)
		}
	}
}

func TestStoreReplacesWholeList(t *testing.T) {
	for name, s := range openTestStores(t) {
		if err := s.SavePins(samplePins); err != nil {
			t.Fatalf("%s: SavePins: %v", name, err)
		}
		got, err := s.LoadPins()
		if err != nil {
			t.Fatalf("%s: LoadPins: %v", name, err)
		}
		if !reflect.DeepEqual(got, samplePins) {
			t.Errorf("%s: got %#v, want %#v", name, got, samplePins)
		}

		if err := s.SavePins(samplePins[1:]); err != nil {
			t.Fatalf("%s: SavePins: %v", name, err)
		}
		got, _ = s.LoadPins()
		if len(got) != 1 || got[0].ID != "def" {
			t.Errorf("%s: expected only def after replace, got %#v", name, got)
		}

		if err := s.SavePins(nil); err != nil {
			t.Fatalf("%s: SavePins(nil): %v", name, err)
		}
		got, _ = s.LoadPins()
		if len(got) != 0 {
			t.Errorf("%s: expected empty list, got %#v", name, got)
		}
	}
}

func TestStoreCoverPositions(t *testing.T) {
	for name, s := range openTestStores(t) {
		p, err := s.CoverPosition("places", "harbor")
		if err != nil {
			t.Fatalf("%s: CoverPosition: %v", name, err)
		}
		if p.X != 50 || p.Y != 50 {
			t.Errorf("%s: expected default 50/50, got %v/%v", name, p.X, p.Y)
		}

		if err := s.SaveCoverPosition(CoverPosition{Category: "places", Slug: "harbor", X: 140, Y: -3}); err != nil {
			t.Fatalf("%s: SaveCoverPosition: %v", name, err)
		}
		if err := s.SaveCoverPosition(CoverPosition{Category: "people", Slug: "ada", X: 25, Y: 75}); err != nil {
			t.Fatalf("%s: SaveCoverPosition: %v", name, err)
		}
		p, _ = s.CoverPosition("places", "harbor")
		if p.X != 100 || p.Y != 0 {
			t.Errorf("%s: expected clamped 100/0, got %v/%v", name, p.X, p.Y)
		}

		all, err := s.CoverPositions()
		if err != nil {
			t.Fatalf("%s: CoverPositions: %v", name, err)
		}
		if len(all) != 2 || all[0].Category != "people" {
			t.Errorf("%s: unexpected positions %#v", name, all)
		}
	}
}

func TestJSONStoreRejectsCorruptDocument(t *testing.T) {
	dir := t.TempDir()
	s, err := NewJSONStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.PinsPath(), []byte(`{"pins":[{"id":"","x":0,"y":0,"title":"x"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = s.LoadPins()
	var verr *pin.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestJSONStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewJSONStore(dir)
	for i := 0; i < 3; i++ {
		if err := s.SavePins(samplePins); err != nil {
			t.Fatal(err)
		}
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 || entries[0].Name() != pinsFile {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only %s, found %v", pinsFile, names)
	}
}

func TestCopyStore(t *testing.T) {
	stores := openTestStores(t)
	src, dst := stores[BackendJSON], stores[BackendBolt]
	src.SavePins(samplePins)
	src.SaveCoverPosition(CoverPosition{Category: "places", Slug: "keep", X: 10, Y: 20})

	if err := CopyStore(dst, src); err != nil {
		t.Fatalf("CopyStore: %v", err)
	}
	got, _ := dst.LoadPins()
	if !reflect.DeepEqual(got, samplePins) {
		t.Errorf("pins not copied: %#v", got)
	}
	p, _ := dst.CoverPosition("places", "keep")
	if p.X != 10 || p.Y != 20 {
		t.Errorf("cover not copied: %#v", p)
	}
}

func TestOpenStoreUnknownBackend(t *testing.T) {
	if _, err := OpenStore("redis", t.TempDir()); !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("expected ErrUnknownBackend, got %v", err)
	}
}

func TestParseStoreURL(t *testing.T) {
	tests := []struct {
		in, backend, path string
	}{
		{"sqlite:data/atlas.db", "sqlite", "data/atlas.db"},
		{"BOLT:x.bolt", "bolt", "x.bolt"},
		{"json:data", "json", "data"},
		{"data", "json", "data"},
		{"C:/data", "json", "C:/data"},
	}
	for _, tt := range tests {
		b, p := ParseStoreURL(tt.in)
		if b != tt.backend || p != tt.path {
			t.Errorf("ParseStoreURL(%q) = %q, %q; want %q, %q", tt.in, b, p, tt.backend, tt.path)
		}
	}
}
