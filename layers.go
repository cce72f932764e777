package atlas

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/eringen/atlas/content"
)

const (
	previewWidth = 480
	jpegQuality  = 80
)

// layerExts are the image formats a layer may be stored in, by preference.
var layerExts = []string{".webp", ".png", ".jpg", ".jpeg", ".gif"}

// LayerSet enumerates the map layer images in a directory.
type LayerSet struct {
	dir   string
	names []string

	mu       sync.Mutex
	previews map[string]preview
}

type preview struct {
	modTime time.Time
	data    []byte
}

// NewLayerSet returns the layers called names stored in dir.
func NewLayerSet(dir string, names []string) *LayerSet {
	return &LayerSet{dir: dir, names: names, previews: make(map[string]preview)}
}

func (s *LayerSet) find(name string) (string, os.FileInfo, bool) {
	for _, ext := range layerExts {
		path := filepath.Join(s.dir, name+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, info, true
		}
	}
	return "", nil, false
}

// List returns the layers whose image exists, in configured order, with
// their natural sizes read from the image headers.
func (s *LayerSet) List() ([]LayerInfo, error) {
	out := []LayerInfo{}
	for _, name := range s.names {
		path, _, ok := s.find(name)
		if !ok {
			continue
		}
		w, h, err := imageSize(path)
		if err != nil {
			return nil, fmt.Errorf("atlas: layer %s: %w", name, err)
		}
		out = append(out, LayerInfo{
			Name:       name,
			Title:      content.TitleFromName(name),
			URL:        "/maps/" + filepath.Base(path),
			PreviewURL: "/previews/" + name + ".jpg",
			Width:      w,
			Height:     h,
		})
	}
	return out, nil
}

// DefaultLayer picks preferred if available, otherwise the first layer.
func DefaultLayer(layers []LayerInfo, preferred string) string {
	for _, l := range layers {
		if l.Name == preferred {
			return l.Name
		}
	}
	if len(layers) > 0 {
		return layers[0].Name
	}
	return ""
}

func imageSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode image header: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// Preview returns a JPEG thumbnail of the named layer, regenerated when the
// source image changes.
func (s *LayerSet) Preview(name string) ([]byte, error) {
	path, info, ok := s.find(name)
	if !ok || !s.known(name) {
		return nil, ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.previews[name]; ok && p.modTime.Equal(info.ModTime()) {
		return p.data, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := makePreview(f, previewWidth)
	if err != nil {
		return nil, fmt.Errorf("atlas: preview %s: %w", name, err)
	}
	s.previews[name] = preview{modTime: info.ModTime(), data: data}
	return data, nil
}

func (s *LayerSet) known(name string) bool {
	for _, n := range s.names {
		if n == name {
			return true
		}
	}
	return false
}

// makePreview decodes an image, scales it down to width and encodes it as JPEG.
func makePreview(src io.Reader, width int) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > width {
		newH := h * width / w
		if newH < 1 {
			newH = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, width, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func (a *App) handleLayers(c echo.Context) error {
	layers, err := a.Layers.List()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"layers":  layers,
		"default": DefaultLayer(layers, a.Config.DefaultLayer),
	})
}

func (a *App) handlePreview(c echo.Context) error {
	name := strings.TrimSuffix(c.Param("file"), ".jpg")
	data, err := a.Layers.Preview(name)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/jpeg", data)
}
