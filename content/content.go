// Package content loads lore entries from a directory tree of markdown files.
//
// The layout is <dir>/<category>/<slug>.md (or .mdx). Each file may start
// with a YAML frontmatter block delimited by "---" lines. A category may
// carry a _category.yaml with its display title and sort order.
package content

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when a requested category or entry does not exist.
var ErrNotFound = errors.New("content: not found")

// ErrUnterminatedFrontmatter is returned for a frontmatter block with no
// closing delimiter.
var ErrUnterminatedFrontmatter = errors.New("content: unterminated frontmatter")

const categoryFile = "_category.yaml"

// Entry is one lore document.
type Entry struct {
	Category string
	Slug     string
	Title    string
	Summary  string
	Order    int
	Cover    string
	Tags     []string
	Draft    bool
	Body     string
	Path     string
	ModTime  time.Time
}

// URL returns the site-relative page path of the entry.
func (e Entry) URL() string {
	return "/lore/" + e.Category + "/" + e.Slug + "/"
}

// Category groups the entries of one directory.
type Category struct {
	Name    string
	Title   string
	Order   int
	Entries []Entry
}

// URL returns the site-relative page path of the category.
func (c Category) URL() string {
	return "/lore/" + c.Name + "/"
}

// Summary is the minimal reference to an entry used for pin linking.
type Summary struct {
	Category string `json:"category"`
	Slug     string `json:"slug"`
	Title    string `json:"title"`
}

type frontmatter struct {
	Title       string   `yaml:"title"`
	Summary     string   `yaml:"summary"`
	Description string   `yaml:"description"`
	Order       int      `yaml:"order"`
	Cover       string   `yaml:"cover"`
	Tags        []string `yaml:"tags"`
	Draft       bool     `yaml:"draft"`
}

type categoryMeta struct {
	Title string `yaml:"title"`
	Order int    `yaml:"order"`
}

// Library is an immutable snapshot of the content tree.
type Library struct {
	Categories []Category
	LoadedAt   time.Time
}

// Loader reads a content directory.
type Loader struct {
	Dir           string
	IncludeDrafts bool
}

// Load reads every category and entry under l.Dir. A missing directory
// yields an empty library.
func (l Loader) Load() (*Library, error) {
	lib := &Library{LoadedAt: time.Now()}
	dirs, err := os.ReadDir(l.Dir)
	if errors.Is(err, os.ErrNotExist) {
		return lib, nil
	}
	if err != nil {
		return nil, fmt.Errorf("content: read %s: %w", l.Dir, err)
	}
	for _, d := range dirs {
		if !d.IsDir() || skipName(d.Name()) {
			continue
		}
		cat, err := l.loadCategory(d.Name())
		if err != nil {
			return nil, err
		}
		if len(cat.Entries) > 0 {
			lib.Categories = append(lib.Categories, cat)
		}
	}
	sort.SliceStable(lib.Categories, func(i, j int) bool {
		a, b := lib.Categories[i], lib.Categories[j]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	})
	return lib, nil
}

func (l Loader) loadCategory(name string) (Category, error) {
	dir := filepath.Join(l.Dir, name)
	cat := Category{Name: name, Title: TitleFromName(name)}

	raw, err := os.ReadFile(filepath.Join(dir, categoryFile))
	switch {
	case err == nil:
		var meta categoryMeta
		if err := yaml.Unmarshal(raw, &meta); err != nil {
			return Category{}, fmt.Errorf("content: %s: %w", filepath.Join(dir, categoryFile), err)
		}
		if strings.TrimSpace(meta.Title) != "" {
			cat.Title = strings.TrimSpace(meta.Title)
		}
		cat.Order = meta.Order
	case !errors.Is(err, os.ErrNotExist):
		return Category{}, fmt.Errorf("content: %w", err)
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return Category{}, fmt.Errorf("content: read %s: %w", dir, err)
	}
	for _, f := range files {
		if f.IsDir() || skipName(f.Name()) || !IsEntryFile(f.Name()) {
			continue
		}
		path := filepath.Join(dir, f.Name())
		src, err := os.ReadFile(path)
		if err != nil {
			return Category{}, fmt.Errorf("content: %w", err)
		}
		slug := strings.TrimSuffix(f.Name(), filepath.Ext(f.Name()))
		entry, err := ParseEntry(name, slug, src)
		if err != nil {
			return Category{}, fmt.Errorf("content: %s: %w", path, err)
		}
		if entry.Draft && !l.IncludeDrafts {
			continue
		}
		entry.Path = path
		if info, err := f.Info(); err == nil {
			entry.ModTime = info.ModTime()
		}
		cat.Entries = append(cat.Entries, entry)
	}
	sortEntries(cat.Entries)
	return cat, nil
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	})
}

// ParseEntry builds an entry from a source file's bytes.
func ParseEntry(category, slug string, src []byte) (Entry, error) {
	meta, body, err := SplitFrontmatter(src)
	if err != nil {
		return Entry{}, err
	}
	var fm frontmatter
	if len(meta) > 0 {
		if err := yaml.Unmarshal(meta, &fm); err != nil {
			return Entry{}, fmt.Errorf("frontmatter: %w", err)
		}
	}
	e := Entry{
		Category: category,
		Slug:     slug,
		Title:    strings.TrimSpace(fm.Title),
		Summary:  strings.TrimSpace(fm.Summary),
		Order:    fm.Order,
		Cover:    strings.TrimSpace(fm.Cover),
		Draft:    fm.Draft,
		Body:     string(body),
	}
	if e.Summary == "" {
		e.Summary = strings.TrimSpace(fm.Description)
	}
	for _, t := range fm.Tags {
		if t = strings.TrimSpace(t); t != "" {
			e.Tags = append(e.Tags, t)
		}
	}
	if e.Title == "" {
		e.Title = firstHeading(e.Body)
	}
	if e.Title == "" {
		e.Title = TitleFromName(slug)
	}
	return e, nil
}

// SplitFrontmatter separates a leading "---" delimited YAML block from the
// document body. Sources without frontmatter return a nil meta.
func SplitFrontmatter(src []byte) (meta, body []byte, err error) {
	src = bytes.TrimPrefix(src, []byte("\xef\xbb\xbf"))
	first, rest, ok := cutLine(src)
	if !ok && len(first) == 0 {
		return nil, src, nil
	}
	if string(bytes.TrimRight(first, " \t\r")) != "---" {
		return nil, src, nil
	}
	start := len(src) - len(rest)
	pos := start
	for pos < len(src) {
		line, next, _ := cutLine(src[pos:])
		if string(bytes.TrimRight(line, " \t\r")) == "---" {
			meta = src[start:pos]
			body = src[len(src)-len(next):]
			return meta, bytes.TrimLeft(body, "\r\n"), nil
		}
		pos = len(src) - len(next)
	}
	return nil, nil, ErrUnterminatedFrontmatter
}

// cutLine returns the first line of b without its newline and the rest.
func cutLine(b []byte) (line, rest []byte, found bool) {
	return bytes.Cut(b, []byte("\n"))
}

func firstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:])
		}
	}
	return ""
}

// IsEntryFile reports whether name is a lore source file.
func IsEntryFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".mdx":
		return true
	}
	return false
}

func skipName(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

// TitleFromName turns a directory or file name into a display title,
// e.g. "noble-houses" -> "Noble Houses".
func TitleFromName(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '_' })
	for i, p := range parts {
		r := []rune(p)
		r[0] = unicode.ToUpper(r[0])
		parts[i] = string(r)
	}
	return strings.Join(parts, " ")
}

// Category returns the category called name.
func (l *Library) Category(name string) (Category, error) {
	for _, c := range l.Categories {
		if c.Name == name {
			return c, nil
		}
	}
	return Category{}, ErrNotFound
}

// Entry returns the entry at category/slug.
func (l *Library) Entry(category, slug string) (Entry, error) {
	c, err := l.Category(category)
	if err != nil {
		return Entry{}, err
	}
	for _, e := range c.Entries {
		if e.Slug == slug {
			return e, nil
		}
	}
	return Entry{}, ErrNotFound
}

// Resolve reports the title of the entry at category/slug.
func (l *Library) Resolve(category, slug string) (string, bool) {
	e, err := l.Entry(category, slug)
	if err != nil {
		return "", false
	}
	return e.Title, true
}

// Entries returns every entry in category order.
func (l *Library) Entries() []Entry {
	var out []Entry
	for _, c := range l.Categories {
		out = append(out, c.Entries...)
	}
	return out
}

// Summaries returns the pin-linking lookup table.
func (l *Library) Summaries() []Summary {
	out := []Summary{}
	for _, e := range l.Entries() {
		out = append(out, Summary{Category: e.Category, Slug: e.Slug, Title: e.Title})
	}
	return out
}

// Recent returns up to n entries, most recently modified first.
func (l *Library) Recent(n int) []Entry {
	all := l.Entries()
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].ModTime.After(all[j].ModTime)
	})
	if n > 0 && len(all) > n {
		all = all[:n]
	}
	return all
}
