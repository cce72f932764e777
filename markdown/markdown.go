// Package markdown renders lore bodies to HTML as templ components.
//
// It understands the subset of Markdown the lore files use plus wiki links
// of the form [[category/slug]] or [[category/slug|label]]. MDX import and
// export statements and standalone JSX component lines are dropped.
package markdown

import (
	"bytes"
	"context"
	"html"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

var (
	reBold             = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBoldUnderscore   = regexp.MustCompile(`__(.+?)__`)
	reItalic           = regexp.MustCompile(`\*([^*]+)\*`)
	reItalicUnderscore = regexp.MustCompile(`_([^_]+)_`)
	reStrike           = regexp.MustCompile(`~~(.+?)~~`)
	reInlineCode       = regexp.MustCompile("`([^`]+)`")
	reImg              = regexp.MustCompile(`!\[(.*?)\]\((.*?)\)`)
	reLink             = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)
	reWiki             = regexp.MustCompile(`\[\[([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+)(?:\|([^\]]+))?\]\]`)
	reOrderedList      = regexp.MustCompile(`^(\d+)\.\s`)
	reJSX              = regexp.MustCompile(`^</?[A-Z][A-Za-z0-9.]*(\s[^>]*)?/?>$`)
)

// Options control link resolution.
type Options struct {
	// Resolve returns the title of the entry at category/slug. Wiki links
	// it does not know are rendered as plain text marked missing. A nil
	// Resolve accepts every link and labels it with its slug.
	Resolve func(category, slug string) (title string, ok bool)
}

// Heading is one section heading with its anchor id.
type Heading struct {
	Level int
	ID    string
	Text  string
}

// Markdown returns a templ.Component that renders md as HTML.
func Markdown(md string, opts Options) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		Render(&buf, md, opts)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

type block int

const (
	blockNone block = iota
	blockPara
	blockList
	blockOrdered
	blockQuote
	blockTable
)

type renderer struct {
	buf       *bytes.Buffer
	opts      Options
	open      block
	tableBody bool
	inCode    bool
	anchors   anchors
	images    int
}

// Render writes the HTML representation of md to buf.
func Render(buf *bytes.Buffer, md string, opts Options) {
	r := &renderer{buf: buf, opts: opts}
	for _, raw := range strings.Split(md, "\n") {
		r.line(strings.TrimRight(raw, "\r"))
	}
	r.close()
	if r.inCode {
		buf.WriteString("</code></pre>")
	}
}

func (r *renderer) line(line string) {
	if strings.HasPrefix(line, "```") {
		r.fence(strings.TrimSpace(line[3:]))
		return
	}
	if r.inCode {
		r.buf.WriteString(html.EscapeString(line))
		r.buf.WriteByte('\n')
		return
	}
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		r.close()
		return
	}
	if isMDX(trimmed) {
		return
	}

	switch {
	case isRule(trimmed):
		r.close()
		r.buf.WriteString("<hr/>")
	case headingLevel(line) > 0:
		level := headingLevel(line)
		r.close()
		text := strings.TrimSpace(line[level+1:])
		id := r.anchors.next(plainText(text))
		tag := "h" + strconv.Itoa(level)
		r.buf.WriteString("<" + tag + ` id="` + id + `">`)
		r.buf.WriteString(r.inline(text))
		r.buf.WriteString("</" + tag + ">")
	case strings.HasPrefix(line, "|"):
		r.tableRow(line)
	case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
		r.enter(blockList, "<ul>")
		r.buf.WriteString("<li>" + r.inline(strings.TrimSpace(line[2:])) + "</li>")
	case reOrderedList.MatchString(line):
		r.enter(blockOrdered, "<ol>")
		item := reOrderedList.ReplaceAllString(line, "")
		r.buf.WriteString("<li>" + r.inline(strings.TrimSpace(item)) + "</li>")
	case strings.HasPrefix(trimmed, ">"):
		if !r.enter(blockQuote, "<blockquote>") {
			r.buf.WriteByte(' ')
		}
		r.buf.WriteString(r.inline(strings.TrimSpace(strings.TrimPrefix(trimmed, ">"))))
	default:
		if !r.enter(blockPara, "<p>") {
			r.buf.WriteByte('\n')
		}
		r.buf.WriteString(r.inline(trimmed))
	}
}

// enter opens block b with tag unless it is already open. It reports
// whether a new block was opened.
func (r *renderer) enter(b block, tag string) bool {
	if r.open == b {
		return false
	}
	r.close()
	r.buf.WriteString(tag)
	r.open = b
	return true
}

func (r *renderer) close() {
	switch r.open {
	case blockPara:
		r.buf.WriteString("</p>")
	case blockList:
		r.buf.WriteString("</ul>")
	case blockOrdered:
		r.buf.WriteString("</ol>")
	case blockQuote:
		r.buf.WriteString("</blockquote>")
	case blockTable:
		if r.tableBody {
			r.buf.WriteString("</tbody>")
		}
		r.buf.WriteString("</table>")
	}
	r.open = blockNone
	r.tableBody = false
}

func (r *renderer) fence(lang string) {
	if r.inCode {
		r.buf.WriteString("</code></pre>")
		r.inCode = false
		return
	}
	r.close()
	if lang != "" {
		r.buf.WriteString(`<pre><code class="language-` + html.EscapeString(lang) + `">`)
	} else {
		r.buf.WriteString("<pre><code>")
	}
	r.inCode = true
}

func (r *renderer) tableRow(line string) {
	if r.enter(blockTable, "<table>") {
		r.buf.WriteString("<thead><tr>")
		for _, cell := range tableCells(line) {
			r.buf.WriteString("<th>" + r.inline(cell) + "</th>")
		}
		r.buf.WriteString("</tr></thead>")
		return
	}
	if !r.tableBody {
		r.buf.WriteString("<tbody>")
		r.tableBody = true
	}
	if isTableSeparator(line) {
		return
	}
	r.buf.WriteString("<tr>")
	for _, cell := range tableCells(line) {
		r.buf.WriteString("<td>" + r.inline(cell) + "</td>")
	}
	r.buf.WriteString("</tr>")
}

func tableCells(line string) []string {
	line = strings.Trim(strings.TrimSpace(line), "|")
	parts := strings.Split(line, "|")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func isTableSeparator(line string) bool {
	for _, cell := range tableCells(line) {
		if strings.Trim(cell, "-: ") != "" {
			return false
		}
	}
	return true
}

func headingLevel(line string) int {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	if n == 0 || n > 4 || n >= len(line) || line[n] != ' ' {
		return 0
	}
	return n
}

func isRule(s string) bool {
	if len(s) < 3 {
		return false
	}
	c := s[0]
	if c != '-' && c != '*' && c != '_' {
		return false
	}
	return strings.Count(s, string(c)) == len(s)
}

func isMDX(s string) bool {
	if strings.HasPrefix(s, "import ") || strings.HasPrefix(s, "export ") {
		return true
	}
	return reJSX.MatchString(s)
}

// plainText strips inline markup for use in anchors and titles.
func plainText(s string) string {
	s = reWiki.ReplaceAllStringFunc(s, func(m string) string {
		match := reWiki.FindStringSubmatch(m)
		if match[3] != "" {
			return match[3]
		}
		return match[2]
	})
	s = reLink.ReplaceAllString(s, "$1")
	return strings.NewReplacer("*", "", "_", " ", "`", "", "~", "").Replace(s)
}

// anchors hands out unique heading ids.
type anchors map[string]int

func (a *anchors) next(text string) string {
	if *a == nil {
		*a = make(anchors)
	}
	id := slug(text)
	if id == "" {
		id = "section"
	}
	n := (*a)[id]
	(*a)[id] = n + 1
	if n > 0 {
		return id + "-" + strconv.Itoa(n+1)
	}
	return id
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// Headings returns the headings of md with the ids Render assigns them.
func Headings(md string) []Heading {
	var (
		out    []Heading
		ids    anchors
		inCode bool
	)
	for _, raw := range strings.Split(md, "\n") {
		line := strings.TrimRight(raw, "\r")
		if strings.HasPrefix(line, "```") {
			inCode = !inCode
			continue
		}
		if inCode {
			continue
		}
		if level := headingLevel(line); level > 0 {
			text := plainText(strings.TrimSpace(line[level+1:]))
			out = append(out, Heading{Level: level, ID: ids.next(text), Text: strings.TrimSpace(text)})
		}
	}
	return out
}

// ApplyOutsideTags applies fn only to text segments outside HTML tags,
// so that formatting regexes never touch URLs inside href attributes.
func ApplyOutsideTags(s string, fn func(string) string) string {
	var buf strings.Builder
	for len(s) > 0 {
		lt := strings.Index(s, "<")
		if lt < 0 {
			buf.WriteString(fn(s))
			break
		}
		if lt > 0 {
			buf.WriteString(fn(s[:lt]))
		}
		gt := strings.Index(s[lt:], ">")
		if gt < 0 {
			buf.WriteString(s[lt:])
			break
		}
		buf.WriteString(s[lt : lt+gt+1])
		s = s[lt+gt+1:]
	}
	return buf.String()
}

// FormatInline applies inline formatting to a single line of text.
func FormatInline(s string, opts Options) string {
	r := &renderer{opts: opts}
	return r.inline(s)
}

func (r *renderer) inline(s string) string {
	escaped := html.EscapeString(s)

	// Code spans are swapped for placeholders so nothing below formats them.
	var spans []string
	escaped = reInlineCode.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reInlineCode.FindStringSubmatch(m)
		spans = append(spans, "<code>"+match[1]+"</code>")
		return "\x00C" + strconv.Itoa(len(spans)-1) + "\x00"
	})

	escaped = reWiki.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reWiki.FindStringSubmatch(m)
		return r.wikiLink(match[1], match[2], match[3])
	})
	escaped = reImg.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reImg.FindStringSubmatch(m)
		src := SafeURL(match[2])
		if src == "" {
			return match[1]
		}
		r.images++
		load := `loading="lazy"`
		if r.images == 1 {
			load = `fetchpriority="high"`
		}
		return `<img ` + load + ` alt="` + match[1] + `" src="` + src + `" decoding="async"/>`
	})
	escaped = reLink.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reLink.FindStringSubmatch(m)
		href := SafeURL(match[2])
		if href == "" {
			return match[1]
		}
		attrs := ""
		if isExternal(href) {
			attrs = ` target="_blank" rel="noopener noreferrer"`
		}
		return `<a href="` + href + `"` + attrs + `>` + match[1] + `</a>`
	})
	escaped = ApplyOutsideTags(escaped, func(seg string) string {
		seg = reBold.ReplaceAllString(seg, "<strong>$1</strong>")
		seg = reBoldUnderscore.ReplaceAllString(seg, "<strong>$1</strong>")
		seg = reItalic.ReplaceAllString(seg, "<em>$1</em>")
		seg = reItalicUnderscore.ReplaceAllString(seg, "<em>$1</em>")
		seg = reStrike.ReplaceAllString(seg, "<del>$1</del>")
		return seg
	})
	for i, code := range spans {
		escaped = strings.Replace(escaped, "\x00C"+strconv.Itoa(i)+"\x00", code, 1)
	}
	return escaped
}

func (r *renderer) wikiLink(category, slug, label string) string {
	title, ok := slug, true
	if r.opts.Resolve != nil {
		var t string
		t, ok = r.opts.Resolve(category, slug)
		if ok && t != "" {
			title = html.EscapeString(t)
		}
	}
	if label != "" {
		title = label
	}
	if !ok {
		return `<span class="wiki-link missing">` + title + `</span>`
	}
	href := "/lore/" + url.PathEscape(category) + "/" + url.PathEscape(slug) + "/"
	return `<a href="` + href + `" class="wiki-link">` + title + `</a>`
}

func isExternal(href string) bool {
	return strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://")
}

// SafeURL validates and sanitizes a URL for use in HTML attributes.
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto":
		return html.EscapeString(val)
	default:
		return ""
	}
}
