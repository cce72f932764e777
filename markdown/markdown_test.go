package markdown

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"
)

func render(md string, opts Options) string {
	var buf bytes.Buffer
	Render(&buf, md, opts)
	return buf.String()
}

func TestFormatInlineEmphasis(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"**bold**", "<strong>bold</strong>"},
		{"__bold__", "<strong>bold</strong>"},
		{"*italic*", "<em>italic</em>"},
		{"_italic_", "<em>italic</em>"},
		{"text **bold** more", "text <strong>bold</strong> more"},
		{"**bold *italic* text**", "<strong>bold <em>italic</em> text</strong>"},
		{"~~struck~~", "<del>struck</del>"},
		{"a < b & c", "a &lt; b &amp; c"},
	}
	for _, tt := range tests {
		got := FormatInline(tt.input, Options{})
		if got != tt.expected {
			t.Errorf("FormatInline(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatInlineCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"`code`", "<code>code</code>"},
		{"`a` and `b`", "<code>a</code> and <code>b</code>"},
		{"`**not bold**`", "<code>**not bold**</code>"},
		{"`[[places/harbor]]`", "<code>[[places/harbor]]</code>"},
	}
	for _, tt := range tests {
		got := FormatInline(tt.input, Options{})
		if got != tt.expected {
			t.Errorf("FormatInline(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatInlineLinks(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{
			"[Wikipedia](https://en.wikipedia.org/wiki/Some_Article_Title)",
			`<a href="https://en.wikipedia.org/wiki/Some_Article_Title" target="_blank" rel="noopener noreferrer">Wikipedia</a>`,
		},
		{
			"see the [map](/map/?layer=political)",
			`see the <a href="/map/?layer=political">map</a>`,
		},
		{"[bad](javascript:alert)", "bad"},
		{"[bad](ftp://example.com/file)", "bad"},
	}
	for _, tt := range tests {
		got := FormatInline(tt.input, Options{})
		if got != tt.expected {
			t.Errorf("FormatInline(%q)\n  got:  %q\n  want: %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatInlineWikiLinks(t *testing.T) {
	resolve := func(category, slug string) (string, bool) {
		if category == "places" && slug == "harbor" {
			return "The Harbor & Docks", true
		}
		return "", false
	}
	tests := []struct {
		input    string
		opts     Options
		expected string
	}{
		{
			"[[places/harbor]]",
			Options{},
			`<a href="/lore/places/harbor/" class="wiki-link">harbor</a>`,
		},
		{
			"to [[places/harbor]] now",
			Options{Resolve: resolve},
			`to <a href="/lore/places/harbor/" class="wiki-link">The Harbor &amp; Docks</a> now`,
		},
		{
			"[[places/harbor|the docks]]",
			Options{Resolve: resolve},
			`<a href="/lore/places/harbor/" class="wiki-link">the docks</a>`,
		},
		{
			"[[places/atlantis]]",
			Options{Resolve: resolve},
			`<span class="wiki-link missing">atlantis</span>`,
		},
	}
	for _, tt := range tests {
		got := FormatInline(tt.input, tt.opts)
		if got != tt.expected {
			t.Errorf("FormatInline(%q)\n  got:  %q\n  want: %q", tt.input, got, tt.expected)
		}
	}
}

func TestRenderImagesPrioritizeFirst(t *testing.T) {
	got := render("![Map](/maps/current.webp)\n\n![Coast](/public/coast.jpg)", Options{})
	want := `<p><img fetchpriority="high" alt="Map" src="/maps/current.webp" decoding="async"/></p>` +
		`<p><img loading="lazy" alt="Coast" src="/public/coast.jpg" decoding="async"/></p>`
	if got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

func TestRenderBlocks(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"heading", "# Heading 1", `<h1 id="heading-1">Heading 1</h1>`},
		{"h4", "#### Small", `<h4 id="small">Small</h4>`},
		{"duplicate headings", "## Lore\n## Lore", `<h2 id="lore">Lore</h2><h2 id="lore-2">Lore</h2>`},
		{"not a heading", "#hashtag", "<p>#hashtag</p>"},
		{"paragraph", "a\nb\n\nc", "<p>a\nb</p><p>c</p>"},
		{"list", "- item 1\n* item 2", "<ul><li>item 1</li><li>item 2</li></ul>"},
		{"ordered", "1. first\n2. second", "<ol><li>first</li><li>second</li></ol>"},
		{"quote", "> a\n> b", "<blockquote>a b</blockquote>"},
		{"rule", "text\n\n---\n\nmore", "<p>text</p><hr/><p>more</p>"},
		{"code", "```go\nx := 1 < 2\n```", `<pre><code class="language-go">x := 1 &lt; 2` + "\n</code></pre>"},
		{"unclosed code", "```\nx", "<pre><code>x\n</code></pre>"},
		{
			"table",
			"| A | B |\n|---|:-:|\n| 1 | **2** |",
			"<table><thead><tr><th>A</th><th>B</th></tr></thead><tbody><tr><td>1</td><td><strong>2</strong></td></tr></tbody></table>",
		},
		{"escapes html", "<script>alert(1)</script>", "<p>&lt;script&gt;alert(1)&lt;/script&gt;</p>"},
		{
			"drops mdx",
			"import Note from '../Note'\nexport const meta = {}\n\n<Note kind=\"info\" />\n\nText",
			"<p>Text</p>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := render(tt.input, Options{})
			if got != tt.expected {
				t.Errorf("Render(%q)\n  got:  %q\n  want: %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestHeadingsMatchRenderedIDs(t *testing.T) {
	md := "# Intro\n```\n# not a heading\n```\n## Intro\n### About [[places/harbor]]"
	got := Headings(md)
	want := []Heading{
		{Level: 1, ID: "intro", Text: "Intro"},
		{Level: 2, ID: "intro-2", Text: "Intro"},
		{Level: 3, ID: "about-harbor", Text: "About harbor"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Headings() = %+v, want %+v", got, want)
	}
	html := render(md, Options{})
	for _, h := range want {
		if !strings.Contains(html, `id="`+h.ID+`"`) {
			t.Errorf("rendered html missing id %q: %s", h.ID, html)
		}
	}
}

func TestMarkdownComponent(t *testing.T) {
	var buf bytes.Buffer
	if err := Markdown("**hi**", Options{}).Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "<p><strong>hi</strong></p>" {
		t.Errorf("got %q", buf.String())
	}
}

func TestSafeURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/lore/places/", "/lore/places/"},
		{"#section", "#section"},
		{"https://example.com/?a=1&b=2", "https://example.com/?a=1&amp;b=2"},
		{"mailto:cartographer@example.com", "mailto:cartographer@example.com"},
		{"javascript:alert(1)", ""},
		{"relative/path", ""},
		{"  ", ""},
	}
	for _, tt := range tests {
		if got := SafeURL(tt.input); got != tt.expected {
			t.Errorf("SafeURL(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestApplyOutsideTags(t *testing.T) {
	got := ApplyOutsideTags(`a <a href="x_y_z">b</a> c`, strings.ToUpper)
	want := `A <a href="x_y_z">B</a> C`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
