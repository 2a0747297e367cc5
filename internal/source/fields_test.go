package source

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	return doc
}

func TestExtractStringFallbackChain(t *testing.T) {
	doc := mustDoc(t, `<div class="card" style="background-image: url('//cdn.test/bg.jpg')">
		<img alt="">
		<span class="title">  Solo Camping  </span>
	</div>`)
	node := doc.Find("div.card")

	chain := Chain{
		{Sel: "img", Attr: "src"},
		{Style: "background-image"},
		{Sel: "span.title", Text: true},
	}

	// img has no src, so the style strategy wins
	assert.Equal(t, "//cdn.test/bg.jpg", extractString(node, chain))

	chain = Chain{
		{Sel: "img", Attr: "src"},
		{Sel: "span.missing", Text: true},
		{Sel: "span.title", Text: true},
	}
	assert.Equal(t, "Solo Camping", extractString(node, chain))

	assert.Equal(t, "", extractString(node, Chain{{Sel: "em", Text: true}}))
}

func TestApplyRulePattern(t *testing.T) {
	doc := mustDoc(t, `<a href="/series/one-piece-12ab?ref=home">One Piece</a>`)
	node := doc.Find("a")

	got := applyRule(node, Rule{Attr: "href", Pattern: `series/([a-z0-9-]+)`})
	assert.Equal(t, "one-piece-12ab", got)

	// pattern miss discards the value
	got = applyRule(node, Rule{Attr: "href", Pattern: `chapter/(\d+)`})
	assert.Equal(t, "", got)
}

func TestApplyRuleNeedsStrategy(t *testing.T) {
	doc := mustDoc(t, `<div><a href="/series/x">One Piece</a></div>`)
	node := doc.Find("div")

	// without Attr, Style or Text the rule is inert, it must not fall back to
	// node text
	assert.Equal(t, "", applyRule(node, Rule{}))
	assert.Equal(t, "", applyRule(node, Rule{Sel: "a"}))
	assert.Equal(t, "One Piece", applyRule(node, Rule{Sel: "a", Text: true}))
}

func TestExtractNumber(t *testing.T) {
	tests := []struct {
		name string
		html string
		want float64
		ok   bool
	}{
		{"plain chapter", `<a>Chapter 42</a>`, 42, true},
		{"decimal chapter", `<a>Chapter 28.5</a>`, 28.5, true},
		{"zero discarded", `<a>Chapter 0</a>`, 0, false},
		{"no number", `<a>Extras</a>`, 0, false},
		{"empty", `<a></a>`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustDoc(t, tt.html)
			n, ok := extractNumber(doc.Find("a"), Chain{{Text: true}}, `(?i)chapter\s*([0-9]+(?:\.[0-9]+)?)`)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestParseRelative(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		raw  string
		want time.Time
		ok   bool
	}{
		{"30 seconds ago", now.Add(-30 * time.Second), true},
		{"5 minutes ago", now.Add(-5 * time.Minute), true},
		{"2 hours ago", now.Add(-2 * time.Hour), true},
		{"1 day ago", now.AddDate(0, 0, -1), true},
		{"3 weeks ago", now.AddDate(0, 0, -21), true},
		{"2 months ago", now.AddDate(0, -2, 0), true},
		{"1 year ago", now.AddDate(-1, 0, 0), true},
		{"yesterday", time.Time{}, false},
		{"June 1, 2024", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := parseRelative(tt.raw, now)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestExtractTimePolicies(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	chain := Chain{{Sel: ".date", Text: true}}

	doc := mustDoc(t, `<li><span class="date">2 days ago</span></li>`)
	got, ok := extractTime(doc.Find("li"), chain, nil, OmitOnFailure, now)
	require.True(t, ok)
	assert.Equal(t, now.AddDate(0, 0, -2), got)

	doc = mustDoc(t, `<li><span class="date">January 3, 2024</span></li>`)
	got, ok = extractTime(doc.Find("li"), chain, nil, OmitOnFailure, now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), got)

	// unparsable: omitted under OmitOnFailure, "now" under DefaultToNow
	doc = mustDoc(t, `<li><span class="date">soon(tm)</span></li>`)
	_, ok = extractTime(doc.Find("li"), chain, nil, OmitOnFailure, now)
	assert.False(t, ok)

	got, ok = extractTime(doc.Find("li"), chain, nil, DefaultToNow, now)
	require.True(t, ok)
	assert.Equal(t, now, got)
}

func TestSecureURL(t *testing.T) {
	base := "https://example.test"

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"http forced to https", "http://cdn.example/x.jpg", "https://cdn.example/x.jpg"},
		{"https untouched", "https://cdn.example/x.jpg", "https://cdn.example/x.jpg"},
		{"scheme relative", "//cdn.example/x.jpg", "https://cdn.example/x.jpg"},
		{"site relative", "/covers/x.jpg", "https://example.test/covers/x.jpg"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, secureURL(base, tt.raw))
		})
	}
}

func TestIDFromHref(t *testing.T) {
	assert.Equal(t, "solo-leveling", idFromHref("/manga/solo-leveling/", ""))
	assert.Equal(t, "solo-leveling", idFromHref("https://example.test/manga/solo-leveling", ""))
	assert.Equal(t, "solo-leveling-1a2b", idFromHref("/series/solo-leveling-1a2b?page=2", `series/([^/?#]+)`))
	assert.Equal(t, "", idFromHref("", ""))
	assert.Equal(t, "", idFromHref("/series/x", `chapter/(\d+)`))
}

func TestStyleProperty(t *testing.T) {
	style := "width: 100px; background-image: url('https://cdn.test/a.png'); color: red"
	assert.Equal(t, "https://cdn.test/a.png", styleProperty(style, "background-image"))
	assert.Equal(t, "100px", styleProperty(style, "width"))
	assert.Equal(t, "", styleProperty(style, "height"))
	assert.Equal(t, "", styleProperty("", "width"))
}
