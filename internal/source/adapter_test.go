package source

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okibe/mangasrc/internal/ui"
)

type fetcherFunc func(ctx context.Context, rawURL, method string) (*goquery.Document, error)

func (f fetcherFunc) Fetch(ctx context.Context, rawURL, method string) (*goquery.Document, error) {
	return f(ctx, rawURL, method)
}

// serveHTML records every requested URL and always answers with the same
// document.
func serveHTML(t *testing.T, html string, requested *[]string) fetcherFunc {
	t.Helper()

	return func(_ context.Context, rawURL, _ string) (*goquery.Document, error) {
		if requested != nil {
			*requested = append(*requested, rawURL)
		}

		return goquery.NewDocumentFromReader(strings.NewReader(html))
	}
}

func testProfile() Profile {
	return Profile{
		Name:       "testsite",
		BaseURL:    "https://example.test",
		SearchPath: "/search",
		Sections: map[string]Section{
			"popular": {Path: "/popular", Kind: KindFeatured},
		},
		Listing: ListingRules{
			Item:     "div.item",
			Link:     Chain{{Sel: "a", Attr: "href"}},
			Title:    Chain{{Sel: "a", Text: true}},
			Image:    Chain{{Sel: "img", Attr: "src"}},
			Subtitle: Chain{{Sel: ".latest", Text: true}},
			Genres:   Rule{Sel: ".genre", Text: true},
			NextPage: "a.next",
		},
		Detail: DetailRules{
			Path:      "/series/%s",
			Title:     Chain{{Sel: "h1", Text: true}},
			AltTitles: Rule{Sel: ".alt", Text: true},
			AltSplit:  ";",
			Image:     Chain{{Sel: ".cover img", Attr: "src"}},
			Synopsis:  Chain{{Sel: ".summary", Text: true}},
			Rating:    Chain{{Sel: ".rating", Text: true}},
			Status:    Chain{{Sel: ".status", Text: true}},
			Ongoing:   []string{"ongoing"},
			Completed: []string{"completed"},
			Genres:    Rule{Sel: ".genres a", Text: true},
		},
		Chapters: ChapterRules{
			Path:          "/series/%s",
			Item:          "li.chapter",
			Link:          Chain{{Sel: "a", Attr: "href"}},
			Title:         Chain{{Sel: "a", Text: true}},
			NumberPattern: `(?i)chapter\s*([0-9]+(?:\.[0-9]+)?)`,
			Date:          Chain{{Sel: ".date", Text: true}},
			LockMarker:    ".lock",
			CostAttr:      "data-cost",
		},
		Pages: PageRules{
			Path:    "/series/%s/%s",
			Primary: "img.page",
			Broad:   "div.reader img",
		},
		IDPattern: `series/([^/?#]+)`,
		IDDenied:  "?#",
		MinIDLen:  2,
	}
}

func newTestAdapter(fetcher fetcherFunc) *Adapter {
	return New(testProfile(), fetcher, ui.NewLogger(false))
}

func TestDiscoverFiltersInvalidAndDuplicateEntries(t *testing.T) {
	html := `<body>
		<div class="item"><a href="/series/alpha-story">Alpha</a><img src="http://cdn.test/a.jpg"><span class="latest">Ch. 10</span></div>
		<div class="item"><a href="/series/beta-story">Beta</a></div>
		<div class="item"><a href="/series/alpha-story">Alpha again</a></div>
		<div class="item"><a href="/series/gamma-story"></a></div>
		<div class="item"><a href="/series/x">Too short</a></div>
		<a class="next" href="/popular?page=2">Next</a>
	</body>`

	var urls []string
	a := New(testProfile(), serveHTML(t, html, &urls), ui.NewLogger(false))

	items, next, err := a.Discover(context.Background(), "popular", nil)
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, "alpha-story", items[0].ID)
	assert.Equal(t, "Alpha", items[0].Title)
	assert.Equal(t, "https://cdn.test/a.jpg", items[0].ImageURL)
	assert.Equal(t, "Ch. 10", items[0].Subtitle)
	assert.Equal(t, KindFeatured, items[0].Kind)
	assert.Equal(t, "beta-story", items[1].ID)

	require.NotNil(t, next)
	assert.Equal(t, 2, next.Page)
	assert.Len(t, next.Seen, 2)

	require.Len(t, urls, 1)
	assert.Contains(t, urls[0], "https://example.test/popular?page=1")
}

func TestDiscoverUnknownSection(t *testing.T) {
	a := newTestAdapter(serveHTML(t, `<div class="item"><a href="/series/alpha-story">Alpha</a></div>`, nil))

	items, next, err := a.Discover(context.Background(), "no-such-section", nil)
	require.NoError(t, err)
	assert.Nil(t, items)
	assert.Nil(t, next)
}

func TestDiscoverPaginationTerminates(t *testing.T) {
	// three pages; the last one has no next-page link
	pages := map[string]string{
		"page=1": `<div class="item"><a href="/series/one-story">One</a></div><a class="next">more</a>`,
		"page=2": `<div class="item"><a href="/series/two-story">Two</a></div><a class="next">more</a>`,
		"page=3": `<div class="item"><a href="/series/three-story">Three</a></div>`,
	}

	fetches := 0
	a := newTestAdapter(fetcherFunc(func(_ context.Context, rawURL, _ string) (*goquery.Document, error) {
		fetches++
		for marker, html := range pages {
			if strings.Contains(rawURL, marker) {
				return goquery.NewDocumentFromReader(strings.NewReader(html))
			}
		}

		return nil, errors.New("unexpected url: " + rawURL)
	}))

	var all []ListingItem
	var cur *PageCursor
	wantPages := []int{2, 3}

	for i := 0; ; i++ {
		items, next, err := a.Discover(context.Background(), "popular", cur)
		require.NoError(t, err)
		all = append(all, items...)

		if next == nil {
			break
		}
		require.Less(t, i, len(wantPages), "pagination did not terminate")
		assert.Equal(t, wantPages[i], next.Page)
		cur = next
	}

	assert.Equal(t, 3, fetches)
	require.Len(t, all, 3)
	assert.Equal(t, "one-story", all[0].ID)
	assert.Equal(t, "three-story", all[2].ID)
}

func TestDiscoverEmptyPageEndsPagination(t *testing.T) {
	// next-page link present, but no extractable items: terminal anyway
	a := newTestAdapter(serveHTML(t, `<a class="next">more</a>`, nil))

	items, next, err := a.Discover(context.Background(), "popular", nil)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Nil(t, next)
}

func TestDiscoverPropagatesFetchError(t *testing.T) {
	wantErr := errors.New("boom")
	a := newTestAdapter(fetcherFunc(func(context.Context, string, string) (*goquery.Document, error) {
		return nil, wantErr
	}))

	_, _, err := a.Discover(context.Background(), "popular", nil)
	assert.ErrorIs(t, err, wantErr)
}

func TestSearchEncodesFilters(t *testing.T) {
	html := `<body>
		<div class="item"><a href="/series/clean-story">Clean</a><span class="genre">Action</span><span class="genre">Drama</span></div>
		<div class="item"><a href="/series/dirty-story">Dirty</a><span class="genre">Action</span><span class="genre">Harem</span></div>
	</body>`

	var urls []string
	a := New(testProfile(), serveHTML(t, html, &urls), ui.NewLogger(false))

	filters := map[string]FilterValue{
		"genre": {Options: map[string]FilterState{
			"action": FilterIncluded,
			"harem":  FilterExcluded,
		}},
		"status": {Option: "ongoing"},
	}

	results, _, err := a.Search(context.Background(), "solo", filters, nil)
	require.NoError(t, err)

	require.Len(t, urls, 1)
	u, err := url.Parse(urls[0])
	require.NoError(t, err)
	params, err := url.ParseQuery(u.RawQuery)
	require.NoError(t, err)

	assert.Equal(t, []string{"solo"}, params["q"])
	assert.Equal(t, []string{"1"}, params["page"])
	assert.Equal(t, []string{"action"}, params["genre[]"])
	assert.Equal(t, []string{"ongoing"}, params["status"])
	// excluded options never reach the URL
	assert.NotContains(t, u.RawQuery, "harem")

	// the excluded genre drops matching results after the fetch
	require.Len(t, results, 1)
	assert.Equal(t, "clean-story", results[0].ID)
}

func TestSearchWithoutFiltersKeepsAllResults(t *testing.T) {
	html := `<body>
		<div class="item"><a href="/series/clean-story">Clean</a><span class="genre">Harem</span></div>
	</body>`
	a := newTestAdapter(serveHTML(t, html, nil))

	results, _, err := a.Search(context.Background(), "solo", nil, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestDetailBuildsRecord(t *testing.T) {
	html := `<body>
		<h1>Alpha Story</h1>
		<div class="alt">Alpha;  The Alpha Tale ; </div>
		<div class="cover"><img src="http://cdn.test/cover.jpg"></div>
		<div class="summary">A story about alpha.</div>
		<span class="rating">8.7</span>
		<span class="status">OnGoing</span>
		<div class="genres"><a>Action</a><a>Drama</a></div>
	</body>`

	var urls []string
	a := New(testProfile(), serveHTML(t, html, &urls), ui.NewLogger(false))

	rec, err := a.Detail(context.Background(), "alpha-story")
	require.NoError(t, err)

	assert.Equal(t, []string{"https://example.test/series/alpha-story"}, urls)
	assert.Equal(t, "alpha-story", rec.ID)
	assert.Equal(t, "Alpha Story", rec.Title)
	assert.Equal(t, []string{"Alpha", "The Alpha Tale"}, rec.AltTitles)
	assert.Equal(t, "https://cdn.test/cover.jpg", rec.ImageURL)
	assert.Equal(t, "A story about alpha.", rec.Synopsis)
	assert.Equal(t, 8.7, rec.Rating)
	assert.Equal(t, StatusOngoing, rec.Status)
	assert.Equal(t, []string{"Action", "Drama"}, rec.Genres)

	// same document, same record
	again, err := a.Detail(context.Background(), "alpha-story")
	require.NoError(t, err)
	assert.Equal(t, rec, again)
}

func TestDetailUnknownStatus(t *testing.T) {
	a := newTestAdapter(serveHTML(t, `<h1>X</h1><span class="status">Hiatus</span>`, nil))

	rec, err := a.Detail(context.Background(), "alpha-story")
	require.NoError(t, err)
	assert.Equal(t, StatusUnknown, rec.Status)
	assert.Zero(t, rec.Rating)
}

func TestChaptersSortedDescendingStable(t *testing.T) {
	html := `<ul>
		<li class="chapter"><a href="/series/ch-3a">Chapter 3 part A</a></li>
		<li class="chapter"><a href="/series/ch-1x">Chapter 1.5</a></li>
		<li class="chapter"><a href="/series/ch-3b">Chapter 3 part B</a></li>
		<li class="chapter"><a href="/series/ch-2x">Chapter 2</a></li>
	</ul>`
	a := newTestAdapter(serveHTML(t, html, nil))

	chs, err := a.Chapters(context.Background(), "alpha-story")
	require.NoError(t, err)
	require.Len(t, chs, 4)

	var numbers []float64
	for _, c := range chs {
		numbers = append(numbers, c.Number)
	}
	assert.Equal(t, []float64{3, 3, 2, 1.5}, numbers)

	// equal numbers keep document order
	assert.Equal(t, "ch-3a", chs[0].ID)
	assert.Equal(t, "ch-3b", chs[1].ID)
	assert.Equal(t, "alpha-story", chs[0].MangaID)
}

func TestChaptersExcludesLockedAndUnnumbered(t *testing.T) {
	html := `<ul>
		<li class="chapter"><a href="/series/ch-5x">Chapter 5</a></li>
		<li class="chapter"><span class="lock"></span><a href="/series/ch-4x">Chapter 4</a></li>
		<li class="chapter" data-cost="3"><a href="/series/ch-3x">Chapter 3</a></li>
		<li class="chapter" data-cost="1"><a href="/series/ch-2x">Chapter 2</a></li>
		<li class="chapter"><a href="/series/ch-ex">Extras</a></li>
	</ul>`
	a := newTestAdapter(serveHTML(t, html, nil))

	chs, err := a.Chapters(context.Background(), "alpha-story")
	require.NoError(t, err)

	var ids []string
	for _, c := range chs {
		ids = append(ids, c.ID)
	}
	// locked marker and cost above the free threshold are gone; cost at the
	// threshold stays; no number means no chapter
	assert.Equal(t, []string{"ch-5x", "ch-2x"}, ids)
}

func TestChaptersDatePolicy(t *testing.T) {
	fixed := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	html := `<ul>
		<li class="chapter"><a href="/series/ch-2x">Chapter 2</a><span class="date">3 days ago</span></li>
		<li class="chapter"><a href="/series/ch-1x">Chapter 1</a><span class="date">just now-ish</span></li>
	</ul>`

	a := newTestAdapter(serveHTML(t, html, nil))
	a.now = func() time.Time { return fixed }

	chs, err := a.Chapters(context.Background(), "alpha-story")
	require.NoError(t, err)
	require.Len(t, chs, 2)
	assert.Equal(t, fixed.AddDate(0, 0, -3), chs[0].PublishedAt)
	assert.True(t, chs[1].PublishedAt.IsZero(), "unparsable date should be omitted")

	p := testProfile()
	p.Chapters.DatePolicy = DefaultToNow
	a = New(p, serveHTML(t, html, nil), ui.NewLogger(false))
	a.now = func() time.Time { return fixed }

	chs, err = a.Chapters(context.Background(), "alpha-story")
	require.NoError(t, err)
	require.Len(t, chs, 2)
	assert.Equal(t, fixed, chs[1].PublishedAt)
}

func TestPagesPrimaryTier(t *testing.T) {
	html := `<div>
		<img class="page" src="http://cdn.test/001.jpg">
		<img class="page" data-src="//cdn.test/002.jpg">
		<img class="page" src="data:image/gif;base64,R0lGOD">
		<img class="page" src="http://cdn.test/001.jpg">
	</div>`
	a := newTestAdapter(serveHTML(t, html, nil))

	got, err := a.Pages(context.Background(), "alpha-story", "ch-1x")
	require.NoError(t, err)

	assert.Equal(t, "alpha-story", got.MangaID)
	assert.Equal(t, "ch-1x", got.ChapterID)
	assert.Equal(t, []string{"https://cdn.test/001.jpg", "https://cdn.test/002.jpg"}, got.Pages)
}

func TestPagesBroadTier(t *testing.T) {
	html := `<div class="reader">
		<img data-lazy-src="/uploads/001.webp">
		<img src="/uploads/002.webp">
	</div>`
	a := newTestAdapter(serveHTML(t, html, nil))

	got, err := a.Pages(context.Background(), "alpha-story", "ch-1x")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.test/uploads/001.webp",
		"https://example.test/uploads/002.webp",
	}, got.Pages)
}

func TestPagesScriptTier(t *testing.T) {
	html := `<div></div>
	<script>var cfg = {mode: "vertical"};</script>
	<script>
		var pages = ["https:\/\/cdn.test\/p\/001.jpg", 'https://cdn.test/p/002.png', "not-a-url"];
	</script>`
	a := newTestAdapter(serveHTML(t, html, nil))

	got, err := a.Pages(context.Background(), "alpha-story", "ch-1x")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://cdn.test/p/001.jpg",
		"https://cdn.test/p/002.png",
	}, got.Pages)
}

func TestPagesNoContent(t *testing.T) {
	a := newTestAdapter(serveHTML(t, `<div class="reader"><p>Chapter removed.</p></div>`, nil))

	_, err := a.Pages(context.Background(), "alpha-story", "ch-1x")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoContent)
	assert.Contains(t, err.Error(), "alpha-story/ch-1x")
}
