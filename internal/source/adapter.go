// Package source implements the generic scrape-to-record pipeline: one
// Adapter parameterized by a per-site extraction Profile, exposing discovery,
// search, detail, chapter-list and chapter-pages operations over a fetched
// document tree. Each call issues exactly one fetch; pagination is driven by
// the caller re-invoking the operation with the returned cursor.
package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/okibe/mangasrc/internal/fetch"
	"github.com/okibe/mangasrc/internal/ui"
)

type Adapter struct {
	profile Profile
	fetcher fetch.Fetcher
	log     *ui.Logger
	now     func() time.Time
}

func New(profile Profile, fetcher fetch.Fetcher, log *ui.Logger) *Adapter {
	return &Adapter{
		profile: profile,
		fetcher: fetcher,
		log:     log,
		now:     time.Now,
	}
}

func (a *Adapter) Profile() Profile {
	return a.profile
}

// Discover fetches one page of a named section. Unrecognized section ids
// yield an empty result rather than an error; sites rename sections often
// enough that this is routine, not exceptional.
func (a *Adapter) Discover(ctx context.Context, sectionID string, cur *PageCursor) ([]ListingItem, *PageCursor, error) {
	sec, ok := a.profile.Sections[sectionID]
	if !ok {
		a.log.Debugf("section %q not defined for %s\n", sectionID, a.profile.Name)
		return nil, nil, nil
	}

	cur = cur.normalized()

	doc, err := a.fetcher.Fetch(ctx, a.pageURL(sec.Path, cur.Page, nil), http.MethodGet)
	if err != nil {
		return nil, nil, err
	}

	kind := sec.Kind
	if kind == "" {
		kind = KindPlain
	}

	var items []ListingItem
	for _, c := range a.collectCandidates(doc, cur, false) {
		items = append(items, ListingItem{
			ID:       c.id,
			Title:    c.title,
			ImageURL: c.imageURL,
			Subtitle: c.subtitle,
			Kind:     kind,
		})
	}

	if len(items) == 0 {
		return nil, nil, nil
	}

	return items, cur.advance(a.hasMore(doc)), nil
}

// Search fetches one page of query results. Included filter values go on the
// URL with repeated key[]=value encoding; excluded values are left off the URL
// entirely and applied as a post-fetch genre filter.
func (a *Adapter) Search(ctx context.Context, query string, filters map[string]FilterValue, cur *PageCursor) ([]SearchResult, *PageCursor, error) {
	cur = cur.normalized()

	params := url.Values{}
	params.Set(a.profile.queryParam(), query)
	excluded := applyFilters(params, filters)

	doc, err := a.fetcher.Fetch(ctx, a.pageURL(a.profile.SearchPath, cur.Page, params), http.MethodGet)
	if err != nil {
		return nil, nil, err
	}

	var results []SearchResult
	for _, c := range a.collectCandidates(doc, cur, len(excluded) > 0) {
		if intersects(c.genres, excluded) {
			continue
		}

		results = append(results, SearchResult{
			ID:       c.id,
			Title:    c.title,
			ImageURL: c.imageURL,
			Subtitle: c.subtitle,
		})
	}

	if len(results) == 0 {
		return nil, nil, nil
	}

	return results, cur.advance(a.hasMore(doc)), nil
}

// Detail fetches a manga's detail page and returns its immutable record.
func (a *Adapter) Detail(ctx context.Context, id string) (*MangaRecord, error) {
	target := a.profile.BaseURL + fmt.Sprintf(a.profile.Detail.Path, url.PathEscape(id))

	doc, err := a.fetcher.Fetch(ctx, target, http.MethodGet)
	if err != nil {
		return nil, err
	}

	return a.buildManga(doc, id), nil
}

// Chapters fetches the full chapter list in one call; sites render it on a
// single page, so there is no cursor.
func (a *Adapter) Chapters(ctx context.Context, mangaID string) ([]ChapterRecord, error) {
	target := a.profile.BaseURL + fmt.Sprintf(a.profile.Chapters.Path, url.PathEscape(mangaID))

	doc, err := a.fetcher.Fetch(ctx, target, http.MethodGet)
	if err != nil {
		return nil, err
	}

	return a.buildChapters(doc, mangaID), nil
}

// Pages fetches a chapter's image URLs through the three-tier fallback. Zero
// pages after all tiers is ErrNoContent, never an empty success.
func (a *Adapter) Pages(ctx context.Context, mangaID, chapterID string) (*ChapterPages, error) {
	target := a.profile.BaseURL + fmt.Sprintf(a.profile.Pages.Path, url.PathEscape(mangaID), url.PathEscape(chapterID))

	doc, err := a.fetcher.Fetch(ctx, target, http.MethodGet)
	if err != nil {
		return nil, err
	}

	pages := a.extractPages(doc)
	if len(pages) == 0 {
		return nil, fmt.Errorf("chapter %s/%s: %w", mangaID, chapterID, ErrNoContent)
	}

	return &ChapterPages{MangaID: mangaID, ChapterID: chapterID, Pages: pages}, nil
}

func (a *Adapter) hasMore(doc *goquery.Document) bool {
	sel := a.profile.Listing.NextPage
	if sel == "" {
		return false
	}

	return doc.Find(sel).Length() > 0
}

// pageURL builds a request URL for path with the page number and any extra
// query parameters attached.
func (a *Adapter) pageURL(path string, page int, extra url.Values) string {
	params := url.Values{}
	for k, vs := range extra {
		params[k] = vs
	}
	params.Set(a.profile.pageParam(), strconv.Itoa(page))

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}

	return a.profile.BaseURL + path + sep + params.Encode()
}

// applyFilters encodes included filter values onto params and returns the set
// of excluded option ids.
func applyFilters(params url.Values, filters map[string]FilterValue) map[string]struct{} {
	excluded := map[string]struct{}{}

	for id, fv := range filters {
		if fv.Option != "" {
			params.Set(id, fv.Option)
			continue
		}

		for opt, state := range fv.Options {
			switch state {
			case FilterIncluded:
				params.Add(id+"[]", opt)
			case FilterExcluded:
				excluded[strings.ToLower(opt)] = struct{}{}
			}
		}
	}

	return excluded
}

func intersects(genres []string, excluded map[string]struct{}) bool {
	for _, g := range genres {
		if _, hit := excluded[strings.ToLower(strings.TrimSpace(g))]; hit {
			return true
		}
	}

	return false
}
