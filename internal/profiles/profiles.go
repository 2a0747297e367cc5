// Package profiles ships the built-in extraction profiles and loads
// user-defined ones from YAML. A profile is pure configuration; everything
// that actually runs lives in internal/source.
package profiles

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/okibe/mangasrc/internal/source"
)

// Builtin returns the profiles compiled into the binary, keyed by name.
func Builtin() map[string]source.Profile {
	return map[string]source.Profile{
		"asura":  asura(),
		"madara": madara(),
	}
}

// asura covers asuracomic.net-style card grids: detail links shaped
// series/<slug>-<hid>, reader images on a dedicated CDN class.
func asura() source.Profile {
	return source.Profile{
		Name:       "asura",
		BaseURL:    "https://asuracomic.net",
		Referer:    "https://asuracomic.net/",
		SearchPath: "/series",
		QueryParam: "name",
		Sections: map[string]source.Section{
			"popular": {Path: "/series?order=rating", Kind: source.KindFeatured},
			"updated": {Path: "/series?order=update", Kind: source.KindUpdated},
			"latest":  {Path: "/series", Kind: source.KindPlain},
		},
		Listing: source.ListingRules{
			Item: "div.grid a[href*='series/']",
			Link: source.Chain{{Attr: "href"}},
			Title: source.Chain{
				{Sel: "span.block", Text: true},
				{Sel: "img", Attr: "alt"},
			},
			Image: source.Chain{
				{Sel: "img", Attr: "src"},
				{Sel: "img", Attr: "data-src"},
			},
			Subtitle: source.Chain{{Sel: "span.status", Text: true}},
			Genres:   source.Rule{Sel: "span.genre", Text: true},
			NextPage: "a[rel='next'], .pagination .next:not(.disabled)",
		},
		Detail: source.DetailRules{
			Path:      "/series/%s",
			Title:     source.Chain{{Sel: "h1", Text: true}, {Sel: ".entry-title", Text: true}},
			AltTitles: source.Rule{Sel: ".alternative span", Text: true},
			AltSplit:  ",",
			Image: source.Chain{
				{Sel: ".thumb img", Attr: "src"},
				{Sel: "img.rounded", Attr: "src"},
			},
			Synopsis:  source.Chain{{Sel: ".summary p", Text: true}, {Sel: "span.summary", Text: true}},
			Rating:    source.Chain{{Sel: ".rating .num", Text: true}},
			Status:    source.Chain{{Sel: ".status span", Text: true}},
			Ongoing:   []string{"ongoing", "season end"},
			Completed: []string{"completed", "finished"},
			Genres:    source.Rule{Sel: ".genres a", Text: true},
		},
		Chapters: source.ChapterRules{
			Path:          "/series/%s",
			Item:          "div.chapter-list a[href*='chapter']",
			Link:          source.Chain{{Attr: "href"}},
			Title:         source.Chain{{Sel: "h3", Text: true}, {Text: true}},
			NumberPattern: `(?i)chapter\s*([0-9]+(?:\.[0-9]+)?)`,
			Date:          source.Chain{{Sel: "h3 + h3", Text: true}, {Sel: ".chapter-date", Text: true}},
			DatePolicy:    source.OmitOnFailure,
			DateLayouts:   []string{"January 2nd 2006", "January 2, 2006"},
			LockMarker:    "svg.lucide-lock, .coin",
			CostAttr:      "data-coins",
		},
		Pages: source.PageRules{
			Path:    "/series/%s/chapter/%s",
			Primary: "img[alt*='chapter'], img.object-cover.mx-auto",
			Broad:   "div.w-full img",
		},
		Filters: []source.FilterDef{
			{ID: "genres", Multi: true},
			{ID: "status", Options: []string{"ongoing", "completed", "hiatus"}},
			{ID: "type", Options: []string{"manga", "manhwa", "manhua"}},
		},
		IDPattern: `series/([^/?#]+)`,
		IDDenied:  "?#",
		MinIDLen:  3,
	}
}

// madara covers the WordPress Madara theme used by a large family of sites:
// page-item cards, ajax-rendered chapter lists, lazy-loaded reader images.
func madara() source.Profile {
	return source.Profile{
		Name:       "madara",
		BaseURL:    "https://manhwaclan.com",
		Referer:    "https://manhwaclan.com/",
		SearchPath: "/",
		QueryParam: "s",
		PageParam:  "paged",
		Sections: map[string]source.Section{
			"popular": {Path: "/manga/?m_orderby=views", Kind: source.KindFeatured},
			"updated": {Path: "/manga/?m_orderby=latest", Kind: source.KindUpdated},
			"new":     {Path: "/manga/?m_orderby=new-manga", Kind: source.KindPlain},
		},
		Listing: source.ListingRules{
			Item: "div.page-item-detail",
			Link: source.Chain{{Sel: "h3 a", Attr: "href"}, {Sel: "a", Attr: "href"}},
			Title: source.Chain{
				{Sel: "h3 a", Text: true},
				{Sel: "img", Attr: "alt"},
			},
			Image: source.Chain{
				{Sel: "img", Attr: "data-src"},
				{Sel: "img", Attr: "src"},
				{Sel: "img", Style: "background-image"},
			},
			Subtitle: source.Chain{{Sel: ".chapter-item .chapter a", Text: true}},
			Genres:   source.Rule{Sel: ".mg_genres a", Text: true},
			NextPage: ".wp-pagenavi a.nextpostslink, nav.navigation a.next",
		},
		Detail: source.DetailRules{
			Path:      "/manga/%s/",
			Title:     source.Chain{{Sel: ".post-title h1", Text: true}},
			AltTitles: source.Rule{Sel: ".summary_content .post-content_item:contains('Alt') .summary-content", Text: true},
			AltSplit:  ";",
			Image: source.Chain{
				{Sel: ".summary_image img", Attr: "data-src"},
				{Sel: ".summary_image img", Attr: "src"},
			},
			Synopsis:  source.Chain{{Sel: ".description-summary p", Text: true}},
			Rating:    source.Chain{{Sel: "span#averagerate", Text: true}},
			Status:    source.Chain{{Sel: ".post-status .summary-content", Text: true}},
			Ongoing:   []string{"ongoing", "releasing"},
			Completed: []string{"completed", "end"},
			Genres:    source.Rule{Sel: ".genres-content a", Text: true},
		},
		Chapters: source.ChapterRules{
			Path:          "/manga/%s/",
			Item:          "li.wp-manga-chapter",
			Link:          source.Chain{{Sel: "a", Attr: "href"}},
			Title:         source.Chain{{Sel: "a", Text: true}},
			NumberPattern: `(?i)chapter\s*([0-9]+(?:\.[0-9]+)?)`,
			Date:          source.Chain{{Sel: ".chapter-release-date", Text: true}},
			DatePolicy:    source.DefaultToNow,
			DateLayouts:   []string{"January 2, 2006", "02/01/2006"},
			LockMarker:    ".premium-block, i.fa-lock",
		},
		Pages: source.PageRules{
			Path:       "/manga/%s/%s/",
			Primary:    "div.reading-content img.wp-manga-chapter-img",
			Broad:      "div.reading-content img",
			ImageAttrs: []string{"data-src", "src", "data-lazy-src"},
		},
		Filters: []source.FilterDef{
			{ID: "genre", Multi: true},
			{ID: "status", Options: []string{"on-going", "end", "canceled", "on-hold"}},
		},
		IDPattern: `manga/([^/?#]+)`,
		IDDenied:  "?#",
		MinIDLen:  2,
	}
}

// Load reads one profile from a YAML file.
func Load(path string) (source.Profile, error) {
	var p source.Profile

	b, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	if err := yaml.Unmarshal(b, &p); err != nil {
		return p, fmt.Errorf("profile %s: %w", path, err)
	}

	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), ".yaml")
	}
	if p.BaseURL == "" {
		return p, fmt.Errorf("profile %s: base_url is required", path)
	}

	return p, nil
}

// LoadDir reads every *.yaml profile in dir; a missing dir is an empty set.
func LoadDir(dir string) (map[string]source.Profile, error) {
	out := map[string]source.Profile{}

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}

		p, err := Load(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		out[p.Name] = p
	}

	return out, nil
}

// Resolve finds a profile by name: user profiles in dir shadow built-ins.
func Resolve(name, dir string) (source.Profile, error) {
	users, err := LoadDir(dir)
	if err != nil {
		return source.Profile{}, err
	}
	if p, ok := users[name]; ok {
		return p, nil
	}
	if p, ok := Builtin()[name]; ok {
		return p, nil
	}

	return source.Profile{}, fmt.Errorf("unknown source %q (try `mangasrc sources`)", name)
}

// Names lists every available profile, user ones marked.
func Names(dir string) ([]string, error) {
	users, err := LoadDir(dir)
	if err != nil {
		return nil, err
	}

	set := map[string]bool{}
	for name := range Builtin() {
		set[name] = false
	}
	for name := range users {
		set[name] = true
	}

	out := make([]string, 0, len(set))
	for name, user := range set {
		if user {
			out = append(out, name+" (user)")
		} else {
			out = append(out, name)
		}
	}
	sort.Strings(out)

	return out, nil
}
