package source

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	reImageExt    = regexp.MustCompile(`(?i)\.(jpe?g|png|webp|gif|avif)(?:[?#]|$)`)
	reQuoted      = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"|'((?:[^'\\]|\\.)*)'`)
	reStringArray = regexp.MustCompile(`\[\s*(?:["'](?:[^"'\\]|\\.)*["']\s*,?\s*)+\]`)
)

// extractPages runs the three-tier image discovery over a chapter document:
// structural extraction from the profile's reader selector, then a broad
// image query, then scanning inline script text for a bracketed string-array
// literal. Script scraping is inherently fragile and stays the last resort.
func (a *Adapter) extractPages(doc *goquery.Document) []string {
	rules := a.profile.Pages

	if pages := a.scanImages(doc, rules.Primary); len(pages) > 0 {
		return pages
	}

	if pages := a.scanImages(doc, rules.broad()); len(pages) > 0 {
		return pages
	}

	return a.scanScriptArrays(doc)
}

func (a *Adapter) scanImages(doc *goquery.Document, selector string) []string {
	if selector == "" {
		return nil
	}

	var out []string
	seen := map[string]struct{}{}

	doc.Find(selector).Each(func(_ int, img *goquery.Selection) {
		for _, attr := range a.profile.Pages.imageAttrs() {
			v, ok := img.Attr(attr)
			if !ok {
				continue
			}
			v = strings.TrimSpace(v)
			if v == "" || strings.HasPrefix(v, "data:") {
				continue
			}

			u := secureURL(a.profile.BaseURL, v)
			if u == "" {
				continue
			}
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			out = append(out, u)
			break
		}
	})

	return out
}

// scanScriptArrays pulls image URLs out of the first bracketed string-array
// literal in inline script text that actually contains image URLs.
func (a *Adapter) scanScriptArrays(doc *goquery.Document) []string {
	arrayRe := reStringArray
	if a.profile.Pages.ScriptPattern != "" {
		if re, err := compile(a.profile.Pages.ScriptPattern); err == nil {
			arrayRe = re
		}
	}

	var out []string
	seen := map[string]struct{}{}

	doc.Find("script").EachWithBreak(func(_ int, sc *goquery.Selection) bool {
		text := sc.Text()
		if strings.TrimSpace(text) == "" {
			return true
		}

		for _, literal := range arrayRe.FindAllString(text, -1) {
			for _, m := range reQuoted.FindAllStringSubmatch(literal, -1) {
				raw := m[1]
				if raw == "" {
					raw = m[2]
				}
				raw = strings.ReplaceAll(raw, `\/`, `/`)

				if !looksLikePageURL(raw) {
					continue
				}

				u := secureURL(a.profile.BaseURL, raw)
				if u == "" {
					continue
				}
				if _, dup := seen[u]; dup {
					continue
				}
				seen[u] = struct{}{}
				out = append(out, u)
			}

			if len(out) > 0 {
				return false
			}
		}

		return true
	})

	return out
}

func looksLikePageURL(raw string) bool {
	if raw == "" {
		return false
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") &&
		!strings.HasPrefix(raw, "//") && !strings.HasPrefix(raw, "/") {
		return false
	}

	return reImageExt.MatchString(raw)
}
