package source

import (
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// candidate is the raw extraction of one listing/search node before it is
// shaped into a caller-facing record.
type candidate struct {
	id       string
	title    string
	imageURL string
	subtitle string
	genres   []string
}

// collectCandidates runs the listing entity builder over every node matching
// the profile's item selector. Filters apply in order: required fields, id
// validity, dedupe against the cursor's seen-set. Nodes failing any filter are
// skipped silently, since broad selectors routinely catch decorative anchors.
func (a *Adapter) collectCandidates(doc *goquery.Document, cur *PageCursor, withGenres bool) []candidate {
	rules := a.profile.Listing
	var out []candidate

	doc.Find(rules.Item).Each(func(_ int, node *goquery.Selection) {
		href := extractString(node, rules.Link)
		id := idFromHref(href, a.profile.IDPattern)
		title := extractString(node, rules.Title)

		if id == "" || title == "" {
			return
		}
		if !a.validID(id) {
			return
		}
		if !cur.remember(id) {
			return
		}

		c := candidate{
			id:       id,
			title:    title,
			imageURL: secureURL(a.profile.BaseURL, extractString(node, rules.Image)),
			subtitle: extractString(node, rules.Subtitle),
		}
		if withGenres {
			c.genres = extractAll(node, rules.Genres)
		}

		out = append(out, c)
	})

	return out
}

func (a *Adapter) validID(id string) bool {
	if a.profile.MinIDLen > 0 && len(id) < a.profile.MinIDLen {
		return false
	}
	if a.profile.IDDenied != "" && strings.ContainsAny(id, a.profile.IDDenied) {
		return false
	}

	return true
}

// buildManga assembles the immutable detail record from a detail document.
func (a *Adapter) buildManga(doc *goquery.Document, id string) *MangaRecord {
	rules := a.profile.Detail
	root := doc.Selection

	rec := &MangaRecord{
		ID:       id,
		Title:    extractString(root, rules.Title),
		ImageURL: secureURL(a.profile.BaseURL, extractString(root, rules.Image)),
		Synopsis: extractString(root, rules.Synopsis),
		Status:   StatusUnknown,
		Genres:   extractAll(root, rules.Genres),
	}

	for _, alt := range extractAll(root, rules.AltTitles) {
		if rules.AltSplit != "" {
			for part := range strings.SplitSeq(alt, rules.AltSplit) {
				if part = strings.TrimSpace(part); part != "" {
					rec.AltTitles = append(rec.AltTitles, part)
				}
			}
		} else {
			rec.AltTitles = append(rec.AltTitles, alt)
		}
	}

	if rating, ok := extractNumber(root, rules.Rating, ""); ok {
		rec.Rating = rating
	}

	status := strings.ToLower(extractString(root, rules.Status))
	switch {
	case matchesAny(status, rules.Ongoing):
		rec.Status = StatusOngoing
	case matchesAny(status, rules.Completed):
		rec.Status = StatusCompleted
	}

	return rec
}

func matchesAny(s string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(s, strings.ToLower(n)) {
			return true
		}
	}

	return false
}

// buildChapters extracts the chapter list in document order, excluding locked
// entries and anything without a positive chapter number, then sorts
// descending by number with document order breaking ties.
func (a *Adapter) buildChapters(doc *goquery.Document, mangaID string) []ChapterRecord {
	rules := a.profile.Chapters
	now := a.now()

	var out []ChapterRecord
	seen := map[string]struct{}{}

	doc.Find(rules.Item).Each(func(_ int, node *goquery.Selection) {
		if a.chapterLocked(node) {
			return
		}

		href := extractString(node, rules.Link)
		id := idFromHref(href, a.profile.IDPattern)
		if id == "" {
			return
		}
		if _, dup := seen[id]; dup {
			return
		}

		number, ok := extractNumber(node, numberChain(rules), rules.NumberPattern)
		if !ok {
			return
		}

		seen[id] = struct{}{}

		rec := ChapterRecord{
			ID:      id,
			Title:   extractString(node, rules.Title),
			MangaID: mangaID,
			Number:  number,
		}
		if t, ok := extractTime(node, rules.Date, rules.DateLayouts, rules.datePolicy(), now); ok {
			rec.PublishedAt = t
		}

		out = append(out, rec)
	})

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Number > out[j].Number
	})

	return out
}

// numberChain falls back to the title chain when no dedicated number chain is
// configured; the label pattern then digs the number out of the title text.
func numberChain(rules ChapterRules) Chain {
	if len(rules.Number) > 0 {
		return rules.Number
	}

	return rules.Title
}

// chapterLocked detects paywalled entries via the overlay marker or a coin
// cost above the free threshold. Locked chapters never surface at all.
func (a *Adapter) chapterLocked(node *goquery.Selection) bool {
	rules := a.profile.Chapters

	if rules.LockMarker != "" {
		if node.Is(rules.LockMarker) || node.Find(rules.LockMarker).Length() > 0 {
			return true
		}
	}

	if rules.CostAttr != "" {
		if cost, ok := extractNumber(node, Chain{{Attr: rules.CostAttr}}, ""); ok && cost > rules.freeCost() {
			return true
		}
	}

	return false
}
