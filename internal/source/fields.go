package source

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var (
	reRelTime  = regexp.MustCompile(`(?i)(\d+)\s*(second|minute|hour|day|week|month|year)s?\s+ago`)
	reStyleURL = regexp.MustCompile(`url\((?:["']?)([^"')]+)(?:["']?)\)`)
	reLastSeg  = regexp.MustCompile(`/([^/?#]+)/?(?:[?#].*)?$`)
	reNumber   = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)`)
)

var defaultDateLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"2006-01-02",
	"02/01/2006",
	time.RFC3339,
}

var (
	reCacheMu sync.Mutex
	reCache   = map[string]*regexp.Regexp{}
)

// compile caches profile-supplied patterns; profiles are small and static so
// the cache never needs eviction.
func compile(pattern string) (*regexp.Regexp, error) {
	reCacheMu.Lock()
	defer reCacheMu.Unlock()

	if re, ok := reCache[pattern]; ok {
		return re, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	reCache[pattern] = re

	return re, nil
}

// applyRule runs a single extraction strategy against one node.
func applyRule(s *goquery.Selection, r Rule) string {
	target := s
	if r.Sel != "" {
		target = s.Find(r.Sel).First()
		if target.Length() == 0 {
			return ""
		}
	}

	var raw string
	switch {
	case r.Attr != "":
		raw, _ = target.Attr(r.Attr)
	case r.Style != "":
		style, _ := target.Attr("style")
		raw = styleProperty(style, r.Style)
	case r.Text:
		raw = target.Text()
	default:
		// a rule with no strategy matches nothing
		return ""
	}

	raw = strings.TrimSpace(raw)
	if raw == "" || r.Pattern == "" {
		return raw
	}

	re, err := compile(r.Pattern)
	if err != nil {
		return ""
	}
	m := re.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	if len(m) > 1 {
		return strings.TrimSpace(m[1])
	}

	return strings.TrimSpace(m[0])
}

// extractString walks the fallback chain and returns the first non-empty hit.
func extractString(s *goquery.Selection, chain Chain) string {
	for _, r := range chain {
		if v := applyRule(s, r); v != "" {
			return v
		}
	}

	return ""
}

// extractAll reads every match of the rule's selector, one value per node.
func extractAll(s *goquery.Selection, r Rule) []string {
	if r.Sel == "" {
		return nil
	}

	var out []string
	s.Find(r.Sel).Each(func(_ int, n *goquery.Selection) {
		one := r
		one.Sel = ""
		if v := applyRule(n, one); v != "" {
			out = append(out, v)
		}
	})

	return out
}

// extractNumber pulls a positive float out of the chain's text, optionally
// through a label pattern like `(?i)chapter\s*([0-9.]+)`. Unparsable or
// non-positive values discard the field rather than defaulting it.
func extractNumber(s *goquery.Selection, chain Chain, pattern string) (float64, bool) {
	raw := extractString(s, chain)
	if raw == "" {
		return 0, false
	}

	if pattern != "" {
		re, err := compile(pattern)
		if err != nil {
			return 0, false
		}
		m := re.FindStringSubmatch(raw)
		if m == nil {
			return 0, false
		}
		if len(m) > 1 {
			raw = m[1]
		} else {
			raw = m[0]
		}
	} else if m := reNumber.FindString(raw); m != "" {
		raw = m
	}

	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || n <= 0 {
		return 0, false
	}

	return n, true
}

// parseRelative translates "<n> <unit> ago" into an absolute time against now.
func parseRelative(raw string, now time.Time) (time.Time, bool) {
	m := reRelTime.FindStringSubmatch(raw)
	if m == nil {
		return time.Time{}, false
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, false
	}

	switch strings.ToLower(m[2]) {
	case "second":
		return now.Add(-time.Duration(n) * time.Second), true
	case "minute":
		return now.Add(-time.Duration(n) * time.Minute), true
	case "hour":
		return now.Add(-time.Duration(n) * time.Hour), true
	case "day":
		return now.AddDate(0, 0, -n), true
	case "week":
		return now.AddDate(0, 0, -7*n), true
	case "month":
		return now.AddDate(0, -n, 0), true
	case "year":
		return now.AddDate(-n, 0, 0), true
	}

	return time.Time{}, false
}

// extractTime tries relative parsing first, then the absolute layouts. The
// policy decides whether a miss yields a zero time or "now".
func extractTime(s *goquery.Selection, chain Chain, layouts []string, policy DatePolicy, now time.Time) (time.Time, bool) {
	raw := extractString(s, chain)
	if raw != "" {
		if t, ok := parseRelative(raw, now); ok {
			return t, true
		}

		if len(layouts) == 0 {
			layouts = defaultDateLayouts
		}
		for _, layout := range layouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, true
			}
		}
	}

	if policy == DefaultToNow {
		return now, true
	}

	return time.Time{}, false
}

// secureURL resolves raw against base and forces the https scheme regardless
// of what the markup said.
func secureURL(base, raw string) string {
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "//") {
		return "https:" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	if !u.IsAbs() {
		b, berr := url.Parse(base)
		if berr != nil {
			return ""
		}
		u = b.ResolveReference(u)
	}

	u.Scheme = "https"

	return u.String()
}

// idFromHref extracts the site-assigned identifier from a detail-link href,
// via the profile pattern when set, otherwise the last path segment.
func idFromHref(href, pattern string) string {
	if href == "" {
		return ""
	}

	if pattern != "" {
		re, err := compile(pattern)
		if err != nil {
			return ""
		}
		m := re.FindStringSubmatch(href)
		if m == nil {
			return ""
		}
		if len(m) > 1 {
			return m[1]
		}

		return m[0]
	}

	if m := reLastSeg.FindStringSubmatch(href); m != nil {
		return m[1]
	}

	return ""
}

// styleProperty reads one property value out of an inline style attribute,
// unwrapping url(...) payloads.
func styleProperty(style, prop string) string {
	if style == "" {
		return ""
	}

	for decl := range strings.SplitSeq(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), prop) {
			continue
		}

		value = strings.TrimSpace(value)
		if m := reStyleURL.FindStringSubmatch(value); m != nil {
			return strings.TrimSpace(m[1])
		}

		return value
	}

	return ""
}
