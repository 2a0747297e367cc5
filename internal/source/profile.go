package source

// A Rule is one strategy in a field's fallback chain: optionally narrow to a
// sub-selection, read an attribute, an inline style property, or (with Text)
// the node text, and optionally post-process with a single-capture regex. A
// rule that sets none of Attr, Style and Text yields nothing.
type Rule struct {
	Sel     string `yaml:"sel,omitempty"`
	Attr    string `yaml:"attr,omitempty"`
	Style   string `yaml:"style,omitempty"`
	Text    bool   `yaml:"text,omitempty"`
	Pattern string `yaml:"pattern,omitempty"`
}

// Chain is an ordered fallback chain; the first rule yielding a non-empty
// trimmed string wins.
type Chain []Rule

// DatePolicy decides what happens when neither relative nor absolute date
// parsing succeeds. Sites disagree here, so it stays per-field configuration.
type DatePolicy string

const (
	OmitOnFailure DatePolicy = "omit"
	DefaultToNow  DatePolicy = "now"
)

type Section struct {
	Path string      `yaml:"path"`
	Kind ListingKind `yaml:"kind,omitempty"`
}

type ListingRules struct {
	Item     string `yaml:"item"`
	Link     Chain  `yaml:"link"`
	Title    Chain  `yaml:"title"`
	Image    Chain  `yaml:"image"`
	Subtitle Chain  `yaml:"subtitle,omitempty"`
	// Genres feeds the excluded-filter post pass on search results only.
	Genres   Rule   `yaml:"genres,omitempty"`
	NextPage string `yaml:"next_page"`
}

type DetailRules struct {
	// Path is a printf template with one %s slot for the escaped manga id.
	Path      string `yaml:"path"`
	Title     Chain  `yaml:"title"`
	AltTitles Rule   `yaml:"alt_titles,omitempty"`
	AltSplit  string `yaml:"alt_split,omitempty"`
	Image     Chain  `yaml:"image"`
	Synopsis  Chain  `yaml:"synopsis,omitempty"`
	Rating    Chain  `yaml:"rating,omitempty"`
	Status    Chain  `yaml:"status,omitempty"`
	Ongoing   []string `yaml:"ongoing,omitempty"`
	Completed []string `yaml:"completed,omitempty"`
	Genres    Rule   `yaml:"genres,omitempty"`
}

type ChapterRules struct {
	Path          string     `yaml:"path"`
	Item          string     `yaml:"item"`
	Link          Chain      `yaml:"link"`
	Title         Chain      `yaml:"title"`
	Number        Chain      `yaml:"number,omitempty"`
	NumberPattern string     `yaml:"number_pattern,omitempty"`
	Date          Chain      `yaml:"date,omitempty"`
	DatePolicy    DatePolicy `yaml:"date_policy,omitempty"`
	DateLayouts   []string   `yaml:"date_layouts,omitempty"`
	LockMarker    string     `yaml:"lock_marker,omitempty"`
	CostAttr      string     `yaml:"cost_attr,omitempty"`
	FreeCost      float64    `yaml:"free_cost,omitempty"`
}

type PageRules struct {
	// Path takes two %s slots: escaped manga id, escaped chapter id.
	Path string `yaml:"path"`
	// Primary matches CDN/class-marked reader images; Broad is the wider
	// second tier and defaults to every img element. ScriptPattern is the
	// last-resort regex locating a bracketed string-array literal in inline
	// script text.
	Primary       string   `yaml:"primary"`
	Broad         string   `yaml:"broad,omitempty"`
	ImageAttrs    []string `yaml:"image_attrs,omitempty"`
	ScriptPattern string   `yaml:"script_pattern,omitempty"`
}

type FilterDef struct {
	ID      string   `yaml:"id"`
	Multi   bool     `yaml:"multi,omitempty"`
	Options []string `yaml:"options,omitempty"`
}

// Profile is the per-source extraction configuration. One generic Adapter
// parameterized by a Profile replaces a subclass per site.
type Profile struct {
	Name       string             `yaml:"name"`
	BaseURL    string             `yaml:"base_url"`
	Referer    string             `yaml:"referer,omitempty"`
	PageParam  string             `yaml:"page_param,omitempty"`
	SearchPath string             `yaml:"search_path"`
	QueryParam string             `yaml:"query_param,omitempty"`
	Sections   map[string]Section `yaml:"sections"`
	Listing    ListingRules       `yaml:"listing"`
	Detail     DetailRules        `yaml:"detail"`
	Chapters   ChapterRules       `yaml:"chapters"`
	Pages      PageRules          `yaml:"pages"`
	Filters    []FilterDef        `yaml:"filters,omitempty"`

	// Identifier validity: ids come out of detail-link path segments and the
	// broad item selectors routinely catch decorative anchors.
	IDPattern string `yaml:"id_pattern,omitempty"`
	IDDenied  string `yaml:"id_denied,omitempty"`
	MinIDLen  int    `yaml:"min_id_len,omitempty"`
}

func (p *Profile) pageParam() string {
	if p.PageParam == "" {
		return "page"
	}

	return p.PageParam
}

func (p *Profile) queryParam() string {
	if p.QueryParam == "" {
		return "q"
	}

	return p.QueryParam
}

func (c ChapterRules) datePolicy() DatePolicy {
	if c.DatePolicy == DefaultToNow {
		return DefaultToNow
	}

	return OmitOnFailure
}

func (c ChapterRules) freeCost() float64 {
	if c.FreeCost <= 0 {
		return 1
	}

	return c.FreeCost
}

func (r PageRules) broad() string {
	if r.Broad == "" {
		return "img"
	}

	return r.Broad
}

func (r PageRules) imageAttrs() []string {
	if len(r.ImageAttrs) == 0 {
		return []string{"src", "data-src", "data-lazy-src", "data-original"}
	}

	return r.ImageAttrs
}
