package source

import "time"

// ListingKind tags which discovery section produced a listing item.
type ListingKind string

const (
	KindPlain    ListingKind = "plain"
	KindFeatured ListingKind = "featured"
	KindUpdated  ListingKind = "updated"
)

type ListingItem struct {
	ID       string
	Title    string
	ImageURL string
	Subtitle string
	Kind     ListingKind
}

// SearchResult is the query-filtered variant of a listing item.
type SearchResult struct {
	ID       string
	Title    string
	ImageURL string
	Subtitle string
}

type MangaStatus string

const (
	StatusUnknown   MangaStatus = "unknown"
	StatusOngoing   MangaStatus = "ongoing"
	StatusCompleted MangaStatus = "completed"
)

// MangaRecord is built once per detail fetch and never mutated afterwards.
type MangaRecord struct {
	ID        string
	Title     string
	AltTitles []string
	ImageURL  string
	Synopsis  string
	Rating    float64 // 0 when the site exposes no rating
	Status    MangaStatus
	Genres    []string
}

type ChapterRecord struct {
	ID          string
	Title       string
	MangaID     string
	Number      float64
	PublishedAt time.Time // zero when the site gives no usable date
	Locked      bool
}

type ChapterPages struct {
	MangaID   string
	ChapterID string
	Pages     []string
}

// FilterState marks a multi-select search filter option.
type FilterState string

const (
	FilterIncluded FilterState = "included"
	FilterExcluded FilterState = "excluded"
)

// FilterValue is either a single selected option or a map of option states.
type FilterValue struct {
	Option  string
	Options map[string]FilterState
}
