package chapters

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/okibe/mangasrc/internal/source"
)

// tmpSuffix marks chapter folders whose download has not finished yet;
// PruneUnfinished sweeps them up.
const tmpSuffix = "_tmp"

// Chapter pairs a scraped chapter record with the filenames used when its
// pages are downloaded.
type Chapter struct {
	source.ChapterRecord
}

// Label renders the chapter number the way users type it: 28, 28.5.
func (c Chapter) Label() string {
	return strconv.FormatFloat(c.Number, 'f', -1, 64)
}

func sanitize(s string) string {
	s = strings.ToLower(s)

	repl := []string{
		"•", "_",
		"-", "_",
		"—", "_",
		"–", "_",
		"/", "_",
		"\\", "_",
		".", "_",
		" ", "_",
		"(", "",
		")", "",
	}
	for i := 0; i < len(repl); i += 2 {
		s = strings.ReplaceAll(s, repl[i], repl[i+1])
	}

	clean := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			clean = append(clean, r)
		}
	}
	s = string(clean)

	reUnderscore := regexp.MustCompile(`_+`)
	s = reUnderscore.ReplaceAllString(s, "_")

	return strings.Trim(s, "_")
}

func (c Chapter) baseName() string {
	lbl := sanitize(c.Label())
	title := sanitize(c.Title)

	if title != "" && title != lbl {
		return lbl + "_" + title
	}

	return lbl
}

func (c Chapter) FolderName() string {
	return c.baseName() + tmpSuffix
}

func (c Chapter) OutputCBZ() string {
	return c.baseName() + ".cbz"
}

func (c Chapter) OutputCBZPath(out string) string {
	return filepath.Join(out, c.OutputCBZ())
}

// Wrap converts adapter output into downloadable chapters.
func Wrap(records []source.ChapterRecord) []Chapter {
	out := make([]Chapter, len(records))
	for i, rec := range records {
		out[i] = Chapter{ChapterRecord: rec}
	}

	return out
}
