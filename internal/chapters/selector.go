package chapters

import (
	"strconv"
	"strings"
)

// Filter narrows the full chapter list by one of: a single chapter (label or
// 1-based index), an index range "5-12", or an index list "1,3,5". Indices
// refer to the list as returned by the adapter, newest first.
func Filter(all []Chapter, chapter, rng, list string) []Chapter {
	if chapter != "" {
		byLabel := FilterByLabel(all, chapter)
		if len(byLabel) > 0 {
			return byLabel
		}
		if idx, err := atoi(chapter); err == nil {
			if idx > 0 && idx <= len(all) {
				return []Chapter{all[idx-1]}
			}
		}
		return nil
	}

	if rng != "" {
		return FilterRange(all, rng)
	}
	if list != "" {
		return FilterList(all, list)
	}

	return all
}

func FilterByLabel(all []Chapter, label string) []Chapter {
	var out []Chapter
	for _, ch := range all {
		if ch.Label() == label {
			out = append(out, ch)
		}
	}

	return out
}

func FilterRange(all []Chapter, rng string) []Chapter {
	parts := strings.Split(rng, "-")
	if len(parts) != 2 {
		return nil
	}

	start, err1 := atoi(parts[0])
	end, err2 := atoi(parts[1])
	if err1 != nil || err2 != nil {
		return nil
	}
	if start <= 0 || end <= 0 || start > end || end > len(all) {
		return nil
	}

	return all[start-1 : end]
}

func FilterList(all []Chapter, list string) []Chapter {
	out := []Chapter{}
	for p := range strings.SplitSeq(list, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		idx, err := atoi(p)
		if err != nil || idx <= 0 || idx > len(all) {
			continue
		}

		out = append(out, all[idx-1])
	}

	return out
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
