package chapters

import (
	"os"
	"path/filepath"
	"strings"
)

// PruneUnfinished removes chapter folders left behind by an interrupted
// download, recognizable by the FolderName suffix, and returns the removed
// paths. A missing output dir is not an error; there is nothing to prune.
func PruneUnfinished(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, e := range entries {
		if !e.IsDir() || !strings.HasSuffix(e.Name(), tmpSuffix) {
			continue
		}

		full := filepath.Join(dir, e.Name())
		if err := os.RemoveAll(full); err != nil {
			return removed, err
		}
		removed = append(removed, full)
	}

	return removed, nil
}

// RemoveIfEmpty deletes dir when no chapter ended up inside it and reports
// whether it did.
func RemoveIfEmpty(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 0 {
		return false
	}

	return os.Remove(dir) == nil
}
