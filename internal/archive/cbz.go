// Package archive packs downloaded chapter pages into CBZ files.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteCBZ writes the page files into a comic-book zip at output. Pages are
// stored in the order given; the downloader numbers them per chapter, so
// slice order is reading order and no re-sorting happens here.
func WriteCBZ(pages []string, output string) (err error) {
	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("cbz %s: %w", output, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	z := zip.NewWriter(out)
	for _, page := range pages {
		if err := addPage(z, page); err != nil {
			_ = z.Close()
			return fmt.Errorf("cbz %s: %w", output, err)
		}
	}

	return z.Close()
}

func addPage(z *zip.Writer, path string) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w, err := z.Create(filepath.Base(path))
	if err != nil {
		return err
	}

	_, err = io.Copy(w, f)

	return err
}
