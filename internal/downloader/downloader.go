// Package downloader pulls a chapter's page images onto disk so they can be
// packed into a CBZ. This is host-side plumbing around the adapter's
// ChapterPages output; it retries per image, which the adapters themselves
// never do.
package downloader

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/okibe/mangasrc/internal/source"
	"github.com/okibe/mangasrc/internal/ui"
)

type Downloader struct {
	client     *http.Client
	referer    string
	userAgent  string
	skipBroken bool
}

func New(client *http.Client, referer, userAgent string, skipBroken bool) *Downloader {
	return &Downloader{
		client:     client,
		referer:    referer,
		userAgent:  userAgent,
		skipBroken: skipBroken,
	}
}

type progressState struct {
	mu        sync.Mutex
	donePages int
	total     int
	doneBytes int64
}

// FetchChapter downloads every page URL into folder, numbered page_001 and
// up, with at most workers in flight. Returns the written files in page order
// plus the byte count; with skipBroken unset any failed page fails the
// chapter.
func (d *Downloader) FetchChapter(ctx context.Context, pages *source.ChapterPages, folder string, workers int, ph *ui.ProgressHandle) ([]string, int64, error) {
	if err := os.MkdirAll(folder, 0755); err != nil {
		return nil, 0, err
	}

	urls := pages.Pages
	total := len(urls)
	if workers < 1 {
		workers = 1
	}
	if workers > total && total > 0 {
		workers = total
	}

	st := &progressState{total: total}
	ph.Update(0, total, 0)

	// indexed by page so the result keeps reading order however the workers
	// finish; failed slots stay empty
	results := make([]string, total)
	errs := make([]error, 0, 4)

	jobs := make(chan int)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for i := range jobs {
			u := urls[i]

			ext := filepath.Ext(strings.SplitN(u, "?", 2)[0])
			if ext == "" {
				ext = ".jpg"
			}

			path := filepath.Join(folder, fmt.Sprintf("page_%03d%s", i+1, ext))
			var last int64

			progress := func(done int64) {
				delta := done - last
				if delta <= 0 {
					return
				}

				last = done
				st.mu.Lock()
				st.doneBytes += delta
				ph.Update(st.donePages, st.total, st.doneBytes)
				st.mu.Unlock()
			}

			err := d.fetchWithRetry(ctx, u, path, progress)

			st.mu.Lock()
			if err != nil {
				errs = append(errs, fmt.Errorf("page %d: %v", i+1, err))
			}
			st.donePages++
			ph.Update(st.donePages, st.total, st.doneBytes)
			st.mu.Unlock()

			if err == nil {
				results[i] = path
			}
		}
	}

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go worker()
	}

	for i := range urls {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			ph.MarkDone()
			return collect(results), st.doneBytes, ctx.Err()
		case jobs <- i:
		}
	}

	close(jobs)
	wg.Wait()
	ph.MarkDone()

	if len(errs) > 0 && !d.skipBroken {
		return collect(results), st.doneBytes, fmt.Errorf("failed %d/%d pages (use --skip-broken to continue)", len(errs), total)
	}

	return collect(results), st.doneBytes, nil
}

func collect(results []string) []string {
	files := make([]string, 0, len(results))
	for _, p := range results {
		if p != "" {
			files = append(files, p)
		}
	}

	return files
}

func (d *Downloader) fetchWithRetry(ctx context.Context, url, output string, progress func(done int64)) error {
	var err error
	for attempt := 1; attempt <= 3; attempt++ {
		err = d.fetch(ctx, url, output, progress)
		if err == nil {
			return nil
		}
		if attempt == 3 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * time.Second):
		}
	}

	return err
}

// fetch uses named results so the deferred body close can fail the page; a
// short flush on close must not report the page as downloaded.
func (d *Downloader) fetch(ctx context.Context, u, output string, progress func(done int64)) (err error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	if d.referer != "" {
		req.Header.Set("Referer", d.referer)
	}
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}
	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if mt, _, _ := mime.ParseMediaType(ct); !strings.HasPrefix(mt, "image/") {
			return fmt.Errorf("unexpected MIME: %s", mt)
		}
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}

	written, err := copyWithProgress(f, resp.Body, progress)
	if cerr := f.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	if progress != nil && resp.ContentLength > 0 && written < resp.ContentLength {
		progress(resp.ContentLength)
	}

	return nil
}
