package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okibe/mangasrc/internal/archive"
	"github.com/okibe/mangasrc/internal/chapters"
	"github.com/okibe/mangasrc/internal/downloader"
	"github.com/okibe/mangasrc/internal/fetch"
	"github.com/okibe/mangasrc/internal/source"
	"github.com/okibe/mangasrc/internal/ui"
)

var (
	flagChapter     string
	flagRange       string
	flagList        string
	flagOutput      string
	flagPageWorkers int
	flagKeepFolders bool
	flagDryRun      bool
	flagSkipBroken  bool
)

var downloadCmd = &cobra.Command{
	Use:   "download <manga-id>",
	Short: "Download chapters as CBZ files",
	Args:  cobra.ExactArgs(1),
	RunE:  runDownload,
}

func init() {
	downloadCmd.Flags().StringVar(&flagChapter, "chapter", "", "single chapter by label or index (e.g. 28.5 or 3)")
	downloadCmd.Flags().StringVar(&flagRange, "range", "", "range of chapters by index (e.g. 5-12)")
	downloadCmd.Flags().StringVar(&flagList, "list", "", "specific chapter indices (e.g. 1,3,5)")
	downloadCmd.Flags().StringVar(&flagOutput, "output", "", "output folder for CBZ files")
	downloadCmd.Flags().IntVar(&flagPageWorkers, "page-workers", 5, "parallel page downloads per chapter")
	downloadCmd.Flags().BoolVar(&flagKeepFolders, "keep-folders", false, "keep temporary page folders")
	downloadCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "show what would be downloaded, don't download")
	downloadCmd.Flags().BoolVar(&flagSkipBroken, "skip-broken", false, "skip failed pages instead of failing the chapter")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}

	cfg := s.cfg
	if flagOutput != "" {
		cfg.Output = flagOutput
	}
	if cmd.Flags().Changed("page-workers") {
		cfg.PageWorkers = flagPageWorkers
	}
	if flagKeepFolders {
		cfg.KeepFolders = true
	}
	if flagSkipBroken {
		cfg.SkipBroken = true
	}

	if err := os.MkdirAll(cfg.Output, 0755); err != nil {
		return fmt.Errorf("cannot create output folder: %w", err)
	}

	mangaID := args[0]

	// interrupts cancel the context; the cleanup below then sweeps whatever
	// chapter was mid-flight
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	removed, pruneErr := chapters.PruneUnfinished(cfg.Output)
	if pruneErr != nil {
		s.log.Debugf("pruning leftovers: %v\n", pruneErr)
	}
	for _, r := range removed {
		s.log.Debugf("removed unfinished chapter folder %s\n", r)
	}

	records, err := s.adapter.Chapters(ctx, mangaID)
	if err != nil {
		return explain(err)
	}

	all := chapters.Wrap(records)
	selected := chapters.Filter(all, flagChapter, flagRange, flagList)
	if len(selected) == 0 {
		if flagChapter != "" {
			return fmt.Errorf("chapter %q not found (%d chapters on the site)", flagChapter, len(all))
		}
		return fmt.Errorf("no chapters selected")
	}

	if flagDryRun {
		fmt.Printf("Dry-run: %d chapters selected.\n\n", len(selected))
		for i, ch := range selected {
			fmt.Printf("%3d) Ch.%-7s %s\n", i+1, ch.Label(), ch.Title)
		}
		return nil
	}

	profile := s.adapter.Profile()
	dl := downloader.New(s.client.HTTPClient(), profile.Referer, fetch.DefaultUserAgent(cfg.UserAgent), cfg.SkipBroken)

	pm := ui.NewProgressManager()
	defer pm.Close()

	stats := &ui.Stats{}
	start := time.Now()

	for _, ch := range selected {
		if ctx.Err() != nil {
			break
		}

		pages, err := s.adapter.Pages(ctx, mangaID, ch.ID)
		if err != nil {
			if errors.Is(err, source.ErrNoContent) {
				s.log.Errorf("No pages for Ch.%s, skipping\n", ch.Label())
				continue
			}
			return explain(err)
		}

		handle := pm.Register("Ch." + ch.Label())
		handle.SetTotal(len(pages.Pages))

		tmpFolder := filepath.Join(cfg.Output, ch.FolderName())
		files, bytes, err := dl.FetchChapter(ctx, pages, tmpFolder, cfg.PageWorkers, handle)
		if err != nil {
			s.log.Errorf("Chapter %s failed: %v\n", ch.Label(), err)
			_ = os.RemoveAll(tmpFolder)
			continue
		}

		if err := archive.WriteCBZ(files, ch.OutputCBZPath(cfg.Output)); err != nil {
			s.log.Errorf("CBZ for %s failed: %v\n", ch.Label(), err)
			_ = os.RemoveAll(tmpFolder)
			continue
		}

		if !cfg.KeepFolders {
			_ = os.RemoveAll(tmpFolder)
		}

		handle.MarkDone()
		stats.TotalChapters.Add(1)
		stats.TotalPages.Add(int64(len(files)))
		stats.TotalBytes.Add(bytes)
	}

	pm.Close()

	if ctx.Err() != nil {
		fmt.Println("\nInterrupted; cleaning up unfinished chapters.")
		if _, err := chapters.PruneUnfinished(cfg.Output); err != nil {
			s.log.Errorf("cleanup failed: %v\n", err)
		}
		chapters.RemoveIfEmpty(cfg.Output)
		return ctx.Err()
	}

	fmt.Println()
	fmt.Println("Download Summary:")
	fmt.Printf("Chapters: %d\n", stats.TotalChapters.Load())
	fmt.Printf("Pages:    %d\n", stats.TotalPages.Load())
	fmt.Printf("Data:     %s\n", ui.HumanBytes(stats.TotalBytes.Load()))
	fmt.Printf("Time:     %s\n", time.Since(start).Round(time.Second))

	return nil
}
