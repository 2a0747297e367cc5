package ui

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

type ProgressManager struct {
	p *mpb.Progress
}

func NewProgressManager() *ProgressManager {
	p := mpb.New(
		mpb.WithWidth(52),
		mpb.WithOutput(os.Stdout),
		mpb.WithRefreshRate(120*time.Millisecond),
	)
	return &ProgressManager{p: p}
}

func (pm *ProgressManager) Close() {
	pm.p.Wait()
}

func (pm *ProgressManager) Register(prefix string) *ProgressHandle {
	h := &ProgressHandle{
		pm:     pm,
		prefix: prefix,
	}
	h.initBar()
	return h
}

type ProgressHandle struct {
	pm     *ProgressManager
	prefix string
	bar    *mpb.Bar

	total int64
	bytes int64

	start   time.Time
	elapsed atomic.Int64

	final atomic.Bool
}

func (h *ProgressHandle) initBar() {
	h.start = time.Now()

	h.bar = h.pm.p.New(
		0,
		mpb.BarStyle().Rbound("]"),

		mpb.PrependDecorators(
			decor.Name(h.prefix+"  "),
		),

		mpb.AppendDecorators(
			decor.Percentage(decor.WCSyncWidth),
			decor.CountersNoUnit(" | %d/%d pages", decor.WCSyncWidth),
			decor.Any(func(_ decor.Statistics) string {
				return " | " + HumanBytes(atomic.LoadInt64(&h.bytes))
			}),

			decor.Any(func(_ decor.Statistics) string {
				if h.final.Load() {
					return fmt.Sprintf(" | %ds", h.elapsed.Load())
				}

				return fmt.Sprintf(" | %ds", int(time.Since(h.start).Seconds()))
			}),
		),
	)
}

func (h *ProgressHandle) SetTotal(total int) {
	if h == nil || h.final.Load() {
		return
	}

	atomic.StoreInt64(&h.total, int64(total))
	h.bar.SetTotal(int64(total), false)
}

// Update is a no-op on a nil handle so callers can run without a live bar.
func (h *ProgressHandle) Update(done, total int, bytes int64) {
	if h == nil || h.final.Load() {
		return
	}

	if total > 0 {
		atomic.StoreInt64(&h.total, int64(total))
		h.bar.SetTotal(int64(total), false)
	}

	atomic.StoreInt64(&h.bytes, bytes)
	h.bar.SetCurrent(int64(done))
}

func (h *ProgressHandle) MarkDone() {
	if h == nil || h.final.Swap(true) {
		return
	}

	h.elapsed.Store(int64(time.Since(h.start).Seconds()))

	total := atomic.LoadInt64(&h.total)
	h.bar.SetCurrent(total)
	h.bar.SetTotal(total, true)
}
