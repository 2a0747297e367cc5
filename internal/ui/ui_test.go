package ui

import (
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vbauerster/mpb/v8"
)

func TestHumanBytes(t *testing.T) {
	assert.Equal(t, "0 B", HumanBytes(0))
	assert.Equal(t, "512 B", HumanBytes(512))
	assert.Equal(t, "1.00 KB", HumanBytes(1024))
	assert.Equal(t, "1.50 MB", HumanBytes(3<<19))
	assert.Equal(t, "2.00 GB", HumanBytes(2<<30))
	assert.Equal(t, "1.00 TB", HumanBytes(1<<40))
}

func quietManager() *ProgressManager {
	return &ProgressManager{p: mpb.New(mpb.WithOutput(io.Discard))}
}

func TestProgressHandleLifecycle(t *testing.T) {
	pm := quietManager()
	h := pm.Register("Ch.1")
	h.SetTotal(10)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			h.Update(n, 10, int64(n)*100)
		}(i)
	}
	wg.Wait()

	h.MarkDone()

	// finalized handles ignore late updates
	h.Update(99, 99, 9999)
	h.SetTotal(99)
	h.MarkDone()

	pm.Close()
}

func TestProgressHandleNilSafe(t *testing.T) {
	var h *ProgressHandle

	h.SetTotal(5)
	h.Update(1, 5, 100)
	h.MarkDone()
}
