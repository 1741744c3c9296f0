package uploader

import (
	"context"
	"io"
	"math"
	"sync"
)

// ProgressFunc receives unified upload progress on a 0-100 scale.
type ProgressFunc func(percent int)

// Unified progress boundaries. The transfer phase owns (20, 90]; raw
// transfer fractions are remapped linearly onto that span.
const (
	progressStarted     = 10
	progressGranted     = 20
	progressTransferred = 90
	progressDone        = 100

	transferSpan = progressTransferred - progressGranted
)

// progressTracker enforces the callback contract for one attempt: values
// are monotonically non-decreasing and nothing is reported once the
// caller's context is gone. The mutex matters because the HTTP transport
// drains the request body on its own goroutine.
type progressTracker struct {
	mu   sync.Mutex
	ctx  context.Context
	fn   ProgressFunc
	last int
}

func newProgressTracker(ctx context.Context, fn ProgressFunc) *progressTracker {
	return &progressTracker{ctx: ctx, fn: fn}
}

func (t *progressTracker) report(percent int) {
	if t.fn == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if percent <= t.last || t.ctx.Err() != nil {
		return
	}
	t.last = percent
	t.fn(percent)
}

// reportTransfer remaps a raw transfer fraction in [0,1] onto the unified scale.
func (t *progressTracker) reportTransfer(frac float64) {
	if frac < 0 {
		frac = 0
	} else if frac > 1 {
		frac = 1
	}
	t.report(progressGranted + int(math.Round(frac*transferSpan)))
}

// progressReader counts bytes as the transport reads them off the media
// source and feeds the running fraction to the tracker.
type progressReader struct {
	r       io.Reader
	total   int64
	read    int64
	tracker *progressTracker
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	if n > 0 && pr.total > 0 {
		pr.read += int64(n)
		pr.tracker.reportTransfer(float64(pr.read) / float64(pr.total))
	}
	return n, err
}
