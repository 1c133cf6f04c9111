package perf

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// FilePerf records where the time went while one file was processed. Blocks
// may be started from several goroutines (the db tracer runs on whichever
// goroutine issued the query), so all access is locked.
type FilePerf struct {
	Path  string
	Start time.Time
	End   time.Time

	mu     sync.Mutex
	Blocks []PerfBlock
}

func NewFilePerf(path string) *FilePerf {
	return &FilePerf{
		Path:  path,
		Start: time.Now(),
	}
}

// Finish closes any open blocks and stamps the end time.
func (fp *FilePerf) Finish() {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	now := time.Now()
	for i := range fp.Blocks {
		if fp.Blocks[i].End.IsZero() {
			fp.Blocks[i].End = now
		}
	}
	fp.End = now
}

func (fp *FilePerf) Checkpoint(category, description string) {
	now := time.Now()
	fp.mu.Lock()
	defer fp.mu.Unlock()
	fp.Blocks = append(fp.Blocks, PerfBlock{
		Start:       now,
		End:         now,
		Category:    category,
		Description: description,
	})
}

// StartBlock opens a block. End it with the returned handle. A nil FilePerf
// hands out a handle that does nothing, so callers never need to check.
func (fp *FilePerf) StartBlock(category, description string) *BlockHandle {
	if fp == nil {
		return &BlockHandle{}
	}
	fp.mu.Lock()
	defer fp.mu.Unlock()
	fp.Blocks = append(fp.Blocks, PerfBlock{
		Start:       time.Now(),
		Category:    category,
		Description: description,
	})
	return &BlockHandle{fp: fp, idx: len(fp.Blocks) - 1}
}

// Totals sums block durations per category.
func (fp *FilePerf) Totals() map[string]time.Duration {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	totals := make(map[string]time.Duration)
	for _, b := range fp.Blocks {
		totals[b.Category] += b.Duration()
	}
	return totals
}

func (fp *FilePerf) Duration() time.Duration {
	return fp.End.Sub(fp.Start)
}

// Log writes a single debug event with the total and per-category timings.
func (fp *FilePerf) Log(logger *zerolog.Logger) {
	ev := logger.Debug().Str("file", fp.Path).Dur("total", fp.Duration())
	for category, d := range fp.Totals() {
		ev = ev.Dur(category, d)
	}
	ev.Msg("timings")
}

type BlockHandle struct {
	fp  *FilePerf
	idx int
}

func (h *BlockHandle) End() {
	if h == nil || h.fp == nil {
		return
	}
	h.fp.mu.Lock()
	defer h.fp.mu.Unlock()
	h.fp.Blocks[h.idx].End = time.Now()
}

type PerfBlock struct {
	Start       time.Time
	End         time.Time
	Category    string
	Description string
}

func (pb *PerfBlock) Duration() time.Duration {
	return pb.End.Sub(pb.Start)
}

func (pb *PerfBlock) DurationMs() float64 {
	return float64(pb.Duration().Nanoseconds()) / 1000 / 1000
}

type perfContextKey struct{}

func AttachPerf(ctx context.Context, fp *FilePerf) context.Context {
	return context.WithValue(ctx, perfContextKey{}, fp)
}

// ExtractPerf returns the FilePerf attached to ctx, or nil.
func ExtractPerf(ctx context.Context) *FilePerf {
	fp, _ := ctx.Value(perfContextKey{}).(*FilePerf)
	return fp
}
