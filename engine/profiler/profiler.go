package profiler

import (
	"log"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-gpencil/engine/drawcache"
)

const mb = 1024 * 1024

// Profiler accumulates frame timing, runtime memory and draw cache counters and logs a summary
// once per interval.
type Profiler struct {
	interval time.Duration
	since    time.Time

	frames      int
	drawCalls   int
	peakDropped int
	peakSkipped int

	mem            runtime.MemStats
	lastGC         uint32
	lastTotalAlloc uint64
}

// window is one interval's worth of derived numbers.
type window struct {
	fps           float64
	heapMB        float64
	sysMB         float64
	allocRateMB   float64
	gcCount       uint32
	lastPauseUs   uint64
	maxPauseUs    uint64
	drawsPerFrame float64
}

// NewProfiler creates a Profiler that reports every second.
//
// Returns:
//   - *Profiler: the new profiler
func NewProfiler() *Profiler {
	return &Profiler{
		interval: time.Second,
		since:    time.Now(),
	}
}

// Tick records the frame just drawn and logs a summary when the interval has elapsed. The
// summary covers FPS, heap and allocation rate, GC pauses, the latest frame's draw cache
// counters and the interval's peak light and effect truncations.
//
// Parameters:
//   - stats: the stats of the frame just drawn
//
// Returns:
//   - bool: true if a summary was logged
func (p *Profiler) Tick(stats drawcache.FrameStats) bool {
	p.frames++
	p.drawCalls += stats.DrawCalls
	p.peakDropped = max(p.peakDropped, stats.LightsDropped)
	p.peakSkipped = max(p.peakSkipped, stats.VfxSkipped)

	now := time.Now()
	elapsed := now.Sub(p.since)
	if elapsed < p.interval {
		return false
	}

	w := p.sample(elapsed)
	log.Printf("[Profiler] FPS: %.2f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
		w.fps, w.heapMB, w.allocRateMB, w.gcCount, w.lastPauseUs, w.maxPauseUs, w.sysMB)
	log.Printf("[Profiler] %s | draws/frame: %.1f | peak lights dropped: %d | peak fx skipped: %d | pools: %d/%d objects, %d/%d passes",
		stats, w.drawsPerFrame, p.peakDropped, p.peakSkipped,
		stats.Pools.Objects, stats.Pools.ObjectsCap, stats.Pools.Passes, stats.Pools.PassesCap)

	p.frames, p.drawCalls, p.peakDropped, p.peakSkipped = 0, 0, 0, 0
	p.since = now
	p.lastGC = p.mem.NumGC
	p.lastTotalAlloc = p.mem.TotalAlloc
	return true
}

// sample reads the runtime memory stats and derives the interval's rates.
func (p *Profiler) sample(elapsed time.Duration) window {
	runtime.ReadMemStats(&p.mem)
	secs := max(elapsed.Seconds(), 1e-9)

	w := window{
		fps:         float64(p.frames) / secs,
		heapMB:      float64(p.mem.Alloc) / mb,
		sysMB:       float64(p.mem.Sys) / mb,
		allocRateMB: float64(p.mem.TotalAlloc-p.lastTotalAlloc) / mb / secs,
		gcCount:     p.mem.NumGC,
	}
	if p.frames > 0 {
		w.drawsPerFrame = float64(p.drawCalls) / float64(p.frames)
	}
	w.lastPauseUs, w.maxPauseUs = gcPauses(&p.mem, p.lastGC)
	return w
}

// gcPauses returns the latest GC pause and the longest pause since cycle from, in microseconds.
// PauseNs is a ring of the last 256 pauses.
func gcPauses(m *runtime.MemStats, from uint32) (last, longest uint64) {
	n := m.NumGC
	if n == 0 {
		return 0, 0
	}
	last = m.PauseNs[(n-1)%256] / 1000
	if n-from > 256 {
		from = n - 256
	}
	for i := from; i < n; i++ {
		longest = max(longest, m.PauseNs[i%256]/1000)
	}
	return last, longest
}
