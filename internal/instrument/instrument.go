// Package instrument brackets a run with wall-clock timestamps and heap
// usage readings.
package instrument

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

const DefaultSampleInterval = 50 * time.Millisecond

// Sample is the result of one measured section.
type Sample struct {
	Start time.Time
	End   time.Time

	// HeapAlloc is the live heap at the end of the section.
	HeapAlloc uint64
	// PeakHeapAlloc is the largest live heap observed while sampling.
	PeakHeapAlloc uint64
}

// Elapsed returns End - Start.
func (s Sample) Elapsed() time.Duration { return s.End.Sub(s.Start) }

func (s Sample) String() string {
	return fmt.Sprintf("time=%.2fs heap=%s peak=%s",
		s.Elapsed().Seconds(), humanize.IBytes(s.HeapAlloc), humanize.IBytes(s.PeakHeapAlloc))
}

// Sampler samples the heap in the background until Stop is called.
type Sampler struct {
	start time.Time

	mu   sync.Mutex
	peak uint64

	stopOnce sync.Once
	done     chan struct{}
	exited   chan struct{}
}

// Start begins measuring. interval <= 0 selects DefaultSampleInterval.
func Start(interval time.Duration) *Sampler {
	if interval <= 0 {
		interval = DefaultSampleInterval
	}
	p := &Sampler{
		start:  time.Now(),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	p.observe(heapAlloc())
	go p.loop(interval)
	return p
}

func (p *Sampler) loop(interval time.Duration) {
	defer close(p.exited)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			p.observe(heapAlloc())
		case <-p.done:
			return
		}
	}
}

func (p *Sampler) observe(v uint64) {
	p.mu.Lock()
	if v > p.peak {
		p.peak = v
	}
	p.mu.Unlock()
}

// Stop ends the section and returns its sample. Later calls return a
// sample with the same start and a fresh end reading.
func (p *Sampler) Stop() Sample {
	p.stopOnce.Do(func() { close(p.done) })
	<-p.exited

	end := time.Now()
	cur := heapAlloc()
	p.observe(cur)

	p.mu.Lock()
	defer p.mu.Unlock()
	return Sample{
		Start:         p.start,
		End:           end,
		HeapAlloc:     cur,
		PeakHeapAlloc: p.peak,
	}
}

func heapAlloc() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapAlloc
}
