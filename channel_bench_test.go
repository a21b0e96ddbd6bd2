package pqueue_test

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"testing"
	"time"

	pq "github.com/Andrej220/go-utils/pqueue"
)

// BenchmarkPutGetSerial measures the uncontended put/get/done path.
func BenchmarkPutGetSerial(b *testing.B) {
	ch, err := pq.NewChannel(1024)
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	it := pq.Item{Name: "five", Priority: 5}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := ch.Put(ctx, it); err != nil {
			b.Fatal(err)
		}
		if _, err := ch.Get(ctx); err != nil {
			b.Fatal(err)
		}
		ch.Done()
	}
}

// BenchmarkEndToEnd pushes a fixed number of items through producers and
// consumers sharing one channel, for a range of capacities.
func BenchmarkEndToEnd(b *testing.B) {
	const itemsToRun = 200_000
	capacities := []int{1, 16, 1024}
	producerCounts := []int{1, 8}

	for _, capacity := range capacities {
		for _, producers := range producerCounts {
			name := fmt.Sprintf("cap=%d/%d_producers", capacity, producers)
			b.Run(name, func(b *testing.B) {
				for i := 0; i < b.N; i++ {
					start := time.Now()
					runEndToEnd(b, capacity, producers, runtime.GOMAXPROCS(0), itemsToRun)
					elapsed := time.Since(start)

					b.ReportMetric(float64(itemsToRun)/elapsed.Seconds()/1e6, "Mitems/sec")
				}
			})
		}
	}
}

func runEndToEnd(b *testing.B, capacity, producers, consumers, items int) {
	b.Helper()
	ch, err := pq.NewChannel(capacity)
	if err != nil {
		b.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var cwg sync.WaitGroup
	for range consumers {
		cwg.Add(1)
		go func() {
			defer cwg.Done()
			for {
				if _, err := ch.Get(ctx); err != nil {
					return
				}
				ch.Done()
			}
		}()
	}

	per := items / producers
	var pwg sync.WaitGroup
	for range producers {
		pwg.Add(1)
		go func() {
			defer pwg.Done()
			for i := range per {
				_ = ch.Put(ctx, pq.DefaultPattern(i))
			}
		}()
	}

	pwg.Wait()
	if err := ch.Join(ctx); err != nil {
		b.Fatal(err)
	}
	cancel()
	cwg.Wait()
}
