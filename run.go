package pqueue

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Report summarizes a finished Run.
type Report struct {
	RunID    uuid.UUID
	Started  time.Time
	Finished time.Time

	// Expected is Options.TotalItems. Produced + Dropped equals Expected
	// after a successful run.
	Expected int
	Produced int
	Consumed int

	// Dropped counts items lost to the integer split between producers.
	Dropped int

	// Quotas holds the number of items assigned to each producer.
	Quotas []int

	PeakPending int

	// Remaining is the number of pending items at shutdown. It is zero
	// after a successful run.
	Remaining int
}

// Elapsed returns the wall-clock duration of the run.
func (r Report) Elapsed() time.Duration {
	return r.Finished.Sub(r.Started)
}

type peakReporter interface {
	PeakPending() int
}

// Run executes one produce/consume cycle:
//
//  1. create the channel,
//  2. start every producer,
//  3. wait ConsumerDelay so a backlog builds up,
//  4. start every consumer,
//  5. wait for the producers,
//  6. Join the channel,
//  7. cancel the consumers, now idle in Get, and return.
//
// Nothing is retried. The first producer or consumer fault cancels the
// run, every wait point returns, and the fault is returned as the error.
// The Report is filled in on both paths.
func Run(ctx context.Context, opts Options) (Report, error) {
	if opts.Logger == nil {
		opts.Logger = FromContext(ctx)
	}
	opts.FillDefaults()
	if err := opts.Validate(); err != nil {
		return Report{}, err
	}

	rep := Report{
		RunID:    uuid.New(),
		Started:  time.Now(),
		Expected: opts.TotalItems,
	}
	logger := opts.Logger.With(zap.String("run_id", rep.RunID.String()))
	opts.Logger = logger

	ch, err := NewChannel(opts.Capacity, WithMetrics(opts.Metrics))
	if err != nil {
		return rep, fmt.Errorf("create channel: %w", err)
	}

	rep.Quotas, rep.Dropped = opts.Plan()
	if rep.Dropped > 0 {
		logger.Warn("total items not divisible by producers, remainder is not produced",
			zap.Int("total_items", opts.TotalItems),
			zap.Int("producers", opts.Producers),
			zap.Int("dropped", rep.Dropped),
		)
	}

	g, gctx := errgroup.WithContext(ctx)

	var produced atomic.Int64
	var producersWG sync.WaitGroup
	producersWG.Add(len(rep.Quotas))
	for i, n := range rep.Quotas {
		p := newProducer(i, n, ch, &opts)
		g.Go(func() error {
			defer producersWG.Done()
			k, err := p.run(gctx)
			produced.Add(int64(k))
			return err
		})
	}
	producersDone := make(chan struct{})
	go func() {
		producersWG.Wait()
		close(producersDone)
	}()

	consumers := make([]*consumer, 0, opts.Consumers)
	cctx, stopConsumers := context.WithCancel(gctx)
	defer stopConsumers()

	finish := func() (Report, error) {
		stopConsumers()
		runErr := g.Wait()
		rep.Finished = time.Now()
		rep.Produced = int(produced.Load())
		for _, c := range consumers {
			rep.Consumed += c.consumed
		}
		if pr, ok := opts.Metrics.(peakReporter); ok {
			rep.PeakPending = pr.PeakPending()
		}
		rep.Remaining = ch.Len()
		return rep, runErr
	}
	abort := func(stage string) (Report, error) {
		logger.Error("run aborted", zap.String("stage", stage))
		r, err := finish()
		if err == nil {
			err = ctx.Err()
		}
		if err == nil {
			err = fmt.Errorf("pqueue: run aborted while %s", stage)
		}
		return r, err
	}

	if opts.ConsumerDelay > 0 {
		logger.Info("waiting before consuming", zap.Duration("delay", opts.ConsumerDelay))
		timer := time.NewTimer(opts.ConsumerDelay)
		select {
		case <-timer.C:
		case <-gctx.Done():
			timer.Stop()
			return abort("delaying consumers")
		}
	}

	for i := range opts.Consumers {
		c := newConsumer(i, ch, &opts)
		consumers = append(consumers, c)
		g.Go(func() error { return c.run(cctx) })
	}

	select {
	case <-producersDone:
		logger.Info("all producers finished", zap.Int64("produced", produced.Load()))
	case <-gctx.Done():
		return abort("waiting for producers")
	}

	if err := ch.Join(gctx); err != nil {
		return abort("waiting for drain")
	}
	logger.Info("all items processed", zap.Int("pending", ch.Len()))

	// consumers are parked in Get with nothing left to pull
	return finish()
}
