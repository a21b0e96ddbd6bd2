package pqueue

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrInvalidCapacity is returned by NewChannel for a non-positive capacity.
	ErrInvalidCapacity = errors.New("pqueue: capacity must be positive")

	// ErrClosed is returned by Put after Close, and by Get once a closed
	// channel has been drained.
	ErrClosed = errors.New("pqueue: channel closed")
)

// ChannelOption configures a Channel.
type ChannelOption func(*Channel)

// WithMetrics attaches a MetricsPolicy to the channel.
func WithMetrics(m MetricsPolicy) ChannelOption {
	return func(c *Channel) {
		if m != nil {
			c.metrics = m
		}
	}
}

// Channel is a bounded, priority-ordered buffer shared by any number of
// producers and consumers.
//
// Put blocks while the channel is full and Get blocks while it is empty,
// which couples producer speed to consumer speed. Every accepted item is
// "unfinished" until a consumer calls Done for it; Join blocks until no
// unfinished items remain.
//
// All state changes happen under mu. Blocked callers wait on signal
// channels that are closed (and replaced) on the relevant transition, so
// every blocking call can also be abandoned through its context.
type Channel struct {
	mu         sync.Mutex
	q          *prioQueue
	capacity   int
	unfinished int
	closed     bool

	// notEmpty is closed when an item is added or the channel is closed.
	notEmpty chan struct{}
	// notFull is closed when an item is removed or the channel is closed.
	notFull chan struct{}
	// allDone is closed while unfinished == 0.
	allDone chan struct{}

	metrics MetricsPolicy
}

// NewChannel creates a channel that holds at most capacity pending items.
func NewChannel(capacity int, opts ...ChannelOption) (*Channel, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	c := &Channel{
		q:        newPrioQueue(capacity),
		capacity: capacity,
		notEmpty: make(chan struct{}),
		notFull:  make(chan struct{}),
		allDone:  make(chan struct{}),
		metrics:  NoopMetrics{},
	}
	close(c.allDone)
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// wake releases every goroutine waiting on *sig and arms a fresh signal.
func wake(sig *chan struct{}) {
	close(*sig)
	*sig = make(chan struct{})
}

// Put inserts it, blocking while the channel is full.
//
// If ctx is done before space becomes available, Put returns ctx.Err()
// and the item is not inserted.
func (c *Channel) Put(ctx context.Context, it Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return ErrClosed
		}
		if c.q.Len() < c.capacity {
			c.putLocked(it)
			c.mu.Unlock()
			return nil
		}
		wait := c.notFull
		c.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// TryPut inserts it without blocking. It reports false when the channel
// is full or closed.
func (c *Channel) TryPut(it Item) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.q.Len() >= c.capacity {
		return false
	}
	c.putLocked(it)
	return true
}

func (c *Channel) putLocked(it Item) {
	c.q.Push(it)
	if c.unfinished == 0 {
		c.allDone = make(chan struct{})
	}
	c.unfinished++
	c.metrics.IncPut()
	c.metrics.ObservePending(c.q.Len())
	wake(&c.notEmpty)
}

// Get removes and returns the pending item with the smallest priority,
// blocking while the channel is empty. Items of equal priority are
// returned in the order they were accepted.
//
// Get does not complete the item; the caller must call Done once the
// item has been processed. A closed channel keeps serving its pending
// items and returns ErrClosed once it is empty. A cancelled ctx is
// checked before every withdrawal, so an abandoned Get never takes an
// item off the channel.
func (c *Channel) Get(ctx context.Context) (Item, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Item{}, err
		}
		c.mu.Lock()
		if it, ok := c.getLocked(); ok {
			c.mu.Unlock()
			return it, nil
		}
		if c.closed {
			c.mu.Unlock()
			return Item{}, ErrClosed
		}
		wait := c.notEmpty
		c.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return Item{}, ctx.Err()
		}
	}
}

// TryGet is the non-blocking form of Get.
func (c *Channel) TryGet() (Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked()
}

func (c *Channel) getLocked() (Item, bool) {
	it, ok := c.q.Pop()
	if !ok {
		return Item{}, false
	}
	c.metrics.IncGet()
	c.metrics.ObservePending(c.q.Len())
	wake(&c.notFull)
	return it, true
}

// Done marks one previously withdrawn item as processed.
//
// Calling Done more times than items were accepted is a programming
// error and panics, like a negative sync.WaitGroup counter.
func (c *Channel) Done() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unfinished <= 0 {
		panic("pqueue: Done called too many times")
	}
	c.unfinished--
	c.metrics.IncDone()
	if c.unfinished == 0 {
		close(c.allDone)
	}
}

// Join blocks until every accepted item has been marked done.
//
// Join may be called while puts and gets are still in flight; it returns
// the first time the unfinished count is observed at zero.
func (c *Channel) Join(ctx context.Context) error {
	c.mu.Lock()
	wait := c.allDone
	c.mu.Unlock()

	select {
	case <-wait:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the channel from accepting new items and wakes every
// blocked caller. Pending items can still be drained with Get.
// Close is idempotent.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	wake(&c.notEmpty)
	wake(&c.notFull)
}

// Len returns the number of pending items. The value is advisory under
// concurrent use.
func (c *Channel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.q.Len()
}

// Cap returns the capacity the channel was created with.
func (c *Channel) Cap() int { return c.capacity }

// Unfinished returns the number of accepted items not yet marked done.
func (c *Channel) Unfinished() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unfinished
}
