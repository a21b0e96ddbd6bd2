package pqueue

import (
	"context"
	"errors"
	"runtime"

	"go.uber.org/zap"
)

// ProcessFunc handles one item withdrawn from the channel.
type ProcessFunc func(ctx context.Context, it Item) error

// consumer withdraws items until its context is cancelled.
type consumer struct {
	id      int
	ch      *Channel
	process ProcessFunc
	pin     bool
	logger  *zap.Logger

	consumed int
}

func newConsumer(id int, ch *Channel, o *Options) *consumer {
	c := &consumer{
		id:     id,
		ch:     ch,
		pin:    o.PinConsumers,
		logger: o.Logger.With(zap.Int("consumer", id)),
	}
	c.process = o.Process
	if c.process == nil {
		c.process = c.logOnly
	}
	return c
}

func (c *consumer) logOnly(_ context.Context, it Item) error {
	if ce := c.logger.Check(zap.DebugLevel, "processing item"); ce != nil {
		ce.Write(zap.Stringer("item", it))
	}
	return nil
}

// run loops get -> process -> done. It has no exit condition of its own:
// cancellation of ctx is observed by Get before the next withdrawal, so a
// cancelled consumer leaves the remaining backlog on the channel and ends
// the loop without error.
func (c *consumer) run(ctx context.Context) error {
	if c.pin {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		if err := PinToCPU(c.id % runtime.NumCPU()); err != nil {
			c.logger.Warn("cpu pinning failed", zap.Error(err))
		}
	}

	c.logger.Info("start consuming")
	for {
		it, err := c.ch.Get(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrClosed) {
				c.logger.Info("consumer stopped", zap.Int("consumed", c.consumed), zap.NamedError("reason", err))
				return nil
			}
			return err
		}

		err = c.handle(ctx, it)
		c.ch.Done()
		c.consumed++
		if err != nil {
			c.logger.Error("processing failed", zap.Stringer("item", it), zap.Error(err))
			return err
		}
		if ce := c.logger.Check(zap.DebugLevel, "consumed"); ce != nil {
			ce.Write(zap.Stringer("item", it))
		}
	}
}

// handle runs the ProcessFunc, turning a panic into an error.
func (c *consumer) handle(ctx context.Context, it Item) (err error) {
	defer func() {
		err = processFault(c.id, it, err, recover())
	}()
	return c.process(ctx, it)
}
