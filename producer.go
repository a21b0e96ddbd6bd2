package pqueue

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Pattern returns the i-th item a producer submits, counting from zero.
type Pattern func(i int) Item

// DefaultPattern makes every tenth submission, starting with the first,
// an urgent Item{"one", 1}; all others are Item{"five", 5}.
func DefaultPattern(i int) Item {
	if i%10 == 0 {
		return Item{Name: "one", Priority: 1}
	}
	return Item{Name: "five", Priority: 5}
}

// producer submits exactly count items to ch.
type producer struct {
	id      int
	count   int
	ch      *Channel
	pattern Pattern
	limiter *rate.Limiter
	logger  *zap.Logger
}

func newProducer(id, count int, ch *Channel, o *Options) *producer {
	p := &producer{
		id:      id,
		count:   count,
		ch:      ch,
		pattern: o.Pattern,
		logger:  o.Logger.With(zap.Int("producer", id)),
	}
	if o.ProduceRate > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(o.ProduceRate), o.ProduceBurst)
	}
	return p
}

// run puts every item and yields after each one so sibling producers
// and the consumer delay timer get scheduled. A failed put or a panicking
// Pattern aborts the producer; items already accepted stay unfinished.
func (p *producer) run(ctx context.Context) (int, error) {
	p.logger.Info("start producing", zap.Int("count", p.count))

	for i := range p.count {
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return i, fmt.Errorf("producer %d: pacing item %d: %w", p.id, i, err)
			}
		}
		it, err := p.build(i)
		if err != nil {
			return i, err
		}
		if err := p.ch.Put(ctx, it); err != nil {
			return i, fmt.Errorf("producer %d: put item %d: %w", p.id, i, err)
		}
		if ce := p.logger.Check(zap.DebugLevel, "produced"); ce != nil {
			ce.Write(zap.Int("i", i), zap.Stringer("item", it))
		}
		runtime.Gosched()
	}

	p.logger.Info("finished producing", zap.Int("count", p.count))
	return p.count, nil
}

func (p *producer) build(i int) (it Item, err error) {
	defer func() {
		err = patternFault(p.id, i, recover())
	}()
	return p.pattern(i), nil
}
