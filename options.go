package pqueue

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultTotalItems    = 1_000_000
	DefaultProducers     = 1
	DefaultConsumers     = 1
	DefaultConsumerDelay = 3 * time.Second

	// NoConsumerDelay starts consumers right after the producers.
	NoConsumerDelay time.Duration = -1
)

// ErrInvalidOptions wraps every validation failure reported by Options.Validate.
var ErrInvalidOptions = errors.New("pqueue: invalid options")

// Options configure a Run.
//
// Zero values are replaced with defaults in FillDefaults; negative values
// are rejected by Validate.
type Options struct {
	// TotalItems is the number of items the run is asked to produce.
	// It is split between producers by integer division, see Plan.
	TotalItems int

	Producers int
	Consumers int

	// ConsumerDelay postpones consumer startup so producers can build a
	// backlog first. Zero keeps the default; use NoConsumerDelay to
	// start consumers immediately.
	ConsumerDelay time.Duration

	// Capacity bounds the channel. Zero means TotalItems.
	Capacity int

	// ProduceRate limits each producer to this many puts per second.
	// Zero disables pacing.
	ProduceRate float64

	// ProduceBurst is the token bucket size used with ProduceRate.
	ProduceBurst int

	// SpreadRemainder hands the TotalItems % Producers leftover items to
	// the first producers instead of dropping them.
	SpreadRemainder bool

	// PinConsumers locks every consumer to its own OS thread pinned to a
	// CPU. Only honoured on Linux.
	PinConsumers bool

	// Pattern builds the i-th item of a producer. Defaults to DefaultPattern.
	Pattern Pattern

	// Process handles one withdrawn item. Defaults to a no-op.
	Process ProcessFunc

	// Logger receives lifecycle logs. When nil, Run uses the logger
	// attached to its context with WithLogger.
	Logger *zap.Logger

	Metrics MetricsPolicy
}

// FillDefaults replaces unset fields with their defaults.
func (o *Options) FillDefaults() {
	if o.TotalItems == 0 {
		o.TotalItems = DefaultTotalItems
	}
	if o.Producers == 0 {
		o.Producers = DefaultProducers
	}
	if o.Consumers == 0 {
		o.Consumers = DefaultConsumers
	}
	if o.ConsumerDelay == 0 {
		o.ConsumerDelay = DefaultConsumerDelay
	}
	if o.ConsumerDelay < 0 {
		o.ConsumerDelay = 0
	}
	if o.Capacity == 0 {
		o.Capacity = max(o.TotalItems, 1)
	}
	if o.ProduceRate > 0 && o.ProduceBurst <= 0 {
		o.ProduceBurst = 1
	}
	if o.Pattern == nil {
		o.Pattern = DefaultPattern
	}
	if o.Metrics == nil {
		o.Metrics = &AtomicMetrics{}
	}
}

// Validate reports the first invalid field.
func (o *Options) Validate() error {
	switch {
	case o.TotalItems < 0:
		return fmt.Errorf("%w: total items %d is negative", ErrInvalidOptions, o.TotalItems)
	case o.Producers < 1:
		return fmt.Errorf("%w: producers must be at least 1, got %d", ErrInvalidOptions, o.Producers)
	case o.Consumers < 1:
		return fmt.Errorf("%w: consumers must be at least 1, got %d", ErrInvalidOptions, o.Consumers)
	case o.Capacity < 1:
		return fmt.Errorf("%w: capacity must be at least 1, got %d", ErrInvalidOptions, o.Capacity)
	case o.ProduceRate < 0:
		return fmt.Errorf("%w: produce rate %v is negative", ErrInvalidOptions, o.ProduceRate)
	}
	return nil
}

// Plan returns how many items each producer emits and how many of
// TotalItems are not produced at all.
//
// The split is integer division: with 7 items and 2 producers every
// producer emits 3 and 1 item is dropped. When SpreadRemainder is set the
// first TotalItems % Producers producers emit one extra item and nothing
// is dropped; quotas then holds the per-producer counts.
func (o *Options) Plan() (quotas []int, dropped int) {
	if o.Producers <= 0 {
		return nil, o.TotalItems
	}
	per := o.TotalItems / o.Producers
	rem := o.TotalItems % o.Producers

	quotas = make([]int, o.Producers)
	for i := range quotas {
		quotas[i] = per
		if o.SpreadRemainder && i < rem {
			quotas[i]++
		}
	}
	if o.SpreadRemainder {
		return quotas, 0
	}
	return quotas, rem
}
