// Package pqueue provides a bounded, priority-ordered work channel shared
// by many producers and many consumers, and a Run helper that drives one
// complete produce/consume cycle over it.
//
// Channel
//
// A Channel holds at most Cap() pending items ordered by Item.Priority,
// lower values first. Items of equal priority leave in acceptance order.
//
//   - Put blocks while the channel is full (backpressure)
//   - Get blocks while the channel is empty
//   - Done marks one withdrawn item as processed
//   - Join blocks until every accepted item has been marked done
//
// Every blocking call takes a context.Context and returns ctx.Err() when
// it is abandoned. Put and Get check the context before touching the
// channel, so a cancelled caller neither adds nor withdraws items. All state changes happen under a single mutex, so the
// pending count and the unfinished count are never observed torn.
//
// Run
//
// Run starts Options.Producers producers immediately and Options.Consumers
// consumers after Options.ConsumerDelay, waits for the producers, joins
// the channel and finally cancels the consumers, which at that point are
// parked in Get with nothing left to withdraw.
//
// TotalItems is split between producers by integer division. Any
// remainder is not produced; it is reported in Report.Dropped and logged
// as a warning unless Options.SpreadRemainder is set.
//
// Error handling
//
// There is no local recovery. A producer that fails to put or whose
// Pattern panics, or a consumer whose ProcessFunc returns an error or
// panics, cancels the whole run and its error is returned by Run. The
// remaining backlog is left on the channel and shows up in
// Report.Remaining. Calling Channel.Done more often than items
// were accepted panics.
//
// Metrics
//
// The channel reports activity through a MetricsPolicy. AtomicMetrics
// counts puts, gets, completions and the peak pending count; NoopMetrics
// discards everything.
package pqueue
