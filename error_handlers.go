package pqueue

import (
	"errors"
	"fmt"
)

var (
	// ErrProcessPanic wraps a panic raised by a ProcessFunc.
	ErrProcessPanic = errors.New("pqueue: process panicked")

	// ErrProcess wraps an error returned by a ProcessFunc.
	ErrProcess = errors.New("pqueue: process failed")

	// ErrPatternPanic wraps a panic raised by a producer's Pattern.
	ErrPatternPanic = errors.New("pqueue: pattern panicked")
)

// processFault converts the outcome of processing it into the error a
// consumer returns to the run.
//
// Faults are not recovered locally: the returned error aborts the run.
// A nil err and nil panic value report success.
func processFault(consumer int, it Item, err error, recovered any) error {
	if recovered != nil {
		return fmt.Errorf("%w: consumer %d, item %s: %v", ErrProcessPanic, consumer, it, recovered)
	}
	if err != nil {
		return fmt.Errorf("%w: consumer %d, item %s: %w", ErrProcess, consumer, it, err)
	}
	return nil
}

// patternFault converts a panic raised while building item i into the
// error a producer returns to the run.
func patternFault(producer, i int, recovered any) error {
	if recovered == nil {
		return nil
	}
	return fmt.Errorf("%w: producer %d, item %d: %v", ErrPatternPanic, producer, i, recovered)
}
