//go:build linux

package pqueue

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// PinToCPU restricts the calling OS thread to a single CPU.
// Callers must hold runtime.LockOSThread for the pin to stick.
func PinToCPU(cpu int) error {
	if cpu < 0 || cpu >= runtime.NumCPU() {
		return fmt.Errorf("pqueue: cpu %d out of range [0,%d)", cpu, runtime.NumCPU())
	}
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("pqueue: pin to cpu %d: %w", cpu, err)
	}
	return nil
}
