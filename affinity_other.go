//go:build !linux

package pqueue

import "errors"

// PinToCPU is only supported on Linux.
func PinToCPU(int) error {
	return errors.New("pqueue: cpu pinning is not supported on this platform")
}
