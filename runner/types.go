// runner/types.go
package runner

import (
	"math"
	"time"
)

// Executor dispatches the heavy transform over in, writing out, in groups
// of groupSize logical threads. Implementations own any device-side buffers
// for the duration of Dispatch and release them before returning.
type Executor interface {
	Name() string
	Dispatch(in, out []int32, iterations, groupSize int) (Timing, error)
	Free()
}

// Timing reports the phases of one Dispatch. Kernel is measured between the
// start and stop events and excludes transfers and host dispatch overhead
// where the backend can timestamp on the device.
type Timing struct {
	Kernel  time.Duration
	CopyIn  time.Duration
	CopyOut time.Duration
}

// Event is a host monotonic clock stamp. GroupExecutor records one after
// its worker barrier; Runner uses DeviceEvent instead.
type Event struct {
	stamp time.Time
}

// ElapsedTime returns the time between two events. A stop recorded before
// start yields zero.
func ElapsedTime(start, stop Event) time.Duration {
	d := stop.stamp.Sub(start.stamp)
	if d < 0 {
		return 0
	}
	return d
}

// SizeOfInt32 is the element size of every buffer the kernel touches
const SizeOfInt32 = 4

func validateDispatch(in, out []int32, iterations, groupSize int) error {
	switch {
	case len(in) == 0:
		return errorf("empty input")
	case len(out) != len(in):
		return errorf("output length %d does not match input length %d", len(out), len(in))
	case iterations < 0 || iterations > math.MaxInt32:
		return errorf("iteration count %d outside [0, %d]", iterations, math.MaxInt32)
	case groupSize < 1:
		return errorf("group size %d must be positive", groupSize)
	}
	return nil
}

func newEvent() Event {
	return Event{stamp: time.Now()}
}
