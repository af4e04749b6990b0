package runner

import (
	"time"

	"github.com/notargets/gocca"
)

const (
	inputBuffer  = "in_global"
	outputBuffer = "out_global"
)

// DeviceEvent is a tag recorded in the device stream. Its timestamp is taken
// by the OCCA runtime when the stream reaches it.
type DeviceEvent struct {
	tag *gocca.OCCAStreamTag
}

// RecordEvent tags the current position of the device stream
func (kr *Runner) RecordEvent() DeviceEvent {
	return DeviceEvent{tag: kr.Device.TagStream()}
}

// WaitForEvent blocks until the device stream has passed ev
func (kr *Runner) WaitForEvent(ev DeviceEvent) {
	kr.Device.WaitForTag(ev.tag)
}

// EventElapsed returns the device time between two tags. Both tags must
// have been waited on; a stop before start yields zero.
func (kr *Runner) EventElapsed(start, stop DeviceEvent) time.Duration {
	d := time.Duration(kr.Device.TimeBetweenTags(start.tag, stop.tag) * float64(time.Second))
	if d < 0 {
		return 0
	}
	return d
}

// Dispatch copies in to the device, runs the heavy kernel over
// ceil(len(in)/groupSize) groups, and copies the result into out.
// Device buffers are released before returning on every path.
func (kr *Runner) Dispatch(in, out []int32, iterations, groupSize int) (Timing, error) {
	var timing Timing

	if err := validateDispatch(in, out, iterations, groupSize); err != nil {
		return timing, err
	}
	bld, kernel, err := kr.kernelFor(groupSize)
	if err != nil {
		return timing, err
	}
	if int64(len(in)) > bld.MaxElements() {
		return timing, errorf("%d elements exceed the device index range %d",
			len(in), bld.MaxElements())
	}

	defer kr.releaseAll()

	if _, err := kr.allocate(inputBuffer, len(in)); err != nil {
		return timing, err
	}
	if _, err := kr.allocate(outputBuffer, len(out)); err != nil {
		return timing, err
	}

	copyStart := kr.RecordEvent()
	if err := kr.CopyToDevice(inputBuffer, in); err != nil {
		return timing, err
	}
	start := kr.RecordEvent()

	err = kernel.RunWithArgs(
		bld.IndexScalar(len(in)),
		int32(iterations),
		kr.PooledMemory[inputBuffer],
		kr.PooledMemory[outputBuffer],
	)
	if err != nil {
		return timing, &DeviceError{Op: OpLaunchKernel, Err: err}
	}
	stop := kr.RecordEvent()
	// the only barrier: out is complete once the stream passes stop
	kr.WaitForEvent(stop)
	timing.CopyIn = kr.EventElapsed(copyStart, start)
	timing.Kernel = kr.EventElapsed(start, stop)

	if err := kr.CopyFromDevice(outputBuffer, out); err != nil {
		return timing, err
	}
	copyEnd := kr.RecordEvent()
	kr.WaitForEvent(copyEnd)
	timing.CopyOut = kr.EventElapsed(stop, copyEnd)

	return timing, nil
}
