package runner

import (
	"errors"
	"fmt"
)

var (
	// ErrDevice matches every DeviceError via errors.Is
	ErrDevice = errors.New("runner: device operation failed")

	// ErrInvalidArgument is returned for mismatched buffers or group sizes
	ErrInvalidArgument = errors.New("runner: invalid argument")
)

// Device operations named in DeviceError.Op
const (
	OpCreateDevice   = "create device"
	OpMalloc         = "malloc"
	OpCopyToDevice   = "copy to device"
	OpCopyFromDevice = "copy from device"
	OpBuildKernel    = "build kernel"
	OpLaunchKernel   = "launch kernel"
)

// DeviceError identifies which device operation failed
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("device %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("device %s failed", e.Op)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// Is reports a match against ErrDevice
func (e *DeviceError) Is(target error) bool {
	return target == ErrDevice
}

func errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
