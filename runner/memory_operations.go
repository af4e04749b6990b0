package runner

import (
	"fmt"

	"github.com/notargets/gocca"
)

// allocate reserves n int32 values of device memory under name, replacing
// any previous allocation with that name.
func (kr *Runner) allocate(name string, n int) (*gocca.OCCAMemory, error) {
	kr.release(name)

	mem := kr.Device.Malloc(int64(n*SizeOfInt32), nil, nil)
	if err := checkAllocation(name, mem, int64(n*SizeOfInt32)); err != nil {
		return nil, err
	}
	kr.PooledMemory[name] = mem
	return mem, nil
}

// checkAllocation rejects memory OCCA handed back without a live backing
// allocation. Malloc never returns nil, so IsInitialized is the signal.
func checkAllocation(name string, mem *gocca.OCCAMemory, bytes int64) error {
	if mem == nil || !mem.IsInitialized() {
		return &DeviceError{Op: OpMalloc, Err: fmt.Errorf("%s: %d bytes", name, bytes)}
	}
	return nil
}

// GetMemory returns the device memory for a named buffer, or nil when the
// buffer is not pooled or its allocation is no longer valid.
func (kr *Runner) GetMemory(name string) *gocca.OCCAMemory {
	mem, ok := kr.PooledMemory[name]
	if !ok || !mem.IsInitialized() {
		return nil
	}
	return mem
}

// CopyToDevice copies host into the named device buffer
func (kr *Runner) CopyToDevice(name string, host []int32) error {
	mem := kr.GetMemory(name)
	if mem == nil {
		return &DeviceError{Op: OpCopyToDevice,
			Err: fmt.Errorf("no device memory allocated for %s", name)}
	}
	if len(host) == 0 {
		return nil
	}
	mem.CopyFromInt32(host)
	return nil
}

// CopyFromDevice copies the named device buffer into host
func (kr *Runner) CopyFromDevice(name string, host []int32) error {
	mem := kr.GetMemory(name)
	if mem == nil {
		return &DeviceError{Op: OpCopyFromDevice,
			Err: fmt.Errorf("no device memory allocated for %s", name)}
	}
	if len(host) == 0 {
		return nil
	}
	mem.CopyToInt32(host)
	return nil
}

func (kr *Runner) release(name string) {
	if mem, ok := kr.PooledMemory[name]; ok {
		mem.Free()
		delete(kr.PooledMemory, name)
	}
}

func (kr *Runner) releaseAll() {
	for name := range kr.PooledMemory {
		kr.release(name)
	}
}
