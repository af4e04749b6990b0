package runner

import (
	"fmt"

	"github.com/notargets/HeavyCompute/runner/builder"
	"github.com/notargets/gocca"
)

// Runner compiles the heavy kernel for an OCCA device and executes it with
// device-side timing. It implements Executor.
type Runner struct {
	*builder.Builder
	Device       *gocca.OCCADevice
	Kernels      map[string]*gocca.OCCAKernel
	PooledMemory map[string]*gocca.OCCAMemory
	builders     map[int]*builder.Builder // per group size
	freed        bool
}

// NewRunner creates a new Runner instance and compiles the kernel for the
// configured group size.
func NewRunner(device *gocca.OCCADevice, cfg builder.Config) (*Runner, error) {
	if device == nil {
		return nil, &DeviceError{Op: OpCreateDevice, Err: fmt.Errorf("nil device")}
	}
	bld, err := builder.NewBuilder(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	kr := &Runner{
		Builder:      bld,
		Device:       device,
		Kernels:      make(map[string]*gocca.OCCAKernel),
		PooledMemory: make(map[string]*gocca.OCCAMemory),
		builders:     map[int]*builder.Builder{bld.GroupSize: bld},
	}

	if _, err := kr.BuildKernel(bld); err != nil {
		kr.Free()
		return nil, err
	}
	return kr, nil
}

// Name reports the backend and OCCA mode, e.g. "occa/CUDA"
func (kr *Runner) Name() string {
	return "occa/" + kr.Device.Mode()
}

// kernelKey names the compiled kernel for a group size
func kernelKey(groupSize int) string {
	return fmt.Sprintf("%s_gs%d", builder.KernelName, groupSize)
}

// BuildKernel compiles and registers the heavy kernel generated by bld
func (kr *Runner) BuildKernel(bld *builder.Builder) (*gocca.OCCAKernel, error) {
	key := kernelKey(bld.GroupSize)
	if kernel, ok := kr.Kernels[key]; ok {
		return kernel, nil
	}

	source := bld.KernelSource()

	var kernel *gocca.OCCAKernel
	var err error

	if kr.Device.Mode() == "OpenMP" {
		// Workaround for OCCA bug: OpenMP doesn't get default -O3 flag
		props := gocca.JsonParse(`{"compiler_flags": "-O3"}`)
		defer props.Free()
		kernel, err = kr.Device.BuildKernelFromString(source, builder.KernelName, props)
	} else {
		kernel, err = kr.Device.BuildKernelFromString(source, builder.KernelName, nil)
	}

	if err != nil {
		return nil, &DeviceError{Op: OpBuildKernel, Err: err}
	}
	if kernel == nil {
		return nil, &DeviceError{Op: OpBuildKernel,
			Err: fmt.Errorf("kernel build returned nil for group size %d", bld.GroupSize)}
	}

	kr.Kernels[key] = kernel
	return kernel, nil
}

// kernelFor returns the builder and compiled kernel for groupSize, building
// them on first use.
func (kr *Runner) kernelFor(groupSize int) (*builder.Builder, *gocca.OCCAKernel, error) {
	bld, ok := kr.builders[groupSize]
	if !ok {
		var err error
		bld, err = builder.NewBuilder(builder.Config{GroupSize: groupSize, IntType: kr.IntType})
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		kr.builders[groupSize] = bld
	}
	kernel, err := kr.BuildKernel(bld)
	if err != nil {
		return nil, nil, err
	}
	return bld, kernel, nil
}

// Free releases all kernels and any device memory still pooled. The device
// itself belongs to the caller.
func (kr *Runner) Free() {
	if kr.freed {
		return
	}
	kr.freed = true

	for name, kernel := range kr.Kernels {
		kernel.Free()
		delete(kr.Kernels, name)
	}
	kr.releaseAll()
}
