package main

import (
	"fmt"

	"github.com/notargets/HeavyCompute/runner"
	"github.com/notargets/HeavyCompute/runner/builder"
	"github.com/notargets/HeavyCompute/utils"
)

const (
	backendOCCA      = "occa"
	backendGoroutine = "goroutine"
)

// newExecutor creates the requested backend. release frees the executor and,
// for OCCA, the device it owns.
func newExecutor(backend, deviceProps string, groupSize, workers int) (runner.Executor, func(), error) {
	switch backend {
	case backendGoroutine:
		ge := runner.NewGroupExecutor(workers)
		return ge, ge.Free, nil

	case backendOCCA:
		device, err := utils.CreateDevice(deviceProps)
		if err != nil {
			return nil, nil, &runner.DeviceError{Op: runner.OpCreateDevice, Err: err}
		}
		kr, err := runner.NewRunner(device, builder.Config{GroupSize: groupSize})
		if err != nil {
			device.Free()
			return nil, nil, err
		}
		release := func() {
			kr.Free()
			device.Free()
		}
		return kr, release, nil

	default:
		return nil, nil, fmt.Errorf("unknown backend %q (want %s or %s)",
			backend, backendOCCA, backendGoroutine)
	}
}
