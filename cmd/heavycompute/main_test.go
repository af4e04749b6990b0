package main

import (
	"bytes"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/notargets/HeavyCompute/harness"
	"github.com/notargets/HeavyCompute/runner"
	"github.com/notargets/HeavyCompute/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// releaseOnCleanup defers exit handlers to the end of the test.
func releaseOnCleanup(t *testing.T) func(func()) {
	return func(handler func()) { t.Cleanup(handler) }
}

func TestRun_GoroutineBackend(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-backend", "goroutine", "-n", "1000", "-iterations", "100"}, &stdout, &stderr, releaseOnCleanup(t))

	require.Equal(t, exitOK, code, stderr.String())
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Output comparison: PASSED", lines[2])
}

func TestRun_Verbose(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-backend=goroutine", "-n=300", "-runs=2", "-workers=2", "-v"}, &stdout, &stderr, releaseOnCleanup(t))

	require.Equal(t, exitOK, code)
	assert.Contains(t, stderr.String(), "Executor: goroutine")
	assert.Contains(t, stderr.String(), runtime.GOARCH)
	assert.Contains(t, stderr.String(), "Speedup:")
	assert.Contains(t, stdout.String(), "2 runs")
}

func TestRun_BadFlags(t *testing.T) {
	testCases := [][]string{
		{"-n", "0", "-backend", "goroutine"},
		{"-iterations", "-3", "-backend", "goroutine"},
		{"-group-size", "5000", "-backend", "goroutine"},
		{"-no-such-flag"},
		{"-backend", "fpga", "-n", "10"},
	}
	for _, args := range testCases {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, exitUsage, run(args, &stdout, &stderr, releaseOnCleanup(t)))
			assert.Empty(t, stdout.String())
		})
	}
}

func TestRun_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, exitOK, run([]string{"-h"}, &stdout, &stderr, releaseOnCleanup(t)))
	assert.Contains(t, stderr.String(), "-iterations")
}

func TestRun_OCCASerial(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-device", utils.SerialBackend, "-n", "1000"}, &stdout, &stderr, releaseOnCleanup(t))

	require.Equal(t, exitOK, code, stderr.String())
	assert.Contains(t, stdout.String(), "Output comparison: PASSED")
}

func TestRun_RegistersReleaseOnce(t *testing.T) {
	var registered []func()
	onExit := func(handler func()) { registered = append(registered, handler) }

	var stdout, stderr bytes.Buffer
	code := run([]string{"-device", utils.SerialBackend, "-n", "64"}, &stdout, &stderr, onExit)
	require.Equal(t, exitOK, code, stderr.String())
	require.Len(t, registered, 1)
	registered[0]()

	registered = nil
	code = run([]string{"-n", "0"}, &stdout, &stderr, onExit)
	assert.Equal(t, exitUsage, code)
	assert.Empty(t, registered)
}

func TestRun_UnusableDevice(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-device", `{"mode": "CUDA", "device_id": 99}`, "-n", "10"},
		&stdout, &stderr, releaseOnCleanup(t))

	assert.Equal(t, exitDevice, code)
	assert.Contains(t, stderr.String(), "device")
	assert.Empty(t, stdout.String())
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitDevice, exitCode(&runner.DeviceError{Op: runner.OpLaunchKernel}))
	assert.Equal(t, exitDevice, exitCode(fmt.Errorf("run 1: %w", &runner.DeviceError{Op: runner.OpMalloc})))
	assert.Equal(t, exitDevice, exitCode(utils.ErrNoDevice))
	assert.Equal(t, exitUsage, exitCode(harness.ErrInvalidConfig))
	assert.Equal(t, exitUsage, exitCode(errors.New("other")))
}

func TestNewExecutor(t *testing.T) {
	exec, release, err := newExecutor(backendGoroutine, "", 256, 3)
	require.NoError(t, err)
	defer release()
	assert.Equal(t, "goroutine", exec.Name())

	_, _, err = newExecutor("cuda-direct", "", 256, 0)
	assert.Error(t, err)
}

func TestHostDescription(t *testing.T) {
	desc := hostDescription()
	assert.Contains(t, desc, runtime.GOOS)
	assert.Contains(t, desc, "features:")
}
