package runner

import (
	"errors"
	"strings"
	"testing"

	"github.com/notargets/HeavyCompute/runner/builder"
	"github.com/notargets/HeavyCompute/utils"
	"github.com/notargets/HeavyCompute/workload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Section 1: Creation
// ============================================================================

func TestNewRunner_NilDevice(t *testing.T) {
	_, err := NewRunner(nil, builder.Config{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDevice))

	var devErr *DeviceError
	require.True(t, errors.As(err, &devErr))
	assert.Equal(t, OpCreateDevice, devErr.Op)
}

func TestNewRunner_InvalidGroupSize(t *testing.T) {
	device := utils.CreateTestDevice()
	defer device.Free()

	_, err := NewRunner(device, builder.Config{GroupSize: builder.MaxGroupSize + 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestNewRunner_BuildsKernel(t *testing.T) {
	device := utils.CreateTestDevice()
	defer device.Free()

	kr, err := NewRunner(device, builder.Config{GroupSize: 64})
	require.NoError(t, err)
	defer kr.Free()

	assert.Contains(t, kr.Kernels, kernelKey(64))
	assert.True(t, strings.HasPrefix(kr.Name(), "occa/"))
	assert.Contains(t, kr.KernelPreamble, "#define GROUP_SIZE 64")
}

// ============================================================================
// Section 2: Dispatch correctness against the host path
// ============================================================================

func TestRunner_Dispatch_MatchesHost(t *testing.T) {
	device := utils.CreateTestDevice()
	defer device.Free()

	kr, err := NewRunner(device, builder.Config{})
	require.NoError(t, err)
	defer kr.Free()

	testCases := []struct {
		name       string
		n          int
		iterations int
		groupSize  int
	}{
		{"single_element", 1, 100, 256},
		{"partial_group", 1000, 100, 256},
		{"exact_groups", 1024, 10, 256},
		{"zero_iterations", 300, 0, 256},
		{"small_groups", 777, 3, 7},
		{"one_thread_groups", 50, 20, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in := workload.GenerateInput(tc.n)
			devOut := make([]int32, tc.n)
			hostOut := make([]int32, tc.n)

			timing, err := kr.Dispatch(in, devOut, tc.iterations, tc.groupSize)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, int64(timing.Kernel), int64(0))

			workload.HostCompute(in, hostOut, tc.iterations)
			v := workload.Verify(devOut, hostOut)
			assert.True(t, v.Passed, v.Detail())
		})
	}

	// buffers are released after every dispatch
	assert.Empty(t, kr.PooledMemory)
}

func TestRunner_Dispatch_SingleElement(t *testing.T) {
	device := utils.CreateTestDevice()
	defer device.Free()

	kr, err := NewRunner(device, builder.Config{})
	require.NoError(t, err)
	defer kr.Free()

	out := []int32{-1}
	_, err = kr.Dispatch(workload.GenerateInput(1), out, 100, 256)
	require.NoError(t, err)
	assert.Equal(t, workload.Transform(0, 100), out[0])
}

// N not divisible by the group size must not touch memory past N
func TestRunner_Dispatch_UnevenLargeCount(t *testing.T) {
	if testing.Short() {
		t.Skip("large dispatch")
	}
	device := utils.CreateTestDevice()
	defer device.Free()

	kr, err := NewRunner(device, builder.Config{GroupSize: 256})
	require.NoError(t, err)
	defer kr.Free()

	const n = 10000001
	in := workload.GenerateInput(n)
	devOut := make([]int32, n)
	hostOut := make([]int32, n)

	_, err = kr.Dispatch(in, devOut, 2, 256)
	require.NoError(t, err)
	workload.HostCompute(in, hostOut, 2)

	v := workload.Verify(devOut, hostOut)
	assert.True(t, v.Passed, v.Detail())
}

func TestRunner_Dispatch_RebuildsForNewGroupSize(t *testing.T) {
	device := utils.CreateTestDevice()
	defer device.Free()

	kr, err := NewRunner(device, builder.Config{GroupSize: 256})
	require.NoError(t, err)
	defer kr.Free()

	in := workload.GenerateInput(100)
	out := make([]int32, 100)
	_, err = kr.Dispatch(in, out, 5, 32)
	require.NoError(t, err)

	assert.Len(t, kr.Kernels, 2)
	assert.Contains(t, kr.Kernels, kernelKey(32))
}

func TestRunner_Dispatch_InvalidArguments(t *testing.T) {
	device := utils.CreateTestDevice()
	defer device.Free()

	kr, err := NewRunner(device, builder.Config{})
	require.NoError(t, err)
	defer kr.Free()

	in := workload.GenerateInput(10)

	_, err = kr.Dispatch(in, make([]int32, 9), 1, 256)
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	_, err = kr.Dispatch(nil, nil, 1, 256)
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	_, err = kr.Dispatch(in, make([]int32, 10), -1, 256)
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	_, err = kr.Dispatch(in, make([]int32, 10), 1, 0)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestRunner_FreeTwice(t *testing.T) {
	device := utils.CreateTestDevice()
	defer device.Free()

	kr, err := NewRunner(device, builder.Config{})
	require.NoError(t, err)
	kr.Free()
	kr.Free()
	assert.Empty(t, kr.Kernels)
}
