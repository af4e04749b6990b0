package runner

import (
	"runtime"
	"sync"

	"github.com/notargets/HeavyCompute/workload"
)

// GroupExecutor runs the transform on host goroutines using the same
// grouped launch geometry as the device kernel. Each worker owns a
// contiguous range of groups and executes the threads of a group in order.
type GroupExecutor struct {
	Workers int // defaults to runtime.NumCPU()
}

// NewGroupExecutor returns a GroupExecutor with the given worker count
func NewGroupExecutor(workers int) *GroupExecutor {
	return &GroupExecutor{Workers: workers}
}

func (ge *GroupExecutor) Name() string {
	return "goroutine"
}

// Free is a no-op; Dispatch releases its buffers before returning.
func (ge *GroupExecutor) Free() {}

func (ge *GroupExecutor) Dispatch(in, out []int32, iterations, groupSize int) (Timing, error) {
	var timing Timing

	if err := validateDispatch(in, out, iterations, groupSize); err != nil {
		return timing, err
	}
	n := len(in)

	// private buffers stand in for device memory
	copyStart := newEvent()
	devIn := make([]int32, n)
	devOut := make([]int32, n)
	copy(devIn, in)
	start := newEvent()
	timing.CopyIn = ElapsedTime(copyStart, start)

	numGroups := (n + groupSize - 1) / groupSize
	numWorkers := ge.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numGroups < numWorkers {
		numWorkers = numGroups
	}
	groupsPerWorker := (numGroups + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		startGroup := w * groupsPerWorker
		endGroup := startGroup + groupsPerWorker
		if endGroup > numGroups {
			endGroup = numGroups
		}
		go func() {
			defer wg.Done()
			for group := startGroup; group < endGroup; group++ {
				for t := 0; t < groupSize; t++ {
					id := group*groupSize + t
					if id < n {
						devOut[id] = workload.Transform(devIn[id], iterations)
					}
				}
			}
		}()
	}
	wg.Wait()
	stop := newEvent()
	timing.Kernel = ElapsedTime(start, stop)

	copy(out, devOut)
	timing.CopyOut = ElapsedTime(stop, newEvent())

	return timing, nil
}
