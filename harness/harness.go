// Package harness wires the benchmark pipeline: generate input, run an
// Executor, run the host path, compare, and summarize.
package harness

import (
	"fmt"

	"github.com/notargets/HeavyCompute/runner"
	"github.com/notargets/HeavyCompute/workload"
)

// Run executes the pipeline cfg.Runs times against exec. Input is generated
// once; each run writes fresh device and host output buffers. A device error
// aborts the remaining runs.
func Run(cfg Config, exec runner.Executor) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if exec == nil {
		return nil, fmt.Errorf("%w: nil executor", ErrInvalidConfig)
	}

	in := workload.GenerateInput(cfg.ElementCount)

	report := &Report{
		Config:   cfg,
		Backend:  exec.Name(),
		Verdict:  workload.Verification{Passed: true, Index: -1},
		RunStats: make([]RunStat, 0, cfg.Runs),
	}

	for r := 0; r < cfg.Runs; r++ {
		devOut := make([]int32, cfg.ElementCount)
		timing, err := exec.Dispatch(in, devOut, cfg.Iterations, cfg.GroupSize)
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", r+1, err)
		}

		hostOut := make([]int32, cfg.ElementCount)
		hostTime := workload.HostCompute(in, hostOut, cfg.Iterations)

		v := workload.Verify(devOut, hostOut)
		report.RunStats = append(report.RunStats, RunStat{
			Device:       timing,
			Host:         hostTime,
			Verification: v,
		})
		if !v.Passed && report.Verdict.Passed {
			report.Verdict = v
		}
	}

	return report, nil
}
