package harness

import (
	"fmt"
	"io"
	"time"

	"github.com/notargets/HeavyCompute/runner"
	"github.com/notargets/HeavyCompute/workload"
	"gonum.org/v1/gonum/stat"
)

// RunStat records one pass of the pipeline
type RunStat struct {
	Device       runner.Timing
	Host         time.Duration
	Verification workload.Verification
}

// Report summarizes all runs of a benchmark
type Report struct {
	Config   Config
	Backend  string
	RunStats []RunStat
	Verdict  workload.Verification // first failing run, or PASSED
}

// Summary is the mean and standard deviation of a series of durations in
// milliseconds.
type Summary struct {
	MeanMs   float64
	StdDevMs float64
}

// Passed reports whether every run matched the host output
func (r *Report) Passed() bool {
	return r.Verdict.Passed
}

// DeviceSummary summarizes the kernel times between device events
func (r *Report) DeviceSummary() Summary {
	return summarize(r.RunStats, func(s RunStat) time.Duration { return s.Device.Kernel })
}

// HostSummary summarizes the sequential host loop times
func (r *Report) HostSummary() Summary {
	return summarize(r.RunStats, func(s RunStat) time.Duration { return s.Host })
}

// TransferSummary summarizes host<->device copy time per run
func (r *Report) TransferSummary() Summary {
	return summarize(r.RunStats, func(s RunStat) time.Duration {
		return s.Device.CopyIn + s.Device.CopyOut
	})
}

func summarize(stats []RunStat, pick func(RunStat) time.Duration) Summary {
	if len(stats) == 0 {
		return Summary{}
	}
	ms := make([]float64, len(stats))
	for i, s := range stats {
		ms[i] = durationMs(pick(s))
	}
	if len(ms) == 1 {
		return Summary{MeanMs: ms[0]}
	}
	mean, std := stat.MeanStdDev(ms, nil)
	return Summary{MeanMs: mean, StdDevMs: std}
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Speedup is the host mean over the device mean; zero when the device time
// rounds to nothing.
func (r *Report) Speedup() float64 {
	dev := r.DeviceSummary().MeanMs
	if dev <= 0 {
		return 0
	}
	return r.HostSummary().MeanMs / dev
}

// Write prints the three result lines: device kernel time, host time and the
// comparison verdict.
func (r *Report) Write(w io.Writer) error {
	dev, host := r.DeviceSummary(), r.HostSummary()
	if _, err := fmt.Fprintf(w, "Device kernel execution time: %s\n", r.formatMs(dev)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Host execution time: %s\n", r.formatMs(host)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Output comparison: %s\n", r.Verdict)
	return err
}

// WriteDetails prints backend, transfer and mismatch information
func (r *Report) WriteDetails(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Backend: %s\nElements: %d  Iterations: %d  Group size: %d  Runs: %d\n"+
		"Transfer time: %s\nSpeedup: %.2fx\n",
		r.Backend, r.Config.ElementCount, r.Config.Iterations, r.Config.GroupSize, len(r.RunStats),
		r.formatMs(r.TransferSummary()), r.Speedup())
	if err != nil {
		return err
	}
	if !r.Passed() {
		_, err = fmt.Fprintf(w, "First mismatch: %s\n", r.Verdict.Detail())
	}
	return err
}

func (r *Report) formatMs(s Summary) string {
	if len(r.RunStats) > 1 {
		return fmt.Sprintf("%.3f ms (+/- %.3f, %d runs)", s.MeanMs, s.StdDevMs, len(r.RunStats))
	}
	return fmt.Sprintf("%.3f ms", s.MeanMs)
}
