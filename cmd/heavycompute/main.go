// Command heavycompute benchmarks an elementwise integer workload on a
// parallel device against the same loop on the host and checks that both
// produce identical output.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/notargets/HeavyCompute/harness"
	"github.com/notargets/HeavyCompute/runner"
	"github.com/notargets/HeavyCompute/utils"
	"github.com/tebeka/atexit"
)

// Exit codes
const (
	exitOK     = 0
	exitFailed = 1 // outputs differ
	exitUsage  = 2
	exitDevice = 3
)

func main() {
	onExit := func(handler func()) { atexit.Register(handler) }
	atexit.Exit(run(os.Args[1:], os.Stdout, os.Stderr, onExit))
}

// run executes the benchmark and returns the process exit code. Executor
// release is handed to onExit so it runs once on whatever path the process
// leaves by.
func run(args []string, stdout, stderr io.Writer, onExit func(func())) int {
	logger := log.New(stderr, "heavycompute: ", 0)

	def := harness.DefaultConfig()
	fs := flag.NewFlagSet("heavycompute", flag.ContinueOnError)
	fs.SetOutput(stderr)
	n := fs.Int("n", def.ElementCount, "number of elements (data-parallel width)")
	iterations := fs.Int("iterations", def.Iterations, "per-element work multiplier")
	groupSize := fs.Int("group-size", def.GroupSize, "threads per execution group")
	runs := fs.Int("runs", def.Runs, "number of repetitions")
	backend := fs.String("backend", backendOCCA, "executor backend: occa or goroutine")
	deviceProps := fs.String("device", utils.AutoDevice, "OCCA device properties JSON, or auto")
	workers := fs.Int("workers", 0, "goroutine backend workers (0 = NumCPU)")
	verbose := fs.Bool("v", false, "print backend, host and transfer details to stderr")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg := harness.Config{
		ElementCount: *n,
		Iterations:   *iterations,
		GroupSize:    *groupSize,
		Runs:         *runs,
	}
	if err := cfg.Validate(); err != nil {
		logger.Print(err)
		return exitUsage
	}

	exec, release, err := newExecutor(*backend, *deviceProps, cfg.GroupSize, *workers)
	if err != nil {
		logger.Print(err)
		return exitCode(err)
	}
	onExit(release)

	if *verbose {
		fmt.Fprintf(stderr, "Executor: %s\nHost: %s\n", exec.Name(), hostDescription())
	}

	report, err := harness.Run(cfg, exec)
	if err != nil {
		logger.Print(err)
		return exitCode(err)
	}

	if err := report.Write(stdout); err != nil {
		logger.Print(err)
		return exitUsage
	}
	if *verbose {
		if err := report.WriteDetails(stderr); err != nil {
			logger.Print(err)
		}
	}
	if !report.Passed() {
		logger.Print(report.Verdict.Detail())
		return exitFailed
	}
	return exitOK
}

// exitCode maps pipeline errors onto process exit codes
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, runner.ErrDevice), errors.Is(err, utils.ErrNoDevice):
		return exitDevice
	default:
		return exitUsage
	}
}
