package harness

import (
	"errors"
	"fmt"
	"math"

	"github.com/notargets/HeavyCompute/runner/builder"
)

// ErrInvalidConfig is wrapped by every Validate failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the benchmark parameters. It is passed into Run explicitly.
type Config struct {
	ElementCount int // data-parallel width N
	Iterations   int // per-element work multiplier
	GroupSize    int // threads per execution group
	Runs         int // repetitions of the device and host paths
}

// DefaultConfig returns N = 10,000,000, 100 iterations, groups of 256 and
// a single run.
func DefaultConfig() Config {
	return Config{
		ElementCount: 10000000,
		Iterations:   100,
		GroupSize:    builder.DefaultGroupSize,
		Runs:         1,
	}
}

// Validate checks that the configuration describes a runnable benchmark
func (c Config) Validate() error {
	switch {
	case c.ElementCount < 1:
		return fmt.Errorf("%w: element count %d must be at least 1", ErrInvalidConfig, c.ElementCount)
	case c.Iterations < 0 || c.Iterations > math.MaxInt32:
		return fmt.Errorf("%w: iterations %d outside [0, %d]", ErrInvalidConfig, c.Iterations, math.MaxInt32)
	case c.GroupSize < 1 || c.GroupSize > builder.MaxGroupSize:
		return fmt.Errorf("%w: group size %d outside [1, %d]", ErrInvalidConfig, c.GroupSize, builder.MaxGroupSize)
	case c.Runs < 1:
		return fmt.Errorf("%w: runs %d must be at least 1", ErrInvalidConfig, c.Runs)
	}
	// the kernel indexes with 32-bit ints
	if limit := int64(math.MaxInt32) - int64(c.GroupSize); int64(c.ElementCount) > limit {
		return fmt.Errorf("%w: element count %d exceeds %d for group size %d",
			ErrInvalidConfig, c.ElementCount, limit, c.GroupSize)
	}
	return nil
}
