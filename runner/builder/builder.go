package builder

import (
	"fmt"
	"strings"
)

// DataType represents the width of the integer index type on the device
type DataType int

const (
	INT32 DataType = iota + 1
	INT64
)

const (
	// DefaultGroupSize is the number of threads in one execution group
	DefaultGroupSize = 256
	// MaxGroupSize bounds the @inner loop, the lowest common limit across
	// CUDA, HIP and OpenCL backends.
	MaxGroupSize = 1024
	// Modulus must match workload.Modulus
	Modulus = 1000000
	// KernelName is the entry point of the generated source
	KernelName = "heavyKernel"
)

// Config holds configuration for creating a Builder
type Config struct {
	GroupSize int
	IntType   DataType
}

// Builder manages code generation for the grouped elementwise kernel
type Builder struct {
	GroupSize int
	IntType   DataType

	// Generated code
	KernelPreamble string
}

// NewBuilder creates a new Builder instance
func NewBuilder(cfg Config) (*Builder, error) {
	groupSize := cfg.GroupSize
	if groupSize == 0 {
		groupSize = DefaultGroupSize
	}
	if groupSize < 1 || groupSize > MaxGroupSize {
		return nil, fmt.Errorf("group size %d outside [1, %d]", groupSize, MaxGroupSize)
	}
	intType := cfg.IntType
	if intType == 0 {
		intType = INT32
	}
	if intType != INT32 && intType != INT64 {
		return nil, fmt.Errorf("unsupported index type %d", intType)
	}
	return &Builder{
		GroupSize: groupSize,
		IntType:   intType,
	}, nil
}

// NumGroups returns the number of execution groups needed to cover n elements
func (kb *Builder) NumGroups(n int) int {
	return (n + kb.GroupSize - 1) / kb.GroupSize
}

// MaxElements is the largest element count the index type can address
// without overflowing id = group*GROUP_SIZE + t or the group count.
func (kb *Builder) MaxElements() int64 {
	if kb.IntType == INT64 {
		return int64(1)<<62 - int64(kb.GroupSize)
	}
	return int64(1)<<31 - 1 - int64(kb.GroupSize)
}

// IndexScalar converts an element count into the scalar type the kernel
// expects for its N argument.
func (kb *Builder) IndexScalar(n int) interface{} {
	if kb.IntType == INT64 {
		return int64(n)
	}
	return int32(n)
}

// GeneratePreamble generates type definitions and macros
func (kb *Builder) GeneratePreamble() string {
	var sb strings.Builder

	intTypeStr := "int"
	if kb.IntType == INT64 {
		intTypeStr = "long"
	}

	sb.WriteString(fmt.Sprintf("typedef %s int_t;\n", intTypeStr))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("#define GROUP_SIZE %d\n", kb.GroupSize))
	sb.WriteString(fmt.Sprintf("#define MODULUS %d\n", Modulus))
	sb.WriteString("#define NUM_GROUPS(n) (((n) + GROUP_SIZE - 1) / GROUP_SIZE)\n")
	sb.WriteString("\n")
	// Signed overflow is undefined in C; step through unsigned so the
	// device wraps the same way Go's int32 does.
	sb.WriteString("#define HEAVY_STEP(v, i) \\\n")
	sb.WriteString("\t(((int)((unsigned int)(v) * 2u + (unsigned int)(i))) % MODULUS)\n")
	sb.WriteString("\n")

	kb.KernelPreamble = sb.String()
	return kb.KernelPreamble
}

// KernelSource returns the complete OCCA source of the heavy kernel
func (kb *Builder) KernelSource() string {
	return kb.GeneratePreamble() + heavyKernelBody
}

const heavyKernelBody = `@kernel void heavyKernel(const int_t N,
                         const int iterations,
                         const int* in,
                         int* out) {
	for (int_t group = 0; group < NUM_GROUPS(N); ++group; @outer) {
		for (int_t t = 0; t < GROUP_SIZE; ++t; @inner) {
			const int_t id = group * GROUP_SIZE + t;
			if (id < N) {
				int value = in[id];
				for (int i = 0; i < iterations; ++i) {
					value = HEAVY_STEP(value, i);
				}
				out[id] = value;
			}
		}
	}
}
`
