// Package workload holds the host side of the benchmark: the per-element
// transform, the input generator, the sequential host path and the verifier.
package workload

import "time"

// Modulus bounds every intermediate value of the transform.
const Modulus = 1000000

// Transform applies the update value = (value*2 + i) % Modulus for
// i in [0, iterations). Arithmetic wraps at 32 bits and the remainder
// follows the sign of the dividend, matching the device kernel.
func Transform(value int32, iterations int) int32 {
	for i := 0; i < iterations; i++ {
		value = (value*2 + int32(i)) % Modulus
	}
	return value
}

// GenerateInput returns n values with input[i] = i % 100.
func GenerateInput(n int) []int32 {
	in := make([]int32, n)
	for i := range in {
		in[i] = int32(i % 100)
	}
	return in
}

// HostCompute fills out[i] = Transform(in[i], iterations) sequentially and
// returns the elapsed wall clock time of the loop.
func HostCompute(in, out []int32, iterations int) time.Duration {
	start := time.Now()
	for id := range in {
		out[id] = Transform(in[id], iterations)
	}
	return time.Since(start)
}
