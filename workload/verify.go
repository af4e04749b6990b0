package workload

import "fmt"

// Verification is the outcome of comparing device output against host output
type Verification struct {
	Passed   bool
	Checked  int
	Index    int // first mismatching index, -1 when Passed
	Device   int32
	Host     int32
	LenDelta bool // lengths differed
}

// Verify compares device and host output element by element and stops at the
// first mismatch.
func Verify(device, host []int32) Verification {
	n := len(device)
	if len(host) < n {
		n = len(host)
	}
	for i := 0; i < n; i++ {
		if device[i] != host[i] {
			return Verification{Checked: i + 1, Index: i, Device: device[i], Host: host[i]}
		}
	}
	if len(device) != len(host) {
		return Verification{Checked: n, Index: n, LenDelta: true}
	}
	return Verification{Passed: true, Checked: n, Index: -1}
}

func (v Verification) String() string {
	if v.Passed {
		return "PASSED"
	}
	return "FAILED"
}

// Detail describes the first mismatch, or is empty when the outputs agree.
func (v Verification) Detail() string {
	switch {
	case v.Passed:
		return ""
	case v.LenDelta:
		return fmt.Sprintf("output lengths differ after %d elements", v.Checked)
	default:
		return fmt.Sprintf("mismatch at index %d: device=%d host=%d", v.Index, v.Device, v.Host)
	}
}
