package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/notargets/gocca"
)

// AutoDevice selects the first parallel backend that initializes
const AutoDevice = "auto"

// ParallelBackends are tried in order by CreateDevice(AutoDevice). Serial is
// deliberately absent: it is not a parallel device.
var ParallelBackends = []string{
	`{"mode": "CUDA", "device_id": 0}`,
	`{"mode": "HIP", "device_id": 0}`,
	`{"mode": "OpenCL", "platform_id": 0, "device_id": 0}`,
	`{"mode": "Metal", "device_id": 0}`,
	`{"mode": "OpenMP"}`,
}

// SerialBackend runs OCCA kernels on one host thread
const SerialBackend = `{"mode": "Serial"}`

// ErrNoDevice is returned when no backend could be initialized
var ErrNoDevice = errors.New("no parallel compute device available")

// CreateDevice creates an OCCA device from JSON properties, or walks
// ParallelBackends when props is AutoDevice or empty.
func CreateDevice(props string) (*gocca.OCCADevice, error) {
	props = strings.TrimSpace(props)
	if props != "" && props != AutoDevice {
		device, err := gocca.NewDevice(props)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrNoDevice, props, err)
		}
		return device, nil
	}
	return firstDevice(ParallelBackends)
}

func firstDevice(backends []string) (*gocca.OCCADevice, error) {
	var failures []string
	for _, props := range backends {
		device, err := gocca.NewDevice(props)
		if err == nil {
			return device, nil
		}
		failures = append(failures, fmt.Sprintf("%s: %v", props, err))
	}
	return nil, fmt.Errorf("%w (tried %s)", ErrNoDevice, strings.Join(failures, "; "))
}

// CreateTestDevice creates a Device for testing, preferring parallel backends
// and falling back to Serial.
func CreateTestDevice() *gocca.OCCADevice {
	device, err := firstDevice(append(append([]string{}, ParallelBackends...), SerialBackend))
	if err != nil {
		panic(fmt.Sprintf("Failed to create any Device: %v", err))
	}
	fmt.Printf("Created %s Device\n", device.Mode())
	return device
}
