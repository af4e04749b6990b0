package main

import (
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"
)

// hostDescription names the host platform and the SIMD features the
// sequential path could be running with.
func hostDescription() string {
	var features []string
	switch runtime.GOARCH {
	case "amd64", "386":
		for _, f := range []struct {
			name string
			has  bool
		}{
			{"sse4.2", cpu.X86.HasSSE42},
			{"avx", cpu.X86.HasAVX},
			{"avx2", cpu.X86.HasAVX2},
			{"fma", cpu.X86.HasFMA},
			{"avx512f", cpu.X86.HasAVX512F},
		} {
			if f.has {
				features = append(features, f.name)
			}
		}
	case "arm64":
		for _, f := range []struct {
			name string
			has  bool
		}{
			{"asimd", cpu.ARM64.HasASIMD},
			{"sve", cpu.ARM64.HasSVE},
			{"sve2", cpu.ARM64.HasSVE2},
		} {
			if f.has {
				features = append(features, f.name)
			}
		}
	}
	if len(features) == 0 {
		features = append(features, "none detected")
	}
	return fmt.Sprintf("%s/%s, %d CPUs, features: %s",
		runtime.GOOS, runtime.GOARCH, runtime.NumCPU(), strings.Join(features, " "))
}
